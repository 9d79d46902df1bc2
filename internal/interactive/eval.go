package interactive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeycumines/clica/internal/eval"
)

// traceLines bounds the stack trace shown per failed item; the full trace
// goes to the log.
const traceLines = 6

func renderEval(s *Session) string {
	return page(StateEval, faintStyle.Render("Evaluation items in "+s.Settings.EvalDir))
}

// executeEval runs each selected item with the terminal out of raw mode,
// then shows every result together.
func executeEval(ctx context.Context, s *Session) (StateID, error) {
	dir := s.Settings.EvalDir
	if dir == "" {
		return StateMenu, s.showError(ctx, StateEval, "evaluation data path is not configured (set eval.data-path)")
	}
	if _, err := os.Stat(dir); err != nil {
		return StateMenu, s.showError(ctx, StateEval, fmt.Sprintf("evaluation data path %s does not exist", dir))
	}
	if s.Evaluator == nil {
		return StateMenu, s.showError(ctx, StateEval, "no evaluator is configured")
	}
	items, err := eval.ListItems(dir)
	if err != nil {
		return StateMenu, s.showError(ctx, StateEval, err.Error())
	}
	if len(items) == 0 {
		return StateMenu, s.showError(ctx, StateEval, "no evaluation items in "+dir)
	}
	chosen, err := s.Prompter.Select(ctx, "Evaluate", items, true)
	if err != nil {
		return StateMenu, err
	}
	if len(chosen) == 0 {
		return StateMenu, nil
	}

	results := make([]eval.Result, 0, len(chosen))
	for _, item := range chosen {
		res, err := s.evaluate(ctx, dir, item)
		if err != nil {
			return StateMenu, err
		}
		results = append(results, res)
	}
	return StateMenu, s.pause(ctx, page(StateEval, evalResultsView(results)))
}

func (s *Session) evaluate(ctx context.Context, dir, item string) (eval.Result, error) {
	wasRaw := false
	if s.Shell != nil {
		var err error
		if wasRaw, err = s.Shell.Suspend(); err != nil {
			return eval.Result{}, fmt.Errorf("leave raw mode: %w", err)
		}
		_, _ = fmt.Fprintf(s.Shell, "Running evaluation: %s\n", item)
	}
	res := s.Evaluator.Safely(ctx, filepath.Join(dir, item))
	if res.Err != nil {
		s.Logger.Warn("eval item failed", "item", item, "error", res.Err, "stack_trace", res.StackTrace)
	}
	if s.Shell != nil {
		if err := s.Shell.Resume(wasRaw); err != nil {
			return res, fmt.Errorf("enter raw mode: %w", err)
		}
	}
	return res, nil
}

func evalResultsView(results []eval.Result) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(r.Item))
		b.WriteString("\n")
		if r.Err != nil {
			b.WriteString("  " + errorStyle.Render("error: "+r.Err.Error()) + "\n")
			if r.StackTrace != "" {
				lines := strings.Split(strings.TrimSpace(r.StackTrace), "\n")
				for _, l := range lines[:min(len(lines), traceLines)] {
					b.WriteString("  " + faintStyle.Render(l) + "\n")
				}
			}
			continue
		}
		fmt.Fprintf(&b, "  actions: %d\n", r.Metrics.Actions)
		if r.Metrics.Passed != nil {
			passed := errorStyle.Render("false")
			if *r.Metrics.Passed {
				passed = okStyle.Render("true")
			}
			b.WriteString("  passed: " + passed + "\n")
		}
		if out := strings.TrimSpace(r.Metrics.Output); out != "" {
			fmt.Fprintf(&b, "  output: %s\n", firstLine(out))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
