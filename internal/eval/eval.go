// Package eval runs an agent against stored evaluation items.
//
// An item is a YAML file, or a directory holding eval.yaml:
//
//	instruction: Print hello world.
//	code: ""           # optional starting code
//	max_actions: 32    # optional cap, below the agent's own
//	run: true          # execute the code after the turn
//	pass: output contains "hello world"
//
// pass is an expr-lang boolean over output, code, actions and instruction.
package eval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/autoturn"
	"github.com/joeycumines/clica/internal/codec"
	"github.com/joeycumines/clica/internal/workspace"
	"gopkg.in/yaml.v3"
)

// ItemFile is the item file name inside a directory item.
const ItemFile = "eval.yaml"

// Item is one evaluation case.
type Item struct {
	Instruction string `yaml:"instruction"`
	Code        string `yaml:"code"`
	MaxActions  int    `yaml:"max_actions"`
	Run         bool   `yaml:"run"`
	Pass        string `yaml:"pass"`
}

// Env is the expression environment for Item.Pass.
type Env struct {
	Instruction string `expr:"instruction"`
	Code        string `expr:"code"`
	Output      string `expr:"output"`
	Actions     int    `expr:"actions"`
}

// Metrics is the outcome of one evaluated item.
type Metrics struct {
	Actions int    `yaml:"actions"`
	Passed  *bool  `yaml:"passed,omitempty"`
	Output  string `yaml:"output,omitempty"`
	Code    string `yaml:"code"`
}

// Result records one item, successful or not.
type Result struct {
	Item       string
	Metrics    Metrics
	Err        error
	StackTrace string
}

// ListItems returns the sorted names of the items in dir: YAML files and
// directories containing ItemFile.
func ListItems(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list eval items: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasPrefix(name, "."):
		case e.IsDir():
			if _, err := os.Stat(filepath.Join(dir, name, ItemFile)); err == nil {
				names = append(names, name)
			}
		case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// LoadItem reads the item at path.
func LoadItem(path string) (Item, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, ItemFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Item{}, fmt.Errorf("load eval item: %w", err)
	}
	var item Item
	if err := yaml.Unmarshal(data, &item); err != nil {
		return Item{}, fmt.Errorf("load eval item %s: %w", path, err)
	}
	if strings.TrimSpace(item.Instruction) == "" {
		return Item{}, fmt.Errorf("load eval item %s: instruction is required", path)
	}
	return item, nil
}

// Runner evaluates items with one agent, each in a fresh workspace.
type Runner struct {
	Policy  autoturn.Policy
	Vocab   *codec.Vocabulary
	Factory workspace.Factory
	Logger  *slog.Logger
}

// Evaluate runs the item at path.
func (r Runner) Evaluate(ctx context.Context, path string) (Metrics, error) {
	item, err := LoadItem(path)
	if err != nil {
		return Metrics{}, err
	}

	var pass func(Env) (bool, error)
	if item.Pass != "" {
		program, err := expr.Compile(item.Pass, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return Metrics{}, fmt.Errorf("compile pass expression: %w", err)
		}
		pass = func(env Env) (bool, error) {
			out, err := expr.Run(program, env)
			if err != nil {
				return false, fmt.Errorf("evaluate pass expression: %w", err)
			}
			return out.(bool), nil
		}
	}

	ws := r.Factory.Restore(workspace.Snapshot{
		Instruction: r.Vocab.Encode(item.Instruction),
		Code:        item.Code,
		Cursor:      utf8.RuneCountInString(item.Code),
	})
	policy := r.Policy
	if item.MaxActions > 0 && item.MaxActions < policy.MaxGenLength() {
		policy = capped{Policy: policy, limit: item.MaxActions}
	}
	n, err := autoturn.Driver{
		Policy:  policy,
		Observe: ws.Observation,
		Apply:   ws.Apply,
	}.Run(ctx)
	if err != nil {
		return Metrics{Actions: n}, err
	}
	if item.Run {
		if err := ws.Apply(ctx, action.Action{ID: r.Vocab.MustID(codec.Run), Source: action.SourceAgent}); err != nil {
			return Metrics{Actions: n}, err
		}
	}

	obs := ws.Observation()
	m := Metrics{Actions: n, Output: obs.Output, Code: obs.Code}
	if pass != nil {
		ok, err := pass(Env{Instruction: obs.Instruction, Code: obs.Code, Output: obs.Output, Actions: n})
		if err != nil {
			return m, err
		}
		m.Passed = &ok
	}
	if r.Logger != nil {
		r.Logger.Info("eval item finished", "path", path, "actions", n, "passed", m.Passed)
	}
	return m, nil
}

// Safely evaluates path, converting an error or panic into the result.
func (r Runner) Safely(ctx context.Context, path string) (res Result) {
	res.Item = filepath.Base(path)
	defer func() {
		if v := recover(); v != nil {
			res.Err = fmt.Errorf("panic: %v", v)
			res.StackTrace = string(debug.Stack())
		}
	}()
	res.Metrics, res.Err = r.Evaluate(ctx, path)
	return res
}

type capped struct {
	autoturn.Policy
	limit int
}

func (c capped) MaxGenLength() int { return c.limit }
