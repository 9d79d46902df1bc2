package agent

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/codec"
	"github.com/joeycumines/clica/internal/storage"
	"github.com/joeycumines/clica/internal/workspace"
	"gopkg.in/yaml.v3"
)

const (
	modelVersion = 1
	// start is the previous-action value at the beginning of a turn and
	// after an instruction change.
	start action.ID = -1
)

// Successor predicts the action a human most often typed after the
// previous action. It never learns from agent actions.
type Successor struct {
	vocab   *codec.Vocabulary
	factory workspace.Factory
	maxGen  int
	logger  *slog.Logger
	counts  successorCounts
}

// NewSuccessor returns an untrained agent. Replay during training uses
// workspaces built by factory.
func NewSuccessor(vocab *codec.Vocabulary, factory workspace.Factory, maxGen int, logger *slog.Logger) *Successor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Successor{
		vocab:   vocab,
		factory: factory,
		maxGen:  maxGen,
		logger:  logger,
		counts:  make(successorCounts),
	}
}

// EndOfTurn implements Agent.
func (a *Successor) EndOfTurn() action.ID { return a.vocab.MustID(codec.EndOfTurn) }

// MaxGenLength implements Agent.
func (a *Successor) MaxGenLength() int { return a.maxGen }

// NextAction implements Agent. The recurrent state is the previous action.
func (a *Successor) NextAction(ctx context.Context, state any, _ workspace.Observation) (any, action.ID, error) {
	if err := ctx.Err(); err != nil {
		return state, 0, err
	}
	prev := start
	if state != nil {
		p, ok := state.(action.ID)
		if !ok {
			return state, 0, fmt.Errorf("agent: unexpected recurrent state %T", state)
		}
		prev = p
	}
	next, ok := a.predict(prev)
	if !ok {
		next = a.EndOfTurn()
	}
	return next, next, nil
}

func (a *Successor) predict(prev action.ID) (action.ID, bool) {
	succ := a.counts[prev]
	best, bestCount := action.ID(0), 0
	for id, n := range succ {
		if n > bestCount || (n == bestCount && id < best) {
			best, bestCount = id, n
		}
	}
	return best, bestCount > 0
}

// Train implements checkpoint.Trainer. Entries are replayed against a
// workspace restored from base; human key entries update the counts, which
// are only kept if the whole replay succeeds.
func (a *Successor) Train(ctx context.Context, base workspace.Snapshot, entries []action.Entry) (workspace.Workspace, error) {
	ws := a.factory.Restore(base)
	prev := start
	learned := 0
	seen := make(successorCounts)
	for _, e := range entries {
		switch e.Kind {
		case action.KindSetInstruction:
			ws.SetInstruction(a.vocab.Encode(e.Payload))
			prev = start
		case action.KindKey:
			if err := ws.Apply(ctx, action.Action{ID: e.ActionID, Source: e.Source}); err != nil {
				return nil, fmt.Errorf("agent: replay entry %d: %w", e.Seq, err)
			}
			if e.Source == action.SourceHuman {
				seen.add(prev, e.ActionID, 1)
				learned++
			}
			prev = e.ActionID
		default:
			return nil, fmt.Errorf("agent: replay entry %d: unknown kind %q", e.Seq, e.Kind)
		}
	}
	for from, succ := range seen {
		for to, n := range succ {
			a.counts.add(from, to, n)
		}
	}
	a.logger.Debug("agent trained", "entries", len(entries), "learned", learned)
	return ws, nil
}

type successorCounts map[action.ID]map[action.ID]int

func (c successorCounts) add(prev, next action.ID, n int) {
	m := c[prev]
	if m == nil {
		m = make(map[action.ID]int)
		c[prev] = m
	}
	m[next] += n
}

type modelDoc struct {
	Version    int             `yaml:"version"`
	Successors []successorStat `yaml:"successors"`
}

type successorStat struct {
	From  action.ID `yaml:"from"`
	To    action.ID `yaml:"to"`
	Count int       `yaml:"count"`
}

// Save implements Agent, writing path/model.yaml.
func (a *Successor) Save(path string) error {
	doc := modelDoc{Version: modelVersion}
	for from, succ := range a.counts {
		for to, n := range succ {
			doc.Successors = append(doc.Successors, successorStat{From: from, To: to, Count: n})
		}
	}
	slices.SortFunc(doc.Successors, func(x, y successorStat) int {
		return cmp.Or(cmp.Compare(x.From, y.From), cmp.Compare(x.To, y.To))
	})
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("agent: encode model: %w", err)
	}
	if err := storage.AtomicWriteFile(filepath.Join(path, ModelFile), data, 0644); err != nil {
		return fmt.Errorf("agent: save model: %w", err)
	}
	return nil
}

// Load implements Agent. The current model is replaced only on success.
func (a *Successor) Load(path string) error {
	file := filepath.Join(path, ModelFile)
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w at %s", ErrNoModel, path)
		}
		return fmt.Errorf("agent: load model: %w", err)
	}
	var doc modelDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("agent: decode %s: %w", file, err)
	}
	if doc.Version != modelVersion {
		return fmt.Errorf("agent: %s: unsupported model version %d", file, doc.Version)
	}
	counts := make(successorCounts)
	for _, s := range doc.Successors {
		if s.Count <= 0 {
			return fmt.Errorf("agent: %s: invalid count %d for %d->%d", file, s.Count, s.From, s.To)
		}
		counts.add(s.From, s.To, s.Count)
	}
	a.counts = counts
	return nil
}

var _ Agent = (*Successor)(nil)
