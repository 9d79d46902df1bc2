// Package agent defines the autonomous agent contract and a reference
// successor-count policy.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/checkpoint"
	"github.com/joeycumines/clica/internal/workspace"
)

// ErrNoModel is returned by Load when the path holds no model.
var ErrNoModel = errors.New("no model found")

// Agent selects actions, learns from the action log and persists itself.
type Agent interface {
	// NextAction returns the next action for obs. state is opaque to the
	// caller: nil on the first call of a turn, then whatever the previous
	// call returned.
	NextAction(ctx context.Context, state any, obs workspace.Observation) (any, action.ID, error)

	// EndOfTurn is the action id that ends an auto turn.
	EndOfTurn() action.ID

	// MaxGenLength caps the number of actions in one auto turn.
	MaxGenLength() int

	checkpoint.Trainer

	Save(path string) error
	Load(path string) error
}

// ModelFile is the file name written inside a model directory.
const ModelFile = "model.yaml"

// ListModels returns the sorted names of the non-hidden directories in dir.
func ListModels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}
