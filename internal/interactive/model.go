package interactive

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/joeycumines/clica/internal/agent"
	"github.com/joeycumines/clica/internal/config"
)

const modelNameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func selectCommands() []Binding {
	return []Binding{{"↑↓", "move"}, {"space", "toggle"}, {"enter", "confirm"}, {"esc", "cancel"}}
}

func renderSaveModel(s *Session) string {
	return page(StateSaveModel, faintStyle.Render("Saving to "+s.Settings.SaveDir))
}

func renderLoadModel(s *Session) string {
	return page(StateLoadModel, faintStyle.Render("Models in "+s.Settings.SaveDir))
}

// randomModelName returns "model_" and six random [a-z0-9].
func (s *Session) randomModelName() string {
	intN := rand.IntN
	if s.Rand != nil {
		intN = s.Rand.IntN
	}
	b := []byte("model_")
	for range 6 {
		b = append(b, modelNameAlphabet[intN(len(modelNameAlphabet))])
	}
	return string(b)
}

func validModelName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("a model name is required")
	case name == "." || name == ".." || strings.ContainsAny(name, `/\`):
		return fmt.Errorf("model name %q must not contain path separators", name)
	}
	return nil
}

// executeSaveModel re-enters itself until a usable name is given.
func executeSaveModel(ctx context.Context, s *Session) (StateID, error) {
	dir := s.Settings.SaveDir
	if dir == "" {
		return StateMenu, s.showError(ctx, StateSaveModel, "model save directory is not configured (set model.save-dir)")
	}
	initial := s.LoadedModel
	if initial == "" {
		initial = s.randomModelName()
	}
	name, ok, err := s.Prompter.ReadLine(ctx, "Model name", initial)
	if err != nil {
		return StateMenu, err
	}
	if !ok {
		return StateMenu, nil
	}
	name = strings.TrimSpace(name)
	if err := validModelName(name); err != nil {
		return StateSaveModel, s.showError(ctx, StateSaveModel, err.Error())
	}
	if err := s.Agent.Save(filepath.Join(dir, name)); err != nil {
		return StateMenu, s.showError(ctx, StateSaveModel, err.Error())
	}
	s.LoadedModel = name
	s.rememberModel(name)
	s.Logger.Info("model saved", "name", name, "dir", dir)
	s.notice = "Saved model " + name
	return StateMenu, nil
}

type loadOutcome struct {
	name string
	err  error
}

// executeLoadModel loads every selected model in order. A failure is
// reported for its item and does not stop the others; the last model that
// loaded becomes the loaded model.
func executeLoadModel(ctx context.Context, s *Session) (StateID, error) {
	dir := s.Settings.SaveDir
	if dir == "" {
		return StateMenu, s.showError(ctx, StateLoadModel, "model save directory is not configured (set model.save-dir)")
	}
	names, err := agent.ListModels(dir)
	if err != nil {
		return StateMenu, s.showError(ctx, StateLoadModel, err.Error())
	}
	if len(names) == 0 {
		return StateMenu, s.showError(ctx, StateLoadModel, "no saved models in "+dir)
	}
	chosen, err := s.Prompter.Select(ctx, "Load models", names, true)
	if err != nil {
		return StateMenu, err
	}
	if len(chosen) == 0 {
		return StateMenu, nil
	}

	outcomes := make([]loadOutcome, 0, len(chosen))
	loaded := ""
	for _, name := range chosen {
		err := s.Agent.Load(filepath.Join(dir, name))
		if err != nil {
			s.Logger.Warn("model not loaded", "name", name, "error", err)
		} else {
			loaded = name
		}
		outcomes = append(outcomes, loadOutcome{name: name, err: err})
	}
	if loaded != "" {
		s.LoadedModel = loaded
		s.rememberModel(loaded)
	}
	return StateMenu, s.pause(ctx, page(StateLoadModel, loadResultsView(outcomes)))
}

func loadResultsView(outcomes []loadOutcome) string {
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		status := okStyle.Render("loaded")
		if o.err != nil {
			status = errorStyle.Render("error: " + o.err.Error())
		}
		lines = append(lines, o.name+": "+status)
	}
	return strings.Join(lines, "\n")
}

// rememberModel records name as model.last-loaded for autoload.
func (s *Session) rememberModel(name string) {
	if s.Settings.ConfigPath == "" {
		return
	}
	if err := config.SetKeyInFile(s.Settings.ConfigPath, config.KeyModelLastLoaded, name); err != nil {
		s.Logger.Warn("last loaded model not recorded", "error", err)
	}
}
