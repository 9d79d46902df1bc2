package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/clica/internal/agent"
	"github.com/joeycumines/clica/internal/argv"
	"github.com/joeycumines/clica/internal/checkpoint"
	"github.com/joeycumines/clica/internal/codec"
	"github.com/joeycumines/clica/internal/config"
	"github.com/joeycumines/clica/internal/eval"
	"github.com/joeycumines/clica/internal/interactive"
	"github.com/joeycumines/clica/internal/logging"
	"github.com/joeycumines/clica/internal/problem"
	"github.com/joeycumines/clica/internal/selector"
	"github.com/joeycumines/clica/internal/session"
	"github.com/joeycumines/clica/internal/storage"
	"github.com/joeycumines/clica/internal/terminal"
	"github.com/joeycumines/clica/internal/workspace"
)

// RunCommand starts the interactive session.
type RunCommand struct {
	*BaseCommand
	config     *config.Config
	configPath string

	// In is the terminal input. Raw mode is only used when it is a terminal.
	In *os.File

	sessionID  string
	newSession bool
	logFile    string
	logLevel   string
}

// NewRunCommand creates a new run command reading keys from in.
func NewRunCommand(cfg *config.Config, configPath string, in *os.File) *RunCommand {
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Start the interactive session (default)",
			"run [options]",
		),
		config:     cfg,
		configPath: configPath,
		In:         in,
	}
}

// SetupFlags configures the flags for the run command.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.sessionID, "session", "", "Session id to resume or create (overrides session.id)")
	fs.BoolVar(&c.newSession, "new-session", false, "Start a fresh session with a random id")
	fs.StringVar(&c.logFile, "log-file", "", "Write JSON logs to this file (overrides log.file)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides log.level)")
}

// runSettings are the typed options the run command needs.
type runSettings struct {
	maxGen        int
	initialReward int
	runTimeout    time.Duration
	autoload      bool
	logMaxSizeMB  int
	logMaxFiles   int
	logBufferSize int
}

func resolveRunSettings(schema *config.ConfigSchema, cfg *config.Config) (runSettings, error) {
	var (
		rs   runSettings
		errs []error
	)
	resolveInt := func(key string, dst *int) {
		v, err := schema.ResolveInt(cfg, key)
		errs = append(errs, err)
		*dst = v
	}
	resolveInt(config.KeyMaxGenLength, &rs.maxGen)
	resolveInt(config.KeyRewardInitial, &rs.initialReward)
	resolveInt(config.KeyLogMaxSizeMB, &rs.logMaxSizeMB)
	resolveInt(config.KeyLogMaxFiles, &rs.logMaxFiles)
	resolveInt(config.KeyLogBufferSize, &rs.logBufferSize)

	var err error
	rs.runTimeout, err = schema.ResolveDuration(cfg, config.KeyRunTimeout)
	errs = append(errs, err)
	rs.autoload, err = schema.ResolveBool(cfg, config.KeyModelAutoload)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return runSettings{}, err
	}
	if rs.maxGen <= 0 {
		return runSettings{}, fmt.Errorf("option %s: must be positive", config.KeyMaxGenLength)
	}
	return rs, nil
}

// Execute runs the session until it exits.
func (c *RunCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	if c.In == nil {
		return fmt.Errorf("no input")
	}

	schema := config.DefaultSchema()
	resolve := func(key string) string { return schema.Resolve(c.config, key) }
	rs, err := resolveRunSettings(schema, c.config)
	if err != nil {
		return err
	}

	level, logFile := c.logLevel, c.logFile
	if level == "" {
		level = resolve(config.KeyLogLevel)
	}
	if logFile == "" {
		logFile = resolve(config.KeyLogFile)
	}
	lg, err := logging.Setup(logging.Options{
		Level:      level,
		File:       logFile,
		MaxSizeMB:  rs.logMaxSizeMB,
		MaxFiles:   rs.logMaxFiles,
		BufferSize: rs.logBufferSize,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer lg.Close()
	logger := lg.Logger

	var (
		sessionID string
		source    session.Source
	)
	if c.newSession {
		sessionID, source = session.NewID(), session.SourceFlag
	} else {
		explicit := c.sessionID
		if explicit == "" {
			explicit, _ = c.config.GetGlobalOption(config.KeySessionID)
		}
		sessionID, source = session.ID(explicit)
	}

	store, err := storage.GetBackend(resolve(config.KeySessionBackend), sessionID)
	if err != nil {
		return err
	}
	defer store.Close()
	rec, err := store.LoadSession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	actionLog, err := storage.OpenLog(resolve(config.KeyActionLogBackend), resolve(config.KeyActionLogPath))
	if err != nil {
		return err
	}
	defer actionLog.Close()

	runArgs, err := argv.Split(resolve(config.KeyRunCommand))
	if err != nil {
		return fmt.Errorf("option %s: %w", config.KeyRunCommand, err)
	}
	var runner workspace.Runner = workspace.NopRunner{}
	if len(runArgs) > 0 {
		runner = workspace.ExecRunner{Command: runArgs, Timeout: rs.runTimeout}
	}
	vocab := codec.NewVocabulary()
	factory := workspace.EditorFactory{Vocab: vocab, Runner: runner, Logger: logger}
	successor := agent.NewSuccessor(vocab, factory, rs.maxGen, logger)

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	bank := problem.NewBank(nil, rng)
	if path := resolve(config.KeyProblemsFile); path != "" {
		if bank, err = problem.LoadBank(path, rng); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tty := terminal.New(c.In, stdout)
	keys := terminal.NewKeyReader(c.In)
	resize, stopResize := terminal.NotifyResize()
	defer stopResize()
	keys.Resize = resize
	s := &interactive.Session{
		Vocab:     vocab,
		Factory:   factory,
		Agent:     successor,
		Log:       actionLog,
		Buffer:    interactive.NewBuffer(vocab),
		Keys:      keys,
		Prompter:  selector.Prompter{Keys: keys, Out: stdout},
		Shell:     tty,
		Generator: bank,
		Solver:    bank,
		Evaluator: eval.Runner{Policy: successor, Vocab: vocab, Factory: factory, Logger: logger},
		Settings: interactive.Settings{
			SaveDir:       resolve(config.KeyModelSaveDir),
			EvalDir:       resolve(config.KeyEvalDataPath),
			InitialReward: rs.initialReward,
			ConfigPath:    c.configPath,
		},
		Store:  store,
		Logger: logger,
		Ring:   lg.Ring,
		RunID:  uuid.NewString(),
		Rand:   rng,
	}

	if rec == nil {
		head, err := actionLog.LastSequence(ctx)
		if err != nil {
			return fmt.Errorf("failed to read action log: %w", err)
		}
		// A fresh session has not seen anything already on the log.
		s.Workspace = factory.New()
		s.Tracker = checkpoint.NewTracker(checkpoint.State{LastSequence: head, Snapshot: s.Workspace.Snapshot()})
		s.Reward = rs.initialReward
		s.Record = &storage.Session{ID: sessionID, CreatedAt: time.Now()}
	} else {
		s.Restore(rec)
	}
	logger.Info("session opened", "session_id", sessionID, "source", string(source), "resumed", rec != nil)

	loadStartupModel(s, successor, rs.autoload, resolve(config.KeyModelLastLoaded), logger)

	if err := tty.EnterRaw(); err != nil {
		return err
	}
	defer func() { _ = tty.Restore() }()
	screen := terminal.NewScreen(stdout)
	defer screen.Close()
	s.Display = screen

	ctrl := &interactive.Controller{Session: s}
	return ctrl.Run(ctx)
}

// loadStartupModel reloads the session's model, or with autoload the last
// loaded one. A failure only logs a warning.
func loadStartupModel(s *interactive.Session, a agent.Agent, autoload bool, lastLoaded string, logger *slog.Logger) {
	name := s.LoadedModel
	if name == "" && autoload {
		name = lastLoaded
	}
	if name == "" {
		return
	}
	if s.Settings.SaveDir == "" {
		logger.Warn("model not loaded: model.save-dir is not set", "name", name)
		s.LoadedModel = ""
		return
	}
	if err := a.Load(filepath.Join(s.Settings.SaveDir, name)); err != nil {
		logger.Warn("model not loaded", "name", name, "error", err)
		s.LoadedModel = ""
		return
	}
	logger.Info("model loaded", "name", name)
	s.LoadedModel = name
}
