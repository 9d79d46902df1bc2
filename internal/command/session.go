package command

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/joeycumines/clica/internal/config"
	"github.com/joeycumines/clica/internal/session"
	"github.com/joeycumines/clica/internal/storage"
)

// SessionCommand inspects and removes stored sessions.
type SessionCommand struct {
	*BaseCommand
	config *config.Config
	format string
}

// NewSessionCommand creates a new session command.
func NewSessionCommand(cfg *config.Config) *SessionCommand {
	return &SessionCommand{
		BaseCommand: NewBaseCommand(
			"session",
			"Manage stored sessions",
			"session [options] <list|delete|path|id> [args...]",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the session command.
func (c *SessionCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "text", "Output format for list: text|json")
}

// Execute runs one subcommand.
func (c *SessionCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		return c.list(stdout)
	case "id":
		// The environment override is applied by session.ID itself.
		explicit, _ := c.config.GetGlobalOption(config.KeySessionID)
		id, source := session.ID(explicit)
		_, _ = fmt.Fprintf(stdout, "%s\t(%s)\n", id, source)
		return nil
	case "path":
		if len(args) != 2 {
			return fmt.Errorf("usage: session path <id>")
		}
		p, err := storage.SessionFilePath(args[1])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout, p)
		return nil
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: session delete <id>...")
		}
		var failed int
		for _, id := range args[1:] {
			if err := storage.DeleteSession(id); err != nil {
				_, _ = fmt.Fprintf(stderr, "%s: %v\n", id, err)
				failed++
				continue
			}
			_, _ = fmt.Fprintln(stdout, "deleted", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d session(s) not deleted", failed)
		}
		return nil
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (c *SessionCommand) list(w io.Writer) error {
	if c.format != "text" && c.format != "json" {
		return fmt.Errorf("invalid format: %q", c.format)
	}
	infos, err := storage.ScanSessions()
	if err != nil {
		return err
	}
	if c.format == "json" {
		if infos == nil {
			infos = []storage.SessionInfo{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	if len(infos) == 0 {
		_, _ = fmt.Fprintln(w, "No sessions found")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tUPDATED\tREWARD\tMODEL\tSTATUS")
	for _, si := range infos {
		status := "idle"
		if si.Active {
			status = "active"
		}
		model := si.LoadedModel
		if model == "" {
			model = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", si.ID, si.UpdatedAt.Format(time.RFC3339), si.Reward, model, status)
	}
	return tw.Flush()
}
