package command

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/joeycumines/clica/internal/config"
	"github.com/joeycumines/clica/internal/storage"
)

// LogCommand prints action log entries.
type LogCommand struct {
	*BaseCommand
	config *config.Config
	after  int64
	limit  int
	json   bool

	// openLog is replaced in tests.
	openLog func() (storage.ActionLog, error)
}

// NewLogCommand creates a new log command reading the configured action log.
func NewLogCommand(cfg *config.Config) *LogCommand {
	c := &LogCommand{
		BaseCommand: NewBaseCommand(
			"log",
			"Print recorded actions from the action log",
			"log [options]",
		),
		config: cfg,
	}
	c.openLog = c.openConfiguredLog
	return c
}

// SetupFlags configures the flags for the log command.
func (c *LogCommand) SetupFlags(fs *flag.FlagSet) {
	fs.Int64Var(&c.after, "after", 0, "Only print entries with a sequence id above this")
	fs.IntVar(&c.limit, "limit", 0, "Print at most this many entries, the newest (0 for all)")
	fs.BoolVar(&c.json, "json", false, "Print one JSON object per entry")
}

func (c *LogCommand) openConfiguredLog() (storage.ActionLog, error) {
	schema := config.DefaultSchema()
	return storage.OpenLog(
		schema.Resolve(c.config, config.KeyActionLogBackend),
		schema.Resolve(c.config, config.KeyActionLogPath),
	)
}

// Execute prints the entries.
func (c *LogCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	if c.limit < 0 {
		return fmt.Errorf("invalid limit: %d", c.limit)
	}
	l, err := c.openLog()
	if err != nil {
		return err
	}
	defer l.Close()

	entries, err := l.EntriesAfter(context.Background(), c.after)
	if err != nil {
		return fmt.Errorf("read action log: %w", err)
	}
	if c.limit > 0 && len(entries) > c.limit {
		entries = entries[len(entries)-c.limit:]
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(stdout, "No entries")
		return nil
	}
	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEQ\tTIME\tSOURCE\tKIND\tACTION\tPAYLOAD")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			e.Seq, e.Time.Format(time.RFC3339), e.Source, e.Kind, e.ActionID, strconv.Quote(e.Payload))
	}
	return w.Flush()
}
