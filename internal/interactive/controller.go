package interactive

import (
	"context"
)

// Controller drives the state table until a state yields StateNone.
type Controller struct {
	Session *Session
	// Start is the first state, StateMenu when zero.
	Start StateID
}

// Run renders the current state, runs one cycle of it and moves to its
// successor, persisting the session after every transition. Errors that
// escape a state end the run.
func (c *Controller) Run(ctx context.Context) error {
	s := c.Session
	id := c.Start
	if id == StateNone {
		id = StateMenu
	}
	s.Logger.Info("session started", "run_id", s.RunID, "state", id.String())
	for id != StateNone {
		next, err := Step(ctx, s, id)
		if perr := s.persist(); perr != nil {
			s.Logger.Warn("session not saved", "error", perr)
		}
		if err != nil {
			s.Logger.Error("session failed", "state", id.String(), "error", err)
			return err
		}
		if next != id {
			s.Logger.Debug("transition", "from", id.String(), "to", next.String())
		}
		id = next
	}
	s.Logger.Info("session ended", "run_id", s.RunID)
	return nil
}
