package interactive

import (
	"context"
	"fmt"
)

// executeTrain replays the actions logged since the last checkpoint. A
// failed training leaves the checkpoint where it was.
func executeTrain(ctx context.Context, s *Session) (StateID, error) {
	res, err := s.Tracker.Train(ctx, s.Log, s.Agent, s.Workspace)
	if err != nil {
		return StateMenu, s.showError(ctx, StateTrain, err.Error())
	}
	if !res.Trained {
		s.notice = "Nothing new to train on"
		return StateMenu, nil
	}
	s.Logger.Info("trained", "replayed", res.Replayed, "from", res.From, "to", res.To)
	s.notice = fmt.Sprintf("Trained on %d actions (#%d to #%d)", res.Replayed, res.From+1, res.To)
	return StateMenu, nil
}

func executeReset(ctx context.Context, s *Session) (StateID, error) {
	if err := s.reset(ctx); err != nil {
		return StateMenu, err
	}
	s.Logger.Info("session reset", "checkpoint", s.Tracker.LastSequence())
	s.notice = "Session reset"
	return StateMenu, nil
}
