package pipeline

import (
	"time"

	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/dotdir"
)

// RecordHistory appends a finished turn to the session history in the
// .kotori/ directory.
func RecordHistory(configDir string, state dialogue.State) error {
	ddm := dotdir.NewManager()
	session, err := ddm.LoadSession(configDir)
	if err != nil {
		return err
	}

	if !session.Append(dotdir.HistoryEntry{
		Query:     state.Input,
		Response:  state.Response,
		Agent:     string(state.Agent),
		Timestamp: time.Now(),
	}) {
		return nil
	}
	return ddm.SaveSession(configDir, session)
}
