package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"TopicTracker/internal/domain"
)

const stateFile = "state.json"

// runState is the persisted incremental-fetch state. Cursors are explicit
// per-source so runs stay independently restartable.
type runState struct {
	Cursors map[string]time.Time `json:"cursors"`
}

func (s *PeriodStore) statePath() string {
	return filepath.Join(s.dir, stateFile)
}

func (s *PeriodStore) loadState() (runState, error) {
	state := runState{Cursors: map[string]time.Time{}}
	raw, err := os.ReadFile(s.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, &domain.StoreError{Op: "read state", Err: err}
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, &domain.StoreError{Op: "decode state", Err: err}
	}
	if state.Cursors == nil {
		state.Cursors = map[string]time.Time{}
	}
	return state, nil
}

// Cursor returns the last successful run time recorded for a source, or nil
// when the source has never completed a run.
func (s *PeriodStore) Cursor(source domain.Source) (*time.Time, error) {
	state, err := s.loadState()
	if err != nil {
		return nil, err
	}
	if t, ok := state.Cursors[string(source)]; ok {
		return &t, nil
	}
	return nil, nil
}

// SetCursor advances the incremental-fetch cursor for a source. Called only
// after the source's items were persisted.
func (s *PeriodStore) SetCursor(source domain.Source, t time.Time) error {
	state, err := s.loadState()
	if err != nil {
		return err
	}
	state.Cursors[string(source)] = t.UTC()
	if err := writeJSONAtomic(s.statePath(), state); err != nil {
		return &domain.StoreError{Op: "write state", Err: err}
	}
	return nil
}
