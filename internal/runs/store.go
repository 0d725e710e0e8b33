// Package runs keeps completed and in-flight comparison runs in memory so
// the front end can poll for status and fetch exports. Entries expire; this
// is per-session state, not a history of comparisons.
package runs

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/nkmathur/partsrecon/constants"
	"github.com/nkmathur/partsrecon/internal/pipeline"
)

// Run is one tracked comparison.
type Run struct {
	ID          uuid.UUID               `json:"id"`
	Status      constants.RunStatus     `json:"status"`
	Result      *pipeline.CompareResult `json:"result,omitempty"`
	Error       string                  `json:"error,omitempty"`
	SubmittedAt time.Time               `json:"submitted_at"`
	FinishedAt  *time.Time              `json:"finished_at,omitempty"`
}

type Store struct {
	c *cache.Cache
}

// NewStore creates a store whose entries expire ttl after their last write.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{c: cache.New(ttl, ttl/2)}
}

func (s *Store) Put(run Run) {
	s.c.Set(run.ID.String(), run, cache.DefaultExpiration)
}

func (s *Store) Get(id uuid.UUID) (Run, bool) {
	v, ok := s.c.Get(id.String())
	if !ok {
		return Run{}, false
	}
	run, ok := v.(Run)
	return run, ok
}

// MarkRunning transitions a run to RUNNING if it is still tracked.
func (s *Store) MarkRunning(id uuid.UUID) {
	if run, ok := s.Get(id); ok {
		run.Status = constants.RunStatusRunning
		s.Put(run)
	}
}

// Finish records the terminal state of a run.
func (s *Store) Finish(id uuid.UUID, result *pipeline.CompareResult, err error) {
	run, ok := s.Get(id)
	if !ok {
		return
	}
	now := time.Now().UTC()
	run.FinishedAt = &now
	if err != nil {
		run.Status = constants.RunStatusFailed
		run.Error = err.Error()
	} else {
		run.Status = constants.RunStatusDone
		run.Result = result
	}
	s.Put(run)
}
