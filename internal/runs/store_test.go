package runs

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkmathur/partsrecon/constants"
	"github.com/nkmathur/partsrecon/internal/pipeline"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(time.Minute)
	id := uuid.New()

	s.Put(Run{ID: id, Status: constants.RunStatusQueued, SubmittedAt: time.Now().UTC()})

	run, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, constants.RunStatusQueued, run.Status)

	s.MarkRunning(id)
	run, _ = s.Get(id)
	assert.Equal(t, constants.RunStatusRunning, run.Status)

	s.Finish(id, &pipeline.CompareResult{ID: id}, nil)
	run, _ = s.Get(id)
	assert.Equal(t, constants.RunStatusDone, run.Status)
	require.NotNil(t, run.Result)
	require.NotNil(t, run.FinishedAt)
}

func TestStoreFinishWithError(t *testing.T) {
	s := NewStore(time.Minute)
	id := uuid.New()
	s.Put(Run{ID: id, Status: constants.RunStatusQueued})

	s.Finish(id, nil, errors.New("boom"))

	run, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, constants.RunStatusFailed, run.Status)
	assert.Equal(t, "boom", run.Error)
	assert.Nil(t, run.Result)
}

func TestStoreUnknownRun(t *testing.T) {
	s := NewStore(time.Minute)
	_, ok := s.Get(uuid.New())
	assert.False(t, ok)

	// No panic on unknown IDs.
	s.MarkRunning(uuid.New())
	s.Finish(uuid.New(), nil, nil)
}
