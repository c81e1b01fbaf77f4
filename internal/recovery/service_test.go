package recovery

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
)

type stubLock struct {
	held     bool
	acquired int
	released int
}

func (l *stubLock) Acquire(context.Context) (bool, error) {
	l.acquired++
	return !l.held, nil
}

func (l *stubLock) Release(context.Context) error {
	l.released++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})

	svc, err := NewService(ServiceParams{
		Logger:   logg,
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	require.NoError(t, err)
	return svc
}

func TestRunCycleRunsAllJobs(t *testing.T) {
	lock := &stubLock{}
	first := &countingJob{name: "first"}
	second := &countingJob{name: "second"}
	svc := newTestService(t, lock, first, second)

	require.NoError(t, svc.runCycle(context.Background()))

	assert.Equal(t, 1, first.runs)
	assert.Equal(t, 1, second.runs)
	assert.Equal(t, 1, lock.released)
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	lock := &stubLock{held: true}
	job := &countingJob{name: "only"}
	svc := newTestService(t, lock, job)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Zero(t, job.runs)
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &countingJob{name: "kept"})
	registry.Register(nil)
	assert.Len(t, registry.Jobs(), 1)
}
