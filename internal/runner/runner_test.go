package runner

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardops/wardops/internal/store"
)

type fakeStore struct {
	mu        sync.Mutex
	runs      map[string]*store.SimulationRun
	scenarios map[string]*store.Scenario
	progress  []int

	completeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		runs:      make(map[string]*store.SimulationRun),
		scenarios: make(map[string]*store.Scenario),
	}
}

func (f *fakeStore) addScenario(id string, params string) {
	f.scenarios[id] = &store.Scenario{ID: id, Name: id, Parameters: []byte(params)}
}

func (f *fakeStore) addRun(id, scenarioID string) {
	f.runs[id] = &store.SimulationRun{ID: id, ScenarioID: scenarioID, Status: store.RunPending}
}

func (f *fakeStore) GetRun(_ context.Context, id string) (*store.SimulationRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetScenario(_ context.Context, id string) (*store.Scenario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sc, ok := f.scenarios[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (f *fakeStore) MarkRunning(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.runs[id]
	r.Status = store.RunRunning
	r.StartedAt = &at
	return nil
}

func (f *fakeStore) UpdateProgress(_ context.Context, id string, pct int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[id].Progress = pct
	f.progress = append(f.progress, pct)
	return nil
}

func (f *fakeStore) CompleteRun(_ context.Context, id string, metrics, timeseries, bottlenecks []byte, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	r := f.runs[id]
	r.Status = store.RunCompleted
	r.Progress = 100
	r.Metrics = metrics
	r.TimeSeries = timeseries
	r.Bottlenecks = bottlenecks
	r.CompletedAt = &at
	return nil
}

func (f *fakeStore) FailRun(_ context.Context, id, message string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runs[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Status = store.RunFailed
	r.ErrorMessage = &message
	r.CompletedAt = &at
	return nil
}

func newTestRunner(f *fakeStore) *Runner {
	return New(f, 30*time.Second, 42)
}

func TestRunner_Execute_CompletesRun(t *testing.T) {
	f := newFakeStore()
	f.addScenario("sc1", `{}`)
	f.addRun("r1", "sc1")

	require.NoError(t, newTestRunner(f).Execute(context.Background(), "r1"))

	run := f.runs["r1"]
	assert.Equal(t, store.RunCompleted, run.Status)
	assert.Equal(t, 100, run.Progress)
	require.NotNil(t, run.StartedAt)
	require.NotNil(t, run.CompletedAt)

	var metrics map[string]any
	require.NoError(t, json.Unmarshal(run.Metrics, &metrics))
	assert.Greater(t, metrics["total_patients"].(float64), 0.0)
	assert.NotEmpty(t, run.TimeSeries)
	assert.NotEmpty(t, run.Bottlenecks)
}

func TestRunner_Execute_Deterministic(t *testing.T) {
	f := newFakeStore()
	f.addScenario("sc1", `{"seed": 7}`)
	f.addRun("r1", "sc1")
	f.addRun("r2", "sc1")

	r := newTestRunner(f)
	require.NoError(t, r.Execute(context.Background(), "r1"))
	require.NoError(t, r.Execute(context.Background(), "r2"))

	assert.JSONEq(t, string(f.runs["r1"].Metrics), string(f.runs["r2"].Metrics))
	assert.JSONEq(t, string(f.runs["r1"].Bottlenecks), string(f.runs["r2"].Bottlenecks))
}

func TestRunner_Execute_ProgressPersisted(t *testing.T) {
	f := newFakeStore()
	f.addScenario("sc1", `{}`)
	f.addRun("r1", "sc1")

	require.NoError(t, newTestRunner(f).Execute(context.Background(), "r1"))

	require.NotEmpty(t, f.progress)
	for i := 1; i < len(f.progress); i++ {
		assert.Greater(t, f.progress[i], f.progress[i-1])
	}
	for _, pct := range f.progress {
		assert.True(t, pct%progressPersistStep == 0 || pct == 100, "unexpected tick %d", pct)
	}
}

func TestRunner_Execute_MissingRun(t *testing.T) {
	f := newFakeStore()
	err := newTestRunner(f).Execute(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunner_Execute_MissingScenarioFailsRun(t *testing.T) {
	f := newFakeStore()
	f.addRun("r1", "ghost")

	err := newTestRunner(f).Execute(context.Background(), "r1")
	require.Error(t, err)

	run := f.runs["r1"]
	assert.Equal(t, store.RunFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "ghost")
}

func TestRunner_Execute_InvalidParametersFailRun(t *testing.T) {
	f := newFakeStore()
	f.addScenario("sc1", `{"arrival_multiplier": 99}`)
	f.addRun("r1", "sc1")

	err := newTestRunner(f).Execute(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, store.RunFailed, f.runs["r1"].Status)
	assert.Contains(t, *f.runs["r1"].ErrorMessage, "arrival_multiplier")
}

func TestRunner_Execute_EngineFaultFailsRun(t *testing.T) {
	f := newFakeStore()
	f.addScenario("sc1", `{"inject_fault_at_minutes": 60}`)
	f.addRun("r1", "sc1")

	err := newTestRunner(f).Execute(context.Background(), "r1")
	require.Error(t, err)

	run := f.runs["r1"]
	assert.Equal(t, store.RunFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "injected fault")
	assert.Less(t, run.Progress, 100)
	require.NotNil(t, run.CompletedAt)
}

func TestRunner_Execute_TimeoutFailsRun(t *testing.T) {
	f := newFakeStore()
	f.addScenario("sc1", `{}`)
	f.addRun("r1", "sc1")

	r := New(f, time.Nanosecond, 42)
	err := r.Execute(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, store.RunFailed, f.runs["r1"].Status)
	assert.Contains(t, *f.runs["r1"].ErrorMessage, "wall-clock")
}

func TestRunner_Execute_SkipsTerminalRun(t *testing.T) {
	f := newFakeStore()
	f.addScenario("sc1", `{}`)
	f.addRun("r1", "sc1")
	f.runs["r1"].Status = store.RunCompleted

	require.NoError(t, newTestRunner(f).Execute(context.Background(), "r1"))
	assert.Equal(t, store.RunCompleted, f.runs["r1"].Status)
}

func TestRunner_Execute_DiscardsResultWhenRunLeftRunning(t *testing.T) {
	// GIVEN a store that refuses the completion (concurrent cancel)
	f := newFakeStore()
	f.addScenario("sc1", `{}`)
	f.addRun("r1", "sc1")
	f.completeErr = store.ErrNotFound

	// THEN the runner drops the result without surfacing an error
	require.NoError(t, newTestRunner(f).Execute(context.Background(), "r1"))
	assert.Equal(t, store.RunRunning, f.runs["r1"].Status)
	assert.Empty(t, f.runs["r1"].Metrics)
}
