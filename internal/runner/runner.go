// Package runner executes simulation runs against the store. It is the
// only place engine faults are caught: every failure path ends in a
// terminal run row, never a propagated panic.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wardops/wardops/internal/store"
	"github.com/wardops/wardops/sim"
)

// Store is the slice of the persistence layer the runner needs.
type Store interface {
	GetRun(ctx context.Context, id string) (*store.SimulationRun, error)
	GetScenario(ctx context.Context, id string) (*store.Scenario, error)
	MarkRunning(ctx context.Context, id string, at time.Time) error
	UpdateProgress(ctx context.Context, id string, pct int) error
	CompleteRun(ctx context.Context, id string, metrics, timeseries, bottlenecks []byte, at time.Time) error
	FailRun(ctx context.Context, id, message string, at time.Time) error
}

// progressPersistStep throttles progress writes to every fifth percent.
const progressPersistStep = 5

// Runner executes one run at a time. It is safe to share across
// goroutines; each Execute call is independent.
type Runner struct {
	store       Store
	timeout     time.Duration
	defaultSeed int64

	now func() time.Time
}

// New builds a runner. timeout is the wall-clock cap per run.
func New(st Store, timeout time.Duration, defaultSeed int64) *Runner {
	return &Runner{store: st, timeout: timeout, defaultSeed: defaultSeed, now: time.Now}
}

type engineOutput struct {
	result *sim.Result
	err    error
}

// Execute loads the run and its scenario, drives the engine to
// completion, and persists the terminal state. The returned error mirrors
// what was written to the run row; callers log it but never retry.
func (r *Runner) Execute(ctx context.Context, runID string) error {
	log := logrus.WithField("run_id", runID)

	run, err := r.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	if store.TerminalRunStatus(run.Status) {
		log.WithField("status", run.Status).Warn("run already terminal, skipping")
		return nil
	}

	scenario, err := r.store.GetScenario(ctx, run.ScenarioID)
	if err != nil {
		return r.fail(ctx, runID, fmt.Sprintf("scenario %s unavailable: %v", run.ScenarioID, err))
	}

	var rawParams map[string]any
	if len(scenario.Parameters) > 0 {
		if err := json.Unmarshal(scenario.Parameters, &rawParams); err != nil {
			return r.fail(ctx, runID, fmt.Sprintf("malformed scenario parameters: %v", err))
		}
	}
	params, err := sim.ParamsFromMap(rawParams)
	if err != nil {
		return r.fail(ctx, runID, fmt.Sprintf("invalid scenario parameters: %v", err))
	}

	seed := r.defaultSeed
	if params.Seed != nil {
		seed = *params.Seed
	}
	engine, err := sim.NewEngine(params, seed)
	if err != nil {
		return r.fail(ctx, runID, err.Error())
	}

	if err := r.store.MarkRunning(ctx, runID, r.now()); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}
	log.WithFields(logrus.Fields{"scenario_id": run.ScenarioID, "seed": seed}).Info("run started")
	runsStarted.Inc()
	startedAt := r.now()

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The engine never blocks on the progress callback: ticks go through
	// a buffered channel with a non-blocking send and a drainer persists
	// the latest value.
	progressCh := make(chan int, 1)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for pct := range progressCh {
			if pct%progressPersistStep != 0 && pct != 100 {
				continue
			}
			if err := r.store.UpdateProgress(runCtx, runID, pct); err != nil {
				log.WithError(err).Warn("progress write failed")
			}
		}
	}()

	out := make(chan engineOutput, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				out <- engineOutput{err: fmt.Errorf("engine panic: %v", rec)}
			}
		}()
		result, err := engine.Run(func(pct int) {
			select {
			case progressCh <- pct:
			default:
			}
		})
		out <- engineOutput{result: result, err: err}
	}()

	var res engineOutput
	select {
	case res = <-out:
	case <-runCtx.Done():
		close(progressCh)
		<-drained
		return r.fail(ctx, runID, fmt.Sprintf("simulation exceeded %s wall-clock limit", r.timeout))
	}
	close(progressCh)
	<-drained

	if res.err != nil {
		return r.fail(ctx, runID, res.err.Error())
	}
	return r.complete(ctx, runID, res.result, startedAt, log)
}

func (r *Runner) complete(ctx context.Context, runID string, result *sim.Result, startedAt time.Time, log *logrus.Entry) error {
	metrics, err := json.Marshal(result.Metrics)
	if err != nil {
		return r.fail(ctx, runID, fmt.Sprintf("encode metrics: %v", err))
	}
	timeseries, err := json.Marshal(result.TimeSeries)
	if err != nil {
		return r.fail(ctx, runID, fmt.Sprintf("encode timeseries: %v", err))
	}
	bottlenecks, err := json.Marshal(result.Bottlenecks)
	if err != nil {
		return r.fail(ctx, runID, fmt.Sprintf("encode bottlenecks: %v", err))
	}

	if err := r.store.CompleteRun(ctx, runID, metrics, timeseries, bottlenecks, r.now()); err != nil {
		// The run left the running state meanwhile (a concurrent
		// cancel); the result is discarded.
		log.WithError(err).Warn("run no longer running, result discarded")
		return nil
	}
	runsCompleted.Inc()
	runDuration.Observe(r.now().Sub(startedAt).Seconds())
	log.WithField("total_patients", result.Metrics.TotalPatients).Info("run completed")
	return nil
}

// fail writes the terminal failed state and echoes the message as the
// returned error.
func (r *Runner) fail(ctx context.Context, runID, message string) error {
	runsFailed.Inc()
	if err := r.store.FailRun(ctx, runID, message, r.now()); err != nil {
		logrus.WithError(err).WithField("run_id", runID).Error("could not mark run failed")
	}
	return fmt.Errorf("run %s failed: %s", runID, message)
}
