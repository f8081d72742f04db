package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// QueueKey is the Redis list carrying pending simulation jobs.
const QueueKey = "wardops:simulations"

// popTimeout bounds each blocking pop so workers notice shutdown.
const popTimeout = 5 * time.Second

// Job is one queued unit of work.
type Job struct {
	RunID      string `json:"run_id"`
	ScenarioID string `json:"scenario_id"`
}

// Dispatcher pushes jobs onto the queue from the API process.
type Dispatcher struct {
	client *redis.Client
}

// NewDispatcher connects to Redis. A nil return with error means the API
// should fall back to in-process execution.
func NewDispatcher(redisURL string) (*Dispatcher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Dispatcher{client: client}, nil
}

// Enqueue pushes one job.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := d.client.LPush(ctx, QueueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	jobsDispatched.Inc()
	return nil
}

// Close releases the Redis connection.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}

// Worker consumes jobs and executes them one at a time. Runs in its own
// process; state is shared with the API only through the database.
type Worker struct {
	client *redis.Client
	runner *Runner
}

// NewWorker connects a worker to the queue.
func NewWorker(redisURL string, r *Runner) (*Worker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Worker{client: client, runner: r}, nil
}

// Run blocks consuming jobs until the context is cancelled. Job failures
// are terminal on the run row and never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	logrus.WithField("queue", QueueKey).Info("worker consuming")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := w.client.BRPop(ctx, popTimeout, QueueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logrus.WithError(err).Warn("queue pop failed, retrying")
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}
		jobsConsumed.Inc()

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			logrus.WithError(err).Error("malformed job payload dropped")
			continue
		}
		if err := w.runner.Execute(ctx, job.RunID); err != nil {
			logrus.WithError(err).WithField("run_id", job.RunID).Error("run failed")
		}
	}
}

// Close releases the Redis connection.
func (w *Worker) Close() error {
	return w.client.Close()
}
