package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeExpireSweep marks medications whose expiration or end date passed
const TypeExpireSweep = "medication:expire-sweep"

// Sweeper flags expired medications and reports how many changed
type Sweeper interface {
	MarkExpired(ctx context.Context) (int, error)
}

// SweepPayload records why a sweep was queued
type SweepPayload struct {
	Reason string `json:"reason"`
}

type JobServer struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	client    *asynq.Client
	sweeper   Sweeper
	cron      string
	log       *zap.Logger
}

// NewJobServer prepares the worker and, when cron is set, the periodic
// sweep scheduler
func NewJobServer(redisAddr string, sweeper Sweeper, cron string, log *zap.Logger) (*JobServer, *asynq.Client) {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	client := asynq.NewClient(redisOpt)

	var scheduler *asynq.Scheduler
	if cron != "" {
		scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
	}

	return &JobServer{
		server:    server,
		scheduler: scheduler,
		client:    client,
		sweeper:   sweeper,
		cron:      cron,
		log:       log,
	}, client
}

func (js *JobServer) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExpireSweep, js.handleExpireSweep)

	if err := js.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}

	if js.scheduler != nil {
		task, err := NewExpireSweepTask("schedule")
		if err != nil {
			return err
		}
		entryID, err := js.scheduler.Register(js.cron, task)
		if err != nil {
			return fmt.Errorf("failed to register sweep schedule %q: %w", js.cron, err)
		}
		if err := js.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		js.log.Info("Expiry sweep scheduled", zap.String("cron", js.cron), zap.String("entry_id", entryID))
	}
	return nil
}

func (js *JobServer) Stop() {
	if js.scheduler != nil {
		js.scheduler.Shutdown()
	}
	js.server.Shutdown()
	js.client.Close()
}

func (js *JobServer) handleExpireSweep(ctx context.Context, t *asynq.Task) error {
	var payload SweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			// A malformed payload will never succeed.
			return fmt.Errorf("invalid sweep payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	count, err := js.sweeper.MarkExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep expired medications: %w", err)
	}

	js.log.Info("Expiry sweep finished",
		zap.String("reason", payload.Reason),
		zap.Int("expired", count))
	return nil
}

// NewExpireSweepTask builds a sweep task
func NewExpireSweepTask(reason string) (*asynq.Task, error) {
	payload, err := json.Marshal(SweepPayload{Reason: reason})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sweep payload: %w", err)
	}
	return asynq.NewTask(TypeExpireSweep, payload), nil
}

// EnqueueExpireSweep queues an immediate sweep. Requests within the same
// minute collapse into one task.
func EnqueueExpireSweep(client *asynq.Client, reason string) error {
	task, err := NewExpireSweepTask(reason)
	if err != nil {
		return err
	}
	_, err = client.Enqueue(task, asynq.Unique(time.Minute))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// RunStartupSweep runs one sweep in process before the server accepts
// traffic
func RunStartupSweep(ctx context.Context, sweeper Sweeper, log *zap.Logger) {
	count, err := sweeper.MarkExpired(ctx)
	if err != nil {
		log.Warn("Startup expiry sweep failed", zap.Error(err))
		return
	}
	log.Info("Startup expiry sweep finished", zap.Int("expired", count))
}
