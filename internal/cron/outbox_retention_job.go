package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

const (
	defaultOutboxRetention   = 14 * 24 * time.Hour
	defaultOutboxMaxAttempts = 10
)

type OutboxRetentionJobParams struct {
	Logger    *logger.Logger
	Outbox    outboxRetentionStore
	Retention time.Duration
	// MaxAttempts is the publisher's attempt cap; aged rows pinned at the cap
	// were copied to the DLQ and can be pruned with the published ones.
	MaxAttempts int
}

type outboxRetentionStore interface {
	DeletePublishedBefore(cutoff time.Time, minAttempts int) (int64, error)
}

// NewOutboxRetentionJob builds the job that prunes published and dead-lettered
// outbox rows older than the retention window. Pending rows are never touched.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultOutboxRetention
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultOutboxMaxAttempts
	}
	return &outboxRetentionJob{
		logg:        params.Logger,
		outbox:      params.Outbox,
		retention:   retention,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg        *logger.Logger
	outbox      outboxRetentionStore
	retention   time.Duration
	maxAttempts int
	now         func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.outbox.DeletePublishedBefore(cutoff, j.maxAttempts)
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"retention":    j.retention.String(),
		"min_attempts": j.maxAttempts,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "outbox retention cleanup complete")
	return nil
}
