package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"orders/internal/core/domain/model/outbox"
	"orders/internal/core/ports"
	"orders/internal/pkg/relaymetrics"

	"github.com/robfig/cron/v3"
)

const (
	// baseCoolDown is the pause after the first failed pass; each further
	// consecutive failure doubles it up to maxCoolDown.
	baseCoolDown = time.Second
	maxCoolDown  = 30 * time.Second
)

// OutboxRelayJob drains pending outbox rows to the event sink.
//
// Each pass claims a bounded batch of unpublished rows inside one
// transaction (FOR UPDATE SKIP LOCKED, so concurrent instances work on
// disjoint batches), publishes them oldest first, and latches published_at
// on each success. A publish failure stops the pass: the commit still
// latches the rows already published, the failed row and its successors
// stay pending for a later pass. Rows are never deleted.
//
// Delivery is therefore at-least-once. A crash between publish and commit
// redelivers the batch; the envelope id equals the outbox row id, so
// consumers can dedupe redeliveries.
type OutboxRelayJob struct {
	uowFactory ports.UnitOfWorkFactory
	publisher  ports.EventPublisher
	metrics    *relaymetrics.Metrics
	batchSize  int
	cron       *cron.Cron
	logger     *slog.Logger

	mu                  sync.Mutex
	consecutiveFailures int
	coolDownUntil       time.Time
}

// NewOutboxRelayJob creates the relay. batchSize bounds how many rows a
// single pass claims.
func NewOutboxRelayJob(
	uowFactory ports.UnitOfWorkFactory,
	publisher ports.EventPublisher,
	metrics *relaymetrics.Metrics,
	batchSize int,
	logger *slog.Logger,
) *OutboxRelayJob {
	return &OutboxRelayJob{
		uowFactory: uowFactory,
		publisher:  publisher,
		metrics:    metrics,
		batchSize:  batchSize,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "outbox_relay_job"),
	}
}

// Start begins the relay, running a pass every second.
func (j *OutboxRelayJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", j.tick)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started (running every second)",
		"batch_size", j.batchSize)
	return nil
}

// Stop stops the relay. The in-flight pass finishes; rows are only latched
// inside the pass's transaction, so stopping never loses or duplicates a
// latch.
func (j *OutboxRelayJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}

func (j *OutboxRelayJob) tick() {
	ctx := context.Background()

	if j.inCoolDown(time.Now()) {
		return
	}

	if err := j.RunOnce(ctx); err != nil {
		coolDown := j.recordFailure(time.Now())
		j.logger.ErrorContext(ctx, "Outbox relay pass failed",
			"error", err, "cool_down", coolDown)
		return
	}

	j.recordSuccess()
}

// RunOnce executes a single relay pass. Exposed for tests and for one-shot
// draining during shutdown.
func (j *OutboxRelayJob) RunOnce(ctx context.Context) error {
	uow := j.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	messages, err := uow.OutboxRepository().GetBatchForPublish(ctx, j.batchSize)
	if err != nil {
		return err
	}

	j.metrics.Backlog.Set(float64(len(messages)))

	if len(messages) == 0 {
		return uow.Commit(ctx)
	}

	publishErr := j.publishBatch(ctx, uow, messages)

	// Commit regardless: latches for the rows already published must land
	// even when a later row failed, or they would be redelivered.
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return publishErr
}

// publishBatch publishes messages oldest first, latching each success in the
// pass's transaction. Returns the first failure, leaving successors pending.
func (j *OutboxRelayJob) publishBatch(ctx context.Context, uow ports.UnitOfWork, messages []*outbox.Message) error {
	for _, message := range messages {
		now := time.Now().UTC()

		envelope, err := outbox.NewEnvelope(message, now)
		if err != nil {
			return err
		}

		if err = j.publisher.Publish(ctx, envelope); err != nil {
			j.metrics.Failures.Inc()
			return err
		}

		if err = message.MarkPublished(now); err != nil {
			return err
		}

		if err = uow.OutboxRepository().MarkPublished(ctx, message); err != nil {
			return err
		}

		j.metrics.Published.Inc()
	}

	return nil
}

func (j *OutboxRelayJob) inCoolDown(now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return now.Before(j.coolDownUntil)
}

func (j *OutboxRelayJob) recordFailure(now time.Time) time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()

	coolDown := maxCoolDown
	if j.consecutiveFailures < 5 {
		coolDown = baseCoolDown << j.consecutiveFailures
	}

	j.consecutiveFailures++
	j.coolDownUntil = now.Add(coolDown)
	return coolDown
}

func (j *OutboxRelayJob) recordSuccess() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.consecutiveFailures = 0
	j.coolDownUntil = time.Time{}
}
