package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/events"
)

// PayoutReminderJob is the job name reported to metrics.
const PayoutReminderJob = "payout_reminder"

// DueLister finds events whose payout date has arrived but are not yet paid.
type DueLister interface {
	ListPayoutsDue(ctx context.Context, asOf time.Time) ([]domain.Event, error)
}

// JobRecorder counts job executions.
type JobRecorder interface {
	RecordJobRun(job string)
}

// PayoutReminder publishes a payout_due event for every overdue payout.
type PayoutReminder struct {
	events     DueLister
	dispatcher events.Dispatcher
	metrics    JobRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewPayoutReminder builds the job.
func NewPayoutReminder(lister DueLister, dispatcher events.Dispatcher, metrics JobRecorder, logger *zap.Logger) *PayoutReminder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayoutReminder{
		events:     lister,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// RunOnce checks payouts due as of now and returns how many reminders were published.
func (p *PayoutReminder) RunOnce(ctx context.Context, now time.Time) (int, error) {
	if p.metrics != nil {
		p.metrics.RecordJobRun(PayoutReminderJob)
	}
	asOf := domain.DateOf(now.UTC())
	due, err := p.events.ListPayoutsDue(ctx, asOf)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range due {
		ev := &due[i]
		reminder := events.New(events.EventPayoutDue, domain.EntityEvent, ev.ID, domain.Actor{}, events.EventPayload{
			Name:        ev.Name,
			Status:      ev.Status,
			EventDate:   domain.FormatDate(ev.EventDate),
			PayoutDate:  domain.FormatDate(ev.PayoutDate),
			TotalPayout: ev.TotalPayout,
		})
		if p.dispatcher != nil {
			if err := p.dispatcher.Publish(ctx, reminder); err != nil {
				p.logger.Warn("payout reminder delivery failed", zap.String("event_id", ev.ID), zap.Error(err))
				continue
			}
		}
		sent++
	}
	p.logger.Info("payout reminder run",
		zap.String("as_of", domain.FormatDate(asOf)),
		zap.Int("due", len(due)),
		zap.Int("sent", sent))
	return sent, nil
}

// Run schedules RunOnce every interval until ctx is cancelled.
func (p *PayoutReminder) Run(ctx context.Context, interval time.Duration) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := p.RunOnce(ctx, p.now()); err != nil {
				p.logger.Error("payout reminder failed", zap.Error(err))
			}
		}),
		gocron.WithName(PayoutReminderJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return err
	}

	p.logger.Info("payout reminder scheduled", zap.Duration("interval", interval))
	scheduler.Start()
	<-ctx.Done()
	return scheduler.Shutdown()
}
