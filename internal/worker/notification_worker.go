package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"staybook/internal/domain"
	"staybook/internal/events"
	"staybook/internal/metrics"

	"github.com/rs/zerolog"
)

var ErrQueueFull = errors.New("notification queue is full")

type task struct {
	eventType string
	review    events.ReviewEventPayload
	booking   events.BookingEventPayload
}

func (t task) id() string {
	if t.eventType == events.EventReviewCreated {
		return t.review.ReviewID
	}
	return t.booking.BookingID
}

// NotificationWorker delivers review and booking notifications off the
// request path. Tasks live in memory only; a restart drops whatever is
// still queued.
type NotificationWorker struct {
	notifier    domain.Notifier
	retryPolicy RetryPolicy
	queue       chan task
	logger      *zerolog.Logger
	wg          sync.WaitGroup
}

func NewNotificationWorker(notifier domain.Notifier, retry RetryPolicy, logger *zerolog.Logger) *NotificationWorker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &NotificationWorker{
		notifier:    notifier,
		retryPolicy: retry.withDefaults(),
		queue:       make(chan task, 128),
		logger:      logger,
	}
}

// Enqueue schedules a review notification without blocking.
func (w *NotificationWorker) Enqueue(review events.ReviewEventPayload) error {
	return w.enqueue(task{eventType: events.EventReviewCreated, review: review})
}

func (w *NotificationWorker) enqueue(t task) error {
	select {
	case w.queue <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// HandleEvent adapts the worker to an events.EventBus subscription.
func (w *NotificationWorker) HandleEvent(event *events.Event) error {
	t := task{eventType: event.Type}
	switch event.Type {
	case events.EventReviewCreated:
		if err := event.Decode(&t.review); err != nil {
			return err
		}
	case events.EventBookingCreated, events.EventBookingPaid:
		if err := event.Decode(&t.booking); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported event type %q", event.Type)
	}
	return w.enqueue(t)
}

// Start launches the consume loop in its own goroutine. Wait returns once
// ctx is done and the in-flight task has finished.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Wait blocks until the loop started by Start has returned.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()

	w.logger.Info().Msg("Notification worker started")
	defer w.logger.Info().Msg("Notification worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-w.queue:
			w.process(ctx, t)
		}
	}
}

func (w *NotificationWorker) process(ctx context.Context, t task) {
	err := w.retryPolicy.Do(ctx, func(ctx context.Context) error {
		if t.eventType == events.EventReviewCreated {
			return w.notifier.NotifyReview(ctx, t.review)
		}
		return w.notifier.NotifyBooking(ctx, t.eventType, t.booking)
	})
	if err != nil {
		metrics.IncNotificationFailure()
		w.logger.Error().Err(err).Str("event_type", t.eventType).Str("id", t.id()).Msg("Notification dropped")
		return
	}
	w.logger.Debug().Str("event_type", t.eventType).Str("id", t.id()).Msg("Notification sent")
}
