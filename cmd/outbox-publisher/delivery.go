package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/outbox/registry"
)

type deliveryStatus int

const (
	// statusHeld leaves the row untouched so a later batch retries it in cart order.
	statusHeld deliveryStatus = iota
	statusPublished
	statusRetry
	statusDeadLetter
)

type delivery struct {
	event  models.OutboxEvent
	status deliveryStatus
	topic  string
	reason enums.OutboxDLQErrorReason
	err    error
	fields map[string]any
}

// processBatch locks a batch, publishes each cart's events in order with carts
// fanned out concurrently, then records every outcome in the same transaction.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		processed = true

		deliveries := make([]delivery, len(events))
		for i, event := range events {
			deliveries[i] = delivery{event: event, status: statusHeld}
		}

		g := new(errgroup.Group)
		g.SetLimit(s.concurrency)
		for _, idxs := range groupByCart(events) {
			g.Go(func() error {
				s.deliverCart(ctx, deliveries, idxs)
				return nil
			})
		}
		_ = g.Wait()

		for i := range deliveries {
			if err := s.record(ctx, tx, &deliveries[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

// groupByCart returns event indexes per aggregate, preserving fetch order.
func groupByCart(events []models.OutboxEvent) [][]int {
	pos := map[uuid.UUID]int{}
	var groups [][]int
	for i, event := range events {
		g, ok := pos[event.AggregateID]
		if !ok {
			g = len(groups)
			pos[event.AggregateID] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// deliverCart publishes one cart's events sequentially. After a retryable
// failure the remaining events of that cart are held.
func (s *Service) deliverCart(ctx context.Context, deliveries []delivery, idxs []int) {
	for _, i := range idxs {
		d := &deliveries[i]
		s.deliver(ctx, d)
		if d.status == statusRetry {
			return
		}
	}
}

func (s *Service) deliver(ctx context.Context, d *delivery) {
	resolved, err := s.registry.Resolve(d.event)
	if err != nil {
		d.status, d.reason, d.err = statusDeadLetter, enums.OutboxDLQReasonNonRetryable, err
		d.fields = s.eventFields(d.event, nil)
		return
	}
	d.topic = resolved.Descriptor.Topic
	d.fields = s.eventFields(d.event, resolved)

	err = s.publishResolved(ctx, d.event, resolved)
	var nonRetry registry.NonRetryableError
	switch {
	case err == nil:
		d.status = statusPublished
	case errors.As(err, &nonRetry):
		d.status, d.reason, d.err = statusDeadLetter, enums.OutboxDLQReasonNonRetryable, err
	case d.event.AttemptCount+1 >= s.maxAttempts:
		d.status, d.reason = statusDeadLetter, enums.OutboxDLQReasonMaxAttempts
		d.err = fmt.Errorf("max publish attempts reached: %w", err)
	default:
		d.status, d.err = statusRetry, err
	}
}

func (s *Service) record(ctx context.Context, tx *gorm.DB, d *delivery) error {
	eventType := string(d.event.EventType)
	switch d.status {
	case statusPublished:
		if err := s.repo.MarkPublishedTx(tx, d.event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", d.event.ID, err)
		}
		s.metrics.IncPublished(eventType)
		s.logg.Info(s.logg.WithFields(ctx, d.fields), "outbox event published")
	case statusRetry:
		d.fields["attempt_count"] = d.event.AttemptCount + 1
		logCtx := s.logg.WithField(s.logg.WithFields(ctx, d.fields), "error", d.err.Error())
		s.logg.Warn(logCtx, "outbox publish failed")
		s.metrics.IncFailed(eventType)
		if err := s.repo.MarkFailedTx(tx, d.event.ID, d.err); err != nil {
			return fmt.Errorf("mark failure %s: %w", d.event.ID, err)
		}
	case statusDeadLetter:
		return s.deadLetter(ctx, tx, d)
	case statusHeld:
		s.logg.Debug(s.logg.WithFields(ctx, s.eventFields(d.event, nil)), "outbox event held behind earlier cart failure")
	}
	return nil
}

func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, d *delivery) error {
	d.fields["error_reason"] = d.reason
	logCtx := s.logg.WithField(s.logg.WithFields(ctx, d.fields), "error", d.err.Error())
	s.logg.Warn(logCtx, "outbox event will not be retried")
	s.metrics.IncDeadLetter(string(d.event.EventType), string(d.reason))

	msg := d.err.Error()
	entry := models.OutboxDLQ{
		EventID:       d.event.ID,
		EventType:     d.event.EventType,
		AggregateType: d.event.AggregateType,
		AggregateID:   d.event.AggregateID,
		Payload:       d.event.Payload,
		ErrorReason:   d.reason,
		ErrorMessage:  &msg,
		AttemptCount:  d.event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", d.event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, d.event.ID, d.err, s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", d.event.ID, err)
	}
	return nil
}

func (s *Service) publishResolved(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFactory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	cartID := event.AggregateID.String()
	msg := &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   cartID,
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	}
	if s.orderByCart {
		msg.OrderingKey = cartID
	}
	if version := resolved.Envelope.Version; version > 0 {
		msg.Attributes["schema_version"] = fmt.Sprint(version)
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, msg)
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	if _, err := result.Get(publishCtx); err != nil {
		// an ordered publish failure pauses the key until resumed
		if msg.OrderingKey != "" {
			pub.ResumePublish(msg.OrderingKey)
		}
		return err
	}
	return nil
}

func (s *Service) eventFields(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"cart_id":        event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if resolved != nil {
		fields["topic"] = resolved.Descriptor.Topic
		if resolved.Envelope.EventID != "" {
			fields["event_id"] = resolved.Envelope.EventID
			fields["occurred_at"] = resolved.Envelope.OccurredAt.Format(time.RFC3339Nano)
		}
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}
