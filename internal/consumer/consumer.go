// Package consumer starts a notification workflow for every booking event
// delivered by the broker.
package consumer

import (
	"context"
	"errors"

	"github.com/bookit/experience-booking/internal/events"
	"github.com/bookit/experience-booking/internal/workflows"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

// ErrDeliveriesClosed is returned by Run when the broker closes the channel
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// WorkflowStarter is the part of the Temporal client the consumer needs
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

type BookingConsumer struct {
	starter   WorkflowStarter
	taskQueue string
	log       logrus.FieldLogger
}

func NewBookingConsumer(starter WorkflowStarter, taskQueue string, log logrus.FieldLogger) *BookingConsumer {
	return &BookingConsumer{starter: starter, taskQueue: taskQueue, log: log}
}

// Handle starts the workflow for one delivery and settles it. Malformed
// events are dropped, start failures are requeued and duplicates are acked.
func (c *BookingConsumer) Handle(ctx context.Context, d amqp.Delivery) error {
	ev, err := events.Decode(d.Body)
	if err != nil {
		c.log.WithError(err).WithField("routing_key", d.RoutingKey).Warn("dropping malformed booking event")
		return d.Nack(false, false)
	}

	entry := c.log.WithFields(logrus.Fields{
		"event_id":   ev.ID,
		"kind":       ev.Kind,
		"booking_id": ev.Booking.ID,
	})

	opts := client.StartWorkflowOptions{
		ID:                                       workflows.WorkflowID(ev.ID),
		TaskQueue:                                c.taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	_, err = c.starter.ExecuteWorkflow(ctx, opts, workflows.BookingNotificationWorkflow, workflows.NotificationInput{
		EventID:   ev.ID,
		Kind:      ev.Kind,
		BookingID: ev.Booking.ID,
	})
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			entry.Debug("notification already started")
			return d.Ack(false)
		}
		entry.WithError(err).Error("failed to start notification workflow")
		return d.Nack(false, true)
	}

	entry.Info("notification workflow started")
	return d.Ack(false)
}

// Run handles deliveries until ctx is done or the channel closes
func (c *BookingConsumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			if err := c.Handle(ctx, d); err != nil {
				c.log.WithError(err).Error("failed to settle delivery")
			}
		}
	}
}
