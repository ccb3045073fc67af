package workflows

import (
	"time"

	"github.com/bookit/experience-booking/internal/activities"
	"github.com/bookit/experience-booking/internal/events"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// NoticeTimeout bounds a single delivery attempt
	NoticeTimeout = 30 * time.Second
	// MaxNoticeAttempts is the number of delivery attempts per notice
	MaxNoticeAttempts = 5

	ActivitySendConfirmation = "SendBookingConfirmation"
	ActivitySendCancellation = "SendCancellationNotice"
)

// WorkflowID derives the workflow id from the event id so that a
// redelivered event does not send a second notice
func WorkflowID(eventID string) string {
	return "booking-notification-" + eventID
}

// NotificationInput is the input for the notification workflow
type NotificationInput struct {
	EventID   string      `json:"eventId"`
	Kind      events.Kind `json:"kind"`
	BookingID string      `json:"bookingId"`
}

// NotificationResult is the result of the notification workflow
type NotificationResult struct {
	Sent          bool   `json:"sent"`
	Reference     string `json:"reference,omitempty"`
	SkippedReason string `json:"skippedReason,omitempty"`
}

// BookingNotificationWorkflow sends the notice matching a booking event
func BookingNotificationWorkflow(ctx workflow.Context, input NotificationInput) (*NotificationResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Notification workflow started", "eventId", input.EventID, "kind", input.Kind, "bookingId", input.BookingID)

	var activityName string
	switch input.Kind {
	case events.KindBookingCreated:
		activityName = ActivitySendConfirmation
	case events.KindBookingCancelled:
		activityName = ActivitySendCancellation
	default:
		logger.Warn("Unsupported event kind", "kind", input.Kind)
		return &NotificationResult{SkippedReason: "unsupported event kind " + string(input.Kind)}, nil
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: NoticeTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    MaxNoticeAttempts,
		},
	})

	var out activities.NoticeOutput
	err := workflow.ExecuteActivity(ctx, activityName, activities.NoticeInput{
		EventID:   input.EventID,
		BookingID: input.BookingID,
	}).Get(ctx, &out)
	if err != nil {
		logger.Error("Notice failed", "activity", activityName, "error", err)
		return nil, err
	}

	if !out.Sent {
		logger.Info("Notice skipped", "reason", out.Reason)
		return &NotificationResult{SkippedReason: out.Reason}, nil
	}
	logger.Info("Notice sent", "reference", out.Reference)
	return &NotificationResult{Sent: true, Reference: out.Reference}, nil
}
