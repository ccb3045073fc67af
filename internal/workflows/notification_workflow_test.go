package workflows

import (
	"errors"
	"testing"
	"time"

	"github.com/bookit/experience-booking/internal/activities"
	"github.com/bookit/experience-booking/internal/events"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type NotificationWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *NotificationWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterActivity(&activities.Activities{})
}

func (s *NotificationWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func TestNotificationWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationWorkflowTestSuite))
}

func (s *NotificationWorkflowTestSuite) TestWorkflow_Constants() {
	s.Equal(30*time.Second, NoticeTimeout)
	s.Equal(5, MaxNoticeAttempts)
	s.Equal("booking-notification-ev-1", WorkflowID("ev-1"))
}

func (s *NotificationWorkflowTestSuite) TestWorkflow_BookingCreatedSendsConfirmation() {
	s.env.OnActivity(ActivitySendConfirmation, mock.Anything, activities.NoticeInput{
		EventID:   "ev-1",
		BookingID: "b-1",
	}).Return(&activities.NoticeOutput{Sent: true, Reference: "msg-1"}, nil).Once()

	s.env.ExecuteWorkflow(BookingNotificationWorkflow, NotificationInput{
		EventID:   "ev-1",
		Kind:      events.KindBookingCreated,
		BookingID: "b-1",
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result NotificationResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.True(result.Sent)
	s.Equal("msg-1", result.Reference)
}

func (s *NotificationWorkflowTestSuite) TestWorkflow_BookingCancelledSendsNotice() {
	s.env.OnActivity(ActivitySendCancellation, mock.Anything, mock.Anything).
		Return(&activities.NoticeOutput{Sent: true, Reference: "msg-2"}, nil).Once()

	s.env.ExecuteWorkflow(BookingNotificationWorkflow, NotificationInput{
		EventID:   "ev-2",
		Kind:      events.KindBookingCancelled,
		BookingID: "b-1",
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result NotificationResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.True(result.Sent)
	s.Equal("msg-2", result.Reference)
}

func (s *NotificationWorkflowTestSuite) TestWorkflow_SkippedNotice() {
	s.env.OnActivity(ActivitySendConfirmation, mock.Anything, mock.Anything).
		Return(&activities.NoticeOutput{Reason: "booking is cancelled"}, nil).Once()

	s.env.ExecuteWorkflow(BookingNotificationWorkflow, NotificationInput{
		EventID:   "ev-1",
		Kind:      events.KindBookingCreated,
		BookingID: "b-1",
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result NotificationResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.False(result.Sent)
	s.Equal("booking is cancelled", result.SkippedReason)
}

func (s *NotificationWorkflowTestSuite) TestWorkflow_UnsupportedKind() {
	s.env.ExecuteWorkflow(BookingNotificationWorkflow, NotificationInput{
		EventID:   "ev-3",
		Kind:      events.Kind("booking.refunded"),
		BookingID: "b-1",
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result NotificationResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.False(result.Sent)
	s.Contains(result.SkippedReason, "booking.refunded")
}

func (s *NotificationWorkflowTestSuite) TestWorkflow_RetriesThenFails() {
	s.env.OnActivity(ActivitySendConfirmation, mock.Anything, mock.Anything).
		Return(nil, errors.New("smtp unavailable"))

	s.env.ExecuteWorkflow(BookingNotificationWorkflow, NotificationInput{
		EventID:   "ev-1",
		Kind:      events.KindBookingCreated,
		BookingID: "b-1",
	})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func (s *NotificationWorkflowTestSuite) TestWorkflow_NonRetryableFailure() {
	s.env.OnActivity(ActivitySendConfirmation, mock.Anything, mock.Anything).
		Return(nil, temporal.NewNonRetryableApplicationError("booking b-9 not found", "BookingNotFound", nil)).Once()

	s.env.ExecuteWorkflow(BookingNotificationWorkflow, NotificationInput{
		EventID:   "ev-1",
		Kind:      events.KindBookingCreated,
		BookingID: "b-9",
	})

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)
	s.Contains(err.Error(), "not found")
}
