package activities

import (
	"context"
	"fmt"

	"github.com/bookit/experience-booking/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Notice is a message addressed to a customer
type Notice struct {
	To      string
	Name    string
	Subject string
	Body    string
}

// Mailer delivers notices and returns a delivery reference
type Mailer interface {
	Send(ctx context.Context, n Notice) (string, error)
}

// LogMailer simulates delivery by logging the notice
type LogMailer struct {
	log logrus.FieldLogger
}

func NewLogMailer(log logrus.FieldLogger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, n Notice) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := "msg-" + uuid.NewString()
	m.log.WithFields(logrus.Fields{
		"to":        n.To,
		"subject":   n.Subject,
		"reference": ref,
	}).Info("notice delivered")
	return ref, nil
}

func confirmationNotice(b *models.BookingDetails) Notice {
	return Notice{
		To:      b.UserEmail,
		Name:    b.UserName,
		Subject: fmt.Sprintf("Booking confirmed: %s", b.ExperienceTitle),
		Body: fmt.Sprintf(
			"Hi %s, your booking %s for %s in %s on %s at %s is confirmed for %d participant(s). Total paid: ₹%s.",
			b.UserName, b.ID, b.ExperienceTitle, b.ExperienceLocation, b.Date, b.Time,
			b.Participants, b.TotalAmount.StringFixed(2)),
	}
}

func cancellationNotice(b *models.BookingDetails) Notice {
	return Notice{
		To:      b.UserEmail,
		Name:    b.UserName,
		Subject: fmt.Sprintf("Booking cancelled: %s", b.ExperienceTitle),
		Body: fmt.Sprintf(
			"Hi %s, your booking %s for %s on %s at %s has been cancelled.",
			b.UserName, b.ID, b.ExperienceTitle, b.Date, b.Time),
	}
}
