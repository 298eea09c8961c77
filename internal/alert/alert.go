// Package alert persists alert subscriptions and notifies the user by
// email with a dashboard screenshot attached.
package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/gridpulse/internal/mail"
)

// ErrMailFailed means the alert was stored but its notification email
// could not be sent. The record stays pending.
var ErrMailFailed = errors.New("alert: notification email failed")

// Alert statuses. An alert is written as pending and flipped to sent
// only after the notification email went out, so a mail failure leaves
// a visible pending record instead of a silent orphan.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

// Alert is a stored alert subscription. Dates are kept as the strings
// the client sent; the API layer validates their format on the way in.
type Alert struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	UserID    string             `bson:"userId"`
	Country   string             `bson:"country"`
	StartDate string             `bson:"startDate"`
	EndDate   string             `bson:"endDate"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// CreateParams carries one alert creation request.
type CreateParams struct {
	Email      string
	UserID     string
	Country    string
	StartDate  string
	EndDate    string
	Screenshot []byte
}

// Store abstracts the alerts collection.
type Store interface {
	Insert(ctx context.Context, a *Alert) error
	MarkSent(ctx context.Context, id primitive.ObjectID) error
}

// Mailer sends the notification email.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Service persists alerts and sends their notification emails.
type Service struct {
	store  Store
	mailer Mailer
	logger *zap.Logger
}

// NewService creates the alert service.
func NewService(store Store, mailer Mailer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		mailer: mailer,
		logger: logger,
	}
}

// Create stores the alert as pending, sends the notification email with
// the screenshot attached, then marks the alert sent. A mail failure is
// returned to the caller; the pending record stays for reconciliation.
func (s *Service) Create(ctx context.Context, p CreateParams) error {
	a := &Alert{
		Email:     p.Email,
		UserID:    p.UserID,
		Country:   p.Country,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, a); err != nil {
		return err
	}

	msg := mail.Message{
		To:      p.Email,
		Subject: fmt.Sprintf("Energy Alert Set for %s", p.Country),
		Body: fmt.Sprintf(
			"Hi!\n\nYou've set an energy alert for %s from %s to %s.\nYou'll stay updated with energy trends and changes.\n\nThank you,\nThe GridPulse Team\n",
			p.Country, p.StartDate, p.EndDate),
		Attachments: []mail.Attachment{{
			Filename:    "dashboard.png",
			ContentType: "image/png",
			Data:        p.Screenshot,
		}},
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("alert email failed, record left pending",
			zap.String("email", p.Email),
			zap.String("country", p.Country),
			zap.Error(err))
		return fmt.Errorf("%w: %s", ErrMailFailed, err)
	}

	if err := s.store.MarkSent(ctx, a.ID); err != nil {
		// The email went out; a stale pending status is only a
		// bookkeeping problem.
		s.logger.Warn("failed to mark alert sent", zap.Error(err))
	}

	return nil
}
