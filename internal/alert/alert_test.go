package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fyrsmithlabs/gridpulse/internal/mail"
)

type fakeStore struct {
	inserted  []*Alert
	sent      []primitive.ObjectID
	insertErr error
	markErr   error
}

func (f *fakeStore) Insert(_ context.Context, a *Alert) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	a.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, a)
	return nil
}

func (f *fakeStore) MarkSent(_ context.Context, id primitive.ObjectID) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.sent = append(f.sent, id)
	return nil
}

type fakeMailer struct {
	messages []mail.Message
	err      error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	params := CreateParams{
		Email:      "user@example.com",
		UserID:     "u1",
		Country:    "India",
		StartDate:  "2020-01-01",
		EndDate:    "2020-12-31",
		Screenshot: []byte{0x89, 'P', 'N', 'G'},
	}

	t.Run("stores the alert and emails the screenshot", func(t *testing.T) {
		store := &fakeStore{}
		mailer := &fakeMailer{}
		svc := NewService(store, mailer, nil)

		require.NoError(t, svc.Create(ctx, params))

		require.Len(t, store.inserted, 1)
		a := store.inserted[0]
		assert.Equal(t, "India", a.Country)
		assert.Equal(t, StatusPending, a.Status)
		assert.False(t, a.CreatedAt.IsZero())

		require.Len(t, mailer.messages, 1)
		msg := mailer.messages[0]
		assert.Equal(t, "user@example.com", msg.To)
		assert.Contains(t, msg.Subject, "India")
		assert.Contains(t, msg.Body, "2020-01-01")
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "dashboard.png", msg.Attachments[0].Filename)
		assert.Equal(t, params.Screenshot, msg.Attachments[0].Data)

		assert.Equal(t, []primitive.ObjectID{a.ID}, store.sent)
	})

	t.Run("mail failure surfaces and leaves the record pending", func(t *testing.T) {
		store := &fakeStore{}
		mailer := &fakeMailer{err: errors.New("smtp down")}
		svc := NewService(store, mailer, nil)

		err := svc.Create(ctx, params)
		require.ErrorIs(t, err, ErrMailFailed)
		assert.Contains(t, err.Error(), "smtp down")

		require.Len(t, store.inserted, 1)
		assert.Equal(t, StatusPending, store.inserted[0].Status)
		assert.Empty(t, store.sent)
	})

	t.Run("insert failure sends nothing", func(t *testing.T) {
		store := &fakeStore{insertErr: errors.New("write refused")}
		mailer := &fakeMailer{}
		svc := NewService(store, mailer, nil)

		require.Error(t, svc.Create(ctx, params))
		assert.Empty(t, mailer.messages)
	})

	t.Run("mark-sent failure is not fatal once the mail is out", func(t *testing.T) {
		store := &fakeStore{markErr: errors.New("update lost")}
		mailer := &fakeMailer{}
		svc := NewService(store, mailer, nil)

		require.NoError(t, svc.Create(ctx, params))
		require.Len(t, mailer.messages, 1)
	})
}
