package notifications

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mail "gopkg.in/mail.v2"

	"github.com/angelmondragon/placeshare-backend/pkg/config"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
)

type recordingSender struct {
	failures int
	calls    int
	sent     []*mail.Message
}

func (r *recordingSender) DialAndSend(m ...*mail.Message) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.New("smtp unavailable")
	}
	r.sent = append(r.sent, m...)
	return nil
}

func newTestMailer(sender sender) *Mailer {
	return &Mailer{
		sender:  sender,
		from:    "no-reply@placeshare.local",
		adminTo: "admin@placeshare.local",
		logg:    logger.Nop(),
	}
}

func sampleNotice() SignupNotice {
	return SignupNotice{
		UserID:    uuid.New(),
		Email:     "a@b.com",
		FirstName: "Ana",
		LastName:  "Lee",
		JoinedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotifySignupRendersTemplate(t *testing.T) {
	sender := &recordingSender{}
	m := newTestMailer(sender)

	require.NoError(t, m.NotifySignup(context.Background(), sampleNotice()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"admin@placeshare.local"}, msg.GetHeader("To"))
	assert.Contains(t, msg.GetHeader("Subject")[0], "Ana Lee")

	var raw bytes.Buffer
	_, err := msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "a@b.com")
	assert.Contains(t, raw.String(), "2024-05-01 12:00 UTC")
}

func TestNotifySignupRetries(t *testing.T) {
	sender := &recordingSender{failures: 2}
	m := newTestMailer(sender)

	require.NoError(t, m.NotifySignup(context.Background(), sampleNotice()))
	assert.Equal(t, 3, sender.calls)
}

func TestNotifySignupGivesUp(t *testing.T) {
	sender := &recordingSender{failures: maxSendAttempts}
	m := newTestMailer(sender)

	err := m.NotifySignup(context.Background(), sampleNotice())
	require.Error(t, err)
	assert.Equal(t, maxSendAttempts, sender.calls)
}

func TestNewNotifierFallsBackToNoop(t *testing.T) {
	n, err := NewNotifier(config.MailConfig{}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, Noop{}, n)
	assert.NoError(t, n.NotifySignup(context.Background(), sampleNotice()))

	_, err = NewMailer(config.MailConfig{Host: "smtp.local"}, logger.Nop())
	assert.Error(t, err)
}
