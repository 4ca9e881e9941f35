package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"trujobs-api/config"
	"trujobs-api/internal/domain"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestHRStatusChangedApproved(t *testing.T) {
	s := &fakeSender{}
	m := newMailer("noreply@trujobs.io", s)

	err := m.HRStatusChanged(context.Background(), &domain.HRAccount{
		Name:        "Asha",
		CompanyName: "Acme",
		Email:       "asha@acme.io",
		Status:      domain.HRStatusApproved,
	})
	require.NoError(t, err)
	require.Len(t, s.sent, 1)

	msg := s.sent[0]
	assert.Equal(t, []string{"asha@acme.io"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Your TruJobs HR account is approved"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Acme can now post jobs")
}

func TestHRStatusChangedSkips(t *testing.T) {
	s := &fakeSender{}
	m := newMailer("noreply@trujobs.io", s)

	require.NoError(t, m.HRStatusChanged(context.Background(), &domain.HRAccount{Status: domain.HRStatusApproved}))
	require.NoError(t, m.HRStatusChanged(context.Background(), &domain.HRAccount{Email: "a@b.io", Status: domain.HRStatusPending}))
	assert.Empty(t, s.sent)
}

func TestHRStatusChangedSendFailure(t *testing.T) {
	m := newMailer("noreply@trujobs.io", &fakeSender{err: errors.New("smtp down")})
	err := m.HRStatusChanged(context.Background(), &domain.HRAccount{Email: "a@b.io", Status: domain.HRStatusRejected})
	assert.ErrorContains(t, err, "smtp down")
}

func TestNewFallsBackToNoop(t *testing.T) {
	assert.IsType(t, Noop{}, New(&config.Config{}))
	assert.IsType(t, &Mailer{}, New(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPFrom: "x@example.com"}))
}
