package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
)

func TestContactSubmit(t *testing.T) {
	mailer := &sentMail{}
	notifier := &recordedNotifier{}
	svc := NewContactService(mailer, notifier, "inbox@example.com", zap.NewNop())

	err := svc.Submit(context.Background(), models.ContactMessage{
		Name:    "Ravi",
		Email:   "ravi@example.com",
		Message: "<b>Where is my order?</b>",
	})
	require.NoError(t, err)

	mail := mailer.last()
	assert.Equal(t, "inbox@example.com", mail.To)
	assert.Equal(t, "ravi@example.com", mail.ReplyTo)
	assert.Contains(t, mail.HTML, "Not provided")
	assert.Contains(t, mail.HTML, "&lt;b&gt;Where is my order?&lt;/b&gt;")
	assert.Len(t, notifier.contacts, 1)
}

func TestContactValidation(t *testing.T) {
	svc := NewContactService(&sentMail{}, nil, "inbox@example.com", zap.NewNop())

	err := svc.Submit(context.Background(), models.ContactMessage{Name: "Ravi", Email: "ravi@example.com"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestContactDeliveryFailures(t *testing.T) {
	msg := models.ContactMessage{Name: "Ravi", Email: "ravi@example.com", Message: "hi"}

	unconfigured := NewContactService(&sentMail{}, nil, "", zap.NewNop())
	assert.True(t, apperrors.Is(unconfigured.Submit(context.Background(), msg), apperrors.KindDependency))

	failing := NewContactService(&sentMail{err: errors.New("smtp down")}, nil, "inbox@example.com", zap.NewNop())
	assert.True(t, apperrors.Is(failing.Submit(context.Background(), msg), apperrors.KindDependency))
}
