package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
)

// ContactService forwards contact-form messages to the shop inbox.
type ContactService struct {
	mailer   Mailer
	notifier Notifier
	receiver string
	logger   *zap.Logger
}

// NewContactService builds the contact service. notifier may be nil.
func NewContactService(mailer Mailer, notifier Notifier, receiver string, logger *zap.Logger) *ContactService {
	return &ContactService{mailer: mailer, notifier: notifier, receiver: receiver, logger: logger}
}

// Submit validates and delivers a contact message.
func (s *ContactService) Submit(ctx context.Context, msg models.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Phone = strings.TrimSpace(msg.Phone)
	msg.Message = strings.TrimSpace(msg.Message)
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return apperrors.Validation("Name, email, and message are required.")
	}

	if s.receiver == "" {
		return apperrors.Dependency("Email recipient not configured on the server.", errors.New("contact receiver is empty"))
	}

	phone := msg.Phone
	if phone == "" {
		phone = "Not provided"
	}
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; color: #333;">
<h2>New Contact Message</h2>
<p><b>Name:</b> %s</p>
<p><b>Email:</b> %s</p>
<p><b>Phone:</b> %s</p>
<p><b>Message:</b></p>
<p style="white-space: pre-line;">%s</p>
</div>`,
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		html.EscapeString(phone),
		html.EscapeString(msg.Message),
	)

	err := s.mailer.Send(ctx, Mail{
		To:       s.receiver,
		ReplyTo:  msg.Email,
		FromName: msg.Name,
		Subject:  "New Contact Message from Vibrant Flight Website",
		HTML:     body,
	})
	if err != nil {
		s.logger.Error("contact mail failed", zap.Error(err))
		return apperrors.Dependency("Failed to send message. Check email configuration.", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyContact(ctx, msg); err != nil {
			s.logger.Warn("failed to mirror contact message", zap.Error(err))
		}
	}
	return nil
}
