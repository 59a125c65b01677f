package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/mrz1836/postmark"

	"github.com/you/authwebsvc/domain"
)

// EmailServiceImpl implements domain.NotificationService using Postmark's
// transactional email API.
type EmailServiceImpl struct {
	client *postmark.Client
	from   string
}

// NewEmailService creates a Postmark-backed email sender. When no server
// token is configured the service logs messages instead of sending, so
// local development works without credentials.
func NewEmailService(serverToken, accountToken, from string) domain.NotificationService {
	var client *postmark.Client
	if serverToken != "" {
		client = postmark.NewClient(serverToken, accountToken)
	}

	return &EmailServiceImpl{
		client: client,
		from:   from,
	}
}

// Send implements domain.NotificationService
func (e *EmailServiceImpl) Send(ctx context.Context, recipient string, msg domain.Message) error {
	if e.client == nil {
		log.Printf("[MOCK EMAIL] To: %s, Subject: %s, Body: %s", recipient, msg.Subject, msg.Body)
		return nil
	}

	email := postmark.Email{
		From:    e.from,
		To:      recipient,
		Subject: msg.Subject,
	}
	if msg.IsHTMLBody {
		email.HTMLBody = msg.Body
	} else {
		email.TextBody = msg.Body
	}

	resp, err := e.client.SendEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}
	return nil
}

var _ domain.NotificationService = (*EmailServiceImpl)(nil)
