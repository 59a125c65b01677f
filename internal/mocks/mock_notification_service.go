package mocks

import (
	"context"
	"sync"

	"github.com/you/authwebsvc/domain"
)

// SentMessage records one dispatched notification
type SentMessage struct {
	Recipient string
	Message   domain.Message
}

// MockNotificationService implements domain.NotificationService for testing.
// It records every message unless SendFunc overrides the behavior.
type MockNotificationService struct {
	SendFunc func(ctx context.Context, recipient string, msg domain.Message) error

	mu   sync.Mutex
	sent []SentMessage
}

// NewMockNotificationService creates a new MockNotificationService
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// Send dispatches a message
func (m *MockNotificationService) Send(ctx context.Context, recipient string, msg domain.Message) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, recipient, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMessage{Recipient: recipient, Message: msg})
	return nil
}

// Sent returns a copy of all recorded messages
func (m *MockNotificationService) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastSent returns the most recently recorded message, or nil
func (m *MockNotificationService) LastSent() *SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	last := m.sent[len(m.sent)-1]
	return &last
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
