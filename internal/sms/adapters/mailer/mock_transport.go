package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
)

// MockTransport is a simulated mail transport for development and testing.
// It is wired in when no SMTP host is configured.
type MockTransport struct {
	logger   *slog.Logger
	failRate float64 // chance to simulate failure, 0.0 to 1.0
}

func NewMockTransport(logger *slog.Logger, failRate float64) *MockTransport {
	return &MockTransport{
		logger:   logger.With("component", "mock_transport"),
		failRate: failRate,
	}
}

func (t *MockTransport) Send(ctx context.Context, msg Message) error {
	t.logger.InfoContext(ctx, "MockTransport: Send called",
		"from", msg.From,
		"recipient_count", len(msg.To),
		"body_len", len(msg.Body),
	)
	if rand.Float64() < t.failRate {
		err := fmt.Errorf("mock transport simulated failure for %d recipients", len(msg.To))
		t.logger.WarnContext(ctx, "MockTransport: simulated failure", "error", err)
		return err
	}
	return nil
}
