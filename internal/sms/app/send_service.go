package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/grahamu/smsgateway/internal/sms/adapters/mailer"
	"github.com/grahamu/smsgateway/internal/sms/domain"
)

// SendRequest describes one send call. Recipients must carry their carriers;
// numbers loaded through PhoneNumberRepository always do.
type SendRequest struct {
	Message     string
	FromAddress string
	Recipients  []*domain.PhoneNumber
	// FailSilently swallows transport failures: the call returns nil and no
	// log entries are written.
	FailSilently bool
	// AuthUser and AuthPassword optionally override the transport's SMTP
	// credentials for this call.
	AuthUser     string
	AuthPassword string
}

// SendService orchestrates delivery: it resolves every recipient's gateway
// address, makes exactly one transport call, and records the delivery log
// atomically on success.
type SendService struct {
	transport mailer.Transport
	logRepo   domain.DeliveryLogRepository
	logger    *slog.Logger
}

func NewSendService(transport mailer.Transport, logRepo domain.DeliveryLogRepository, logger *slog.Logger) *SendService {
	return &SendService{
		transport: transport,
		logRepo:   logRepo,
		logger:    logger.With("service", "sms_send"),
	}
}

// Send delivers the message to every recipient's carrier gateway.
//
// A missing from address fails with domain.ErrMissingSender before anything
// else happens. Resolution failures abort the call before any network
// traffic. On transport success, one delivery log entry per recipient is
// written in a single transaction; on transport failure, nothing is logged
// and the error surfaces as *domain.DeliveryError unless FailSilently is
// set. There are no retries.
func (s *SendService) Send(ctx context.Context, req SendRequest) error {
	if req.FromAddress == "" {
		return domain.ErrMissingSender
	}

	// Resolve every gateway address up front; fail fast on the first bad
	// carrier template so no partial resolution ever reaches the transport.
	addresses := make([]string, 0, len(req.Recipients))
	for _, pn := range req.Recipients {
		addr, err := pn.GatewayAddress()
		if err != nil {
			smsSendsTotal.WithLabelValues("resolve_error").Inc()
			s.logger.ErrorContext(ctx, "Gateway address resolution failed",
				"phone_number_id", pn.ID, "error", err)
			return fmt.Errorf("resolving gateway address for number %s: %w", pn.ID, err)
		}
		addresses = append(addresses, addr)
	}

	// The transport call stays outside any store transaction: it cannot be
	// rolled back once sent, only the bookkeeping can.
	start := time.Now()
	err := s.transport.Send(ctx, mailer.Message{
		From:         req.FromAddress,
		To:           addresses,
		Subject:      "",
		Body:         req.Message,
		AuthUser:     req.AuthUser,
		AuthPassword: req.AuthPassword,
	})
	smsSendDurationHist.Observe(time.Since(start).Seconds())

	if err != nil {
		if req.FailSilently {
			smsSendsTotal.WithLabelValues("silenced").Inc()
			s.logger.WarnContext(ctx, "Transport failed, error silenced",
				"error", err, "recipient_count", len(addresses))
			return nil
		}
		smsSendsTotal.WithLabelValues("transport_error").Inc()
		return &domain.DeliveryError{Err: err}
	}

	now := time.Now().UTC()
	entries := make([]*domain.DeliveryLogEntry, 0, len(req.Recipients))
	for _, pn := range req.Recipients {
		entries = append(entries, &domain.DeliveryLogEntry{
			ID:            uuid.New(),
			CarrierID:     pn.CarrierID,
			PhoneNumberID: pn.ID,
			FromAddress:   req.FromAddress,
			Message:       req.Message,
			CreatedAt:     now,
		})
	}
	if err := s.logRepo.CreateBatch(ctx, entries); err != nil {
		// The message already left for the gateways; only the bookkeeping
		// failed.
		smsSendsTotal.WithLabelValues("log_error").Inc()
		return fmt.Errorf("recording delivery log: %w", err)
	}

	smsSendsTotal.WithLabelValues("success").Inc()
	deliveryLogEntriesTotal.Add(float64(len(entries)))
	s.logger.InfoContext(ctx, "Message sent", "recipient_count", len(addresses))
	return nil
}
