package app

import (
	"context"
	"log/slog"

	"github.com/grahamu/smsgateway/internal/sms/domain"
)

// ReportService answers the two ranked usage queries over the delivery log.
// Both are read-only and return fully populated entities in rank order; zero
// matching entries yields an empty slice.
type ReportService struct {
	logRepo domain.DeliveryLogRepository
	logger  *slog.Logger
}

func NewReportService(logRepo domain.DeliveryLogRepository, logger *slog.Logger) *ReportService {
	return &ReportService{
		logRepo: logRepo,
		logger:  logger.With("service", "sms_report"),
	}
}

// MostPopularCarriers ranks carriers by delivery count within the optional
// inclusive date range, most used first.
func (s *ReportService) MostPopularCarriers(ctx context.Context, q domain.ReportQuery) ([]*domain.Carrier, error) {
	carriers, err := s.logRepo.MostPopularCarriers(ctx, q)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Most popular carriers computed", "count", len(carriers))
	return carriers, nil
}

// MostContactedNumbers ranks recipient numbers by delivery count within the
// optional inclusive date range, most contacted first.
func (s *ReportService) MostContactedNumbers(ctx context.Context, q domain.ReportQuery) ([]*domain.PhoneNumber, error) {
	numbers, err := s.logRepo.MostContactedNumbers(ctx, q)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Most contacted numbers computed", "count", len(numbers))
	return numbers, nil
}
