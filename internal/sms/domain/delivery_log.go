package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryLogEntry records one recipient of one successfully sent message.
// Entries are append-only: created exactly once per sent recipient, never
// updated or deleted. They exist only to feed the usage reports.
type DeliveryLogEntry struct {
	ID            uuid.UUID `json:"id"`
	CarrierID     uuid.UUID `json:"carrier_id"`
	PhoneNumberID uuid.UUID `json:"phone_number_id"`
	FromAddress   string    `json:"from_address"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DefaultReportLimit is applied when a report query carries no usable limit.
const DefaultReportLimit = 25

// ReportQuery bounds a usage report. Start and End are inclusive and either
// may be nil; with both nil the whole log is considered.
type ReportQuery struct {
	Start  *time.Time
	End    *time.Time
	Offset int
	Limit  int
}

// EffectiveLimit returns the query limit, falling back to DefaultReportLimit
// for zero or negative values.
func (q ReportQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultReportLimit
	}
	return q.Limit
}

// EffectiveOffset clamps negative offsets to zero.
func (q ReportQuery) EffectiveOffset() int {
	if q.Offset < 0 {
		return 0
	}
	return q.Offset
}
