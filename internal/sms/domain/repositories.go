package domain

import (
	"context"

	"github.com/google/uuid"
)

// CarrierRepository defines the interface for managing Carrier reference data.
type CarrierRepository interface {
	Create(ctx context.Context, c *Carrier) error
	GetByID(ctx context.Context, id uuid.UUID) (*Carrier, error)
	List(ctx context.Context, offset, limit int) ([]*Carrier, error)
	Update(ctx context.Context, c *Carrier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PhoneNumberRepository defines the interface for managing PhoneNumber data.
// Implementations normalize digits on every create and update.
type PhoneNumberRepository interface {
	Create(ctx context.Context, pn *PhoneNumber) error
	// GetByID returns the number with its carrier populated.
	GetByID(ctx context.Context, id uuid.UUID) (*PhoneNumber, error)
	// ListByOwner returns every number held by one owning entity, carriers
	// populated, primary numbers first.
	ListByOwner(ctx context.Context, ownerType, ownerID string, offset, limit int) ([]*PhoneNumber, error)
	Update(ctx context.Context, pn *PhoneNumber) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeliveryLogRepository persists delivery log entries and answers the two
// ranked usage queries.
type DeliveryLogRepository interface {
	// CreateBatch inserts all entries inside a single transaction: either
	// every entry is recorded or none are.
	CreateBatch(ctx context.Context, entries []*DeliveryLogEntry) error
	// MostPopularCarriers ranks carriers by delivery count within the query
	// range, descending, ties broken by carrier id ascending.
	MostPopularCarriers(ctx context.Context, q ReportQuery) ([]*Carrier, error)
	// MostContactedNumbers ranks recipient numbers by delivery count within
	// the query range, descending, ties broken by number id ascending.
	MostContactedNumbers(ctx context.Context, q ReportQuery) ([]*PhoneNumber, error)
}
