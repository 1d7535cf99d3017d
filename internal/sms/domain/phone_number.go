package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PhoneNumber associates a normalized phone number with a carrier and an
// owning entity. Owners are identified by an arbitrary (type, id) pair so any
// application entity can hold numbers; this service never interprets the
// pair beyond equality.
type PhoneNumber struct {
	ID          uuid.UUID `json:"id"`
	OwnerType   string    `json:"owner_type"`
	OwnerID     string    `json:"owner_id"`
	CarrierID   uuid.UUID `json:"carrier_id"`
	Carrier     *Carrier  `json:"carrier,omitempty"`
	Digits      string    `json:"digits"`
	Description string    `json:"description,omitempty"`
	IsPrimary   bool      `json:"is_primary"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPhoneNumber creates a new PhoneNumber instance with normalized digits.
func NewPhoneNumber(id uuid.UUID, ownerType, ownerID string, carrierID uuid.UUID, digits, description string, isPrimary bool) *PhoneNumber {
	return &PhoneNumber{
		ID:          id,
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		CarrierID:   carrierID,
		Digits:      NormalizeDigits(digits),
		Description: description,
		IsPrimary:   isPrimary,
		CreatedAt:   time.Now().UTC(),
	}
}

// NormalizeDigits strips every character outside [0-9], preserving digit
// order. Normalization is silent: degenerate results (including the empty
// string) are returned as-is and persisted as-is.
func NormalizeDigits(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}

// GatewayAddress resolves the email address the carrier routes to this
// number's handset. The carrier must be loaded.
func (p *PhoneNumber) GatewayAddress() (string, error) {
	if p.Carrier == nil {
		return "", fmt.Errorf("phone number %s has no carrier loaded", p.ID)
	}
	return p.Carrier.GatewayAddress(p.Digits)
}
