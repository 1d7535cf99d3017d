package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrMissingSender indicates a send was attempted without a from address.
	ErrMissingSender = errors.New("a from address is required")
	// ErrDuplicateNumber indicates a uniqueness violation on (owner, digits).
	ErrDuplicateNumber = errors.New("phone number already exists for this owner")
	// ErrDuplicateCarrier indicates a uniqueness violation on (name, gateway).
	ErrDuplicateCarrier = errors.New("carrier already exists")
	// ErrGatewayTemplate indicates a carrier gateway template without the
	// phone number placeholder. This is an administrator configuration
	// problem, detected at substitution time.
	ErrGatewayTemplate = errors.New("carrier gateway template is missing the phone number placeholder")
)

// DeliveryError wraps a failed mail transport call. The transport call is a
// single indivisible unit across all recipients; no per-recipient outcome is
// available.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("sms delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
