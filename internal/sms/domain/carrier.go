package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GatewayPlaceholder is the token in a carrier gateway template that gets
// replaced with a phone number's digits. The format is carried over from the
// system this data originates in.
const GatewayPlaceholder = "%(phone_number)s"

// Carrier describes the email-to-SMS gateway offered by a phone service
// provider such as AT&T or T-Mobile.
//
// Gateway should always be of the form:
//
//	%(phone_number)s@[gateway domain]
//
// Carriers are admin-managed reference data; the message flow never creates
// or mutates them.
type Carrier struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Gateway   string    `json:"gateway"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCarrier creates a new Carrier instance.
func NewCarrier(id uuid.UUID, name, gateway string) *Carrier {
	return &Carrier{
		ID:        id,
		Name:      name,
		Gateway:   gateway,
		CreatedAt: time.Now().UTC(),
	}
}

// GatewayAddress substitutes digits into the gateway template. Returns
// ErrGatewayTemplate when the template does not carry the placeholder.
func (c *Carrier) GatewayAddress(digits string) (string, error) {
	if !strings.Contains(c.Gateway, GatewayPlaceholder) {
		return "", ErrGatewayTemplate
	}
	return strings.ReplaceAll(c.Gateway, GatewayPlaceholder, digits), nil
}
