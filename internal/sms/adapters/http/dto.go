package http

// CreateCarrierRequestDTO is the payload for creating a carrier.
type CreateCarrierRequestDTO struct {
	Name    string `json:"name" validate:"required,max=120"`
	Gateway string `json:"gateway" validate:"required,max=120"`
}

// UpdateCarrierRequestDTO is the payload for updating a carrier.
type UpdateCarrierRequestDTO struct {
	Name    string `json:"name" validate:"required,max=120"`
	Gateway string `json:"gateway" validate:"required,max=120"`
}

// CreatePhoneNumberRequestDTO is the payload for registering a phone number
// against an owning entity.
type CreatePhoneNumberRequestDTO struct {
	OwnerType   string `json:"owner_type" validate:"required,max=100"`
	OwnerID     string `json:"owner_id" validate:"required,max=100"`
	CarrierID   string `json:"carrier_id" validate:"required,uuid"`
	Digits      string `json:"digits" validate:"required,max=40"`
	Description string `json:"description" validate:"max=255"`
	IsPrimary   bool   `json:"is_primary"`
}

// UpdatePhoneNumberRequestDTO is the payload for updating a phone number.
// Ownership is immutable; carrier changes cover number porting.
type UpdatePhoneNumberRequestDTO struct {
	CarrierID   string `json:"carrier_id" validate:"required,uuid"`
	Digits      string `json:"digits" validate:"required,max=40"`
	Description string `json:"description" validate:"max=255"`
	IsPrimary   bool   `json:"is_primary"`
}

// SendMessageRequestDTO is the payload for a send call. FromAddress falls
// back to the configured default when omitted.
type SendMessageRequestDTO struct {
	Message      string   `json:"message" validate:"required,max=255"`
	FromAddress  string   `json:"from_address" validate:"omitempty,email"`
	RecipientIDs []string `json:"recipient_ids" validate:"required,min=1,dive,uuid"`
	FailSilently bool     `json:"fail_silently"`
	AuthUser     string   `json:"auth_user"`
	AuthPassword string   `json:"auth_password"`
}
