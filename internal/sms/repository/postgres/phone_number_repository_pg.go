package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/grahamu/smsgateway/internal/sms/domain"
)

type PgPhoneNumberRepository struct {
	db     DB
	logger *slog.Logger
}

func NewPgPhoneNumberRepository(db DB, logger *slog.Logger) *PgPhoneNumberRepository {
	return &PgPhoneNumberRepository{db: db, logger: logger.With("component", "phone_number_repository_pg")}
}

func (r *PgPhoneNumberRepository) Create(ctx context.Context, pn *domain.PhoneNumber) error {
	// Digits are normalized on every write, never rejected.
	pn.Digits = domain.NormalizeDigits(pn.Digits)

	query := `
		INSERT INTO phone_numbers (id, owner_type, owner_id, carrier_id, digits, description, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		pn.ID, pn.OwnerType, pn.OwnerID, pn.CarrierID, pn.Digits, pn.Description, pn.IsPrimary, pn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.WarnContext(ctx, "Duplicate phone number for owner",
				"owner_type", pn.OwnerType, "owner_id", pn.OwnerID, "digits", pn.Digits)
			return domain.ErrDuplicateNumber
		}
		r.logger.ErrorContext(ctx, "Error creating phone number", "error", err, "phone_number_id", pn.ID)
		return err
	}
	r.logger.InfoContext(ctx, "Phone number created", "phone_number_id", pn.ID, "owner_type", pn.OwnerType, "owner_id", pn.OwnerID)
	return nil
}

func (r *PgPhoneNumberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PhoneNumber, error) {
	query := `
		SELECT p.id, p.owner_type, p.owner_id, p.carrier_id, p.digits, p.description, p.is_primary, p.created_at,
		       c.id, c.name, c.gateway, c.created_at
		FROM phone_numbers p
		JOIN carriers c ON c.id = p.carrier_id
		WHERE p.id = $1
	`
	pn := &domain.PhoneNumber{Carrier: &domain.Carrier{}}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&pn.ID, &pn.OwnerType, &pn.OwnerID, &pn.CarrierID, &pn.Digits, &pn.Description, &pn.IsPrimary, &pn.CreatedAt,
		&pn.Carrier.ID, &pn.Carrier.Name, &pn.Carrier.Gateway, &pn.Carrier.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting phone number by ID", "error", err, "phone_number_id", id)
		return nil, err
	}
	return pn, nil
}

func (r *PgPhoneNumberRepository) ListByOwner(ctx context.Context, ownerType, ownerID string, offset, limit int) ([]*domain.PhoneNumber, error) {
	query := `
		SELECT p.id, p.owner_type, p.owner_id, p.carrier_id, p.digits, p.description, p.is_primary, p.created_at,
		       c.id, c.name, c.gateway, c.created_at
		FROM phone_numbers p
		JOIN carriers c ON c.id = p.carrier_id
		WHERE p.owner_type = $1 AND p.owner_id = $2
		ORDER BY p.is_primary DESC, p.created_at ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, ownerType, ownerID, limit, offset)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing phone numbers by owner", "error", err, "owner_type", ownerType, "owner_id", ownerID)
		return nil, err
	}
	defer rows.Close()

	var numbers []*domain.PhoneNumber
	for rows.Next() {
		pn := &domain.PhoneNumber{Carrier: &domain.Carrier{}}
		if err := rows.Scan(
			&pn.ID, &pn.OwnerType, &pn.OwnerID, &pn.CarrierID, &pn.Digits, &pn.Description, &pn.IsPrimary, &pn.CreatedAt,
			&pn.Carrier.ID, &pn.Carrier.Name, &pn.Carrier.Gateway, &pn.Carrier.CreatedAt,
		); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning phone number row", "error", err)
			return nil, err
		}
		numbers = append(numbers, pn)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating phone number rows", "error", err)
		return nil, err
	}
	return numbers, nil
}

func (r *PgPhoneNumberRepository) Update(ctx context.Context, pn *domain.PhoneNumber) error {
	pn.Digits = domain.NormalizeDigits(pn.Digits)

	query := `
		UPDATE phone_numbers
		SET carrier_id = $1, digits = $2, description = $3, is_primary = $4
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, pn.CarrierID, pn.Digits, pn.Description, pn.IsPrimary, pn.ID)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.WarnContext(ctx, "Duplicate phone number for owner on update",
				"owner_type", pn.OwnerType, "owner_id", pn.OwnerID, "digits", pn.Digits)
			return domain.ErrDuplicateNumber
		}
		r.logger.ErrorContext(ctx, "Error updating phone number", "error", err, "phone_number_id", pn.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Phone number updated", "phone_number_id", pn.ID)
	return nil
}

func (r *PgPhoneNumberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM phone_numbers WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting phone number", "error", err, "phone_number_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Phone number deleted", "phone_number_id", id)
	return nil
}
