package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/grahamu/smsgateway/internal/sms/domain"
)

type PgCarrierRepository struct {
	db     DB
	logger *slog.Logger
}

func NewPgCarrierRepository(db DB, logger *slog.Logger) *PgCarrierRepository {
	return &PgCarrierRepository{db: db, logger: logger.With("component", "carrier_repository_pg")}
}

func (r *PgCarrierRepository) Create(ctx context.Context, c *domain.Carrier) error {
	query := `
		INSERT INTO carriers (id, name, gateway, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Gateway, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.WarnContext(ctx, "Duplicate carrier", "name", c.Name, "gateway", c.Gateway)
			return domain.ErrDuplicateCarrier
		}
		r.logger.ErrorContext(ctx, "Error creating carrier", "error", err, "carrier_id", c.ID)
		return err
	}
	r.logger.InfoContext(ctx, "Carrier created", "carrier_id", c.ID, "name", c.Name)
	return nil
}

func (r *PgCarrierRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Carrier, error) {
	query := `SELECT id, name, gateway, created_at FROM carriers WHERE id = $1`
	c := &domain.Carrier{}
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Gateway, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting carrier by ID", "error", err, "carrier_id", id)
		return nil, err
	}
	return c, nil
}

func (r *PgCarrierRepository) List(ctx context.Context, offset, limit int) ([]*domain.Carrier, error) {
	query := `
		SELECT id, name, gateway, created_at
		FROM carriers
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing carriers", "error", err)
		return nil, err
	}
	defer rows.Close()

	var carriers []*domain.Carrier
	for rows.Next() {
		c := &domain.Carrier{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Gateway, &c.CreatedAt); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning carrier row", "error", err)
			return nil, err
		}
		carriers = append(carriers, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating carrier rows", "error", err)
		return nil, err
	}
	return carriers, nil
}

func (r *PgCarrierRepository) Update(ctx context.Context, c *domain.Carrier) error {
	query := `UPDATE carriers SET name = $1, gateway = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, c.Name, c.Gateway, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.WarnContext(ctx, "Duplicate carrier on update", "name", c.Name, "gateway", c.Gateway)
			return domain.ErrDuplicateCarrier
		}
		r.logger.ErrorContext(ctx, "Error updating carrier", "error", err, "carrier_id", c.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Carrier updated", "carrier_id", c.ID)
	return nil
}

func (r *PgCarrierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM carriers WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error deleting carrier", "error", err, "carrier_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Carrier deleted", "carrier_id", id)
	return nil
}
