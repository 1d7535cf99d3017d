package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/grahamu/smsgateway/internal/sms/domain"
)

// PgDeliveryLogRepository persists the append-only delivery log and answers
// the ranked usage queries over it.
type PgDeliveryLogRepository struct {
	db     DB
	logger *slog.Logger
}

func NewPgDeliveryLogRepository(db DB, logger *slog.Logger) *PgDeliveryLogRepository {
	return &PgDeliveryLogRepository{db: db, logger: logger.With("component", "delivery_log_repository_pg")}
}

// CreateBatch inserts every entry inside one transaction. The log for one
// send call is all-or-nothing.
func (r *PgDeliveryLogRepository) CreateBatch(ctx context.Context, entries []*domain.DeliveryLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO delivery_log (id, carrier_id, phone_number_id, from_address, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, e := range entries {
			if e.ID == uuid.Nil {
				e.ID = uuid.New()
			}
			if e.CreatedAt.IsZero() {
				e.CreatedAt = time.Now().UTC()
			}
			if _, err := tx.Exec(ctx, query,
				e.ID, e.CarrierID, e.PhoneNumberID, e.FromAddress, e.Message, e.CreatedAt,
			); err != nil {
				return fmt.Errorf("inserting delivery log entry for number %s: %w", e.PhoneNumberID, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Error writing delivery log batch", "error", err, "entries", len(entries))
		return err
	}
	r.logger.InfoContext(ctx, "Delivery log batch written", "entries", len(entries))
	return nil
}

// dateRangeClause builds the optional inclusive created_at filter. Bound
// values go through query parameters, never string interpolation.
func dateRangeClause(q domain.ReportQuery, args *[]any) string {
	var conds []string
	if q.Start != nil {
		*args = append(*args, *q.Start)
		conds = append(conds, fmt.Sprintf("d.created_at >= $%d", len(*args)))
	}
	if q.End != nil {
		*args = append(*args, *q.End)
		conds = append(conds, fmt.Sprintf("d.created_at <= $%d", len(*args)))
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (r *PgDeliveryLogRepository) MostPopularCarriers(ctx context.Context, q domain.ReportQuery) ([]*domain.Carrier, error) {
	var args []any
	query := `
		SELECT c.id, c.name, c.gateway, c.created_at, count(*) AS carrier_weight
		FROM delivery_log d
		JOIN carriers c ON c.id = d.carrier_id
	`
	query += dateRangeClause(q, &args)
	// Ties rank by carrier id so the ordering is deterministic across runs.
	args = append(args, q.EffectiveLimit(), q.EffectiveOffset())
	query += fmt.Sprintf(`
		GROUP BY c.id, c.name, c.gateway, c.created_at
		ORDER BY carrier_weight DESC, c.id ASC
		LIMIT $%d OFFSET $%d
	`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying most popular carriers", "error", err)
		return nil, err
	}
	defer rows.Close()

	carriers := []*domain.Carrier{}
	for rows.Next() {
		c := &domain.Carrier{}
		var weight int64
		if err := rows.Scan(&c.ID, &c.Name, &c.Gateway, &c.CreatedAt, &weight); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning carrier weight row", "error", err)
			return nil, err
		}
		carriers = append(carriers, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating carrier weight rows", "error", err)
		return nil, err
	}
	return carriers, nil
}

func (r *PgDeliveryLogRepository) MostContactedNumbers(ctx context.Context, q domain.ReportQuery) ([]*domain.PhoneNumber, error) {
	var args []any
	query := `
		SELECT p.id, p.owner_type, p.owner_id, p.carrier_id, p.digits, p.description, p.is_primary, p.created_at,
		       c.id, c.name, c.gateway, c.created_at, count(*) AS recipient_weight
		FROM delivery_log d
		JOIN phone_numbers p ON p.id = d.phone_number_id
		JOIN carriers c ON c.id = p.carrier_id
	`
	query += dateRangeClause(q, &args)
	args = append(args, q.EffectiveLimit(), q.EffectiveOffset())
	query += fmt.Sprintf(`
		GROUP BY p.id, p.owner_type, p.owner_id, p.carrier_id, p.digits, p.description, p.is_primary, p.created_at,
		         c.id, c.name, c.gateway, c.created_at
		ORDER BY recipient_weight DESC, p.id ASC
		LIMIT $%d OFFSET $%d
	`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying most contacted numbers", "error", err)
		return nil, err
	}
	defer rows.Close()

	numbers := []*domain.PhoneNumber{}
	for rows.Next() {
		pn := &domain.PhoneNumber{Carrier: &domain.Carrier{}}
		var weight int64
		if err := rows.Scan(
			&pn.ID, &pn.OwnerType, &pn.OwnerID, &pn.CarrierID, &pn.Digits, &pn.Description, &pn.IsPrimary, &pn.CreatedAt,
			&pn.Carrier.ID, &pn.Carrier.Name, &pn.Carrier.Gateway, &pn.Carrier.CreatedAt, &weight,
		); err != nil {
			r.logger.ErrorContext(ctx, "Error scanning recipient weight row", "error", err)
			return nil, err
		}
		numbers = append(numbers, pn)
	}
	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating recipient weight rows", "error", err)
		return nil, err
	}
	return numbers, nil
}
