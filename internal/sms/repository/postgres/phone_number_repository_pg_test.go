package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grahamu/smsgateway/internal/sms/domain"
)

func TestPgPhoneNumberRepository_Create(t *testing.T) {
	t.Run("NormalizesDigitsBeforeInsert", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgPhoneNumberRepository(mockPool, testLogger())
		pn := domain.NewPhoneNumber(uuid.New(), "user", "42", uuid.New(), "5551234567", "", false)
		pn.Digits = "(555) 123-4567" // bypass constructor normalization

		mockPool.ExpectExec("INSERT INTO phone_numbers").
			WithArgs(pn.ID, "user", "42", pn.CarrierID, "5551234567", "", false, pn.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(context.Background(), pn))
		assert.Equal(t, "5551234567", pn.Digits)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("UniqueViolationMapsToDuplicateNumber", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgPhoneNumberRepository(mockPool, testLogger())
		pn := domain.NewPhoneNumber(uuid.New(), "user", "42", uuid.New(), "5551234567", "", false)

		mockPool.ExpectExec("INSERT INTO phone_numbers").
			WithArgs(pn.ID, "user", "42", pn.CarrierID, "5551234567", "", false, pn.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "phone_numbers_owner_digits_key"})

		err = repo.Create(context.Background(), pn)
		assert.ErrorIs(t, err, domain.ErrDuplicateNumber)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgPhoneNumberRepository_GetByID(t *testing.T) {
	t.Run("PopulatesCarrier", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgPhoneNumberRepository(mockPool, testLogger())
		numberID := uuid.New()
		carrierID := uuid.New()
		now := time.Now().UTC()

		rows := mockPool.NewRows([]string{
			"id", "owner_type", "owner_id", "carrier_id", "digits", "description", "is_primary", "created_at",
			"c_id", "c_name", "c_gateway", "c_created_at",
		}).AddRow(
			numberID, "user", "42", carrierID, "5551234567", "desk", true, now,
			carrierID, "AT&T", "%(phone_number)s@txt.att.net", now,
		)
		mockPool.ExpectQuery("SELECT p.id, p.owner_type").
			WithArgs(numberID).
			WillReturnRows(rows)

		pn, err := repo.GetByID(context.Background(), numberID)
		require.NoError(t, err)
		assert.Equal(t, "5551234567", pn.Digits)
		require.NotNil(t, pn.Carrier)
		assert.Equal(t, "AT&T", pn.Carrier.Name)

		addr, err := pn.GatewayAddress()
		require.NoError(t, err)
		assert.Equal(t, "5551234567@txt.att.net", addr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgPhoneNumberRepository(mockPool, testLogger())
		id := uuid.New()

		mockPool.ExpectQuery("SELECT p.id, p.owner_type").
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgPhoneNumberRepository_Update(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgPhoneNumberRepository(mockPool, testLogger())
	pn := domain.NewPhoneNumber(uuid.New(), "user", "42", uuid.New(), "555-111-2222", "cell", true)

	mockPool.ExpectExec("UPDATE phone_numbers").
		WithArgs(pn.CarrierID, "5551112222", "cell", true, pn.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), pn))
	assert.Equal(t, "5551112222", pn.Digits)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
