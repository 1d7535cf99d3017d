package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grahamu/smsgateway/internal/sms/domain"
)

func TestPgCarrierRepository_Create(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgCarrierRepository(mockPool, testLogger())
		c := domain.NewCarrier(uuid.New(), "AT&T", "%(phone_number)s@txt.att.net")

		mockPool.ExpectExec("INSERT INTO carriers").
			WithArgs(c.ID, c.Name, c.Gateway, c.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(context.Background(), c))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DuplicateNameGateway", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgCarrierRepository(mockPool, testLogger())
		c := domain.NewCarrier(uuid.New(), "AT&T", "%(phone_number)s@txt.att.net")

		mockPool.ExpectExec("INSERT INTO carriers").
			WithArgs(c.ID, c.Name, c.Gateway, c.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "carriers_name_gateway_key"})

		assert.ErrorIs(t, repo.Create(context.Background(), c), domain.ErrDuplicateCarrier)
	})
}

func TestPgCarrierRepository_List(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgCarrierRepository(mockPool, testLogger())
	now := time.Now().UTC()

	rows := mockPool.NewRows([]string{"id", "name", "gateway", "created_at"}).
		AddRow(uuid.New(), "AT&T", "%(phone_number)s@txt.att.net", now).
		AddRow(uuid.New(), "T-Mobile", "%(phone_number)s@tmomail.net", now)
	mockPool.ExpectQuery("SELECT id, name, gateway, created_at").
		WithArgs(25, 0).
		WillReturnRows(rows)

	carriers, err := repo.List(context.Background(), 0, 25)
	require.NoError(t, err)
	require.Len(t, carriers, 2)
	assert.Equal(t, "AT&T", carriers[0].Name)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgCarrierRepository_Update_NotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgCarrierRepository(mockPool, testLogger())
	c := domain.NewCarrier(uuid.New(), "AT&T", "%(phone_number)s@txt.att.net")

	mockPool.ExpectExec("UPDATE carriers").
		WithArgs(c.Name, c.Gateway, c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.Update(context.Background(), c), domain.ErrNotFound)
}
