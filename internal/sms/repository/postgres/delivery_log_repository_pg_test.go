package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grahamu/smsgateway/internal/sms/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func logEntry(from string) *domain.DeliveryLogEntry {
	return &domain.DeliveryLogEntry{
		ID:            uuid.New(),
		CarrierID:     uuid.New(),
		PhoneNumberID: uuid.New(),
		FromAddress:   from,
		Message:       "hello",
		CreatedAt:     time.Now().UTC(),
	}
}

// Full-shape patterns for the ranked queries. (?s) lets .* span the
// multi-line SQL so the ORDER BY clause and the range operators are part of
// the expectation, not just the SELECT prefix.
const (
	popularCarriersNoRangePattern = `(?s)SELECT c\.id, c\.name, c\.gateway, c\.created_at, count\(\*\).*` +
		`GROUP BY c\.id.*ORDER BY carrier_weight DESC, c\.id ASC.*LIMIT \$1 OFFSET \$2`
	popularCarriersBothBoundsPattern = `(?s)SELECT c\.id, c\.name, c\.gateway, c\.created_at, count\(\*\).*` +
		`WHERE d\.created_at >= \$1 AND d\.created_at <= \$2.*` +
		`ORDER BY carrier_weight DESC, c\.id ASC.*LIMIT \$3 OFFSET \$4`
	popularCarriersStartOnlyPattern = `(?s)WHERE d\.created_at >= \$1\s.*` +
		`ORDER BY carrier_weight DESC, c\.id ASC.*LIMIT \$2 OFFSET \$3`
	popularCarriersEndOnlyPattern = `(?s)WHERE d\.created_at <= \$1\s.*` +
		`ORDER BY carrier_weight DESC, c\.id ASC.*LIMIT \$2 OFFSET \$3`
	contactedNumbersPattern = `(?s)SELECT p\.id, p\.owner_type, p\.owner_id, p\.carrier_id, p\.digits.*` +
		`GROUP BY p\.id.*ORDER BY recipient_weight DESC, p\.id ASC.*LIMIT \$1 OFFSET \$2`
)

func TestPgDeliveryLogRepository_CreateBatch(t *testing.T) {
	t.Run("AllEntriesInOneTransaction", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgDeliveryLogRepository(mockPool, testLogger())
		entries := []*domain.DeliveryLogEntry{logEntry("a@example.com"), logEntry("a@example.com"), logEntry("a@example.com")}

		mockPool.ExpectBegin()
		for _, e := range entries {
			mockPool.ExpectExec("INSERT INTO delivery_log").
				WithArgs(e.ID, e.CarrierID, e.PhoneNumberID, e.FromAddress, e.Message, e.CreatedAt).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		mockPool.ExpectCommit()
		// pgx.BeginFunc always issues a deferred Rollback even after a
		// successful Commit; real pgx gets ErrTxClosed there and ignores it.
		mockPool.ExpectRollback().WillReturnError(pgx.ErrTxClosed)

		err = repo.CreateBatch(context.Background(), entries)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("MidBatchFailureRollsBack", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgDeliveryLogRepository(mockPool, testLogger())
		entries := []*domain.DeliveryLogEntry{logEntry("a@example.com"), logEntry("a@example.com")}

		mockPool.ExpectBegin()
		mockPool.ExpectExec("INSERT INTO delivery_log").
			WithArgs(entries[0].ID, entries[0].CarrierID, entries[0].PhoneNumberID, entries[0].FromAddress, entries[0].Message, entries[0].CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mockPool.ExpectExec("INSERT INTO delivery_log").
			WithArgs(entries[1].ID, entries[1].CarrierID, entries[1].PhoneNumberID, entries[1].FromAddress, entries[1].Message, entries[1].CreatedAt).
			WillReturnError(errors.New("connection reset"))
		mockPool.ExpectRollback()

		err = repo.CreateBatch(context.Background(), entries)
		assert.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("EmptyBatchIsNoOp", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgDeliveryLogRepository(mockPool, testLogger())
		assert.NoError(t, repo.CreateBatch(context.Background(), nil))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgDeliveryLogRepository_MostPopularCarriers(t *testing.T) {
	attID := uuid.New()
	tmoID := uuid.New()
	now := time.Now().UTC()

	t.Run("RankedDescendingWithIdTieBreak", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgDeliveryLogRepository(mockPool, testLogger())

		rows := mockPool.NewRows([]string{"id", "name", "gateway", "created_at", "carrier_weight"}).
			AddRow(attID, "AT&T", "%(phone_number)s@txt.att.net", now, int64(6)).
			AddRow(tmoID, "T-Mobile", "%(phone_number)s@tmomail.net", now, int64(3))
		mockPool.ExpectQuery(popularCarriersNoRangePattern).
			WithArgs(25, 0).
			WillReturnRows(rows)

		carriers, err := repo.MostPopularCarriers(context.Background(), domain.ReportQuery{})
		require.NoError(t, err)
		require.Len(t, carriers, 2)
		assert.Equal(t, attID, carriers[0].ID)
		assert.Equal(t, tmoID, carriers[1].ID)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("BothBoundsAreInclusiveParameters", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgDeliveryLogRepository(mockPool, testLogger())

		start := time.Date(2009, 6, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2009, 6, 30, 23, 59, 59, 0, time.UTC)

		rows := mockPool.NewRows([]string{"id", "name", "gateway", "created_at", "carrier_weight"})
		mockPool.ExpectQuery(popularCarriersBothBoundsPattern).
			WithArgs(start, end, 10, 5).
			WillReturnRows(rows)

		carriers, err := repo.MostPopularCarriers(context.Background(), domain.ReportQuery{
			Start: &start, End: &end, Offset: 5, Limit: 10,
		})
		require.NoError(t, err)
		assert.NotNil(t, carriers)
		assert.Empty(t, carriers)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("StartOnlyUsesGreaterOrEqual", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgDeliveryLogRepository(mockPool, testLogger())

		start := time.Date(2009, 6, 1, 0, 0, 0, 0, time.UTC)
		rows := mockPool.NewRows([]string{"id", "name", "gateway", "created_at", "carrier_weight"}).
			AddRow(attID, "AT&T", "%(phone_number)s@txt.att.net", now, int64(1))
		mockPool.ExpectQuery(popularCarriersStartOnlyPattern).
			WithArgs(start, 25, 0).
			WillReturnRows(rows)

		carriers, err := repo.MostPopularCarriers(context.Background(), domain.ReportQuery{Start: &start})
		require.NoError(t, err)
		require.Len(t, carriers, 1)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("EndOnlyUsesLessOrEqual", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgDeliveryLogRepository(mockPool, testLogger())

		end := time.Date(2009, 6, 30, 23, 59, 59, 0, time.UTC)
		rows := mockPool.NewRows([]string{"id", "name", "gateway", "created_at", "carrier_weight"})
		mockPool.ExpectQuery(popularCarriersEndOnlyPattern).
			WithArgs(end, 25, 0).
			WillReturnRows(rows)

		carriers, err := repo.MostPopularCarriers(context.Background(), domain.ReportQuery{End: &end})
		require.NoError(t, err)
		assert.Empty(t, carriers)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgDeliveryLogRepository_MostContactedNumbers(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgDeliveryLogRepository(mockPool, testLogger())

	numberID := uuid.New()
	carrierID := uuid.New()
	now := time.Now().UTC()

	rows := mockPool.NewRows([]string{
		"id", "owner_type", "owner_id", "carrier_id", "digits", "description", "is_primary", "created_at",
		"c_id", "c_name", "c_gateway", "c_created_at", "recipient_weight",
	}).AddRow(
		numberID, "user", "42", carrierID, "5551234567", "", true, now,
		carrierID, "AT&T", "%(phone_number)s@txt.att.net", now, int64(4),
	)
	mockPool.ExpectQuery(contactedNumbersPattern).
		WithArgs(1, 1).
		WillReturnRows(rows)

	numbers, err := repo.MostContactedNumbers(context.Background(), domain.ReportQuery{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, numbers, 1)
	assert.Equal(t, numberID, numbers[0].ID)
	require.NotNil(t, numbers[0].Carrier)
	assert.Equal(t, "AT&T", numbers[0].Carrier.Name)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgDeliveryLogRepository_MostContactedNumbers_RangeOperators(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgDeliveryLogRepository(mockPool, testLogger())

	start := time.Date(2009, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2009, 6, 30, 23, 59, 59, 0, time.UTC)

	pattern := `(?s)WHERE d\.created_at >= \$1 AND d\.created_at <= \$2.*` +
		`ORDER BY recipient_weight DESC, p\.id ASC.*LIMIT \$3 OFFSET \$4`
	rows := mockPool.NewRows([]string{
		"id", "owner_type", "owner_id", "carrier_id", "digits", "description", "is_primary", "created_at",
		"c_id", "c_name", "c_gateway", "c_created_at", "recipient_weight",
	})
	mockPool.ExpectQuery(pattern).
		WithArgs(start, end, 25, 0).
		WillReturnRows(rows)

	numbers, err := repo.MostContactedNumbers(context.Background(), domain.ReportQuery{Start: &start, End: &end})
	require.NoError(t, err)
	assert.NotNil(t, numbers)
	assert.Empty(t, numbers)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
