package postgres

import (
	"context"
	"testing"
	"time"

	"coins-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(ownerID uuid.UUID) *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   ownerID,
		Balance:   decimal.RequireFromString("500.00"),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func walletColumns() []string {
	return []string{"id", "owner_id", "balance", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumns()).AddRow(
		w.ID, w.OwnerID, w.Balance, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.OwnerID, w.Balance, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id").
		WithArgs(w.ID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.True(t, w.Balance.Equal(result.Balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(walletColumns()))

	result, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByOwnerID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE owner_id").
		WithArgs(w.OwnerID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByOwnerID(context.Background(), w.OwnerID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_LockForUpdate_LocksInIDOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	low := newTestWallet(uuid.New())
	low.ID = uuid.MustParse("00000000-0000-7000-8000-000000000001")
	high := newTestWallet(uuid.New())
	high.ID = uuid.MustParse("ffffffff-0000-7000-8000-000000000001")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(low.ID).
		WillReturnRows(walletRow(low))
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(high.ID).
		WillReturnRows(walletRow(high))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	// Caller order is high, low; lock order must still be low, high.
	locked, err := repo.LockForUpdate(context.Background(), tx, []uuid.UUID{high.ID, low.ID})
	require.NoError(t, err)
	require.Len(t, locked, 2)
	assert.Equal(t, low.OwnerID, locked[low.ID].OwnerID)
	assert.Equal(t, high.OwnerID, locked[high.ID].OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_LockForUpdate_MissingWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(walletColumns()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	locked, err := repo.LockForUpdate(context.Background(), tx, []uuid.UUID{id})
	require.NoError(t, err)
	assert.Empty(t, locked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AdjustBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()
	delta := decimal.NewFromInt(-50)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance = balance \\+ \\$1").
		WithArgs(delta, walletID).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(decimal.NewFromInt(450)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	balance, err := repo.AdjustBalance(context.Background(), tx, walletID, delta)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(450).Equal(balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AdjustBalance_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()
	delta := decimal.NewFromInt(10)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE wallets SET balance").
		WithArgs(delta, walletID).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.AdjustBalance(context.Background(), tx, walletID, delta)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wallet not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_CountAndListSummaries(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	a := uuid.Must(uuid.NewV7())
	b := uuid.Must(uuid.NewV7())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM wallets").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery("SELECT .+ FROM wallets w JOIN users u .+ ORDER BY w.id ASC").
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "balance"}).
			AddRow(a, "alice", decimal.NewFromInt(500)).
			AddRow(b, "bob", decimal.NewFromInt(250)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	total, err := repo.Count(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	list, err := repo.ListSummaries(context.Background(), tx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0].ID)
	assert.Equal(t, "alice", list[0].Owner)
	assert.Equal(t, "bob", list[1].Owner)
	assert.Empty(t, list[0].Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}
