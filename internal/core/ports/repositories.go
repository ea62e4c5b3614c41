package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"coins-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside the caller's transaction; the listing
// methods take one so count and page come from the same snapshot.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error)
	// LockForUpdate locks the given wallets in ascending id order and returns
	// their current state keyed by id. Missing ids are absent from the map.
	LockForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*domain.Wallet, error)
	// AdjustBalance adds delta to the balance and returns the new balance.
	AdjustBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
	Count(ctx context.Context, tx pgx.Tx) (int64, error)
	// ListSummaries returns wallets ordered by id ascending. Currency is left
	// for the caller to fill in.
	ListSummaries(ctx context.Context, tx pgx.Tx, limit, offset int) ([]domain.WalletSummary, error)
}

// TransferRepository defines persistence operations for the append-only ledger.
type TransferRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transfer *domain.Transfer) error
	// FindMostRecent returns the latest transfer with the exact (from, to, amount)
	// tuple, or nil if none exists.
	FindMostRecent(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal) (*domain.Transfer, error)
	CountByParticipant(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (int64, error)
	// ListByParticipant returns transfers touching walletID, newest first, with
	// FromOwner and ToOwner populated. Direction and Currency are left unset.
	ListByParticipant(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, limit, offset int) ([]domain.TaggedTransfer, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	// BeginReadOnly starts a repeatable-read, read-only transaction.
	BeginReadOnly(ctx context.Context) (pgx.Tx, error)
}
