package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"coins-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet within a database transaction.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, owner_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, w.ID, w.OwnerID, w.Balance, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, owner_id, balance, created_at, updated_at FROM wallets WHERE id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, id), "get wallet by id")
}

// GetByOwnerID fetches the wallet of a user (without locking).
func (r *WalletRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, owner_id, balance, created_at, updated_at FROM wallets WHERE owner_id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, ownerID), "get wallet by owner")
}

// LockForUpdate takes row locks on the given wallets with pessimistic locking.
// Rows are locked one at a time in ascending id order, so two transfers over
// the same pair in opposite directions cannot deadlock.
// This MUST be called within a transaction.
func (r *WalletRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*domain.Wallet, error) {
	ordered := make([]uuid.UUID, len(ids))
	copy(ordered, ids)
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i][:], ordered[j][:]) < 0
	})

	query := `SELECT id, owner_id, balance, created_at, updated_at FROM wallets WHERE id = $1 FOR UPDATE`

	locked := make(map[uuid.UUID]*domain.Wallet, len(ordered))
	for _, id := range ordered {
		if _, seen := locked[id]; seen {
			continue
		}
		w, err := scanWallet(tx.QueryRow(ctx, query, id), "lock wallet")
		if err != nil {
			return nil, err
		}
		if w != nil {
			locked[id] = w
		}
	}
	return locked, nil
}

// AdjustBalance applies delta to a locked wallet and returns the new balance.
func (r *WalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE id = $2 RETURNING balance`

	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, query, delta, id).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("wallet not found: %s", id)
		}
		return decimal.Zero, fmt.Errorf("adjust wallet balance: %w", err)
	}
	return balance, nil
}

// Count returns the number of wallets visible to tx.
func (r *WalletRepo) Count(ctx context.Context, tx pgx.Tx) (int64, error) {
	var total int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count wallets: %w", err)
	}
	return total, nil
}

// ListSummaries returns one page of wallets joined with their owner's username.
func (r *WalletRepo) ListSummaries(ctx context.Context, tx pgx.Tx, limit, offset int) ([]domain.WalletSummary, error) {
	query := `SELECT w.id, u.username, w.balance
		FROM wallets w JOIN users u ON u.id = w.owner_id
		ORDER BY w.id ASC
		LIMIT $1 OFFSET $2`

	rows, err := tx.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.WalletSummary, 0, limit)
	for rows.Next() {
		var s domain.WalletSummary
		if err := rows.Scan(&s.ID, &s.Owner, &s.Balance); err != nil {
			return nil, fmt.Errorf("scan wallet summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return summaries, nil
}

func scanWallet(row pgx.Row, op string) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}
