package postgres

import (
	"context"
	"errors"
	"fmt"

	"coins-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransferRepo implements ports.TransferRepository over the append-only
// transfers table.
type TransferRepo struct {
	pool Pool
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(pool Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction.
func (r *TransferRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transfer) error {
	query := `INSERT INTO transfers (id, from_wallet_id, to_wallet_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, t.ID, t.FromWalletID, t.ToWalletID, t.Amount, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// FindMostRecent returns the latest transfer for the exact (from, to, amount)
// tuple. Served by idx_transfers_similar.
func (r *TransferRepo) FindMostRecent(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal) (*domain.Transfer, error) {
	query := `SELECT id, from_wallet_id, to_wallet_id, amount, created_at
		FROM transfers
		WHERE from_wallet_id = $1 AND to_wallet_id = $2 AND amount = $3
		ORDER BY created_at DESC
		LIMIT 1`

	t := &domain.Transfer{}
	err := r.pool.QueryRow(ctx, query, from, to, amount).Scan(
		&t.ID, &t.FromWalletID, &t.ToWalletID, &t.Amount, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find most recent transfer: %w", err)
	}
	return t, nil
}

// CountByParticipant counts transfers where walletID is either side.
func (r *TransferRepo) CountByParticipant(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM transfers WHERE from_wallet_id = $1 OR to_wallet_id = $1`

	var total int64
	if err := tx.QueryRow(ctx, query, walletID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count transfers: %w", err)
	}
	return total, nil
}

// ListByParticipant returns one page of a wallet's history, newest first.
func (r *TransferRepo) ListByParticipant(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, limit, offset int) ([]domain.TaggedTransfer, error) {
	query := `SELECT t.id, t.from_wallet_id, t.to_wallet_id, t.amount, t.created_at,
			fu.username, tu.username
		FROM transfers t
		JOIN wallets fw ON fw.id = t.from_wallet_id
		JOIN users fu ON fu.id = fw.owner_id
		JOIN wallets tw ON tw.id = t.to_wallet_id
		JOIN users tu ON tu.id = tw.owner_id
		WHERE t.from_wallet_id = $1 OR t.to_wallet_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := tx.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TaggedTransfer, 0, limit)
	for rows.Next() {
		var tt domain.TaggedTransfer
		if err := rows.Scan(
			&tt.ID, &tt.FromWalletID, &tt.ToWalletID, &tt.Amount, &tt.CreatedAt,
			&tt.FromOwner, &tt.ToOwner,
		); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		out = append(out, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return out, nil
}
