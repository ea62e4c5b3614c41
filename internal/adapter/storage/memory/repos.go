package memory

import (
	"context"
	"fmt"

	"coins-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	mt, err := asWriteTx(r.s, tx)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	for _, pending := range mt.newUsers {
		if pending.Username == u.Username {
			return fmt.Errorf("insert user: %w", errUsernameTaken)
		}
	}
	c := *u
	mt.newUsers = append(mt.newUsers, &c)
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.usernames[username]
	if !ok {
		return nil, nil
	}
	c := *r.s.users[id]
	return &c, nil
}

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct{ s *Store }

func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mt, err := asWriteTx(r.s, tx)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	for _, pending := range mt.newWallets {
		if pending.OwnerID == w.OwnerID {
			return fmt.Errorf("insert wallet: %w", errOwnerHasWallet)
		}
	}
	mt.newWallets = append(mt.newWallets, cloneWallet(w))
	return nil
}

func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.wallets[id]
	if !ok {
		return nil, nil
	}
	return cloneWallet(w), nil
}

func (r *WalletRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.owners[ownerID]
	if !ok {
		return nil, nil
	}
	return cloneWallet(r.s.wallets[id]), nil
}

// LockForUpdate locks the wallets in ascending id order, the same order the
// PostgreSQL driver uses.
func (r *WalletRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*domain.Wallet, error) {
	mt, err := asWriteTx(r.s, tx)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	ordered := make([]uuid.UUID, len(ids))
	copy(ordered, ids)
	sortByID(ordered)

	locked := make(map[uuid.UUID]*domain.Wallet, len(ordered))
	for _, id := range ordered {
		w, err := mt.lock(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lock wallet: %w", err)
		}
		if w != nil {
			locked[id] = cloneWallet(w)
		}
	}
	return locked, nil
}

func (r *WalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	mt, err := asWriteTx(r.s, tx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("adjust wallet balance: %w", err)
	}
	w, err := mt.lock(ctx, id)
	if err != nil {
		return decimal.Zero, fmt.Errorf("adjust wallet balance: %w", err)
	}
	if w == nil {
		return decimal.Zero, fmt.Errorf("wallet not found: %s", id)
	}
	w.Balance = w.Balance.Add(delta)
	w.UpdatedAt = nowUTC()
	return w.Balance, nil
}

func (r *WalletRepo) Count(ctx context.Context, tx pgx.Tx) (int64, error) {
	var total int64
	err := r.s.read(tx, func() {
		total = int64(len(r.s.wallets))
	})
	if err != nil {
		return 0, fmt.Errorf("count wallets: %w", err)
	}
	return total, nil
}

func (r *WalletRepo) ListSummaries(ctx context.Context, tx pgx.Tx, limit, offset int) ([]domain.WalletSummary, error) {
	var out []domain.WalletSummary
	err := r.s.read(tx, func() {
		ids := make([]uuid.UUID, 0, len(r.s.wallets))
		for id := range r.s.wallets {
			ids = append(ids, id)
		}
		sortByID(ids)

		ids = window(ids, limit, offset)
		out = make([]domain.WalletSummary, 0, len(ids))
		for _, id := range ids {
			w := r.s.wallets[id]
			out = append(out, domain.WalletSummary{
				ID:      w.ID,
				Owner:   r.s.usernameOf(w.OwnerID),
				Balance: w.Balance,
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return out, nil
}

// TransferRepo implements ports.TransferRepository.
type TransferRepo struct{ s *Store }

func (r *TransferRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transfer) error {
	mt, err := asWriteTx(r.s, tx)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	if t.FromWalletID == t.ToWalletID {
		return fmt.Errorf("insert transfer: memory: violates check constraint transfers_distinct_wallets")
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("insert transfer: memory: violates check constraint transfers_amount_check")
	}
	c := *t
	mt.newTransfers = append(mt.newTransfers, &c)
	return nil
}

func (r *TransferRepo) FindMostRecent(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal) (*domain.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *domain.Transfer
	for _, t := range r.s.transfers {
		if t.FromWalletID != from || t.ToWalletID != to || !t.Amount.Equal(amount) {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	c := *latest
	return &c, nil
}

func (r *TransferRepo) CountByParticipant(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (int64, error) {
	var total int64
	err := r.s.read(tx, func() {
		for _, t := range r.s.transfers {
			if t.FromWalletID == walletID || t.ToWalletID == walletID {
				total++
			}
		}
	})
	if err != nil {
		return 0, fmt.Errorf("count transfers: %w", err)
	}
	return total, nil
}

func (r *TransferRepo) ListByParticipant(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, limit, offset int) ([]domain.TaggedTransfer, error) {
	var out []domain.TaggedTransfer
	err := r.s.read(tx, func() {
		var matched []*domain.Transfer
		for _, t := range r.s.transfers {
			if t.FromWalletID == walletID || t.ToWalletID == walletID {
				matched = append(matched, t)
			}
		}
		newestFirst(matched)

		matched = window(matched, limit, offset)
		out = make([]domain.TaggedTransfer, 0, len(matched))
		for _, t := range matched {
			out = append(out, domain.TaggedTransfer{
				Transfer:  *t,
				FromOwner: r.s.walletOwnerName(t.FromWalletID),
				ToOwner:   r.s.walletOwnerName(t.ToWalletID),
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return out, nil
}

// AuditRepo implements ports.AuditRepository.
type AuditRepo struct{ s *Store }

func (r *AuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *log
	r.s.audit = append(r.s.audit, &c)
	return nil
}

// Entries returns a copy of the recorded audit log.
func (r *AuditRepo) Entries() []domain.AuditLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.AuditLog, 0, len(r.s.audit))
	for _, e := range r.s.audit {
		out = append(out, *e)
	}
	return out
}

// Callers hold s.mu.
func (s *Store) usernameOf(userID uuid.UUID) string {
	if u, ok := s.users[userID]; ok {
		return u.Username
	}
	return ""
}

func (s *Store) walletOwnerName(walletID uuid.UUID) string {
	if w, ok := s.wallets[walletID]; ok {
		return s.usernameOf(w.OwnerID)
	}
	return ""
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	end := offset + limit
	if limit < 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
