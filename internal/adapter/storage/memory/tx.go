package memory

import (
	"context"
	"errors"

	"coins-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errNoSQL = errors.New("memory: raw SQL is not supported")

// Tx is the store's pgx.Tx. Write transactions buffer their changes and hold
// row locks until Commit or Rollback; only the repositories of the same
// Store understand it.
type Tx struct {
	store    *Store
	readOnly bool
	done     bool

	locked    map[uuid.UUID]struct{}
	lockOrder []uuid.UUID
	dirty     map[uuid.UUID]*domain.Wallet // locked wallets as this tx sees them

	newUsers     []*domain.User
	newWallets   []*domain.Wallet
	newTransfers []*domain.Transfer
}

// Commit publishes buffered writes and releases every lock.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	defer t.finish()
	if t.readOnly {
		return nil
	}
	return t.store.commit(t)
}

// Rollback discards buffered writes. After Commit it returns pgx.ErrTxClosed,
// which callers deferring Rollback ignore.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	if t.readOnly {
		t.store.mu.RUnlock()
		return
	}
	for i := len(t.lockOrder) - 1; i >= 0; i-- {
		t.store.release(t.lockOrder[i])
	}
	t.lockOrder = nil
	t.locked = nil
}

func (t *Tx) writable() error {
	switch {
	case t.done:
		return pgx.ErrTxClosed
	case t.readOnly:
		return errReadOnlyTx
	}
	return nil
}

// lock takes the row lock on id (once) and loads the wallet into dirty.
// It returns nil when the wallet does not exist.
func (t *Tx) lock(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	if w, ok := t.dirty[id]; ok {
		return w, nil
	}
	if _, held := t.locked[id]; !held {
		if err := t.store.acquire(ctx, id); err != nil {
			return nil, err
		}
		t.locked[id] = struct{}{}
		t.lockOrder = append(t.lockOrder, id)
	}

	t.store.mu.RLock()
	w, ok := t.store.wallets[id]
	t.store.mu.RUnlock()
	if !ok {
		for _, nw := range t.newWallets {
			if nw.ID == id {
				w, ok = nw, true
				break
			}
		}
	}
	if !ok {
		return nil, nil
	}
	c := cloneWallet(w)
	t.dirty[id] = c
	return c, nil
}

func asWriteTx(s *Store, tx pgx.Tx) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt.store != s {
		return nil, errForeignTx
	}
	if err := mt.writable(); err != nil {
		return nil, err
	}
	return mt, nil
}

// The rest of pgx.Tx is unsupported.

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, errNoSQL }
func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errNoSQL
}
func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *Tx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errNoSQL
}
func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), errNoSQL
}
func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errNoSQL
}
func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return errRow{} }
func (t *Tx) Conn() *pgx.Conn                                               { return nil }

type errRow struct{}

func (errRow) Scan(dest ...any) error { return errNoSQL }
