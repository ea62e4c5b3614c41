// Package memory is an in-process storage driver for local runs and tests.
//
// It mirrors the PostgreSQL driver's locking model: wallets are locked
// individually for the lifetime of a write transaction, and all buffered
// writes become visible together at commit. Read-only transactions see a
// stable snapshot until they end.
package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"coins-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errForeignTx      = errors.New("memory: transaction was not started by this store")
	errReadOnlyTx     = errors.New("memory: write attempted in a read-only transaction")
	errUsernameTaken  = uniqueViolation("users", "users_username_key")
	errOwnerHasWallet = uniqueViolation("wallets", "wallets_owner_id_key")
)

// uniqueViolation builds the error PostgreSQL reports for a duplicate key so
// callers can treat both drivers alike.
func uniqueViolation(table, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        fmt.Sprintf("duplicate key value violates unique constraint %q", constraint),
		TableName:      table,
		ConstraintName: constraint,
	}
}

// Store holds committed state. Row locks live outside the state mutex so
// that transfers over disjoint wallets never wait on each other.
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]*domain.User
	usernames map[string]uuid.UUID
	wallets   map[uuid.UUID]*domain.Wallet
	owners    map[uuid.UUID]uuid.UUID // owner id -> wallet id
	transfers []*domain.Transfer
	audit     []*domain.AuditLog

	locksMu  sync.Mutex
	rowLocks map[uuid.UUID]chan struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:     make(map[uuid.UUID]*domain.User),
		usernames: make(map[string]uuid.UUID),
		wallets:   make(map[uuid.UUID]*domain.Wallet),
		owners:    make(map[uuid.UUID]uuid.UUID),
		rowLocks:  make(map[uuid.UUID]chan struct{}),
	}
}

// Begin starts a write transaction. Implements ports.DBTransactor.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:  s,
		locked: make(map[uuid.UUID]struct{}),
		dirty:  make(map[uuid.UUID]*domain.Wallet),
	}, nil
}

// BeginReadOnly starts a snapshot: commits wait until it ends.
func (s *Store) BeginReadOnly(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	return &Tx{store: s, readOnly: true}, nil
}

// Ping implements ports.HealthChecker.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "memory"
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Wallets returns the wallet repository view of the store.
func (s *Store) Wallets() *WalletRepo { return &WalletRepo{s: s} }

// Transfers returns the ledger repository view of the store.
func (s *Store) Transfers() *TransferRepo { return &TransferRepo{s: s} }

// Audit returns the audit repository view of the store.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

func (s *Store) rowLock(id uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.rowLocks[id] = l
	}
	return l
}

// acquire blocks until the row lock for id is held or ctx is done.
func (s *Store) acquire(ctx context.Context, id uuid.UUID) error {
	select {
	case s.rowLock(id) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for lock on wallet %s: %w", id, ctx.Err())
	}
}

func (s *Store) release(id uuid.UUID) {
	<-s.rowLock(id)
}

// read runs fn against committed state. Inside a read-only transaction the
// snapshot lock is already held.
func (s *Store) read(tx pgx.Tx, fn func()) error {
	if tx != nil {
		mt, ok := tx.(*Tx)
		if !ok || mt.store != s {
			return errForeignTx
		}
		if mt.readOnly {
			if mt.done {
				return pgx.ErrTxClosed
			}
			fn()
			return nil
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
	return nil
}

// commit validates and publishes everything tx buffered, all at once.
func (s *Store) commit(tx *Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range tx.newUsers {
		if _, taken := s.usernames[u.Username]; taken {
			return errUsernameTaken
		}
	}
	for _, w := range tx.newWallets {
		if _, has := s.owners[w.OwnerID]; has {
			return errOwnerHasWallet
		}
	}
	for _, t := range tx.newTransfers {
		if !s.walletKnown(tx, t.FromWalletID) || !s.walletKnown(tx, t.ToWalletID) {
			return fmt.Errorf("memory: transfer %s references an unknown wallet", t.ID)
		}
	}

	for _, u := range tx.newUsers {
		s.users[u.ID] = u
		s.usernames[u.Username] = u.ID
	}
	for _, w := range tx.newWallets {
		s.wallets[w.ID] = w
		s.owners[w.OwnerID] = w.ID
	}
	for id, w := range tx.dirty {
		if _, ok := s.wallets[id]; ok {
			s.wallets[id] = w
		}
	}
	s.transfers = append(s.transfers, tx.newTransfers...)
	return nil
}

func (s *Store) walletKnown(tx *Tx, id uuid.UUID) bool {
	if _, ok := s.wallets[id]; ok {
		return true
	}
	for _, w := range tx.newWallets {
		if w.ID == id {
			return true
		}
	}
	return false
}

func cloneWallet(w *domain.Wallet) *domain.Wallet {
	c := *w
	return &c
}

func sortByID(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
}

func newestFirst(ts []*domain.Transfer) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return bytes.Compare(ts[i].ID[:], ts[j].ID[:]) > 0
	})
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
