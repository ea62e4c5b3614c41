package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"coins-wallet/internal/core/domain"
	"coins-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Token scopes.
const (
	ScopeView     = "view"
	ScopeTransact = "transact"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, username string, scopes []string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
	Scopes   []string
}

// HasScope reports whether the token was granted scope.
func (c *TokenClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// SimilarTransferCache remembers when a (from, to, amount) tuple last
// committed. It is a fast path only; the ledger stays authoritative.
type SimilarTransferCache interface {
	// LastTransferAt returns the recorded commit time, or ok=false on a miss.
	LastTransferAt(ctx context.Context, key string) (at time.Time, ok bool, err error)
	Remember(ctx context.Context, key string, at time.Time, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// TransferService is the transfer engine plus the history reader.
type TransferService interface {
	Transfer(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error)
	GetHistory(ctx context.Context, walletID uuid.UUID, page, pageSize int) ([]domain.TaggedTransfer, pagination.Meta, error)
}

// AccountService provisions, resolves and lists wallets.
type AccountService interface {
	// CreateWalletFor provisions the wallet of a new user inside tx.
	CreateWalletFor(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetWalletByOwner(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	ListAccounts(ctx context.Context, page, pageSize int) ([]domain.WalletSummary, pagination.Meta, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Username string
	Password string
}

// RegisterResponse holds the registration result.
type RegisterResponse struct {
	UserID   uuid.UUID
	Username string
	WalletID uuid.UUID
}

// LoginResponse holds an issued access token.
type LoginResponse struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Scopes    []string
}

// AuditService records security-relevant actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
