package service

import (
	"context"
	"fmt"
	"time"

	"coins-wallet/internal/core/domain"
	"coins-wallet/internal/core/ports"
	"coins-wallet/pkg/apperror"
	"coins-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// accountService implements ports.AccountService.
type accountService struct {
	walletRepo      ports.WalletRepository
	transactor      ports.DBTransactor
	paginator       *pagination.Paginator
	startingBalance decimal.Decimal
	currency        string
	log             zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	paginator *pagination.Paginator,
	startingBalance decimal.Decimal,
	currency string,
	log zerolog.Logger,
) ports.AccountService {
	return &accountService{
		walletRepo:      walletRepo,
		transactor:      transactor,
		paginator:       paginator,
		startingBalance: startingBalance,
		currency:        currency,
		log:             log,
	}
}

// CreateWalletFor provisions the single wallet of userID inside tx.
// Wallet ids are v7 so that id order is creation order.
func (s *accountService) CreateWalletFor(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate wallet id: %w", err))
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:        id,
		OwnerID:   userID,
		Balance:   s.startingBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.Create(ctx, tx, wallet); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("owner_id", userID.String()).
		Msg("wallet provisioned")
	return wallet, nil
}

func (s *accountService) GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return wallet, nil
}

func (s *accountService) GetWalletByOwner(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return wallet, nil
}

// ListAccounts returns one page of all wallets in creation order. Count and
// page are read from one snapshot.
func (s *accountService) ListAccounts(ctx context.Context, page, pageSize int) ([]domain.WalletSummary, pagination.Meta, error) {
	dbTx, err := s.transactor.BeginReadOnly(ctx)
	if err != nil {
		return nil, pagination.Meta{}, apperror.ErrDatabaseError(fmt.Errorf("begin read-only tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	total, err := s.walletRepo.Count(ctx, dbTx)
	if err != nil {
		return nil, pagination.Meta{}, apperror.ErrDatabaseError(fmt.Errorf("count wallets: %w", err))
	}

	w := s.paginator.Window(total, page, pageSize)
	summaries, err := s.walletRepo.ListSummaries(ctx, dbTx, w.Limit, w.Offset)
	if err != nil {
		return nil, pagination.Meta{}, apperror.ErrDatabaseError(fmt.Errorf("list wallets: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, pagination.Meta{}, apperror.ErrDatabaseError(fmt.Errorf("commit read-only tx: %w", err))
	}

	for i := range summaries {
		summaries[i].Currency = s.currency
	}
	return summaries, w.Meta, nil
}
