package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"coins-wallet/internal/core/domain"
	"coins-wallet/internal/core/ports"
	"coins-wallet/pkg/apperror"
	"coins-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransferServiceImpl implements ports.TransferService.
type TransferServiceImpl struct {
	walletRepo   ports.WalletRepository
	transferRepo ports.TransferRepository
	similarCache ports.SimilarTransferCache // optional
	transactor   ports.DBTransactor
	paginator    *pagination.Paginator
	window       time.Duration
	currency     string
	now          func() time.Time
	log          zerolog.Logger
}

// TransferConfig carries the policy knobs of the transfer engine.
type TransferConfig struct {
	SimilarWindow time.Duration
	Currency      string
}

// NewTransferService creates a new TransferServiceImpl. similarCache may be nil.
func NewTransferService(
	walletRepo ports.WalletRepository,
	transferRepo ports.TransferRepository,
	similarCache ports.SimilarTransferCache,
	transactor ports.DBTransactor,
	paginator *pagination.Paginator,
	cfg TransferConfig,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		walletRepo:   walletRepo,
		transferRepo: transferRepo,
		similarCache: similarCache,
		transactor:   transactor,
		paginator:    paginator,
		window:       cfg.SimilarWindow,
		currency:     cfg.Currency,
		now:          func() time.Time { return time.Now().UTC() },
		log:          log,
	}
}

// Transfer moves req.Amount from req.From to req.To.
//
// Checks run in a fixed order: self-transfer, recent duplicate, ownership.
// Only then are both wallet rows locked, the source balance re-read and the
// debit, credit and ledger insert committed as one unit.
func (s *TransferServiceImpl) Transfer(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error) {
	if err := validateTransferRequest(req); err != nil {
		return nil, err
	}

	if req.From.ID == req.To.ID {
		return nil, apperror.ErrSelfTransfer()
	}

	key := domain.BuildSimilarTransferKey(req.From.ID, req.To.ID, req.Amount)
	if err := s.checkSimilar(ctx, key, req); err != nil {
		return nil, err
	}

	if req.From.OwnerID != req.ActorID {
		return nil, apperror.ErrUnauthorisedWallet()
	}

	transfer, err := s.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.similarCache != nil {
		if err := s.similarCache.Remember(ctx, key, transfer.CreatedAt, s.window); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to cache transfer in redis")
		}
	}

	s.log.Info().
		Str("transfer_id", transfer.ID.String()).
		Str("from_wallet_id", transfer.FromWalletID.String()).
		Str("to_wallet_id", transfer.ToWalletID.String()).
		Str("amount", transfer.Amount.String()).
		Msg("transfer committed")

	return transfer, nil
}

func validateTransferRequest(req domain.TransferRequest) error {
	switch {
	case req.From == nil:
		return apperror.ErrInvalidRequest("source wallet is required")
	case req.To == nil:
		return apperror.ErrInvalidRequest("destination wallet is required")
	case req.ActorID == uuid.Nil:
		return apperror.ErrInvalidRequest("actor is required")
	case !req.Amount.IsPositive():
		return apperror.ErrInvalidRequest("amount must be positive")
	case !domain.ValidAmount(req.Amount):
		return apperror.ErrInvalidRequest(fmt.Sprintf("amount exceeds %d decimal places", domain.AmountScale))
	}
	return nil
}

// checkSimilar rejects a transfer whose (from, to, amount) tuple committed
// less than the configured window ago. Only the most recent match counts.
func (s *TransferServiceImpl) checkSimilar(ctx context.Context, key string, req domain.TransferRequest) error {
	if s.window <= 0 {
		return nil
	}
	now := s.now()

	// Layer 1: Redis
	if s.similarCache != nil {
		at, ok, err := s.similarCache.LastTransferAt(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("redis similar transfer check failed, falling through to DB")
		}
		if ok {
			if remaining := s.window - now.Sub(at); remaining > 0 {
				return apperror.ErrSimilarTransfer(ceilMinutes(remaining))
			}
		}
	}

	// Layer 2: ledger
	prev, err := s.transferRepo.FindMostRecent(ctx, req.From.ID, req.To.ID, req.Amount)
	if err != nil {
		return apperror.ErrTransactionFailed(fmt.Errorf("find similar transfer: %w", err))
	}
	if prev == nil {
		return nil
	}
	if remaining := s.window - now.Sub(prev.CreatedAt); remaining > 0 {
		return apperror.ErrSimilarTransfer(ceilMinutes(remaining))
	}
	return nil
}

func ceilMinutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}

func (s *TransferServiceImpl) execute(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrTransactionFailed(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.walletRepo.LockForUpdate(ctx, dbTx, []uuid.UUID{req.From.ID, req.To.ID})
	if err != nil {
		return nil, apperror.ErrTransactionFailed(fmt.Errorf("lock wallets: %w", err))
	}
	from, ok := locked[req.From.ID]
	if !ok {
		return nil, apperror.ErrTransactionFailed(fmt.Errorf("source wallet %s vanished", req.From.ID))
	}
	if _, ok := locked[req.To.ID]; !ok {
		return nil, apperror.ErrTransactionFailed(fmt.Errorf("destination wallet %s vanished", req.To.ID))
	}

	// Business rule: the locked balance, not the caller's snapshot, decides.
	if !from.CanCover(req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	if _, err := s.walletRepo.AdjustBalance(ctx, dbTx, req.From.ID, req.Amount.Neg()); err != nil {
		return nil, apperror.ErrTransactionFailed(fmt.Errorf("debit: %w", err))
	}
	if _, err := s.walletRepo.AdjustBalance(ctx, dbTx, req.To.ID, req.Amount); err != nil {
		return nil, apperror.ErrTransactionFailed(fmt.Errorf("credit: %w", err))
	}

	transfer := &domain.Transfer{
		ID:           uuid.New(),
		FromWalletID: req.From.ID,
		ToWalletID:   req.To.ID,
		Amount:       req.Amount,
		CreatedAt:    s.now(),
	}
	if err := s.transferRepo.Create(ctx, dbTx, transfer); err != nil {
		return nil, apperror.ErrTransactionFailed(fmt.Errorf("create transfer: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrTransactionFailed(fmt.Errorf("commit tx: %w", err))
	}
	return transfer, nil
}

// GetHistory returns one page of the transfers touching walletID, newest
// first, each tagged relative to walletID.
func (s *TransferServiceImpl) GetHistory(ctx context.Context, walletID uuid.UUID, page, pageSize int) ([]domain.TaggedTransfer, pagination.Meta, error) {
	dbTx, err := s.transactor.BeginReadOnly(ctx)
	if err != nil {
		return nil, pagination.Meta{}, apperror.ErrDatabaseError(fmt.Errorf("begin read-only tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	total, err := s.transferRepo.CountByParticipant(ctx, dbTx, walletID)
	if err != nil {
		return nil, pagination.Meta{}, apperror.ErrDatabaseError(fmt.Errorf("count transfers: %w", err))
	}

	w := s.paginator.Window(total, page, pageSize)
	rows, err := s.transferRepo.ListByParticipant(ctx, dbTx, walletID, w.Limit, w.Offset)
	if err != nil {
		return nil, pagination.Meta{}, apperror.ErrDatabaseError(fmt.Errorf("list transfers: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, pagination.Meta{}, apperror.ErrDatabaseError(fmt.Errorf("commit read-only tx: %w", err))
	}

	for i := range rows {
		rows[i].Direction = domain.DirectionFor(&rows[i].Transfer, walletID)
		rows[i].Currency = s.currency
	}
	return rows, w.Meta, nil
}
