package dto

import (
	"time"

	"coins-wallet/internal/core/domain"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	WalletID string `json:"wallet_id"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
	Scope       string `json:"scope"`
}

// TransferRequest is the request body for POST /api/v1/payments.
// Amount accepts both JSON numbers and numeric strings.
type TransferRequest struct {
	FromAccount string           `json:"from_account" binding:"required"`
	ToAccount   string           `json:"to_account" binding:"required"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
}

// TransferResponse describes a committed transfer.
type TransferResponse struct {
	ID          string          `json:"id"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Created     string          `json:"created"`
}

// TransferRecord is one row of a wallet's transfer history.
type TransferRecord struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Direction string          `json:"direction"`
	DebitFrom string          `json:"debit_from"`
	CreditTo  string          `json:"credit_to"`
	Created   string          `json:"created"`
}

// AccountRecord is one row of the account listing.
type AccountRecord struct {
	ID       string          `json:"id"`
	Owner    string          `json:"owner"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// NewTransferResponse converts a committed transfer.
func NewTransferResponse(t *domain.Transfer, currency string) TransferResponse {
	return TransferResponse{
		ID:          t.ID.String(),
		FromAccount: t.FromWalletID.String(),
		ToAccount:   t.ToWalletID.String(),
		Amount:      t.Amount,
		Currency:    currency,
		Created:     t.CreatedAt.Format(time.RFC3339),
	}
}

// NewTransferRecords converts a history page.
func NewTransferRecords(rows []domain.TaggedTransfer) []TransferRecord {
	out := make([]TransferRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, TransferRecord{
			ID:        r.ID.String(),
			Amount:    r.Amount,
			Currency:  r.Currency,
			Direction: string(r.Direction),
			DebitFrom: r.FromOwner,
			CreditTo:  r.ToOwner,
			Created:   r.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

// NewAccountRecords converts an account listing page.
func NewAccountRecords(rows []domain.WalletSummary) []AccountRecord {
	out := make([]AccountRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, AccountRecord{
			ID:       r.ID.String(),
			Owner:    r.Owner,
			Balance:  r.Balance,
			Currency: r.Currency,
		})
	}
	return out
}
