package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tags a transfer relative to the wallet whose history is read.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// AmountScale is the number of decimal places money columns store.
const AmountScale = 4

// ValidAmount reports whether amount is positive and representable at
// AmountScale without rounding.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Truncate(AmountScale))
}

// Transfer is an immutable ledger entry moving Amount between two wallets.
type Transfer struct {
	ID           uuid.UUID       `json:"id"`
	FromWalletID uuid.UUID       `json:"from_wallet_id"`
	ToWalletID   uuid.UUID       `json:"to_wallet_id"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DirectionFor returns outgoing iff walletID is the debited side of t.
func DirectionFor(t *Transfer, walletID uuid.UUID) Direction {
	if t.FromWalletID == walletID {
		return DirectionOutgoing
	}
	return DirectionIncoming
}

// TaggedTransfer is a history row: the transfer plus the owners of both
// sides and its direction relative to the queried wallet.
type TaggedTransfer struct {
	Transfer
	Direction Direction `json:"direction"`
	FromOwner string    `json:"debit_from"`
	ToOwner   string    `json:"credit_to"`
	Currency  string    `json:"currency"`
}

// Counterparty is the owner on the other side of the transfer.
func (t *TaggedTransfer) Counterparty() string {
	if t.Direction == DirectionOutgoing {
		return t.ToOwner
	}
	return t.FromOwner
}

// TransferRequest is the already-resolved input of the transfer engine.
type TransferRequest struct {
	ActorID uuid.UUID
	From    *Wallet
	To      *Wallet
	Amount  decimal.Decimal
}

// BuildSimilarTransferKey identifies a (from, to, amount) tuple.
// Amounts are normalised so 50 and 50.00 map to the same key.
func BuildSimilarTransferKey(from, to uuid.UUID, amount decimal.Decimal) string {
	return fmt.Sprintf("%s:%s:%s", from.String(), to.String(), amount.String())
}
