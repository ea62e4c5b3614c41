package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDirectionFor(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	tr := &Transfer{FromWalletID: a, ToWalletID: b, Amount: decimal.NewFromInt(50)}

	tests := []struct {
		name   string
		wallet uuid.UUID
		want   Direction
	}{
		{"source wallet", a, DirectionOutgoing},
		{"destination wallet", b, DirectionIncoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectionFor(tr, tt.wallet))
		})
	}
}

func TestTaggedTransfer_Counterparty(t *testing.T) {
	out := &TaggedTransfer{Direction: DirectionOutgoing, FromOwner: "alice", ToOwner: "bob"}
	in := &TaggedTransfer{Direction: DirectionIncoming, FromOwner: "alice", ToOwner: "bob"}

	assert.Equal(t, "bob", out.Counterparty())
	assert.Equal(t, "alice", in.Counterparty())
}

func TestWallet_CanCover(t *testing.T) {
	w := &Wallet{Balance: decimal.RequireFromString("500.00")}

	tests := []struct {
		name   string
		amount string
		want   bool
	}{
		{"below balance", "499.99", true},
		{"exact balance", "500", true},
		{"above balance", "500.01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.CanCover(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestBuildSimilarTransferKey(t *testing.T) {
	from := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	to := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	key := BuildSimilarTransferKey(from, to, decimal.RequireFromString("50.00"))
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000:6ba7b810-9dad-11d1-80b4-00c04fd430c8:50", key)

	assert.Equal(t, key, BuildSimilarTransferKey(from, to, decimal.NewFromInt(50)))
	assert.NotEqual(t, key, BuildSimilarTransferKey(to, from, decimal.NewFromInt(50)))
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"0.0001", true},
		{"12.3400", true},
		{"0", false},
		{"-1", false},
		{"0.00005", false},
		{"1.23456", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}
