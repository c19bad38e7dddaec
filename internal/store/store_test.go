package store

import (
	"errors"
	"fmt"
	"testing"

	"bet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	validation := fmt.Errorf("placing operation: %w", Invalid("odd", "must be positive"))
	funds := fmt.Errorf("leg 1: %w", &InsufficientFundsError{
		AccountId: "acc-1",
		Field:     "cash",
		Available: decimal.NewFromInt(10),
		Requested: decimal.NewFromInt(40),
	})

	assert.True(t, errors.Is(validation, ErrValidation))
	assert.True(t, errors.Is(funds, ErrInsufficientFunds))
	assert.True(t, IsClientError(validation))
	assert.True(t, IsClientError(funds))
	assert.True(t, IsClientError(ErrConcurrentModification))
	assert.False(t, IsClientError(ErrStorageFailure))
	assert.False(t, IsClientError(errors.New("disk full")))

	assert.True(t, IsNotFound(fmt.Errorf("x: %w", ErrNotFoundOrUnauthorized)))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsNotFound(validation))

	var ve *ValidationError
	require.True(t, errors.As(validation, &ve))
	assert.Equal(t, "odd", ve.Field)

	var fe *InsufficientFundsError
	require.True(t, errors.As(funds, &fe))
	assert.Equal(t, "40", fe.Requested.String())
	assert.Contains(t, fe.Error(), "available 10")
}

func TestPlaceOperationParamsValidate(t *testing.T) {
	valid := PlaceOperationParams{
		OwnerId: "owner-1",
		Legs: []LegParams{{
			Result: "home",
			Odd:    decimal.RequireFromString("2.5"),
			Stakes: []StakeParams{{AccountId: "acc-1", Stake: decimal.NewFromInt(40)}},
		}},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(p *PlaceOperationParams)
		field  string
	}{
		{"no owner", func(p *PlaceOperationParams) { p.OwnerId = "" }, "owner"},
		{"no legs", func(p *PlaceOperationParams) { p.Legs = nil }, "legs"},
		{"zero odd", func(p *PlaceOperationParams) { p.Legs[0].Odd = decimal.Zero }, "odd"},
		{"negative odd", func(p *PlaceOperationParams) { p.Legs[0].Odd = decimal.NewFromInt(-2) }, "odd"},
		{"blank result", func(p *PlaceOperationParams) { p.Legs[0].Result = "  " }, "result"},
		{"no stakes", func(p *PlaceOperationParams) { p.Legs[0].Stakes = nil }, "stakes"},
		{"zero stake", func(p *PlaceOperationParams) { p.Legs[0].Stakes[0].Stake = decimal.Zero }, "stake"},
		{"no account", func(p *PlaceOperationParams) { p.Legs[0].Stakes[0].AccountId = "" }, "accountId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			p.Legs = []LegParams{{
				Result: valid.Legs[0].Result,
				Odd:    valid.Legs[0].Odd,
				Stakes: []StakeParams{valid.Legs[0].Stakes[0]},
			}}
			tt.mutate(&p)

			err := p.Validate()
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestResolveExplicitParamsValidate(t *testing.T) {
	base := ResolveExplicitParams{OwnerId: "owner-1", OperationId: "op-1"}

	won := base
	won.Status = models.BetWon
	won.TotalPayout = decimal.NewFromInt(100)
	assert.NoError(t, won.Validate())

	lost := base
	lost.Status = models.BetLost
	assert.NoError(t, lost.Validate())

	wonWithoutPayout := base
	wonWithoutPayout.Status = models.BetWon
	assert.ErrorIs(t, wonWithoutPayout.Validate(), ErrValidation)

	lostWithPayout := base
	lostWithPayout.Status = models.BetLost
	lostWithPayout.TotalPayout = decimal.NewFromInt(5)
	assert.ErrorIs(t, lostWithPayout.Validate(), ErrValidation)

	unknown := base
	unknown.Status = "void"
	assert.ErrorIs(t, unknown.Validate(), ErrValidation)
}

func TestTransferParamsValidate(t *testing.T) {
	p := TransferParams{OwnerId: "o", FromAccountId: "a", ToAccountId: "a", Amount: decimal.NewFromInt(1)}
	assert.ErrorIs(t, p.Validate(), ErrValidation)

	p.ToAccountId = "b"
	assert.NoError(t, p.Validate())

	p.Amount = decimal.NewFromInt(-1)
	assert.ErrorIs(t, p.Validate(), ErrValidation)
}

func TestRecordTransactionParamsRejectsSystemTypes(t *testing.T) {
	for _, typ := range []models.TransactionType{models.TxBetPlaced, models.TxBetWon, models.TxTransferIn, models.TxClubPayment, models.TxOpeningBalance} {
		p := RecordTransactionParams{OwnerId: "o", AccountId: "a", Type: typ, Amount: decimal.NewFromInt(1)}
		assert.ErrorIs(t, p.Validate(), ErrValidation, string(typ))
	}
}

func TestValidPeriod(t *testing.T) {
	assert.True(t, ValidPeriod("2024-03"))
	assert.False(t, ValidPeriod("2024-13"))
	assert.False(t, ValidPeriod("2024-3"))
	assert.False(t, ValidPeriod("march"))
}
