package settlement

import (
	"testing"

	"bet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCredit(t *testing.T) {
	tests := []struct {
		name      string
		payout    string
		stake     string
		isFreebet bool
		want      string
	}{
		{"cash stake returns full payout", "100", "40", false, "100"},
		{"freebet keeps only winnings", "30", "10", true, "20"},
		{"freebet below stake floors at zero", "8", "10", true, "0"},
		{"zero payout", "0", "10", false, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Credit(d(tt.payout), d(tt.stake), tt.isFreebet)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestPayout(t *testing.T) {
	assert.True(t, Payout(d("40"), d("2.5")).Equal(d("100")))
	assert.True(t, Payout(d("10"), d("3.0")).Equal(d("30")))
}

func TestSplitPayout(t *testing.T) {
	shares := SplitPayout(d("100"), []decimal.Decimal{d("1"), d("1"), d("1")})
	require.Len(t, shares, 3)
	assert.Equal(t, "33.33", shares[0].String())
	assert.Equal(t, "33.33", shares[1].String())
	assert.Equal(t, "33.34", shares[2].String())

	weighted := SplitPayout(d("150"), []decimal.Decimal{d("100"), d("50")})
	assert.Equal(t, "100", weighted[0].String())
	assert.Equal(t, "50", weighted[1].String())

	single := SplitPayout(d("77.77"), []decimal.Decimal{d("5")})
	assert.Equal(t, "77.77", single[0].String())

	assert.Nil(t, SplitPayout(d("10"), nil))
}

func TestSplitPayoutSumsToTotal(t *testing.T) {
	weights := []decimal.Decimal{d("12.5"), d("7.3"), d("19.99"), d("0.01")}
	total := d("123.45")

	sum := decimal.Zero
	for _, s := range SplitPayout(total, weights) {
		sum = sum.Add(s)
	}
	assert.True(t, sum.Equal(total), "shares sum to %s", sum)
}

func TestEffectOf(t *testing.T) {
	cashBet := models.Transaction{
		TransactionType: models.TxBetPlaced,
		Amount:          d("-40"),
		Details:         models.BetDetails{Stake: d("40"), Status: models.BetLost},
	}
	e := EffectOf(&cashBet)
	assert.True(t, e.Cash.Equal(d("-40")))
	assert.True(t, e.Freebet.IsZero())

	freeBet := models.Transaction{
		TransactionType: models.TxBetPlaced,
		Amount:          decimal.Zero,
		Details:         models.BetDetails{Stake: d("10"), IsFreebet: true, Status: models.BetWon},
	}
	e = EffectOf(&freeBet)
	assert.True(t, e.Cash.IsZero())
	assert.True(t, e.Freebet.Equal(d("-10")))
	assert.True(t, e.Inverse().Freebet.Equal(d("10")))

	freebetCredit := models.Transaction{
		TransactionType: models.TxFreebetCredit,
		Amount:          decimal.Zero,
		Details:         models.FreebetDetails{Amount: d("25")},
	}
	e = EffectOf(&freebetCredit)
	assert.True(t, e.Freebet.Equal(d("25")))

	win := models.Transaction{
		TransactionType: models.TxBetWon,
		Amount:          d("20"),
		Details:         models.WinDetails{Stake: d("10"), IsFreebet: true},
	}
	e = EffectOf(&win)
	assert.True(t, e.Cash.Equal(d("20")))
	assert.True(t, e.Freebet.IsZero())
}

func TestSignedEffect(t *testing.T) {
	e, err := SignedEffect(models.TxExpense, d("15"))
	require.NoError(t, err)
	assert.True(t, e.Cash.Equal(d("-15")))

	e, err = SignedEffect(models.TxDeposit, d("15"))
	require.NoError(t, err)
	assert.True(t, e.Cash.Equal(d("15")))

	e, err = SignedEffect(models.TxFreebetCredit, d("5"))
	require.NoError(t, err)
	assert.True(t, e.Cash.IsZero())
	assert.True(t, e.Freebet.Equal(d("5")))

	_, err = SignedEffect(models.TxBetWon, d("5"))
	assert.Error(t, err)
}

func TestProfitLossIgnoresNonBetRows(t *testing.T) {
	txs := []models.Transaction{
		{TransactionType: models.TxBetPlaced, Amount: d("-40")},
		{TransactionType: models.TxBetWon, Amount: d("100")},
		{TransactionType: models.TxDeposit, Amount: d("500")},
		{TransactionType: models.TxExpense, Amount: d("-20")},
	}
	assert.True(t, ProfitLoss(txs).Equal(d("60")))
}
