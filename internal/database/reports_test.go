package database

import (
	"context"
	"testing"
	"time"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthStart(t *testing.T) {
	at := time.Date(2024, 3, 31, 23, 59, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), MonthStart(at))
}

func TestMonthlySummary(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	march := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	fixClock(service, march)

	account := createTestAccount(t, service, "owner-1", "A", "100", "0")
	record := func(typ models.TransactionType, amount string) {
		_, err := service.RecordTransaction(ctx, store.RecordTransactionParams{OwnerId: "owner-1", AccountId: account.Id, Type: typ, Amount: d(amount)})
		require.NoError(t, err)
	}
	record(models.TxDeposit, "50")
	record(models.TxExpense, "20")

	op := placeSingle(t, service, "owner-1", account.Id, "home", "2.5", "40", false)
	_, err := service.ResolveByMarket(ctx, store.ResolveMarketParams{OwnerId: "owner-1", OperationId: op.Id, WinningMarket: "home"})
	require.NoError(t, err)

	// outside the window
	fixClock(service, time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC))
	record(models.TxDeposit, "999")

	summary, err := service.MonthlySummary(ctx, "owner-1", MonthStart(march), MonthStart(march).AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.True(t, summary.Credits.Equal(d("50")), "credits %s", summary.Credits)
	assert.True(t, summary.Debits.Equal(d("20")), "debits %s", summary.Debits)
	assert.True(t, summary.NetPL.Equal(d("60")), "net %s", summary.NetPL)

	empty, err := service.MonthlySummary(ctx, "owner-2", MonthStart(march), MonthStart(march).AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, empty.NetPL.IsZero())
}

func TestAccountReport(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	a := createTestAccount(t, service, "owner-1", "A", "100", "10")
	b := createTestAccount(t, service, "owner-1", "B", "100", "0")

	cash := placeSingle(t, service, "owner-1", a.Id, "home", "2", "30", false)
	free := placeSingle(t, service, "owner-1", a.Id, "home", "3", "10", true)
	lost := placeSingle(t, service, "owner-1", b.Id, "home", "2", "25", false)

	for _, op := range []string{cash.Id, free.Id} {
		_, err := service.ResolveByMarket(ctx, store.ResolveMarketParams{OwnerId: "owner-1", OperationId: op, WinningMarket: "home"})
		require.NoError(t, err)
	}
	_, err := service.ResolveByMarket(ctx, store.ResolveMarketParams{OwnerId: "owner-1", OperationId: lost.Id, WinningMarket: "away"})
	require.NoError(t, err)

	reports, err := service.AccountReport(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byName := map[string]models.AccountReport{}
	for _, r := range reports {
		byName[r.Name] = r
	}

	// A: -30 + 60 (cash win) + 0 (free stake) + 20 (free winnings)
	assert.True(t, byName["A"].ProfitLoss.Equal(d("50")), "A p/l %s", byName["A"].ProfitLoss)
	assert.True(t, byName["A"].Volume.Equal(d("40")), "A volume %s", byName["A"].Volume)
	assert.Equal(t, 2, byName["A"].BetCount)

	assert.True(t, byName["B"].ProfitLoss.Equal(d("-25")))
	assert.Equal(t, 1, byName["B"].BetCount)
}

func TestMonthlySeries(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	fixClock(service, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	account := createTestAccount(t, service, "owner-1", "A", "100", "0")
	_, err := service.UpdateAccount(ctx, store.UpdateAccountParams{
		OwnerId: "owner-1", AccountId: account.Id,
		Profile: store.AccountProfile{Name: "A", PaymentDay: 1, PaymentAmount: d("15")},
	})
	require.NoError(t, err)
	_, err = service.PayClubFee(ctx, "owner-1", account.Id)
	require.NoError(t, err)

	fixClock(service, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	_, err = service.RecordTransaction(ctx, store.RecordTransactionParams{OwnerId: "owner-1", AccountId: account.Id, Type: models.TxExpense, Amount: d("7")})
	require.NoError(t, err)
	placeSingle(t, service, "owner-1", account.Id, "home", "2", "10", false)

	series, err := service.MonthlySeries(ctx, "owner-1", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), 3)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, "2024-01", series[0].Period)
	assert.True(t, series[0].ClubPayments.Equal(d("15")))
	assert.Equal(t, "2024-02", series[1].Period)
	assert.True(t, series[1].ProfitLoss.IsZero())
	assert.Equal(t, "2024-03", series[2].Period)
	assert.True(t, series[2].Expenses.Equal(d("7")))
	assert.True(t, series[2].ProfitLoss.Equal(d("-10")))

	full, err := service.MonthlySeries(ctx, "owner-1", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	assert.Len(t, full, 12)
	assert.Equal(t, "2023-04", full[0].Period)
}
