package api

import (
	"context"
	"strings"
	"testing"

	"bet-ledger-go/internal/events"
	"bet-ledger-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportTemplate(t *testing.T) {
	assert.Equal(t,
		"nome,casa_de_aposta,saldo,saldo_freebets,dia_pagamento,valor_pagamento,observacoes,data_ultimo_codigo\n",
		ImportTemplate())
}

func TestParseImportCSV(t *testing.T) {
	input := "\ufeffnome,saldo,casa_de_aposta,saldo_freebets,dia_pagamento,valor_pagamento\n" +
		"Conta A,150.25,Bet365,10,5,29.90\n" +
		" ,99,Nobody,,,\n" +
		"Conta B,,Betano,,,\n"

	rows, skipped, err := ParseImportCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, "Conta A", rows[0].Profile.Name)
	assert.Equal(t, "Bet365", rows[0].Profile.Bookmaker)
	assert.True(t, rows[0].Cash.Equal(d("150.25")))
	assert.True(t, rows[0].Freebet.Equal(d("10")))
	assert.Equal(t, 5, rows[0].Profile.PaymentDay)
	assert.True(t, rows[0].Profile.PaymentAmount.Equal(d("29.90")))

	assert.True(t, rows[1].Cash.IsZero())
	assert.Equal(t, 0, rows[1].Profile.PaymentDay)
}

func TestParseImportCSV_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"missing name column", "casa_de_aposta,saldo\nX,1\n"},
		{"bad amount", "nome,saldo\nA,abc\n"},
		{"bad payment day", "nome,dia_pagamento\nA,fifth\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseImportCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, store.ErrValidation)
		})
	}
}

func TestImportAccountsCSV_UpsertsByName(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	existing := env.account(t, "owner-1", "Conta A", "100", "0")

	input := "nome,casa_de_aposta,saldo,saldo_freebets\n" +
		"Conta A,Bet365,80,0\n" +
		"Conta B,Betano,40,5\n" +
		",,,\n"

	result, err := env.service.ImportAccountsCSV(ctx, "owner-1", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)

	updated, err := env.service.GetAccount(ctx, "owner-1", existing.Id)
	require.NoError(t, err)
	assert.True(t, updated.CashBalance.Equal(d("80")))
	assert.Equal(t, "Bet365", updated.Bookmaker)

	reports, err := env.service.ReconcileOwner(ctx, "owner-1")
	require.NoError(t, err)
	for _, r := range reports {
		assert.True(t, r.Balanced(), r.AccountId)
	}
	assert.Equal(t, events.AccountsImported, env.publisher.events[len(env.publisher.events)-1].Type)
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	a := env.account(t, "owner-1", "A", "100", "0")
	b := env.account(t, "owner-1", "B", "20", "0")

	_, _, err := env.service.Transfer(ctx, store.TransferParams{
		OwnerId: "owner-1", FromAccountId: a.Id, ToAccountId: b.Id, Amount: d("15"),
	})
	require.NoError(t, err)

	backup, err := env.service.Backup(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, backup.Accounts, 2)

	require.NoError(t, env.service.Restore(ctx, "owner-2", backup))

	accounts, err := env.service.GetAccounts(ctx, "owner-2")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	cash, _ := totals(accounts)
	assert.True(t, cash.Equal(d("120")))

	reports, err := env.service.ReconcileOwner(ctx, "owner-2")
	require.NoError(t, err)
	for _, r := range reports {
		assert.True(t, r.Balanced(), r.AccountId)
	}
}

func TestRestore_RejectsNilBackup(t *testing.T) {
	env := setupService(t)
	assert.ErrorIs(t, env.service.Restore(context.Background(), "owner-1", nil), store.ErrValidation)
}
