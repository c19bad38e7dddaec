package database

import (
	"context"
	"fmt"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/settlement"
	"bet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReconcileAccount verifies that the stored balances of an account match the
// sum of its transaction log. A mismatch returns the report together with an
// error wrapping store.ErrBalanceMismatch.
func (s *Service) ReconcileAccount(ctx context.Context, ownerId, accountId string) (*models.Reconciliation, error) {
	zap.L().Info("Reconciling balance", zap.String("owner_id", ownerId), zap.String("account_id", accountId))

	account, err := s.GetAccount(ctx, ownerId, accountId)
	if err != nil {
		return nil, err
	}

	transactions, err := s.queryTransactions(ctx, s.db, queryGetAccountTransactions, ownerId, accountId)
	if err != nil {
		return nil, err
	}

	report := reconcile(account, transactions)

	// Check if balances match (exact decimal comparison)
	if !report.Balanced() {
		zap.L().Error("Balance reconciliation failed",
			zap.String("owner_id", ownerId),
			zap.String("account_id", accountId),
			zap.String("cash_balance", report.CashBalance.String()),
			zap.String("computed_cash", report.ComputedCash.String()),
			zap.String("freebet_balance", report.FreebetBalance.String()),
			zap.String("computed_freebet", report.ComputedFreebet.String()))
		return report, fmt.Errorf("%w: cash stored=%s computed=%s, freebet stored=%s computed=%s",
			store.ErrBalanceMismatch,
			report.CashBalance.String(), report.ComputedCash.String(),
			report.FreebetBalance.String(), report.ComputedFreebet.String())
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("owner_id", ownerId),
		zap.String("account_id", accountId),
		zap.String("cash_balance", report.CashBalance.String()),
		zap.String("freebet_balance", report.FreebetBalance.String()))
	return report, nil
}

func reconcile(account *models.Account, transactions []models.Transaction) *models.Reconciliation {
	cash := decimal.Zero
	freebet := decimal.Zero
	for i := range transactions {
		effect := settlement.EffectOf(&transactions[i])
		cash = cash.Add(effect.Cash)
		freebet = freebet.Add(effect.Freebet)
	}
	return &models.Reconciliation{
		AccountId:       account.Id,
		CashBalance:     account.CashBalance,
		ComputedCash:    cash,
		FreebetBalance:  account.FreebetBalance,
		ComputedFreebet: freebet,
	}
}
