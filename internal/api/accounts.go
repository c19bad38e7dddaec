/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"time"

	"bet-ledger-go/internal/events"
	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateAccount opens an account; opening balances become log rows.
func (s *LedgerService) CreateAccount(ctx context.Context, params store.CreateAccountParams) (account *models.Account, err error) {
	start := time.Now()
	defer func() { err = s.finish("create_account", start, err) }()

	account, err = s.store.CreateAccount(ctx, params)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Account created",
		zap.String("owner_id", params.OwnerId),
		zap.String("account_id", account.Id),
		zap.String("cash", account.CashBalance.String()),
		zap.String("freebet", account.FreebetBalance.String()))

	s.committed(ctx, events.Event{
		Type:       events.AccountCreated,
		OwnerId:    params.OwnerId,
		AccountIds: []string{account.Id},
		Amount:     account.CashBalance,
	})
	return account, nil
}

func (s *LedgerService) UpdateAccount(ctx context.Context, params store.UpdateAccountParams) (account *models.Account, err error) {
	start := time.Now()
	defer func() { err = s.finish("update_account", start, err) }()

	account, err = s.store.UpdateAccount(ctx, params)
	if err != nil {
		return nil, err
	}

	s.committed(ctx, events.Event{
		Type:       events.AccountUpdated,
		OwnerId:    params.OwnerId,
		AccountIds: []string{account.Id},
	})
	return account, nil
}

// DeactivateAccount hides the account; its history stays in the log.
func (s *LedgerService) DeactivateAccount(ctx context.Context, ownerId, accountId string) (err error) {
	start := time.Now()
	defer func() { err = s.finish("deactivate_account", start, err) }()

	if err = s.store.DeactivateAccount(ctx, ownerId, accountId); err != nil {
		return err
	}

	s.committed(ctx, events.Event{
		Type:       events.AccountDeactivated,
		OwnerId:    ownerId,
		AccountIds: []string{accountId},
	})
	return nil
}

func (s *LedgerService) GetAccount(ctx context.Context, ownerId, accountId string) (account *models.Account, err error) {
	start := time.Now()
	defer func() { err = s.finish("get_account", start, err) }()

	return s.store.GetAccount(ctx, ownerId, accountId)
}

// GetAccounts lists the owner's active accounts.
func (s *LedgerService) GetAccounts(ctx context.Context, ownerId string) (accounts []models.Account, err error) {
	start := time.Now()
	defer func() { err = s.finish("get_accounts", start, err) }()

	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}
	return s.store.GetAccounts(ctx, ownerId, true)
}

// PayClubFee debits the account's configured fee for the current period.
func (s *LedgerService) PayClubFee(ctx context.Context, ownerId, accountId string) (payment *models.Transaction, err error) {
	start := time.Now()
	defer func() { err = s.finish("pay_club_fee", start, err) }()

	payment, err = s.store.PayClubFee(ctx, ownerId, accountId)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Club fee paid",
		zap.String("owner_id", ownerId),
		zap.String("account_id", accountId),
		zap.String("amount", payment.Amount.Abs().String()))

	s.committed(ctx, events.Event{
		Type:           events.ClubFeePaid,
		OwnerId:        ownerId,
		AccountIds:     []string{accountId},
		TransactionIds: []string{payment.Id},
		Amount:         payment.Amount.Abs(),
	})
	return payment, nil
}

// ReconcileOwner checks every account of the owner, inactive ones included.
// Mismatches are reported, not returned as errors.
func (s *LedgerService) ReconcileOwner(ctx context.Context, ownerId string) (reports []models.Reconciliation, err error) {
	start := time.Now()
	defer func() { err = s.finish("reconcile_owner", start, err) }()

	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}

	accounts, err := s.store.GetAccounts(ctx, ownerId, false)
	if err != nil {
		return nil, err
	}

	reports = make([]models.Reconciliation, 0, len(accounts))
	for _, account := range accounts {
		report, rerr := s.store.ReconcileAccount(ctx, ownerId, account.Id)
		if report == nil {
			return nil, rerr
		}
		if !report.Balanced() {
			zap.L().Warn("Account balance does not match its log",
				zap.String("owner_id", ownerId),
				zap.String("account_id", account.Id),
				zap.String("cash", report.CashBalance.String()),
				zap.String("computed_cash", report.ComputedCash.String()),
				zap.String("freebet", report.FreebetBalance.String()),
				zap.String("computed_freebet", report.ComputedFreebet.String()))
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

func totals(accounts []models.Account) (cash, freebet decimal.Decimal) {
	for _, a := range accounts {
		cash = cash.Add(a.CashBalance)
		freebet = freebet.Add(a.FreebetBalance)
	}
	return cash, freebet
}
