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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateAccount opens an account and records its opening balances as
// ledger rows, so the balances equal the log from the first moment.
func (s *Service) CreateAccount(ctx context.Context, params store.CreateAccountParams) (*models.Account, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		account, err = s.createAccountTx(ctx, tx, params.OwnerId, params.Profile, params.OpeningCash, params.OpeningFreebet, "opening")
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Account created",
		zap.String("account_id", account.Id),
		zap.String("owner_id", account.OwnerId),
		zap.String("name", account.Name))
	return account, nil
}

func (s *Service) createAccountTx(ctx context.Context, tx *sql.Tx, ownerId string, p store.AccountProfile, cash, freebet decimal.Decimal, origin string) (*models.Account, error) {
	now := s.clock.Next()
	accountId := uuid.New().String()

	goal := p.Goal
	if goal.IsZero() {
		goal = models.DefaultGoal
	}

	_, err := tx.ExecContext(ctx, s.q(queryInsertAccount),
		accountId, ownerId, strings.TrimSpace(p.Name), p.Bookmaker, "0", "0",
		goal.String(), p.ClubVolume.String(), p.PaymentDay, p.PaymentAmount.String(),
		"", p.Notes, p.LastCodeDate, true, int64(1), now, now)
	if err != nil {
		return nil, failure("insert account", err)
	}

	if cash.IsPositive() {
		if _, err := s.adjustBalance(ctx, tx, balanceChange{OwnerId: ownerId, AccountId: accountId, Field: models.FieldCash, Delta: cash}); err != nil {
			return nil, err
		}
		_, err := s.recordTransaction(ctx, tx, ledgerEntry{
			OwnerId:     ownerId,
			AccountId:   accountId,
			Type:        models.TxOpeningBalance,
			Amount:      cash,
			Description: "Opening balance",
			Details:     models.CashDetails{Origin: origin},
		})
		if err != nil {
			return nil, err
		}
	}

	if freebet.IsPositive() {
		if _, err := s.adjustBalance(ctx, tx, balanceChange{OwnerId: ownerId, AccountId: accountId, Field: models.FieldFreebet, Delta: freebet}); err != nil {
			return nil, err
		}
		_, err := s.recordTransaction(ctx, tx, ledgerEntry{
			OwnerId:     ownerId,
			AccountId:   accountId,
			Type:        models.TxFreebetCredit,
			Amount:      decimal.Zero,
			Description: "Opening free-bet balance",
			Details:     models.FreebetDetails{Amount: freebet},
		})
		if err != nil {
			return nil, err
		}
	}

	return s.getAccount(ctx, tx, ownerId, accountId)
}

// UpdateAccount replaces the descriptive fields of an account. Balances are
// left untouched.
func (s *Service) UpdateAccount(ctx context.Context, params store.UpdateAccountParams) (*models.Account, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getAccount(ctx, tx, params.OwnerId, params.AccountId)
		if err != nil {
			return err
		}

		lastPaid := params.LastPaidPeriod
		if lastPaid == "" {
			lastPaid = current.LastPaidPeriod
		}
		if err := s.updateProfile(ctx, tx, current, params.Profile, lastPaid); err != nil {
			return err
		}

		account, err = s.getAccount(ctx, tx, params.OwnerId, params.AccountId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) updateProfile(ctx context.Context, tx *sql.Tx, current *models.Account, p store.AccountProfile, lastPaid string) error {
	result, err := tx.ExecContext(ctx, s.q(queryUpdateAccountProfile),
		strings.TrimSpace(p.Name), p.Bookmaker, p.Goal.String(), p.ClubVolume.String(),
		p.PaymentDay, p.PaymentAmount.String(), lastPaid, p.Notes, p.LastCodeDate, s.clock.Peek(),
		current.Id, current.OwnerId, current.Version)
	if err != nil {
		return failure("update account", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return failure("check rows affected", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account update failed - %w", store.ErrConcurrentModification)
	}
	return nil
}

// DeactivateAccount hides an account from active listings. Its history and
// balances are kept.
func (s *Service) DeactivateAccount(ctx context.Context, ownerId, accountId string) error {
	result, err := s.db.ExecContext(ctx, s.q(queryDeactivateAccount), s.clock.Peek(), accountId, ownerId)
	if err != nil {
		return failure("deactivate account", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return failure("check rows affected", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account %s: %w", accountId, store.ErrNotFoundOrUnauthorized)
	}

	zap.L().Info("Account deactivated", zap.String("account_id", accountId), zap.String("owner_id", ownerId))
	return nil
}

func (s *Service) GetAccount(ctx context.Context, ownerId, accountId string) (*models.Account, error) {
	return s.getAccount(ctx, s.db, ownerId, accountId)
}

func (s *Service) getAccount(ctx context.Context, q querier, ownerId, accountId string) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx, s.q(queryGetAccount), accountId, ownerId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountId, store.ErrNotFoundOrUnauthorized)
	}
	if err != nil {
		return nil, failure("get account", err)
	}
	return account, nil
}

// GetAccounts lists an owner's accounts ordered by name.
func (s *Service) GetAccounts(ctx context.Context, ownerId string, activeOnly bool) ([]models.Account, error) {
	query := queryGetAccounts
	if activeOnly {
		query = queryGetActiveAccounts
	}
	return s.queryAccounts(ctx, s.db, query, ownerId)
}

func (s *Service) queryAccounts(ctx context.Context, q querier, query string, args ...any) ([]models.Account, error) {
	rows, err := q.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, failure("query accounts", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, failure("scan account", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, failure("iterate account rows", err)
	}
	return accounts, nil
}

// GetOwners lists every owner that holds at least one account.
func (s *Service) GetOwners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q(queryGetOwners))
	if err != nil {
		return nil, failure("query owners", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var owners []string
	for rows.Next() {
		var ownerId string
		if err := rows.Scan(&ownerId); err != nil {
			return nil, failure("scan owner", err)
		}
		owners = append(owners, ownerId)
	}
	if err := rows.Err(); err != nil {
		return nil, failure("iterate owner rows", err)
	}
	return owners, nil
}

// PayClubFee debits the configured club fee and marks the current period
// as paid. Fees may overdraw the account.
func (s *Service) PayClubFee(ctx context.Context, ownerId, accountId string) (*models.Transaction, error) {
	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}

	var recorded *models.Transaction
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		account, err := s.getAccount(ctx, tx, ownerId, accountId)
		if err != nil {
			return err
		}
		if !account.HasPaymentSchedule() {
			return store.Invalid("paymentAmount", "no club payment is configured for this account")
		}

		now := s.clock.Next()
		period := now.Format("2006-01")
		fee := account.PaymentAmount

		if _, err := s.adjustBalance(ctx, tx, balanceChange{OwnerId: ownerId, AccountId: accountId, Field: models.FieldCash, Delta: fee.Neg()}); err != nil {
			return err
		}

		recorded, err = s.recordTransaction(ctx, tx, ledgerEntry{
			OwnerId:     ownerId,
			AccountId:   accountId,
			Type:        models.TxClubPayment,
			Amount:      fee.Neg(),
			Description: fmt.Sprintf("Club payment %s", period),
			Details:     models.FeeDetails{Period: period},
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q(querySetLastPaidPeriod), period, now, accountId, ownerId); err != nil {
			return failure("set last paid period", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Club fee paid",
		zap.String("account_id", accountId),
		zap.String("owner_id", ownerId),
		zap.String("amount", recorded.Amount.Neg().String()))
	return recorded, nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	var cash, freebet, goal, clubVolume, paymentAmount string
	var createdAt, updatedAt time.Time
	err := row.Scan(&a.Id, &a.OwnerId, &a.Name, &a.Bookmaker, &cash, &freebet, &goal, &clubVolume,
		&a.PaymentDay, &paymentAmount, &a.LastPaidPeriod, &a.Notes, &a.LastCodeDate, &a.Active, &a.Version,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	a.CreatedAt = createdAt.UTC()
	a.UpdatedAt = updatedAt.UTC()

	fields := []struct {
		raw  string
		dest *decimal.Decimal
		name string
	}{
		{cash, &a.CashBalance, "cash_balance"},
		{freebet, &a.FreebetBalance, "freebet_balance"},
		{goal, &a.Goal, "goal"},
		{clubVolume, &a.ClubVolume, "club_volume"},
		{paymentAmount, &a.PaymentAmount, "payment_amount"},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s '%s': %w", f.name, f.raw, err)
		}
		*f.dest = v
	}
	return &a, nil
}
