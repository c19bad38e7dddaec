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

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// balanceChange is one adjustment applied to a single balance field.
type balanceChange struct {
	OwnerId      string
	AccountId    string
	Field        models.BalanceField
	Delta        decimal.Decimal
	RequireFunds bool // reject a debit that would take the balance below zero
}

// adjustBalance applies a change inside tx and returns the new balance.
// The read, the funds check and the write are bound together by the
// account version: the update only lands if nobody touched the row since
// it was read.
func (s *Service) adjustBalance(ctx context.Context, tx *sql.Tx, c balanceChange) (decimal.Decimal, error) {
	var cashStr, freebetStr string
	var version int64

	err := tx.QueryRowContext(ctx, s.q(queryGetAccountBalances), c.AccountId, c.OwnerId).Scan(&cashStr, &freebetStr, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("account %s: %w", c.AccountId, store.ErrNotFoundOrUnauthorized)
	}
	if err != nil {
		return decimal.Zero, failure("get account balance", err)
	}

	updateQuery := queryUpdateCashBalance
	currentStr := cashStr
	if c.Field == models.FieldFreebet {
		updateQuery = queryUpdateFreebetBalance
		currentStr = freebetStr
	}

	current, err := decimal.NewFromString(currentStr)
	if err != nil {
		return decimal.Zero, failure(fmt.Sprintf("parse %s balance '%s'", c.Field, currentStr), err)
	}

	newBalance := current.Add(c.Delta)
	if c.RequireFunds && c.Delta.IsNegative() && newBalance.IsNegative() {
		return decimal.Zero, &store.InsufficientFundsError{
			AccountId: c.AccountId,
			Field:     string(c.Field),
			Available: current,
			Requested: c.Delta.Neg(),
		}
	}

	result, err := tx.ExecContext(ctx, s.q(updateQuery), newBalance.String(), s.clock.Peek(), c.AccountId, c.OwnerId, version)
	if err != nil {
		return decimal.Zero, failure("update balance", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return decimal.Zero, failure("check rows affected", err)
	}
	if rowsAffected == 0 {
		return decimal.Zero, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	zap.L().Debug("Balance adjusted",
		zap.String("account_id", c.AccountId),
		zap.String("field", string(c.Field)),
		zap.String("old_balance", current.String()),
		zap.String("new_balance", newBalance.String()))

	return newBalance, nil
}

// applyEffect adjusts both balance fields of an account by a signed effect,
// skipping fields that do not move.
func (s *Service) applyEffect(ctx context.Context, tx *sql.Tx, ownerId, accountId string, cash, freebet decimal.Decimal) error {
	if !cash.IsZero() {
		if _, err := s.adjustBalance(ctx, tx, balanceChange{OwnerId: ownerId, AccountId: accountId, Field: models.FieldCash, Delta: cash}); err != nil {
			return err
		}
	}
	if !freebet.IsZero() {
		if _, err := s.adjustBalance(ctx, tx, balanceChange{OwnerId: ownerId, AccountId: accountId, Field: models.FieldFreebet, Delta: freebet}); err != nil {
			return err
		}
	}
	return nil
}
