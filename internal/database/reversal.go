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
	"bet-ledger-go/internal/settlement"
	"bet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// ReverseTransaction undoes a transaction together with everything that
// cannot exist without it, then deletes those rows:
//   - a bet row takes every row of its operation with it,
//   - a transfer leg takes its linked leg,
//   - anything else is reversed alone.
//
// Balance effects are reversed exactly as they were applied; a free-bet
// stake is returned to the free-bet balance whatever its status.
func (s *Service) ReverseTransaction(ctx context.Context, ownerId, transactionId string) ([]models.Transaction, error) {
	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}
	if transactionId == "" {
		return nil, store.Invalid("transactionId", "must not be empty")
	}

	var reversed []models.Transaction
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		target, err := s.getTransaction(ctx, tx, ownerId, transactionId)
		if err != nil {
			return err
		}

		reversed, err = s.reversalClosure(ctx, tx, target)
		if err != nil {
			return err
		}

		for i := range reversed {
			if err := s.reverseOne(ctx, tx, &reversed[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Transaction reversed",
		zap.String("transaction_id", transactionId),
		zap.String("owner_id", ownerId),
		zap.Int("rows", len(reversed)))
	return reversed, nil
}

// reversalClosure collects the rows that must be reversed with target.
func (s *Service) reversalClosure(ctx context.Context, tx *sql.Tx, target *models.Transaction) ([]models.Transaction, error) {
	switch {
	case target.TransactionType.IsBet():
		operationId := target.OperationId()
		if operationId == "" {
			return []models.Transaction{*target}, nil
		}
		return s.queryTransactions(ctx, tx, queryGetOperationTransactions, target.OwnerId, operationId)

	case target.TransactionType.IsTransfer():
		closure := []models.Transaction{*target}
		link, ok := target.Transfer()
		if !ok || link.LinkedTransferId == "" {
			return closure, nil
		}
		linked, err := s.getTransaction(ctx, tx, target.OwnerId, link.LinkedTransferId)
		if errors.Is(err, store.ErrNotFoundOrUnauthorized) {
			zap.L().Warn("Linked transfer leg missing, reversing single leg",
				zap.String("transaction_id", target.Id),
				zap.String("linked_transfer_id", link.LinkedTransferId))
			return closure, nil
		}
		if err != nil {
			return nil, err
		}
		return append(closure, *linked), nil
	}

	return []models.Transaction{*target}, nil
}

func (s *Service) reverseOne(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	inverse := settlement.EffectOf(t).Inverse()
	if err := s.applyEffect(ctx, tx, t.OwnerId, t.AccountId, inverse.Cash, inverse.Freebet); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, s.q(queryDeleteTransaction), t.Id, t.OwnerId)
	if err != nil {
		return failure("delete transaction", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return failure("check rows affected", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %s already removed - %w", t.Id, store.ErrConcurrentModification)
	}
	return nil
}
