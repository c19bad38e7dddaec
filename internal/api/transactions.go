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

	"go.uber.org/zap"
)

// RecordTransaction records a manual movement. The type decides the sign.
func (s *LedgerService) RecordTransaction(ctx context.Context, params store.RecordTransactionParams) (transaction *models.Transaction, err error) {
	start := time.Now()
	defer func() { err = s.finish("record_transaction", start, err) }()

	transaction, err = s.store.RecordTransaction(ctx, params)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Transaction recorded",
		zap.String("owner_id", params.OwnerId),
		zap.String("account_id", params.AccountId),
		zap.String("type", string(params.Type)),
		zap.String("amount", transaction.Amount.String()))

	s.committed(ctx, events.Event{
		Type:           events.TransactionRecorded,
		OwnerId:        params.OwnerId,
		AccountIds:     []string{params.AccountId},
		TransactionIds: []string{transaction.Id},
		Amount:         transaction.Amount,
	})
	return transaction, nil
}

func (s *LedgerService) Transfer(ctx context.Context, params store.TransferParams) (out, in *models.Transaction, err error) {
	start := time.Now()
	defer func() { err = s.finish("transfer", start, err) }()

	out, in, err = s.store.Transfer(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("Transfer recorded",
		zap.String("owner_id", params.OwnerId),
		zap.String("from_account_id", params.FromAccountId),
		zap.String("to_account_id", params.ToAccountId),
		zap.String("amount", params.Amount.String()))

	s.committed(ctx, events.Event{
		Type:           events.TransferRecorded,
		OwnerId:        params.OwnerId,
		AccountIds:     []string{params.FromAccountId, params.ToAccountId},
		TransactionIds: []string{out.Id, in.Id},
		Amount:         params.Amount,
	})
	return out, in, nil
}

// ReverseTransaction undoes a row together with everything bound to it and
// returns the rows that were removed.
func (s *LedgerService) ReverseTransaction(ctx context.Context, ownerId, transactionId string) (reversed []models.Transaction, err error) {
	start := time.Now()
	defer func() { err = s.finish("reverse_transaction", start, err) }()

	reversed, err = s.store.ReverseTransaction(ctx, ownerId, transactionId)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(reversed))
	var accountIds []string
	seen := make(map[string]bool)
	for i, t := range reversed {
		ids[i] = t.Id
		if !seen[t.AccountId] {
			seen[t.AccountId] = true
			accountIds = append(accountIds, t.AccountId)
		}
	}

	zap.L().Info("Transaction reversed",
		zap.String("owner_id", ownerId),
		zap.String("transaction_id", transactionId),
		zap.Int("rows", len(reversed)))

	s.committed(ctx, events.Event{
		Type:           events.TransactionReversed,
		OwnerId:        ownerId,
		AccountIds:     accountIds,
		TransactionIds: ids,
	})
	return reversed, nil
}

func (s *LedgerService) GetTransactionHistory(ctx context.Context, ownerId string, limit, offset int) (history []models.Transaction, err error) {
	start := time.Now()
	defer func() { err = s.finish("transaction_history", start, err) }()

	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}
	return s.store.GetTransactionHistory(ctx, ownerId, limit, offset)
}
