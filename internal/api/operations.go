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
	"strings"
	"time"

	"bet-ledger-go/internal/events"
	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ParseBetStatus accepts the terminal statuses plus the Portuguese names
// older clients still send.
func ParseBetStatus(raw string) (models.BetStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "won", "ganha":
		return models.BetWon, nil
	case "lost", "perdida":
		return models.BetLost, nil
	}
	return "", store.Invalid("status", "must be won or lost")
}

// PlaceOperation debits every stake of a multi-leg bet in one unit.
func (s *LedgerService) PlaceOperation(ctx context.Context, params store.PlaceOperationParams) (operation *models.Operation, err error) {
	start := time.Now()
	defer func() { err = s.finish("place_operation", start, err) }()

	operation, err = s.store.PlaceOperation(ctx, params)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(operation.Legs))
	var accountIds []string
	staked := decimal.Zero
	for i, leg := range operation.Legs {
		ids[i] = leg.Id
		accountIds = append(accountIds, leg.AccountId)
		if bet, ok := leg.Bet(); ok {
			staked = staked.Add(bet.Stake)
		}
	}

	zap.L().Info("Operation placed",
		zap.String("owner_id", params.OwnerId),
		zap.String("operation_id", operation.Id),
		zap.Int("legs", len(operation.Legs)),
		zap.String("staked", staked.String()))

	s.committed(ctx, events.Event{
		Type:           events.OperationPlaced,
		OwnerId:        params.OwnerId,
		OperationId:    operation.Id,
		AccountIds:     accountIds,
		TransactionIds: ids,
		Amount:         staked,
	})
	return operation, nil
}

func (s *LedgerService) ResolveByMarket(ctx context.Context, params store.ResolveMarketParams) (resolution *models.Resolution, err error) {
	start := time.Now()
	defer func() { err = s.finish("resolve_market", start, err) }()

	resolution, err = s.store.ResolveByMarket(ctx, params)
	if err != nil {
		return nil, err
	}
	s.resolved(ctx, params.OwnerId, resolution)
	return resolution, nil
}

func (s *LedgerService) ResolveExplicit(ctx context.Context, params store.ResolveExplicitParams) (resolution *models.Resolution, err error) {
	start := time.Now()
	defer func() { err = s.finish("resolve_explicit", start, err) }()

	resolution, err = s.store.ResolveExplicit(ctx, params)
	if err != nil {
		return nil, err
	}
	s.resolved(ctx, params.OwnerId, resolution)
	return resolution, nil
}

func (s *LedgerService) resolved(ctx context.Context, ownerId string, r *models.Resolution) {
	s.metrics.AddCredited(r.TotalCredited)

	var ids, accountIds []string
	for _, leg := range r.Legs {
		ids = append(ids, leg.TransactionId)
		accountIds = append(accountIds, leg.AccountId)
		if leg.WinTransactionId != "" {
			ids = append(ids, leg.WinTransactionId)
		}
	}

	zap.L().Info("Operation resolved",
		zap.String("owner_id", ownerId),
		zap.String("operation_id", r.OperationId),
		zap.Int("legs", len(r.Legs)),
		zap.String("credited", r.TotalCredited.String()))

	s.committed(ctx, events.Event{
		Type:           events.OperationResolved,
		OwnerId:        ownerId,
		OperationId:    r.OperationId,
		AccountIds:     accountIds,
		TransactionIds: ids,
		Amount:         r.TotalCredited,
	})
}

func (s *LedgerService) GetActiveBets(ctx context.Context, ownerId string) (bets []models.Transaction, err error) {
	start := time.Now()
	defer func() { err = s.finish("active_bets", start, err) }()

	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}
	return s.store.GetActiveBets(ctx, ownerId)
}
