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
	"fmt"
	"strings"
	"time"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/settlement"
	"bet-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// newOperationId builds "op-<unix millis>-<8 hex>".
func newOperationId(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("op-%d-%s", now.UnixMilli(), suffix)
}

// PlaceOperation debits every stake of every leg and records one bet_placed
// row per stake, all under a fresh operation id. Stakes must be covered by
// the balance they draw from; one short stake rejects the whole operation.
func (s *Service) PlaceOperation(ctx context.Context, params store.PlaceOperationParams) (*models.Operation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	operation := &models.Operation{
		Id:       newOperationId(s.clock.Peek()),
		Game:     params.Game,
		Category: params.Category,
	}

	zap.L().Info("Placing operation",
		zap.String("operation_id", operation.Id),
		zap.String("owner_id", params.OwnerId),
		zap.Int("legs", len(params.Legs)))

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, leg := range params.Legs {
			for _, stake := range leg.Stakes {
				field := models.FieldCash
				amount := stake.Stake.Neg()
				if stake.IsFreebet {
					field = models.FieldFreebet
					amount = decimal.Zero
				}

				_, err := s.adjustBalance(ctx, tx, balanceChange{
					OwnerId:      params.OwnerId,
					AccountId:    stake.AccountId,
					Field:        field,
					Delta:        stake.Stake.Neg(),
					RequireFunds: true,
				})
				if err != nil {
					return err
				}

				recorded, err := s.recordTransaction(ctx, tx, ledgerEntry{
					OwnerId:     params.OwnerId,
					AccountId:   stake.AccountId,
					Type:        models.TxBetPlaced,
					Amount:      amount,
					Description: betDescription(params.Game, leg.Result, leg.Odd),
					Details: models.BetDetails{
						OperationId: operation.Id,
						Result:      strings.TrimSpace(leg.Result),
						Odd:         leg.Odd,
						Stake:       stake.Stake,
						IsFreebet:   stake.IsFreebet,
						Status:      models.BetActive,
						Game:        params.Game,
						Category:    params.Category,
						Payout:      decimal.Zero,
					},
				})
				if err != nil {
					return err
				}
				operation.Legs = append(operation.Legs, *recorded)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Operation placed successfully",
		zap.String("operation_id", operation.Id),
		zap.Int("bets", len(operation.Legs)))
	return operation, nil
}

func betDescription(game, result string, odd decimal.Decimal) string {
	label := strings.TrimSpace(game)
	if label == "" {
		label = "Operation"
	}
	return fmt.Sprintf("%s: %s @ %s", label, strings.TrimSpace(result), odd.String())
}

// legOutcome is the decision taken for one active bet_placed row.
type legOutcome struct {
	Won    bool
	Payout decimal.Decimal
}

// decideFunc maps the active legs of an operation to their outcomes.
type decideFunc func(legs []models.Transaction) []legOutcome

// ResolveByMarket settles an operation by naming the winning result. Legs
// whose result matches win stake x odd; the others lose.
func (s *Service) ResolveByMarket(ctx context.Context, params store.ResolveMarketParams) (*models.Resolution, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	winning := strings.TrimSpace(params.WinningMarket)

	return s.resolveOperation(ctx, params.OwnerId, params.OperationId, func(legs []models.Transaction) []legOutcome {
		outcomes := make([]legOutcome, len(legs))
		for i := range legs {
			bet, _ := legs[i].Bet()
			if bet.Result == winning {
				outcomes[i] = legOutcome{Won: true, Payout: settlement.Payout(bet.Stake, bet.Odd)}
			} else {
				outcomes[i] = legOutcome{Won: false, Payout: decimal.Zero}
			}
		}
		return outcomes
	})
}

// ResolveExplicit settles every active leg with the same status. A won
// total payout is shared across legs in proportion to stake x odd.
func (s *Service) ResolveExplicit(ctx context.Context, params store.ResolveExplicitParams) (*models.Resolution, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	won := params.Status == models.BetWon

	return s.resolveOperation(ctx, params.OwnerId, params.OperationId, func(legs []models.Transaction) []legOutcome {
		outcomes := make([]legOutcome, len(legs))
		if !won {
			for i := range outcomes {
				outcomes[i] = legOutcome{Won: false, Payout: decimal.Zero}
			}
			return outcomes
		}

		weights := make([]decimal.Decimal, len(legs))
		for i := range legs {
			bet, _ := legs[i].Bet()
			weights[i] = settlement.Payout(bet.Stake, bet.Odd)
		}
		for i, share := range settlement.SplitPayout(params.TotalPayout, weights) {
			outcomes[i] = legOutcome{Won: true, Payout: share}
		}
		return outcomes
	})
}

// resolveOperation loads the active legs of an operation and settles each
// with the outcome chosen by decide, all in one database transaction.
func (s *Service) resolveOperation(ctx context.Context, ownerId, operationId string, decide decideFunc) (*models.Resolution, error) {
	resolution := &models.Resolution{OperationId: operationId, TotalCredited: decimal.Zero}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		legs, err := s.queryTransactions(ctx, tx, queryGetActiveOperationBets, ownerId, operationId)
		if err != nil {
			return err
		}
		if len(legs) == 0 {
			return fmt.Errorf("no active bets for operation %s: %w", operationId, store.ErrNotFound)
		}

		outcomes := decide(legs)
		for i := range legs {
			settled, err := s.settleLeg(ctx, tx, &legs[i], outcomes[i])
			if err != nil {
				return err
			}
			resolution.Legs = append(resolution.Legs, *settled)
			resolution.TotalCredited = resolution.TotalCredited.Add(settled.Credit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Operation resolved",
		zap.String("operation_id", operationId),
		zap.String("owner_id", ownerId),
		zap.Int("legs", len(resolution.Legs)),
		zap.String("total_credited", resolution.TotalCredited.String()))
	return resolution, nil
}

// settleLeg credits a winning leg, records its bet_won row and marks the
// bet_placed row with its final status. The status update only applies to
// a row that is still active.
func (s *Service) settleLeg(ctx context.Context, tx *sql.Tx, leg *models.Transaction, outcome legOutcome) (*models.LegSettlement, error) {
	bet, ok := leg.Bet()
	if !ok {
		return nil, failure("settle leg", fmt.Errorf("transaction %s has no bet details", leg.Id))
	}

	settled := &models.LegSettlement{
		TransactionId: leg.Id,
		AccountId:     leg.AccountId,
		Result:        bet.Result,
		Won:           outcome.Won,
		Payout:        outcome.Payout,
		Credit:        decimal.Zero,
	}

	bet.Status = models.BetLost
	bet.Payout = decimal.Zero
	if outcome.Won {
		bet.Status = models.BetWon
		bet.Payout = outcome.Payout
		settled.Credit = settlement.Credit(outcome.Payout, bet.Stake, bet.IsFreebet)

		if !settled.Credit.IsZero() {
			if _, err := s.adjustBalance(ctx, tx, balanceChange{OwnerId: leg.OwnerId, AccountId: leg.AccountId, Field: models.FieldCash, Delta: settled.Credit}); err != nil {
				return nil, err
			}
		}

		win, err := s.recordTransaction(ctx, tx, ledgerEntry{
			OwnerId:     leg.OwnerId,
			AccountId:   leg.AccountId,
			Type:        models.TxBetWon,
			Amount:      settled.Credit,
			Description: fmt.Sprintf("Win: %s", leg.Description),
			Details: models.WinDetails{
				OperationId:      bet.OperationId,
				BetTransactionId: leg.Id,
				Payout:           outcome.Payout,
				Stake:            bet.Stake,
				IsFreebet:        bet.IsFreebet,
			},
		})
		if err != nil {
			return nil, err
		}
		settled.WinTransactionId = win.Id
	}

	details, err := models.EncodeDetails(bet)
	if err != nil {
		return nil, err
	}
	result, err := tx.ExecContext(ctx, s.q(queryUpdateBetSettlement), details, string(bet.Status), leg.Id, leg.OwnerId)
	if err != nil {
		return nil, failure("update bet status", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, failure("check rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("bet %s already settled - %w", leg.Id, store.ErrConcurrentModification)
	}

	leg.Details = bet
	return settled, nil
}
