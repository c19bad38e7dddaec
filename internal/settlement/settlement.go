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

// Package settlement holds the balance arithmetic of the ledger: payouts,
// credits, proportional splits and the balance effect of every transaction
// type. It performs no I/O.
package settlement

import (
	"fmt"

	"bet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// SplitPlaces is the precision used when a payout is shared across legs.
const SplitPlaces = 2

// Payout is the gross return of a winning stake.
func Payout(stake, odd decimal.Decimal) decimal.Decimal {
	return stake.Mul(odd)
}

// Credit is the cash credited for a winning payout. A free-bet stake never
// came out of cash, so it is not returned; the credit is floored at zero.
func Credit(payout, stake decimal.Decimal, isFreebet bool) decimal.Decimal {
	if !isFreebet {
		return payout
	}
	credit := payout.Sub(stake)
	if credit.IsNegative() {
		return decimal.Zero
	}
	return credit
}

// SplitPayout shares total across legs proportionally to weights. Every
// share but the last is rounded to SplitPlaces; the last absorbs the
// remainder so the shares always sum to total.
func SplitPayout(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	n := len(weights)
	if n == 0 {
		return nil
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}

	shares := make([]decimal.Decimal, n)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		var share decimal.Decimal
		if sum.IsPositive() {
			share = total.Mul(weights[i]).Div(sum).Round(SplitPlaces)
		} else {
			share = total.Div(decimal.NewFromInt(int64(n))).Round(SplitPlaces)
		}
		shares[i] = share
		allocated = allocated.Add(share)
	}
	shares[n-1] = total.Sub(allocated)
	return shares
}

// Effect is the change a transaction applied to its account's balances.
type Effect struct {
	Cash    decimal.Decimal
	Freebet decimal.Decimal
}

// Inverse is the effect that undoes e.
func (e Effect) Inverse() Effect {
	return Effect{Cash: e.Cash.Neg(), Freebet: e.Freebet.Neg()}
}

// EffectOf derives the balance effect of a stored transaction. Cash always
// moves by Amount; the free-bet balance moves for free-bet credits and for
// stakes drawn from free-bet balance, whatever their settlement status.
func EffectOf(tx *models.Transaction) Effect {
	e := Effect{Cash: tx.Amount, Freebet: decimal.Zero}
	switch d := tx.Details.(type) {
	case models.FreebetDetails:
		if tx.TransactionType == models.TxFreebetCredit {
			e.Freebet = d.Amount
		}
	case models.BetDetails:
		if tx.TransactionType == models.TxBetPlaced && d.IsFreebet {
			e.Freebet = d.Stake.Neg()
		}
	}
	return e
}

// SignedEffect converts a positive amount of a manually recorded type into
// its balance effect.
func SignedEffect(t models.TransactionType, amount decimal.Decimal) (Effect, error) {
	switch t {
	case models.TxDeposit, models.TxCredit:
		return Effect{Cash: amount, Freebet: decimal.Zero}, nil
	case models.TxWithdrawal, models.TxExpense, models.TxDebit:
		return Effect{Cash: amount.Neg(), Freebet: decimal.Zero}, nil
	case models.TxFreebetCredit:
		return Effect{Cash: decimal.Zero, Freebet: amount}, nil
	}
	return Effect{}, fmt.Errorf("transaction type %q has no manual effect", t)
}

// ProfitLoss sums the cash effect of bet rows; other rows are ignored.
func ProfitLoss(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		if txs[i].TransactionType.IsBet() {
			total = total.Add(txs[i].Amount)
		}
	}
	return total
}

// Wagered is the stake of a bet_placed row, free-bet stakes included.
func Wagered(tx *models.Transaction) decimal.Decimal {
	if bet, ok := tx.Bet(); ok {
		return bet.Stake
	}
	return decimal.Zero
}
