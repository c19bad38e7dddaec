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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation is a placed multi-leg bet and the bet_placed rows it produced
type Operation struct {
	Id       string        `json:"operationId"`
	Game     string        `json:"game,omitempty"`
	Category string        `json:"category,omitempty"`
	Legs     []Transaction `json:"legs"`
}

// LegSettlement reports how one bet_placed row was settled
type LegSettlement struct {
	TransactionId    string          `json:"transactionId"`
	AccountId        string          `json:"accountId"`
	Result           string          `json:"result"`
	Won              bool            `json:"won"`
	Payout           decimal.Decimal `json:"payout"`
	Credit           decimal.Decimal `json:"credit"`
	WinTransactionId string          `json:"winTransactionId,omitempty"`
}

// Resolution is the outcome of resolving an operation
type Resolution struct {
	OperationId   string          `json:"operationId"`
	Legs          []LegSettlement `json:"legs"`
	TotalCredited decimal.Decimal `json:"totalCredited"`
}

// Summary aggregates an owner's activity over a time window
type Summary struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Credits decimal.Decimal `json:"credits"`
	Debits  decimal.Decimal `json:"debits"`
	NetPL   decimal.Decimal `json:"netPl"`
}

// AccountReport is the per-account betting performance
type AccountReport struct {
	AccountId      string          `json:"accountId"`
	Name           string          `json:"name"`
	Bookmaker      string          `json:"bookmaker"`
	CashBalance    decimal.Decimal `json:"cashBalance"`
	FreebetBalance decimal.Decimal `json:"freebetBalance"`
	ProfitLoss     decimal.Decimal `json:"profitLoss"`
	Volume         decimal.Decimal `json:"volume"`
	BetCount       int             `json:"betCount"`
}

// MonthlyReport is one month of the rolling series
type MonthlyReport struct {
	Period       string          `json:"period"` // YYYY-MM
	ProfitLoss   decimal.Decimal `json:"profitLoss"`
	Expenses     decimal.Decimal `json:"expenses"`
	ClubPayments decimal.Decimal `json:"clubPayments"`
}

// Dashboard is the landing view for an owner
type Dashboard struct {
	Accounts       []Account       `json:"accounts"`
	TotalCash      decimal.Decimal `json:"totalCash"`
	TotalFreebet   decimal.Decimal `json:"totalFreebet"`
	ActiveBets     []Transaction   `json:"activeBets"`
	Recent         []Transaction   `json:"recent"`
	MonthlySummary *Summary        `json:"monthlySummary"`
}

// Reconciliation compares stored balances with the sums of the log
type Reconciliation struct {
	AccountId       string          `json:"accountId"`
	CashBalance     decimal.Decimal `json:"cashBalance"`
	ComputedCash    decimal.Decimal `json:"computedCash"`
	FreebetBalance  decimal.Decimal `json:"freebetBalance"`
	ComputedFreebet decimal.Decimal `json:"computedFreebet"`
}

// Balanced reports whether both stored balances match the log.
func (r *Reconciliation) Balanced() bool {
	return r.CashBalance.Equal(r.ComputedCash) && r.FreebetBalance.Equal(r.ComputedFreebet)
}

// Backup is the JSON document produced by export and consumed by restore
type Backup struct {
	Version      int           `json:"version"`
	ExportedAt   time.Time     `json:"exportedAt"`
	OwnerId      string        `json:"ownerId"`
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}

// ImportResult counts what an account import did
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}
