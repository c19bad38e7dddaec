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
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxDeposit        TransactionType = "deposit"
	TxWithdrawal     TransactionType = "withdrawal"
	TxExpense        TransactionType = "expense"
	TxCredit         TransactionType = "credit"
	TxDebit          TransactionType = "debit"
	TxOpeningBalance TransactionType = "opening_balance"
	TxFreebetCredit  TransactionType = "freebet_credit"
	TxTransferOut    TransactionType = "transfer_out"
	TxTransferIn     TransactionType = "transfer_in"
	TxClubPayment    TransactionType = "club_payment"
	TxBetPlaced      TransactionType = "bet_placed"
	TxBetWon         TransactionType = "bet_won"
)

// IsBet reports whether the type belongs to a betting operation.
func (t TransactionType) IsBet() bool {
	return t == TxBetPlaced || t == TxBetWon
}

// IsTransfer reports whether the type is one leg of a transfer pair.
func (t TransactionType) IsTransfer() bool {
	return t == TxTransferOut || t == TxTransferIn
}

// IsManual reports whether the type may be recorded directly by a caller.
func (t TransactionType) IsManual() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxExpense, TxCredit, TxDebit, TxFreebetCredit:
		return true
	}
	return false
}

// BalanceField names one of the two balances carried by an account.
type BalanceField string

const (
	FieldCash    BalanceField = "cash"
	FieldFreebet BalanceField = "freebet"
)

type BetStatus string

const (
	BetActive BetStatus = "active"
	BetWon    BetStatus = "won"
	BetLost   BetStatus = "lost"
)

// DefaultGoal is the club volume target given to accounts created without one.
var DefaultGoal = decimal.NewFromInt(100)

// Account is a bookmaker account belonging to a single owner.
type Account struct {
	Id             string          `json:"id"`
	OwnerId        string          `json:"ownerId"`
	Name           string          `json:"name"`
	Bookmaker      string          `json:"bookmaker"`
	CashBalance    decimal.Decimal `json:"cashBalance"`
	FreebetBalance decimal.Decimal `json:"freebetBalance"`
	Goal           decimal.Decimal `json:"goal"`
	ClubVolume     decimal.Decimal `json:"clubVolume"`
	PaymentDay     int             `json:"paymentDay"`
	PaymentAmount  decimal.Decimal `json:"paymentAmount"`
	LastPaidPeriod string          `json:"lastPaidPeriod"`
	Notes          string          `json:"notes"`
	LastCodeDate   string          `json:"lastCodeDate"`
	Active         bool            `json:"active"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Balance returns the current value of the named balance field.
func (a *Account) Balance(field BalanceField) decimal.Decimal {
	if field == FieldFreebet {
		return a.FreebetBalance
	}
	return a.CashBalance
}

// HasPaymentSchedule reports whether a club fee is configured for the account.
func (a *Account) HasPaymentSchedule() bool {
	return a.PaymentDay > 0 && a.PaymentAmount.IsPositive()
}

// Transaction is an immutable ledger row. Amount is the signed effect on the
// cash balance; free-bet effects are carried by Details.
type Transaction struct {
	Id              string          `json:"id"`
	OwnerId         string          `json:"ownerId"`
	AccountId       string          `json:"accountId"`
	AccountName     string          `json:"accountName,omitempty"`
	TransactionType TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Details         Details         `json:"details"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Bet returns the bet details of a bet_placed row.
func (t *Transaction) Bet() (BetDetails, bool) {
	d, ok := t.Details.(BetDetails)
	return d, ok
}

// Win returns the win details of a bet_won row.
func (t *Transaction) Win() (WinDetails, bool) {
	d, ok := t.Details.(WinDetails)
	return d, ok
}

// Transfer returns the transfer details of a transfer leg.
func (t *Transaction) Transfer() (TransferDetails, bool) {
	d, ok := t.Details.(TransferDetails)
	return d, ok
}

// OperationId returns the operation a bet row belongs to, or "".
func (t *Transaction) OperationId() string {
	return OperationRef(t.Details)
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		*alias
		Details json.RawMessage `json:"details"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	details, err := DecodeDetails(t.TransactionType, string(aux.Details))
	if err != nil {
		return fmt.Errorf("transaction %s: %w", t.Id, err)
	}
	t.Details = details
	return nil
}
