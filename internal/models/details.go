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

	"github.com/shopspring/decimal"
)

// Details is the per-type payload stored alongside a transaction. Each
// transaction type has exactly one details shape; see DecodeDetails.
type Details interface {
	isDetails()
}

// BetDetails describes one stake on one leg of an operation.
type BetDetails struct {
	OperationId string          `json:"operationId"`
	Result      string          `json:"result"`
	Odd         decimal.Decimal `json:"odd"`
	Stake       decimal.Decimal `json:"stake"`
	IsFreebet   bool            `json:"isFreebet"`
	Status      BetStatus       `json:"status"`
	Game        string          `json:"game,omitempty"`
	Category    string          `json:"category,omitempty"`
	Payout      decimal.Decimal `json:"payout"`
}

// WinDetails points a bet_won credit back at the stake it settles.
type WinDetails struct {
	OperationId      string          `json:"operationId"`
	BetTransactionId string          `json:"betTransactionId"`
	Payout           decimal.Decimal `json:"payout"`
	Stake            decimal.Decimal `json:"stake"`
	IsFreebet        bool            `json:"isFreebet"`
}

// TransferDetails links the two legs of a transfer.
type TransferDetails struct {
	LinkedTransferId     string `json:"linkedTransferId"`
	CounterpartAccountId string `json:"counterpartAccountId"`
}

type FeeDetails struct {
	Period string `json:"period"`
}

// FreebetDetails carries the signed free-bet delta of a freebet_credit row.
type FreebetDetails struct {
	Amount decimal.Decimal `json:"amount"`
}

type CashDetails struct {
	Origin string `json:"origin,omitempty"`
}

func (BetDetails) isDetails()      {}
func (WinDetails) isDetails()      {}
func (TransferDetails) isDetails() {}
func (FeeDetails) isDetails()      {}
func (FreebetDetails) isDetails()  {}
func (CashDetails) isDetails()     {}

// EncodeDetails serializes details for storage.
func EncodeDetails(d Details) (string, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode details: %w", err)
	}
	return string(b), nil
}

// DecodeDetails parses stored details into the shape dictated by the
// transaction type.
func DecodeDetails(t TransactionType, raw string) (Details, error) {
	if raw == "" || raw == "null" {
		raw = "{}"
	}
	switch t {
	case TxBetPlaced:
		var d BetDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("failed to decode bet details: %w", err)
		}
		return d, nil
	case TxBetWon:
		var d WinDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("failed to decode win details: %w", err)
		}
		return d, nil
	case TxTransferOut, TxTransferIn:
		var d TransferDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("failed to decode transfer details: %w", err)
		}
		return d, nil
	case TxClubPayment:
		var d FeeDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("failed to decode fee details: %w", err)
		}
		return d, nil
	case TxFreebetCredit:
		var d FreebetDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("failed to decode freebet details: %w", err)
		}
		return d, nil
	case TxDeposit, TxWithdrawal, TxExpense, TxCredit, TxDebit, TxOpeningBalance:
		var d CashDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("failed to decode details: %w", err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown transaction type %q", t)
}

// OperationRef returns the operation id carried by bet details, or "".
func OperationRef(d Details) string {
	switch v := d.(type) {
	case BetDetails:
		return v.OperationId
	case WinDetails:
		return v.OperationId
	}
	return ""
}

// StatusOf returns the bet status carried by bet_placed details, or "".
func StatusOf(d Details) BetStatus {
	if v, ok := d.(BetDetails); ok {
		return v.Status
	}
	return ""
}
