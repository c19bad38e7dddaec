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
	"time"

	"bet-ledger-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ledgerEntry is a transaction row about to be written.
type ledgerEntry struct {
	Id          string // generated when empty
	OwnerId     string
	AccountId   string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Details     models.Details
	CreatedAt   time.Time // taken from the ledger clock when zero
}

// recordTransaction appends one row to the log inside tx. The operation id
// and status of bet rows are denormalized into their own columns.
func (s *Service) recordTransaction(ctx context.Context, tx *sql.Tx, e ledgerEntry) (*models.Transaction, error) {
	if e.Id == "" {
		e.Id = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock.Next()
	}

	details, err := models.EncodeDetails(e.Details)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, s.q(queryInsertTransaction),
		e.Id, e.OwnerId, e.AccountId, string(e.Type), e.Amount.String(), e.Description,
		details, nullString(models.OperationRef(e.Details)), nullString(string(models.StatusOf(e.Details))), e.CreatedAt)
	if err != nil {
		return nil, failure("insert transaction", err)
	}

	zap.L().Debug("Transaction recorded",
		zap.String("transaction_id", e.Id),
		zap.String("account_id", e.AccountId),
		zap.String("type", string(e.Type)),
		zap.String("amount", e.Amount.String()))

	return &models.Transaction{
		Id:              e.Id,
		OwnerId:         e.OwnerId,
		AccountId:       e.AccountId,
		TransactionType: e.Type,
		Amount:          e.Amount,
		Description:     e.Description,
		Details:         e.Details,
		CreatedAt:       e.CreatedAt,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var txType, amountStr, details string
	err := row.Scan(&tx.Id, &tx.OwnerId, &tx.AccountId, &tx.AccountName, &txType, &amountStr,
		&tx.Description, &details, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}

	tx.TransactionType = models.TransactionType(txType)
	tx.CreatedAt = tx.CreatedAt.UTC()
	tx.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	tx.Details, err = models.DecodeDetails(tx.TransactionType, details)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// queryTransactions runs a query returning transactionColumns.
func (s *Service) queryTransactions(ctx context.Context, q querier, query string, args ...any) ([]models.Transaction, error) {
	rows, err := q.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, failure("query transactions", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, failure("scan transaction", err)
		}
		transactions = append(transactions, *tx)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, failure("iterate transaction rows", err)
	}

	return transactions, nil
}
