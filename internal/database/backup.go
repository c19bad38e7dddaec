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
	"strings"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const BackupVersion = 1

// ExportOwner snapshots every account and transaction of an owner.
func (s *Service) ExportOwner(ctx context.Context, ownerId string) (*models.Backup, error) {
	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}

	accounts, err := s.GetAccounts(ctx, ownerId, false)
	if err != nil {
		return nil, err
	}
	transactions, err := s.queryTransactions(ctx, s.db, queryGetOwnerTransactions, ownerId)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Owner exported",
		zap.String("owner_id", ownerId),
		zap.Int("accounts", len(accounts)),
		zap.Int("transactions", len(transactions)))

	return &models.Backup{
		Version:      BackupVersion,
		ExportedAt:   s.clock.Peek(),
		OwnerId:      ownerId,
		Accounts:     accounts,
		Transactions: transactions,
	}, nil
}

// RestoreOwner replaces all data of an owner with the content of a backup.
// Every account and transaction gets a fresh id; references between rows
// are rewritten to the new ids. Each restored account must reconcile with
// its transactions. The replacement is all-or-nothing.
func (s *Service) RestoreOwner(ctx context.Context, ownerId string, backup *models.Backup) error {
	if ownerId == "" {
		return store.Invalid("owner", "must not be empty")
	}
	if backup == nil {
		return store.Invalid("backup", "must not be empty")
	}
	if backup.Version != 0 && backup.Version != BackupVersion {
		return store.Invalid("version", fmt.Sprintf("unsupported backup version %d", backup.Version))
	}

	accountIds := make(map[string]string, len(backup.Accounts))
	for _, a := range backup.Accounts {
		if strings.TrimSpace(a.Name) == "" {
			return store.Invalid("accounts", "account name must not be empty")
		}
		accountIds[a.Id] = uuid.New().String()
	}
	txIds := make(map[string]string, len(backup.Transactions))
	for _, t := range backup.Transactions {
		if _, err := models.DecodeDetails(t.TransactionType, "{}"); err != nil {
			return store.Invalid("transactions", err.Error())
		}
		if _, ok := accountIds[t.AccountId]; !ok {
			return store.Invalid("transactions", fmt.Sprintf("transaction %s references unknown account %s", t.Id, t.AccountId))
		}
		txIds[t.Id] = uuid.New().String()
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(queryDeleteOwnerTransactions), ownerId); err != nil {
			return failure("delete owner transactions", err)
		}
		if _, err := tx.ExecContext(ctx, s.q(queryDeleteOwnerAccounts), ownerId); err != nil {
			return failure("delete owner accounts", err)
		}

		for _, a := range backup.Accounts {
			createdAt, updatedAt := a.CreatedAt, a.UpdatedAt
			if createdAt.IsZero() {
				createdAt = s.clock.Peek()
			}
			if updatedAt.IsZero() {
				updatedAt = createdAt
			}
			_, err := tx.ExecContext(ctx, s.q(queryInsertAccount),
				accountIds[a.Id], ownerId, strings.TrimSpace(a.Name), a.Bookmaker,
				a.CashBalance.String(), a.FreebetBalance.String(), a.Goal.String(), a.ClubVolume.String(),
				a.PaymentDay, a.PaymentAmount.String(), a.LastPaidPeriod, a.Notes, a.LastCodeDate,
				a.Active, int64(1), createdAt.UTC(), updatedAt.UTC())
			if err != nil {
				return failure("restore account", err)
			}
		}

		for _, t := range backup.Transactions {
			_, err := s.recordTransaction(ctx, tx, ledgerEntry{
				Id:          txIds[t.Id],
				OwnerId:     ownerId,
				AccountId:   accountIds[t.AccountId],
				Type:        t.TransactionType,
				Amount:      t.Amount,
				Description: t.Description,
				Details:     remapDetails(t.Details, txIds, accountIds),
				CreatedAt:   t.CreatedAt.UTC(),
			})
			if err != nil {
				return err
			}
		}

		for _, a := range backup.Accounts {
			if err := s.reconcileRestored(ctx, tx, ownerId, accountIds[a.Id], a.Name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	zap.L().Info("Owner restored",
		zap.String("owner_id", ownerId),
		zap.Int("accounts", len(backup.Accounts)),
		zap.Int("transactions", len(backup.Transactions)))
	return nil
}

// reconcileRestored rejects a backup whose stored balances disagree with
// its own transaction log.
func (s *Service) reconcileRestored(ctx context.Context, tx *sql.Tx, ownerId, accountId, name string) error {
	account, err := s.getAccount(ctx, tx, ownerId, accountId)
	if err != nil {
		return err
	}
	transactions, err := s.queryTransactions(ctx, tx, queryGetAccountTransactions, ownerId, accountId)
	if err != nil {
		return err
	}

	report := reconcile(account, transactions)
	if !report.Balanced() {
		zap.L().Warn("Backup rejected, balances do not match transactions",
			zap.String("owner_id", ownerId),
			zap.String("account", name),
			zap.String("cash_balance", report.CashBalance.String()),
			zap.String("computed_cash", report.ComputedCash.String()),
			zap.String("freebet_balance", report.FreebetBalance.String()),
			zap.String("computed_freebet", report.ComputedFreebet.String()))
		return store.Invalid("accounts", fmt.Sprintf("account %q: stored cash %s / free-bet %s, transactions sum to %s / %s",
			name, report.CashBalance, report.FreebetBalance, report.ComputedCash, report.ComputedFreebet))
	}
	return nil
}

func remapDetails(d models.Details, txIds, accountIds map[string]string) models.Details {
	switch v := d.(type) {
	case models.TransferDetails:
		v.LinkedTransferId = txIds[v.LinkedTransferId]
		v.CounterpartAccountId = accountIds[v.CounterpartAccountId]
		return v
	case models.WinDetails:
		v.BetTransactionId = txIds[v.BetTransactionId]
		return v
	}
	return d
}

// ImportAccounts upserts accounts by name. Existing accounts get their
// profile replaced (goal and club volume are kept) and their balances moved to the imported values through
// adjustment transactions; unknown names are created with opening balances.
func (s *Service) ImportAccounts(ctx context.Context, ownerId string, rows []store.ImportAccountRow) (*models.ImportResult, error) {
	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}
	for i, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	result := &models.ImportResult{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, row := range rows {
			existing, err := scanAccount(tx.QueryRowContext(ctx, s.q(queryGetAccountByName), ownerId, strings.TrimSpace(row.Profile.Name)))
			if errors.Is(err, sql.ErrNoRows) {
				if _, err := s.createAccountTx(ctx, tx, ownerId, row.Profile, row.Cash, row.Freebet, "import"); err != nil {
					return err
				}
				result.Created++
				continue
			}
			if err != nil {
				return failure("find account by name", err)
			}

			// the import format carries no goal or club volume
			profile := row.Profile
			profile.Goal = existing.Goal
			profile.ClubVolume = existing.ClubVolume
			if err := s.updateProfile(ctx, tx, existing, profile, existing.LastPaidPeriod); err != nil {
				return err
			}
			if err := s.importAdjustments(ctx, tx, existing, row); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Accounts imported",
		zap.String("owner_id", ownerId),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))
	return result, nil
}

func (s *Service) importAdjustments(ctx context.Context, tx *sql.Tx, account *models.Account, row store.ImportAccountRow) error {
	cashDiff := row.Cash.Sub(account.CashBalance)
	if !cashDiff.IsZero() {
		txType := models.TxCredit
		if cashDiff.IsNegative() {
			txType = models.TxDebit
		}
		if err := s.applyEffect(ctx, tx, account.OwnerId, account.Id, cashDiff, decimal.Zero); err != nil {
			return err
		}
		_, err := s.recordTransaction(ctx, tx, ledgerEntry{
			OwnerId:     account.OwnerId,
			AccountId:   account.Id,
			Type:        txType,
			Amount:      cashDiff,
			Description: "Balance adjustment (import)",
			Details:     models.CashDetails{Origin: "import"},
		})
		if err != nil {
			return err
		}
	}

	freebetDiff := row.Freebet.Sub(account.FreebetBalance)
	if !freebetDiff.IsZero() {
		if err := s.applyEffect(ctx, tx, account.OwnerId, account.Id, decimal.Zero, freebetDiff); err != nil {
			return err
		}
		_, err := s.recordTransaction(ctx, tx, ledgerEntry{
			OwnerId:     account.OwnerId,
			AccountId:   account.Id,
			Type:        models.TxFreebetCredit,
			Amount:      decimal.Zero,
			Description: "Free-bet balance adjustment (import)",
			Details:     models.FreebetDetails{Amount: freebetDiff},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
