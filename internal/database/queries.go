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

const (
	accountColumns = `id, owner_id, name, bookmaker, cash_balance, freebet_balance, goal, club_volume,
		payment_day, payment_amount, last_paid_period, notes, last_code_date, active, version,
		created_at, updated_at`

	transactionColumns = `t.id, t.owner_id, t.account_id, a.name, t.transaction_type, t.amount,
		t.description, t.details, t.created_at`

	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetAccount = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = ? AND owner_id = ?`

	queryGetAccounts = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE owner_id = ?
		ORDER BY name, created_at`

	queryGetActiveAccounts = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE owner_id = ? AND active = TRUE
		ORDER BY name, created_at`

	queryGetAccountByName = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE owner_id = ? AND name = ?
		ORDER BY created_at
		LIMIT 1`

	queryUpdateAccountProfile = `
		UPDATE accounts
		SET name = ?, bookmaker = ?, goal = ?, club_volume = ?, payment_day = ?, payment_amount = ?,
		    last_paid_period = ?, notes = ?, last_code_date = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND owner_id = ? AND version = ?`

	queryDeactivateAccount = `
		UPDATE accounts
		SET active = FALSE, version = version + 1, updated_at = ?
		WHERE id = ? AND owner_id = ?`

	querySetLastPaidPeriod = `
		UPDATE accounts
		SET last_paid_period = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`

	queryGetOwners = `
		SELECT DISTINCT owner_id
		FROM accounts
		ORDER BY owner_id`

	// Balance queries
	queryGetAccountBalances = `
		SELECT cash_balance, freebet_balance, version
		FROM accounts
		WHERE id = ? AND owner_id = ?`

	queryUpdateCashBalance = `
		UPDATE accounts
		SET cash_balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND owner_id = ? AND version = ?`

	queryUpdateFreebetBalance = `
		UPDATE accounts
		SET freebet_balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND owner_id = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, owner_id, account_id, transaction_type, amount, description,
		                          details, operation_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetTransaction = `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.id = ? AND t.owner_id = ?`

	queryGetTransactionHistory = `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.owner_id = ?
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT ? OFFSET ?`

	queryGetOwnerTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.owner_id = ?
		ORDER BY t.created_at, t.id`

	queryGetAccountTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.owner_id = ? AND t.account_id = ?
		ORDER BY t.created_at, t.id`

	queryGetOperationTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.owner_id = ? AND t.operation_id = ?
		ORDER BY t.created_at, t.id`

	queryGetActiveOperationBets = `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.owner_id = ? AND t.operation_id = ? AND t.transaction_type = 'bet_placed' AND t.status = 'active'
		ORDER BY t.created_at, t.id`

	queryGetActiveBets = `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.owner_id = ? AND t.transaction_type = 'bet_placed' AND t.status = 'active'
		ORDER BY t.created_at DESC, t.id DESC`

	queryGetBetTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.owner_id = ? AND t.transaction_type IN ('bet_placed', 'bet_won')`

	queryUpdateBetSettlement = `
		UPDATE transactions
		SET details = ?, status = ?
		WHERE id = ? AND owner_id = ? AND status = 'active'`

	queryDeleteTransaction = `
		DELETE FROM transactions
		WHERE id = ? AND owner_id = ?`

	// Report queries
	querySummaryWindow = `
		SELECT transaction_type, amount
		FROM transactions
		WHERE owner_id = ? AND created_at >= ? AND created_at < ?`

	querySeriesWindow = `
		SELECT transaction_type, amount, created_at
		FROM transactions
		WHERE owner_id = ? AND created_at >= ? AND created_at < ?
		  AND transaction_type IN ('bet_placed', 'bet_won', 'expense', 'club_payment')`

	// Restore queries
	queryDeleteOwnerTransactions = `
		DELETE FROM transactions
		WHERE owner_id = ?`

	queryDeleteOwnerAccounts = `
		DELETE FROM accounts
		WHERE owner_id = ?`
)
