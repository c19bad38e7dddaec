package database

// schema is valid for both SQLite and Postgres. Money is stored as decimal
// strings and summed in Go.
const schema = `
	-- Accounts (current state)
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		bookmaker TEXT NOT NULL DEFAULT '',
		cash_balance TEXT NOT NULL DEFAULT '0',
		freebet_balance TEXT NOT NULL DEFAULT '0',
		goal TEXT NOT NULL DEFAULT '0',
		club_volume TEXT NOT NULL DEFAULT '0',
		payment_day INTEGER NOT NULL DEFAULT 0,
		payment_amount TEXT NOT NULL DEFAULT '0',
		last_paid_period TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		last_code_date TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_owner_active ON accounts(owner_id, active);
	CREATE INDEX IF NOT EXISTS idx_accounts_owner_name ON accounts(owner_id, name);

	-- Transactions (append-only log, rows are only removed by reversal)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		transaction_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '{}',
		operation_id TEXT,
		status TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_owner_created ON transactions(owner_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_owner_type ON transactions(owner_id, transaction_type);
	CREATE INDEX IF NOT EXISTS idx_transactions_operation ON transactions(owner_id, operation_id, status)
		WHERE operation_id IS NOT NULL;
`
