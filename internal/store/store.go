package store

import (
	"context"
	"time"

	"bet-ledger-go/internal/models"
)

// LedgerStore defines the contract that every backend (SQLite, Postgres) must
// satisfy. Every call is scoped to an owner; rows of other owners behave as
// if they did not exist.
type LedgerStore interface {
	// --- Accounts ---
	CreateAccount(ctx context.Context, params CreateAccountParams) (*models.Account, error)
	UpdateAccount(ctx context.Context, params UpdateAccountParams) (*models.Account, error)
	DeactivateAccount(ctx context.Context, ownerId, accountId string) error
	GetAccount(ctx context.Context, ownerId, accountId string) (*models.Account, error)
	GetAccounts(ctx context.Context, ownerId string, activeOnly bool) ([]models.Account, error)
	GetOwners(ctx context.Context) ([]string, error)
	PayClubFee(ctx context.Context, ownerId, accountId string) (*models.Transaction, error)

	// --- Transactions ---
	RecordTransaction(ctx context.Context, params RecordTransactionParams) (*models.Transaction, error)
	Transfer(ctx context.Context, params TransferParams) (out *models.Transaction, in *models.Transaction, err error)
	GetTransaction(ctx context.Context, ownerId, transactionId string) (*models.Transaction, error)
	GetTransactionHistory(ctx context.Context, ownerId string, limit, offset int) ([]models.Transaction, error)
	ReverseTransaction(ctx context.Context, ownerId, transactionId string) ([]models.Transaction, error)

	// --- Operations ---
	PlaceOperation(ctx context.Context, params PlaceOperationParams) (*models.Operation, error)
	ResolveByMarket(ctx context.Context, params ResolveMarketParams) (*models.Resolution, error)
	ResolveExplicit(ctx context.Context, params ResolveExplicitParams) (*models.Resolution, error)
	GetActiveBets(ctx context.Context, ownerId string) ([]models.Transaction, error)

	// --- Reports ---
	MonthlySummary(ctx context.Context, ownerId string, from, to time.Time) (*models.Summary, error)
	AccountReport(ctx context.Context, ownerId string) ([]models.AccountReport, error)
	MonthlySeries(ctx context.Context, ownerId string, now time.Time, months int) ([]models.MonthlyReport, error)
	ReconcileAccount(ctx context.Context, ownerId, accountId string) (*models.Reconciliation, error)

	// --- Backup ---
	ExportOwner(ctx context.Context, ownerId string) (*models.Backup, error)
	RestoreOwner(ctx context.Context, ownerId string, backup *models.Backup) error
	ImportAccounts(ctx context.Context, ownerId string, rows []ImportAccountRow) (*models.ImportResult, error)

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
