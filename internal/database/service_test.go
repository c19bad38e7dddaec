package database

import (
	"context"
	"testing"
	"time"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	t.Helper()
	service, err := NewService(context.Background(), models.DatabaseConfig{
		Driver:       "sqlite3",
		Path:         memoryPath,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return service, service.Close
}

// fixClock pins the ledger clock to a fixed instant; timestamps still
// advance by a microsecond per row.
func fixClock(s *Service, at time.Time) {
	s.clock = newLedgerClock(func() time.Time { return at })
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func createTestAccount(t *testing.T, s *Service, ownerId, name, cash, freebet string) *models.Account {
	t.Helper()
	account, err := s.CreateAccount(context.Background(), store.CreateAccountParams{
		OwnerId:        ownerId,
		Profile:        store.AccountProfile{Name: name, Bookmaker: "book"},
		OpeningCash:    d(cash),
		OpeningFreebet: d(freebet),
	})
	require.NoError(t, err)
	return account
}

func requireBalances(t *testing.T, s *Service, ownerId, accountId, cash, freebet string) {
	t.Helper()
	account, err := s.GetAccount(context.Background(), ownerId, accountId)
	require.NoError(t, err)
	assert.True(t, account.CashBalance.Equal(d(cash)), "cash: expected %s, got %s", cash, account.CashBalance)
	assert.True(t, account.FreebetBalance.Equal(d(freebet)), "freebet: expected %s, got %s", freebet, account.FreebetBalance)
}

func requireReconciled(t *testing.T, s *Service, ownerId, accountId string) {
	t.Helper()
	report, err := s.ReconcileAccount(context.Background(), ownerId, accountId)
	require.NoError(t, err)
	assert.True(t, report.Balanced())
}

func TestNewServiceValidatesConfig(t *testing.T) {
	ctx := context.Background()
	base := models.DatabaseConfig{Driver: "sqlite3", Path: memoryPath, MaxOpenConns: 1, PingTimeout: time.Second}

	cfg := base
	cfg.Path = ""
	_, err := NewService(ctx, cfg)
	assert.Error(t, err)

	cfg = base
	cfg.Driver = "oracle"
	_, err = NewService(ctx, cfg)
	assert.Error(t, err)

	cfg = base
	cfg.Driver = "postgres"
	_, err = NewService(ctx, cfg)
	assert.Error(t, err, "postgres without url")

	cfg = base
	cfg.MaxOpenConns = 0
	_, err = NewService(ctx, cfg)
	assert.Error(t, err)

	cfg = base
	cfg.PingTimeout = 0
	_, err = NewService(ctx, cfg)
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	query := "SELECT a FROM t WHERE id = ? AND owner_id = ? LIMIT ?"
	assert.Equal(t, query, dialectSQLite.rebind(query))
	assert.Equal(t, "SELECT a FROM t WHERE id = $1 AND owner_id = $2 LIMIT $3", dialectPostgres.rebind(query))
}

func TestDialectDescribeRedactsPassword(t *testing.T) {
	desc := dialectPostgres.describe(models.DatabaseConfig{Url: "postgres://ledger:secret@db:5432/ledger?sslmode=disable"})
	assert.NotContains(t, desc, "secret")
	assert.Contains(t, desc, "db:5432")
}

func TestLedgerClockIsStrictlyIncreasing(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := newLedgerClock(func() time.Time { return at })

	first := clock.Next()
	second := clock.Next()
	third := clock.Next()

	assert.True(t, first.Equal(at))
	assert.True(t, second.After(first))
	assert.True(t, third.After(second))
	assert.Equal(t, time.UTC, third.Location())
}

func TestPing(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	require.NoError(t, service.Ping(context.Background()))
}

func TestReconcileAccount_DetectsTampering(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	account := createTestAccount(t, service, "owner-1", "Main", "100", "20")
	requireReconciled(t, service, "owner-1", account.Id)

	_, err := service.db.ExecContext(ctx, service.q(`UPDATE accounts SET cash_balance = ? WHERE id = ?`), "150", account.Id)
	require.NoError(t, err)

	report, err := service.ReconcileAccount(ctx, "owner-1", account.Id)
	require.ErrorIs(t, err, store.ErrBalanceMismatch)
	assert.False(t, report.Balanced())
	assert.True(t, report.ComputedCash.Equal(d("100")))
	assert.True(t, report.CashBalance.Equal(d("150")))
	assert.True(t, report.ComputedFreebet.Equal(report.FreebetBalance))
}
