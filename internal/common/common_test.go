package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bet-ledger-go/internal/database"
	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const seedYaml = `
owners:
  - id: owner-1
    accounts:
      - name: Main
        bookmaker: Bet365
        cash: "120.50"
        freebet: "5"
      - name: Club
        bookmaker: Betano
        payment_day: 5
        payment_amount: "29.90"
  - id: owner-2
    accounts:
      - name: Solo
        cash: "10"
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setupDb(t *testing.T) *database.Service {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Driver:       "sqlite3",
		Path:         ":memory:",
		MaxOpenConns: 1,
		PingTimeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestLoadSeedConfig(t *testing.T) {
	config, err := LoadSeedConfig(writeSeed(t, seedYaml))
	require.NoError(t, err)
	require.Len(t, config.Owners, 2)
	assert.Equal(t, "owner-1", config.Owners[0].Id)
	require.Len(t, config.Owners[0].Accounts, 2)
	assert.Equal(t, 5, config.Owners[0].Accounts[1].PaymentDay)

	rows, err := config.Owners[0].ImportRows()
	require.NoError(t, err)
	assert.True(t, rows[0].Cash.Equal(decimal.RequireFromString("120.50")))
	assert.True(t, rows[1].Profile.PaymentAmount.Equal(decimal.RequireFromString("29.90")))
	assert.True(t, rows[1].Cash.IsZero())
}

func TestLoadSeedConfig_Rejects(t *testing.T) {
	_, err := LoadSeedConfig(writeSeed(t, "owners:\n  - accounts: []\n"))
	assert.ErrorContains(t, err, "missing id")

	_, err = LoadSeedConfig(writeSeed(t, "owners:\n  - id: o\n    accounts:\n      - bookmaker: x\n"))
	assert.ErrorContains(t, err, "missing name")

	_, err = LoadSeedConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	config, err := LoadSeedConfig(writeSeed(t, "owners:\n  - id: o\n    accounts:\n      - name: A\n        cash: lots\n"))
	require.NoError(t, err)
	_, err = config.Owners[0].ImportRows()
	assert.ErrorContains(t, err, "invalid amount")
}

func TestApplySeed_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	db := setupDb(t)
	config, err := LoadSeedConfig(writeSeed(t, seedYaml))
	require.NoError(t, err)

	results, err := ApplySeed(ctx, db, config)
	require.NoError(t, err)
	assert.Equal(t, 2, results[0].Created)
	assert.Equal(t, 1, results[1].Created)

	results, err = ApplySeed(ctx, db, config)
	require.NoError(t, err)
	assert.Equal(t, 0, results[0].Created)
	assert.Equal(t, 2, results[0].Updated)

	history, err := db.GetTransactionHistory(ctx, "owner-1", 100, 0)
	require.NoError(t, err)
	// opening cash and free-bet rows from the first run only
	assert.Len(t, history, 2)
}

func TestInitializeOwners(t *testing.T) {
	ctx := context.Background()
	db := setupDb(t)
	config, err := LoadSeedConfig(writeSeed(t, seedYaml))
	require.NoError(t, err)
	_, err = ApplySeed(ctx, db, config)
	require.NoError(t, err)

	owners, err := InitializeOwners(ctx, db, "", zap.NewNop())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"owner-1", "owner-2"}, owners)

	owners, err = InitializeOwners(ctx, db, "owner-2", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"owner-2"}, owners)

	_, err = InitializeOwners(ctx, db, "ghost", zap.NewNop())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "12.50", Money(decimal.RequireFromString("12.5")))
	assert.Equal(t, "+3.00", SignedMoney(decimal.NewFromInt(3)))
	assert.Equal(t, "-3.10", SignedMoney(decimal.RequireFromString("-3.1")))
	assert.Equal(t, "0.00", SignedMoney(decimal.Zero))
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(&os.PathError{Op: "sync", Path: "/dev/stderr", Err: errors.New("inappropriate ioctl for device")}))
	assert.False(t, isIgnorableSyncError(os.ErrClosed))
}
