package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// SeedAccount is one account in the seed file. Amounts are strings so they
// stay exact.
type SeedAccount struct {
	Name          string `yaml:"name"`
	Bookmaker     string `yaml:"bookmaker"`
	Cash          string `yaml:"cash"`
	Freebet       string `yaml:"freebet"`
	Goal          string `yaml:"goal"`
	ClubVolume    string `yaml:"club_volume"`
	PaymentDay    int    `yaml:"payment_day"`
	PaymentAmount string `yaml:"payment_amount"`
	Notes         string `yaml:"notes"`
}

type SeedOwner struct {
	Id       string        `yaml:"id"`
	Accounts []SeedAccount `yaml:"accounts"`
}

type SeedConfig struct {
	Owners []SeedOwner `yaml:"owners"`
}

func LoadSeedConfig(seedFile string) (*SeedConfig, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	var config SeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", seedFile, err)
	}

	for i, owner := range config.Owners {
		if strings.TrimSpace(owner.Id) == "" {
			return nil, fmt.Errorf("owner at index %d missing id", i)
		}
		for j, account := range owner.Accounts {
			if strings.TrimSpace(account.Name) == "" {
				return nil, fmt.Errorf("owner %s: account at index %d missing name", owner.Id, j)
			}
		}
	}

	return &config, nil
}

// ImportRows converts the owner's seed accounts into import rows.
func (o SeedOwner) ImportRows() ([]store.ImportAccountRow, error) {
	rows := make([]store.ImportAccountRow, 0, len(o.Accounts))
	for _, a := range o.Accounts {
		amounts, err := parseAmounts(a.Name, a.Cash, a.Freebet, a.Goal, a.ClubVolume, a.PaymentAmount)
		if err != nil {
			return nil, err
		}
		rows = append(rows, store.ImportAccountRow{
			Profile: store.AccountProfile{
				Name:          a.Name,
				Bookmaker:     a.Bookmaker,
				Goal:          amounts[2],
				ClubVolume:    amounts[3],
				PaymentDay:    a.PaymentDay,
				PaymentAmount: amounts[4],
				Notes:         a.Notes,
			},
			Cash:    amounts[0],
			Freebet: amounts[1],
		})
	}
	return rows, nil
}

func parseAmounts(account string, raw ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(raw))
	for i, r := range raw {
		if r == "" {
			continue
		}
		v, err := decimal.NewFromString(r)
		if err != nil {
			return nil, fmt.Errorf("account %s: invalid amount %q: %w", account, r, err)
		}
		out[i] = v
	}
	return out, nil
}

// ApplySeed upserts every owner's accounts. Running it twice leaves the
// ledger unchanged since accounts are matched by name.
func ApplySeed(ctx context.Context, ledger store.LedgerStore, config *SeedConfig) ([]models.ImportResult, error) {
	results := make([]models.ImportResult, 0, len(config.Owners))
	for _, owner := range config.Owners {
		rows, err := owner.ImportRows()
		if err != nil {
			return nil, err
		}
		result, err := ledger.ImportAccounts(ctx, owner.Id, rows)
		if err != nil {
			return nil, fmt.Errorf("seed owner %s: %w", owner.Id, err)
		}
		zap.L().Info("Seeded owner accounts",
			zap.String("owner_id", owner.Id),
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated))
		results = append(results, *result)
	}
	return results, nil
}
