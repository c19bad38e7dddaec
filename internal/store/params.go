package store

import (
	"regexp"
	"strings"

	"bet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether s is a YYYY-MM period.
func ValidPeriod(s string) bool {
	return periodPattern.MatchString(s)
}

// AccountProfile holds the descriptive fields of an account. Balances are
// never part of it; they only move through ledger transactions.
type AccountProfile struct {
	Name          string
	Bookmaker     string
	Goal          decimal.Decimal
	ClubVolume    decimal.Decimal
	PaymentDay    int
	PaymentAmount decimal.Decimal
	Notes         string
	LastCodeDate  string
}

func (p AccountProfile) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return Invalid("name", "must not be empty")
	}
	if p.Goal.IsNegative() {
		return Invalid("goal", "must not be negative")
	}
	if p.ClubVolume.IsNegative() {
		return Invalid("clubVolume", "must not be negative")
	}
	if p.PaymentDay < 0 || p.PaymentDay > 31 {
		return Invalid("paymentDay", "must be between 1 and 31")
	}
	if p.PaymentAmount.IsNegative() {
		return Invalid("paymentAmount", "must not be negative")
	}
	return nil
}

// CreateAccountParams contains the parameters for opening an account.
// Non-zero opening balances are recorded as ledger transactions.
type CreateAccountParams struct {
	OwnerId        string
	Profile        AccountProfile
	OpeningCash    decimal.Decimal
	OpeningFreebet decimal.Decimal
}

func (p CreateAccountParams) Validate() error {
	if p.OwnerId == "" {
		return Invalid("owner", "must not be empty")
	}
	if err := p.Profile.validate(); err != nil {
		return err
	}
	if p.OpeningCash.IsNegative() {
		return Invalid("cashBalance", "must not be negative")
	}
	if p.OpeningFreebet.IsNegative() {
		return Invalid("freebetBalance", "must not be negative")
	}
	return nil
}

// UpdateAccountParams replaces the profile of an existing account.
type UpdateAccountParams struct {
	OwnerId        string
	AccountId      string
	Profile        AccountProfile
	LastPaidPeriod string
}

func (p UpdateAccountParams) Validate() error {
	if p.OwnerId == "" {
		return Invalid("owner", "must not be empty")
	}
	if p.AccountId == "" {
		return Invalid("accountId", "must not be empty")
	}
	if p.LastPaidPeriod != "" && !ValidPeriod(p.LastPaidPeriod) {
		return Invalid("lastPaidPeriod", "must be YYYY-MM")
	}
	return p.Profile.validate()
}

// RecordTransactionParams describes a manually entered ledger movement.
// Amount is always positive; the type decides its sign.
type RecordTransactionParams struct {
	OwnerId     string
	AccountId   string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
}

func (p RecordTransactionParams) Validate() error {
	if p.OwnerId == "" {
		return Invalid("owner", "must not be empty")
	}
	if p.AccountId == "" {
		return Invalid("accountId", "must not be empty")
	}
	if !p.Type.IsManual() {
		return Invalid("type", "unsupported transaction type "+string(p.Type))
	}
	if !p.Amount.IsPositive() {
		return Invalid("amount", "must be positive")
	}
	return nil
}

// TransferParams moves cash between two accounts of the same owner.
type TransferParams struct {
	OwnerId       string
	FromAccountId string
	ToAccountId   string
	Amount        decimal.Decimal
	Description   string
}

func (p TransferParams) Validate() error {
	if p.OwnerId == "" {
		return Invalid("owner", "must not be empty")
	}
	if p.FromAccountId == "" {
		return Invalid("fromAccountId", "must not be empty")
	}
	if p.ToAccountId == "" {
		return Invalid("toAccountId", "must not be empty")
	}
	if p.FromAccountId == p.ToAccountId {
		return Invalid("toAccountId", "must differ from the source account")
	}
	if !p.Amount.IsPositive() {
		return Invalid("amount", "must be positive")
	}
	return nil
}

// StakeParams is one account's stake on a leg.
type StakeParams struct {
	AccountId string
	Stake     decimal.Decimal
	IsFreebet bool
}

// LegParams is one outcome of an operation.
type LegParams struct {
	Result string
	Odd    decimal.Decimal
	Stakes []StakeParams
}

// PlaceOperationParams contains the parameters for placing a multi-leg bet.
type PlaceOperationParams struct {
	OwnerId  string
	Game     string
	Category string
	Legs     []LegParams
}

func (p PlaceOperationParams) Validate() error {
	if p.OwnerId == "" {
		return Invalid("owner", "must not be empty")
	}
	if len(p.Legs) == 0 {
		return Invalid("legs", "at least one leg is required")
	}
	for _, leg := range p.Legs {
		if strings.TrimSpace(leg.Result) == "" {
			return Invalid("result", "must not be empty")
		}
		if !leg.Odd.IsPositive() {
			return Invalid("odd", "must be positive")
		}
		if len(leg.Stakes) == 0 {
			return Invalid("stakes", "each leg needs at least one stake")
		}
		for _, stake := range leg.Stakes {
			if stake.AccountId == "" {
				return Invalid("accountId", "must not be empty")
			}
			if !stake.Stake.IsPositive() {
				return Invalid("stake", "must be positive")
			}
		}
	}
	return nil
}

// ResolveMarketParams settles an operation by naming the winning result.
type ResolveMarketParams struct {
	OwnerId       string
	OperationId   string
	WinningMarket string
}

func (p ResolveMarketParams) Validate() error {
	if p.OwnerId == "" {
		return Invalid("owner", "must not be empty")
	}
	if p.OperationId == "" {
		return Invalid("operationId", "must not be empty")
	}
	if strings.TrimSpace(p.WinningMarket) == "" {
		return Invalid("winningMarket", "must not be empty")
	}
	return nil
}

// ResolveExplicitParams settles every active leg of an operation with one
// status and an optional total payout.
type ResolveExplicitParams struct {
	OwnerId     string
	OperationId string
	Status      models.BetStatus
	TotalPayout decimal.Decimal
}

func (p ResolveExplicitParams) Validate() error {
	if p.OwnerId == "" {
		return Invalid("owner", "must not be empty")
	}
	if p.OperationId == "" {
		return Invalid("operationId", "must not be empty")
	}
	switch p.Status {
	case models.BetWon:
		if !p.TotalPayout.IsPositive() {
			return Invalid("totalPayout", "must be positive for a won operation")
		}
	case models.BetLost:
		if !p.TotalPayout.IsZero() {
			return Invalid("totalPayout", "must be zero for a lost operation")
		}
	default:
		return Invalid("status", "must be won or lost")
	}
	return nil
}

// ImportAccountRow is one parsed line of an account import. Rows are matched
// to existing accounts by name.
type ImportAccountRow struct {
	Profile AccountProfile
	Cash    decimal.Decimal
	Freebet decimal.Decimal
}

func (r ImportAccountRow) Validate() error {
	if err := r.Profile.validate(); err != nil {
		return err
	}
	if r.Cash.IsNegative() {
		return Invalid("cashBalance", "must not be negative")
	}
	if r.Freebet.IsNegative() {
		return Invalid("freebetBalance", "must not be negative")
	}
	return nil
}
