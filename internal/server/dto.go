package server

import (
	"bet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type AccountRequest struct {
	Name           string          `json:"name"`
	Bookmaker      string          `json:"bookmaker"`
	CashBalance    decimal.Decimal `json:"cashBalance"`
	FreebetBalance decimal.Decimal `json:"freebetBalance"`
	Goal           decimal.Decimal `json:"goal"`
	ClubVolume     decimal.Decimal `json:"clubVolume"`
	PaymentDay     int             `json:"paymentDay"`
	PaymentAmount  decimal.Decimal `json:"paymentAmount"`
	Notes          string          `json:"notes"`
	LastCodeDate   string          `json:"lastCodeDate"`
	LastPaidPeriod string          `json:"lastPaidPeriod"`
}

type TransactionRequest struct {
	AccountId   string          `json:"accountId"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type TransferRequest struct {
	FromAccountId string          `json:"fromAccountId"`
	ToAccountId   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

type TransferResponse struct {
	Out *models.Transaction `json:"out"`
	In  *models.Transaction `json:"in"`
}

type StakeRequest struct {
	AccountId string          `json:"accountId"`
	Stake     decimal.Decimal `json:"stake"`
	IsFreebet bool            `json:"isFreebet"`
}

type LegRequest struct {
	Result   string          `json:"result"`
	Odd      decimal.Decimal `json:"odd"`
	Accounts []StakeRequest  `json:"accounts"`
}

type OperationRequest struct {
	Game     string       `json:"game"`
	Category string       `json:"category"`
	Legs     []LegRequest `json:"legs"`
}

// ResolveRequest carries either a winning market or an explicit status with
// the total payout.
type ResolveRequest struct {
	OperationId   string          `json:"operationId"`
	WinningMarket string          `json:"winningMarket"`
	Status        string          `json:"status"`
	TotalPayout   decimal.Decimal `json:"totalPayout"`
}

type ReverseResponse struct {
	Reversed int `json:"reversed"`
}
