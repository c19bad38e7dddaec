package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/settlement"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultSeriesMonths = 12

// MonthStart returns the first instant of t's month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlySummary aggregates an owner's rows created in [from, to). Bet rows
// make up the net P/L; every other row counts as a credit or a debit by
// sign. Opening balances are not activity and are left out.
func (s *Service) MonthlySummary(ctx context.Context, ownerId string, from, to time.Time) (*models.Summary, error) {
	summary := &models.Summary{
		From:    from.UTC(),
		To:      to.UTC(),
		Credits: decimal.Zero,
		Debits:  decimal.Zero,
		NetPL:   decimal.Zero,
	}

	rows, err := s.db.QueryContext(ctx, s.q(querySummaryWindow), ownerId, from.UTC(), to.UTC())
	if err != nil {
		return nil, failure("query summary", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var txType, amountStr string
		if err := rows.Scan(&txType, &amountStr); err != nil {
			return nil, failure("scan summary row", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, failure(fmt.Sprintf("parse amount '%s'", amountStr), err)
		}

		t := models.TransactionType(txType)
		switch {
		case t.IsBet():
			summary.NetPL = summary.NetPL.Add(amount)
		case t == models.TxOpeningBalance:
		case amount.IsPositive():
			summary.Credits = summary.Credits.Add(amount)
		case amount.IsNegative():
			summary.Debits = summary.Debits.Add(amount.Abs())
		}
	}
	if err := rows.Err(); err != nil {
		return nil, failure("iterate summary rows", err)
	}

	return summary, nil
}

// AccountReport reports P/L, wagered volume and bet count for every active
// account of an owner. Free-bet stakes count towards volume.
func (s *Service) AccountReport(ctx context.Context, ownerId string) ([]models.AccountReport, error) {
	accounts, err := s.GetAccounts(ctx, ownerId, true)
	if err != nil {
		return nil, err
	}

	bets, err := s.queryTransactions(ctx, s.db, queryGetBetTransactions, ownerId)
	if err != nil {
		return nil, err
	}

	byAccount := make(map[string][]models.Transaction, len(accounts))
	for _, bet := range bets {
		byAccount[bet.AccountId] = append(byAccount[bet.AccountId], bet)
	}

	reports := make([]models.AccountReport, 0, len(accounts))
	for _, account := range accounts {
		report := models.AccountReport{
			AccountId:      account.Id,
			Name:           account.Name,
			Bookmaker:      account.Bookmaker,
			CashBalance:    account.CashBalance,
			FreebetBalance: account.FreebetBalance,
			ProfitLoss:     settlement.ProfitLoss(byAccount[account.Id]),
			Volume:         decimal.Zero,
		}
		for _, bet := range byAccount[account.Id] {
			if bet.TransactionType != models.TxBetPlaced {
				continue
			}
			report.Volume = report.Volume.Add(settlement.Wagered(&bet))
			report.BetCount++
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// MonthlySeries returns the last months (default 12) ending with the month
// of now, oldest first, with bet P/L, expenses and club payments per month.
func (s *Service) MonthlySeries(ctx context.Context, ownerId string, now time.Time, months int) ([]models.MonthlyReport, error) {
	if months <= 0 {
		months = defaultSeriesMonths
	}

	current := MonthStart(now)
	first := current.AddDate(0, -(months - 1), 0)
	end := current.AddDate(0, 1, 0)

	series := make([]models.MonthlyReport, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		period := first.AddDate(0, i, 0).Format("2006-01")
		series[i] = models.MonthlyReport{
			Period:       period,
			ProfitLoss:   decimal.Zero,
			Expenses:     decimal.Zero,
			ClubPayments: decimal.Zero,
		}
		index[period] = i
	}

	rows, err := s.db.QueryContext(ctx, s.q(querySeriesWindow), ownerId, first, end)
	if err != nil {
		return nil, failure("query monthly series", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var txType, amountStr string
		var createdAt time.Time
		if err := rows.Scan(&txType, &amountStr, &createdAt); err != nil {
			return nil, failure("scan series row", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, failure(fmt.Sprintf("parse amount '%s'", amountStr), err)
		}

		i, ok := index[createdAt.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		switch models.TransactionType(txType) {
		case models.TxBetPlaced, models.TxBetWon:
			series[i].ProfitLoss = series[i].ProfitLoss.Add(amount)
		case models.TxExpense:
			series[i].Expenses = series[i].Expenses.Add(amount.Abs())
		case models.TxClubPayment:
			series[i].ClubPayments = series[i].ClubPayments.Add(amount.Abs())
		}
	}
	if err := rows.Err(); err != nil {
		return nil, failure("iterate series rows", err)
	}

	return series, nil
}
