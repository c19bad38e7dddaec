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

package api

import (
	"context"
	"time"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"go.uber.org/zap"
)

const (
	recentTransactions = 30
	seriesMonths       = 12
)

func monthWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// MonthlySummary aggregates [from, to). Zero bounds mean the current month.
// Results are served from the summary cache when present.
func (s *LedgerService) MonthlySummary(ctx context.Context, ownerId string, from, to time.Time) (summary *models.Summary, err error) {
	start := time.Now()
	defer func() { err = s.finish("monthly_summary", start, err) }()

	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}
	if from.IsZero() && to.IsZero() {
		from, to = monthWindow(s.now())
	}
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return nil, store.Invalid("window", "from must be before to")
	}

	generation, cerr := s.cache.Generation(ctx, ownerId)
	if cerr != nil {
		zap.L().Warn("Summary cache unavailable", zap.String("owner_id", ownerId), zap.Error(cerr))
		return s.store.MonthlySummary(ctx, ownerId, from, to)
	}

	cached, ok, cerr := s.cache.Get(ctx, ownerId, generation, from, to)
	if cerr != nil {
		zap.L().Warn("Summary cache read failed", zap.String("owner_id", ownerId), zap.Error(cerr))
	}
	if ok {
		return cached, nil
	}

	summary, err = s.store.MonthlySummary(ctx, ownerId, from, to)
	if err != nil {
		return nil, err
	}
	// filed under the generation read before the query; a mutation in
	// between has already moved readers past it
	if cerr := s.cache.Set(ctx, ownerId, generation, summary); cerr != nil {
		zap.L().Warn("Summary cache write failed", zap.String("owner_id", ownerId), zap.Error(cerr))
	}
	return summary, nil
}

func (s *LedgerService) AccountReport(ctx context.Context, ownerId string) (report []models.AccountReport, err error) {
	start := time.Now()
	defer func() { err = s.finish("account_report", start, err) }()

	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}
	return s.store.AccountReport(ctx, ownerId)
}

// MonthlySeries returns the last twelve months, oldest first.
func (s *LedgerService) MonthlySeries(ctx context.Context, ownerId string) (series []models.MonthlyReport, err error) {
	start := time.Now()
	defer func() { err = s.finish("monthly_series", start, err) }()

	if ownerId == "" {
		return nil, store.Invalid("owner", "must not be empty")
	}
	return s.store.MonthlySeries(ctx, ownerId, s.now(), seriesMonths)
}

// Dashboard gathers the landing view: active accounts with totals, open bet
// legs, recent activity and the current month.
func (s *LedgerService) Dashboard(ctx context.Context, ownerId string) (*models.Dashboard, error) {
	accounts, err := s.GetAccounts(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	bets, err := s.GetActiveBets(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	recent, err := s.GetTransactionHistory(ctx, ownerId, recentTransactions, 0)
	if err != nil {
		return nil, err
	}
	summary, err := s.MonthlySummary(ctx, ownerId, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	cash, freebet := totals(accounts)
	return &models.Dashboard{
		Accounts:       accounts,
		TotalCash:      cash,
		TotalFreebet:   freebet,
		ActiveBets:     bets,
		Recent:         recent,
		MonthlySummary: summary,
	}, nil
}
