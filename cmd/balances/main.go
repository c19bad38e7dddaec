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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"bet-ledger-go/internal/api"
	"bet-ledger-go/internal/common"
	"bet-ledger-go/internal/config"
	"bet-ledger-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalOwners int
	accounts    int
	mismatched  int
}

func shortId(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func printAccount(account models.Account, recon *models.Reconciliation, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	status := "ok"
	if recon != nil && !recon.Balanced() {
		status = fmt.Sprintf("MISMATCH log=%s/%s", common.Money(recon.ComputedCash), common.Money(recon.ComputedFreebet))
	}

	fmt.Printf("%s %-24s %12s cash %10s freebet  v%d %s [%s]\n",
		symbol,
		account.Name,
		common.Money(account.CashBalance),
		common.Money(account.FreebetBalance),
		account.Version,
		shortId(account.Id),
		status)
}

func printOwnerHeader(ownerId string, accountCount int) {
	fmt.Printf("\n┌─ Owner: %s\n", ownerId)
	fmt.Printf("│  Accounts: %d\n", accountCount)
	common.PrintBoxSeparator(78)
}

func processOwner(ctx context.Context, ownerId string, ledger *api.LedgerService) (int, int, error) {
	accounts, err := ledger.GetAccounts(ctx, ownerId)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get accounts: %w", err)
	}
	reports, err := ledger.ReconcileOwner(ctx, ownerId)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to reconcile: %w", err)
	}

	byAccount := make(map[string]*models.Reconciliation, len(reports))
	for i := range reports {
		byAccount[reports[i].AccountId] = &reports[i]
	}

	if len(accounts) == 0 {
		return 0, 0, nil
	}

	printOwnerHeader(ownerId, len(accounts))
	mismatched := 0
	for i, account := range accounts {
		recon := byAccount[account.Id]
		if recon != nil && !recon.Balanced() {
			mismatched++
		}
		printAccount(account, recon, i == len(accounts)-1)
	}

	return len(accounts), mismatched, nil
}

func main() {
	ctx := context.Background()

	ownerFlag := flag.String("owner", "", "Filter by owner id (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, loggerCleanup := common.InitializeLogger(cfg.ServiceName, cfg.Env)
	defer loggerCleanup()

	logger.Info("Starting balance query")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	owners, err := common.InitializeOwners(ctx, services.DbService, *ownerFlag, logger)
	if err != nil {
		logger.Fatal("Failed to resolve owners", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT BALANCE REPORT", common.WideWidth)

	stats := balanceStats{}
	for _, ownerId := range owners {
		stats.totalOwners++
		count, mismatched, err := processOwner(ctx, ownerId, services.Ledger)
		if err != nil {
			logger.Error("Failed to process owner", zap.String("owner_id", ownerId), zap.Error(err))
			continue
		}
		stats.accounts += count
		stats.mismatched += mismatched
	}

	summary := fmt.Sprintf("SUMMARY: %d active accounts across %d owners, %d out of balance",
		stats.accounts, stats.totalOwners, stats.mismatched)
	common.PrintFooter(summary, common.WideWidth)

	logger.Info("Balance query completed",
		zap.Int("owners", stats.totalOwners),
		zap.Int("accounts", stats.accounts),
		zap.Int("mismatched", stats.mismatched))
}
