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
	"errors"
	"flag"
	"fmt"
	"log"

	"bet-ledger-go/internal/common"
	"bet-ledger-go/internal/config"
	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type recordRequest struct {
	owner       string
	account     string
	txType      models.TransactionType
	amount      decimal.Decimal
	description string
}

func parseAndValidateFlags() (*recordRequest, error) {
	ownerFlag := flag.String("owner", "", "Owner id (required)")
	accountFlag := flag.String("account", "", "Account id (required)")
	typeFlag := flag.String("type", "", "deposit, withdrawal, expense, credit, debit or freebet_credit (required)")
	amountFlag := flag.String("amount", "", "Positive amount (required)")
	descriptionFlag := flag.String("description", "", "Free-text description")
	flag.Parse()

	if *ownerFlag == "" || *accountFlag == "" || *typeFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("flags --owner, --account, --type and --amount are required")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return &recordRequest{
		owner:       *ownerFlag,
		account:     *accountFlag,
		txType:      models.TransactionType(*typeFlag),
		amount:      amount,
		description: *descriptionFlag,
	}, nil
}

func printRecordSummary(before *models.Account, recorded *models.Transaction, after *models.Account) {
	common.PrintHeader("TRANSACTION RECORDED", common.DefaultWidth)
	fmt.Printf("Account:           %s (%s)\n", after.Name, after.Bookmaker)
	fmt.Printf("Type:              %s\n", recorded.TransactionType)
	fmt.Printf("Amount:            %s\n", common.SignedMoney(recorded.Amount))
	fmt.Printf("Cash:              %s -> %s\n", common.Money(before.CashBalance), common.Money(after.CashBalance))
	fmt.Printf("Free-bet:          %s -> %s\n", common.Money(before.FreebetBalance), common.Money(after.FreebetBalance))
	fmt.Printf("Transaction ID:    %s\n", recorded.Id)
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	req, err := parseAndValidateFlags()
	if err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_, loggerCleanup := common.InitializeLogger(cfg.ServiceName, cfg.Env)
	defer loggerCleanup()

	zap.L().Info("Recording manual transaction",
		zap.String("owner_id", req.owner),
		zap.String("account_id", req.account),
		zap.String("type", string(req.txType)),
		zap.String("amount", req.amount.String()))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	before, err := services.Ledger.GetAccount(ctx, req.owner, req.account)
	if err != nil {
		zap.L().Fatal("Account not found", zap.String("account_id", req.account), zap.Error(err))
	}

	recorded, err := services.Ledger.RecordTransaction(ctx, store.RecordTransactionParams{
		OwnerId:     req.owner,
		AccountId:   req.account,
		Type:        req.txType,
		Amount:      req.amount,
		Description: req.description,
	})
	if err != nil {
		common.PrintHeader("TRANSACTION FAILED", common.DefaultWidth)
		switch {
		case errors.Is(err, store.ErrValidation):
			fmt.Printf("Rejected: %v\n", err)
		case errors.Is(err, store.ErrConcurrentModification):
			fmt.Println("The account was modified concurrently - please retry")
		default:
			fmt.Printf("Error: %v\n", err)
		}
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Failed to record transaction", zap.Error(err))
	}

	after, err := services.Ledger.GetAccount(ctx, req.owner, req.account)
	if err != nil {
		zap.L().Fatal("Account lookup failed after recording", zap.Error(err))
	}

	printRecordSummary(before, recorded, after)
}
