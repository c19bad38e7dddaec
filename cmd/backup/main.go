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
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"bet-ledger-go/internal/common"
	"bet-ledger-go/internal/config"
	"bet-ledger-go/internal/models"

	"go.uber.org/zap"
)

func export(ctx context.Context, services *common.Services, ownerId, path string) error {
	backup, err := services.Ledger.Backup(ctx, ownerId)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("Exported %d accounts and %d transactions to %s\n", len(backup.Accounts), len(backup.Transactions), path)
	return nil
}

func restore(ctx context.Context, services *common.Services, ownerId, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var backup models.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := services.Ledger.Restore(ctx, ownerId, &backup); err != nil {
		return err
	}
	fmt.Printf("Restored %d accounts and %d transactions for %s\n", len(backup.Accounts), len(backup.Transactions), ownerId)
	return nil
}

func importCSV(ctx context.Context, services *common.Services, ownerId, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	result, err := services.Ledger.ImportAccountsCSV(ctx, ownerId, f)
	if err != nil {
		return err
	}
	fmt.Printf("%d accounts created, %d updated, %d skipped\n", result.Created, result.Updated, result.Skipped)
	return nil
}

func main() {
	ctx := context.Background()

	ownerFlag := flag.String("owner", "", "Owner id (required)")
	exportFlag := flag.String("export", "", "Write the owner's backup to this JSON file")
	restoreFlag := flag.String("restore", "", "Replace the owner's data with this JSON backup")
	importFlag := flag.String("import-csv", "", "Upsert accounts from this CSV file")
	flag.Parse()

	chosen := 0
	for _, v := range []string{*exportFlag, *restoreFlag, *importFlag} {
		if v != "" {
			chosen++
		}
	}
	if *ownerFlag == "" || chosen != 1 {
		log.Fatalf("usage: backup --owner ID (--export FILE | --restore FILE | --import-csv FILE)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_, loggerCleanup := common.InitializeLogger(cfg.ServiceName, cfg.Env)
	defer loggerCleanup()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	switch {
	case *exportFlag != "":
		err = export(ctx, services, *ownerFlag, *exportFlag)
	case *restoreFlag != "":
		err = restore(ctx, services, *ownerFlag, *restoreFlag)
	default:
		err = importCSV(ctx, services, *ownerFlag, *importFlag)
	}
	if err != nil {
		zap.L().Fatal("Backup command failed", zap.Error(err))
	}
}
