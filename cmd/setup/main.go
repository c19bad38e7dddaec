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
	"log"

	"bet-ledger-go/internal/common"
	"bet-ledger-go/internal/config"

	"go.uber.org/zap"
)

func runSeed(ctx context.Context, services *common.Services, seedFile string) {
	zap.L().Info("Loading seed configuration", zap.String("file", seedFile))
	seed, err := common.LoadSeedConfig(seedFile)
	if err != nil {
		zap.L().Fatal("Failed to load seed config", zap.Error(err))
	}
	zap.L().Info("Seed configuration loaded", zap.Int("owners", len(seed.Owners)))

	results, err := common.ApplySeed(ctx, services.DbService, seed)
	if err != nil {
		zap.L().Fatal("Failed to apply seed", zap.Error(err))
	}

	var created, updated int
	for _, r := range results {
		created += r.Created
		updated += r.Updated
	}
	zap.L().Info("Seed applied",
		zap.Int("accounts_created", created),
		zap.Int("accounts_updated", updated))
}

func main() {
	ctx := context.Background()

	seedFlag := flag.String("seed", "", "YAML file with owners and accounts to upsert (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_, loggerCleanup := common.InitializeLogger(cfg.ServiceName, cfg.Env)
	defer loggerCleanup()

	// opening the service creates the schema
	zap.L().Info("Initializing database", zap.String("driver", cfg.Database.Driver))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *seedFlag != "" {
		runSeed(ctx, services, *seedFlag)
	}

	zap.L().Info("Initialization complete")
}
