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

package common

import (
	"context"
	"fmt"

	"bet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// InitializeOwners resolves the owners a command-line utility works on.
// If ownerFilter is provided, only that owner is returned, and only when it
// has at least one account. Otherwise every owner with an account is returned.
func InitializeOwners(ctx context.Context, ledger store.LedgerStore, ownerFilter string, logger *zap.Logger) ([]string, error) {
	if ownerFilter != "" {
		logger.Info("Looking up owner", zap.String("owner_id", ownerFilter))
		accounts, err := ledger.GetAccounts(ctx, ownerFilter, false)
		if err != nil {
			return nil, fmt.Errorf("failed to get accounts: %w", err)
		}
		if len(accounts) == 0 {
			return nil, fmt.Errorf("owner %s has no accounts: %w", ownerFilter, store.ErrNotFound)
		}
		return []string{ownerFilter}, nil
	}

	owners, err := ledger.GetOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get owners: %w", err)
	}

	logger.Info("Retrieved owners", zap.Int("count", len(owners)))
	return owners, nil
}
