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
	"fmt"
	"time"

	"bet-ledger-go/internal/cache"
	"bet-ledger-go/internal/events"
	"bet-ledger-go/internal/metrics"
	"bet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// LedgerService is the entry point for every ledger use case. It validates
// through the store, maps backend failures to an opaque error and runs the
// post-commit side effects.
type LedgerService struct {
	store     store.LedgerStore
	publisher events.Publisher
	cache     cache.SummaryCache
	metrics   *metrics.Metrics
	now       func() time.Time
}

type LedgerServiceConfig struct {
	Store     store.LedgerStore
	Publisher events.Publisher
	Cache     cache.SummaryCache
	Metrics   *metrics.Metrics
}

func NewLedgerService(cfg LedgerServiceConfig) *LedgerService {
	s := &LedgerService{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		cache:     cfg.Cache,
		metrics:   cfg.Metrics,
		now:       time.Now,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.cache == nil {
		s.cache = cache.NopCache{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	return s
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// finish records the call and hides backend details from callers. Client
// errors pass through untouched.
func (s *LedgerService) finish(op string, start time.Time, err error) error {
	s.metrics.Observe(op, start, err)
	if err == nil || store.IsClientError(err) {
		return err
	}
	zap.L().Error("Ledger operation failed",
		zap.String("operation", op),
		zap.Error(err))
	return fmt.Errorf("%s: %w", op, store.ErrStorageFailure)
}

// committed drops the owner's cached summaries and publishes e. Both run
// after commit; failures are logged and counted only.
func (s *LedgerService) committed(ctx context.Context, e events.Event) {
	err := s.cache.Invalidate(ctx, e.OwnerId)
	s.metrics.SideEffect("cache_invalidate", err)
	if err != nil {
		zap.L().Warn("Failed to invalidate summary cache",
			zap.String("owner_id", e.OwnerId),
			zap.Error(err))
	}

	e.OccurredAt = s.now().UTC()
	err = s.publisher.Publish(ctx, e)
	s.metrics.SideEffect("publish", err)
	if err != nil {
		zap.L().Warn("Failed to publish ledger event",
			zap.String("owner_id", e.OwnerId),
			zap.String("event_type", string(e.Type)),
			zap.Error(err))
	}
}

func (s *LedgerService) Close() error {
	return s.publisher.Close()
}
