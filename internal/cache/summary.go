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

// Package cache keeps computed monthly summaries close to the API.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bet-ledger-go/internal/models"

	"github.com/redis/go-redis/v9"
)

// SummaryCache stores summaries per owner and window. Entries are filed
// under the owner's current generation; Invalidate moves the owner to a new
// generation, so a summary computed before a mutation and written after it
// lands under a generation nobody reads anymore.
type SummaryCache interface {
	Generation(ctx context.Context, ownerId string) (int64, error)
	Get(ctx context.Context, ownerId string, generation int64, from, to time.Time) (*models.Summary, bool, error)
	Set(ctx context.Context, ownerId string, generation int64, summary *models.Summary) error
	Invalidate(ctx context.Context, ownerId string) error
}

// NopCache never holds anything.
type NopCache struct{}

func (NopCache) Generation(context.Context, string) (int64, error) { return 0, nil }
func (NopCache) Get(context.Context, string, int64, time.Time, time.Time) (*models.Summary, bool, error) {
	return nil, false, nil
}
func (NopCache) Set(context.Context, string, int64, *models.Summary) error { return nil }
func (NopCache) Invalidate(context.Context, string) error                  { return nil }

func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// RedisSummaryCache keeps one hash per owner and generation; each field is a
// window. The generation counter has no expiry, the hashes do.
type RedisSummaryCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSummaryCache(client redis.Cmdable, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func generationKey(ownerId string) string { return "ledger:summary:gen:" + ownerId }

func ownerKey(ownerId string, generation int64) string {
	return fmt.Sprintf("ledger:summary:%s:%d", ownerId, generation)
}

func windowField(from, to time.Time) string {
	return from.UTC().Format(time.RFC3339) + "/" + to.UTC().Format(time.RFC3339)
}

func (c *RedisSummaryCache) Generation(ctx context.Context, ownerId string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(ownerId)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read summary generation: %w", err)
	}
	return gen, nil
}

func (c *RedisSummaryCache) Get(ctx context.Context, ownerId string, generation int64, from, to time.Time) (*models.Summary, bool, error) {
	raw, err := c.client.HGet(ctx, ownerKey(ownerId, generation), windowField(from, to)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read summary cache: %w", err)
	}

	var summary models.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("decode cached summary: %w", err)
	}
	return &summary, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, ownerId string, generation int64, summary *models.Summary) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	key := ownerKey(ownerId, generation)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, windowField(summary.From, summary.To), b)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write summary cache: %w", err)
	}
	return nil
}

// Invalidate bumps the owner's generation and drops the previous hash.
func (c *RedisSummaryCache) Invalidate(ctx context.Context, ownerId string) error {
	gen, err := c.client.Incr(ctx, generationKey(ownerId)).Result()
	if err != nil {
		return fmt.Errorf("invalidate summary cache: %w", err)
	}
	if err := c.client.Del(ctx, ownerKey(ownerId, gen-1)).Err(); err != nil {
		return fmt.Errorf("drop stale summaries: %w", err)
	}
	return nil
}
