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

package database

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"bet-ledger-go/internal/models"
)

const memoryPath = ":memory:"

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return dialectSQLite, nil
	case "postgres", "postgresql", "pq":
		return dialectPostgres, nil
	}
	return 0, fmt.Errorf("unsupported database driver %q", driver)
}

func (d dialect) driverName() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

func (d dialect) dsn(cfg models.DatabaseConfig) string {
	if d == dialectPostgres {
		return cfg.Url
	}
	// writers take the database lock at BEGIN
	return cfg.Path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
}

// describe is a log-safe rendering of the connection target.
func (d dialect) describe(cfg models.DatabaseConfig) string {
	if d == dialectSQLite {
		return cfg.Path
	}
	u, err := url.Parse(cfg.Url)
	if err != nil {
		return "postgres"
	}
	return u.Redacted()
}

// rebind rewrites ? placeholders to $n for postgres.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
