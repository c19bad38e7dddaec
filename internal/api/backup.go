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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bet-ledger-go/internal/events"
	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImportColumns is the header of the account import CSV, in template order.
var ImportColumns = []string{
	"nome",
	"casa_de_aposta",
	"saldo",
	"saldo_freebets",
	"dia_pagamento",
	"valor_pagamento",
	"observacoes",
	"data_ultimo_codigo",
}

// ImportTemplate returns an empty import file holding only the header.
func ImportTemplate() string {
	return strings.Join(ImportColumns, ",") + "\n"
}

func (s *LedgerService) Backup(ctx context.Context, ownerId string) (backup *models.Backup, err error) {
	start := time.Now()
	defer func() { err = s.finish("backup", start, err) }()

	return s.store.ExportOwner(ctx, ownerId)
}

// Restore replaces all of the owner's data with the backup.
func (s *LedgerService) Restore(ctx context.Context, ownerId string, backup *models.Backup) (err error) {
	start := time.Now()
	defer func() { err = s.finish("restore", start, err) }()

	if backup == nil {
		return store.Invalid("backup", "must not be empty")
	}
	if err = s.store.RestoreOwner(ctx, ownerId, backup); err != nil {
		return err
	}

	zap.L().Info("Owner data restored",
		zap.String("owner_id", ownerId),
		zap.Int("accounts", len(backup.Accounts)),
		zap.Int("transactions", len(backup.Transactions)))

	s.committed(ctx, events.Event{Type: events.OwnerRestored, OwnerId: ownerId})
	return nil
}

// ImportAccountsCSV upserts accounts by name from r. Rows with a blank name
// are skipped; any malformed row rejects the whole file.
func (s *LedgerService) ImportAccountsCSV(ctx context.Context, ownerId string, r io.Reader) (result *models.ImportResult, err error) {
	start := time.Now()
	defer func() { err = s.finish("import_accounts", start, err) }()

	rows, skipped, err := ParseImportCSV(r)
	if err != nil {
		return nil, err
	}

	result, err = s.store.ImportAccounts(ctx, ownerId, rows)
	if err != nil {
		return nil, err
	}
	result.Skipped += skipped

	zap.L().Info("Accounts imported",
		zap.String("owner_id", ownerId),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))

	s.committed(ctx, events.Event{Type: events.AccountsImported, OwnerId: ownerId})
	return result, nil
}

// ParseImportCSV reads the import format. Columns are matched by header name
// so their order does not matter; only "nome" is mandatory.
func ParseImportCSV(r io.Reader) (rows []store.ImportAccountRow, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, store.Invalid("csv", "file is empty")
	}
	if err != nil {
		return nil, 0, store.Invalid("csv", err.Error())
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	if _, ok := index["nome"]; !ok {
		return nil, 0, store.Invalid("csv", "missing column nome")
	}

	line := 1
	for {
		record, rerr := reader.Read()
		if errors.Is(rerr, io.EOF) {
			break
		}
		line++
		if rerr != nil {
			return nil, 0, store.Invalid("csv", rerr.Error())
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := get("nome")
		if name == "" {
			skipped++
			continue
		}

		row, perr := importRow(name, get)
		if perr != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, perr)
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func importRow(name string, get func(string) string) (store.ImportAccountRow, error) {
	cash, err := optionalDecimal("saldo", get("saldo"))
	if err != nil {
		return store.ImportAccountRow{}, err
	}
	freebet, err := optionalDecimal("saldo_freebets", get("saldo_freebets"))
	if err != nil {
		return store.ImportAccountRow{}, err
	}
	fee, err := optionalDecimal("valor_pagamento", get("valor_pagamento"))
	if err != nil {
		return store.ImportAccountRow{}, err
	}

	day := 0
	if raw := get("dia_pagamento"); raw != "" {
		day, err = strconv.Atoi(raw)
		if err != nil {
			return store.ImportAccountRow{}, store.Invalid("dia_pagamento", "must be a whole number")
		}
	}

	return store.ImportAccountRow{
		Profile: store.AccountProfile{
			Name:          name,
			Bookmaker:     get("casa_de_aposta"),
			PaymentDay:    day,
			PaymentAmount: fee,
			Notes:         get("observacoes"),
			LastCodeDate:  get("data_ultimo_codigo"),
		},
		Cash:    cash,
		Freebet: freebet,
	}, nil
}

func optionalDecimal(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, store.Invalid(field, "must be a decimal number")
	}
	return v, nil
}
