package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/settlement"
	"bet-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// RecordTransaction atomically applies a manual movement to an account and
// records it. Manual debits may overdraw the account.
func (s *Service) RecordTransaction(ctx context.Context, params store.RecordTransactionParams) (*models.Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	zap.L().Info("Recording transaction",
		zap.String("owner_id", params.OwnerId),
		zap.String("account_id", params.AccountId),
		zap.String("type", string(params.Type)),
		zap.String("amount", params.Amount.String()))

	effect, err := settlement.SignedEffect(params.Type, params.Amount)
	if err != nil {
		return nil, store.Invalid("type", err.Error())
	}

	var details models.Details = models.CashDetails{Origin: "manual"}
	if params.Type == models.TxFreebetCredit {
		details = models.FreebetDetails{Amount: effect.Freebet}
	}

	var recorded *models.Transaction
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.applyEffect(ctx, tx, params.OwnerId, params.AccountId, effect.Cash, effect.Freebet); err != nil {
			return err
		}
		var err error
		recorded, err = s.recordTransaction(ctx, tx, ledgerEntry{
			OwnerId:     params.OwnerId,
			AccountId:   params.AccountId,
			Type:        params.Type,
			Amount:      effect.Cash,
			Description: params.Description,
			Details:     details,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Transaction processed successfully",
		zap.String("transaction_id", recorded.Id),
		zap.String("account_id", recorded.AccountId))
	return recorded, nil
}

// Transfer moves cash between two accounts of the same owner and records a
// linked transfer_out/transfer_in pair. The source may be overdrawn.
func (s *Service) Transfer(ctx context.Context, params store.TransferParams) (*models.Transaction, *models.Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	outId := uuid.New().String()
	inId := uuid.New().String()

	var out, in *models.Transaction
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		from, err := s.getAccount(ctx, tx, params.OwnerId, params.FromAccountId)
		if err != nil {
			return err
		}
		to, err := s.getAccount(ctx, tx, params.OwnerId, params.ToAccountId)
		if err != nil {
			return err
		}

		if _, err := s.adjustBalance(ctx, tx, balanceChange{OwnerId: params.OwnerId, AccountId: from.Id, Field: models.FieldCash, Delta: params.Amount.Neg()}); err != nil {
			return err
		}
		if _, err := s.adjustBalance(ctx, tx, balanceChange{OwnerId: params.OwnerId, AccountId: to.Id, Field: models.FieldCash, Delta: params.Amount}); err != nil {
			return err
		}

		out, err = s.recordTransaction(ctx, tx, ledgerEntry{
			Id:          outId,
			OwnerId:     params.OwnerId,
			AccountId:   from.Id,
			Type:        models.TxTransferOut,
			Amount:      params.Amount.Neg(),
			Description: transferDescription("Transfer to "+to.Name, params.Description),
			Details:     models.TransferDetails{LinkedTransferId: inId, CounterpartAccountId: to.Id},
		})
		if err != nil {
			return err
		}

		in, err = s.recordTransaction(ctx, tx, ledgerEntry{
			Id:          inId,
			OwnerId:     params.OwnerId,
			AccountId:   to.Id,
			Type:        models.TxTransferIn,
			Amount:      params.Amount,
			Description: transferDescription("Transfer from "+from.Name, params.Description),
			Details:     models.TransferDetails{LinkedTransferId: outId, CounterpartAccountId: from.Id},
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("Transfer processed successfully",
		zap.String("owner_id", params.OwnerId),
		zap.String("from_account_id", params.FromAccountId),
		zap.String("to_account_id", params.ToAccountId),
		zap.String("amount", params.Amount.String()))
	return out, in, nil
}

func transferDescription(prefix, note string) string {
	if note == "" {
		return prefix
	}
	return fmt.Sprintf("%s: %s", prefix, note)
}

func (s *Service) GetTransaction(ctx context.Context, ownerId, transactionId string) (*models.Transaction, error) {
	return s.getTransaction(ctx, s.db, ownerId, transactionId)
}

func (s *Service) getTransaction(ctx context.Context, q querier, ownerId, transactionId string) (*models.Transaction, error) {
	tx, err := scanTransaction(q.QueryRowContext(ctx, s.q(queryGetTransaction), transactionId, ownerId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", transactionId, store.ErrNotFoundOrUnauthorized)
	}
	if err != nil {
		return nil, failure("get transaction", err)
	}
	return tx, nil
}

// GetTransactionHistory returns paginated transaction history for an owner,
// newest first.
func (s *Service) GetTransactionHistory(ctx context.Context, ownerId string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	zap.L().Debug("Getting transaction history",
		zap.String("owner_id", ownerId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	return s.queryTransactions(ctx, s.db, queryGetTransactionHistory, ownerId, limit, offset)
}

// GetActiveBets lists the unsettled bet_placed rows of an owner.
func (s *Service) GetActiveBets(ctx context.Context, ownerId string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, s.db, queryGetActiveBets, ownerId)
}
