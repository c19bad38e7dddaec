package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"bet-ledger-go/internal/api"
	"bet-ledger-go/internal/models"
	"bet-ledger-go/internal/store"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeLedgerError maps the ledger error taxonomy onto HTTP statuses.
// Storage failures never leak details.
func writeLedgerError(w http.ResponseWriter, err error) {
	var insufficient *store.InsufficientFundsError
	switch {
	case errors.Is(err, store.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", nil)
	case errors.As(err, &insufficient):
		writeError(w, http.StatusUnprocessableEntity, "insufficient funds", err)
	case errors.Is(err, store.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "concurrent modification, retry", nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes))
	if err := dec.Decode(dst); err != nil {
		return store.Invalid("body", err.Error())
	}
	return nil
}

// owner is set by Authenticated; a missing owner means the route was
// mounted outside the auth group.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerId, ok := models.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", nil)
	}
	return ownerId, ok
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	dashboard, err := h.ledger.Dashboard(r.Context(), ownerId)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (req AccountRequest) profile() store.AccountProfile {
	return store.AccountProfile{
		Name:          req.Name,
		Bookmaker:     req.Bookmaker,
		Goal:          req.Goal,
		ClubVolume:    req.ClubVolume,
		PaymentDay:    req.PaymentDay,
		PaymentAmount: req.PaymentAmount,
		Notes:         req.Notes,
		LastCodeDate:  req.LastCodeDate,
	}
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	accounts, err := h.ledger.GetAccounts(r.Context(), ownerId)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	account, err := h.ledger.GetAccount(r.Context(), ownerId, chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	var req AccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeLedgerError(w, err)
		return
	}

	account, err := h.ledger.CreateAccount(r.Context(), store.CreateAccountParams{
		OwnerId:        ownerId,
		Profile:        req.profile(),
		OpeningCash:    req.CashBalance,
		OpeningFreebet: req.FreebetBalance,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// UpdateAccount changes metadata only; balance fields in the body are ignored.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	var req AccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeLedgerError(w, err)
		return
	}

	account, err := h.ledger.UpdateAccount(r.Context(), store.UpdateAccountParams{
		OwnerId:        ownerId,
		AccountId:      chi.URLParam(r, "id"),
		Profile:        req.profile(),
		LastPaidPeriod: req.LastPaidPeriod,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	if err := h.ledger.DeactivateAccount(r.Context(), ownerId, chi.URLParam(r, "id")); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PayClubFee(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	payment, err := h.ledger.PayClubFee(r.Context(), ownerId, chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	history, err := h.ledger.GetTransactionHistory(r.Context(), ownerId, limit, offset)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	var req TransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeLedgerError(w, err)
		return
	}

	transaction, err := h.ledger.RecordTransaction(r.Context(), store.RecordTransactionParams{
		OwnerId:     ownerId,
		AccountId:   req.AccountId,
		Type:        models.TransactionType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transaction)
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	var req TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeLedgerError(w, err)
		return
	}

	out, in, err := h.ledger.Transfer(r.Context(), store.TransferParams{
		OwnerId:       ownerId,
		FromAccountId: req.FromAccountId,
		ToAccountId:   req.ToAccountId,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, TransferResponse{Out: out, In: in})
}

func (h *Handler) ReverseTransaction(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	reversed, err := h.ledger.ReverseTransaction(r.Context(), ownerId, chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReverseResponse{Reversed: len(reversed)})
}

// =============================================================================
// OPERATIONS
// =============================================================================

func (h *Handler) PlaceOperation(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	var req OperationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeLedgerError(w, err)
		return
	}

	legs := make([]store.LegParams, len(req.Legs))
	for i, leg := range req.Legs {
		stakes := make([]store.StakeParams, len(leg.Accounts))
		for j, s := range leg.Accounts {
			stakes[j] = store.StakeParams{AccountId: s.AccountId, Stake: s.Stake, IsFreebet: s.IsFreebet}
		}
		legs[i] = store.LegParams{Result: leg.Result, Odd: leg.Odd, Stakes: stakes}
	}

	operation, err := h.ledger.PlaceOperation(r.Context(), store.PlaceOperationParams{
		OwnerId:  ownerId,
		Game:     req.Game,
		Category: req.Category,
		Legs:     legs,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, operation)
}

// ResolveOperation settles by winning market when one is given, otherwise by
// explicit status and total payout.
func (h *Handler) ResolveOperation(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	var req ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeLedgerError(w, err)
		return
	}

	var (
		resolution *models.Resolution
		err        error
	)
	switch {
	case req.WinningMarket != "":
		resolution, err = h.ledger.ResolveByMarket(r.Context(), store.ResolveMarketParams{
			OwnerId:       ownerId,
			OperationId:   req.OperationId,
			WinningMarket: req.WinningMarket,
		})
	case req.Status != "":
		var status models.BetStatus
		status, err = api.ParseBetStatus(req.Status)
		if err == nil {
			resolution, err = h.ledger.ResolveExplicit(r.Context(), store.ResolveExplicitParams{
				OwnerId:     ownerId,
				OperationId: req.OperationId,
				Status:      status,
				TotalPayout: req.TotalPayout,
			})
		}
	default:
		err = store.Invalid("resolution", "winningMarket or status is required")
	}
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolution)
}

func (h *Handler) ActiveBets(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	bets, err := h.ledger.GetActiveBets(r.Context(), ownerId)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

// =============================================================================
// REPORTS
// =============================================================================

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	from, err := queryTime(r, "from")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	summary, err := h.ledger.MonthlySummary(r.Context(), ownerId, from, to)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) AccountReport(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	report, err := h.ledger.AccountReport(r.Context(), ownerId)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) MonthlySeries(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	series, err := h.ledger.MonthlySeries(r.Context(), ownerId)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	reports, err := h.ledger.ReconcileOwner(r.Context(), ownerId)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// =============================================================================
// BACKUP & IMPORT
// =============================================================================

func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	backup, err := h.ledger.Backup(r.Context(), ownerId)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	filename := fmt.Sprintf("backup_%s.json", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	writeJSON(w, http.StatusOK, backup)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}
	var backup models.Backup
	if err := decodeJSON(r, &backup); err != nil {
		writeLedgerError(w, err)
		return
	}
	if err := h.ledger.Restore(r.Context(), ownerId, &backup); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"accounts":     len(backup.Accounts),
		"transactions": len(backup.Transactions),
	})
}

// ImportAccounts takes the CSV either as a multipart upload (field csvFile or
// file) or as the raw request body.
func (h *Handler) ImportAccounts(w http.ResponseWriter, r *http.Request) {
	ownerId, ok := owner(w, r)
	if !ok {
		return
	}

	var body io.Reader = io.LimitReader(r.Body, maxUploadBytes)
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeLedgerError(w, store.Invalid("csvFile", err.Error()))
			return
		}
		file, _, err := r.FormFile("csvFile")
		if errors.Is(err, http.ErrMissingFile) {
			file, _, err = r.FormFile("file")
		}
		if err != nil {
			writeLedgerError(w, store.Invalid("csvFile", "no CSV file uploaded"))
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.ledger.ImportAccountsCSV(r.Context(), ownerId, body)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=modelo_contas.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, api.ImportTemplate())
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, store.Invalid(key, "must be a whole number")
	}
	return v, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, store.Invalid(key, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}
