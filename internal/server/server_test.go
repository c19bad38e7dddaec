package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bet-ledger-go/internal/api"
	"bet-ledger-go/internal/database"
	"bet-ledger-go/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type testServer struct {
	t      *testing.T
	router http.Handler
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Driver:       "sqlite3",
		Path:         ":memory:",
		MaxOpenConns: 1,
		PingTimeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ledger := api.NewLedgerService(api.LedgerServiceConfig{Store: db})
	return &testServer{
		t:      t,
		router: NewRouter(NewHandler(ledger), RouterConfig{JwtSecret: testSecret, CorsOrigins: []string{"*"}}),
	}
}

func (s *testServer) do(method, path, owner string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		token, err := IssueToken(testSecret, owner, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createAccount(owner, name, cash string) models.Account {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/accounts", owner, map[string]any{
		"name":        name,
		"bookmaker":   "book",
		"cashBalance": cash,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Account](s.t, rec)
}

func TestAuth(t *testing.T) {
	s := setupServer(t)

	rec := s.do(http.MethodGet, "/api/accounts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	wrong, err := IssueToken([]byte("other-secret"), "owner-1", nil)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+wrong)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := IssueToken(testSecret, "owner-1", jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}).SignedString(testSecret)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+noSubject)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/accounts", "owner-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccountsAreScopedToTokenOwner(t *testing.T) {
	s := setupServer(t)
	account := s.createAccount("owner-1", "Main", "100")

	rec := s.do(http.MethodGet, "/api/accounts/"+account.Id, "owner-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/accounts", "owner-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Account](t, rec))

	rec = s.do(http.MethodGet, "/api/accounts", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Account](t, rec), 1)
}

func TestStatusMapping(t *testing.T) {
	s := setupServer(t)
	account := s.createAccount("owner-1", "Main", "10")

	rec := s.do(http.MethodPost, "/api/transactions", "owner-1", map[string]any{
		"accountId": account.Id, "type": "deposit", "amount": "-5",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/operations", "owner-1", map[string]any{
		"game": "A x B",
		"legs": []map[string]any{{
			"result": "home", "odd": "2",
			"accounts": []map[string]any{{"accountId": account.Id, "stake": "50"}},
		}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodDelete, "/api/transactions/missing", "owner-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader("{not json"))
	token, err := IssueToken(testSecret, "owner-1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBetLifecycleOverHTTP(t *testing.T) {
	s := setupServer(t)
	a := s.createAccount("owner-1", "A", "100")
	b := s.createAccount("owner-1", "B", "100")

	rec := s.do(http.MethodPost, "/api/operations", "owner-1", map[string]any{
		"game": "A x B",
		"legs": []map[string]any{
			{"result": "home", "odd": "2.0", "accounts": []map[string]any{{"accountId": a.Id, "stake": "50"}}},
			{"result": "away", "odd": "2.0", "accounts": []map[string]any{{"accountId": b.Id, "stake": "50"}}},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	operation := decode[models.Operation](t, rec)
	require.Len(t, operation.Legs, 2)

	rec = s.do(http.MethodGet, "/api/operations/active", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Transaction](t, rec), 2)

	rec = s.do(http.MethodPost, "/api/operations/resolve", "owner-1", map[string]any{
		"operationId": operation.Id, "winningMarket": "home",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resolution := decode[models.Resolution](t, rec)
	assert.True(t, resolution.TotalCredited.Equal(decimal.NewFromInt(100)))

	rec = s.do(http.MethodPost, "/api/operations/resolve", "owner-1", map[string]any{
		"operationId": operation.Id, "winningMarket": "home",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/reports/accounts", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[[]models.AccountReport](t, rec)
	require.Len(t, report, 2)

	rec = s.do(http.MethodDelete, "/api/transactions/"+operation.Legs[0].Id, "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[ReverseResponse](t, rec).Reversed)

	rec = s.do(http.MethodGet, "/api/reports/reconcile", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, r := range decode[[]models.Reconciliation](t, rec) {
		assert.True(t, r.Balanced(), r.AccountId)
	}
}

func TestResolveRequiresMarketOrStatus(t *testing.T) {
	s := setupServer(t)

	rec := s.do(http.MethodPost, "/api/operations/resolve", "owner-1", map[string]any{"operationId": "op-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/operations/resolve", "owner-1", map[string]any{
		"operationId": "op-1", "status": "maybe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferAndSummary(t *testing.T) {
	s := setupServer(t)
	a := s.createAccount("owner-1", "A", "100")
	b := s.createAccount("owner-1", "B", "0")

	rec := s.do(http.MethodPost, "/api/transfers", "owner-1", map[string]any{
		"fromAccountId": a.Id, "toAccountId": b.Id, "amount": "40", "description": "rebalance",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	transfer := decode[TransferResponse](t, rec)
	assert.True(t, transfer.Out.Amount.Equal(decimal.NewFromInt(-40)))
	assert.True(t, transfer.In.Amount.Equal(decimal.NewFromInt(40)))

	rec = s.do(http.MethodGet, "/api/reports/summary", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[models.Summary](t, rec)
	assert.True(t, summary.Credits.Equal(summary.Debits))

	rec = s.do(http.MethodGet, "/api/reports/summary?from=yesterday", "owner-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/reports/monthly", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MonthlyReport](t, rec), 12)

	rec = s.do(http.MethodGet, "/api/dashboard", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := decode[models.Dashboard](t, rec)
	assert.True(t, dashboard.TotalCash.Equal(decimal.NewFromInt(100)))
}

func TestClubFeeAndDeactivate(t *testing.T) {
	s := setupServer(t)
	rec := s.do(http.MethodPost, "/api/accounts", "owner-1", map[string]any{
		"name": "Club", "cashBalance": "50", "paymentDay": 10, "paymentAmount": "19.90",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	account := decode[models.Account](t, rec)

	rec = s.do(http.MethodPost, "/api/accounts/"+account.Id+"/payment", "owner-1", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/accounts/"+account.Id, "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Account](t, rec).CashBalance.Equal(decimal.RequireFromString("30.10")))

	rec = s.do(http.MethodDelete, "/api/accounts/"+account.Id, "owner-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/accounts", "owner-1", nil)
	assert.Empty(t, decode[[]models.Account](t, rec))
}

func TestImportAndTemplate(t *testing.T) {
	s := setupServer(t)
	token, err := IssueToken(testSecret, "owner-1", nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/import/accounts/template", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, api.ImportTemplate(), rec.Body.String())

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("csvFile", "contas.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("nome,casa_de_aposta,saldo\nConta A,Bet365,75.5\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/import/accounts", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[models.ImportResult](t, rec).Created)

	req = httptest.NewRequest(http.MethodPost, "/api/import/accounts", strings.NewReader("nome,saldo\nConta A,80\n"))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[models.ImportResult](t, rec).Updated)
}

func TestBackupAndRestore(t *testing.T) {
	s := setupServer(t)
	s.createAccount("owner-1", "A", "100")

	rec := s.do(http.MethodGet, "/api/backup", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "backup_")
	backup := decode[models.Backup](t, rec)
	require.Len(t, backup.Accounts, 1)

	rec = s.do(http.MethodPost, "/api/restore", "owner-2", backup)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/accounts", "owner-2", nil)
	accounts := decode[[]models.Account](t, rec)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].CashBalance.Equal(decimal.NewFromInt(100)))
}
