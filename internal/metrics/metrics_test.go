package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Observe("place_operation", time.Now(), nil)
	m.Observe("place_operation", time.Now(), errors.New("boom"))
	m.Observe("place_operation", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("place_operation", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("place_operation", "error")))
}

func TestAddCredited_IgnoresNonPositive(t *testing.T) {
	m := New(nil)

	m.AddCredited(decimal.RequireFromString("12.5"))
	m.AddCredited(decimal.Zero)
	m.AddCredited(decimal.RequireFromString("-3"))

	assert.Equal(t, 12.5, testutil.ToFloat64(m.Credited))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SideEffect("kafka", nil)

	healthy := Handler(reg, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "bet_ledger_events_published_total"))

	rec = httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	sick := Handler(reg, func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	sick.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}
