package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bybitScalpBot/internal/adapters/tradelog"
	"bybitScalpBot/internal/domain"
	"bybitScalpBot/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type fakeExchange struct {
	ports.ExchangeClient

	position  *domain.Position
	posErr    error
	klines    []*domain.Kline
	klinesErr error

	lastInterval string
	lastLimit    int
}

func (f *fakeExchange) GetPosition(ctx context.Context, symbol string) (*domain.Position, error) {
	return f.position, f.posErr
}

func (f *fakeExchange) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	f.lastInterval = interval
	f.lastLimit = limit
	return f.klines, f.klinesErr
}

func newTestServer(ex *fakeExchange, rec ports.TradeRecorder) *Server {
	return New(Config{Addr: ":0", Symbol: "BTCUSDT", Interval: "1", KlineLimit: 50}, nopLogger{}, ex, rec, prometheus.NewRegistry())
}

func TestHandleLogs(t *testing.T) {
	rec := tradelog.NewMemoryRecorder(10)
	rec.Record("entry order placed", map[string]interface{}{"symbol": "BTCUSDT"})
	srv := newTestServer(&fakeExchange{}, rec)

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var entries []ports.TradeLogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "entry order placed", entries[0].Message)
}

func TestHandlePnL_OpenPosition(t *testing.T) {
	ex := &fakeExchange{position: &domain.Position{
		Symbol: "BTCUSDT", Side: domain.Buy, Size: 0.5,
		EntryPrice: 100, MarkPrice: 102, UnrealizedPnL: 1.0,
	}}
	srv := newTestServer(ex, tradelog.NewMemoryRecorder(10))

	req := httptest.NewRequest(http.MethodGet, "/api/pnl?symbol=BTCUSDT", nil)
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["open"])
	assert.Equal(t, 1.0, resp["unrealizedPnl"])
}

func TestHandlePnL_FlatPosition(t *testing.T) {
	srv := newTestServer(&fakeExchange{}, tradelog.NewMemoryRecorder(10))

	req := httptest.NewRequest(http.MethodGet, "/api/pnl", nil)
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["open"])
	assert.NotContains(t, resp, "unrealizedPnl")
}

func TestHandlePnL_VenueErrorIs500(t *testing.T) {
	srv := newTestServer(&fakeExchange{posErr: ports.ErrTransport}, tradelog.NewMemoryRecorder(10))

	req := httptest.NewRequest(http.MethodGet, "/api/pnl", nil)
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "transport failure")
}

func TestHandleCandles(t *testing.T) {
	ex := &fakeExchange{klines: []*domain.Kline{
		{Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 12},
	}}
	srv := newTestServer(ex, tradelog.NewMemoryRecorder(10))

	req := httptest.NewRequest(http.MethodGet, "/api/candles", nil)
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var klines []*domain.Kline
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &klines))
	require.Len(t, klines, 1)
	assert.Equal(t, 100.5, klines[0].Close)
}

func TestHandleCandles_QueryOverrides(t *testing.T) {
	ex := &fakeExchange{}
	srv := newTestServer(ex, tradelog.NewMemoryRecorder(10))

	req := httptest.NewRequest(http.MethodGet, "/api/candles?interval=5&limit=120", nil)
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", ex.lastInterval)
	assert.Equal(t, 120, ex.lastLimit)
}

func TestHandleCandles_BadLimit(t *testing.T) {
	srv := newTestServer(&fakeExchange{}, tradelog.NewMemoryRecorder(10))

	req := httptest.NewRequest(http.MethodGet, "/api/candles?limit=zero", nil)
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeExchange{}, tradelog.NewMemoryRecorder(10))

	req := httptest.NewRequest(http.MethodPost, "/api/logs", nil)
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
