package bybitclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bybitScalpBot/internal/domain"
	"bybitScalpBot/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		APIKey:    "test-key",
		APISecret: "test-secret",
		Logger:    nopLogger{},
		BaseURL:   srv.URL,
	})
	require.NoError(t, err)
	return c, srv
}

func TestSign(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	payload := "accountType=UNIFIED&coin=USDT"
	got := c.sign("1700000000000", payload)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte("1700000000000" + "test-key" + recvWindow + payload))
	want := hex.EncodeToString(mac.Sum(nil))
	assert.Equal(t, want, got)
}

func TestGetWalletBalanceSignsRequest(t *testing.T) {
	var gotHeaders http.Header
	var gotQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[{"coin":[{"coin":"USDT","walletBalance":"1234.56"}]}]}}`))
	})

	c, _ := newTestClient(t, handler)
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }

	balance, err := c.GetWalletBalance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.Equal(t, 1234.56, balance)

	assert.Equal(t, "test-key", gotHeaders.Get("X-BAPI-API-KEY"))
	assert.Equal(t, "1700000000000", gotHeaders.Get("X-BAPI-TIMESTAMP"))
	assert.Equal(t, recvWindow, gotHeaders.Get("X-BAPI-RECV-WINDOW"))
	// Signature covers the sorted query string exactly as sent.
	assert.Equal(t, c.sign("1700000000000", gotQuery), gotHeaders.Get("X-BAPI-SIGN"))
}

func TestGetKlinesSortsAscending(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Venue order: newest first.
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[
			["1700000120000","103","104","102","103.5","7"],
			["1700000060000","102","103","101","102.5","6"],
			["1700000000000","101","102","100","101.5","5"]
		]}}`))
	})

	c, _ := newTestClient(t, handler)
	klines, err := c.GetKlines(context.Background(), "ETHUSDT", "1", 3)
	require.NoError(t, err)
	require.Len(t, klines, 3)
	assert.True(t, klines[0].OpenTime.Before(klines[1].OpenTime))
	assert.True(t, klines[1].OpenTime.Before(klines[2].OpenTime))
	assert.Equal(t, 101.5, klines[0].Close)
	assert.Equal(t, 103.5, klines[2].Close)
}

func TestVenueRejectionMapped(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":110007,"retMsg":"ab not enough for new order","result":{}}`))
	})

	c, _ := newTestClient(t, handler)
	_, err := c.PlaceOrder(context.Background(), &domain.OrderRequest{
		Symbol: "ETHUSDT", Side: domain.Buy, Qty: 1, OrderType: "Market", TimeInForce: "IOC",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "110007")
}

func TestAuthErrorMapped(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":10004,"retMsg":"error sign","result":{}}`))
	})

	c, _ := newTestClient(t, handler)
	_, err := c.GetPosition(context.Background(), "ETHUSDT")
	assert.ErrorIs(t, err, ports.ErrAuthenticationFailed)
}

func TestGetPositionFlat(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"ETHUSDT","side":"","size":"0","avgPrice":"0","markPrice":"2000","leverage":"10","unrealisedPnl":"0"}]}}`))
	})

	c, _ := newTestClient(t, handler)
	pos, err := c.GetPosition(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Nil(t, pos)
}

func TestTransportErrorMapped(t *testing.T) {
	c, srv := newTestClient(t, http.NotFoundHandler())
	srv.Close()

	_, err := c.GetKlines(context.Background(), "ETHUSDT", "1", 10)
	assert.ErrorIs(t, err, ports.ErrTransport)
}
