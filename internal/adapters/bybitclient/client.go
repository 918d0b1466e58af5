// Package bybitclient implements ports.ExchangeClient against the Bybit v5
// linear-perpetuals REST API.
package bybitclient

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bybitScalpBot/internal/domain"
	"bybitScalpBot/internal/ports"
)

const (
	baseURLProduction = "https://api.bybit.com"
	baseURLTestnet    = "https://api-testnet.bybit.com"

	category   = "linear"
	recvWindow = "5000"

	defaultTimeout = 10 * time.Second
)

// Client implements the ports.ExchangeClient interface against Bybit v5.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	logger     ports.Logger
	now        func() time.Time
}

// Config holds configuration specific to the Bybit client adapter.
type Config struct {
	APIKey     string
	APISecret  string
	UseTestnet bool
	Logger     ports.Logger
	Timeout    time.Duration // Per-request timeout; defaults to 10s
	BaseURL    string        // Override for tests; normally derived from UseTestnet
}

// New creates a new Bybit client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Bybit client")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("API key and secret are required: %w", ports.ErrConfigurationError)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = baseURLProduction
		if cfg.UseTestnet {
			baseURL = baseURLTestnet
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg.Logger.Info(context.Background(), "Bybit client configured", map[string]interface{}{
		"baseURL": baseURL,
		"timeout": timeout.String(),
	})

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
		now:        time.Now,
	}, nil
}

// sign computes the HMAC-SHA256 hex signature over
// timestamp ‖ apiKey ‖ recvWindow ‖ payload, where payload is the sorted
// query string for GET requests and the exact JSON body string for POST.
func (c *Client) sign(timestamp, payload string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(timestamp + c.apiKey + recvWindow + payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// apiResponse is the Bybit v5 envelope common to all endpoints.
type apiResponse struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

// mapRetCode translates Bybit return codes into standardized ports errors.
func mapRetCode(code int, msg string) error {
	var mapped error
	switch code {
	case 10003, 10004, 10005, 33004: // invalid key, signature error, permission, key expired
		mapped = ports.ErrAuthenticationFailed
	case 10001: // request parameter error
		mapped = ports.ErrInvalidRequest
	case 110007, 110012, 110044, 110045: // balance / margin insufficient
		mapped = ports.ErrInsufficientFunds
	default:
		mapped = ports.ErrVenueRejected
	}
	return fmt.Errorf("venue returned retCode=%d retMsg=%q: %w", code, msg, mapped)
}

// mapTransportError classifies request-level failures.
func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%v: %w", err, ports.ErrContextCanceled)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, ports.ErrTimeout)
	}
	return fmt.Errorf("%v: %w", err, ports.ErrTransport)
}

// get performs a GET request. Private endpoints are signed over the encoded
// query string; url.Values.Encode sorts keys, which matches the venue's
// canonical form.
func (c *Client) get(ctx context.Context, path string, params url.Values, private bool, out interface{}) error {
	query := params.Encode()
	endpoint := c.baseURL + path
	if query != "" {
		endpoint += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return mapTransportError(err)
	}
	if private {
		c.setAuthHeaders(req, query)
	}
	return c.do(req, out)
}

// post performs a signed POST with a JSON body. The signature covers the
// exact bytes sent on the wire.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return mapTransportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req, string(raw))
	return c.do(req, out)
}

func (c *Client) setAuthHeaders(req *http.Request, payload string) {
	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	req.Header.Set("X-BAPI-API-KEY", c.apiKey)
	req.Header.Set("X-BAPI-SIGN", c.sign(timestamp, payload))
	req.Header.Set("X-BAPI-SIGN-TYPE", "2")
	req.Header.Set("X-BAPI-TIMESTAMP", timestamp)
	req.Header.Set("X-BAPI-RECV-WINDOW", recvWindow)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return mapTransportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status %d: %s: %w", resp.StatusCode, string(raw), ports.ErrTransport)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decoding venue response: %v: %w", err, ports.ErrTransport)
	}
	if envelope.RetCode != 0 {
		return mapRetCode(envelope.RetCode, envelope.RetMsg)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decoding venue result: %v: %w", err, ports.ErrTransport)
		}
	}
	return nil
}

// GetInstrumentInfo retrieves the lot size and price filters for a symbol.
func (c *Client) GetInstrumentInfo(ctx context.Context, symbol string) (*domain.InstrumentMeta, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)

	var result struct {
		List []struct {
			LotSizeFilter struct {
				MinOrderQty string `json:"minOrderQty"`
				QtyStep     string `json:"qtyStep"`
			} `json:"lotSizeFilter"`
			PriceFilter struct {
				TickSize string `json:"tickSize"`
			} `json:"priceFilter"`
		} `json:"list"`
	}
	if err := c.get(ctx, "/v5/market/instruments-info", params, false, &result); err != nil {
		return nil, err
	}
	if len(result.List) == 0 {
		return nil, fmt.Errorf("no instrument info for %s: %w", symbol, ports.ErrInstrumentNotFound)
	}

	info := result.List[0]
	meta := &domain.InstrumentMeta{
		TickSize:    parseFloat(info.PriceFilter.TickSize),
		MinOrderQty: parseFloat(info.LotSizeFilter.MinOrderQty),
		QtyStep:     parseFloat(info.LotSizeFilter.QtyStep),
	}
	return meta, nil
}

// GetKlines retrieves up to limit candles, sorted ascending by open time.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	var result struct {
		List [][]string `json:"list"`
	}
	if err := c.get(ctx, "/v5/market/kline", params, false, &result); err != nil {
		return nil, err
	}

	klines := make([]*domain.Kline, 0, len(result.List))
	for _, row := range result.List {
		if len(row) < 6 {
			continue
		}
		ms, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		klines = append(klines, &domain.Kline{
			OpenTime: time.UnixMilli(ms),
			Open:     parseFloat(row[1]),
			High:     parseFloat(row[2]),
			Low:      parseFloat(row[3]),
			Close:    parseFloat(row[4]),
			Volume:   parseFloat(row[5]),
		})
	}
	// The venue returns newest-first.
	sort.Slice(klines, func(i, j int) bool { return klines[i].OpenTime.Before(klines[j].OpenTime) })
	return klines, nil
}

// GetWalletBalance retrieves the wallet balance for coin on the unified account.
func (c *Client) GetWalletBalance(ctx context.Context, coin string) (float64, error) {
	params := url.Values{}
	params.Set("accountType", "UNIFIED")
	params.Set("coin", coin)

	var result struct {
		List []struct {
			Coin []struct {
				Coin          string `json:"coin"`
				WalletBalance string `json:"walletBalance"`
			} `json:"coin"`
		} `json:"list"`
	}
	if err := c.get(ctx, "/v5/account/wallet-balance", params, true, &result); err != nil {
		return 0, err
	}
	for _, account := range result.List {
		for _, entry := range account.Coin {
			if entry.Coin == coin {
				return parseFloat(entry.WalletBalance), nil
			}
		}
	}
	return 0, nil
}

// GetOrderBook retrieves a top-N depth snapshot.
func (c *Client) GetOrderBook(ctx context.Context, symbol string, depth int) (*domain.OrderBook, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(depth))

	var result struct {
		Symbol string     `json:"s"`
		Bids   [][]string `json:"b"`
		Asks   [][]string `json:"a"`
	}
	if err := c.get(ctx, "/v5/market/orderbook", params, false, &result); err != nil {
		return nil, err
	}

	book := &domain.OrderBook{Symbol: symbol}
	for _, lvl := range result.Bids {
		if len(lvl) >= 2 {
			book.Bids = append(book.Bids, domain.PriceLevel{Price: parseFloat(lvl[0]), Size: parseFloat(lvl[1])})
		}
	}
	for _, lvl := range result.Asks {
		if len(lvl) >= 2 {
			book.Asks = append(book.Asks, domain.PriceLevel{Price: parseFloat(lvl[0]), Size: parseFloat(lvl[1])})
		}
	}
	return book, nil
}

// GetPosition retrieves the current position snapshot for the symbol.
// Returns nil, nil when the venue reports no open position.
func (c *Client) GetPosition(ctx context.Context, symbol string) (*domain.Position, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)

	var result struct {
		List []struct {
			Symbol        string `json:"symbol"`
			Side          string `json:"side"`
			Size          string `json:"size"`
			AvgPrice      string `json:"avgPrice"`
			MarkPrice     string `json:"markPrice"`
			Leverage      string `json:"leverage"`
			UnrealisedPnl string `json:"unrealisedPnl"`
		} `json:"list"`
	}
	if err := c.get(ctx, "/v5/position/list", params, true, &result); err != nil {
		return nil, err
	}
	if len(result.List) == 0 {
		return nil, nil
	}

	raw := result.List[0]
	size := parseFloat(raw.Size)
	if size == 0 {
		return nil, nil
	}
	return &domain.Position{
		Symbol:        raw.Symbol,
		Side:          domain.Side(raw.Side),
		Size:          size,
		EntryPrice:    parseFloat(raw.AvgPrice),
		MarkPrice:     parseFloat(raw.MarkPrice),
		Leverage:      int(parseFloat(raw.Leverage)),
		UnrealizedPnL: parseFloat(raw.UnrealisedPnl),
	}, nil
}

// PlaceOrder submits an order. Not idempotent: the caller must not retry
// blindly on timeout.
func (c *Client) PlaceOrder(ctx context.Context, reqOrder *domain.OrderRequest) (*domain.OrderAck, error) {
	if reqOrder == nil || reqOrder.Symbol == "" || reqOrder.Qty <= 0 {
		return nil, fmt.Errorf("order request missing symbol or quantity: %w", ports.ErrInvalidRequest)
	}

	linkID := reqOrder.OrderLinkID
	if linkID == "" {
		linkID = uuid.NewString()
	}

	body := map[string]interface{}{
		"category":    category,
		"symbol":      reqOrder.Symbol,
		"side":        string(reqOrder.Side),
		"orderType":   reqOrder.OrderType,
		"qty":         formatFloat(reqOrder.Qty),
		"timeInForce": reqOrder.TimeInForce,
		"reduceOnly":  reqOrder.ReduceOnly,
		"orderLinkId": linkID,
	}
	if reqOrder.StopLoss > 0 {
		body["stopLoss"] = formatFloat(reqOrder.StopLoss)
	}
	if reqOrder.TakeProfit > 0 {
		body["takeProfit"] = formatFloat(reqOrder.TakeProfit)
	}

	var result struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
	}
	if err := c.post(ctx, "/v5/order/create", body, &result); err != nil {
		return nil, fmt.Errorf("placing %s %s order: %w", reqOrder.Side, reqOrder.Symbol, err)
	}

	return &domain.OrderAck{
		OrderID:     result.OrderID,
		OrderLinkID: result.OrderLinkID,
		Symbol:      reqOrder.Symbol,
		Side:        reqOrder.Side,
		Qty:         reqOrder.Qty,
		CreatedAt:   c.now(),
	}, nil
}

// SetTradingStop updates the stop-loss on the open position for symbol.
func (c *Client) SetTradingStop(ctx context.Context, symbol string, stopLoss float64) error {
	body := map[string]interface{}{
		"category":    category,
		"symbol":      symbol,
		"stopLoss":    formatFloat(stopLoss),
		"positionIdx": 0,
	}
	return c.post(ctx, "/v5/position/trading-stop", body, nil)
}

// SetLeverage sets per-symbol leverage for both directions.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	body := map[string]interface{}{
		"category":     category,
		"symbol":       symbol,
		"buyLeverage":  strconv.Itoa(leverage),
		"sellLeverage": strconv.Itoa(leverage),
	}
	return c.post(ctx, "/v5/position/set-leverage", body, nil)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
