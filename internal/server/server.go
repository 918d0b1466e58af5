// Package server exposes the operator read API: trade log entries, the
// current position PnL, recent candles and Prometheus metrics. It is a
// read-only surface with no feedback into strategy state.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bybitScalpBot/internal/ports"
)

// Config holds the operator API settings.
type Config struct {
	Addr       string
	Symbol     string
	Interval   string
	KlineLimit int
}

// Server serves the operator endpoints.
type Server struct {
	cfg      Config
	logger   ports.Logger
	exchange ports.ExchangeClient
	recorder ports.TradeRecorder
	registry *prometheus.Registry

	httpServer *http.Server
}

// New creates the operator API server. registry may carry the engine
// counters; pass a fresh registry if none are needed.
func New(cfg Config, logger ports.Logger, exchange ports.ExchangeClient, recorder ports.TradeRecorder, registry *prometheus.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		exchange: exchange,
		recorder: recorder,
		registry: registry,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/logs", s.handleLogs)
	mux.HandleFunc("/api/pnl", s.handlePnL)
	mux.HandleFunc("/api/candles", s.handleCandles)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "operator API listening", map[string]interface{}{"addr": s.cfg.Addr})
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, r, s.recorder.Entries())
}

func (s *Server) handlePnL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = s.cfg.Symbol
	}

	pos, err := s.exchange.GetPosition(r.Context(), symbol)
	if err != nil {
		s.logger.Error(r.Context(), err, "pnl endpoint failed", map[string]interface{}{"symbol": symbol})
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"symbol": symbol,
		"open":   pos.IsOpen(),
	}
	if pos.IsOpen() {
		resp["side"] = pos.Side
		resp["size"] = pos.Size
		resp["entryPrice"] = pos.EntryPrice
		resp["markPrice"] = pos.MarkPrice
		resp["unrealizedPnl"] = pos.UnrealizedPnL
	}
	s.writeJSON(w, r, resp)
}

func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	symbol := q.Get("symbol")
	if symbol == "" {
		symbol = s.cfg.Symbol
	}
	interval := q.Get("interval")
	if interval == "" {
		interval = s.cfg.Interval
	}
	limit := s.cfg.KlineLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	klines, err := s.exchange.GetKlines(r.Context(), symbol, interval, limit)
	if err != nil {
		s.logger.Error(r.Context(), err, "candles endpoint failed", map[string]interface{}{"symbol": symbol})
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, r, klines)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), err, "failed to encode response")
	}
}
