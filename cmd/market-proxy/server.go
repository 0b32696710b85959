package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/coinwatch/market-client/pkg/cache"
	"github.com/coinwatch/market-client/pkg/coordinator"
	"github.com/coinwatch/market-client/pkg/marketdata"
)

// server wires the market-data facade into HTTP handlers. The optional
// Redis tier short-circuits handlers with already-serialized responses
// so that replicas behind a load balancer share fetched data.
type server struct {
	svc    *marketdata.Service
	redis  *cache.RedisStore
	logger zerolog.Logger
}

func newServer(svc *marketdata.Service, redisTier *cache.RedisStore, logger zerolog.Logger) *server {
	return &server{svc: svc, redis: redisTier, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/coins", s.handleCoins)
		r.Get("/coins/{id}/chart", s.handleChart)
		r.Get("/coins/{id}/ohlc", s.handleOHLC)
		r.Get("/quotes", s.handleQuotes)
		r.Get("/status", s.handleStatus)
		r.Delete("/cache", s.handleInvalidate)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCoins(w http.ResponseWriter, r *http.Request) {
	vs := currencyParam(r)
	page := intParam(r, "page", 1)

	key := marketdata.CoinsKey(vs, page)
	if s.serveFromRedis(w, r, key) {
		return
	}

	coins, err := s.svc.Coins(r.Context(), vs, page)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, r, key, marketdata.TTLCoinList, coins)
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vs := currencyParam(r)
	days := intParam(r, "days", 7)

	key := marketdata.ChartKey(id, vs, days)
	if s.serveFromRedis(w, r, key) {
		return
	}

	points, err := s.svc.Chart(r.Context(), id, vs, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, r, key, marketdata.TTLChart, points)
}

func (s *server) handleOHLC(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vs := currencyParam(r)
	days := intParam(r, "days", 7)

	key := marketdata.OHLCKey(id, vs, days)
	if s.serveFromRedis(w, r, key) {
		return
	}

	candles, err := s.svc.OHLC(r.Context(), id, vs, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, r, key, marketdata.TTLOHLC, candles)
}

func (s *server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	vs := currencyParam(r)
	ids := r.URL.Query()["id"]
	if len(ids) == 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one id parameter is required"})
		return
	}

	quotes, err := s.svc.Quotes(r.Context(), vs, ids)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// Quotes are too short-lived to share through Redis.
	s.writeJSON(w, http.StatusOK, quotes)
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.svc.CooldownStatus()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"cooldown_active":    st.Active,
		"cooldown_remaining": st.Remaining.Seconds(),
		"in_flight":          s.svc.InFlight(),
	})
}

func (s *server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	s.svc.InvalidateAll()
	if s.redis != nil {
		if err := s.redis.Clear(r.Context()); err != nil {
			s.logger.Error().Err(err).Msg("Failed to clear Redis tier")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// serveFromRedis writes a cached serialized response if the shared tier
// holds one. Returns false when the tier is disabled or misses.
func (s *server) serveFromRedis(w http.ResponseWriter, r *http.Request, key string) bool {
	if s.redis == nil {
		return false
	}
	body, err := s.redis.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Redis tier read failed")
		}
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
	return true
}

// respond serializes v once, stores it in the shared tier when enabled
// and writes it to the client.
func (s *server) respond(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.redis != nil {
		if err := s.redis.Set(r.Context(), key, body, ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Redis tier write failed")
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, coordinator.ErrThrottled):
		status = http.StatusTooManyRequests
		var te *coordinator.ThrottledError
		if errors.As(err, &te) {
			w.Header().Set("Retry-After", strconv.Itoa(int(te.RetryAfter.Seconds())+1))
		}
	case coordinator.IsRateLimit(err):
		status = http.StatusServiceUnavailable
	case errors.Is(err, coordinator.ErrResultMismatch):
		status = http.StatusInternalServerError
	}
	s.logger.Debug().Err(err).Int("status", status).Msg("Request failed")
	s.writeJSON(w, status, map[string]string{"error": marketdata.Describe(err)})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func currencyParam(r *http.Request) string {
	if vs := r.URL.Query().Get("vs"); vs != "" {
		return vs
	}
	return "usd"
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
