package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"dexroute/core"
	"dexroute/native/governance"
	"dexroute/native/router"
	"dexroute/storage"
)

const maxRequestBytes = 1 << 20 // 1 MiB

// ServerConfig carries the transport knobs the server honours.
type ServerConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
	// AuthWindow bounds how far a signed request's timestamp may drift from
	// server time before the signature is rejected as stale.
	AuthWindow time.Duration
}

// Server exposes the route call and the governance surface over HTTP.
type Server struct {
	node    *core.Node
	logger  *slog.Logger
	limiter *rate.Limiter
	window  time.Duration
	nowFn   func() time.Time
}

// NewServer constructs the HTTP server facade around a node.
func NewServer(node *core.Node, logger *slog.Logger, cfg ServerConfig) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	perSecond := cfg.RateLimitPerSecond
	if perSecond <= 0 {
		perSecond = 25
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 2 * perSecond
	}
	window := cfg.AuthWindow
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &Server{
		node:    node,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		window:  window,
		nowFn:   time.Now,
	}
}

// Handler builds the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.throttle)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/routes", s.handleExecuteRoute)
		r.Get("/receipts", s.handleListReceipts)
		r.Get("/receipts/{id}", s.handleGetReceipt)
		r.Get("/accounts/{address}", s.handleGetAccount)

		r.Route("/governance", func(r chi.Router) {
			r.Get("/", s.handleGetGovernance)
			r.Post("/init", s.handleGovernanceInit)
			r.Post("/fee", s.handleGovernanceSetFee)
			r.Post("/fee-destination", s.handleGovernanceSetFeeDestination)
			r.Post("/pause", s.handleGovernancePause)
			r.Post("/unpause", s.handleGovernanceUnpause)
		})
	})

	return otelhttp.NewHandler(r, "dexroute.rpc")
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting HTTP server", "addr", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]errorBody{"error": {Code: code, Message: message}})
}

func writeResult(w http.ResponseWriter, status int, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}

// writeRouteError maps the execution error taxonomy onto HTTP statuses.
func writeRouteError(w http.ResponseWriter, err error) {
	kind := router.Kind(err)
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, router.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, router.ErrPaused):
		status = http.StatusServiceUnavailable
	case errors.Is(err, router.ErrSpendExceeded), errors.Is(err, router.ErrSlippageExceeded):
		status = http.StatusConflict
	case kind == "internal":
		status = http.StatusInternalServerError
	}
	writeError(w, status, kind, err.Error())
}

func writeGovernanceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, governance.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, governance.ErrAlreadyInitialized):
		writeError(w, http.StatusConflict, "already_initialized", err.Error())
	case errors.Is(err, governance.ErrNotInitialized):
		writeError(w, http.StatusNotFound, "not_initialized", err.Error())
	case errors.Is(err, governance.ErrInvalidFeeBps), errors.Is(err, governance.ErrInvalidFeeDestination):
		writeError(w, http.StatusBadRequest, "invalid_params", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

const defaultReceiptLimit = 100

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	limit := defaultReceiptLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_params", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	receipts, err := s.node.Receipts(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	results := make([]receiptResult, 0, len(receipts))
	for _, receipt := range receipts {
		results = append(results, receiptResponse(receipt))
	}
	writeResult(w, http.StatusOK, map[string][]receiptResult{"receipts": results})
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	receipt, err := s.node.Receipt(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "receipt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeResult(w, http.StatusOK, receiptResponse(receipt))
}
