package http

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"triplog/internal/cache"
	"triplog/internal/log"
	"triplog/internal/services"
)

const (
	insightsCacheSize = 100
	insightsCacheTTL  = 5 * time.Minute
	sweepInterval     = 5 * time.Minute
)

// Options wires the server to the ledger. Ready is optional and backs /readyz.
type Options struct {
	Ledger      *services.LedgerService
	Ready       func(context.Context) error
	SavingsRate *decimal.Decimal // nil uses the report default
	RateLimit   int
	Logger      *log.Logger
	Clock       func() time.Time
}

type Server struct {
	http.Server
	ledger      *services.LedgerService
	ready       func(context.Context) error
	savingsRate *decimal.Decimal
	now         func() time.Time

	limiter  *rateLimiter
	metrics  *securityMetrics
	insights *cache.LRUCache[insightsResponse]
	caches   *cache.Manager

	logger *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.FromSettings(log.ComponentHTTP, "info", "json")
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:      opts.Ledger,
		ready:       opts.Ready,
		savingsRate: opts.SavingsRate,
		now:         opts.Clock,
		limiter:     newRateLimiter(opts.RateLimit, opts.Clock),
		metrics:     &securityMetrics{},
		insights:    cache.NewLRUCache(insightsCacheSize, insightsCacheTTL, cache.WithClock[insightsResponse](opts.Clock)),
		logger:      opts.Logger.WithComponent(log.ComponentHTTP),
	}
	s.caches = cache.NewManager(s.insights, s.limiter)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /voice/preview", s.handleVoicePreview)
	mux.HandleFunc("POST /voice", s.handleVoiceCapture)
	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /mileage", s.handleListMileage)
	mux.HandleFunc("POST /mileage", s.handleCreateMileage)
	mux.HandleFunc("DELETE /mileage/{id}", s.handleDeleteMileage)
	mux.HandleFunc("GET /insights", s.handleInsights)
	mux.HandleFunc("GET /reports/{kind}", s.handleReport)

	s.Handler = withRequestID(
		log.Middleware(s.logger)(
			log.RequestIDMiddleware(requestIDFromHeader)(
				s.withMiddleware(mux))))
	return s
}

// RunMaintenance sweeps expired insight entries and idle rate-limit
// clients until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context) error {
	return s.caches.Run(ctx, sweepInterval)
}

// withRequestID keeps a short client supplied X-Request-ID or assigns a new
// one, and echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = generateRequestID()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func requestIDFromHeader(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

// withMiddleware adds security headers, rate limiting on mutations and
// access logging. The request logger is already in the context.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		ctx := r.Context()
		logger := log.FromContext(ctx)

		setSecurityHeaders(w)

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request detected",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if isMutation(r.Method) && !s.limiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			writeJSON(rw, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
		} else {
			next.ServeHTTP(rw, r)
		}

		log.NewStructuredLogger(logger).LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

func isMutation(method string) bool {
	return method == http.MethodPost || method == http.MethodDelete
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
