// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/finsightlabs/finsight/internal/behavior"
	"github.com/finsightlabs/finsight/internal/config"
	"github.com/finsightlabs/finsight/internal/forecast"
	"github.com/finsightlabs/finsight/internal/health"
	"github.com/finsightlabs/finsight/internal/ledger"
	"github.com/finsightlabs/finsight/internal/logging"
	"github.com/finsightlabs/finsight/internal/metrics"
	"github.com/finsightlabs/finsight/internal/query"
	"github.com/finsightlabs/finsight/internal/ratelimit"
	"github.com/finsightlabs/finsight/internal/realtime"
	"github.com/finsightlabs/finsight/internal/risk"
	"github.com/finsightlabs/finsight/internal/security"
	"github.com/finsightlabs/finsight/internal/textgen"
	"github.com/finsightlabs/finsight/internal/validation"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg          *config.Config
	reader       ledger.Reader
	forecasts    *forecast.Service
	risks        *risk.Service
	behaviors    *behavior.Service
	queries      *query.Router
	queryStore   query.Store
	realtimeHub  *realtime.Hub
	rateLimiter  *ratelimit.Limiter
	checks       *health.Registry
	db           *sql.DB // nil if using in-memory
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	cancelRunCtx context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithReader sets a custom ledger reader (for testing)
func WithReader(r ledger.Reader) Option {
	return func(s *Server) {
		s.reader = r
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	// Apply options first (may set reader/logger)
	for _, opt := range opts {
		opt(s)
	}

	// Context for initialization
	ctx := context.Background()

	var (
		forecastStore forecast.Store
		riskStore     risk.Store
		behaviorStore behavior.Store
	)

	// Initialize storage (Postgres if DATABASE_URL set, otherwise in-memory)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		// Test connection
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))

		if s.reader == nil {
			ledgerStore := ledger.NewPostgresStore(db)
			if err := ledgerStore.Migrate(ctx); err != nil {
				s.logger.Warn("failed to migrate ledger store", "error", err)
			}
			s.reader = ledgerStore
		}

		fs := forecast.NewPostgresStore(db)
		if err := fs.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate forecast store", "error", err)
		}
		forecastStore = fs

		rs := risk.NewPostgresStore(db)
		if err := rs.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate risk store", "error", err)
		}
		riskStore = rs

		bs := behavior.NewPostgresStore(db)
		if err := bs.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate behavior store", "error", err)
		}
		behaviorStore = bs

		qs := query.NewPostgresStore(db)
		if err := qs.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate query store", "error", err)
		}
		s.queryStore = qs
	} else {
		s.logger.Info("using in-memory storage (data will not persist)")

		if s.reader == nil {
			store := ledger.NewMemoryStore()
			if cfg.IsDevelopment() {
				seedDemoData(store)
				s.logger.Info("demo ledger seeded", "tenant", DemoTenant)
			}
			s.reader = store
		}

		forecastStore = forecast.NewMemoryStore()
		riskStore = risk.NewMemoryStore()
		behaviorStore = behavior.NewMemoryStore()
		s.queryStore = query.NewMemoryStore()
	}

	// Create realtime hub for WebSocket streaming
	s.realtimeHub = realtime.NewHub(s.logger)
	s.logger.Info("realtime streaming enabled")

	// Forecast service
	s.forecasts = forecast.NewService(s.reader,
		forecast.WithStore(forecastStore),
		forecast.WithNotifier(&forecastEventEmitter{s.realtimeHub}),
		forecast.WithDefaultTrials(cfg.MonteCarloTrials),
		forecast.WithLogger(s.logger),
	)

	// Risk service; narratives are generated only when an API key is configured
	riskOpts := []risk.Option{
		risk.WithStore(riskStore),
		risk.WithNotifier(&riskEventEmitter{s.realtimeHub}),
		risk.WithLogger(s.logger),
	}
	if cfg.AnthropicAPIKey != "" {
		narrator := textgen.NewClient(cfg.AnthropicAPIKey,
			textgen.WithModel(cfg.TextGenModel),
			textgen.WithTimeout(cfg.TextGenTimeout),
		)
		// Breaker keeps a degraded model API from slowing every assessment
		riskOpts = append(riskOpts, risk.WithNarrator(textgen.NewGuarded(narrator, 5, 30*time.Second)))
		s.logger.Info("risk narratives enabled", "model", cfg.TextGenModel)
	} else {
		s.logger.Info("risk narratives disabled (no ANTHROPIC_API_KEY set)")
	}
	s.risks = risk.NewService(s.reader, riskOpts...)

	// Behavior scoring service
	s.behaviors = behavior.NewService(s.reader,
		behavior.WithStore(behaviorStore),
		behavior.WithLogger(s.logger),
	)

	// Natural language query router
	s.queries = query.NewRouter(s.reader, s.forecasts, s.risks,
		query.WithStore(s.queryStore),
		query.WithLogger(s.logger),
	)

	// Subsystem health checks
	s.checks = health.NewRegistry()
	if s.db != nil {
		db := s.db
		s.checks.Register("database", func(ctx context.Context) health.Status {
			if err := db.PingContext(ctx); err != nil {
				return health.Status{Name: "database", Healthy: false, Detail: err.Error()}
			}
			return health.Status{Name: "database", Healthy: true}
		})
	} else {
		s.checks.Register("database", func(ctx context.Context) health.Status {
			return health.Status{Name: "database", Healthy: true, Detail: "in-memory"}
		})
	}

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (allow all origins for demo - restrict in production)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	s.rateLimiter = ratelimit.New(ratelimit.DefaultConfig())
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		// Add to context
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		// Set response header
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// tenantContextMiddleware propagates the :tenant route param into the
// request context so log lines carry it. Runs after routing, so the
// param is populated.
func (s *Server) tenantContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenant := c.Param("tenant"); tenant != "" {
			ctx := logging.WithTenantID(c.Request.Context(), tenant)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// WebSocket for real-time streaming
	s.router.GET("/ws", func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request)
	})

	// API info
	s.router.GET("/api", s.infoHandler)

	// V1 API group
	v1 := s.router.Group("/v1")
	v1.Use(validation.TenantParamMiddleware())
	v1.Use(s.tenantContextMiddleware())

	forecast.NewHandler(s.forecasts).RegisterRoutes(v1)
	risk.NewHandler(s.risks).RegisterRoutes(v1)
	behavior.NewHandler(s.behaviors).RegisterRoutes(v1)
	query.NewHandler(s.queries, s.queryStore).RegisterRoutes(v1)

	// Realtime hub stats (handy for dashboards and debugging)
	v1.GET("/realtime/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.realtimeHub.Stats())
	})
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// HealthResponse for health check endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	healthy, statuses := s.checks.CheckAll(ctx)

	checks := make(map[string]string, len(statuses))
	for _, st := range statuses {
		switch {
		case !st.Healthy:
			checks[st.Name] = "unhealthy"
		case st.Detail != "":
			checks[st.Name] = st.Detail
		default:
			checks[st.Name] = "healthy"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   "0.1.0",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "FinSight",
		"description": "Predictive financial analytics and risk engine",
		"version":     "0.1.0",
		"endpoints": gin.H{
			"forecasts": "/v1/tenants/{tenant}/forecasts",
			"risks":     "/v1/tenants/{tenant}/risks",
			"behavior":  "/v1/tenants/{tenant}/behavior",
			"query":     "POST /v1/tenants/{tenant}/query",
			"websocket": "/ws",
		},
	})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server with graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server", "port", s.cfg.Port, "env", s.cfg.Env)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	go s.realtimeHub.Run(runCtx)

	// Export connection pool gauges
	if s.db != nil {
		metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for all background goroutines (hub, collectors)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	// Close database connection pool
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

// -----------------------------------------------------------------------------
// Realtime Adapters
// -----------------------------------------------------------------------------

// forecastEventEmitter adapts realtime.Hub to forecast.Notifier
type forecastEventEmitter struct {
	hub *realtime.Hub
}

func (e *forecastEventEmitter) ForecastCreated(f *forecast.Forecast) {
	if e.hub != nil {
		e.hub.BroadcastForecast(f.TenantID, f)
	}
}

// riskEventEmitter adapts realtime.Hub to risk.Notifier
type riskEventEmitter struct {
	hub *realtime.Hub
}

func (e *riskEventEmitter) RiskAssessed(a *risk.Assessment) {
	if e.hub != nil {
		e.hub.BroadcastRiskAlert(a.TenantID, a.RiskScore, a)
	}
}
