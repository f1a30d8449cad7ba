// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// authentication, permission gates, CORS, security headers, idempotency, and
// rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Every entity route gated by its schema's permission
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/courtdesk-backend/internal/analytics"
	"github.com/tbourn/courtdesk-backend/internal/auth"
	"github.com/tbourn/courtdesk-backend/internal/cache"
	"github.com/tbourn/courtdesk-backend/internal/config"
	"github.com/tbourn/courtdesk-backend/internal/domain"
	"github.com/tbourn/courtdesk-backend/internal/entities"
	"github.com/tbourn/courtdesk-backend/internal/http/handlers"
	"github.com/tbourn/courtdesk-backend/internal/http/middleware"
	"github.com/tbourn/courtdesk-backend/internal/notify"
	"github.com/tbourn/courtdesk-backend/internal/observability"
	"github.com/tbourn/courtdesk-backend/internal/permission"
	"github.com/tbourn/courtdesk-backend/internal/repo"
	"github.com/tbourn/courtdesk-backend/internal/resource"
	"github.com/tbourn/courtdesk-backend/internal/services"
)

// userRepoShim adapts the repository free functions to services.UserRepo.
type userRepoShim struct{}

// CreateUser proxies repo.CreateUser.
func (userRepoShim) CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return repo.CreateUser(ctx, db, u)
}

// GetUserByEmail proxies repo.GetUserByEmail.
func (userRepoShim) GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, db, email)
}

// GetUser proxies repo.GetUser.
func (userRepoShim) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

// CreateSession proxies repo.CreateSession.
func (userRepoShim) CreateSession(ctx context.Context, db *gorm.DB, jti, userID string, expiresAt time.Time) error {
	return repo.CreateSession(ctx, db, jti, userID, expiresAt)
}

// GetSession proxies repo.GetSession.
func (userRepoShim) GetSession(ctx context.Context, db *gorm.DB, jti string) (*domain.Session, error) {
	return repo.GetSession(ctx, db, jti)
}

// RevokeSession proxies repo.RevokeSession.
func (userRepoShim) RevokeSession(ctx context.Context, db *gorm.DB, jti string, at time.Time) error {
	return repo.RevokeSession(ctx, db, jti, at)
}

// InsertAccessLog proxies repo.InsertAccessLog.
func (userRepoShim) InsertAccessLog(ctx context.Context, db *gorm.DB, ev *domain.AccessLog) error {
	return repo.InsertAccessLog(ctx, db, ev)
}

func (userRepoShim) IsDuplicate(err error) bool { return repo.IsDuplicate(err) }
func (userRepoShim) IsNotFound(err error) bool  { return repo.IsNotFound(err) }

// permRepoShim adapts the repository free functions to services.PermissionRepo.
type permRepoShim struct{}

func (permRepoShim) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

func (permRepoShim) RolePermissions(ctx context.Context, db *gorm.DB, role string) ([]string, error) {
	return repo.RolePermissions(ctx, db, role)
}

func (permRepoShim) IsNotFound(err error) bool { return repo.IsNotFound(err) }

// idemShim adapts the idempotency repository to handlers.IdempotencyStore.
type idemShim struct{ db *gorm.DB }

func (s idemShim) Get(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, s.db, userID, scope, key, now)
}

func (s idemShim) Create(ctx context.Context, userID, scope, key, recordID string, status int, ttl time.Duration) error {
	_, err := repo.CreateIdempotency(ctx, s.db, userID, scope, key, recordID, status, ttl)
	return err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), authentication,
// idempotency and rate limiting, CORS and security headers, health and
// metrics endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip
//  6. Metrics
//  7. Authenticate: attach the bearer identity (optional here)
//  8. Idempotency validator (needs the user; before the rate limiter)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// Dependency injection: services ← repo/db
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	authSvc := services.NewAuthService(db, userRepoShim{}, tokens)
	if cfg.Auth.PasswordHashCost > 0 {
		authSvc.HashCost = cfg.Auth.PasswordHashCost
	}
	if cfg.Auth.MinPasswordLen > 0 {
		authSvc.MinPasswordLen = cfg.Auth.MinPasswordLen
	}
	permSvc := &services.PermissionService{DB: db, Repo: permRepoShim{}}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		MaskHeaders: []string{cfg.Auth.LocationHeader},
		BasePath:    cfg.APIBasePath,
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Bearer authentication
	r.Use(middleware.Authenticate(authSvc))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope:  entityScope(cfg.APIBasePath),
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			return rec != nil, err
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}
	if cfg.Auth.LocationHeader != "" {
		allowHeaders = append(allowHeaders, cfg.Auth.LocationHeader)
	}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		NoStorePrefixes: []string{cfg.APIBasePath + "/auth", cfg.APIBasePath + "/me"},
		EnablePolicy:    true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api/v1"

	// Auth
	authH := handlers.NewAuthHandlers(authSvc, cfg.Auth.LocationHeader)
	signinRL := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	api.POST("/auth/signup", authH.SignUp)
	api.POST("/auth/signin", signinRL.Handler(), authH.SignIn)

	protected := api.Group("", middleware.RequireAuth())
	protected.POST("/auth/signout", authH.SignOut)
	protected.GET("/auth/me", authH.Me)

	// Permissions
	permH := handlers.NewPermissionHandlers(permSvc)
	protected.GET("/me/permissions", permH.Mine)
	protected.POST("/me/permissions/check", permH.Check)

	// Entities
	store := observability.TraceStore(repo.NewStore(db), nil)
	hooks := entities.NewHooks(store, authSvc, cache.New(cfg.CacheTTL),
		resource.WithObserver(resource.PrometheusObserver{}))
	opts := handlers.ResourceOptions{
		Stats:          repo.StatsFunc(db),
		Idempotency:    idemShim{db: db},
		IdempotencyTTL: cfg.IdempotencyTTL,
		Notifier:       notify.LogNotifier{},
	}
	mountResource(protected, handlers.NewResource(hooks.Cases, opts), permSvc)
	mountResource(protected, handlers.NewResource(hooks.Filings, opts), permSvc)
	mountResource(protected, handlers.NewResource(hooks.Dispatches, opts), permSvc)
	mountResource(protected, handlers.NewResource(hooks.DispatchCompliances, opts), permSvc)
	mountResource(protected, handlers.NewResource(hooks.Fines, opts), permSvc)
	mountResource(protected, handlers.NewResource(hooks.FineReductions, opts), permSvc)
	mountResource(protected, handlers.NewResource(hooks.CaseRoutings, opts), permSvc)
	mountResource(protected, handlers.NewResource(hooks.Hearings, opts), permSvc)

	// Analytics
	analyticsH := handlers.NewAnalyticsHandlers(analytics.NewService(store, cfg.Location()))
	stats := protected.Group("/analytics/access",
		middleware.RequirePermission(permSvc, permission.Requirement{Any: []string{entities.PermAnalyticsRead}}))
	{
		stats.GET("/hourly", analyticsH.Hourly)
		stats.GET("/daily", analyticsH.Daily)
		stats.GET("/locations", analyticsH.Locations)
	}
}

// mountResource registers the CRUD routes of one entity, each gated by the
// schema's read, write, or delete permission.
func mountResource[T any, PT resource.Record[T]](g *gin.RouterGroup, h *handlers.Resource[T, PT], loader permission.Loader) {
	s := h.Schema()
	need := func(perm string) gin.HandlerFunc {
		return middleware.RequirePermission(loader, permission.Requirement{Any: []string{perm}})
	}
	e := g.Group("/" + s.Name)
	e.GET("", need(s.ReadPermission), h.List)
	e.GET("/:id", need(s.ReadPermission), h.Get)
	e.POST("", need(s.WritePermission), h.Create)
	e.PATCH("/:id", need(s.WritePermission), h.Update)
	e.DELETE("/:id", need(s.DeletePermission), h.Delete)
}

// entityScope keys idempotency records by entity name: the first path
// segment of the matched route below base.
func entityScope(base string) func(*gin.Context) string {
	base = strings.TrimRight(base, "/")
	return func(c *gin.Context) string {
		p := strings.TrimPrefix(c.FullPath(), base)
		p = strings.TrimPrefix(p, "/")
		if i := strings.IndexByte(p, '/'); i >= 0 {
			p = p[:i]
		}
		return p
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
