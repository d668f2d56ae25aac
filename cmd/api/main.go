package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/invoice-generator/internal/common"
	"github.com/noah-isme/invoice-generator/internal/config"
	"github.com/noah-isme/invoice-generator/internal/editor"
	"github.com/noah-isme/invoice-generator/internal/health"
	"github.com/noah-isme/invoice-generator/internal/lock"
	"github.com/noah-isme/invoice-generator/internal/obs"
	"github.com/noah-isme/invoice-generator/internal/ratelimit"
	"github.com/noah-isme/invoice-generator/internal/render"
	"github.com/noah-isme/invoice-generator/internal/resilience"
	"github.com/noah-isme/invoice-generator/internal/security"
	"github.com/noah-isme/invoice-generator/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsEnabled := cfg.Obs.MetricsEnabled
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)
	resilience.MustRegisterMetrics(cfg.Obs.MetricsNamespace, nil)

	tracingEnabled := cfg.Obs.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:    obs.ServiceName,
			ServiceVersion: cfg.AppVersion,
			Environment:    cfg.AppEnv,
			Exporter:       cfg.Obs.TracingExporter,
			Endpoint:       cfg.Obs.OTLPEndpoint,
			Headers:        obs.ParseHeaders(cfg.Obs.OTLPHeaders),
			SamplingRatio:  cfg.Obs.SamplingRatio,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	redisClient := connectRedis(cfg, logger, metricsEnabled)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
	}

	var (
		store       session.Store
		locker      lock.Locker
		exportLimit ratelimit.Limiter
	)
	if redisClient != nil {
		breaker := resilience.NewBreaker(cfg.Breaker.MinRequests, cfg.Breaker.FailureRatio, cfg.Breaker.OpenFor).
			WithTarget("session_store").
			WithLogger(logger)
		store = session.Guarded{Store: session.NewRedisStore(redisClient, cfg.SessionTTL), Breaker: breaker}
		locker = lock.Redis{R: redisClient, Prefix: "invoice:lock:"}
		exportLimit = ratelimit.SlidingWindow{Client: redisClient, Prefix: "invoice:ratelimit:export:"}
		logger.Info().Msg("using redis session store")
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL)
		locker = lock.NewLocal()
		exportLimit = ratelimit.NewMemoryLimiter("invoice:ratelimit:export")
		logger.Info().Msg("using in-memory session store")
	}

	editorHandler := &editor.Handler{
		Svc: &editor.Service{
			Store:   store,
			Locker:  locker,
			LockTTL: cfg.SessionLockTTL,
			Logger:  logger,
		},
		Pages:  render.MustHTML(),
		Logger: logger,
	}
	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	exportLimiter := ratelimit.Handler{
		Limiter: exportLimit,
		Config: ratelimit.Config{
			Key:    common.SessionOrIP,
			Window: cfg.ExportRateWindow,
			Max:    cfg.ExportRateLimit,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("export rate limiter unavailable")
		},
		OnLimit: func(*http.Request) {
			obs.ObserveExport(obs.ExportResultRateLimited, 0)
		},
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets)
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{
		Enable:     cfg.SecurityHeadersEnabled,
		EnableHSTS: cfg.CookieSecure,
		HSTSMaxAge: cfg.HSTSMaxAge,
	}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.Obs.PprofEnabled {
		debug := chi.Router(r)
		if cfg.Obs.PprofUser != "" {
			debug = r.With(middleware.BasicAuth("pprof", map[string]string{cfg.Obs.PprofUser: cfg.Obs.PprofPass}))
		}
		debug.Mount("/debug", middleware.Profiler())
	}

	healthHandler := health.Handler{
		Checker:      health.StoreChecker{Store: store},
		StoreTimeout: cfg.HealthStoreTimeout,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Group(func(app chi.Router) {
		app.Use(session.Middleware{
			Tokens: session.Tokens{Secret: []byte(cfg.SessionSecret), TTL: cfg.SessionTTL},
			Cookie: session.Cookie{
				Name:     cfg.SessionCookieName,
				Secure:   cfg.CookieSecure,
				SameSite: cfg.CookieSameSite,
			},
			Logger: logger,
		}.Handler)
		if cfg.CSRFEnabled {
			app.Use(security.CSRF{Secure: cfg.CookieSecure}.Middleware)
		}
		editorHandler.Routes(app, editor.Middlewares{
			Idempotency: idem.Middleware,
			ExportLimit: exportLimiter.Middleware,
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
		return
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

// connectRedis returns nil when no REDIS_URL is configured.
func connectRedis(cfg *config.Config, logger zerolog.Logger, metricsEnabled bool) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return client
}
