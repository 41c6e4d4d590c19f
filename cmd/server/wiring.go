package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"partnerdesk/internal/editsession"
	partnerservice "partnerdesk/internal/partner/service"
	partnerstore "partnerdesk/internal/partner/store"
	"partnerdesk/internal/platform/config"
	"partnerdesk/internal/platform/metrics"
	"partnerdesk/internal/platform/postgres"
	platformredis "partnerdesk/internal/platform/redis"
	"partnerdesk/internal/ratelimit"
	subscriberservice "partnerdesk/internal/subscriber/service"
	subscriberstore "partnerdesk/internal/subscriber/store"
	httptransport "partnerdesk/internal/transport/http"
	"partnerdesk/internal/vat"
	vatmetrics "partnerdesk/internal/vat/metrics"
	"partnerdesk/internal/vat/providers"
	"partnerdesk/internal/vat/providers/mf"
	"partnerdesk/internal/vat/providers/vies"
	vatstore "partnerdesk/internal/vat/store"
	"partnerdesk/pkg/platform/audit"
	auditmemory "partnerdesk/pkg/platform/audit/store/memory"
	auditpostgres "partnerdesk/pkg/platform/audit/store/postgres"
	"partnerdesk/pkg/platform/circuit"
	"partnerdesk/pkg/platform/tx"
)

// app holds the constructed services and the connections they share.
type app struct {
	db           *sql.DB
	redis        *platformredis.Client
	vat          *vat.Service
	partners     *partnerservice.Service
	subscribers  *subscriberservice.Service
	sessions     *editsession.Manager
	registry     *ratelimit.Middleware
	healthChecks map[string]httptransport.Check
	sweeps       []editsession.SweeperOption
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// buildApp selects PostgreSQL stores and the Redis cache when they are
// configured and falls back to in-memory implementations otherwise.
func buildApp(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{healthChecks: make(map[string]httptransport.Check)}
	appMetrics := metrics.New(reg)
	vatMetrics := vatmetrics.New(reg)

	var (
		partnerStore    partnerstore.Store
		historyStore    partnerstore.HistoryStore
		subscriberStore subscriberstore.Store
		auditStore      audit.Store
		runner          tx.Runner
	)
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		a.db = db
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				a.close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		partnerStore = partnerstore.NewPostgres(db)
		historyStore = partnerstore.NewPostgresHistory(db)
		subscriberStore = subscriberstore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		runner = tx.NewPostgresRunner(db)
		a.healthChecks["postgres"] = db.PingContext
	} else {
		log.Warn("database.url not set, partners are kept in memory")
		partnerStore = partnerstore.NewInMemoryStore()
		historyStore = partnerstore.NewInMemoryHistoryStore()
		subscriberStore = subscriberstore.NewInMemoryStore()
		auditStore = auditmemory.NewInMemoryStore()
		runner = &tx.MemoryRunner{}
	}

	var (
		cache        vat.ResultCache
		limiterStore ratelimit.Store
	)
	client, err := platformredis.Open(ctx, cfg.Redis)
	if err != nil {
		a.close()
		return nil, err
	}
	if client != nil {
		a.redis = client
		cache = vatstore.NewRedisCache(client.Client, cfg.VAT.CacheTTL, vatMetrics)
		limiterStore = ratelimit.NewRedisStore(client.Client)
		a.healthChecks["redis"] = client.Health
	} else {
		memoryCache := vatstore.NewInMemoryCache(cfg.VAT.CacheTTL, vatMetrics)
		a.sweeps = append(a.sweeps, editsession.WithPurge("vat_cache", memoryCache.Purge))
		cache = memoryCache
		limiterStore = ratelimit.NewInMemoryStore()
	}
	a.registry = ratelimit.New(limiterStore, "registry",
		cfg.RateLimit.RegistryRequests, cfg.RateLimit.Window,
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(appMetrics),
	)

	registry := providers.NewProviderRegistry()
	for _, p := range []providers.Provider{
		mf.New("mf", cfg.VAT.MFBaseURL, cfg.VAT.Timeout),
		vies.New("vies", cfg.VAT.VIESBaseURL, cfg.VAT.Timeout),
	} {
		if err := registry.Register(p); err != nil {
			a.close()
			return nil, fmt.Errorf("register provider %s: %w", p.ID(), err)
		}
	}

	a.vat = vat.NewService(registry,
		vat.WithCache(cache),
		vat.WithMetrics(vatMetrics),
		vat.WithLogger(log),
		vat.WithBreakerOptions(
			circuit.WithFailureThreshold(cfg.VAT.FailureThreshold),
			circuit.WithCooldown(cfg.VAT.CircuitCooldown),
		),
	)
	a.subscribers = subscriberservice.New(subscriberStore,
		subscriberservice.WithLogger(log),
	)
	a.partners = partnerservice.New(partnerStore, historyStore, a.subscribers,
		partnerservice.WithTxRunner(runner),
		partnerservice.WithAuditor(audit.NewPublisher(auditStore, audit.WithLogger(log))),
		partnerservice.WithMetrics(appMetrics),
		partnerservice.WithLogger(log),
		partnerservice.WithHistoryLimit(cfg.History.PartnerPageSize),
	)
	a.sessions = editsession.NewManager(a.partners, a.vat,
		editsession.WithPageSize(cfg.History.SessionPageSize),
		editsession.WithIdleTTL(cfg.Session.IdleTTL),
		editsession.WithMetrics(appMetrics),
		editsession.WithLogger(log),
	)
	return a, nil
}
