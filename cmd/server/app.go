package main

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"ventas-backend/internal/auth"
	"ventas-backend/internal/cache"
	"ventas-backend/internal/config"
	"ventas-backend/internal/db"
	"ventas-backend/internal/events"
	"ventas-backend/internal/handlers"
	"ventas-backend/internal/health"
	h "ventas-backend/internal/http"
	"ventas-backend/internal/logger"
	"ventas-backend/internal/middleware"
	"ventas-backend/internal/repositories"
	"ventas-backend/internal/services"
	"ventas-backend/internal/timeutil"
)

// app holds the wired services. pool is nil when the database could not be
// reached; /api then answers 503 and /health reports it.
type app struct {
	pool  *pgxpool.Pool
	redis *redis.Client
	hub   *events.Hub
	query *cache.Query

	customers    *services.CustomerService
	products     *services.ProductService
	sales        *services.SaleService
	installments *services.InstallmentService
	invoices     *services.InvoiceService
	calendar     *services.CalendarService
	charts       *services.ChartService
	dashboard    *services.DashboardService
	prefs        *services.PreferenceService
	export       *services.ExportService
	backup       *services.BackupService
}

func newJWTManager(cfg *config.Config) *auth.JWTManager {
	return auth.NewJWTManager(cfg)
}

func newApp(ctx context.Context, cfg *config.Config) *app {
	log := logger.WithComponent("app")
	a := &app{}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, running without it")
	} else {
		a.pool = pool
	}

	var store cache.Store = cache.NewMemoryStore()
	if cfg.Redis.Enabled {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, using in-memory cache")
		} else {
			a.redis = client
			store = cache.NewRedisStore(client, logger.WithComponent("cache"))
		}
	}
	a.query = cache.NewQuery(store, logger.WithComponent("cache"))

	a.hub = events.NewHub(logger.WithComponent("events"))
	a.hub.Subscribe(func(ctx context.Context, c events.Change) {
		a.query.Invalidate(ctx, cache.Prefix(c.Entity))
	})

	customerRepo := repositories.NewCustomerRepository(a.pool)
	productRepo := repositories.NewProductRepository(a.pool)
	saleRepo := repositories.NewSaleRepository(a.pool)
	itemRepo := repositories.NewSaleItemRepository(a.pool)
	installmentRepo := repositories.NewInstallmentRepository(a.pool)
	paymentRepo := repositories.NewPaymentRepository(a.pool)
	invoiceRepo := repositories.NewInvoiceRepository(a.pool)
	calendarRepo := repositories.NewCalendarRepository(a.pool)
	prefRepo := repositories.NewPreferenceRepository(a.pool)
	statsRepo := repositories.NewStatsRepository(a.pool)

	ttl := cfg.Cache.TTL
	workers := cfg.Aggregation.Workers
	svcLog := logger.WithComponent("services")

	a.customers = services.NewCustomerService(customerRepo, saleRepo, itemRepo, installmentRepo, invoiceRepo, a.query, ttl, a.hub, workers, svcLog)
	a.products = services.NewProductService(productRepo, itemRepo, a.hub)
	a.sales = services.NewSaleService(saleRepo, customerRepo, itemRepo, installmentRepo, paymentRepo, a.query, ttl, a.hub, svcLog)
	a.installments = services.NewInstallmentService(customerRepo, saleRepo, itemRepo, installmentRepo, a.hub, workers, svcLog)
	a.invoices = services.NewInvoiceService(invoiceRepo, a.sales, customerRepo, a.hub, svcLog)
	a.calendar = services.NewCalendarService(saleRepo, installmentRepo, calendarRepo, a.hub, logger.WithComponent("calendar"))
	a.charts = services.NewChartService(saleRepo, itemRepo, workers, svcLog)
	a.dashboard = services.NewDashboardService(statsRepo, a.installments, svcLog)
	a.prefs = services.NewPreferenceService(prefRepo, a.hub)
	a.export = services.NewExportService(a.sales, customerRepo, invoiceRepo, prefRepo)

	a.backup = &services.BackupService{
		Customers:    customerRepo,
		Products:     productRepo,
		Sales:        saleRepo,
		Items:        itemRepo,
		Installments: installmentRepo,
		Payments:     paymentRepo,
		Invoices:     invoiceRepo,
		Calendar:     calendarRepo,
		Prefs:        a.prefs,
		Bucket:       cfg.Backup.Bucket,
		Log:          logger.WithComponent("backup"),
		Now:          timeutil.Now,
	}
	if cfg.Backup.Bucket != "" {
		client, err := services.NewS3Client(ctx, cfg.Backup)
		if err != nil {
			log.Warn().Err(err).Msg("backup bucket not configured correctly, backups disabled")
		} else {
			a.backup.Uploader = client
		}
	}

	return a
}

func (a *app) handler(cfg *config.Config) http.Handler {
	var pinger health.Pinger
	if a.redis != nil {
		pinger = cache.NewRedisStore(a.redis, logger.Nop())
	}
	log := logger.WithComponent("http")

	router := h.NewRouter(h.Handlers{
		Customers:    handlers.NewCustomerHandler(a.customers, a.export, log),
		Products:     handlers.NewProductHandler(a.products, log),
		Sales:        handlers.NewSaleHandler(a.sales, a.invoices, a.export, log),
		Installments: handlers.NewInstallmentHandler(a.installments, log),
		Invoices:     handlers.NewInvoiceHandler(a.invoices, a.export, log),
		Calendar:     handlers.NewCalendarHandler(a.calendar, log),
		Reports:      handlers.NewReportHandler(a.charts, a.dashboard, log),
		Preferences:  handlers.NewPreferenceHandler(a.prefs, log),
		Backup:       handlers.NewBackupHandler(a.backup, log),
		Health:       handlers.NewHealthHandler(health.NewHealthChecker(a.pool, pinger, cfg.Server.DataDir)),
		Changes:      a.hub.ServeWS,
	}, middleware.NewAuthMiddleware(newJWTManager(cfg)), func() bool { return a.pool != nil }, log)

	return middleware.NewCORS(cfg)(router)
}

func (a *app) Close() {
	a.query.Wait()
	if a.redis != nil {
		a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
