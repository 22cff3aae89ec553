package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/atqan-dev/atqan-wathq-services-sub001/docs"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/auth"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/database"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/database/migration"
	handlers "github.com/atqan-dev/atqan-wathq-services-sub001/internal/http/handler"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/http/middleware"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/jobs"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/logger"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/notify"
	tracing "github.com/atqan-dev/atqan-wathq-services-sub001/internal/otel"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/pdf"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository/postgres"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/storage"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/wathq"
)

// @title Wathq Services API
// @version 1.0
// @description Multi-tenant caching proxy for the Wathq government data APIs.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	loc := cfg.Location()
	log := logger.New(cfg.App, loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, log); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	wathqMetrics, err := wathq.NewMetrics(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register wathq metrics")
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	queue := jobs.NewQueue(cfg.Redis)
	defer queue.Close()
	hub := notify.NewHub(log)

	svc, admins := buildServices(cfg, db, objStore, rdb, wathqMetrics, queue, hub, loc)
	if _, err := service.BootstrapSuperAdmin(ctx, admins, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap management admin")
	}

	app := fiber.New(fiber.Config{
		AppName:      "wathq-services",
		ErrorHandler: handlers.ErrorHandler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    2 * 1024 * 1024,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.App.Env != "production"}))
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
	})))
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.App.CORSAllowedOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, db, svc, hub, log)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		hub.Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	addr := ":" + cfg.App.Port
	log.Info().Str("addr", addr).Str("env", cfg.App.Env).Msg("starting server")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}
}

func buildServices(
	cfg *config.AppConfig,
	db *sql.DB,
	objStore storage.Storage,
	rdb redis.UniversalClient,
	wathqMetrics *wathq.Metrics,
	queue *jobs.Queue,
	hub *notify.Hub,
	loc *time.Location,
) (handlers.Services, *postgres.ManagementUserPostgres) {
	users := postgres.NewUserPostgres(db)
	admins := postgres.NewManagementUserPostgres(db)
	roles := postgres.NewRolePostgres(db)
	tenants := postgres.NewTenantPostgres(db)

	records := service.Records{
		CommercialRegistrations: postgres.NewCommercialRegistrations(db),
		RealEstateDeeds:         postgres.NewRealEstateDeeds(db),
		PowersOfAttorney:        postgres.NewPowersOfAttorney(db),
		Employees:               postgres.NewEmployees(db),
		NationalAddresses:       postgres.NewNationalAddresses(db),
		Contracts:               postgres.NewContracts(db),
	}

	notifications := service.NewNotificationService(postgres.NewNotificationPostgres(db), users, hub, queue)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	callLogs := postgres.NewCallLogPostgres(db)
	tx := database.NewTransactor(db)

	return handlers.Services{
		Auth:          service.NewAuthService(users, admins, roles, tenants, issuer, auth.NewRedisRevocationStore(rdb), cfg.Auth),
		Tenants:       service.NewTenantService(tenants, users, roles, tx),
		Users:         service.NewUserService(users),
		Roles:         service.NewRoleService(roles, tx),
		CallLogs:      service.NewCallLogService(callLogs),
		Notifications: notifications,
		Wathq: service.NewWathqService(
			wathq.NewClient(cfg.Wathq, wathqMetrics),
			postgres.NewCachePostgres(db),
			callLogs,
			records,
			notifications,
			wathqMetrics,
			cfg.Wathq,
		),
		Reports: service.NewReportService(
			objStore,
			postgres.NewReportPostgres(db),
			records,
			pdf.NewRenderer(cfg.Reports.FontPath, loc),
			cfg.Reports.PresignExpiry,
		),

		CommercialRegistrations: service.NewRecordService(records.CommercialRegistrations, func(r *model.CommercialRegistration) *model.Base { return &r.Base }),
		RealEstateDeeds:         service.NewRecordService(records.RealEstateDeeds, func(r *model.RealEstateDeed) *model.Base { return &r.Base }),
		PowersOfAttorney:        service.NewRecordService(records.PowersOfAttorney, func(r *model.PowerOfAttorney) *model.Base { return &r.Base }),
		Employees:               service.NewRecordService(records.Employees, func(r *model.Employee) *model.Base { return &r.Base }),
		NationalAddresses:       service.NewRecordService(records.NationalAddresses, func(r *model.NationalAddress) *model.Base { return &r.Base }),
		Contracts:               service.NewRecordService(records.Contracts, func(r *model.Contract) *model.Base { return &r.Base }),
	}, admins
}

func corsOrigins(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "*"
	}
	return raw
}

