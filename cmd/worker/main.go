package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/database"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/email"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/jobs"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/logger"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository/postgres"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/wathq"
)

// The worker runs periodic maintenance and e-mail delivery off the request path.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	loc := cfg.Location()
	log := logger.New(cfg.App, loc).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	callLogs := postgres.NewCallLogPostgres(db)
	records := service.Records{
		CommercialRegistrations: postgres.NewCommercialRegistrations(db),
		RealEstateDeeds:         postgres.NewRealEstateDeeds(db),
		PowersOfAttorney:        postgres.NewPowersOfAttorney(db),
		Employees:               postgres.NewEmployees(db),
		NationalAddresses:       postgres.NewNationalAddresses(db),
		Contracts:               postgres.NewContracts(db),
	}
	wathqSvc := service.NewWathqService(
		wathq.NewClient(cfg.Wathq, nil),
		postgres.NewCachePostgres(db),
		callLogs,
		records,
		nil,
		nil,
		cfg.Wathq,
	)

	h := jobs.NewHandlers(
		wathqSvc,
		service.NewCallLogService(callLogs),
		email.NewClient(cfg.Email, log),
		cfg.Jobs.CallLogRetention,
		log,
	)

	srv := jobs.NewServer(cfg.Redis, cfg.Jobs, log)
	scheduler, err := jobs.NewScheduler(cfg.Redis, cfg.Jobs, loc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure scheduler")
	}

	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	if err := srv.Start(h.Mux()); err != nil {
		log.Fatal().Err(err).Msg("failed to start worker")
	}
	log.Info().Int("concurrency", cfg.Jobs.Concurrency).Msg("worker started")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	scheduler.Shutdown()
	srv.Shutdown()
}
