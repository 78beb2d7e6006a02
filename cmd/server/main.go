package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/wealthflow-analytics/internal/adapter/grpc"
	"github.com/simaogato/wealthflow-analytics/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-analytics/internal/config"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"github.com/simaogato/wealthflow-analytics/internal/logger"
	"github.com/simaogato/wealthflow-analytics/internal/scheduler"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/performance"
)

func main() {
	// 1. Load configuration and logger
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg)

	// 2. Setup Database
	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database.DSN(), postgres.PoolSettings{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Database schema migrated")
	}

	// 3. Initialize Repositories (Postgres) and the engine
	engineCfg := cfg.Analytics.Engine()
	engine := performance.NewEngine(performance.Providers{
		Valuations:    postgres.NewValuationRepository(db),
		Transactions:  postgres.NewTransactionRepository(db),
		Benchmarks:    postgres.NewBenchmarkRepository(db, engineCfg.TradingDaysPerYear),
		RiskFreeRates: postgres.NewRiskFreeRateRepository(db, engineCfg.RiskFreeRate),
		Segments:      postgres.NewSegmentRepository(db),
	}, engineCfg, log)

	service := performance.NewService(
		engine,
		postgres.NewPerformanceRepository(db),
		postgres.NewPortfolioRepository(db),
		log,
	)

	// 4. Scheduled recalculation
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = newScheduler(cfg.Scheduler, service, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure scheduler")
		}
		sched.Start()
	}

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterPerformanceServiceServer(grpcServer, grpcadapter.NewServer(service, engine))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, sched, log)
}

// newScheduler registers one recalculation job per closed calendar period type
func newScheduler(cfg config.SchedulerConfig, service *performance.Service, log zerolog.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(log, cfg.JobTimeout)
	schedules := []struct {
		periodType domain.PeriodType
		cron       string
	}{
		{domain.PeriodTypeDaily, cfg.DailyCron},
		{domain.PeriodTypeMonthly, cfg.MonthlyCron},
		{domain.PeriodTypeQuarterly, cfg.QuarterlyCron},
		{domain.PeriodTypeYearly, cfg.YearlyCron},
	}
	for _, sc := range schedules {
		if sc.cron == "" {
			continue
		}
		job := scheduler.NewRecalculationJob(service, sc.periodType, domain.MethodTimeWeighted, sc.cron)
		if err := s.AddJob(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, sched *scheduler.Scheduler, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	if sched != nil {
		sched.Stop()
	}
	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
