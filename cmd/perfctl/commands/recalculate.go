package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/simaogato/wealthflow-analytics/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-analytics/internal/config"
	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"github.com/simaogato/wealthflow-analytics/internal/logger"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/performance"
)

var (
	recalcPeriodType string
	recalcMethod     string
	recalcAsOf       string
)

// recalculateCmd represents the recalculate command
var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Recalculate the last closed period of every active portfolio",
	Long: `Runs the scheduled recalculation once, directly against the database.
Database and analytics settings are read from the environment (.env supported).

Example:
  perfctl recalculate --period-type monthly
  perfctl recalculate --period-type quarterly --as-of 2024-04-02`,
	RunE: runRecalculate,
}

func init() {
	rootCmd.AddCommand(recalculateCmd)

	recalculateCmd.Flags().StringVar(&recalcPeriodType, "period-type", "monthly", "daily|monthly|quarterly|yearly")
	recalculateCmd.Flags().StringVar(&recalcMethod, "method", "time_weighted", "primary return method")
	recalculateCmd.Flags().StringVar(&recalcAsOf, "as-of", "", "reference date (default now)")
}

func runRecalculate(cmd *cobra.Command, args []string) error {
	asOf := time.Now()
	if recalcAsOf != "" {
		parsed, err := time.Parse(time.DateOnly, recalcAsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of: %w", err)
		}
		asOf = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	ctx := cmd.Context()
	db, err := postgres.NewDB(ctx, cfg.Database.DSN(), postgres.PoolSettings{MaxOpenConns: cfg.Database.MaxOpenConns})
	if err != nil {
		return err
	}
	defer db.Close()

	engineCfg := cfg.Analytics.Engine()
	engine := performance.NewEngine(performance.Providers{
		Valuations:    postgres.NewValuationRepository(db),
		Transactions:  postgres.NewTransactionRepository(db),
		Benchmarks:    postgres.NewBenchmarkRepository(db, engineCfg.TradingDaysPerYear),
		RiskFreeRates: postgres.NewRiskFreeRateRepository(db, engineCfg.RiskFreeRate),
		Segments:      postgres.NewSegmentRepository(db),
	}, engineCfg, log)
	service := performance.NewService(engine, postgres.NewPerformanceRepository(db), postgres.NewPortfolioRepository(db), log)

	summary, err := service.Recalculate(ctx,
		domain.PeriodType(strings.ToUpper(recalcPeriodType)),
		domain.CalculationMethod(strings.ToUpper(recalcMethod)),
		asOf,
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s .. %s: %d portfolios, %d stored, %d failed\n",
		summary.PeriodType,
		domain.DateKey(summary.Window.Start),
		domain.DateKey(summary.Window.End),
		summary.Portfolios, summary.Stored, summary.Failed,
	)
	return nil
}
