package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/simaogato/wealthflow-analytics/internal/adapter/grpc"
)

// calculationFlags are the request fields shared by calculate and batch
type calculationFlags struct {
	start       string
	end         string
	periodType  string
	method      string
	benchmark   string
	attribution bool
	dimension   string
	timing      string
}

var (
	calcFlags      calculationFlags
	calcPortfolio  string
	calcStore      bool
	batchPortfolio []string
)

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate the performance of one portfolio",
	Long: `Calculates returns, risk, benchmark statistics and attribution for one portfolio.

Example:
  perfctl calculate --portfolio <id> --start 2024-01-01 --end 2024-02-01
  perfctl calculate --portfolio <id> --start 2024-01-01 --end 2024-02-01 --benchmark SPX --attribution --store`,
	RunE: runCalculate,
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Calculate the same period for several portfolios",
	Long: `Calculates one period for every given portfolio; failures are reported per portfolio.

Example:
  perfctl batch --portfolio <id> --portfolio <id> --start 2024-01-01 --end 2024-04-01 --period-type quarterly`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(batchCmd)

	for _, cmd := range []*cobra.Command{calculateCmd, batchCmd} {
		cmd.Flags().StringVar(&calcFlags.start, "start", "", "period start (YYYY-MM-DD or RFC 3339)")
		cmd.Flags().StringVar(&calcFlags.end, "end", "", "period end, exclusive (YYYY-MM-DD or RFC 3339)")
		cmd.Flags().StringVar(&calcFlags.periodType, "period-type", "custom", "daily|monthly|quarterly|yearly|inception|custom")
		cmd.Flags().StringVar(&calcFlags.method, "method", "time_weighted", "time_weighted|money_weighted|modified_dietz")
		cmd.Flags().StringVar(&calcFlags.benchmark, "benchmark", "", "benchmark id")
		cmd.Flags().BoolVar(&calcFlags.attribution, "attribution", false, "include Brinson attribution (requires --benchmark)")
		cmd.Flags().StringVar(&calcFlags.dimension, "dimension", "asset_class", "asset_class|sector|region")
		cmd.Flags().StringVar(&calcFlags.timing, "timing", "end_of_day", "beginning_of_day|end_of_day|actual_time")
		_ = cmd.MarkFlagRequired("start")
		_ = cmd.MarkFlagRequired("end")
	}

	calculateCmd.Flags().StringVar(&calcPortfolio, "portfolio", "", "portfolio id")
	calculateCmd.Flags().BoolVar(&calcStore, "store", false, "persist the calculated period")
	_ = calculateCmd.MarkFlagRequired("portfolio")

	batchCmd.Flags().StringSliceVar(&batchPortfolio, "portfolio", nil, "portfolio id (repeatable)")
	_ = batchCmd.MarkFlagRequired("portfolio")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	body := calcFlags.request(calcPortfolio)
	body["store"] = calcStore

	req, err := structpb.NewStruct(body)
	if err != nil {
		return err
	}

	return withClient(cmd, func(ctx context.Context, client *grpcadapter.PerformanceClient) error {
		resp, err := client.CalculatePerformance(ctx, req)
		if err != nil {
			return err
		}
		return printStruct(cmd, resp)
	})
}

func runBatch(cmd *cobra.Command, args []string) error {
	req, err := calcFlags.batchRequest(batchPortfolio)
	if err != nil {
		return err
	}

	return withClient(cmd, func(ctx context.Context, client *grpcadapter.PerformanceClient) error {
		resp, err := client.CalculatePerformanceBatch(ctx, req)
		if err != nil {
			return err
		}
		return printStruct(cmd, resp)
	})
}

// request builds the JSON-shaped request of one portfolio
func (f calculationFlags) request(portfolioID string) map[string]any {
	return map[string]any{
		"portfolio_id":          portfolioID,
		"period_start":          f.start,
		"period_end":            f.end,
		"period_type":           f.periodType,
		"calculation_method":    f.method,
		"benchmark_id":          f.benchmark,
		"include_attribution":   f.attribution,
		"attribution_dimension": f.dimension,
		"cash_flow_timing":      f.timing,
	}
}

// batchRequest builds one request per portfolio with the shared period flags
func (f calculationFlags) batchRequest(portfolioIDs []string) (*structpb.Struct, error) {
	if len(portfolioIDs) == 0 {
		return nil, errors.New("at least one --portfolio is required")
	}
	requests := make([]any, len(portfolioIDs))
	for i, id := range portfolioIDs {
		requests[i] = f.request(id)
	}
	return structpb.NewStruct(map[string]any{"requests": requests})
}
