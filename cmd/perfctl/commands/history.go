package commands

import (
	"context"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/simaogato/wealthflow-analytics/internal/adapter/grpc"
)

var (
	historyPortfolio string
	historyLimit     int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored performance periods of a portfolio",
	Long: `Lists the most recently calculated periods of a portfolio, newest first.

Example:
  perfctl history --portfolio <id> --limit 12`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyPortfolio, "portfolio", "", "portfolio id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "number of periods (0 uses the server default)")
	_ = historyCmd.MarkFlagRequired("portfolio")
}

func runHistory(cmd *cobra.Command, args []string) error {
	req, err := structpb.NewStruct(map[string]any{
		"portfolio_id": historyPortfolio,
		"limit":        historyLimit,
	})
	if err != nil {
		return err
	}

	return withClient(cmd, func(ctx context.Context, client *grpcadapter.PerformanceClient) error {
		resp, err := client.ListPerformancePeriods(ctx, req)
		if err != nil {
			return err
		}
		return printStruct(cmd, resp)
	})
}
