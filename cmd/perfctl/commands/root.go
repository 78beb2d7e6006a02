package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/simaogato/wealthflow-analytics/internal/adapter/grpc"
)

var (
	// Global flags
	serverAddr string
	apiToken   string
	tenantID   string
	timeout    time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "perfctl",
	Short: "Portfolio performance analytics CLI",
	Long: `perfctl talks to the analytics gRPC service and runs maintenance tasks.

Examples:
  perfctl calculate --portfolio <id> --start 2024-01-01 --end 2024-02-01 --benchmark SPX
  perfctl batch --portfolio <id> --portfolio <id> --start 2024-01-01 --end 2024-04-01
  perfctl history --portfolio <id> --limit 12
  perfctl recalculate --period-type monthly`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "localhost:8080", "analytics gRPC address")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "dev-token", "API token sent as authorization metadata")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "tenant id sent as x-tenant-id metadata")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
}

// withClient dials the service and runs fn with an authenticated context
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *grpcadapter.PerformanceClient) error) error {
	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	pairs := []string{"authorization", apiToken}
	if tenantID != "" {
		pairs = append(pairs, grpcadapter.TenantMetadataKey, tenantID)
	}
	ctx = metadata.AppendToOutgoingContext(ctx, pairs...)

	return fn(ctx, grpcadapter.NewPerformanceClient(conn))
}

// printStruct writes a response as indented JSON
func printStruct(cmd *cobra.Command, s *structpb.Struct) error {
	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
