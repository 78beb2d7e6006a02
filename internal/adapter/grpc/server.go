package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/wealthflow-analytics/internal/domain"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/performance"
)

// TenantMetadataKey carries the tenant when the request body omits tenant_id
const TenantMetadataKey = "x-tenant-id"

// PerformanceService is the use case surface the server exposes
type PerformanceService interface {
	CalculateAndStore(ctx context.Context, req performance.Request) (*performance.Response, error)
	History(ctx context.Context, portfolioID uuid.UUID, limit int) ([]*domain.PerformancePeriod, error)
}

// Server implements the PerformanceService gRPC server
type Server struct {
	Service    PerformanceService
	Calculator performance.Calculator
}

// NewServer creates a new gRPC server instance
func NewServer(service PerformanceService, calculator performance.Calculator) *Server {
	return &Server{
		Service:    service,
		Calculator: calculator,
	}
}

// CalculatePerformance handles the CalculatePerformance RPC
// The period is persisted only when the request sets "store"
func (s *Server) CalculatePerformance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	calcReq, err := parseRequest(ctx, req.GetFields())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	var resp *performance.Response
	if boolField(req.GetFields(), "store") {
		resp, err = s.Service.CalculateAndStore(ctx, calcReq)
	} else {
		resp, err = s.Calculator.Calculate(ctx, calcReq)
	}
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(responseView(resp))
}

// CalculatePerformanceBatch handles the CalculatePerformanceBatch RPC
// Per-request failures are reported inline and never fail the call
func (s *Server) CalculatePerformanceBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	items := req.GetFields()["requests"].GetListValue().GetValues()
	if len(items) == 0 {
		return nil, status.Error(codes.InvalidArgument, "requests must not be empty")
	}

	reqs := make([]performance.Request, len(items))
	for i, item := range items {
		calcReq, err := parseRequest(ctx, item.GetStructValue().GetFields())
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "requests[%d]: %v", i, err)
		}
		reqs[i] = calcReq
	}

	results := make([]map[string]any, 0, len(reqs))
	for _, result := range s.Calculator.CalculateBatch(ctx, reqs) {
		entry := map[string]any{"portfolio_id": result.Request.PortfolioID.String()}
		if result.Err != nil {
			entry["error"] = result.Err.Error()
			entry["code"] = status.Code(mapError(result.Err)).String()
		} else {
			entry["result"] = responseView(result.Response)
		}
		results = append(results, entry)
	}

	return toStruct(map[string]any{"results": results})
}

// ListPerformancePeriods handles the ListPerformancePeriods RPC
func (s *Server) ListPerformancePeriods(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	portfolioID, err := uuid.Parse(stringField(fields, "portfolio_id"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid portfolio_id format: %v", err)
	}

	periods, err := s.Service.History(ctx, portfolioID, int(fields["limit"].GetNumberValue()))
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"periods": periods})
}

// parseRequest converts a JSON-shaped request into a calculation request
func parseRequest(ctx context.Context, fields map[string]*structpb.Value) (performance.Request, error) {
	var req performance.Request

	portfolioID, err := uuid.Parse(stringField(fields, "portfolio_id"))
	if err != nil {
		return req, fmt.Errorf("invalid portfolio_id format: %w", err)
	}
	req.PortfolioID = portfolioID

	tenant := stringField(fields, "tenant_id")
	if tenant == "" {
		tenant = tenantFromMetadata(ctx)
	}
	if tenant != "" {
		if req.TenantID, err = uuid.Parse(tenant); err != nil {
			return req, fmt.Errorf("invalid tenant_id format: %w", err)
		}
	}

	if req.PeriodStart, err = parseTime(stringField(fields, "period_start")); err != nil {
		return req, fmt.Errorf("invalid period_start: %w", err)
	}
	if req.PeriodEnd, err = parseTime(stringField(fields, "period_end")); err != nil {
		return req, fmt.Errorf("invalid period_end: %w", err)
	}

	req.PeriodType = domain.PeriodType(strings.ToUpper(stringField(fields, "period_type")))
	req.Method = domain.CalculationMethod(strings.ToUpper(stringField(fields, "calculation_method")))
	req.CashFlowTiming = domain.CashFlowTiming(strings.ToUpper(stringField(fields, "cash_flow_timing")))
	req.AttributionDimension = domain.AttributionDimension(strings.ToLower(stringField(fields, "attribution_dimension")))
	req.IncludeAttribution = boolField(fields, "include_attribution")
	req.BenchmarkID = stringField(fields, "benchmark_id")

	return req, nil
}

func tenantFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(TenantMetadataKey); len(values) > 0 {
		return values[0]
	}
	return ""
}

// parseTime accepts a calendar date or an RFC 3339 timestamp
func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("value is required")
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func stringField(fields map[string]*structpb.Value, name string) string {
	return strings.TrimSpace(fields[name].GetStringValue())
}

func boolField(fields map[string]*structpb.Value, name string) bool {
	return fields[name].GetBoolValue()
}

// responseView is the wire shape of a calculation response
func responseView(resp *performance.Response) map[string]any {
	warnings := resp.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return map[string]any{
		"period":              resp.Period,
		"attribution":         resp.Attribution,
		"benchmark":           resp.Benchmark,
		"warnings":            warnings,
		"calculation_time_ms": resp.CalculationTimeMs,
	}
}

// toStruct round-trips a value through JSON so decimals and times keep their JSON encoding
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrMissingBenchmarkForAttribution):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case errors.Is(err, domain.ErrBenchmarkUnavailable):
		return status.Errorf(codes.FailedPrecondition, "%s", errorMsg)
	case errors.Is(err, domain.ErrValuationUnavailable):
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", errorMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
