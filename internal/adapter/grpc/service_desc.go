package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "wealthflow.performance.v1.PerformanceService"

// Full method names, as seen by interceptors
const (
	MethodCalculatePerformance      = "/" + serviceName + "/CalculatePerformance"
	MethodCalculatePerformanceBatch = "/" + serviceName + "/CalculatePerformanceBatch"
	MethodListPerformancePeriods    = "/" + serviceName + "/ListPerformancePeriods"
)

// PerformanceServiceServer is the server API of the performance service
// Messages are JSON-shaped structpb.Struct documents
type PerformanceServiceServer interface {
	CalculatePerformance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CalculatePerformanceBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListPerformancePeriods(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the performance service for grpc.Server registration
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PerformanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CalculatePerformance", Handler: unaryHandler(MethodCalculatePerformance, PerformanceServiceServer.CalculatePerformance)},
		{MethodName: "CalculatePerformanceBatch", Handler: unaryHandler(MethodCalculatePerformanceBatch, PerformanceServiceServer.CalculatePerformanceBatch)},
		{MethodName: "ListPerformancePeriods", Handler: unaryHandler(MethodListPerformancePeriods, PerformanceServiceServer.ListPerformancePeriods)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wealthflow/performance/v1/performance.proto",
}

// RegisterPerformanceServiceServer registers srv on s
func RegisterPerformanceServiceServer(s grpc.ServiceRegistrar, srv PerformanceServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryMethod func(PerformanceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PerformanceServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(PerformanceServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PerformanceClient calls the performance service over a client connection
type PerformanceClient struct {
	cc grpc.ClientConnInterface
}

// NewPerformanceClient creates a new client on cc
func NewPerformanceClient(cc grpc.ClientConnInterface) *PerformanceClient {
	return &PerformanceClient{cc: cc}
}

// CalculatePerformance invokes the CalculatePerformance RPC
func (c *PerformanceClient) CalculatePerformance(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCalculatePerformance, in, opts...)
}

// CalculatePerformanceBatch invokes the CalculatePerformanceBatch RPC
func (c *PerformanceClient) CalculatePerformanceBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCalculatePerformanceBatch, in, opts...)
}

// ListPerformancePeriods invokes the ListPerformancePeriods RPC
func (c *PerformanceClient) ListPerformancePeriods(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListPerformancePeriods, in, opts...)
}

func (c *PerformanceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
