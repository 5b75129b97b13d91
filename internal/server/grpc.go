package server

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/galton-board/internal/profile"
)

// The service speaks google.protobuf.Struct in both directions, so no
// generated code is needed:
//
//	service Simulator {
//	  rpc Simulate(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
const (
	SimulatorServiceName = "galton.Simulator"
	SimulateMethod       = "/galton.Simulator/Simulate"
)

// SimulatorServer is the server API for the Simulator service.
type SimulatorServer interface {
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var SimulatorServiceDesc = grpc.ServiceDesc{
	ServiceName: SimulatorServiceName,
	HandlerType: (*SimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Simulate",
			Handler:    simulateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "galton.proto",
}

func simulateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServer).Simulate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SimulateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServer).Simulate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterSimulator attaches s to a gRPC server.
func RegisterSimulator(gs grpc.ServiceRegistrar, s SimulatorServer) {
	gs.RegisterService(&SimulatorServiceDesc, s)
}

// CallSimulate is the client side of Simulate.
func CallSimulate(ctx context.Context, cc grpc.ClientConnInterface, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, SimulateMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

var _ SimulatorServer = (*Server)(nil)

// Simulate accepts the same keys as the HTTP query string: profile, slots,
// balls, bias, threads, threshold, strategy, remainder.
func (s *Server) Simulate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	o, name, err := structOverrides(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	out, err := s.simulate(ctx, name, o)
	if err != nil {
		if isBadRequest(err) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	counts := make([]any, len(out.result.Counts))
	for i, v := range out.result.Counts {
		counts[i] = float64(v)
	}
	resp, err := structpb.NewStruct(map[string]any{
		"run_id":      out.record.ID,
		"slots":       out.settings.Board.Slots,
		"requested":   out.settings.Board.Balls,
		"balls":       out.record.Balls,
		"workers":     out.result.Plan.Workers,
		"elapsed_ms":  float64(out.result.Elapsed.Microseconds()) / 1000,
		"counts":      counts,
		"mean":        out.stats.Mean,
		"chi_squared": out.stats.ChiSquared,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func structOverrides(req *structpb.Struct) (profile.Overrides, string, error) {
	var o profile.Overrides
	var name string
	var err error
	for key, v := range req.GetFields() {
		switch key {
		case "profile":
			name, err = stringField(key, v)
		case "slots":
			o.Slots, err = intField(key, v)
		case "balls":
			o.Balls, err = intField(key, v)
		case "threads":
			o.Threads, err = intField(key, v)
		case "threshold":
			o.ParallelThreshold, err = intField(key, v)
		case "bias":
			o.Bias, err = numberField(key, v)
		case "strategy":
			var s string
			s, err = stringField(key, v)
			o.Strategy = &s
		case "remainder":
			var s string
			s, err = stringField(key, v)
			o.Remainder = &s
		default:
			err = fmt.Errorf("unknown field %q", key)
		}
		if err != nil {
			return profile.Overrides{}, "", err
		}
	}
	return o, name, nil
}

func stringField(key string, v *structpb.Value) (string, error) {
	if _, ok := v.GetKind().(*structpb.Value_StringValue); !ok {
		return "", fmt.Errorf("field %q must be a string", key)
	}
	return v.GetStringValue(), nil
}

func numberField(key string, v *structpb.Value) (*float64, error) {
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return nil, fmt.Errorf("field %q must be a number", key)
	}
	f := v.GetNumberValue()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("field %q must be finite", key)
	}
	return &f, nil
}

// intField accepts only whole numbers that fit an int without rounding.
func intField(key string, v *structpb.Value) (*int, error) {
	f, err := numberField(key, v)
	if err != nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, fmt.Errorf("field %q must be a whole number", key)
	}
	// -MinInt is a power of two, so it converts to float64 exactly
	if *f < math.MinInt || *f >= -math.MinInt {
		return nil, fmt.Errorf("field %q is out of range", key)
	}
	n := int(*f)
	return &n, nil
}
