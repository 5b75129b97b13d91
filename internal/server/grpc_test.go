package server

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func setupGRPC(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterSimulator(gs, setupServer(t, false))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCSimulate(t *testing.T) {
	conn := setupGRPC(t)
	ctx := context.Background()

	req, err := structpb.NewStruct(map[string]any{"slots": 4, "balls": 30, "bias": 0})
	require.NoError(t, err)
	resp, err := CallSimulate(ctx, conn, req)
	require.NoError(t, err)

	fields := resp.GetFields()
	assert.NotEmpty(t, fields["run_id"].GetStringValue())
	assert.Equal(t, 30.0, fields["balls"].GetNumberValue())
	counts := fields["counts"].GetListValue().GetValues()
	require.Len(t, counts, 4)
	assert.Equal(t, 30.0, counts[0].GetNumberValue())
	assert.Equal(t, 0.0, counts[3].GetNumberValue())
}

func TestGRPCInvalidArgument(t *testing.T) {
	conn := setupGRPC(t)
	ctx := context.Background()

	for _, fields := range []map[string]any{
		{"bias": 3},
		{"colour": "red"},
		{"bias": "1"},
		{"slots": "nine"},
		{"balls": 2.9},
		{"balls": 1e20},
		{"threads": true},
		{"profile": 3},
		{"strategy": []any{"local"}},
		{"slots": 3000000, "balls": 1},
	} {
		req, err := structpb.NewStruct(fields)
		require.NoError(t, err)
		_, err = CallSimulate(ctx, conn, req)
		require.Error(t, err)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	}
}
