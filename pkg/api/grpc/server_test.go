package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T) (*Server, healthpb.HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv, err := NewServer(&Config{Listener: lis, Logger: zap.NewNop()})
	require.NoError(t, err)
	go func() { _ = srv.Start() }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return srv, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthFollowsServingStatus(t *testing.T) {
	srv, client := startServer(t)
	defer func() { _ = srv.Shutdown(context.Background()) }()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, DirectoryService))

	srv.SetServing(false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, DirectoryService))

	srv.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, DirectoryService))
}

func TestShutdown(t *testing.T) {
	srv, client := startServer(t)

	require.NoError(t, srv.Shutdown(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	assert.Error(t, err)
}

func TestNewServerListensOnConfiguredAddr(t *testing.T) {
	srv, err := NewServer(&Config{Addr: "127.0.0.1:0", Logger: zap.NewNop()})
	require.NoError(t, err)
	defer func() { _ = srv.listener.Close() }()

	host, _, err := net.SplitHostPort(srv.listener.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
}
