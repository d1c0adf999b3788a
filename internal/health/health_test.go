package health

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type fakePinger struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (p *fakePinger) PingContext(ctx context.Context) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func startServer(t *testing.T, c *Checker) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	c.Register(srv)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func status(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestChecker_Check(t *testing.T) {
	pinger := &fakePinger{}
	c := NewChecker(pinger, time.Minute)
	client := startServer(t, c)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client, ""))

	c.Check(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, ServiceName))

	pinger.fail.Store(true)
	c.Check(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client, ServiceName))
}

func TestChecker_Run(t *testing.T) {
	pinger := &fakePinger{}
	c := NewChecker(pinger, 10*time.Millisecond)
	client := startServer(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pinger.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, ""))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client, ""))
}

func TestNewChecker_DefaultInterval(t *testing.T) {
	c := NewChecker(&fakePinger{}, 0)
	assert.Equal(t, 10*time.Second, c.interval)
}
