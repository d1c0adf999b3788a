package health

import (
	"context"
	"time"

	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported alongside the overall ("") status.
const ServiceName = "gw-user-service"

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker publishes database reachability through the standard gRPC health service.
type Checker struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
}

// NewChecker creates a Checker that starts in NOT_SERVING until the first ping.
func NewChecker(pinger Pinger, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	c := &Checker{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		timeout:  interval / 2,
	}
	c.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return c
}

// Register attaches the health service to s.
func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.server)
}

// Check pings the database once and updates the reported status.
func (c *Checker) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.pinger.PingContext(ctx); err != nil {
		logger.Log.Warnw("health check failed", "error", err)
		c.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	c.set(healthpb.HealthCheckResponse_SERVING)
}

// Run checks on every interval until ctx is done, then marks the service as shutting down.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

func (c *Checker) set(status healthpb.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}
