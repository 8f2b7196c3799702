package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "filestorage.FileStorage"

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) (bool, time.Duration)
}

// GRPCServer serves grpc.health.v1.Health. The reported status follows the
// pinger, checked every interval.
type GRPCServer struct {
	address  string
	health   *health.Server
	pinger   Pinger
	interval time.Duration
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, p Pinger, interval time.Duration) *GRPCServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &GRPCServer{
		address:  a,
		health:   health.NewServer(),
		pinger:   p,
		interval: interval,
		logger:   l.With("module", "grpc_server"),
	}
}

// check updates the serving status once.
func (s *GRPCServer) check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if ok, _ := s.pinger.Ping(pingCtx); !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

func (s *GRPCServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if status := s.check(ctx); status != last {
				s.logger.Warn(ctx, "health status changed", "from", last.String(), "to", status.String())
				last = status
			}
		}
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	// registers service
	healthpb.RegisterHealthServer(srv, s.health)

	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
