// Package server реализует gRPC-сервер со стандартным сервисом health.
//
// Статус сервиса ServiceName переключается между SERVING и NOT_SERVING
// по результату периодической проверки хранилища.
package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
)

// ServiceName — имя сервиса в протоколе health.
const ServiceName = "fintrack.auth"

const defaultCheckInterval = 10 * time.Second

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server — gRPC-сервер с health-сервисом.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	pinger     Pinger
	log        *slog.Logger
	interval   time.Duration
}

// New создает сервер. interval <= 0 заменяется значением по умолчанию.
func New(log *slog.Logger, pinger Pinger, interval time.Duration) *Server {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	s := &Server{
		health:   health.NewServer(),
		pinger:   pinger,
		log:      log,
		interval: interval,
	}
	s.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(s.logUnary))
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Check проверяет хранилище один раз и обновляет статус.
func (s *Server) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	const op = "grpc.server.Check"

	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		s.log.Warn("storage ping failed", sl.Op(op), sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

// Run обслуживает lis и проверяет хранилище каждые interval до отмены ctx.
func (s *Server) Run(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC server listening", slog.String("address", lis.Addr().String()))
		errCh <- s.grpcServer.Serve(lis)
	}()

	s.Check(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpcServer.GracefulStop()
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	started := time.Now()
	resp, err := handler(ctx, req)
	log := s.log.With(
		slog.String("method", info.FullMethod),
		slog.Duration("duration", time.Since(started)),
	)
	if err != nil {
		log.Warn("gRPC call failed", sl.Err(err))
	} else {
		log.Debug("gRPC call")
	}
	return resp, err
}
