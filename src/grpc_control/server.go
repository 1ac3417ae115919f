package grpc_control

import (
	"errors"
	"fmt"
	"net"

	"astrografia/src/logger"
	"astrografia/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthService is the name reported through grpc.health.v1.
const HealthService = "astrografia"

// Server hosts the control service next to the standard health and
// reflection services.
type Server struct {
	Config *models.MConfig
	Logger *logger.Logger
	grpc   *grpc.Server
	health *health.Server
}

// -----------------------------------------------------------------------------

func NewServer(cfg *models.MConfig, svc ControlServer, log *logger.Logger) *Server {
	gs := grpc.NewServer()
	hs := health.NewServer()

	RegisterControlServer(gs, svc)
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{Config: cfg, Logger: log, grpc: gs, health: hs}
}

// -----------------------------------------------------------------------------

// Serve blocks on an existing listener.
func (s *Server) Serve(lis net.Listener) error {
	s.Logger.Info("Starting gRPC Control Server on %s", lis.Addr())
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Start listens on grpc_host:grpc_port and serves until Stop.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.GrpcHost, s.Config.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// -----------------------------------------------------------------------------

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
	s.Logger.Info("gRPC Control Server stopped")
}
