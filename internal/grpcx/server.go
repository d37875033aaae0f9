// Package grpcx exposes the standard gRPC health service so orchestrators can
// probe the API over gRPC as well as HTTP.
package grpcx

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	srv     *grpc.Server
	health  *health.Server
	service string
}

func New(service string) *Server {
	srv := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	reflection.Register(srv)
	h.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{srv: srv, health: h, service: service}
}

func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(s.service, st)
}

// Watch pings db every interval and mirrors the result into the health
// status until ctx is done.
func (s *Server) Watch(ctx context.Context, db Pinger, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := db.Ping(pctx)
		if err != nil {
			log.Printf("[grpc] health: db ping: %v", err)
		}
		s.SetServing(err == nil)
	}
	check()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	log.Printf("[grpc] listening on %s", lis.Addr())
	err := s.srv.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// Stop drains in-flight RPCs, forcing the stop after timeout.
func (s *Server) Stop(timeout time.Duration) {
	s.health.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(stopped)
	}()
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-t.C:
		log.Println("[grpc] graceful stop timed out, forcing")
		s.srv.Stop()
	case <-stopped:
	}
}
