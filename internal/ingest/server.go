package ingest

import (
	"context"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/loghive/loghive/internal/logstore"
	"github.com/loghive/loghive/internal/ratelimit"
)

// Config carries the server tunables. Zero values for MaxConns, IdleTimeout
// and AcceptRate disable the respective guard.
type Config struct {
	Addr        string
	MaxConns    int64
	IdleTimeout time.Duration
	AcceptRate  float64
	AcceptBurst int
}

type Server struct {
	cfg      Config
	logger   *slog.Logger
	limiter  *ratelimit.FixedWindow
	sink     logstore.Sink
	listener net.Listener
	sem      *semaphore.Weighted
	accept   *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(cfg Config, limiter *ratelimit.FixedWindow, sink logstore.Sink, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		limiter: limiter,
		sink:    sink,
	}
	if cfg.MaxConns > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConns)
	}
	if cfg.AcceptRate > 0 {
		burst := cfg.AcceptBurst
		if burst < 1 {
			burst = 1
		}
		s.accept = rate.NewLimiter(rate.Limit(cfg.AcceptRate), burst)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.limiter.Run()
	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listen address. Valid after Start.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) Stop() {
	s.logger.Info("shutting down")

	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}

	s.limiter.Stop()
	s.limiter.Wait()

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		if s.accept != nil {
			if err := s.accept.Wait(s.ctx); err != nil {
				return
			}
		}
		if s.sem != nil {
			if err := s.sem.Acquire(s.ctx, 1); err != nil {
				return
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			// Closed listener lands here; there is no retry policy.
			if s.sem != nil {
				s.sem.Release(1)
			}
			return
		}

		ConnectionsTotal.Inc()
		s.logger.Info("client connected", "addr", conn.RemoteAddr().String())

		go func(c net.Conn) {
			if s.sem != nil {
				defer s.sem.Release(1)
			}
			s.handleConn(c)
		}(conn)
	}
}
