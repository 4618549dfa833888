package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
)

// Server accepts TCP connections and runs one session goroutine per
// connection. Workers are fire-and-forget: each one releases its own
// resources on exit and is never joined.
type Server struct {
	Addr string

	registry *Registry
	logger   *log.Logger
}

// NewServer creates a Server sharing the given room registry.
func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Addr:     addr,
		registry: registry,
		logger:   logger,
	}
}

// ListenAndServe listens on s.Addr and serves until the context is
// cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("chat: listen %q: %w", s.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections from the listener until the context is
// cancelled. It takes ownership of the listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	defer listener.Close()

	shutdown := make(chan struct{})
	defer close(shutdown)

	go func() {
		select {
		case <-ctx.Done():
			if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Printf("relay: listener close error: %v", err)
			}
		case <-shutdown:
		}
	}()

	s.logger.Printf("relay: listening on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			s.logger.Printf("relay: accept error: %v", err)
			continue
		}

		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, nc net.Conn) {
	s.logger.Printf("relay: new connection from %s", nc.RemoteAddr())
	HandleSession(ctx, s.registry, nc, s.logger)
}
