package sshserver

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net"

	"golang.org/x/crypto/ssh"
)

// ChannelHandler handles one accepted SSH session channel. The channel is a
// plain byte stream; the handler owns it and must close it.
type ChannelHandler func(channel ssh.Channel)

// Server wraps the SSH listener lifecycle.
type Server struct {
	Addr   string
	Config *ssh.ServerConfig

	logger *log.Logger
}

// New creates a Server with the provided host signer.
func New(addr string, signer ssh.Signer, logger *log.Logger) *Server {
	cfg := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	cfg.AddHostKey(signer)

	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		Addr:   addr,
		Config: cfg,
		logger: logger,
	}
}

// ListenAndServe runs the SSH server until the context is cancelled or an
// error occurs.
func (s *Server) ListenAndServe(ctx context.Context, handler ChannelHandler) error {
	if handler == nil {
		return errors.New("sshserver: channel handler required")
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("sshserver: listen %q: %w", s.Addr, err)
	}
	defer listener.Close()

	shutdown := make(chan struct{})
	defer close(shutdown)

	go func() {
		select {
		case <-ctx.Done():
			if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Printf("sshserver: listener close error: %v", err)
			}
		case <-shutdown:
		}
	}()

	s.logger.Printf("sshserver: listening on %s", listener.Addr())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			s.logger.Printf("sshserver: accept error: %v", err)
			continue
		}

		go s.handleConn(ctx, conn, handler)
	}
}

func (s *Server) handleConn(ctx context.Context, tcpConn net.Conn, handler ChannelHandler) {
	defer tcpConn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(tcpConn, s.Config)
	if err != nil {
		s.logger.Printf("sshserver: handshake failed: %v", err)
		return
	}
	defer sshConn.Close()

	s.logger.Printf("sshserver: new connection from %s", sshConn.RemoteAddr())

	go ssh.DiscardRequests(reqs)

	for {
		select {
		case <-ctx.Done():
			return
		case newChannel, ok := <-chans:
			if !ok {
				return
			}
			if newChannel.ChannelType() != "session" {
				newChannel.Reject(ssh.UnknownChannelType, "only session channels are supported")
				continue
			}

			channel, requests, err := newChannel.Accept()
			if err != nil {
				s.logger.Printf("sshserver: channel accept failed: %v", err)
				continue
			}

			go serviceRequests(requests)
			go handler(channel)
		}
	}
}

// serviceRequests acknowledges shell-style channel requests so stock SSH
// clients can talk the line protocol, and declines everything else.
func serviceRequests(requests <-chan *ssh.Request) {
	for req := range requests {
		switch req.Type {
		case "shell", "pty-req", "env", "window-change":
			req.Reply(true, nil)
		default:
			req.Reply(false, nil)
		}
	}
}

// EphemeralSigner creates a temporary ed25519 host key for development
// environments.
func EphemeralSigner() (ssh.Signer, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("sshserver: generate host key: %w", err)
	}

	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("sshserver: create signer: %w", err)
	}

	return signer, nil
}
