package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/ssh"

	"github.com/ledzpl/relay/internal/chat"
	"github.com/ledzpl/relay/pkg/sshserver"
)

func main() {
	addr := flag.String("addr", ":9000", "TCP address for the relay server")
	sshAddr := flag.String("ssh-addr", "", "Optional TCP address for the SSH transport (disabled when empty)")
	hostKeyPath := flag.String("host-key", "configs/ssh_host_ed25519", "Path to the SSH host private key (auto-generated if missing)")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	registry := chat.NewRegistry()
	server := chat.NewServer(*addr, registry, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *sshAddr != "" {
		signer, err := sshserver.LoadOrGenerateSigner(*hostKeyPath)
		if err != nil {
			logger.Fatalf("failed to prepare host key: %v", err)
		}

		sshSrv := sshserver.New(*sshAddr, signer, logger)
		go func() {
			err := sshSrv.ListenAndServe(ctx, func(channel ssh.Channel) {
				chat.HandleSession(ctx, registry, channel, logger)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("ssh transport stopped with error: %v", err)
				cancel()
			}
		}()
	}

	err := server.ListenAndServe(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("server stopped with error: %v", err)
	}
}
