package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/open5dchess/matchd/internal/admin"
	"github.com/open5dchess/matchd/internal/config"
	"github.com/open5dchess/matchd/internal/lobby"
	"github.com/open5dchess/matchd/internal/server"
	"github.com/open5dchess/matchd/internal/session"
)

var (
	flagAdminAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve [CONFIG-FILE]",
	Short: "Start the match server",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAdminAddr, "admin-addr", "", "host:port for the SSH admin console (overrides admin_addr from the config file when set)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if flagAdminAddr != "" {
		cfg.AdminAddr = flagAdminAddr
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "matchd",
	})
	if cfg.Trace {
		logger.SetLevel(log.DebugLevel)
	}

	l := lobby.New(lobby.Config{
		Variants:           cfg.Variants,
		OpenPublicCapacity: cfg.OpenPublicCapacity,
		HistoryCapacity:    cfg.HistoryCapacity,
	}, nil, nil)

	registry := session.NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	srv := &server.Server{
		Lobby:    l,
		Registry: registry,
		Logger:   logger,
		Config: session.Config{
			RelayBufferSize:  cfg.RelayBufferSize,
			PerTurnTimeout:   time.Duration(cfg.PerTurnTimeoutSeconds) * time.Second,
			AllowResetPuzzle: cfg.AllowResetPuzzle,
		},
	}

	addr := fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port)
	logger.Info("listening", "addr", addr)

	errCh := make(chan error, 2)
	go func() {
		errCh <- srv.ListenAndServe(ctx, addr)
	}()

	if cfg.AdminAddr != "" {
		adminCfg := admin.DefaultConfig()
		adminCfg.Address = cfg.AdminAddr
		adminSrv, err := admin.NewServer(adminCfg, l, registry, logger)
		if err != nil {
			return err
		}
		logger.Info("admin console listening", "addr", cfg.AdminAddr)
		go func() {
			errCh <- adminSrv.ListenAndServe(ctx)
		}()
	}

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	return nil
}
