package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/loractl/internal/lora"
	"github.com/danmuck/loractl/internal/observability"
	"github.com/danmuck/loractl/internal/payload"
	"github.com/danmuck/loractl/internal/serialio"
	"github.com/danmuck/loractl/internal/statusapi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "loractl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "loractl.toml", "daemon configuration file")
	flag.Parse()

	logger := observability.InitLogger("loractl")

	cfg, err := loadDaemonConfig(*cfgPath)
	if err != nil {
		return err
	}

	port, err := serialio.Open(cfg.Device)
	if err != nil {
		return err
	}

	client := lora.NewClient(port, cfg.Lora, logger)
	defer client.Stop()

	if err := client.Reboot(); err != nil {
		return fmt.Errorf("module reboot: %w", err)
	}
	if err := client.Probe(); err != nil {
		return fmt.Errorf("%w (device %s)", err, cfg.Device)
	}
	if eui, err := client.DevEUI(); err == nil {
		logger.Info().Str("dev_eui", eui).Msg("modem ready")
	} else {
		logger.Warn().Err(err).Msg("DevEUI unavailable")
	}

	if err := client.Join(cfg.JoinEUI, cfg.AppKey, cfg.JoinTimeout); err != nil {
		return fmt.Errorf("network join: %w", err)
	}
	client.Start()
	client.SendRecord(payload.String("boot", "loractl up"))

	api := statusapi.NewServer(client, logger)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: api.Handler()}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info().Str("addr", cfg.ListenAddr).Msg("status API listening")

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("status API: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("status API shutdown")
	}
	return nil
}
