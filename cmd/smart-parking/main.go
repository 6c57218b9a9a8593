package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-parking/internal/config"
	"smart-parking/internal/logging"
	"smart-parking/internal/parking"
	"smart-parking/internal/server"
)

var mode = flag.String("mode", "cli", "Mode to run: cli, server, or both")

func main() {
	flag.Parse()

	cfg := config.Load()
	logging.Init(cfg.IsDevelopment())
	log := logging.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	svc := parking.NewService(cfg.SlotCount, cfg.WaitCapacity, cfg.MaxVehicles, cfg.FeePerHour, *log)
	service, err := parking.NewInstrumentedService(svc, telemetryProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create parking service")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, service, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, service, telemetryProvider, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, service, telemetryProvider, sigChan)
	default:
		log.Fatal().Str("mode", *mode).Msg("invalid mode, must be cli, server, or both")
	}
}

func runCLI(ctx context.Context, cancel context.CancelFunc, service *parking.InstrumentedService, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Logger().Info().Msg("shutting down")
		cancel()
	}()

	shell := parking.NewShell(service, telemetryProvider)
	shell.Run(ctx)

	shutdownTelemetry(telemetryProvider)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, service *parking.InstrumentedService, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, service)

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("server shutdown error")
		}

		cancel()
	}()

	if err := srv.Start(); err != nil && err != context.Canceled {
		logging.Logger().Error().Err(err).Msg("server error")
	}

	shutdownTelemetry(telemetryProvider)
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, service *parking.InstrumentedService, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, service)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		shell := parking.NewShell(service, telemetryProvider)
		shell.Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("server shutdown error")
		}

		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && err != context.Canceled {
			logging.Logger().Error().Err(err).Msg("server error")
		}
	case <-cliDone:
		logging.Logger().Info().Msg("CLI exited")
	case <-ctx.Done():
		logging.Logger().Info().Msg("context cancelled")
	}

	shutdownTelemetry(telemetryProvider)
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("error shutting down telemetry")
	}
}
