package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/miskatonen/duolux/internal/sim"
	"github.com/miskatonen/duolux/pkg/config"
	"github.com/miskatonen/duolux/pkg/mqtt"
)

func main() {
	scenarioPath := pflag.String("scenario", "", "Path to the scenario YAML file")

	cfg := config.NewConfig()
	cfg.ServiceName = "ambient-sim"
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()

	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: ambient-sim --scenario <file.yaml>")
		os.Exit(1)
	}

	scenario, err := sim.LoadScenario(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scenario error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Starting Duolux Ambient Simulator",
		"scenario", scenario.Name,
		"location", scenario.Location,
		"mqtt_broker", cfg.MQTTAddress())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	mqttClient := mqtt.NewClient(cfg, logger)
	if err := mqttClient.Connect(ctx); err != nil {
		logger.Error("Failed to connect to MQTT", "error", err)
		os.Exit(1)
	}
	defer mqttClient.Disconnect()

	player := sim.NewPlayer(mqttClient, logger)
	if err := player.Play(ctx, scenario); err != nil {
		logger.Error("Playback failed", "error", err)
		os.Exit(1)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
