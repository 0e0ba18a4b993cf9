// Voicebot answers typed and spoken questions as a fixed persona by
// forwarding them, wrapped in a persona prompt, to the Gemini API.
//
// Usage:
//
//	voicebot [flags]
//	voicebot --config /path/to/voicebot.yaml
//
// @title       voicebot API
// @version     1.0
// @description Answers typed or spoken questions in a fixed first-person persona.
// @BasePath    /
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/nadzzz/voicebot/docs"
	"github.com/nadzzz/voicebot/internal/config"
	"github.com/nadzzz/voicebot/internal/dispatch"
	"github.com/nadzzz/voicebot/internal/health"
	"github.com/nadzzz/voicebot/internal/prompt"
	"github.com/nadzzz/voicebot/internal/provider"
	"github.com/nadzzz/voicebot/internal/provider/gemini"
	"github.com/nadzzz/voicebot/internal/transport"
	httptransport "github.com/nadzzz/voicebot/internal/transport/http"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/voicebot.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("voicebot %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("voicebot starting", "version", version)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A nil generator keeps the text path answering with the placeholder.
	var gen provider.Generator
	if cfg.Provider.APIKey != "" {
		client := gemini.New(cfg.Provider)
		gen = client
		slog.Info("using provider", "name", client.Name(), "model", cfg.Provider.Model)
	} else {
		slog.Warn("GEMINI_API_KEY not set, text answers use the placeholder and voice is disabled")
	}

	dispatcher := dispatch.New(prompt.Persona{
		Name:        cfg.Persona.Name,
		VoiceTraits: cfg.Persona.VoiceTraits,
	}, gen)

	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP))
	}
	if len(transports) == 0 {
		slog.Error("no transports enabled, enable transports.http in config")
		os.Exit(1)
	}

	healthServer := health.New(cfg.Server.HealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()
	if cfg.Transports.GRPC.Enabled {
		go func() {
			if err := healthServer.ServeGRPC(ctx, cfg.Transports.GRPC.Port); err != nil {
				slog.Error("grpc health failed", "error", err)
			}
		}()
	}

	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, dispatcher); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	healthServer.SetReady(true)
	slog.Info("voicebot ready",
		"persona", cfg.Persona.Name,
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("voicebot stopped")
}
