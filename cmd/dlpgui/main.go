package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/rs/cors"

	"github.com/pricisTrail/dlpgui/internal/config"
	"github.com/pricisTrail/dlpgui/internal/download"
	"github.com/pricisTrail/dlpgui/internal/platform"
	httptransport "github.com/pricisTrail/dlpgui/internal/transport/http"
	"github.com/pricisTrail/dlpgui/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	locator := &platform.Locator{
		FFmpegOverride: cfg.Tools.FFmpegPath,
		YtDlpOverride:  cfg.Tools.YtDlpPath,
	}
	binPath := locator.YtDlpPath()
	logger.Info("resolved tools", "yt_dlp", binPath, "ffmpeg", locator.FFmpegPath())

	metadata := platform.NewMetadataService(binPath, logger)
	if cfg.Metadata.Timeout > 0 {
		metadata.SetTimeout(cfg.Metadata.Timeout)
	}

	hub := ws.NewHub(logger)

	registry := download.NewRegistry()
	downloads := download.NewService(binPath, platform.NewExecSpawner(), locator, registry, hub, logger)
	downloads.SetOutputTemplate(cfg.Download.OutputTemplate)

	handler := httptransport.NewHandler(metadata, downloads, httptransport.Defaults{
		DownloadDir: cfg.Download.Dir,
		Subtitles:   cfg.Download.Subtitles,
		UseAria2c:   cfg.Download.UseAria2c,
	})
	router := httptransport.NewRouter(handler, hub.HandleWS)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server listening", "addr", addr)
	if err := http.ListenAndServe(addr, c.Handler(router)); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
