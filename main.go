package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/edaniels/golog"
	"github.com/spf13/pflag"

	"camdeck/internal/config"
	"camdeck/internal/console"
	"camdeck/internal/hub"
	"camdeck/internal/link"
	"camdeck/internal/pad"
	"camdeck/internal/server"
	"camdeck/internal/tray"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	config.DefineFlags(pflag.CommandLine)
	pflag.Parse()

	logger := golog.NewDevelopmentLogger("camdeck")

	settings, err := config.LoadSettings(pflag.CommandLine)
	if err != nil {
		logger.Fatalw("resolving settings", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	var provider pad.Provider
	if !settings.NoInput {
		sdl := pad.NewSDLProvider(logger)
		provider = sdl
		go sdl.Run(ctx)
	}

	opts := console.Options{
		Provider:   provider,
		Deadzone:   settings.Deadzone,
		PressLatch: settings.PressLatch,
		PollHz:     settings.PollHz,
		SendHz:     settings.SendHz,
	}

	shutdownRequested := make(chan struct{})
	serverErrCh := make(chan error, 1)
	var srv *server.Server

	if settings.Connect != "" {
		// Console-only: attach to a remote camdeck server.
		client := link.NewClient(settings.Connect, logger)
		go client.Run(ctx)

		cons := console.New(client, opts, logger)
		go cons.Run(ctx)
		logger.Infow("console attached", "url", settings.Connect)
	} else {
		cfg, err := config.Load(settings.ConfigPath)
		if err != nil {
			logger.Fatalw("loading config", "error", err)
		}

		h := hub.New(logger)
		engine, err := server.NewEngine(cfg, settings.ConfigPath, h, logger)
		if err != nil {
			logger.Fatalw("building device engine", "error", err)
		}

		loopback := link.NewLoopback(engine.Local())
		h.Observe(loopback.Deliver)

		if err := engine.ConnectAll(ctx); err != nil {
			logger.Fatalw("connecting devices", "error", err)
		}

		go h.Run()
		go engine.Run(ctx)

		cons := console.New(loopback, opts, logger)
		h.OnInput(cons.HandleInput)
		go cons.Run(ctx)

		srv = server.New(h, getWebFS(), settings.Listen, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serverErrCh <- err
			}
		}()

		url := listenURL(settings.Listen)
		logger.Infow("camdeck started", "url", url)

		// The tray needs the process main loop on Windows; elsewhere a
		// plain Ctrl+C is the expected way out.
		if runtime.GOOS == "windows" && !settings.NoTray {
			go func() {
				t := tray.New(url, func() { close(shutdownRequested) }, logger)
				t.Run(tray.GetIcon())
			}()
		} else {
			logger.Info("press Ctrl+C to exit")
		}
	}

	select {
	case <-sigCh:
		logger.Info("shutting down")
		cancel()
	case <-shutdownRequested:
		logger.Info("shutdown requested from tray")
		cancel()
	case err := <-serverErrCh:
		logger.Errorw("http server failed", "error", err)
		cancel()
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("http server shutdown", "error", err)
		}
	}

	logger.Info("camdeck stopped")
}

func listenURL(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "http://localhost" + listen
	}
	return "http://" + listen
}
