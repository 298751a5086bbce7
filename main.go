package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/soar/MotionControllerView/internal/asset"
	"github.com/soar/MotionControllerView/internal/config"
	"github.com/soar/MotionControllerView/internal/gamepad/sdlreader"
	"github.com/soar/MotionControllerView/internal/hub"
	"github.com/soar/MotionControllerView/internal/logger"
	"github.com/soar/MotionControllerView/internal/motion"
	"github.com/soar/MotionControllerView/internal/scene"
	"github.com/soar/MotionControllerView/internal/server"
	"github.com/soar/MotionControllerView/internal/tray"
)

// os.Interrupt covers Ctrl+C on Windows and SIGINT elsewhere
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Error("exiting", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	sc := scene.New()
	importer := &asset.GLTFImporter{Source: asset.NewSource(cfg.Assets.Base)}
	loader := asset.NewLoader(importer, asset.RetryPolicy{MaxTries: cfg.Assets.MaxTries}, log)
	registry := motion.NewRegistry(motion.WindowsMixedReality(), sc, loader, log)

	reader := sdlreader.NewReader(log, sdlreader.Options{
		Deadzone: cfg.Gamepad.Deadzone,
		Hand:     cfg.Gamepad.Hand,
	})

	h := hub.NewHub(log)
	go h.Run()

	broadcaster := hub.NewBroadcaster(h, registry, log)
	broadcasterDone := make(chan struct{})
	go broadcaster.Run(broadcasterDone)

	srv := server.New(h, broadcaster, registry, getFrontendFS(), cfg.Addr, log)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	log.Info("MotionControllerView started",
		zap.String("url", cfg.URL()),
		zap.String("assets", cfg.Assets.Base))

	shutdownRequested := make(chan struct{})
	if cfg.Tray {
		t := tray.New(cfg.URL(), func() { close(shutdownRequested) }, log)
		registry.OnControllerAdded().Add(func(c *motion.Controller) {
			key := c.Key()
			c.OnModelLoaded().Add(func(*motion.Model) { t.ControllerBound(key) })
		})
		go t.Run(tray.Icon())
	} else {
		log.Info("press Ctrl+C to exit")
	}

	// SDL wants its own locked thread; Run handles that and returns on cancel.
	var readerErr error
	readerDone := make(chan struct{})
	go func() {
		readerErr = reader.Run(ctx)
		close(readerDone)
	}()

	registryDone := make(chan struct{})
	go func() {
		registry.Run(ctx, reader.Frames())
		close(registryDone)
	}()

	var runErr error
	select {
	case <-sigCh:
		log.Info("shutting down")
	case <-shutdownRequested:
		log.Info("shutdown requested from tray")
	case err := <-serverErrCh:
		runErr = fmt.Errorf("http server: %w", err)
	case <-readerDone:
		// Nothing drives the scene once the reader is gone.
		if readerErr != nil {
			runErr = fmt.Errorf("gamepad reader: %w", readerErr)
		}
	}
	cancel()

	<-readerDone
	<-registryDone
	registry.Close()
	close(broadcasterDone)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("MotionControllerView stopped")
	return runErr
}
