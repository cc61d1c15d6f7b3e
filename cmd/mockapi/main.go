package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/papapizza/internal/config"
	"github.com/fjod/papapizza/internal/fakeapi"
	"github.com/fjod/papapizza/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "config file")
	addr := flag.String("addr", "", "listen address, overrides mock_api.addr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.MockAPI.Addr = *addr
	}

	log := logger.New(logger.Options{
		Service: "papapizza-mockapi",
		Env:     cfg.Env,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
	})

	menu, err := loadMenu(cfg.MockAPI.MenuFile)
	if err != nil {
		log.Error("failed to load menu", slog.Any("err", err))
		os.Exit(1)
	}
	store := fakeapi.NewStore(menu)

	srv := &http.Server{
		Addr: cfg.MockAPI.Addr,
		Handler: fakeapi.NewRouter(store, log, fakeapi.RouterOptions{
			RequestTimeout: cfg.MockAPI.RequestTimeout,
			AccessLog:      true,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("mock vendor api starting",
			slog.String("addr", cfg.MockAPI.Addr),
			slog.String("vendor", menu.Vendor),
			slog.Int("products", len(menu.Products)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MockAPI.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("server exited")
}

func loadMenu(path string) (fakeapi.Menu, error) {
	if path == "" {
		return fakeapi.DefaultMenu()
	}
	return fakeapi.LoadMenu(path)
}
