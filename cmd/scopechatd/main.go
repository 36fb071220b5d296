package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"scopechat/internal/config"
	"scopechat/internal/handlers"
	"scopechat/internal/hub"
	"scopechat/internal/store"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("open store", zap.Error(err), zap.String("path", cfg.DBPath))
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.New(st, log)
	go h.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handlers.New(st, h, log).Register(app)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	log.Info("listening", zap.String("addr", cfg.Addr), zap.String("db", cfg.DBPath))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
