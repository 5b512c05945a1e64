package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sebbas-5pg/ryori-web/internal/config"
	"github.com/sebbas-5pg/ryori-web/internal/draft"
	"github.com/sebbas-5pg/ryori-web/internal/env"
	"github.com/sebbas-5pg/ryori-web/internal/log"
	"github.com/sebbas-5pg/ryori-web/internal/setup"
	"github.com/sebbas-5pg/ryori-web/internal/submit"
	"github.com/sebbas-5pg/ryori-web/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf, err := config.LoadConfig()
	if err != nil {
		log.New(nil).Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := log.NewForEnv(conf.Env)

	store, err := setup.Store(conf, logger)
	if err != nil {
		logger.Error("failed to setup store client", slog.Any("error", err))
		os.Exit(1)
	}

	images, err := setup.Images(conf)
	if err != nil {
		logger.Error("failed to setup image resolver", slog.Any("error", err))
		os.Exit(1)
	}

	environment := &env.Env{
		Logger:    logger,
		Store:     store,
		Images:    images,
		Drafts:    draft.NewSessions(draft.DefaultTTL),
		Submitter: submit.New(store, logger),
		Config:    conf,
	}

	if err := web.Start(ctx, environment); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
