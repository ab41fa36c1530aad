package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/lfmachado/rebanho/internal/config"
	"github.com/lfmachado/rebanho/internal/repository/mongodb"
	"github.com/lfmachado/rebanho/internal/repository/sheets"
	"github.com/lfmachado/rebanho/internal/scheduler"
	"github.com/lfmachado/rebanho/internal/server/handlers"
	"github.com/lfmachado/rebanho/internal/server/router"
	authsvc "github.com/lfmachado/rebanho/internal/service/auth"
	rebanhosvc "github.com/lfmachado/rebanho/internal/service/rebanho"
	relatoriosvc "github.com/lfmachado/rebanho/internal/service/relatorio"
	"github.com/lfmachado/rebanho/pkg/clients/notify"
	"github.com/lfmachado/rebanho/pkg/ids"
	"github.com/lfmachado/rebanho/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(os.Getenv("LOG_LEVEL")))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoClient, err := mongodb.Connect(context.Background(), cfg.MongoDB)
	if err != nil {
		baseLogger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	db := mongoClient.Database()
	animalRepo := mongodb.NewAnimalRepository(db, baseLogger.Named("repo.animais"))
	contaRepo, err := mongodb.NewContaRepository(context.Background(), db, baseLogger.Named("repo.contas"))
	if err != nil {
		baseLogger.Fatal("failed to init account repository", zap.Error(err))
	}

	var planilha sheets.Repository
	if cfg.Sheets.CredentialsPath != "" {
		planilha, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("sheets export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, herd export disabled")
	}

	var notifier notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Notify)
		baseLogger.Info("notification webhook enabled")
	} else {
		baseLogger.Warn("notification webhook missing, reminders and reset delivery disabled")
	}

	rebanhoSvc := rebanhosvc.NewService(animalRepo, ids.NewGenerator(), baseLogger.Named("svc.rebanho"))
	authSvc := authsvc.NewService(contaRepo, notifier, cfg.Auth, baseLogger.Named("svc.auth"))
	relatorioSvc := relatoriosvc.NewService(rebanhoSvc, planilha, baseLogger.Named("svc.relatorio"))

	engine := router.New(router.Handlers{
		Auth:      handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth")),
		Animal:    handlers.NewAnimalHandler(rebanhoSvc, baseLogger.Named("handlers.animais")),
		Evento:    handlers.NewEventoHandler(rebanhoSvc, baseLogger.Named("handlers.eventos")),
		Relatorio: handlers.NewRelatorioHandler(relatorioSvc, cfg.Lembretes.HorizonteDias, baseLogger.Named("handlers.relatorio")),
	}, authSvc, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Lembretes, authSvc, relatorioSvc, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: the stream endpoints hold the response open.
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
