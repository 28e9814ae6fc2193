package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocks/internal/config"
	"github.com/mamadbah2/stocks/internal/repository/mongodb"
	"github.com/mamadbah2/stocks/internal/repository/sheets"
	"github.com/mamadbah2/stocks/internal/repository/xlsx"
	"github.com/mamadbah2/stocks/internal/scheduler"
	"github.com/mamadbah2/stocks/internal/server/handlers"
	"github.com/mamadbah2/stocks/internal/server/router"
	authsvc "github.com/mamadbah2/stocks/internal/service/auth"
	backupsvc "github.com/mamadbah2/stocks/internal/service/backup"
	recordsvc "github.com/mamadbah2/stocks/internal/service/records"
	"github.com/mamadbah2/stocks/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store recordsvc.TableStore
	switch cfg.Store.Backend {
	case config.BackendSheets:
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		store = sheetsRepo
	default:
		store = xlsx.NewRepository(cfg.Store.DataFile, baseLogger.Named("repo.xlsx"))
	}
	baseLogger.Info("stock table backend selected", zap.String("backend", cfg.Store.Backend))

	var audit recordsvc.AuditSink
	if cfg.MongoDB.URI != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		audit = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, audit trail disabled")
	}

	recordSvc := recordsvc.NewService(store, audit, baseLogger.Named("svc.records"))
	authSvc := authsvc.NewService(cfg.Auth.Users, baseLogger.Named("svc.auth"))

	authHandler := handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth"))
	stockHandler := handlers.NewStockHandler(recordSvc, baseLogger.Named("handlers.stocks"))
	engine := router.New(authHandler, stockHandler, baseLogger.Named("router"))

	if cfg.Backup.Dir != "" {
		backups := backupsvc.NewService(recordSvc, cfg.Backup.Dir, baseLogger.Named("svc.backup"))
		sched, err := scheduler.NewScheduler(cfg.Backup, backups, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
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
