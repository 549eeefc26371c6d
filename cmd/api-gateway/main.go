package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/gateway"
	"github.com/radieske/escrow-bet-market/internal/shared/config"
	"github.com/radieske/escrow-bet-market/internal/shared/logger"
	"github.com/radieske/escrow-bet-market/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "api-gateway"
	}
	log, err := logger.NewWithOptions(cfg.ServiceName, cfg.Env, logger.Options{File: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	h, err := gateway.New(gateway.Targets{Market: cfg.MarketURL, Wallet: cfg.WalletURL}, log)
	if err != nil {
		log.Fatal("gateway targets", zap.Error(err))
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, nil)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("api-gateway listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("gateway failed", zap.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	_ = srv.Shutdown(sctx)
	_ = metricsSrv.Shutdown(sctx)
}
