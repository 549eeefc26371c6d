package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/engine/keys"
	mcache "github.com/radieske/escrow-bet-market/internal/market-service/cache"
	mhttp "github.com/radieske/escrow-bet-market/internal/market-service/http"
	"github.com/radieske/escrow-bet-market/internal/market-service/producer"
	"github.com/radieske/escrow-bet-market/internal/market-service/repo"
	"github.com/radieske/escrow-bet-market/internal/market-service/ws"
	"github.com/radieske/escrow-bet-market/internal/shared/auth"
	"github.com/radieske/escrow-bet-market/internal/shared/cache"
	"github.com/radieske/escrow-bet-market/internal/shared/config"
	"github.com/radieske/escrow-bet-market/internal/shared/db"
	"github.com/radieske/escrow-bet-market/internal/shared/kafka"
	"github.com/radieske/escrow-bet-market/internal/shared/logger"
	"github.com/radieske/escrow-bet-market/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "market-service"
	}

	log, err := logger.NewWithOptions(cfg.ServiceName, cfg.Env, logger.Options{File: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	policy, err := engine.ParsePolicy(cfg.FundingPolicy)
	if err != nil {
		log.Fatal("funding policy", zap.Error(err))
	}
	log.Info("starting service",
		zap.String("env", cfg.Env),
		zap.String("policy", string(policy)),
		zap.Duration("claim_window", cfg.ClaimWindow),
	)

	// Postgres: mercados, apostas e ledger
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: snapshot dos mercados e Pub/Sub do WS
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic market_events)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketEvents)
	defer writer.Close()

	deriver, err := keys.NewDeriver(keys.ProgramID(cfg.ProgramID), cfg.KeyCacheSize)
	if err != nil {
		log.Fatal("key deriver", zap.Error(err))
	}
	eng := engine.New(repo.NewPostgres(pg), deriver, engine.Config{
		Policy:      policy,
		ClaimWindow: cfg.ClaimWindow,
	}, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)

	api := mhttp.NewServer(log, eng,
		producer.NewKafkaPublisher(writer, cfg.TopicMarketEvents),
		mcache.New(rdb, cfg.MarketCacheTTL),
		auth.JWT{Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.JWTTokenTTL},
		mhttp.WithWebsocket(hub.HandleWS),
		mhttp.WithMetrics(mhttp.NewMetrics(prometheus.DefaultRegisterer)),
	)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, map[string]metrics.HealthFunc{
		"postgres": pg.PingContext,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api srv", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	_ = apiSrv.Shutdown(sctx)
	_ = metricsSrv.Shutdown(sctx)
}
