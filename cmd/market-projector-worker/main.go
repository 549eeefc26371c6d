package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/market-projector/consumer"
	"github.com/radieske/escrow-bet-market/internal/market-projector/pubsub"
	"github.com/radieske/escrow-bet-market/internal/market-projector/repository"
	mcache "github.com/radieske/escrow-bet-market/internal/market-service/cache"
	sharedcache "github.com/radieske/escrow-bet-market/internal/shared/cache"
	"github.com/radieske/escrow-bet-market/internal/shared/config"
	"github.com/radieske/escrow-bet-market/internal/shared/db"
	"github.com/radieske/escrow-bet-market/internal/shared/kafka"
	"github.com/radieske/escrow-bet-market/internal/shared/logger"
	"github.com/radieske/escrow-bet-market/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "market-projector-worker"
	}
	log, err := logger.NewWithOptions(cfg.ServiceName, cfg.Env, logger.Options{File: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group market-projector; DLQ para mensagens inválidas
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMarketEvents, "market-projector")
	defer reader.Close()
	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketEventsDLQ)
	defer dlq.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "market_proj_messages_consumed_total", Help: "mensagens consumidas"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "market_proj_cache_sets_total", Help: "sets no cache"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "market_proj_db_writes_total", Help: "escritas no banco (history+snapshot)"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "market_proj_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, persist, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		DLQ:         dlq,
		Repo:        repository.NewPostgresRepo(pg),
		Cache:       mcache.New(redisClient, cfg.MarketCacheTTL),
		Broadcaster: pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel),
		OnConsumed:  func() { consumed.Inc() },
		OnCached:    func() { cached.Inc() },
		OnPersist:   func() { persist.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, map[string]metrics.HealthFunc{
		"postgres": pg.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})
	defer metricsSrv.Close()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("market-projector started", zap.String("topic", cfg.TopicMarketEvents))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("market-projector stopped")
}
