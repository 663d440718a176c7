package di

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/handler/api"
	mid "MarketPulse/internal/middleware"
	"MarketPulse/internal/provider"
	internalrepo "MarketPulse/internal/repository"
	svccache "MarketPulse/internal/service/cache"
	"MarketPulse/internal/service/indicator"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/internal/service/signal"
	"MarketPulse/internal/usecase"
	pkgcache "MarketPulse/pkg/cache"
	pkgch "MarketPulse/pkg/clickhouse"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	pkgkafka "MarketPulse/pkg/kafka"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/metrics"
	"MarketPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and applies the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideMarketStore creates the ClickHouse-backed market store.
func ProvideMarketStore(ch *pkgch.Client, cfg *config.Config, log *applogger.Logger) domrepo.MarketStore {
	store := internalrepo.NewCHMarketStore(ch, cfg.ClickHouse.Database)
	if s, ok := store.(*internalrepo.CHMarketStore); ok {
		s.SetLogger(log)
	}
	return store
}

// ProvideTTLCache creates the freshness-gated cache, with an optional Redis
// hot layer in front of the persistent store.
func ProvideTTLCache(ch *pkgch.Client, cfg *config.Config, log *applogger.Logger, m domrepo.Metrics) *svccache.TTLCache {
	store := internalrepo.NewCHCacheStore(ch, cfg.ClickHouse.Database)
	opts := []svccache.Option{svccache.WithMetrics(m)}
	if cfg.Cache.Redis.Enabled {
		if rc, err := provideRedisCache(cfg); err != nil {
			log.Warn("redis hot cache unavailable", applogger.Error(err))
		} else {
			// Memory-over-Redis layering keeps repeat hits off the wire.
			opts = append(opts, svccache.WithHotCache(pkgcache.NewLayeredCache(rc)))
		}
	}
	return svccache.New(store, log, opts...)
}

func provideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	host := cfg.Cache.Redis.Addr
	port := 6379
	if i := strings.LastIndex(host, ":"); i >= 0 {
		if p, err := strconv.Atoi(host[i+1:]); err == nil {
			port = p
			host = host[:i]
		}
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
}

// ProvideRateLimiter creates the persistent sliding-window limiter.
func ProvideRateLimiter(ch *pkgch.Client, cfg *config.Config, log *applogger.Logger, m domrepo.Metrics) *ratelimit.Limiter {
	store := internalrepo.NewCHRateStore(ch, cfg.ClickHouse.Database)
	return ratelimit.New(store, log,
		ratelimit.WithMetrics(m),
		ratelimit.WithCleanup(cfg.RateLimit.CleanupAge, 0.02),
	)
}

// ProvideProviderChain assembles the upstream fallback chains.
func ProvideProviderChain(cfg *config.Config, log *applogger.Logger, m domrepo.Metrics) *provider.Chain {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.Timeout))

	yahoo := provider.NewYahoo(client)
	stooq := provider.NewStooq(client)
	marketaux := provider.NewMarketaux(client, cfg.Providers.Marketaux.APIKey)
	newsapi := provider.NewNewsAPI(client, cfg.Providers.NewsAPI.APIKey)
	gdelt := provider.NewGDELT(client)

	return provider.NewChain(log,
		provider.WithQuoteProviders(yahoo, stooq),
		provider.WithHistoryProviders(yahoo, stooq),
		provider.WithNewsProviders(marketaux, newsapi, gdelt),
		provider.WithMetrics(m),
	)
}

// ProvideSentimentService creates the scoring service.
func ProvideSentimentService(store domrepo.MarketStore, log *applogger.Logger) *sentiment.Service {
	return sentiment.NewService(store, log)
}

// ProvideQuoteUseCase creates the quote read path.
func ProvideQuoteUseCase(chain *provider.Chain, cache *svccache.TTLCache, cfg *config.Config, log *applogger.Logger) *usecase.QuoteUseCase {
	return usecase.NewQuoteUseCase(chain, cache, cfg.Cache.QuoteTTL, log)
}

// ProvideHistoryUseCase creates the history read path.
func ProvideHistoryUseCase(chain *provider.Chain, cache *svccache.TTLCache, store domrepo.MarketStore, cfg *config.Config, log *applogger.Logger) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(chain, cache, store, cfg.Cache.DailyHistoryTTL, cfg.Cache.WeeklyHistoryTTL, log)
}

// ProvideNewsUseCase creates the news read path.
func ProvideNewsUseCase(chain *provider.Chain, cache *svccache.TTLCache, store domrepo.MarketStore, sent *sentiment.Service, cfg *config.Config, log *applogger.Logger) *usecase.NewsUseCase {
	return usecase.NewNewsUseCase(chain, cache, store, sent, cfg.Cache.NewsTTL, log)
}

// ProvideAggregatesUseCase creates the daily aggregate recompute path.
func ProvideAggregatesUseCase(chain *provider.Chain, store domrepo.MarketStore, log *applogger.Logger) *usecase.AggregatesUseCase {
	return usecase.NewAggregatesUseCase(chain, indicator.New(), store, log)
}

// ProvideInsightUseCase creates the blended insight path.
func ProvideInsightUseCase(aggs *usecase.AggregatesUseCase, store domrepo.MarketStore, sent *sentiment.Service, cfg *config.Config, log *applogger.Logger) *usecase.InsightUseCase {
	lookback := time.Duration(cfg.Sentiment.LookbackHours) * time.Hour
	return usecase.NewInsightUseCase(aggs, store, signal.NewBlender(), sent, lookback, log)
}

// ProvideSentimentUseCase creates the sentiment read path.
func ProvideSentimentUseCase(chain *provider.Chain, sent *sentiment.Service, log *applogger.Logger) *usecase.SentimentUseCase {
	return usecase.NewSentimentUseCase(chain, sent, log)
}

// ProvideCompareUseCase creates the multi-symbol fan-out.
func ProvideCompareUseCase(insight *usecase.InsightUseCase) *usecase.CompareUseCase {
	return usecase.NewCompareUseCase(insight)
}

// ProvideSentimentRollup creates the scheduled watchlist refresh.
func ProvideSentimentRollup(chain *provider.Chain, sent *sentiment.Service, cfg *config.Config, log *applogger.Logger) *usecase.SentimentRollup {
	lookback := time.Duration(cfg.Sentiment.LookbackHours) * time.Hour
	return usecase.NewSentimentRollup(chain, sent, cfg.Sentiment.Watchlist, lookback, cfg.Sentiment.RollupSchedule, log)
}

// ProvideMarketHandler wires the HTTP surface.
func ProvideMarketHandler(
	log *applogger.Logger,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	quotes *usecase.QuoteUseCase,
	history *usecase.HistoryUseCase,
	news *usecase.NewsUseCase,
	aggs *usecase.AggregatesUseCase,
	insight *usecase.InsightUseCase,
	sent *usecase.SentimentUseCase,
	compare *usecase.CompareUseCase,
) *api.MarketHandler {
	limits := api.Limits{
		Quote:         cfg.RateLimit.QuoteLimit,
		History:       cfg.RateLimit.HistoryLimit,
		News:          cfg.RateLimit.NewsLimit,
		Insight:       cfg.RateLimit.InsightLimit,
		WindowSeconds: cfg.RateLimit.WindowSeconds,
	}
	return api.NewMarketHandler(log, limiter, limits, quotes, history, news, aggs, insight, sent, compare)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when the ingest
// backend does not publish.
func ProvideKafkaProducer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Producer, error) {
	if cfg.Ingest.Backend != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	// With a broker available, ship deduplicated error-log batches to it as
	// well.
	log.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          cfg.Kafka.LogsTopic,
		Publisher:      producerLogSink{producer: producer},
	})
	return producer, nil
}

// producerLogSink adapts the Kafka producer to the logger's batch sink.
type producerLogSink struct {
	producer *pkgkafka.Producer
}

func (s producerLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}

// ProvideBarPublisher creates the Kafka publisher repository.
func ProvideBarPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer for the kafka ingest backend.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Ingest.Backend != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaBarsHandler registers the handler for the bars topic.
func ProvideKafkaBarsHandler(store domrepo.MarketStore, m domrepo.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	return usecase.NewKafkaBarsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideBarStream creates the WebSocket bar source, or nil when no feed is
// configured.
func ProvideBarStream(cfg *config.Config, log *applogger.Logger) domrepo.BarStream {
	if cfg.Ingest.Stream.URL == "" || len(cfg.Ingest.Stream.Symbols) == 0 {
		return nil
	}
	return internalrepo.NewStreamSource(
		cfg.Ingest.Stream.APIKey,
		cfg.Ingest.Stream.URL,
		cfg.Ingest.Stream.Symbols,
		cfg.Ingest.Stream.ReconnectDelay,
		cfg.Ingest.Stream.PingInterval,
		log,
	)
}

// ProvideBarProcessor creates the ingest routing processor.
func ProvideBarProcessor(
	pub domrepo.Publisher,
	store domrepo.MarketStore,
	m domrepo.Metrics,
	cfg *config.Config,
) *usecase.BarProcessor {
	return usecase.NewBarProcessor(pub, store, m, cfg.Ingest.Backend, cfg.Ingest.BatchSize, cfg.Ingest.BatchTimeout)
}

// ProvideBarCollector creates the stream consumer with its buffering
// pipeline.
func ProvideBarCollector(
	stream domrepo.BarStream,
	processor *usecase.BarProcessor,
	m domrepo.Metrics,
) *usecase.BarCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewRealtimePipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewBarCollector(stream, processor, m, pipe)
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler *api.MarketHandler,
	collector *usecase.BarCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	rollup *usecase.SentimentRollup,
	chClient *pkgch.Client,
	store domrepo.MarketStore,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, log, handler, collector, consumer, kh, rollup, chClient, store)
}
