package app

import (
	"context"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	"github.com/infigaming-com/currency-converter/cache"
	"github.com/infigaming-com/currency-converter/config"
	"github.com/infigaming-com/currency-converter/converter"
	"github.com/infigaming-com/currency-converter/currency"
	"github.com/infigaming-com/currency-converter/filestore"
	"github.com/infigaming-com/currency-converter/lock"
	"github.com/infigaming-com/currency-converter/observability/metrics"
	"github.com/infigaming-com/currency-converter/rate"
	"github.com/infigaming-com/currency-converter/request"
	"github.com/infigaming-com/currency-converter/snapshot"
	"github.com/infigaming-com/currency-converter/util"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const memorySnapshotCacheSize = 1 << 20

// App holds the wired converter and everything it depends on.
type App struct {
	Converter *converter.Converter
	Store     *snapshot.Store
	Symbols   *currency.SymbolTable

	closers []func()
}

// Close releases clients in reverse creation order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Build wires a converter from cfg. The initial snapshot is loaded here, so
// an unreachable provider is logged and leaves the store empty, while bad
// configuration and a malformed symbols file fail.
func Build(ctx context.Context, lg *zap.Logger, cfg *config.Config, recorder metrics.Recorder) (*App, error) {
	if recorder == nil {
		recorder = metrics.NewNopRecorder()
	}
	a := &App{}

	var redisClient *redis.Client
	if cfg.Snapshot.Backend == config.SnapshotBackendRedis || cfg.Lock.Backend == config.LockBackendRedis {
		client, err := util.NewRedisClient(ctx, util.RedisConfig{
			Addr:           cfg.Redis.Addr,
			DB:             cfg.Redis.DB,
			Password:       cfg.Redis.Password,
			ConnectTimeout: cfg.Redis.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		redisClient = client
		a.closers = append(a.closers, func() { _ = client.Close() })
	}

	storage, err := newStorage(ctx, lg, cfg, redisClient)
	if err != nil {
		a.Close()
		return nil, err
	}

	storeOpts := []snapshot.Option{
		snapshot.WithRecorder(recorder),
		snapshot.WithRefreshTimeout(RefreshTimeout(cfg.Rates)),
	}
	if cfg.Lock.Backend == config.LockBackendRedis {
		storeOpts = append(storeOpts, snapshot.WithLock(lock.NewRedisLock(redisClient)))
	}

	provider := NewProvider(lg, cfg.Rates, recorder)
	a.Store = snapshot.NewStore(ctx, lg, provider, storage, storeOpts...)

	if cfg.Symbols.File != "" {
		a.Symbols, err = currency.LoadSymbolFile(cfg.Symbols.File, cfg.Symbols.Separator, a.Store.IsAvailable)
	} else {
		a.Symbols, err = currency.LoadDefaultSymbolTable(a.Store.IsAvailable)
	}
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load currency symbols: %w", err)
	}
	lg.Info("loaded currency symbols", zap.Int("symbols", a.Symbols.Len()), zap.Int("currencies", len(a.Store.AvailableCurrencies())))

	a.Converter = converter.New(lg, a.Store, a.Symbols, converter.WithRecorder(recorder))
	return a, nil
}

// NewProvider builds the HTTP rate provider and reports each round trip to
// recorder.
func NewProvider(lg *zap.Logger, cfg config.RatesConfig, recorder metrics.Recorder) rate.RateProvider {
	return rate.NewHTTPRateProvider(lg, cfg.URL,
		rate.WithAccessKey(cfg.AccessKey),
		rate.WithRequestTimeout(cfg.RequestTimeout),
		rate.WithMaxRetries(cfg.MaxRetries),
		rate.WithRequestRecorder(func(data *request.RequestRecordData) {
			recorder.RecordProviderRequest(context.Background(), data.HttpStatusCode, time.Duration(data.Duration)*time.Millisecond)
		}),
	)
}

// RefreshTimeout is the longest a provider fetch can take with cfg: every
// attempt timing out plus the linear backoff between attempts, and a second
// of slack for decoding.
func RefreshTimeout(cfg config.RatesConfig) time.Duration {
	attempts := time.Duration(cfg.MaxRetries + 1)
	backoff := request.DefaultRetryBackoff * time.Duration(cfg.MaxRetries*(cfg.MaxRetries+1)/2)
	return cfg.RequestTimeout*attempts + backoff + time.Second
}

func newStorage(ctx context.Context, lg *zap.Logger, cfg *config.Config, redisClient *redis.Client) (snapshot.Storage, error) {
	switch cfg.Snapshot.Backend {
	case config.SnapshotBackendFile:
		return snapshot.NewFileStorage(cfg.Snapshot.Path), nil
	case config.SnapshotBackendMemory:
		return snapshot.NewCacheStorage(cache.NewFreeCache(freecache.NewCache(memorySnapshotCacheSize)), cfg.Snapshot.Key), nil
	case config.SnapshotBackendRedis:
		return snapshot.NewCacheStorage(cache.NewRedisCache(lg, redisClient), cfg.Snapshot.Key), nil
	case config.SnapshotBackendS3:
		store, err := filestore.NewS3FileStore(ctx, filestore.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyId:     cfg.S3.AccessKeyId,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return snapshot.NewObjectStorage(store, cfg.Snapshot.Key), nil
	default:
		return nil, config.ErrInvalidValue.Wrapf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}
}

// NewRecorder exports metrics over OTLP when telemetry is configured and
// discards them otherwise.
func NewRecorder(cfg config.TelemetryConfig) (metrics.Recorder, func(), error) {
	if !cfg.Enabled() {
		return metrics.NewNopRecorder(), func() {}, nil
	}
	exporter, shutdown, err := metrics.NewMetricExporter(
		metrics.WithServiceName(cfg.ServiceName),
		metrics.WithEnvironment(cfg.Environment),
		metrics.WithOTLPEndpoint(cfg.OTLPEndpoint),
		metrics.WithOTLPGRPCEndpoint(cfg.OTLPGRPCEndpoint),
	)
	if err != nil {
		return nil, nil, err
	}
	recorder, err := exporter.Recorder()
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	return recorder, shutdown, nil
}
