package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/infigaming-com/currency-converter/config"
	"github.com/infigaming-com/currency-converter/converter"
	"github.com/infigaming-com/currency-converter/currency"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const latestBody = `{"base":"EUR","date":"2024-05-10","rates":{"AUD":1.5693,"CZK":25.524,"GBP":0.88115,"JPY":133.7,"USD":1.1885}}`

func newProviderServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/latest" || r.URL.Query().Get("base") != "EUR" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(latestBody))
	}))
	t.Cleanup(server.Close)
	return server, calls
}

func testConfig(t *testing.T, url string) *config.Config {
	return &config.Config{
		Rates: config.RatesConfig{URL: url, RequestTimeout: time.Second},
		Symbols: config.SymbolsConfig{
			Separator: currency.DefaultSeparator,
		},
		Snapshot: config.SnapshotConfig{
			Backend: config.SnapshotBackendFile,
			Path:    filepath.Join(t.TempDir(), "rates.json"),
			Key:     "rates",
		},
		Lock:  config.LockConfig{Backend: config.LockBackendLocal},
		Redis: config.RedisConfig{ConnectTimeout: time.Second},
	}
}

func gbp() *string {
	code := "GBP"
	return &code
}

func TestBuild_FileBackend(t *testing.T) {
	server, calls := newProviderServer(t)
	cfg := testConfig(t, server.URL)

	a, err := Build(context.Background(), zap.NewNop(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"AUD", "CZK", "EUR", "GBP", "JPY", "USD"}, a.Store.AvailableCurrencies())
	assert.FileExists(t, cfg.Snapshot.Path)

	result := a.Converter.Convert(context.Background(), converter.Request{Amount: 155.5, InputCurrency: "€", OutputCurrency: gbp()})
	require.False(t, result.Failed(), result.Output.Error)
	assert.True(t, decimal.RequireFromString("137.02").Equal(result.Output.Amounts["GBP"]))

	// symbols of currencies without a rate are dropped
	_, ok := a.Symbols.Lookup("₹")
	assert.False(t, ok)
	codes, ok := a.Symbols.Lookup("$")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"USD", "AUD"}, codes)
}

func TestBuild_ReusesPersistedSnapshot(t *testing.T) {
	server, calls := newProviderServer(t)
	cfg := testConfig(t, server.URL)

	first, err := Build(context.Background(), zap.NewNop(), cfg, nil)
	require.NoError(t, err)
	first.Close()

	second, err := Build(context.Background(), zap.NewNop(), cfg, nil)
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, int32(1), calls.Load())
	assert.Len(t, second.Store.AvailableCurrencies(), 6)
}

func TestBuild_MemoryBackend(t *testing.T) {
	server, _ := newProviderServer(t)
	cfg := testConfig(t, server.URL)
	cfg.Snapshot.Backend = config.SnapshotBackendMemory

	a, err := Build(context.Background(), zap.NewNop(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Len(t, a.Store.AvailableCurrencies(), 6)
}

func TestBuild_RedisBackend(t *testing.T) {
	server, _ := newProviderServer(t)
	mr := miniredis.RunT(t)
	cfg := testConfig(t, server.URL)
	cfg.Snapshot.Backend = config.SnapshotBackendRedis
	cfg.Lock.Backend = config.LockBackendRedis
	cfg.Redis.Addr = mr.Addr()

	a, err := Build(context.Background(), zap.NewNop(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, mr.Exists(cfg.Snapshot.Key))
	result := a.Converter.Convert(context.Background(), converter.Request{Amount: 1, InputCurrency: "EUR", OutputCurrency: gbp()})
	require.False(t, result.Failed(), result.Output.Error)
}

func TestBuild_RedisUnavailable(t *testing.T) {
	server, _ := newProviderServer(t)
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t, server.URL)
	cfg.Lock.Backend = config.LockBackendRedis
	cfg.Redis.Addr = addr

	_, err := Build(context.Background(), zap.NewNop(), cfg, nil)
	assert.Error(t, err)
}

func TestBuild_ProviderUnreachable(t *testing.T) {
	server, _ := newProviderServer(t)
	url := server.URL
	server.Close()

	a, err := Build(context.Background(), zap.NewNop(), testConfig(t, url), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Empty(t, a.Store.AvailableCurrencies())
	result := a.Converter.Convert(context.Background(), converter.Request{Amount: 1, InputCurrency: "EUR"})
	assert.Equal(t, "Connection error!", result.Output.Error)
}

func TestBuild_SymbolsFile(t *testing.T) {
	server, _ := newProviderServer(t)
	cfg := testConfig(t, server.URL)
	cfg.Symbols.File = filepath.Join(t.TempDir(), "symbols.csv")
	cfg.Symbols.Separator = ";"
	require.NoError(t, os.WriteFile(cfg.Symbols.File, []byte("£;GBP\nKč;CZK\n"), 0o600))

	a, err := Build(context.Background(), zap.NewNop(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, 2, a.Symbols.Len())

	require.NoError(t, os.WriteFile(cfg.Symbols.File, []byte("£;GBP;extra\n"), 0o600))
	_, err = Build(context.Background(), zap.NewNop(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, currency.ErrSymbolFormat))
}

func TestBuild_UnknownBackend(t *testing.T) {
	server, _ := newProviderServer(t)
	cfg := testConfig(t, server.URL)
	cfg.Snapshot.Backend = "sqlite"

	_, err := Build(context.Background(), zap.NewNop(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidValue))
}

func TestNewRecorder_Disabled(t *testing.T) {
	recorder, shutdown, err := NewRecorder(config.TelemetryConfig{})
	require.NoError(t, err)
	defer shutdown()
	assert.NotNil(t, recorder)
}

func TestRefreshTimeout(t *testing.T) {
	tcs := []struct {
		name   string
		cfg    config.RatesConfig
		expect time.Duration
	}{
		{name: "single attempt", cfg: config.RatesConfig{RequestTimeout: 5 * time.Second}, expect: 6 * time.Second},
		// 3 attempts of 5s, 1s+2s backoff, 1s slack
		{name: "two retries", cfg: config.RatesConfig{RequestTimeout: 5 * time.Second, MaxRetries: 2}, expect: 19 * time.Second},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, RefreshTimeout(tc.cfg))
		})
	}
}
