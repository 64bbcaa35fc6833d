package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SnapshotBackendFile   = "file"
	SnapshotBackendMemory = "memory"
	SnapshotBackendRedis  = "redis"
	SnapshotBackendS3     = "s3"

	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

type Config struct {
	Rates     RatesConfig
	Symbols   SymbolsConfig
	Snapshot  SnapshotConfig
	Lock      LockConfig
	Redis     RedisConfig
	S3        S3Config
	Server    ServerConfig
	Telemetry TelemetryConfig
}

type RatesConfig struct {
	URL            string
	AccessKey      string
	RequestTimeout time.Duration
	MaxRetries     int
}

// SymbolsConfig points at a symbol resource. An empty File selects the table
// shipped with the module.
type SymbolsConfig struct {
	File      string
	Separator string
}

type SnapshotConfig struct {
	Backend string
	Path    string
	Key     string
}

type LockConfig struct {
	Backend string
}

type RedisConfig struct {
	Addr           string
	DB             int64
	Password       string
	ConnectTimeout time.Duration
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyId     string
	SecretAccessKey string
}

type ServerConfig struct {
	Port int64
	Mode string
}

// TelemetryConfig enables metric export when one of the endpoints is set.
type TelemetryConfig struct {
	OTLPEndpoint     string
	OTLPGRPCEndpoint string
	ServiceName      string
	Environment      string
}

func (t TelemetryConfig) Enabled() bool {
	return t.OTLPEndpoint != "" || t.OTLPGRPCEndpoint != ""
}

// Load reads the process environment after applying the given .env files,
// ".env" when none are named. Missing files are ignored; variables already
// set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		_ = godotenv.Load(file)
	}

	p := &parser{}
	cfg := &Config{
		Rates: RatesConfig{
			URL:            getEnv("RATES_API_URL", "https://api.frankfurter.app"),
			AccessKey:      getEnv("RATES_API_KEY", ""),
			RequestTimeout: p.duration("RATES_REQUEST_TIMEOUT", 5*time.Second),
			MaxRetries:     int(p.integer("RATES_MAX_RETRIES", 0)),
		},
		Symbols: SymbolsConfig{
			File:      getEnv("SYMBOLS_FILE", ""),
			Separator: getEnv("SYMBOLS_SEPARATOR", "\t"),
		},
		Snapshot: SnapshotConfig{
			Backend: p.oneOf("SNAPSHOT_BACKEND", SnapshotBackendFile,
				SnapshotBackendFile, SnapshotBackendMemory, SnapshotBackendRedis, SnapshotBackendS3),
			Path: getEnv("SNAPSHOT_PATH", "rates.json"),
			Key:  getEnv("SNAPSHOT_KEY", "currency-converter/rates.json"),
		},
		Lock: LockConfig{
			Backend: p.oneOf("LOCK_BACKEND", LockBackendLocal, LockBackendLocal, LockBackendRedis),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			DB:             p.integer("REDIS_DB", 0),
			Password:       getEnv("REDIS_PASSWORD", ""),
			ConnectTimeout: p.duration("REDIS_CONNECT_TIMEOUT", 5*time.Second),
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "auto"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyId:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
		Server: ServerConfig{
			Port: p.integer("SERVER_PORT", 8080),
			Mode: getEnv("SERVER_MODE", "release"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint:     getEnv("OTLP_ENDPOINT", ""),
			OTLPGRPCEndpoint: getEnv("OTLP_GRPC_ENDPOINT", ""),
			ServiceName:      getEnv("SERVICE_NAME", "currency-converter"),
			Environment:      getEnv("ENVIRONMENT", "development"),
		},
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.Snapshot.Backend == SnapshotBackendS3 && cfg.S3.Bucket == "" {
		return nil, ErrMissingValue.Wrapf("S3_BUCKET is required for the s3 snapshot backend")
	}
	if cfg.Rates.MaxRetries < 0 {
		return nil, ErrInvalidValue.Wrapf("RATES_MAX_RETRIES must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parser keeps the first conversion error.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = ErrInvalidValue.Wrapf("%s=%q: %v", key, value, err)
	}
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, value, err)
		return defaultValue
	}
	return d
}

func (p *parser) integer(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		p.fail(key, value, err)
		return defaultValue
	}
	return n
}

func (p *parser) oneOf(key, defaultValue string, allowed ...string) string {
	value := getEnv(key, defaultValue)
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	p.fail(key, value, fmt.Errorf("expected one of %s", strings.Join(allowed, ", ")))
	return defaultValue
}
