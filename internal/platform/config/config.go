package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	Screening ScreeningConfig
	Monitor   MonitorConfig

	Fundamentals FundamentalsConfig
}

// RedisConfig configures the optional verdict cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional screening audit publisher.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// ScreeningConfig holds the religious-compliance ratio ceilings and the
// verdict cache TTL.
type ScreeningConfig struct {
	DebtToAssetsMax        float64
	CashToAssetsMax        float64
	ReceivablesToMarketMax float64
	CacheTTL               time.Duration
}

// MonitorConfig holds the registry health thresholds. Zero values are
// replaced by defaults in monitor.New, so a partial config is safe.
type MonitorConfig struct {
	CoverageWarnBelow     float64
	CoverageCriticalBelow float64
	DuplicatesWarnAbove   int
	DuplicatesCritAbove   int
	IssuesWarnAbove       int
	IssuesCritAbove       int
	Watchlist             []string
}

// FundamentalsConfig configures the external financial-data provider.
type FundamentalsConfig struct {
	BaseURL      string
	APIKey       string
	CallInterval time.Duration
	Timeout      time.Duration
}

// defaultWatchlist is the out-of-the-box set of large caps whose absence from
// the registry signals a coverage problem. TENET_WATCHLIST replaces it.
var defaultWatchlist = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA"}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:        envOr("TENET_ADDR", ":8080"),
		PostgresURL: os.Getenv("TENET_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("TENET_REDIS_URL"),
			PoolSize:     envInt("TENET_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("TENET_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("TENET_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("TENET_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("TENET_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("TENET_KAFKA_BROKERS")),
			AuditTopic: envOr("TENET_AUDIT_TOPIC", "tenet.screening.audit"),
		},
		Screening: ScreeningConfig{
			DebtToAssetsMax:        envFloat("TENET_MAX_DEBT_RATIO", 0.30),
			CashToAssetsMax:        envFloat("TENET_MAX_CASH_RATIO", 0.30),
			ReceivablesToMarketMax: envFloat("TENET_MAX_RECEIVABLES_RATIO", 0.49),
			CacheTTL:               envDuration("TENET_VERDICT_CACHE_TTL", 15*time.Minute),
		},
		Monitor: MonitorConfig{
			CoverageWarnBelow:     envFloat("TENET_COVERAGE_WARN_BELOW", 50),
			CoverageCriticalBelow: envFloat("TENET_COVERAGE_CRIT_BELOW", 20),
			DuplicatesWarnAbove:   envInt("TENET_DUPES_WARN_ABOVE", 10),
			DuplicatesCritAbove:   envInt("TENET_DUPES_CRIT_ABOVE", 20),
			IssuesWarnAbove:       envInt("TENET_ISSUES_WARN_ABOVE", 5),
			IssuesCritAbove:       envInt("TENET_ISSUES_CRIT_ABOVE", 10),
			Watchlist:             envList("TENET_WATCHLIST", defaultWatchlist),
		},
		Fundamentals: FundamentalsConfig{
			BaseURL:      os.Getenv("TENET_FUNDAMENTALS_URL"),
			APIKey:       os.Getenv("TENET_FUNDAMENTALS_API_KEY"),
			CallInterval: envDuration("TENET_FUNDAMENTALS_INTERVAL", time.Second),
			Timeout:      envDuration("TENET_FUNDAMENTALS_TIMEOUT", 10*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return splitList(v)
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
