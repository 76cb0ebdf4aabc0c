package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Overpass  OverpassConfig
	Nominatim NominatimConfig
	History   HistoryConfig
	Worker    WorkerConfig
	APIKeys   map[string]string
}

type ServerConfig struct {
	Host                 string
	Port                 int
	Env                  string
	CORSOrigins          string
	TrustForwardedFor    bool
	SlowRequestThreshold time.Duration
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	GeocodeCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type RateLimitConfig struct {
	Requests      int
	Window        time.Duration
	SweepInterval time.Duration
	StatsEnabled  bool
}

type OverpassConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	QueryTimeout   time.Duration
	RequestsPerSec float64
}

type NominatimConfig struct {
	BaseURL        string
	UserAgent      string
	RequestTimeout time.Duration
	RequestsPerSec float64
}

// HistoryConfig - куда уходят записи истории: postgres, stream или none
type HistoryConfig struct {
	Sink         string
	WriteTimeout time.Duration
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	BatchSize     int
}

// apiKeyServices - внешние сервисы, ключи которых показываются в маскированном виде
var apiKeyServices = []string{"openweathermap", "thunderforest", "bhuvan", "nasa"}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// .env опционален: в контейнере конфигурация приходит из окружения
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:                 viper.GetString("API_HOST"),
			Port:                 viper.GetInt("API_PORT"),
			Env:                  viper.GetString("API_ENV"),
			CORSOrigins:          viper.GetString("CORS_ORIGINS"),
			TrustForwardedFor:    viper.GetBool("TRUST_X_FORWARDED_FOR"),
			SlowRequestThreshold: time.Duration(viper.GetInt("SLOW_REQUEST_THRESHOLD_MS")) * time.Millisecond,
		},
		Database: DatabaseConfig{
			Enabled:         viper.GetBool("DB_ENABLED"),
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			GeocodeCacheTTL: time.Duration(viper.GetInt("GEOCODE_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		RateLimit: RateLimitConfig{
			Requests:      viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:        time.Duration(viper.GetInt("RATE_LIMIT_WINDOW")) * time.Second,
			SweepInterval: time.Duration(viper.GetInt("RATE_LIMIT_SWEEP_INTERVAL")) * time.Second,
			StatsEnabled:  viper.GetBool("RATE_LIMIT_STATS_ENABLED"),
		},
		Overpass: OverpassConfig{
			BaseURL:        viper.GetString("OVERPASS_BASE_URL"),
			RequestTimeout: time.Duration(viper.GetInt("OVERPASS_TIMEOUT")) * time.Second,
			QueryTimeout:   time.Duration(viper.GetInt("OVERPASS_QUERY_TIMEOUT")) * time.Second,
			RequestsPerSec: viper.GetFloat64("OVERPASS_RPS"),
		},
		Nominatim: NominatimConfig{
			BaseURL:        viper.GetString("NOMINATIM_BASE_URL"),
			UserAgent:      viper.GetString("NOMINATIM_USER_AGENT"),
			RequestTimeout: time.Duration(viper.GetInt("NOMINATIM_TIMEOUT")) * time.Second,
			RequestsPerSec: viper.GetFloat64("NOMINATIM_RPS"),
		},
		History: HistoryConfig{
			Sink:         strings.ToLower(strings.TrimSpace(viper.GetString("HISTORY_SINK"))),
			WriteTimeout: time.Duration(viper.GetInt("HISTORY_WRITE_TIMEOUT")) * time.Second,
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup: viper.GetString("WORKER_CONSUMER_GROUP"),
			BatchSize:     viper.GetInt("WORKER_BATCH_SIZE"),
		},
		APIKeys: loadAPIKeys(),
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults - значения по умолчанию для незаданных параметров
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8001
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.CORSOrigins == "" {
		cfg.Server.CORSOrigins = "*"
	}
	if cfg.Server.SlowRequestThreshold == 0 {
		cfg.Server.SlowRequestThreshold = time.Second
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.GeocodeCacheTTL == 0 {
		cfg.Cache.GeocodeCacheTTL = time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 100
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Hour
	}
	if cfg.RateLimit.SweepInterval == 0 {
		cfg.RateLimit.SweepInterval = 10 * time.Minute
	}
	if cfg.Overpass.BaseURL == "" {
		cfg.Overpass.BaseURL = "https://overpass-api.de/api"
	}
	if cfg.Overpass.RequestTimeout == 0 {
		cfg.Overpass.RequestTimeout = 30 * time.Second
	}
	if cfg.Overpass.QueryTimeout == 0 {
		cfg.Overpass.QueryTimeout = 25 * time.Second
	}
	if cfg.Overpass.RequestsPerSec == 0 {
		cfg.Overpass.RequestsPerSec = 2
	}
	if cfg.Nominatim.BaseURL == "" {
		cfg.Nominatim.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Nominatim.UserAgent == "" {
		cfg.Nominatim.UserAgent = "GeoGateway/1.0"
	}
	if cfg.Nominatim.RequestTimeout == 0 {
		cfg.Nominatim.RequestTimeout = 10 * time.Second
	}
	if cfg.Nominatim.RequestsPerSec == 0 {
		cfg.Nominatim.RequestsPerSec = 1
	}
	if cfg.History.Sink == "" {
		cfg.History.Sink = "stream"
	}
	if cfg.History.WriteTimeout == 0 {
		cfg.History.WriteTimeout = 5 * time.Second
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "history-writers"
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 50
	}
}

func loadAPIKeys() map[string]string {
	keys := make(map[string]string, len(apiKeyServices))
	for _, service := range apiKeyServices {
		keys[service] = strings.TrimSpace(viper.GetString(strings.ToUpper(service) + "_API_KEY"))
	}
	return keys
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN - строка подключения для драйвера pgx
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=geo-gateway",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return c.Redis.Addr()
}

// Addr - адрес Redis в формате host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
