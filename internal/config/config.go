package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"StockLens/internal/cache"
	"StockLens/internal/logger"
	"StockLens/internal/ml"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log        logger.Config `yaml:"log"`
	DataSource struct {
		Provider string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo rest mock"`
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout" default:"30s"`
		// Adjusted scales Yahoo prices by the split and dividend adjusted close.
		Adjusted bool `yaml:"adjusted"`
	} `yaml:"data_source"`
	Cache struct {
		MaxEntries int           `yaml:"max_entries" validate:"min=0"` // 0 keeps every download
		TTL        time.Duration `yaml:"ttl"`
		Redis      struct {
			Enabled           bool `yaml:"enabled"`
			cache.RedisConfig `yaml:",inline"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Pipeline struct {
		ReducedPrecision bool    `yaml:"reduced_precision"`
		DefaultTarget    string  `yaml:"default_target" default:"Close"`
		ClassThreshold   float64 `yaml:"class_threshold" default:"0.01" validate:"gt=0"`
		DefaultHorizon   int     `yaml:"default_horizon" default:"1" validate:"min=0"`
		LookbackDays     int     `yaml:"lookback_days" default:"365" validate:"min=1"`
	} `yaml:"pipeline"`
	Model struct {
		Clusters        int     `yaml:"clusters" default:"3" validate:"min=2"`
		MaxClusters     int     `yaml:"max_clusters" default:"10" validate:"min=2"`
		LogisticMaxIter int     `yaml:"logistic_max_iter" default:"1000" validate:"min=1"`
		KMeansMaxIter   int     `yaml:"kmeans_max_iter" default:"300" validate:"min=1"`
		C               float64 `yaml:"c" default:"1" validate:"gt=0"`
		Seed            int64   `yaml:"seed" default:"42"`
	} `yaml:"model"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/stocklens.db"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		APIBase  string `yaml:"api_base" default:"https://api.telegram.org"`
	} `yaml:"telegram"`
	Schedule struct {
		RefreshCron string   `yaml:"refresh_cron" default:"0 30 22 * * 1-5"`
		Watchlist   []string `yaml:"watchlist"`
	} `yaml:"schedule"`
	Upload struct {
		MaxBytes int64 `yaml:"max_bytes" default:"10485760" validate:"min=1"`
	} `yaml:"upload"`
	Metrics struct {
		Disabled bool   `yaml:"disabled"`
		Path     string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, applies environment variable overrides,
// then fills defaults for anything still unset.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(cfg.Schedule.Watchlist) == 0 {
		cfg.Schedule.Watchlist = []string{"SPX500"}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str := map[string]*string{
		"SERVER_HOST":        &cfg.Server.Host,
		"LOG_LEVEL":          &cfg.Log.Level,
		"LOG_FORMAT":         &cfg.Log.Format,
		"DATA_PROVIDER":      &cfg.DataSource.Provider,
		"DATA_BASE_URL":      &cfg.DataSource.BaseURL,
		"DATA_API_KEY":       &cfg.DataSource.APIKey,
		"REDIS_ADDR":         &cfg.Cache.Redis.Addr,
		"REDIS_PASSWORD":     &cfg.Cache.Redis.Password,
		"SQLITE_PATH":        &cfg.Database.SQLitePath,
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"CRON_REFRESH":       &cfg.Schedule.RefreshCron,
		"HTTPS_PROXY":        &cfg.Proxy,
		"PIPELINE_TARGET":    &cfg.Pipeline.DefaultTarget,
		"METRICS_PATH":       &cfg.Metrics.Path,
		"TELEGRAM_API_BASE":  &cfg.Telegram.APIBase,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if os.Getenv("REDIS_ADDR") != "" {
		cfg.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxEntries = n
		}
	}
	if v := os.Getenv("REDUCED_PRECISION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Pipeline.ReducedPrecision = b
		}
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		var list []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, strings.ToUpper(s))
			}
		}
		cfg.Schedule.Watchlist = list
	}
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	if c.DataSource.Provider == "rest" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the rest provider")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Model.MaxClusters < c.Model.Clusters {
		return fmt.Errorf("model.max_clusters must be at least model.clusters")
	}
	return nil
}

// TelegramEnabled reports whether notifications and bot commands are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ModelOptions maps the model section onto options for ml.New.
func (c *Config) ModelOptions() ml.Options {
	return ml.Options{
		Clusters:        c.Model.Clusters,
		LogisticMaxIter: c.Model.LogisticMaxIter,
		KMeansMaxIter:   c.Model.KMeansMaxIter,
		C:               c.Model.C,
		Seed:            c.Model.Seed,
	}
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
