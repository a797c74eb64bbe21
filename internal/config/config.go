package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Portal    PortalConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	// OperatorChatID is the audience for scrape notices and new-posting digests.
	OperatorChatID int64
}

type PortalConfig struct {
	BaseURL  string
	Username string
	Password string
	// SettleInterval is the wait between the login POST, the listing fetch
	// and the logout. The portal drops sessions that move faster.
	SettleInterval time.Duration
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type SchedulerConfig struct {
	// Cron expressions (5-field) for the three trigger types.
	FullScrapeSchedule   string
	ActiveDigestSchedule string
	DeadlineDigestTimes  []string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	operatorRaw := req("OPERATOR_CHAT_ID")
	if operatorRaw != "" {
		operator, err := strconv.ParseInt(operatorRaw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OPERATOR_CHAT_ID: %w", err)
		}
		cfg.App.OperatorChatID = operator
	}

	settle, err := time.ParseDuration(opt("PORTAL_SETTLE_INTERVAL", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PORTAL_SETTLE_INTERVAL: %w", err)
	}
	cfg.Portal = PortalConfig{
		BaseURL:        req("PORTAL_URL"),
		Username:       req("PORTAL_USERNAME"),
		Password:       req("PORTAL_PASSWORD"),
		SettleInterval: settle,
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST", "localhost"),
		DBPort:     opt("DB_PORT", "5432"),
		DBName:     req("DB_NAME"),
		DBUser:     req("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE", "disable"),
	}
	if d, err := time.ParseDuration(opt("DB_CONNECT_TIMEOUT", "5s")); err == nil {
		cfg.Database.ConnectTimeout = d
	}
	if n, err := strconv.ParseInt(opt("DB_POOL_MAX_CONNS", "0"), 10, 32); err == nil {
		cfg.Database.PoolMaxConns = int32(n)
	}
	if n, err := strconv.ParseInt(opt("DB_POOL_MIN_CONNS", "0"), 10, 32); err == nil {
		cfg.Database.PoolMinConns = int32(n)
	}
	if d, err := time.ParseDuration(opt("DB_POOL_MAX_CONN_LIFETIME", "0s")); err == nil {
		cfg.Database.PoolMaxConnLifetime = d
	}
	if d, err := time.ParseDuration(opt("DB_POOL_MAX_CONN_IDLE_TIME", "0s")); err == nil {
		cfg.Database.PoolMaxConnIdleTime = d
	}
	if d, err := time.ParseDuration(opt("DB_POOL_HEALTHCHECK_PERIOD", "0s")); err == nil {
		cfg.Database.PoolHealthCheckPeriod = d
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", "localhost"),
		Port:     opt("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	cfg.Scheduler = SchedulerConfig{
		FullScrapeSchedule:   opt("SCRAPE_SCHEDULE", "0 */4 * * *"),
		ActiveDigestSchedule: opt("ACTIVE_DIGEST_SCHEDULE", "*/4 * * * *"),
		DeadlineDigestTimes: strings.Split(
			opt("DEADLINE_DIGEST_SCHEDULES", "0 8 * * *,0 19 * * *"), ","),
	}
	for i, s := range cfg.Scheduler.DeadlineDigestTimes {
		cfg.Scheduler.DeadlineDigestTimes[i] = strings.TrimSpace(s)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}
