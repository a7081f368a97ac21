package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Cache backends.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Config is the process configuration shared by the scheduler and the worker.
type Config struct {
	Kafka        Kafka
	Redis        Redis
	CacheBackend string
	DB           DB
	Scheduler    Scheduler
	Directions   Directions
	Resolve      Resolve
	Ops          Ops
	LogLevel     string
}

// Kafka describes the route request channel.
type Kafka struct {
	Brokers  []string
	Topic    string
	DLQTopic string
	GroupID  string
}

// Redis describes the route cache store.
type Redis struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// DB describes the relational store holding commute profiles.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns a postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		d.User, d.Pass, net.JoinHostPort(d.Host, d.Port), d.Name)
}

// Scheduler holds the tick settings.
type Scheduler struct {
	LookaheadMin int
	TickInterval time.Duration
	TimeZone     string
	Location     *time.Location
}

// Directions holds the external provider settings.
type Directions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// Resolve is the bounded retry policy of the consumer.
type Resolve struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Ops is the operational HTTP server.
type Ops struct {
	Addr      string
	PprofUser string
	PprofPass string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Kafka:        DefaultKafka(),
		Redis:        DefaultRedis(),
		CacheBackend: defaultCacheBackend,
		DB:           DefaultDB(),
		Scheduler:    DefaultScheduler(),
		Directions:   DefaultDirections(),
		Resolve:      DefaultResolve(),
		Ops:          Ops{Addr: DefaultOpsAddr()},
		LogLevel:     defaultLogLevel,
	}

	cfg.Kafka.Brokers = splitList(os.Getenv("KAFKA_BOOTSTRAP"))
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")
	setString(&cfg.Kafka.DLQTopic, "KAFKA_DLQ_TOPIC")
	setString(&cfg.Kafka.GroupID, "KAFKA_GROUP_ID")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.CacheBackend, "CACHE_BACKEND")

	setString(&cfg.DB.Host, "APP_DB_HOST")
	setString(&cfg.DB.Port, "APP_DB_PORT")
	setString(&cfg.DB.Name, "APP_DB_NAME")
	setString(&cfg.DB.User, "APP_DB_USER")
	setString(&cfg.DB.Pass, "APP_DB_PSWD")

	setString(&cfg.Scheduler.TimeZone, "COMMUTE_TZ")
	setString(&cfg.Directions.APIKey, "GOOGLE_API_KEY")
	setString(&cfg.Directions.BaseURL, "DIRECTIONS_BASE_URL")
	setString(&cfg.Ops.Addr, "OPS_ADDR")
	setString(&cfg.Ops.PprofUser, "PPROF_USER")
	setString(&cfg.Ops.PprofPass, "PPROF_PASS")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	collect(setInt(&cfg.Redis.DB, "REDIS_DB"))
	collect(setInt(&cfg.Scheduler.LookaheadMin, "LOOKAHEAD_MIN"))
	collect(setSeconds(&cfg.Scheduler.TickInterval, "TICK_INTERVAL_SEC"))
	collect(setDuration(&cfg.Directions.Timeout, "DIRECTIONS_TIMEOUT"))
	collect(setFloat(&cfg.Directions.RPS, "DIRECTIONS_RPS"))
	collect(setInt(&cfg.Resolve.MaxAttempts, "RESOLVE_MAX_ATTEMPTS"))
	collect(setDuration(&cfg.Resolve.BaseDelay, "RESOLVE_BASE_DELAY"))
	collect(setDuration(&cfg.Resolve.MaxDelay, "RESOLVE_MAX_DELAY"))
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	tickSec := int(cfg.Scheduler.TickInterval / time.Second)
	pflag.IntVar(&cfg.Scheduler.LookaheadMin, "lookahead-min", cfg.Scheduler.LookaheadMin, "selection lookahead in minutes")
	pflag.IntVar(&tickSec, "tick-interval-sec", tickSec, "seconds between scheduler ticks")
	pflag.StringVar(&cfg.Ops.Addr, "ops-addr", cfg.Ops.Addr, "ops http server address")
	pflag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	cfg.Scheduler.TickInterval = time.Duration(tickSec) * time.Second

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Scheduler.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("COMMUTE_TZ: %w", err)
	}
	cfg.Scheduler.Location = loc

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Scheduler.LookaheadMin <= 0 {
		errs = append(errs, fmt.Errorf("LOOKAHEAD_MIN must be positive, got %d", c.Scheduler.LookaheadMin))
	}
	if c.Scheduler.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("TICK_INTERVAL_SEC must be positive, got %s", c.Scheduler.TickInterval))
	}
	if c.Resolve.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("RESOLVE_MAX_ATTEMPTS must be positive, got %d", c.Resolve.MaxAttempts))
	}
	if c.Directions.RPS <= 0 {
		errs = append(errs, fmt.Errorf("DIRECTIONS_RPS must be positive, got %v", c.Directions.RPS))
	}
	if c.CacheBackend != CacheRedis && c.CacheBackend != CacheMemory {
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheRedis, CacheMemory, c.CacheBackend))
	}
	if p, err := strconv.Atoi(c.DB.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("APP_DB_PORT invalid: %q", c.DB.Port))
	}
	if p, err := strconv.Atoi(c.Redis.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT invalid: %q", c.Redis.Port))
	}
	return errors.Join(errs...)
}

// ValidateScheduler checks the settings the scheduler cannot start without.
func (c *Config) ValidateScheduler() error {
	return missing(map[string]bool{
		"KAFKA_BOOTSTRAP": len(c.Kafka.Brokers) == 0,
		"APP_DB_HOST":     c.DB.Host == "",
		"APP_DB_NAME":     c.DB.Name == "",
		"APP_DB_USER":     c.DB.User == "",
		"APP_DB_PSWD":     c.DB.Pass == "",
	})
}

// ValidateWorker checks the settings the worker cannot start without.
func (c *Config) ValidateWorker() error {
	return missing(map[string]bool{
		"KAFKA_BOOTSTRAP": len(c.Kafka.Brokers) == 0,
		"REDIS_HOST":      c.CacheBackend == CacheRedis && c.Redis.Host == "",
		"GOOGLE_API_KEY":  c.Directions.APIKey == "",
	})
}

func missing(checks map[string]bool) error {
	var keys []string
	for k, isMissing := range checks {
		if isMissing {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return fmt.Errorf("missing required configuration: %s", strings.Join(keys, ", "))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setSeconds(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = time.Duration(n) * time.Second
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
