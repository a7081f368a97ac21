package config

import "time"

var defaultKafka = Kafka{
	Topic:    "route_request",
	DLQTopic: "route_request_dlq",
	GroupID:  "route-worker",
}

var defaultRedis = Redis{
	Port: "6379",
	DB:   0,
}

var defaultDB = DB{
	Port: "5432",
}

var defaultScheduler = Scheduler{
	LookaheadMin: 90,
	TickInterval: 300 * time.Second,
	TimeZone:     "Asia/Seoul",
}

var defaultDirections = Directions{
	BaseURL: "https://maps.googleapis.com",
	Timeout: 5 * time.Second,
	RPS:     5,
	Burst:   1,
}

var defaultResolve = Resolve{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    4 * time.Second,
}

const (
	defaultCacheBackend = CacheRedis
	defaultOpsAddr      = ":9090"
	defaultLogLevel     = "info"
)

// DefaultKafka returns the default channel settings.
func DefaultKafka() Kafka { return defaultKafka }

// DefaultRedis returns the default cache store settings.
func DefaultRedis() Redis { return defaultRedis }

// DefaultDB returns the default database settings.
func DefaultDB() DB { return defaultDB }

// DefaultScheduler returns the default scheduler settings.
func DefaultScheduler() Scheduler { return defaultScheduler }

// DefaultDirections returns the default directions provider settings.
func DefaultDirections() Directions { return defaultDirections }

// DefaultResolve returns the default resolve retry policy.
func DefaultResolve() Resolve { return defaultResolve }

// DefaultOpsAddr returns the default ops server address.
func DefaultOpsAddr() string { return defaultOpsAddr }
