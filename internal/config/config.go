package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8390"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Browser
	CDPURL        string        // DevTools URL of a running browser; empty = launch our own
	Headless      bool          // headless launch when no CDP URL is given
	ProfileDir    string        // browser profile directory for launched instances
	ActionTimeout time.Duration // cap on one capture/restore round trip (default: 10s)
	SettleDelay   time.Duration // wait after a viewer page jump before applying the offset
	SmoothScroll  bool          // animate restored scrolls
	SweepInterval time.Duration // interval between stale-tab sweeps
	PatternsFile  string        // optional viewer patterns yaml (empty = built-ins only)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // initial wait between retries (ex: 2s, grows exponentially)

	// Access restrictions
	AuthToken      string   // optional bearer token required on the API
	AllowedOrigins []string // optional, restrict CORS to specific origins
	RateLimitRPS   int      // per-client request budget per second (0 = unlimited)
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PAGEMARK_LISTEN_PORT", ":8390"),
		ShutdownTimeout: mustDuration("PAGEMARK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("PAGEMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PAGEMARK_PRETTY_LOG", true),

		// Browser settings
		CDPURL:        getenv("PAGEMARK_CDP_URL", ""),
		Headless:      mustBool("PAGEMARK_HEADLESS", true),
		ProfileDir:    getenv("PAGEMARK_PROFILE_DIR", ""),
		ActionTimeout: mustDuration("PAGEMARK_ACTION_TIMEOUT", 10*time.Second),
		SettleDelay:   mustDuration("PAGEMARK_SETTLE_DELAY", 300*time.Millisecond),
		SmoothScroll:  mustBool("PAGEMARK_SMOOTH_SCROLL", true),
		SweepInterval: mustDuration("PAGEMARK_SWEEP_INTERVAL", time.Minute),
		PatternsFile:  getenv("PAGEMARK_PATTERNS_FILE", ""),

		// Redis settings
		RedisAddr:             requireEnv("PAGEMARK_REDIS_ADDR"),
		RedisUser:             getenv("PAGEMARK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("PAGEMARK_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("PAGEMARK_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("PAGEMARK_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),

		// Access restrictions
		AuthToken:      getenv("PAGEMARK_AUTH_TOKEN", ""),
		AllowedOrigins: splitAndTrim(getenv("PAGEMARK_ALLOWED_ORIGINS", "")),
		RateLimitRPS:   getenvInt("PAGEMARK_RATE_LIMIT_RPS", 0),
		TrustProxy:     mustBool("PAGEMARK_TRUST_PROXY", false),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: PAGEMARK_REDIS_PASSWORD is required when PAGEMARK_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.AuthToken != "" {
			cfgCopy.AuthToken = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
