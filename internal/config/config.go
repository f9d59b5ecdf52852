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
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request handler deadline

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Capabilities fetching
	UserAgent      string        // empty => built-in identifier
	ConnectTimeout time.Duration // dial + TLS handshake bound
	ReadTimeout    time.Duration // response header bound
	MaxURLLength   int           // longest accepted service URL
	MaxBodyBytes   int64         // largest accepted capabilities document

	ServiceFile    string        // optional YAML file merged over the built-in registry
	AllowCustomURL bool          // enable /api?url=...&kind=...
	WarmInterval   time.Duration // periodic cache refresh, 0 = off

	// Redis shared cache tier (disabled when RedisAddr is empty)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting at startup
	CacheTTL            time.Duration // TTL of entries written to Redis

	RateLimitRPS   float64 // per-client requests per second on /api and /, <= 0 disables
	RateLimitBurst int

	AllowedHosts []string // optional, restrict admin routes to specific Host headers
	AllowedCIDRS []string // optional, restrict admin routes to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      listenAddr(getenv("DS_LISTEN_PORT", getenv("PORT", ":8080"))),
		ShutdownTimeout: mustDuration("DS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("DS_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("DS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("DS_PRETTY_LOG", true),

		// Fetching
		UserAgent:      getenv("DS_USER_AGENT", getenv("USER_AGENT", "")),
		ConnectTimeout: mustDuration("DS_CONNECT_TIMEOUT", 5*time.Second),
		ReadTimeout:    mustDuration("DS_READ_TIMEOUT", 15*time.Second),
		MaxURLLength:   getenvInt("DS_MAX_URL_LENGTH", 2048),
		MaxBodyBytes:   getenvInt64("DS_MAX_BODY_BYTES", 32<<20),

		// Registry and cache
		ServiceFile:    getenv("DS_SERVICE_FILE", ""),
		AllowCustomURL: mustBool("DS_ALLOW_CUSTOM_URL", false),
		WarmInterval:   mustDuration("DS_WARM_INTERVAL", 0),

		// Redis settings
		RedisAddr:           getenv("DS_REDIS_ADDR", ""),
		RedisUser:           getenv("DS_REDIS_USERNAME", ""),
		RedisPassword:       getenv("DS_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("DS_REDIS_DB", 0),
		RedisPoolSize:       getenvInt("DS_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("DS_REDIS_CONNECT_TIMEOUT", 10*time.Second),
		CacheTTL:            mustDuration("DS_CACHE_TTL", 24*time.Hour),

		// Rate limiting
		RateLimitRPS:   getenvFloat("DS_RATE_LIMIT_RPS", 2),
		RateLimitBurst: getenvInt("DS_RATE_LIMIT_BURST", 10),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("DS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("DS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("DS_TRUST_PROXY", false),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func (c *Config) validate() error {
	switch {
	case c.ConnectTimeout <= 0:
		return fmt.Errorf("DS_CONNECT_TIMEOUT must be > 0, got %v", c.ConnectTimeout)
	case c.ReadTimeout <= 0:
		return fmt.Errorf("DS_READ_TIMEOUT must be > 0, got %v", c.ReadTimeout)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("DS_REQUEST_TIMEOUT must be > 0, got %v", c.RequestTimeout)
	case c.MaxURLLength <= 0:
		return fmt.Errorf("DS_MAX_URL_LENGTH must be > 0, got %d", c.MaxURLLength)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("DS_MAX_BODY_BYTES must be > 0, got %d", c.MaxBodyBytes)
	case c.WarmInterval < 0:
		return fmt.Errorf("DS_WARM_INTERVAL must be >= 0, got %v", c.WarmInterval)
	case c.RateLimitRPS > 0 && c.RateLimitBurst <= 0:
		return fmt.Errorf("DS_RATE_LIMIT_BURST must be > 0 when rate limiting is on, got %d", c.RateLimitBurst)
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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

// listenAddr accepts both "8080" (as set by most PaaS) and ":8080".
func listenAddr(v string) string {
	if _, err := strconv.Atoi(v); err == nil {
		return ":" + v
	}
	return v
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
