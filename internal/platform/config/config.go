package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Server struct {
	Addr string

	// BaseURL is the externally reachable origin used to build the handoff
	// URLs embedded in QR codes (e.g. https://verify.example.com).
	BaseURL string

	// SessionTTL bounds how long a verification session stays claimable.
	SessionTTL time.Duration

	// SweepInterval controls the background cleanup of expired sessions.
	// Sweeping is space hygiene only; expiry is enforced on every read.
	SweepInterval time.Duration

	// MajorityAge is the age of adulthood used by the age calculator.
	MajorityAge int

	// SettingsPath is the flat-file location of the decision policy settings.
	SettingsPath string

	// APIKeyPath is the flat-file location of issued API keys.
	APIKeyPath string

	// JWTSigningKey signs admin access tokens.
	JWTSigningKey string

	// VerifyTimeout bounds one verification attempt across all model calls.
	VerifyTimeout time.Duration

	// AuditBuffer sizes the in-process audit queue. Events beyond it are
	// dropped rather than blocking request handling.
	AuditBuffer int

	Vision   VisionConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// VisionConfig points at the OpenAI-compatible vision model endpoint used for
// document recognition, face comparison and authenticity checks.
type VisionConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// RedisConfig holds connection settings for the optional Redis backends.
// An empty URL means Redis is not configured and in-memory stores are used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig holds the DSN for the audit outbox store. Empty means the
// in-memory audit store is used.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig holds broker settings for the audit outbox relay. No brokers
// means the relay is disabled.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("IDVERIFY_ADDR", ":8080"),
		BaseURL:       envOr("IDVERIFY_BASE_URL", "http://localhost:8080"),
		SessionTTL:    envDurationOr("IDVERIFY_SESSION_TTL", 30*time.Minute),
		SweepInterval: envDurationOr("IDVERIFY_SWEEP_INTERVAL", 5*time.Minute),
		MajorityAge:   envIntOr("IDVERIFY_MAJORITY_AGE", 18),
		SettingsPath:  envOr("IDVERIFY_SETTINGS_PATH", "./id-verify-settings.json"),
		APIKeyPath:    envOr("IDVERIFY_API_KEY_PATH", "./api-keys.json"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		VerifyTimeout: envDurationOr("IDVERIFY_VERIFY_TIMEOUT", 60*time.Second),
		AuditBuffer:   envIntOr("IDVERIFY_AUDIT_BUFFER", 256),
		Vision: VisionConfig{
			BaseURL: envOr("VISION_API_BASE_URL", "https://api.fireworks.ai/inference/v1"),
			APIKey:  os.Getenv("VISION_API_KEY"),
			Model:   envOr("VISION_MODEL", "accounts/fireworks/models/qwen2p5-vl-32b-instruct"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "idverify.audit"),
		},
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
