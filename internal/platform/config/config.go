package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration. Values come from the
// environment so main stays lean and deployments stay 12-factor.
type Server struct {
	Addr        string
	Environment string

	DatabaseURL string
	RedisAddr   string

	KafkaBrokers string
	AuditTopic   string

	// Ledger RPC service settings.
	LedgerURL            string
	LedgerAPIKey         string
	LedgerRequestTimeout time.Duration
	// ReceiptTimeout bounds the wait for transaction inclusion. Past it the
	// anchoring outcome is indeterminate, never assumed failed.
	ReceiptTimeout time.Duration

	// Grading collaborator settings.
	GraderURL      string
	GraderTimeout  time.Duration
	DegradedGrader bool // allow pseudo-random fallback scores when the grader is down

	JWTSigningKey string
	TokenTTL      time.Duration

	MetadataBaseURI string
	DIDCacheTTL     time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:        envOr("SKILLPROOF_ADDR", ":8080"),
		Environment: envOr("SKILLPROOF_ENV", "dev"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		AuditTopic:   envOr("AUDIT_TOPIC", "skillproof.audit.events"),

		LedgerURL:            os.Getenv("LEDGER_RPC_URL"),
		LedgerAPIKey:         os.Getenv("LEDGER_API_KEY"),
		LedgerRequestTimeout: durationOr("LEDGER_REQUEST_TIMEOUT", 10*time.Second),
		ReceiptTimeout:       durationOr("LEDGER_RECEIPT_TIMEOUT", 90*time.Second),

		GraderURL:      os.Getenv("GRADER_URL"),
		GraderTimeout:  durationOr("GRADER_TIMEOUT", 30*time.Second),
		DegradedGrader: boolOr("DEGRADED_GRADER", false),

		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:      durationOr("TOKEN_TTL", 15*time.Minute),

		MetadataBaseURI: envOr("METADATA_BASE_URI", "https://skillproof.example/vc"),
		DIDCacheTTL:     durationOr("DID_CACHE_TTL", 5*time.Minute),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func boolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
