// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"custom-auth-extension/backend/internal/security"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the extension HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// Env is the application environment (e.g. "development", "production"). Used with DevOTPEnabled to refuse dev OTP in production.
	Env string `mapstructure:"APP_ENV"`

	// EnableJWTAuth turns the bearer-token gate on the /api routes on or off (default true).
	EnableJWTAuth bool `mapstructure:"ENABLE_JWT_AUTH"`
	// ExpectedAudience is compared to the token aud claim; empty skips the check.
	ExpectedAudience string `mapstructure:"EXPECTED_AUDIENCE"`
	// ExpectedAzp is compared to the token azp claim; empty skips the check.
	ExpectedAzp string `mapstructure:"EXPECTED_AZP"`

	// EnableLegacyHeaderAuth turns the claims-header gate on the attribute collection start route on or off (default false).
	EnableLegacyHeaderAuth bool `mapstructure:"ENABLE_LEGACY_HEADER_AUTH"`
	// LegacyPrincipalHeader is the header carrying the base64 JSON client principal (default X-MS-CLIENT-PRINCIPAL).
	LegacyPrincipalHeader string `mapstructure:"LEGACY_PRINCIPAL_HEADER"`
	// LegacyExpectedClientID is the client (app) id the principal must carry in azp or appid.
	LegacyExpectedClientID string `mapstructure:"LEGACY_EXPECTED_CLIENT_ID"`

	// SimulateDelayMs blocks attribute collection start for this many milliseconds (0 disables).
	SimulateDelayMs int `mapstructure:"SIMULATE_DELAY_MS"`
	// TokenClaimsEnabled makes token issuance start return demo claims instead of an empty claim set.
	TokenClaimsEnabled bool `mapstructure:"TOKEN_CLAIMS_ENABLED"`
	// APIVersion is reported in the ApiVersion claim when TokenClaimsEnabled is set.
	APIVersion string `mapstructure:"API_VERSION"`
	// DevOTPEnabled keeps sent codes in memory and serves GET /dev/otp. Must not be true when Env is production.
	DevOTPEnabled bool `mapstructure:"DEV_OTP_ENABLED"`

	// SMSAPIKey enables SMS delivery of one-time codes to phone-number identifiers.
	SMSAPIKey string `mapstructure:"SMS_API_KEY"`
	// SMSBaseURL overrides the SMS gateway endpoint.
	SMSBaseURL string `mapstructure:"SMS_BASE_URL"`
	// SMSSender is the sender id shown to recipients.
	SMSSender string `mapstructure:"SMS_SENDER"`

	// DatabaseURL is the Postgres DSN for the audit store; empty logs audit records to the console only.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Telemetry (optional). When Kafka brokers are set, request telemetry is produced to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events (default authext-telemetry).
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty uses no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext gRPC to the collector even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// HealthGRPCAddr serves the gRPC health protocol when set (e.g. :8081).
	HealthGRPCAddr string `mapstructure:"HEALTH_GRPC_ADDR"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("ENABLE_JWT_AUTH", true)
	v.SetDefault("EXPECTED_AUDIENCE", "")
	v.SetDefault("EXPECTED_AZP", "")
	v.SetDefault("ENABLE_LEGACY_HEADER_AUTH", false)
	v.SetDefault("LEGACY_PRINCIPAL_HEADER", security.DefaultPrincipalHeader)
	v.SetDefault("LEGACY_EXPECTED_CLIENT_ID", security.DefaultExpectedClientID)
	v.SetDefault("SIMULATE_DELAY_MS", 0)
	v.SetDefault("TOKEN_CLAIMS_ENABLED", false)
	v.SetDefault("API_VERSION", "1.0.0")
	v.SetDefault("DEV_OTP_ENABLED", false)
	v.SetDefault("SMS_API_KEY", "")
	v.SetDefault("SMS_BASE_URL", "")
	v.SetDefault("SMS_SENDER", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "authext-telemetry")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "authext-telemetry-worker")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "authext")
	v.SetDefault("HEALTH_GRPC_ADDR", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.SimulateDelayMs < 0 {
		return nil, errors.New("config: SIMULATE_DELAY_MS must not be negative")
	}
	if cfg.DevOTPEnabled && cfg.Env == "production" {
		return nil, errors.New("config: DEV_OTP_ENABLED must not be true when APP_ENV=production")
	}
	if cfg.EnableLegacyHeaderAuth && strings.TrimSpace(cfg.LegacyPrincipalHeader) == "" {
		return nil, errors.New("config: LEGACY_PRINCIPAL_HEADER must be set when ENABLE_LEGACY_HEADER_AUTH is true")
	}

	return &cfg, nil
}

// BearerPolicy returns the immutable bearer-token policy snapshot for the /api routes.
func (c *Config) BearerPolicy() security.BearerPolicy {
	return security.BearerPolicy{
		Enabled:                 c.EnableJWTAuth,
		ExpectedAudience:        strings.TrimSpace(c.ExpectedAudience),
		ExpectedAuthorizedParty: strings.TrimSpace(c.ExpectedAzp),
	}
}

// LegacyPolicy returns the immutable claims-header policy snapshot.
func (c *Config) LegacyPolicy() security.LegacyPolicy {
	return security.LegacyPolicy{
		Enabled:          c.EnableLegacyHeaderAuth,
		Header:           strings.TrimSpace(c.LegacyPrincipalHeader),
		ExpectedClientID: strings.TrimSpace(c.LegacyExpectedClientID),
	}
}

// SimulateDelay returns SimulateDelayMs as a time.Duration.
func (c *Config) SimulateDelay() time.Duration {
	if c.SimulateDelayMs <= 0 {
		return 0
	}
	return time.Duration(c.SimulateDelayMs) * time.Millisecond
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
