// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Configuration holds all service settings.
type Configuration struct {
	Service       ServiceConfig
	STT           STTConfig
	Capture       CaptureConfig
	Heuristics    HeuristicsConfig
	Backend       BackendConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig identifies the service and its listeners.
type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	MetricsPort string
	Environment string // dev, prod
	VenueID     string
	StaffID     string
	AppVersion  string
}

// STTConfig selects and tunes the speech recognizer.
type STTConfig struct {
	Provider         string // google, whisper, demo
	LanguageCode     string
	SampleRateHz     int
	WhisperModelPath string
}

// CaptureConfig tunes audio capture and the session controller.
type CaptureConfig struct {
	// Source is "push" (audio arrives over the control API) or "mic"
	// (local microphone capture).
	Source        string
	Locale        string
	MaxDuration   time.Duration
	SpoolDir      string
	LexiconDir    string
	MicPermission bool
}

// HeuristicsConfig tunes the confidence pipeline.
type HeuristicsConfig struct {
	RecheckThreshold int
}

// BackendConfig points at the restaurant backend.
type BackendConfig struct {
	BaseURL  string
	Token    string
	Timezone string
}

// KafkaConfig configures event publishing.
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicCapture string
	TopicOutcome string
	Principal    string
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json, console
}

// Load reads the configuration from environment variables, falling back to
// defaults on missing or unparseable values.
func Load() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-voice-booking-capture")

	cfg := &Configuration{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
			Environment: envOrDefault("ENV", "dev"),
			VenueID:     envOrDefault("VENUE_ID", "venue-local"),
			StaffID:     envOrDefault("STAFF_ID", ""),
			AppVersion:  envOrDefault("APP_VERSION", "0.0.0-dev"),
		},
		STT: STTConfig{
			Provider:         envOrDefault("STT_PROVIDER", "demo"),
			LanguageCode:     envOrDefault("STT_LANGUAGE_CODE", "it-IT"),
			SampleRateHz:     envOrDefaultInt("STT_SAMPLE_RATE_HZ", 16000),
			WhisperModelPath: envOrDefault("WHISPER_MODEL_PATH", ""),
		},
		Capture: CaptureConfig{
			Source:        envOrDefault("CAPTURE_SOURCE", "push"),
			Locale:        envOrDefault("CAPTURE_LOCALE", "it-IT"),
			MaxDuration:   envOrDefaultDuration("CAPTURE_MAX_DURATION", 60*time.Second),
			SpoolDir:      envOrDefault("CAPTURE_SPOOL_DIR", os.TempDir()),
			LexiconDir:    envOrDefault("LEXICON_DIR", ""),
			MicPermission: envOrDefaultBool("MIC_PERMISSION_GRANTED", true),
		},
		Heuristics: HeuristicsConfig{
			RecheckThreshold: envOrDefaultInt("RECHECK_THRESHOLD", 70),
		},
		Backend: BackendConfig{
			BaseURL:  envOrDefault("BACKEND_BASE_URL", "http://localhost:3000"),
			Token:    envOrDefault("BACKEND_TOKEN", ""),
			Timezone: envOrDefault("BACKEND_TIMEZONE", "Europe/Rome"),
		},
		Kafka: KafkaConfig{
			Enabled:      envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:      splitNonEmpty(envOrDefault("KAFKA_BROKERS", "")),
			TopicCapture: envOrDefault("KAFKA_TOPIC_CAPTURE", "voice.capture.completed"),
			TopicOutcome: envOrDefault("KAFKA_TOPIC_OUTCOME", "voice.booking.outcome"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
