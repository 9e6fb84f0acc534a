package cmd

import (
	"strings"
	"time"

	"github.com/checkmarble/form-designer/infra"
	"github.com/checkmarble/form-designer/usecases"
	"github.com/checkmarble/form-designer/usecases/designer"
	"github.com/checkmarble/form-designer/utils"
)

type CompiledConfig struct {
	Version string
}

// Config gathers everything read from the environment when the server starts.
type Config struct {
	Server    infra.ServerConfig
	Storage   infra.StorageConfig
	Remote    infra.RemoteStoreConfig
	Designer  infra.DesignerConfig
	Telemetry infra.TelemetryConfiguration
	// MaxBodySize is the largest request body accepted on the designer routes, in bytes.
	MaxBodySize int
}

func LoadConfig() Config {
	serverConfig := infra.ServerConfig{
		Env:               utils.GetEnv("ENV", "development"),
		AppName:           "form-designer",
		Port:              utils.GetRequiredEnv[string]("PORT"),
		LoggingFormat:     utils.GetEnv("LOGGING_FORMAT", "text"),
		SentryDsn:         utils.GetEnv("SENTRY_DSN", ""),
		CorsAllowOrigins:  splitList(utils.GetEnv("CORS_ALLOW_ORIGINS", "")),
		RequestTimeout:    utils.GetEnv("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout:   utils.GetEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxOpenSessions:   utils.GetEnv("MAX_OPEN_SESSIONS", usecases.DefaultMaxOpenSessions),
		SyncProbeInterval: utils.GetEnv("SYNC_PROBE_INTERVAL", 30*time.Second),
	}

	return Config{
		Server: serverConfig,
		Storage: infra.StorageConfig{
			Backend:   utils.GetEnv("STORAGE_BACKEND", infra.StorageBackendBlob),
			BucketUrl: utils.GetEnv("STORAGE_BUCKET_URL", "file:///tmp/form-designer"),
			Redis: infra.RedisConfig{
				Address:       utils.GetEnv("REDIS_ADDRESS", ""),
				Password:      utils.GetEnv("REDIS_PASSWORD", ""),
				Database:      utils.GetEnv("REDIS_DATABASE", 0),
				Namespace:     utils.GetEnv("REDIS_NAMESPACE", "form-designer"),
				Tls:           utils.GetEnv("REDIS_TLS", false),
				TlsSkipVerify: utils.GetEnv("REDIS_TLS_SKIP_VERIFY", false),
			},
		},
		Remote: infra.RemoteStoreConfig{
			Url:       utils.GetEnv("REMOTE_STORE_URL", ""),
			ApiKey:    utils.GetEnv("REMOTE_STORE_API_KEY", ""),
			Timeout:   utils.GetEnv("REMOTE_STORE_TIMEOUT", 10*time.Second),
			RateLimit: utils.GetEnv("REMOTE_STORE_RATE_LIMIT", 20),
		},
		Designer: infra.DesignerConfig{
			DraftDebounce: utils.GetEnv("DRAFT_DEBOUNCE", designer.DefaultDraftDebounce),
		},
		Telemetry: infra.TelemetryConfiguration{
			Enabled:         utils.GetEnv("ENABLE_TRACING", false),
			ApplicationName: serverConfig.AppName,
			Exporter:        utils.GetEnv("TRACING_EXPORTER", "gcp"),
			ProjectID:       utils.GetEnv("GOOGLE_CLOUD_PROJECT", ""),
		},
		MaxBodySize: utils.GetEnv("MAX_BODY_SIZE", 2*1024*1024),
	}
}

func (config Config) Validate() error {
	if err := config.Server.Validate(); err != nil {
		return err
	}
	return config.Storage.Validate()
}

func splitList(value string) []string {
	out := []string{}
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
