package infra

import (
	"time"

	"github.com/cockroachdb/errors"
)

const (
	StorageBackendBlob  = "blob"
	StorageBackendRedis = "redis"
)

type ServerConfig struct {
	Env               string
	AppName           string
	Port              string
	LoggingFormat     string
	SentryDsn         string
	CorsAllowOrigins  []string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	MaxOpenSessions   int
	SyncProbeInterval time.Duration
}

func (config ServerConfig) Validate() error {
	if config.Port == "" {
		return errors.New("PORT is required")
	}
	if config.MaxOpenSessions <= 0 {
		return errors.New("MAX_OPEN_SESSIONS must be positive")
	}
	if config.SyncProbeInterval <= 0 {
		return errors.New("SYNC_PROBE_INTERVAL must be positive")
	}
	return nil
}

// StorageConfig selects the backend of the local key-value store.
type StorageConfig struct {
	Backend   string
	BucketUrl string
	Redis     RedisConfig
}

func (config StorageConfig) Validate() error {
	switch config.Backend {
	case StorageBackendBlob:
		if config.BucketUrl == "" {
			return errors.New("STORAGE_BUCKET_URL is required with the blob storage backend")
		}
	case StorageBackendRedis:
		if config.Redis.Address == "" {
			return errors.New("REDIS_ADDRESS is required with the redis storage backend")
		}
	default:
		return errors.Newf("unknown storage backend %q", config.Backend)
	}
	return nil
}

type RedisConfig struct {
	Address       string
	Password      string
	Database      int
	Namespace     string
	Tls           bool
	TlsSkipVerify bool
}

// RemoteStoreConfig points to the remote CRUD store. An empty Url runs the designer offline only.
type RemoteStoreConfig struct {
	Url     string
	ApiKey  string
	Timeout time.Duration
	// RateLimit caps the requests per second sent to the remote store. Zero means no limit.
	RateLimit int
}

func (config RemoteStoreConfig) Enabled() bool {
	return config.Url != ""
}

type DesignerConfig struct {
	DraftDebounce time.Duration
}

type TelemetryConfiguration struct {
	Enabled         bool
	ApplicationName string
	// Exporter is "gcp" or "otlp".
	Exporter  string
	ProjectID string
}
