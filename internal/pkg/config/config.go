package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	// CORSOrigins is a comma separated allow-list; "*" allows any origin.
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Blob     BlobConfig
	Upload   UploadConfig
	Feed     FeedConfig
	Workflow WorkflowConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=marketplace"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=20"`
}

// BlobConfig selects the attachment store. Backend is "supabase" or "s3".
type BlobConfig struct {
	Backend string `env:"BLOB_BACKEND, default=supabase"`
	Bucket  string `env:"BLOB_BUCKET,  default=project-files"`

	SupabaseURL string `env:"SUPABASE_URL"`
	SupabaseKey string `env:"SUPABASE_SERVICE_KEY"`

	S3Region        string `env:"S3_REGION, default=us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

type UploadConfig struct {
	MaxSizeMB int `env:"UPLOAD_MAX_MB, default=10"`
	// AllowedExtensions overrides the default allow-list when set.
	AllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS"`
}

type FeedConfig struct {
	Workers  int           `env:"FEED_WORKERS,   default=8"`
	DedupTTL time.Duration `env:"FEED_DEDUP_TTL, default=1h"`
	// InstanceID scopes feed dedup keys to this process's hub. A random id
	// is generated when unset.
	InstanceID string `env:"FEED_INSTANCE_ID"`
}

type WorkflowConfig struct {
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL, default=30s"`
	ReconcileGrace    time.Duration `env:"RECONCILE_GRACE,    default=1m"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Blob.Backend {
	case "supabase":
		if c.Blob.SupabaseURL == "" || c.Blob.SupabaseKey == "" {
			return fmt.Errorf("config: supabase backend needs SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
	case "s3":
	default:
		return fmt.Errorf("config: unknown BLOB_BACKEND %q", c.Blob.Backend)
	}
	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("config: UPLOAD_MAX_MB must be positive")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads and validates configuration from lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	for i, ext := range cfg.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Upload.AllowedExtensions[i] = ext
	}
	if cfg.Feed.InstanceID == "" {
		cfg.Feed.InstanceID = uuid.NewString()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
