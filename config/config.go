package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
	LogLevel  string
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	APIPrefix      string
	AllowedOrigins []string
	// TrustedProxies are the peers whose X-Forwarded-For is believed; empty
	// means the client IP is always the connection's remote address.
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// RedisConfig is optional; an empty Addr keeps rate limiting in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type StorageConfig struct {
	Driver           string
	UploadDir        string
	PublicBaseURL    string
	Bucket           string
	MaxUploadSizeMB  int
	MaxGalleryImages int

	GCSCredentialsFile string

	R2Endpoint     string
	R2AccessKey    string
	R2SecretKey    string
	R2PublicDomain string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
}

type RateLimitConfig struct {
	RPS    float64
	Burst  int
	Window time.Duration
}

type AdminConfig struct {
	Email    string
	Password string
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Load reads configuration from a .env file (when present) and the process
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("READ_TIMEOUT_SECONDS", 30)
	v.SetDefault("WRITE_TIMEOUT_SECONDS", 30)

	v.SetDefault("DATABASE_NAME", "eshop-database")
	v.SetDefault("MONGODB_TIMEOUT_SECONDS", 10)

	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_TTL_HOURS", 24)

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "public/uploads")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 5)
	v.SetDefault("MAX_GALLERY_IMAGES", 10)

	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	v.SetDefault("LOG_LEVEL", "info")
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			Host:           v.GetString("HOST"),
			Environment:    v.GetString("ENVIRONMENT"),
			APIPrefix:      "/" + strings.Trim(v.GetString("API_PREFIX"), "/"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
			ReadTimeout:    time.Duration(v.GetInt("READ_TIMEOUT_SECONDS")) * time.Second,
			WriteTimeout:   time.Duration(v.GetInt("WRITE_TIMEOUT_SECONDS")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("DATABASE_NAME"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT_SECONDS")) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:   v.GetString("JWT_SECRET"),
			TokenTTL: time.Duration(v.GetInt("JWT_TTL_HOURS")) * time.Hour,
		},
		Storage: StorageConfig{
			Driver:             strings.ToLower(v.GetString("STORAGE_DRIVER")),
			UploadDir:          v.GetString("UPLOAD_DIR"),
			PublicBaseURL:      strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			Bucket:             v.GetString("STORAGE_BUCKET"),
			MaxUploadSizeMB:    v.GetInt("MAX_UPLOAD_SIZE_MB"),
			MaxGalleryImages:   v.GetInt("MAX_GALLERY_IMAGES"),
			GCSCredentialsFile: v.GetString("GCS_CREDENTIALS_FILE"),
			R2Endpoint:         v.GetString("R2_ENDPOINT"),
			R2AccessKey:        v.GetString("R2_ACCESS_KEY_ID"),
			R2SecretKey:        v.GetString("R2_SECRET_ACCESS_KEY"),
			R2PublicDomain:     strings.TrimRight(v.GetString("R2_PUBLIC_DOMAIN"), "/"),
			MinIOEndpoint:      v.GetString("MINIO_ENDPOINT"),
			MinIOAccessKey:     v.GetString("MINIO_ACCESS_KEY"),
			MinIOSecretKey:     v.GetString("MINIO_SECRET_KEY"),
			MinIOUseSSL:        v.GetBool("MINIO_USE_SSL"),
		},
		RateLimit: RateLimitConfig{
			RPS:    v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:  v.GetInt("RATE_LIMIT_BURST"),
			Window: time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Admin: AdminConfig{
			Email:    strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("environment variable MONGODB_URI is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET is required")
	}
	switch cfg.Storage.Driver {
	case "local", "gcs", "r2", "minio":
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	if cfg.Storage.MaxUploadSizeMB <= 0 {
		cfg.Storage.MaxUploadSizeMB = 5
	}
	if cfg.Storage.MaxGalleryImages <= 0 {
		cfg.Storage.MaxGalleryImages = 10
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
