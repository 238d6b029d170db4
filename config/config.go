package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string `env:"PORT, default=8000"`
	Env         string `env:"APP_ENV, default=development"`
	DatabaseURL string `env:"DATABASE_URL, required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE, default=true"`
	CronSpec    string `env:"CRON_SPEC, default=@every 1h"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE, default=30"`

	Auth       AuthConfig
	Redis      RedisConfig
	SMTP       SMTPConfig
	Storage    StorageConfig
	Cloudinary CloudinaryConfig
	S3         S3Config
	Admin      AdminConfig
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET, required"`
	JWTTTL         time.Duration `env:"JWT_TTL, default=24h"`
	OTPTTL         time.Duration `env:"OTP_TTL, default=15m"`
	OTPMaxAttempts int           `env:"OTP_MAX_ATTEMPTS, default=5"`
}

// RedisConfig is optional. An empty Addr disables token revocation.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// SMTPConfig keeps the variable names the mail setup has always used.
// An empty Host switches to the logging mailer.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	User     string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASS"`
	From     string `env:"EMAIL_FROM"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER, default=cloudinary"`
}

type CloudinaryConfig struct {
	CloudName    string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey       string `env:"CLOUDINARY_API_KEY"`
	APISecret    string `env:"CLOUDINARY_API_SECRET"`
	UploadPreset string `env:"CLOUDINARY_UPLOAD_PRESET"`
}

type S3Config struct {
	Bucket string `env:"S3_BUCKET"`
	Region string `env:"S3_REGION, default=us-east-1"`
}

type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	return FromLookuper(ctx, envconfig.OsLookuper())
}

// FromLookuper builds the configuration from an arbitrary source.
func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "cloudinary", "s3":
	default:
		return fmt.Errorf("config: unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "s3" && c.S3.Bucket == "" {
		return fmt.Errorf("config: S3_BUCKET is required when STORAGE_DRIVER=s3")
	}
	if c.Auth.OTPMaxAttempts < 1 {
		return fmt.Errorf("config: OTP_MAX_ATTEMPTS must be positive")
	}
	return nil
}
