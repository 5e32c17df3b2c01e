// Package config loads server configuration from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/spf13/viper"
)

const envPrefix = "RECEIPTSPLIT"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	AWS    AWSConfig
	AMQP   AMQPConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PublicURL prefixes share links; empty yields relative "/share/<token>" URLs.
	PublicURL string `mapstructure:"public_url"`
}

// DBConfig holds SQLite settings.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// JWTConfig holds bearer token validation settings.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
}

// AWSConfig holds S3 and Textract settings. OCR and uploads are disabled
// when Bucket is empty.
type AWSConfig struct {
	Region        string        `mapstructure:"region"`
	Bucket        string        `mapstructure:"bucket"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	OCRTimeout    time.Duration `mapstructure:"ocr_timeout"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
}

// Enabled reports whether AWS-backed features should be wired.
func (a AWSConfig) Enabled() bool {
	return a.Bucket != ""
}

// Load builds an aws.Config, using static credentials when both keys are set
// and the default credential chain otherwise.
func (a AWSConfig) Load(ctx context.Context) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(a.Region),
	}
	if a.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(a.MaxAttempts))
	}
	if a.AccessKey != "" && a.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(a.AccessKey, a.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading aws config: %w", err)
	}
	return cfg, nil
}

// AMQPConfig holds event publishing settings. Publishing is disabled when URL is empty.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from environment variables with the RECEIPTSPLIT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.public_url", "")

	v.SetDefault("db.path", "./data/receipts.db")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.bucket", "")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.access_key", "")
	v.SetDefault("aws.secret_key", "")
	v.SetDefault("aws.presign_expiry", "15m")
	v.SetDefault("aws.ocr_timeout", "30s")
	v.SetDefault("aws.max_attempts", 3)

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "receiptsplit")

	// Empty lets logging.Setup fall back to LOG_LEVEL.
	v.SetDefault("log.level", "")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			PublicURL:    strings.TrimSuffix(v.GetString("server.public_url"), "/"),
		},
		DB: DBConfig{
			Path: v.GetString("db.path"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Expiry: v.GetDuration("jwt.expiry"),
		},
		AWS: AWSConfig{
			Region:        v.GetString("aws.region"),
			Bucket:        v.GetString("aws.bucket"),
			Endpoint:      v.GetString("aws.endpoint"),
			AccessKey:     v.GetString("aws.access_key"),
			SecretKey:     v.GetString("aws.secret_key"),
			PresignExpiry: v.GetDuration("aws.presign_expiry"),
			OCRTimeout:    v.GetDuration("aws.ocr_timeout"),
			MaxAttempts:   v.GetInt("aws.max_attempts"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("amqp.url"),
			Exchange: v.GetString("amqp.exchange"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	// Railway/Heroku/Render set a PORT env var. Use it if the prefixed one is not set.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envPrefix+"_SERVER_PORT") == "" {
		cfg.Server.Port = ":" + port
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("%s_JWT_SECRET is required", envPrefix)
	}
	return cfg, nil
}
