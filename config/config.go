package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awspkg "storefront-service/pkg/aws"
)

// Config holds all environment variables for the storefront service.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"SERVICE_NAME" envDefault:"storefront-service"`

	MongoURL string `env:"MONGO_URL" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"storefront"`
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	JWTSecret      string   `env:"JWT_SECRET"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	AWSRegion       string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpoint     string `env:"AWS_ENDPOINT"`
	AWSAccessKeyID  string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSUseSecrets   bool   `env:"AWS_USE_SECRETS" envDefault:"false"`
	SecretsPrefix   string `env:"AWS_SECRETS_PREFIX" envDefault:"storefront/"`
	S3Bucket        string `env:"AWS_S3_BUCKET" envDefault:"storefront-images"`
	S3Prefix        string `env:"AWS_S3_PREFIX" envDefault:"products/"`
	CDNDomain       string `env:"CDN_DOMAIN"`
	CatalogTopicARN string `env:"CATALOG_TOPIC_ARN"`

	CloudWatchEnabled   bool   `env:"CLOUDWATCH_ENABLED" envDefault:"false"`
	CloudWatchNamespace string `env:"CLOUDWATCH_NAMESPACE" envDefault:"Storefront"`
	CloudWatchLogGroup  string `env:"CLOUDWATCH_LOG_GROUP" envDefault:"/storefront/services"`
}

// AWS returns the connection settings for pkg/aws.
func (c *Config) AWS() awspkg.Settings {
	return awspkg.Settings{
		Region:          c.AWSRegion,
		Endpoint:        c.AWSEndpoint,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretKey,
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (optional), parses the environment and, when
// AWS_USE_SECRETS=true, overrides secrets from Secrets Manager.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := parse()
	if err != nil {
		return nil, err
	}

	if cfg.AWSUseSecrets {
		awsCfg, err := awspkg.LoadAWSConfig(ctx, cfg.AWS())
		if err != nil {
			zap.L().Warn("Secrets Manager unavailable, using environment", zap.Error(err))
		} else {
			applySecrets(ctx, cfg, awspkg.NewSecretsClient(awsCfg))
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// applySecrets replaces values with their Secrets Manager counterparts.
// Lookup failures keep the environment value.
func applySecrets(ctx context.Context, cfg *Config, secrets awspkg.SecretGetter) {
	targets := map[string]*string{
		"JWT_SECRET": &cfg.JWTSecret,
		"MONGO_URL":  &cfg.MongoURL,
	}
	for name, dst := range targets {
		v, err := secrets.GetSecret(ctx, cfg.SecretsPrefix+name)
		if err != nil {
			zap.L().Warn("Secret lookup failed", zap.String("secret", name), zap.Error(err))
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MongoURL == "" {
		return fmt.Errorf("MONGO_URL is required")
	}
	return nil
}
