package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"go.uber.org/zap"
)

// Settings carries the AWS connection parameters resolved by the config package.
type Settings struct {
	Region          string
	Endpoint        string // LocalStack/MinIO edge URL; empty means real AWS
	AccessKeyID     string
	SecretAccessKey string
}

// LoadAWSConfig loads the default AWS config and applies static credentials
// and a shared custom endpoint when provided, so every SDK client built from
// the result targets LocalStack in development.
func LoadAWSConfig(ctx context.Context, s Settings) (sdkaws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	if s.AccessKeyID != "" || s.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}

	if s.Endpoint != "" {
		cfg.BaseEndpoint = sdkaws.String(s.Endpoint)
		zap.L().Debug("AWS custom endpoint configured",
			zap.String("endpoint", s.Endpoint),
			zap.String("region", cfg.Region),
		)
	}

	return cfg, nil
}
