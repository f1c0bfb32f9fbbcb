package objectstore

import (
	"errors"
	"fmt"

	"github.com/bodhiverse/bodhika/internal/pkg/env"
)

// Config holds object storage configuration for the S3-compatible store
// (Zata) that keeps ebook files, covers and video assets.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // S3-compatible endpoint
	Enabled         bool
}

// LoadConfig loads object storage configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("ZATA_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("ZATA_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("ZATA_REGION", "ap-south-1"),
		BucketName:      env.GetEnv("ZATA_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("ZATA_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("ZATA_ENABLED", "false") == "true",
	}

	// Validate required fields if object storage is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("ZATA_ACCESS_KEY_ID is required when object storage is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("ZATA_SECRET_ACCESS_KEY is required when object storage is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("ZATA_BUCKET_NAME is required when object storage is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if object storage is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// EBookObjectKey generates a standardized object key for an ebook file.
func (c *Config) EBookObjectKey(uuid, fileExtension string, year, month int) string {
	// Format: ebooks/YYYY/MM/UUID.ext
	return fmt.Sprintf("ebooks/%04d/%02d/%s%s", year, month, uuid, fileExtension)
}

// CoverObjectKey generates a standardized object key for an ebook cover.
func (c *Config) CoverObjectKey(uuid string, year, month int) string {
	return fmt.Sprintf("covers/%04d/%02d/%s.jpg", year, month, uuid)
}

// VideoObjectKey generates a standardized object key for a video asset.
func (c *Config) VideoObjectKey(uuid, fileExtension string, year, month int) string {
	return fmt.Sprintf("videos/%04d/%02d/%s%s", year, month, uuid, fileExtension)
}

// GetBucketName returns the bucket name as configured (no automatic prefixing)
func (c *Config) GetBucketName() string {
	return c.BucketName
}
