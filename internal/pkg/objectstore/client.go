package objectstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client wraps the S3 API for the content object store. All ebook files,
// covers and video assets live in a single bucket; readers never receive the
// raw object key, only short-lived presigned URLs.
type Client struct {
	s3Client *s3.Client
	presign  *s3.PresignClient
	config   *Config
}

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
	defaultClientErr  error
)

// GetClient returns the process-wide object store client, initializing it on
// first use from the environment.
func GetClient() (*Client, error) {
	defaultClientOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			defaultClientErr = err
			return
		}
		defaultClient, defaultClientErr = NewClient(cfg)
	})
	return defaultClient, defaultClientErr
}

// NewClient creates a new object store client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if !config.IsEnabled() {
		return nil, fmt.Errorf("object storage is not enabled")
	}

	// Create AWS config with custom credentials
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.AccessKeyID,
			config.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(config.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with custom endpoint
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(config.EndpointURL)
		o.UsePathStyle = true // Required for most S3-compatible services
	})

	client := &Client{
		s3Client: s3Client,
		presign:  s3.NewPresignClient(s3Client),
		config:   config,
	}

	// Test connection
	if err := client.testConnection(); err != nil {
		return nil, fmt.Errorf("object storage connection test failed: %w", err)
	}

	log.Printf("[ObjectStore] Connected to bucket %s at %s", config.GetBucketName(), config.EndpointURL)
	return client, nil
}

// testConnection verifies that we can connect to the object store
func (c *Client) testConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.config.GetBucketName()),
	})
	if err != nil {
		return fmt.Errorf("cannot access bucket %s: %w", c.config.GetBucketName(), err)
	}
	return nil
}

// Upload stores an object under the given key.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.GetBucketName()),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.config.GetBucketName()),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a time-limited GET URL for the object. This is the only
// way object content reaches a reader; keys themselves never leave the API.
func (c *Client) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.GetBucketName()),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return req.URL, nil
}

// ObjectExists checks whether the key is present in the bucket.
func (c *Client) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.config.GetBucketName()),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, nil
	}
	return true, nil
}
