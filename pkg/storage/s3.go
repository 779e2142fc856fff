package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Provider represents the S3-compatible storage provider
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
)

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "s3.eu-west-1.wasabisys.com",
	"eu-west-2":      "s3.eu-west-2.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-northeast-2": "s3.ap-northeast-2.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
	"ap-southeast-2": "s3.ap-southeast-2.wasabisys.com",
}

// Config holds configuration for S3-compatible avatar storage
type Config struct {
	Provider        Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	// PublicBaseURL overrides the derived public URL prefix (e.g. a CDN)
	PublicBaseURL string
}

// BlobStore keeps exactly one avatar object per user at a deterministic key.
type BlobStore struct {
	client *s3.Client
	cfg    Config
}

func New(ctx context.Context, cfg Config) (*BlobStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	switch cfg.Provider {
	case ProviderWasabi:
		endpoint, ok := WasabiEndpoints[cfg.Region]
		if !ok {
			return nil, fmt.Errorf("unknown Wasabi region: %s", cfg.Region)
		}
		// Wasabi requires a custom endpoint and path-style addressing
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String("https://" + endpoint)
			o.UsePathStyle = true
		})
	default:
		client = s3.NewFromConfig(awsCfg)
	}

	return &BlobStore{client: client, cfg: cfg}, nil
}

// avatarKey is the single avatar slot per user. Uploading again overwrites;
// there is no history.
func avatarKey(userID string) string {
	return fmt.Sprintf("users/%s/avatar", userID)
}

func (b *BlobStore) PutAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	key := avatarKey(userID)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("avatar upload failed: %w", err)
	}
	return b.PublicURL(key), nil
}

func (b *BlobStore) DeleteAvatar(ctx context.Context, userID string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(avatarKey(userID)),
	})
	if err != nil {
		return fmt.Errorf("avatar delete failed: %w", err)
	}
	return nil
}

// PublicURL derives the object's public URL from the provider layout, unless
// an explicit base URL (CDN) is configured.
func (b *BlobStore) PublicURL(key string) string {
	if b.cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", b.cfg.PublicBaseURL, key)
	}
	if b.cfg.Provider == ProviderWasabi {
		return fmt.Sprintf("https://%s/%s/%s", WasabiEndpoints[b.cfg.Region], b.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.cfg.Bucket, b.cfg.Region, key)
}

// TestConnection verifies bucket access by listing a single object.
func (b *BlobStore) TestConnection(ctx context.Context) error {
	_, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.cfg.Bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", b.cfg.Bucket, err)
	}
	return nil
}
