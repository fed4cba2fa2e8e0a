package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config configures the presigned S3 provider.
type S3Config struct {
	Bucket    string
	KeyPrefix string
	Region    string

	// Endpoint overrides the S3 endpoint, for MinIO and other
	// S3-compatible stores. Path-style addressing is used when set.
	Endpoint string

	// AccessKey and SecretKey select static credentials. Leave both
	// empty to use the default AWS credential chain.
	AccessKey string
	SecretKey string

	// Expiry bounds how long presigned params stay valid (default 15m).
	Expiry time.Duration
}

// S3Provider presigns a POST per upload so payloads go straight to the
// bucket. The returned params carry the policy form fields; the client
// writes them before the file part, which is the order S3 requires.
type S3Provider struct {
	presign *s3.PresignClient
	cfg     S3Config
}

// NewS3Provider loads AWS configuration and builds the provider.
func NewS3Provider(ctx context.Context, cfg S3Config) (*S3Provider, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("transport: s3 bucket required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("transport: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3ProviderFromClient(client, cfg), nil
}

// NewS3ProviderFromClient wraps an already configured S3 client.
func NewS3ProviderFromClient(client *s3.Client, cfg S3Config) *S3Provider {
	if cfg.Expiry <= 0 {
		cfg.Expiry = 15 * time.Minute
	}
	return &S3Provider{presign: s3.NewPresignClient(client), cfg: cfg}
}

// UploadParams presigns one POST. The object key is the configured prefix
// plus a fresh UUID; it rides back under Meta["s3_key"] so submit handlers
// can claim the object later.
func (p *S3Provider) UploadParams(ctx context.Context, name, contentType string, size int64) (Params, error) {
	key := p.cfg.KeyPrefix + uuid.NewString()
	req, err := p.presign.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = p.cfg.Expiry
	})
	if err != nil {
		return Params{}, fmt.Errorf("transport: presign post for %q: %w", name, err)
	}

	fields := make(map[string]string, len(req.Values))
	for k, v := range req.Values {
		fields[k] = v
	}
	return Params{
		URL:    req.URL,
		Method: http.MethodPost,
		Fields: fields,
		Meta: map[string]any{
			"s3_bucket": p.cfg.Bucket,
			"s3_key":    key,
			"s3_name":   name,
		},
	}, nil
}
