package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/internal/telemetry"
	"github.com/marmos91/idrecon/pkg/metrics"
)

// ErrArchiveDisabled is returned when archiving is requested but S3 is not
// enabled.
var ErrArchiveDisabled = errors.New("s3 archive is not enabled")

// S3Config configures the report archive bucket.
type S3Config struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Bucket is the destination bucket name.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region uses the SDK default when empty.
	Region string `mapstructure:"region" yaml:"region,omitempty"`

	// Endpoint targets an S3-compatible service such as MinIO.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// Prefix is prepended to every object key, e.g. "reports/".
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`

	// ForcePathStyle is required for most S3-compatible services.
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style,omitempty"`

	// AccessKeyID and SecretAccessKey override the SDK credential chain.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`
}

// Validate checks an enabled configuration.
func (c *S3Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Bucket == "" {
		return fmt.Errorf("export.s3.bucket is required when s3 export is enabled")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("export.s3 access_key_id and secret_access_key must be set together")
	}
	return nil
}

// PutObjectAPI is the subset of *s3.Client used by the Archiver.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver uploads rendered reports to a bucket.
type Archiver struct {
	client  PutObjectAPI
	bucket  string
	region  string
	prefix  string
	metrics metrics.ArchiveMetrics
}

// NewArchiver wraps an existing client. m may be nil.
func NewArchiver(client PutObjectAPI, cfg S3Config, m metrics.ArchiveMetrics) *Archiver {
	return &Archiver{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		prefix:  cfg.Prefix,
		metrics: m,
	}
}

// NewArchiverFromConfig creates an S3 client from cfg.
func NewArchiverFromConfig(ctx context.Context, cfg S3Config, m metrics.ArchiveMetrics) (*Archiver, error) {
	if !cfg.Enabled {
		return nil, ErrArchiveDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewArchiver(s3.NewFromConfig(awsCfg, s3Opts...), cfg, m), nil
}

// ArchivedReport describes a report stored in the bucket.
type ArchivedReport struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Format Format `json:"format"`
	Size   int    `json:"size"`
}

// Bucket returns the destination bucket.
func (a *Archiver) Bucket() string { return a.bucket }

// Key returns the object key for a file name under the configured prefix.
func (a *Archiver) Key(name string) string {
	if a.prefix == "" {
		return name
	}
	return path.Join(strings.TrimSuffix(a.prefix, "/"), name)
}

// Upload puts body under Key(name) and returns the full object key.
func (a *Archiver) Upload(ctx context.Context, name string, format Format, body []byte) (key string, err error) {
	key = a.Key(name)

	ctx, span := telemetry.StartClientSpan(ctx, telemetry.SpanExportS3,
		telemetry.Bucket(a.bucket), telemetry.Region(a.region), telemetry.StorageKey(key),
		telemetry.Format(string(format)))
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(format.ContentType()),
	})
	metrics.ObserveUpload(a.metrics, string(format), len(body), time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("s3 put object %s/%s: %w", a.bucket, key, err)
	}

	logger.InfoCtx(ctx, "Report archived", logger.Bucket(a.bucket), logger.Key(key),
		"bytes", len(body))
	return key, nil
}
