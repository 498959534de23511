// Package s3 exports catalog snapshots to an S3-compatible bucket (AWS S3 or
// MinIO) and fetches them back.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/catalogue/pkg/types"
)

const (
	defaultRegion = "us-east-1"
	contentType   = "application/json"
)

// ErrBucketEmpty is returned by New when no bucket is configured.
var ErrBucketEmpty = errors.New("s3 bucket required")

// Config holds the export target. Credentials fall back to the default AWS
// chain when AccessKeyID is empty.
type Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Prefix          string `yaml:"prefix"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

// Exporter writes snapshots as JSON objects under
// <prefix>/<workspace>/<snapshot id>.json.
type Exporter struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// Option configures an Exporter.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// WithHTTPClient replaces the HTTP client used by the S3 SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the exporter logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an Exporter from cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Exporter, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketEmpty
	}
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		so.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			so.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if o.httpClient != nil {
			so.HTTPClient = o.httpClient
		}
		so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		so.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return &Exporter{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: o.logger,
	}, nil
}

// Key returns the object key of the snapshot id of workspace.
func (e *Exporter) Key(workspace, id string) string {
	return path.Join(e.prefix, workspace, id+".json")
}

// Export uploads snap and returns its object key.
func (e *Exporter) Export(ctx context.Context, snap types.Snapshot) (string, error) {
	if snap.Workspace == "" {
		return "", types.ErrWorkspaceEmpty
	}
	if snap.ID == "" {
		return "", fmt.Errorf("export snapshot of %s: snapshot id is empty", snap.Workspace)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := e.Key(snap.Workspace, snap.ID)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"workspace":   snap.Workspace,
			"snapshot-id": snap.ID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", e.bucket, key, err)
	}

	e.logger.Info("snapshot exported",
		zap.String("bucket", e.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return key, nil
}

// Fetch downloads the snapshot stored under key.
func (e *Exporter) Fetch(ctx context.Context, key string) (types.Snapshot, error) {
	out, err := e.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var re interface{ HTTPStatusCode() int }
		if errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound {
			return types.Snapshot{}, fmt.Errorf("%w: s3://%s/%s", types.ErrSnapshotNotFound, e.bucket, key)
		}
		return types.Snapshot{}, fmt.Errorf("get s3://%s/%s: %w", e.bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("read s3://%s/%s: %w", e.bucket, key, err)
	}
	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return types.Snapshot{}, fmt.Errorf("decode s3://%s/%s: %w", e.bucket, key, err)
	}
	return snap, nil
}
