// Package source loads templates and data documents from local files or S3.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/zvue/internal/config"
	"github.com/vango-dev/zvue/internal/errors"
)

// ObjectGetter is the subset of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads documents by location: a file path or an s3://bucket/key URL.
type Loader struct {
	s3     ObjectGetter
	logger *slog.Logger
}

// New creates a loader. client may be nil when no s3:// locations are used.
func New(client ObjectGetter, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		s3:     client,
		logger: logger.With("component", "source"),
	}
}

// NewS3Client builds an S3 client from config. Credentials come from the
// standard AWS_* environment variables; without them requests are anonymous.
func NewS3Client(cfg config.S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
		Credentials:  envCredentials(),
	}
	if opts.Region == "" {
		opts.Region = os.Getenv("AWS_REGION")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials() aws.CredentialsProvider {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.AnonymousCredentials{}
	}
	return aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "ZvueEnvironment",
		}, nil
	}))
}

// Read returns the raw bytes at loc.
func (l *Loader) Read(ctx context.Context, loc string) ([]byte, error) {
	if !strings.HasPrefix(loc, "s3://") {
		data, err := os.ReadFile(loc)
		if err != nil {
			return nil, errors.New("Z020").WithFile(loc).Wrap(err)
		}
		return data, nil
	}

	bucket, key, err := ParseS3URL(loc)
	if err != nil {
		return nil, errors.New("Z020").WithFile(loc).Wrap(err)
	}
	if l.s3 == nil {
		return nil, errors.New("Z020").
			WithFile(loc).
			WithSuggestion("Configure s3.region in zvue.json or set ZVUE_S3_REGION")
	}

	l.logger.Debug("fetching object", "bucket", bucket, "key", key)
	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("Z020").WithFile(loc).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("Z020").WithFile(loc).Wrap(fmt.Errorf("read body: %w", err))
	}
	return data, nil
}

// LoadData reads and decodes a data document. Files ending in .yaml or .yml
// are YAML; everything else is JSON. The top level must be an object.
func (l *Loader) LoadData(ctx context.Context, loc string) (map[string]any, error) {
	raw, err := l.Read(ctx, loc)
	if err != nil {
		return nil, err
	}

	data, err := Decode(Format(loc), raw)
	if err != nil {
		return nil, errors.New("Z004").WithFile(loc).Wrap(err)
	}
	return data, nil
}

// Format returns "yaml" or "json" based on the location's extension.
func Format(loc string) string {
	switch strings.ToLower(path.Ext(loc)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Decode parses raw in the given format into a plain data object.
func Decode(format string, raw []byte) (map[string]any, error) {
	var data map[string]any
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	if data == nil {
		return nil, fmt.Errorf("decode %s: top level is not an object", format)
	}
	return data, nil
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(loc string) (bucket, key string, err error) {
	u, err := url.Parse(loc)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 url: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("parse s3 url: %q is not s3://bucket/key", loc)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("parse s3 url: %q has no key", loc)
	}
	return u.Host, key, nil
}
