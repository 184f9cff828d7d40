package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/logger"
)

// S3API is the part of *s3.Client used by S3Store.
type S3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads assets from an S3 compatible bucket. The object key of an
// asset is Prefix + id.
//
// The asset name is taken from the "name" object metadata. Without it, an
// extension is derived from the Content-Type.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Store creates an S3Store. Static credentials are used when both
// keys are set; otherwise the default AWS credential chain applies. A
// custom endpoint allows MinIO and other S3 compatible servers.
func NewS3Store(ctx context.Context, cfg S3Config, log *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewS3StoreWithClient(client, cfg.Bucket, cfg.Prefix, log), nil
}

// NewS3StoreWithClient creates an S3Store over an existing client.
func NewS3StoreWithClient(client S3API, bucket, prefix string, log *zap.Logger) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.OrNop(log).Named("blob.s3"),
	}
}

// Key returns the object key for id.
func (s *S3Store) Key(id string) string {
	return s.prefix + id
}

// ResolveName implements Store.
func (s *S3Store) ResolveName(ctx context.Context, id string) (string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(id)),
	})
	if err != nil {
		return "", mapS3Error(id, err)
	}

	for k, v := range out.Metadata {
		if strings.EqualFold(k, "name") && v != "" {
			return v, nil
		}
	}

	if ct := aws.ToString(out.ContentType); ct != "" {
		if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			return preferredExt(exts), nil
		}
	}
	return "", nil
}

// Fetch implements Store.
func (s *S3Store) Fetch(ctx context.Context, id, destPath string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(id)),
	})
	if err != nil {
		return mapS3Error(id, err)
	}
	defer out.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	n, err := io.Copy(file, out.Body)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", id, err)
	}
	s.logger.Debug("object fetched", zap.String("key", s.Key(id)), zap.Int64("bytes", n))
	return file.Close()
}

// preferredExt picks a stable extension from mime.ExtensionsByType, whose
// order depends on the platform's mime tables.
func preferredExt(exts []string) string {
	for _, want := range []string{".png", ".jpg", ".webp", ".gif"} {
		for _, e := range exts {
			if e == want {
				return e
			}
		}
	}
	return exts[0]
}

func mapS3Error(id string, err error) error {
	var (
		noSuchKey *types.NoSuchKey
		notFound  *types.NotFound
	)
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return fmt.Errorf("fetch %s: %w", id, err)
}
