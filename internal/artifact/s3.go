package artifact

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink copies finished artifacts to s3://bucket/prefix.
type S3Sink struct {
	bucket   string
	prefix   string
	uploader uploader
}

// ParseS3URL splits s3://bucket/prefix. The prefix may be empty.
func ParseS3URL(raw string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(raw, "s3://") {
		return "", "", fmt.Errorf("invalid S3 URL %q: missing s3:// scheme", raw)
	}
	parts := strings.SplitN(strings.TrimPrefix(raw, "s3://"), "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL %q: missing bucket", raw)
	}
	if len(parts) == 2 {
		prefix = strings.Trim(parts[1], "/")
	}
	return parts[0], prefix, nil
}

// NewS3Sink loads AWS credentials for profile (empty means AWS_PROFILE or
// default) and prepares an upload manager for target.
func NewS3Sink(ctx context.Context, target, profile string) (*S3Sink, error) {
	bucket, prefix, err := ParseS3URL(target)
	if err != nil {
		return nil, err
	}
	if profile == "" {
		profile = os.Getenv("AWS_PROFILE")
	}
	opts := []func(*config.LoadOptions) error{config.WithRetryMode(aws.RetryModeAdaptive)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.DisableLogOutputChecksumValidationSkipped = true
	})
	return &S3Sink{bucket: bucket, prefix: prefix, uploader: manager.NewUploader(client)}, nil
}

func (s *S3Sink) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Upload sends localPath to the sink and returns the s3:// URIs written. A
// directory is uploaded file by file, keeping its relative layout.
func (s *S3Sink) Upload(ctx context.Context, localPath string) ([]string, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", localPath, err)
	}
	if !info.IsDir() {
		uri, err := s.uploadFile(ctx, localPath, filepath.Base(localPath))
		if err != nil {
			return nil, err
		}
		return []string{uri}, nil
	}
	base := filepath.Base(localPath)
	var uris []string
	err = filepath.WalkDir(localPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(localPath, p)
		if err != nil {
			return err
		}
		uri, err := s.uploadFile(ctx, p, path.Join(base, filepath.ToSlash(rel)))
		if err != nil {
			return err
		}
		uris = append(uris, uri)
		return nil
	})
	return uris, err
}

func (s *S3Sink) uploadFile(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("error opening %s: %w", localPath, err)
	}
	defer f.Close()
	key := s.key(name)
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return "", fmt.Errorf("error uploading %s: %w", localPath, err)
	}
	uri := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	log.Info().Str("op", "artifact/s3").Msgf("uploaded %s to %s", localPath, uri)
	return uri, nil
}
