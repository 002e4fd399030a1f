package capture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader copies finished capture files to a bucket.
type S3Uploader struct {
	client PutObjectAPI
	bucket string
	prefix string
	log    zerolog.Logger
}

// NewS3Uploader creates an uploader writing objects under prefix in bucket.
func NewS3Uploader(client PutObjectAPI, bucket, prefix string) *S3Uploader {
	return &S3Uploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    zerolog.Nop(),
	}
}

// WithLogger sets the logger used for upload results.
func (u *S3Uploader) WithLogger(l zerolog.Logger) *S3Uploader {
	u.log = l
	return u
}

// Upload stores data under prefix/name and returns the object key.
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte, records int) (string, error) {
	key := path.Join(u.prefix, name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-mcproto-capture"),
		Metadata: map[string]string{
			"records":     strconv.Itoa(records),
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("capture: s3 upload failed: %w", err)
	}
	u.log.Info().Str("bucket", u.bucket).Str("key", key).Int("bytes", len(data)).Msg("capture uploaded")
	return key, nil
}

// UploadFile uploads the capture file at p under its base name.
func (u *S3Uploader) UploadFile(ctx context.Context, p string) (string, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	recs, err := NewReader(bytes.NewReader(data)).All()
	if err != nil {
		return "", fmt.Errorf("capture: %s: %w", p, err)
	}
	return u.Upload(ctx, filepath.Base(p), data, len(recs))
}

// S3Options describes the bucket endpoint.
type S3Options struct {
	Region       string
	Endpoint     string // optional, for S3-compatible stores
	UsePathStyle bool
}

// NewS3Client builds an S3 client whose credentials come from the standard
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN variables.
func NewS3Client(o S3Options) *s3.Client {
	opts := s3.Options{
		Region:       o.Region,
		UsePathStyle: o.UsePathStyle,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "environment",
			}, nil
		})),
	}
	if o.Endpoint != "" {
		opts.BaseEndpoint = aws.String(o.Endpoint)
	}
	return s3.New(opts)
}
