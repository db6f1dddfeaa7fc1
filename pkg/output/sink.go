package output

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// DefaultUploadTimeout bounds a single S3 upload
const DefaultUploadTimeout = 10 * time.Second

// Sink stores rendered images under a key
type Sink interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// FileSink writes images below Dir
type FileSink struct {
	Dir string
}

// Put writes data to Dir/key, creating directories as needed
func (fs FileSink) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("invalid output key %q", key)
	}

	path := filepath.Join(fs.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// S3Config holds the bucket and credentials for S3Sink
type S3Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string
	Region    string
	Bucket    string
	ACL       string // empty leaves the bucket default
	Timeout   time.Duration
}

// S3Sink uploads images to an S3-compatible bucket
type S3Sink struct {
	client  s3iface.S3API
	bucket  string
	acl     string
	timeout time.Duration
}

// NewS3Sink creates a path-style S3 client with static credentials
func NewS3Sink(cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	awsConfig := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return newS3Sink(s3.New(sess), cfg), nil
}

func newS3Sink(client s3iface.S3API, cfg S3Config) *S3Sink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	return &S3Sink{client: client, bucket: cfg.Bucket, acl: cfg.ACL, timeout: timeout}
}

// Put uploads data under key
func (ss *S3Sink) Put(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, ss.timeout)
	defer cancel()

	size := int64(len(data))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(ss.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if ss.acl != "" {
		input.ACL = aws.String(ss.acl)
	}

	if _, err := ss.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Printf("Uploaded %s to S3 (%d bytes)", key, size)
	return nil
}
