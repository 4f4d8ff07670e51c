package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Store talks to Cloudflare R2 through the S3 API. Public URLs are served
// from publicDomain (custom domain or r2.dev URL).
type R2Store struct {
	s3           *s3.Client
	bucket       string
	publicDomain string
}

func NewR2Store(ctx context.Context, endpoint, accessKey, secretKey, bucket, publicDomain string) (*R2Store, error) {
	if bucket == "" || accessKey == "" || secretKey == "" || endpoint == "" {
		return nil, fmt.Errorf("missing R2 settings (STORAGE_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Store{s3: client, bucket: bucket, publicDomain: strings.TrimRight(publicDomain, "/")}, nil
}

func (s *R2Store) Driver() string { return "r2" }

func (s *R2Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.s3.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return r2PublicURL(s.publicDomain, s.bucket, key), nil
}

func (s *R2Store) Delete(ctx context.Context, key string) error {
	_, err := s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *R2Store) KeyFromURL(raw string) (string, error) {
	prefix := s.publicDomain + "/" + s.bucket + "/"
	if s.publicDomain == "" || !strings.HasPrefix(raw, prefix) {
		return "", fmt.Errorf("not a recognised R2 public url")
	}
	return strings.TrimPrefix(raw, prefix), nil
}

func r2PublicURL(domain, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", domain, bucket, key)
}
