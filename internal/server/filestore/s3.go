package filestore

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/chartkeeper/internal/server/config"
)

// S3 keeps uploads in an S3-compatible bucket (MinIO in development).
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 builds an S3 store from the server config: static credentials and an
// explicit base endpoint, matching the MinIO-style deployment.
func NewS3(ctx context.Context, cfg *sc.Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *S3) Save(ctx context.Context, originalName string, data []byte) (string, error) {
	key := "uploads/" + storageKey(filepath.Ext(originalName))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

func (s *S3) Copy(ctx context.Context, path string) (string, error) {
	newKey := "uploads/" + storageKey(filepath.Ext(path))
	source := s.bucket + "/" + path
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     &s.bucket,
		Key:        &newKey,
		CopySource: &source,
	})
	if err != nil {
		return "", fmt.Errorf("copy %s: %w", path, err)
	}
	return newKey, nil
}

// Delete removes the object. S3 deletes are idempotent, so a missing key is
// already tolerated.
func (s *S3) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &path,
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *S3) Exists(ctx context.Context, path string) bool {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &path,
	})
	return err == nil
}
