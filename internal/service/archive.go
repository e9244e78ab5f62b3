package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/kodawari/backend/config"
)

// ObjectPutter is the part of the S3 client the archive needs
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3PayloadArchive keeps raw purchase payloads in a bucket
type S3PayloadArchive struct {
	client ObjectPutter
	bucket string
}

// NewS3PayloadArchive creates an archive, nil when no bucket is configured
func NewS3PayloadArchive(s3Config *config.S3Config) *S3PayloadArchive {
	if s3Config == nil {
		return nil
	}
	return &S3PayloadArchive{client: s3Config.Client, bucket: s3Config.BucketName}
}

// Archive stores payload under purchases/<source>/<transactionID>.json
func (a *S3PayloadArchive) Archive(ctx context.Context, source, transactionID string, payload []byte) error {
	if a == nil {
		return nil
	}
	key := fmt.Sprintf("purchases/%s/%s.json", source, transactionID)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}
