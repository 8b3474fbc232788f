package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3PutAPI is the subset of the S3 client the uploader needs.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores assets in a publicly readable bucket.
type S3Uploader struct {
	client     S3PutAPI
	bucket     string
	region     string
	publicBase string
	newKey     func(name string) string
}

func NewS3Uploader(client S3PutAPI, bucket, region, publicBase string) *S3Uploader {
	return &S3Uploader{
		client:     client,
		bucket:     bucket,
		region:     region,
		publicBase: strings.TrimRight(publicBase, "/"),
		newKey:     objectKey,
	}
}

// NewS3UploaderFromEnv builds the S3 client from the default AWS credential chain.
func NewS3UploaderFromEnv(ctx context.Context, bucket, region, publicBase string) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Uploader(s3.NewFromConfig(cfg), bucket, region, publicBase), nil
}

func (u *S3Uploader) Upload(ctx context.Context, f File) (string, error) {
	if f.Reader == nil {
		return "", ErrEmptyFile
	}

	key := u.newKey(f.Name)
	in := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f.Reader,
	}
	if f.ContentType != "" {
		in.ContentType = aws.String(f.ContentType)
	}
	if f.Size > 0 {
		in.ContentLength = aws.Int64(f.Size)
	}

	if _, err := u.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	if u.publicBase != "" {
		return u.publicBase + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}

func objectKey(name string) string {
	return "uploads/" + uuid.NewString() + strings.ToLower(path.Ext(name))
}
