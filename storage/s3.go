package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	aws2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/twinj/uuid"
)

// Uploader stores an image blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, prefix, filename string, data []byte, contentType string) (string, error)
}

// S3Uploader uploads to a single bucket using path-style addressing and
// builds virtual-host style public URLs.
type S3Uploader struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3FromEnv builds an uploader from S3_BUCKET and AWS_REGION plus the
// default credential chain. Returns nil (not an error) when no bucket is
// configured so callers can treat uploads as unavailable.
func NewS3FromEnv(ctx context.Context) (*S3Uploader, error) {
	rawBucket := os.Getenv("S3_BUCKET")
	bucket := strings.SplitN(rawBucket, "/", 2)[0]
	if bucket == "" {
		log.Printf("S3_BUCKET not set, uploads disabled")
		return nil, nil
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &S3Uploader{client: client, bucket: bucket, region: region}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, prefix, filename string, data []byte, contentType string) (string, error) {
	key := prefix + "/" + UniqueName(filename)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws2.String(u.bucket),
		Key:           aws2.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws2.Int64(int64(len(data))),
		ContentType:   aws2.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}

// UniqueName keeps the original extension but replaces the name with a UUID
// so concurrent uploads never collide.
func UniqueName(filename string) string {
	return uuid.NewV4().String() + strings.ToLower(filepath.Ext(filename))
}
