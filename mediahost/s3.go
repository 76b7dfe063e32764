package mediahost

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Host stores media in an S3-compatible bucket (MinIO in development).
// The bucket credential never reaches clients; deletion goes through this
// server or not at all.
type S3Host struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3HostFromEnv() (*S3Host, error) {
	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "us-east-1"
	}
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is not set")
	}
	endpoint := os.Getenv("S3_ENDPOINT")

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("S3_ACCESS_KEY"),
			os.Getenv("S3_SECRET_KEY"),
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/")
	if publicURL == "" {
		publicURL = strings.TrimRight(endpoint, "/") + "/" + bucket
	}

	return &S3Host{client: client, bucket: bucket, publicURL: publicURL}, nil
}

func storageKey(folder, name string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%v%s", folder, d.Year(), d.Month(), uuid.New(), filepath.Ext(name))
}

func (h *S3Host) Upload(ctx context.Context, folder, name, contentType string, data []byte) (*Uploaded, error) {
	key := storageKey(folder, name)
	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	return &Uploaded{
		URL:         h.publicURL + "/" + key,
		DeleteToken: key,
	}, nil
}

// Delete removes one uploaded object. Failures are logged and reported as
// false; callers decide whether a leak blocks them (post deletion does not).
func (h *S3Host) Delete(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(token),
	})
	if err != nil {
		log.Printf("media delete failed for %s: %v", token, err)
		return false
	}
	return true
}
