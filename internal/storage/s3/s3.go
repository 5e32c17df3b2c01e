// Package s3 implements storage.ObjectStorage on Amazon S3 or an
// S3-compatible endpoint.
package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mmynk/receiptsplit/internal/storage"
)

var _ storage.ObjectStorage = (*Client)(nil)

// Client hands out presigned upload URLs for one bucket.
type Client struct {
	bucket    string
	presigner *s3.PresignClient
}

// New creates a Client from an AWS config. A non-empty endpoint switches to
// path-style addressing for S3-compatible stores such as MinIO.
func New(cfg aws.Config, bucket, endpoint string) *Client {
	var opts []func(*s3.Options)
	if endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}
	client := s3.NewFromConfig(cfg, opts...)
	return &Client{
		bucket:    bucket,
		presigner: s3.NewPresignClient(client),
	}
}

// Bucket returns the upload bucket.
func (c *Client) Bucket() string {
	return c.bucket
}

// PresignUpload returns a URL accepting a single PUT of key.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	req, err := c.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign: %w", err)
	}
	return req.URL, nil
}
