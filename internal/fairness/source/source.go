// Package source opens the fairness dataset file from local disk or S3 and
// decodes it into rows. Parquet is the native format; CSV exports are also
// accepted.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"fairdash/internal/fairness/models"
)

// ObjectGetter is the part of the S3 client the source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type options struct {
	client   ObjectGetter
	region   string
	endpoint string
}

// Option configures dataset loading.
type Option func(*options)

// WithS3Client supplies a ready S3 client instead of loading AWS config.
func WithS3Client(c ObjectGetter) Option {
	return func(o *options) { o.client = c }
}

// WithRegion sets the AWS region used when an S3 client is built.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the S3 client at a compatible service such as MinIO.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// Format is the encoding of a dataset file.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// FormatOf picks the format from the file extension. Anything that is not
// .csv is read as parquet.
func FormatOf(location string) Format {
	if strings.EqualFold(path.Ext(location), ".csv") {
		return FormatCSV
	}
	return FormatParquet
}

// Load opens location and decodes every row. Location is a file path or an
// s3://bucket/key URL.
func Load(ctx context.Context, location string, opts ...Option) ([]models.Row, error) {
	rc, err := Open(ctx, location, opts...)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var rows []models.Row
	switch FormatOf(location) {
	case FormatCSV:
		rows, err = ReadCSV(rc)
	default:
		// Parquet needs random access; the dataset is read into memory once.
		var data []byte
		data, err = io.ReadAll(rc)
		if err == nil {
			rows, err = ReadParquet(bytes.NewReader(data), int64(len(data)))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", location, err)
	}
	return rows, nil
}

// Open returns a reader over the raw dataset bytes.
func Open(ctx context.Context, location string, opts ...Option) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "s3://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		return f, nil
	}

	bucket, key, err := parseS3URL(location)
	if err != nil {
		return nil, err
	}
	o := options{region: "us-east-1"}
	for _, opt := range opts {
		opt(&o)
	}
	client := o.client
	if client == nil {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(o.region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg, func(so *s3.Options) {
			if o.endpoint != "" {
				so.BaseEndpoint = aws.String(o.endpoint)
				so.UsePathStyle = true
			}
		})
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("get dataset object %s: %w", location, err)
	}
	return out.Body, nil
}

func parseS3URL(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("parse dataset url: %w", err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("dataset url %q needs a bucket and a key", location)
	}
	return bucket, key, nil
}
