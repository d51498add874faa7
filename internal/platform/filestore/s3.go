// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by [S3Backend].
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Backend stores files as objects in an S3-compatible bucket (AWS, R2, MinIO).
//
// Keys are used verbatim below an optional KeyPrefix. Directories do not exist
// in object storage, so EnsureDir is a no-op.
type S3Backend struct {
	client    S3API
	bucket    string
	keyPrefix string
}

// NewS3Backend wraps an existing client.
func NewS3Backend(client S3API, bucket, keyPrefix string) *S3Backend {
	return &S3Backend{client: client, bucket: bucket, keyPrefix: strings.Trim(keyPrefix, "/")}
}

/*
DialS3 builds an S3 client from the default AWS credential chain.

Parameters:
  - ctx: context.Context
  - region: string
  - endpoint: string (optional; set for R2/MinIO, enables path-style addressing)
*/
func DialS3(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("filestore: load aws config: %w", err)
	}

	return s3.NewFromConfig(awsConfig, func(options *s3.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	}), nil
}

func (backend *S3Backend) objectKey(key string) string {
	if backend.keyPrefix == "" {
		return key
	}
	return backend.keyPrefix + "/" + key
}

func (backend *S3Backend) EnsureDir(context.Context, string) error {
	return nil
}

func (backend *S3Backend) WriteFile(ctx context.Context, key string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(backend.bucket),
		Key:           aws.String(backend.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	_, err := backend.client.PutObject(ctx, input)
	return err
}

func (backend *S3Backend) ReadFile(ctx context.Context, key string) ([]byte, error) {
	output, err := backend.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(backend.bucket),
		Key:    aws.String(backend.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%s: %w", key, fs.ErrNotExist)
		}
		return nil, err
	}
	defer output.Body.Close()

	return io.ReadAll(output.Body)
}

func (backend *S3Backend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := backend.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(backend.bucket),
		Key:    aws.String(backend.objectKey(key)),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

// Remove deletes the object. S3 reports success for missing keys.
func (backend *S3Backend) Remove(ctx context.Context, key string) error {
	_, err := backend.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(backend.bucket),
		Key:    aws.String(backend.objectKey(key)),
	})
	return err
}
