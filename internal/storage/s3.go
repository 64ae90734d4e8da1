package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 implements Storage over an S3 bucket prefix.
//
// PutObject replaces an object in a single step, so WriteFileAtomic needs
// no temp-and-rename dance: S3 never exposes partial writes.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates an S3 storage over bucket/prefix. prefix has no leading or
// trailing slash and may be empty.
func NewS3(client *s3.Client, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

var _ Storage = (*S3)(nil)

func (s *S3) key(relPath string) string {
	if s.prefix == "" {
		return relPath
	}
	return s.prefix + "/" + relPath
}

// List pages through every object under the prefix.
func (s *S3) List(ctx context.Context) ([]FileInfo, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}

	var files []FileInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			rel := key
			if s.prefix != "" {
				rel = strings.TrimPrefix(key, s.prefix+"/")
			}
			if rel == "" || strings.HasSuffix(rel, "/") {
				continue
			}
			files = append(files, FileInfo{Path: rel, Size: aws.ToInt64(obj.Size)})
		}
	}
	return files, nil
}

// ReadFile fetches the object at relPath.
func (s *S3) ReadFile(ctx context.Context, relPath string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(relPath)),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.URI(relPath), err)
	}
	defer out.Body.Close() //nolint:errcheck
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.URI(relPath), err)
	}
	return data, nil
}

// WriteFileAtomic replaces the object at relPath with a single PutObject.
func (s *S3) WriteFileAtomic(ctx context.Context, relPath string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(relPath)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", s.URI(relPath), err)
	}
	return nil
}

// URI returns the s3:// URI of relPath.
func (s *S3) URI(relPath string) string {
	return "s3://" + s.bucket + "/" + s.key(relPath)
}

// BaseURI returns the s3:// URI of the base path.
func (s *S3) BaseURI() string {
	if s.prefix == "" {
		return "s3://" + s.bucket
	}
	return "s3://" + s.bucket + "/" + s.prefix
}
