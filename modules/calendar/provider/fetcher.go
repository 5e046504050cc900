package provider

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"dateplanner-api/core/config"
	"dateplanner-api/core/constants"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Fetcher loads a fixture document from a location string.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

var errFixtureNotFound = stdErrors.New("fixture not found")

func isNotFound(err error) bool {
	return stdErrors.Is(err, errFixtureNotFound)
}

// SourceFetcher dispatches on the location scheme: s3://bucket/key,
// http(s)://... or a local file path.
type SourceFetcher struct {
	http *http.Client
	s3   *s3.Client
}

func NewSourceFetcher(storage config.StorageConfig) *SourceFetcher {
	return &SourceFetcher{
		http: &http.Client{Timeout: constants.DefaultTimeout},
		s3:   NewS3Client(storage),
	}
}

// NewS3Client builds a path-style client so S3-compatible stores work with
// a custom endpoint.
func NewS3Client(storage config.StorageConfig) *s3.Client {
	opts := s3.Options{
		Region:       storage.Region,
		UsePathStyle: true,
	}
	if storage.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(storage.AccessKey, storage.SecretKey, "")
	}
	if storage.Endpoint != "" {
		opts.BaseEndpoint = aws.String(storage.Endpoint)
	}
	return s3.New(opts)
}

func (f *SourceFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	switch {
	case strings.HasPrefix(location, "s3://"):
		return f.fetchS3(ctx, strings.TrimPrefix(location, "s3://"))
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return f.fetchHTTP(ctx, location)
	default:
		body, err := os.ReadFile(strings.TrimPrefix(location, "file://"))
		if stdErrors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errFixtureNotFound, location)
		}
		return body, err
	}
}

func (f *SourceFetcher) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", errFixtureNotFound, location)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", location, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (f *SourceFetcher) fetchS3(ctx context.Context, path string) ([]byte, error) {
	bucket, key, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 location %q", path)
	}

	out, err := f.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if stdErrors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: s3://%s", errFixtureNotFound, path)
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
