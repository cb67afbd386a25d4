package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const spacesPrefix = "assignments/"

// SpacesConfig holds configuration for the DigitalOcean Spaces store
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	CDNURL    string
}

// SpacesStore keeps files in a DigitalOcean Spaces (S3 compatible) bucket
type SpacesStore struct {
	s3Client s3iface.S3API
	bucket   string
	endpoint string
	cdnURL   string
}

// NewSpacesStore creates a new Spaces backed store
func NewSpacesStore(config SpacesConfig) (*SpacesStore, error) {
	if config.Bucket == "" || config.Region == "" {
		return nil, fmt.Errorf("DO_SPACES_BUCKET and DO_SPACES_REGION must be configured")
	}
	if config.Endpoint == "" {
		config.Endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", config.Region)
	}

	endpoint := config.Endpoint
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "https://" + endpoint
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return NewSpacesStoreWithClient(s3.New(sess), config), nil
}

// NewSpacesStoreWithClient builds a store on an existing S3 client
func NewSpacesStoreWithClient(client s3iface.S3API, config SpacesConfig) *SpacesStore {
	return &SpacesStore{
		s3Client: client,
		bucket:   config.Bucket,
		endpoint: strings.TrimPrefix(strings.TrimPrefix(config.Endpoint, "https://"), "http://"),
		cdnURL:   strings.TrimRight(config.CDNURL, "/"),
	}
}

func (s *SpacesStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(spacesPrefix + name),
		Body:          aws.ReadSeekCloser(r),
		ContentLength: aws.Int64(size),
		ACL:           aws.String("public-read"),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return name, nil
}

func (s *SpacesStore) Delete(ctx context.Context, name string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(spacesPrefix + name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *SpacesStore) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	err := s.s3Client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(spacesPrefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			files = append(files, FileInfo{
				Name:    strings.TrimPrefix(aws.StringValue(obj.Key), spacesPrefix),
				Size:    aws.Int64Value(obj.Size),
				ModTime: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// URL returns the CDN URL when configured, otherwise the bucket URL
func (s *SpacesStore) URL(name string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s%s", s.cdnURL, spacesPrefix, name)
	}
	return fmt.Sprintf("https://%s.%s/%s%s", s.bucket, s.endpoint, spacesPrefix, name)
}
