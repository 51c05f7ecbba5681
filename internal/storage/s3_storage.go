package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	ReportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	defaultReportFolder = "reports"
	downloadURLExpiry   = 15 * time.Minute
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Storage struct {
	client  *s3.Client
	putter  objectPutter
	bucket  string
	baseURL string
	folder  string
}

// ArchivedReport describes an uploaded report object.
type ArchivedReport struct {
	Key         string `json:"key"`
	FileURL     string `json:"file_url"`
	DownloadURL string `json:"download_url,omitempty"`
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL, folder string) *S3Storage {
	var cfg aws.Config
	var err error

	// Static credentials when configured, otherwise the default chain
	// (environment, shared config, instance role).
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
		if err != nil {
			cfg = aws.Config{Region: region}
		}
	}

	if folder = strings.Trim(folder, "/"); folder == "" {
		folder = defaultReportFolder
	}

	client := s3.NewFromConfig(cfg)
	return &S3Storage{
		client:  client,
		putter:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		folder:  folder,
	}
}

// ReportKey returns a unique object key of the form <folder>/<date>-<uuid>.xlsx.
func (s *S3Storage) ReportKey(t time.Time) string {
	return fmt.Sprintf("%s/%s-%s.xlsx", s.folder, t.Format("2006-01-02"), uuid.New().String())
}

// UploadReport stores an xlsx workbook under a fresh report key.
func (s *S3Storage) UploadReport(ctx context.Context, t time.Time, data []byte) (*ArchivedReport, error) {
	key := s.ReportKey(t)

	_, err := s.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(ReportContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	return &ArchivedReport{Key: key, FileURL: s.FileURL(key)}, nil
}

// PresignDownload returns a GET URL for key valid for 15 minutes.
func (s *S3Storage) PresignDownload(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(downloadURLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

// FileURL is the public URL of key: the configured base URL (CloudFront or a
// custom domain) or the bucket's S3 endpoint.
func (s *S3Storage) FileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}
