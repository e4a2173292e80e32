package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mood-diary/src/domain"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"
)

const presignExpiry = 15 * time.Minute

// S3BlobStore stores photos in an S3 compatible bucket
type S3BlobStore struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	config   *S3Config
	logger   *logrus.Logger
	now      func() time.Time
}

// NewS3BlobStore 写真用のS3ストアを作成
func NewS3BlobStore(config *S3Config, logger *logrus.Logger) (*S3BlobStore, error) {
	client, err := newS3Client(config)
	if err != nil {
		return nil, err
	}

	return &S3BlobStore{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
		config:   config,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Store uploads the photo under a fresh key and returns the key
func (s *S3BlobStore) Store(ctx context.Context, upload *domain.PhotoUpload) (string, error) {
	key := NewObjectKey(upload.Filename, s.now())

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        upload.Body,
		ContentType: aws.String(contentType),
		Metadata: map[string]*string{
			"original-filename": aws.String(upload.Filename),
		},
	})
	if err != nil {
		return "", fmt.Errorf("S3アップロードに失敗: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": s.config.Bucket,
		"key":    key,
	}).Info("写真をS3にアップロードしました")
	return key, nil
}

// Delete removes the object; S3 treats missing keys as success
func (s *S3BlobStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("S3オブジェクトの削除に失敗: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": s.config.Bucket,
		"key":    ref,
	}).Info("写真をS3から削除しました")
	return nil
}

// URL returns the public URL when configured, otherwise a presigned GET URL
func (s *S3BlobStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	if s.config.PublicURL != "" {
		return strings.TrimRight(s.config.PublicURL, "/") + "/" + ref
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(ref),
	})
	url, err := req.Presign(presignExpiry)
	if err != nil {
		s.logger.WithError(err).WithField("key", ref).Warn("署名付きURLの生成に失敗")
		return ""
	}
	return url
}
