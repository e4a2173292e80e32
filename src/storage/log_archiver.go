package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"
)

// LogArchiver moves rotated log files into an S3 bucket
type LogArchiver struct {
	client *s3.S3
	bucket string
	logger *logrus.Logger
	now    func() time.Time
}

// NewLogArchiver ログ退避用のアーカイバを作成
func NewLogArchiver(config *S3Config, bucket string, logger *logrus.Logger) (*LogArchiver, error) {
	client, err := newS3Client(config)
	if err != nil {
		return nil, err
	}
	if bucket == "" {
		bucket = config.Bucket
	}
	return &LogArchiver{client: client, bucket: bucket, logger: logger, now: time.Now}, nil
}

// ArchiveFile ログファイルをS3にアップロード
func (a *LogArchiver) ArchiveFile(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}
	defer file.Close()

	fileName := filepath.Base(filePath)
	objectKey := "logs/" + fileName

	_, err = a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]*string{
			"upload-time": aws.String(a.now().Format(time.RFC3339)),
			"source":      aws.String("mood-diary"),
		},
	})
	if err != nil {
		return fmt.Errorf("S3アップロードに失敗: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"file":   fileName,
		"bucket": a.bucket,
		"key":    objectKey,
	}).Info("ログファイルをS3にアップロードしました")
	return nil
}

// ArchiveOld uploads and removes *.log files older than maxAge, skipping the file in use.
// It returns the number of archived files.
func (a *LogArchiver) ArchiveOld(ctx context.Context, logDir string, maxAge time.Duration, current string) (int, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return 0, fmt.Errorf("ログディレクトリの読み取りに失敗: %w", err)
	}

	cutoff := a.now().Add(-maxAge)
	archived := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		filePath := filepath.Join(logDir, entry.Name())
		if current != "" && filepath.Clean(filePath) == filepath.Clean(current) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			a.logger.WithError(err).WithField("file", entry.Name()).Error("ファイル情報の取得に失敗")
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := a.ArchiveFile(ctx, filePath); err != nil {
			a.logger.WithError(err).WithField("file", entry.Name()).Error("ログファイルのアップロードに失敗")
			continue
		}
		if err := os.Remove(filePath); err != nil {
			a.logger.WithError(err).WithField("file", entry.Name()).Error("ローカルファイルの削除に失敗")
			continue
		}
		archived++
	}

	return archived, nil
}

// Start runs ArchiveOld every interval until ctx is cancelled
func (a *LogArchiver) Start(ctx context.Context, logDir string, interval, maxAge time.Duration, current func() string) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := a.ArchiveOld(ctx, logDir, maxAge, current()); err != nil {
					a.logger.WithError(err).Error("定期的なログアップロードに失敗")
				}
			}
		}
	}()

	a.logger.WithFields(logrus.Fields{
		"interval": interval,
		"maxAge":   maxAge,
	}).Info("定期的なログアップロードを開始しました")
}
