package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mood-diary/src/domain"

	"github.com/sirupsen/logrus"
)

// LocalBlobStore stores photos below a media directory on local disk
type LocalBlobStore struct {
	root      string
	urlPrefix string
	logger    *logrus.Logger
	now       func() time.Time
}

// NewLocalBlobStore ローカルディスク用のストアを作成
func NewLocalBlobStore(root, urlPrefix string, logger *logrus.Logger) (*LocalBlobStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("メディアディレクトリの作成に失敗: %w", err)
	}
	return &LocalBlobStore{
		root:      root,
		urlPrefix: urlPrefix,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Root returns the media directory
func (s *LocalBlobStore) Root() string {
	return s.root
}

func (s *LocalBlobStore) path(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if ref == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob reference %q", ref)
	}
	return filepath.Join(s.root, clean), nil
}

// Store writes to a temp file and renames it into place so a ref never points at a partial file
func (s *LocalBlobStore) Store(ctx context.Context, upload *domain.PhotoUpload) (string, error) {
	key := NewObjectKey(upload.Filename, s.now())
	dst, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("ディレクトリの作成に失敗: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("一時ファイルの作成に失敗: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, upload.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("写真の書き込みに失敗: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("写真の書き込みに失敗: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("写真の書き込みに失敗: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("写真の保存に失敗: %w", err)
	}

	s.logger.WithField("key", key).Info("写真を保存しました")
	return key, nil
}

// Delete removes the file; a missing file is not an error
func (s *LocalBlobStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	p, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("写真の削除に失敗: %w", err)
	}
	s.logger.WithField("key", ref).Info("写真を削除しました")
	return nil
}

// URL returns the media URL served by the HTTP layer
func (s *LocalBlobStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return strings.TrimRight(s.urlPrefix, "/") + "/" + ref
}
