package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewObjectKey builds photos/YYYY/MM/<uuid><ext>, keeping the original extension
func NewObjectKey(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" || len(ext) > 10 {
		ext = ".dat"
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("photos/%s/%s%s", now.Format("2006/01"), id, ext)
}
