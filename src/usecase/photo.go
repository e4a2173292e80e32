package usecase

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"mood-diary/src/domain"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen mimetype が判定に使う先頭バイト数
const sniffLen = 3072

// inspectPhoto checks the upload is an image within maxBytes and returns a
// copy whose body replays the sniffed header
func inspectPhoto(upload *domain.PhotoUpload, maxBytes int64) (*domain.PhotoUpload, error) {
	if maxBytes > 0 && upload.Size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrInvalidPhoto, upload.Size, maxBytes)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPhoto, err)
	}
	head = head[:n]
	if n == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidPhoto)
	}

	mtype := mimetype.Detect(head)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", domain.ErrInvalidPhoto, mtype.String())
	}

	filename := upload.Filename
	if filename == "" || !strings.Contains(filename, ".") {
		filename = "photo" + mtype.Extension()
	}

	body := io.MultiReader(bytes.NewReader(head), upload.Body)
	if maxBytes > 0 {
		body = &limitedBody{r: io.LimitReader(body, maxBytes+1), max: maxBytes}
	}

	return &domain.PhotoUpload{
		Filename:    filename,
		ContentType: mtype.String(),
		Size:        upload.Size,
		Body:        body,
	}, nil
}

// limitedBody fails the read once more than max bytes were streamed
type limitedBody struct {
	r    io.Reader
	max  int64
	read int64
}

func (l *limitedBody) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.max {
		return n, fmt.Errorf("%w: exceeds limit of %d bytes", domain.ErrInvalidPhoto, l.max)
	}
	return n, err
}
