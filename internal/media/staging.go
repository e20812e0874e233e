// Package media turns user-picked files into staged media items ready
// for preview or commit. Staging is purely in-memory; durable writes
// happen later, and only for items the user keeps.
package media

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tellfind/internal/ids"
	"tellfind/internal/models"
)

// DefaultMaxFileBytes is the hard per-file cap. Oversized media would
// blow both memory and storage quota on a field device.
const DefaultMaxFileBytes int64 = 15 * 1024 * 1024

// ErrFileTooLarge rejects a staging batch containing an oversized file.
var ErrFileTooLarge = errors.New("media file exceeds the size limit")

// File is one user-picked file before staging.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Stager converts picked files into staged items.
type Stager struct {
	maxFileBytes int64
	now          func() time.Time
}

// NewStager returns a stager with the given per-file cap; a value <= 0
// selects DefaultMaxFileBytes.
func NewStager(maxFileBytes int64) *Stager {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	return &Stager{maxFileBytes: maxFileBytes, now: time.Now}
}

// StageFiles converts files into staged media items, preserving input
// order. Files whose declared content type is not image or video are
// skipped silently; a single file over the cap fails the whole batch and
// no items are produced.
func (s *Stager) StageFiles(files []File) ([]*Item, error) {
	items := make([]*Item, 0, len(files))
	for _, file := range files {
		kind, ok := models.KindForContentType(file.ContentType)
		if !ok {
			continue
		}
		if int64(len(file.Data)) > s.maxFileBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, file.Name, len(file.Data), s.maxFileBytes)
		}

		id, err := ids.NewMediaID(s.now())
		if err != nil {
			return nil, err
		}
		items = append(items, &Item{
			ID:   id,
			Kind: kind,
			MIME: normalizeContentType(file.ContentType),
			Name: file.Name,
			Data: file.Data,
		})
	}
	return items, nil
}

// LoadFile reads a file from disk into a File, resolving the content
// type from the extension and falling back to sniffing the payload.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func normalizeContentType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}
