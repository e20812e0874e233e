package models

import (
	"fmt"
	"strings"
)

// MediaKind classifies a media payload for display purposes.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

var validMediaKinds = map[MediaKind]struct{}{
	MediaKindImage: {},
	MediaKindVideo: {},
}

// MediaRef is the lightweight pointer stored inside a find record,
// distinct from the binary payload kept in the blob store.
type MediaRef struct {
	ID   string    `json:"id" yaml:"id"`
	Kind MediaKind `json:"kind" yaml:"kind"`
	MIME string    `json:"mime" yaml:"mime"`
	Name string    `json:"name" yaml:"name"`
}

// ParseMediaKind validates a raw kind string.
func ParseMediaKind(raw string) (MediaKind, error) {
	value := MediaKind(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("media kind is required")
	}
	if _, ok := validMediaKinds[value]; !ok {
		return "", fmt.Errorf("invalid media kind: %s", value)
	}
	return value, nil
}

// KindForContentType maps a declared content type to a media kind.
// Only image/* and video/* content is accepted for finds.
func KindForContentType(contentType string) (MediaKind, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "video/"):
		return MediaKindVideo, true
	case strings.HasPrefix(ct, "image/"):
		return MediaKindImage, true
	default:
		return "", false
	}
}
