// ABOUTME: MediaItem model for uploaded audio and video files.
// ABOUTME: Derives display name and kind from the upload source once, at creation.

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type MediaKind string

const (
	KindAudio MediaKind = "audio"
	KindVideo MediaKind = "video"
)

var ErrInvalidKind = errors.New("invalid media kind")

// ParseKind accepts "audio" or "video" in any case.
func ParseKind(s string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindAudio:
		return KindAudio, nil
	case KindVideo:
		return KindVideo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// KindFromMIME maps video/* to KindVideo and everything else to KindAudio.
func KindFromMIME(mimeType string) MediaKind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "video/") {
		return KindVideo
	}
	return KindAudio
}

// DeriveName strips the last extension from a file name.
// A name that would become empty keeps its original form.
func DeriveName(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 || strings.Contains(filename[idx:], "/") {
		return filename
	}
	if idx == 0 {
		return filename
	}
	return filename[:idx]
}

type MediaItem struct {
	ID        string
	Name      string
	Kind      MediaKind
	MimeType  string
	Size      int64
	Title     string
	Artist    string
	Album     string
	Content   []byte
	CreatedAt time.Time
}

func NewMediaItem(filename, mimeType string, content []byte) *MediaItem {
	if content == nil {
		content = []byte{}
	}
	return &MediaItem{
		ID:        NewID(),
		Name:      DeriveName(filename),
		Kind:      KindFromMIME(mimeType),
		MimeType:  mimeType,
		Size:      int64(len(content)),
		Content:   content,
		CreatedAt: Now(),
	}
}

// Metadata returns a copy without the content payload.
func (m *MediaItem) Metadata() *MediaItem {
	cp := *m
	cp.Content = nil
	return &cp
}

func (m *MediaItem) IsVideo() bool {
	return m.Kind == KindVideo
}

// Validate rejects records that must never reach storage.
func (m *MediaItem) Validate() error {
	if m == nil {
		return errors.New("media item is nil")
	}
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("media item has no id")
	}
	if m.Kind != KindAudio && m.Kind != KindVideo {
		return fmt.Errorf("%w: %q", ErrInvalidKind, m.Kind)
	}
	if m.CreatedAt.IsZero() {
		return errors.New("media item has no creation time")
	}
	return nil
}
