// ABOUTME: JSON record formats for media and playlists stored in badger.
// ABOUTME: Content is kept out of the media record so listings never touch it.

package kv

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/myaktube/internal/models"
)

// MediaData represents a media item's metadata stored in badger.
type MediaData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	Title     string `json:"title,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	CreatedAt int64  `json:"created_at"` // unix ms
}

// ToModel converts MediaData to a models.MediaItem.
func (m *MediaData) ToModel(content []byte) (*models.MediaItem, error) {
	kind, err := models.ParseKind(m.Kind)
	if err != nil {
		return nil, err
	}
	if m.ID == "" {
		return nil, fmt.Errorf("media record has no id")
	}
	return &models.MediaItem{
		ID:        m.ID,
		Name:      m.Name,
		Kind:      kind,
		MimeType:  m.MimeType,
		Size:      m.Size,
		Title:     m.Title,
		Artist:    m.Artist,
		Album:     m.Album,
		Content:   content,
		CreatedAt: time.UnixMilli(m.CreatedAt),
	}, nil
}

// FromMediaModel creates MediaData from a models.MediaItem.
func FromMediaModel(item *models.MediaItem) *MediaData {
	return &MediaData{
		ID:        item.ID,
		Name:      item.Name,
		Kind:      string(item.Kind),
		MimeType:  item.MimeType,
		Size:      item.Size,
		Title:     item.Title,
		Artist:    item.Artist,
		Album:     item.Album,
		CreatedAt: item.CreatedAt.UnixMilli(),
	}
}

// PlaylistData represents a playlist stored in badger.
type PlaylistData struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MediaIDs  []string `json:"media_ids"`
	CreatedAt int64    `json:"created_at"` // unix ms
}

func (p *PlaylistData) ToModel() (*models.Playlist, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("playlist record has no id")
	}
	ids := p.MediaIDs
	if ids == nil {
		ids = []string{}
	}
	return &models.Playlist{
		ID:        p.ID,
		Name:      p.Name,
		MediaIDs:  ids,
		CreatedAt: time.UnixMilli(p.CreatedAt),
	}, nil
}

func FromPlaylistModel(p *models.Playlist) *PlaylistData {
	ids := p.MediaIDs
	if ids == nil {
		ids = []string{}
	}
	return &PlaylistData{
		ID:        p.ID,
		Name:      p.Name,
		MediaIDs:  ids,
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
}

type mediaCodec struct{}

func (mediaCodec) identify(m *models.MediaItem) (string, int64) {
	return m.ID, m.CreatedAt.UnixMilli()
}

func (mediaCodec) validate(m *models.MediaItem) error {
	return m.Validate()
}

func (mediaCodec) marshal(m *models.MediaItem) ([]byte, []byte, error) {
	meta, err := json.Marshal(FromMediaModel(m))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal media: %w", err)
	}
	content := m.Content
	if content == nil {
		content = []byte{}
	}
	return meta, content, nil
}

func (mediaCodec) unmarshal(meta, blob []byte) (*models.MediaItem, error) {
	var md MediaData
	if err := json.Unmarshal(meta, &md); err != nil {
		return nil, fmt.Errorf("unmarshal media: %w", err)
	}
	return md.ToModel(blob)
}

func (mediaCodec) hasBlob() bool { return true }

type playlistCodec struct{}

func (playlistCodec) identify(p *models.Playlist) (string, int64) {
	return p.ID, p.CreatedAt.UnixMilli()
}

func (playlistCodec) validate(p *models.Playlist) error {
	return p.Validate()
}

func (playlistCodec) marshal(p *models.Playlist) ([]byte, []byte, error) {
	meta, err := json.Marshal(FromPlaylistModel(p))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal playlist: %w", err)
	}
	return meta, nil, nil
}

func (playlistCodec) unmarshal(meta, _ []byte) (*models.Playlist, error) {
	var pd PlaylistData
	if err := json.Unmarshal(meta, &pd); err != nil {
		return nil, fmt.Errorf("unmarshal playlist: %w", err)
	}
	return pd.ToModel()
}

func (playlistCodec) hasBlob() bool { return false }
