// ABOUTME: Playlist model: a named, ordered list of media item references.
// ABOUTME: Mutators return new values so stored records are never changed in place.

package models

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// DefaultPlaylistName is used when a playlist is created with a blank name.
const DefaultPlaylistName = "Untitled Playlist"

type Playlist struct {
	ID        string
	Name      string
	MediaIDs  []string
	CreatedAt time.Time
}

func NewPlaylist(name string) *Playlist {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPlaylistName
	}
	return &Playlist{
		ID:        NewID(),
		Name:      name,
		MediaIDs:  []string{},
		CreatedAt: Now(),
	}
}

func (p *Playlist) Count() int {
	return len(p.MediaIDs)
}

func (p *Playlist) Contains(mediaID string) bool {
	return slices.Contains(p.MediaIDs, mediaID)
}

// WithMedia returns a copy with mediaID appended, or an unchanged copy if already present.
func (p *Playlist) WithMedia(mediaID string) *Playlist {
	cp := p.clone()
	if !cp.Contains(mediaID) {
		cp.MediaIDs = append(cp.MediaIDs, mediaID)
	}
	return cp
}

// WithoutMedia returns a copy with every occurrence of mediaID removed.
func (p *Playlist) WithoutMedia(mediaID string) *Playlist {
	cp := p.clone()
	cp.MediaIDs = slices.DeleteFunc(cp.MediaIDs, func(id string) bool {
		return id == mediaID
	})
	return cp
}

func (p *Playlist) clone() *Playlist {
	cp := *p
	cp.MediaIDs = make([]string, len(p.MediaIDs))
	copy(cp.MediaIDs, p.MediaIDs)
	return &cp
}

func (p *Playlist) Validate() error {
	if p == nil {
		return errors.New("playlist is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("playlist has no id")
	}
	if p.CreatedAt.IsZero() {
		return errors.New("playlist has no creation time")
	}
	return nil
}
