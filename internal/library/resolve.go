// ABOUTME: Turns user-typed references into records.
// ABOUTME: Accepts full ids, unique id prefixes, and playlist names.

package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/myaktube/internal/models"
)

// MinPrefixLen is the shortest id prefix accepted as a reference.
const MinPrefixLen = 6

// ResolveMedia finds media metadata by exact id or a unique prefix of the id or its short form.
func (s *Service) ResolveMedia(ctx context.Context, ref string) (*models.MediaItem, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty media reference", ErrInvalidInput)
	}
	items, err := s.ListMedia(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*models.MediaItem
	for _, m := range items {
		if m.ID == ref {
			return m, nil
		}
		if matchesRef(m.ID, ref) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%q: %w", ref, ErrMediaNotFound)
	case 1:
		return matches[0], nil
	}
	return nil, fmt.Errorf("%w: %q matches %d media items", ErrAmbiguousRef, ref, len(matches))
}

// ResolvePlaylist finds a playlist by exact id, unique id or short id prefix, or name.
func (s *Service) ResolvePlaylist(ctx context.Context, ref string) (*models.Playlist, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty playlist reference", ErrInvalidInput)
	}
	playlists, err := s.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	var byPrefix, byName []*models.Playlist
	for _, p := range playlists {
		if p.ID == ref {
			return p, nil
		}
		if matchesRef(p.ID, ref) {
			byPrefix = append(byPrefix, p)
		}
		if strings.EqualFold(p.Name, ref) {
			byName = append(byName, p)
		}
	}

	for _, matches := range [][]*models.Playlist{byPrefix, byName} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return nil, fmt.Errorf("%w: %q matches %d playlists", ErrAmbiguousRef, ref, len(matches))
		}
	}
	return nil, fmt.Errorf("%q: %w", ref, ErrPlaylistNotFound)
}

func matchesRef(id, ref string) bool {
	if len(ref) < MinPrefixLen {
		return false
	}
	return strings.HasPrefix(id, ref) || strings.HasPrefix(models.ShortID(id), ref)
}
