// ABOUTME: Playlist operations: create, list, membership changes and delete.
// ABOUTME: Membership changes on a missing playlist are a quiet no-op.

package library

import (
	"context"
	"fmt"

	"github.com/harper/myaktube/internal/models"
	"github.com/sirupsen/logrus"
)

func (s *Service) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	playlists, err := st.Playlists().GetAll()
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	sortPlaylists(playlists)
	return playlists, nil
}

func (s *Service) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	p, ok, err := st.Playlists().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	if !ok {
		return nil, ErrPlaylistNotFound
	}
	return p, nil
}

// CreatePlaylist stores an empty playlist. A blank name becomes models.DefaultPlaylistName.
func (s *Service) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	p := models.NewPlaylist(name)
	for attempt := 1; ; attempt++ {
		_, taken, err := st.Playlists().GetByID(p.ID)
		if err != nil {
			return nil, fmt.Errorf("check playlist id: %w", err)
		}
		if !taken {
			break
		}
		if attempt == idAttempts {
			return nil, fmt.Errorf("allocate playlist id: %d attempts collided", idAttempts)
		}
		p.ID = models.NewID()
	}

	if _, err := st.Playlists().Put(p); err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	s.log.WithFields(logrus.Fields{"playlist_id": p.ID, "name": p.Name}).Info("created playlist")
	return p, nil
}

// AddMediaToPlaylist appends mediaID unless it is already present.
// A missing playlist returns (nil, nil).
func (s *Service) AddMediaToPlaylist(ctx context.Context, playlistID, mediaID string) (*models.Playlist, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	p, ok, err := st.Playlists().GetByID(playlistID)
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	if !ok {
		s.log.WithField("playlist_id", playlistID).Debug("add to missing playlist ignored")
		return nil, nil
	}
	if p.Contains(mediaID) {
		return p, nil
	}

	updated := p.WithMedia(mediaID)
	if _, err := st.Playlists().Put(updated); err != nil {
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	return updated, nil
}

// RemoveMediaFromPlaylist drops every occurrence of mediaID.
// A missing playlist returns (nil, nil).
func (s *Service) RemoveMediaFromPlaylist(ctx context.Context, playlistID, mediaID string) (*models.Playlist, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	p, ok, err := st.Playlists().GetByID(playlistID)
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	if !ok {
		s.log.WithField("playlist_id", playlistID).Debug("remove from missing playlist ignored")
		return nil, nil
	}
	if !p.Contains(mediaID) {
		return p, nil
	}

	updated := p.WithoutMedia(mediaID)
	if _, err := st.Playlists().Put(updated); err != nil {
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	return updated, nil
}

// DeletePlaylist removes the playlist only. Its media stays in the library.
func (s *Service) DeletePlaylist(ctx context.Context, id string) error {
	st, err := s.open(ctx)
	if err != nil {
		return err
	}
	if err := st.Playlists().DeleteByID(id); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	s.log.WithField("playlist_id", id).Info("deleted playlist")
	return nil
}
