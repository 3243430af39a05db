// ABOUTME: Media operations: listing, upload, playback lookup and cascading delete.
// ABOUTME: Deletes clean playlist references before the media record goes away.

package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dhowden/tag"
	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/store"
	"github.com/sirupsen/logrus"
)

// Upload is one file handed to the library.
type Upload struct {
	Name     string    `validate:"required"`
	MimeType string    `validate:"required"`
	Body     io.Reader `validate:"required"`
}

// UploadResult reports the outcome for one file of a batch.
type UploadResult struct {
	Name  string
	Media *models.MediaItem
	Err   error
}

// ListMedia returns metadata for every media item, oldest first.
func (s *Service) ListMedia(ctx context.Context) ([]*models.MediaItem, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	items, err := st.Media().GetAll()
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	sortMedia(items)
	return items, nil
}

// ListMediaForPlaylist returns the playlist's media metadata in playlist order.
// Ids that no longer resolve are skipped.
func (s *Service) ListMediaForPlaylist(ctx context.Context, playlistID string) ([]*models.MediaItem, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	p, ok, err := st.Playlists().GetByID(playlistID)
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	if !ok {
		return nil, ErrPlaylistNotFound
	}
	all, err := st.Media().GetAll()
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	byID := make(map[string]*models.MediaItem, len(all))
	for _, m := range all {
		byID[m.ID] = m
	}
	items := make([]*models.MediaItem, 0, len(p.MediaIDs))
	for _, id := range p.MediaIDs {
		if m, ok := byID[id]; ok {
			items = append(items, m)
		}
	}
	return items, nil
}

// GetPlayableMedia returns the full record including content.
func (s *Service) GetPlayableMedia(ctx context.Context, id string) (*models.MediaItem, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	item, ok, err := st.Media().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	if !ok {
		return nil, ErrMediaNotFound
	}
	return item, nil
}

// UploadMedia stores one file and returns its metadata.
func (s *Service) UploadMedia(ctx context.Context, up Upload) (*models.MediaItem, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	up.Name = strings.TrimSpace(up.Name)
	up.MimeType = strings.TrimSpace(up.MimeType)
	if err := s.validate.Struct(up); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	content, err := s.readBody(up.Body)
	if err != nil {
		return nil, err
	}

	item := models.NewMediaItem(up.Name, up.MimeType, content)
	item.Title, item.Artist, item.Album = readTags(content)

	for attempt := 1; ; attempt++ {
		_, taken, err := st.Media().GetByID(item.ID)
		if err != nil {
			return nil, fmt.Errorf("check media id: %w", err)
		}
		if !taken {
			break
		}
		if attempt == idAttempts {
			return nil, fmt.Errorf("allocate media id: %d attempts collided", idAttempts)
		}
		item.ID = models.NewID()
	}

	if _, err := st.Media().Put(item); err != nil {
		// The store refuses what it cannot hold; that is a property of the upload.
		if errors.Is(err, store.ErrInvalidRecord) {
			return nil, fmt.Errorf("%w: store media: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("store media: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"media_id": item.ID,
		"kind":     item.Kind,
		"size":     item.Size,
	}).Info("uploaded media")
	return item.Metadata(), nil
}

// UploadAll uploads each file in order. One failure does not stop the rest.
func (s *Service) UploadAll(ctx context.Context, uploads []Upload) []UploadResult {
	results := make([]UploadResult, 0, len(uploads))
	for _, up := range uploads {
		item, err := s.UploadMedia(ctx, up)
		if err != nil {
			s.log.WithField("name", up.Name).WithError(err).Warn("upload failed")
		}
		results = append(results, UploadResult{Name: up.Name, Media: item, Err: err})
	}
	return results
}

func (s *Service) readBody(body io.Reader) ([]byte, error) {
	r := body
	if s.maxUpload > 0 {
		r = io.LimitReader(body, s.maxUpload+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", ErrInvalidInput, err)
	}
	if s.maxUpload > 0 && int64(len(content)) > s.maxUpload {
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", ErrInvalidInput, s.maxUpload)
	}
	return content, nil
}

// readTags pulls embedded title, artist and album. Untagged payloads yield empty strings.
func readTags(content []byte) (title, artist, album string) {
	m, err := tag.ReadFrom(bytes.NewReader(content))
	if err != nil {
		return "", "", ""
	}
	artist = m.Artist()
	if artist == "" {
		artist = m.AlbumArtist()
	}
	return strings.TrimSpace(m.Title()), strings.TrimSpace(artist), strings.TrimSpace(m.Album())
}

// DeleteMedia removes id from every playlist, then deletes the media.
// If any playlist cleanup fails the media is kept, so no playlist is left
// pointing at a missing item.
func (s *Service) DeleteMedia(ctx context.Context, id string) error {
	st, err := s.open(ctx)
	if err != nil {
		return err
	}

	playlists, err := st.Playlists().GetAll()
	if err != nil {
		return fmt.Errorf("load playlists: %w", err)
	}

	var errs []error
	for _, p := range playlists {
		if !p.Contains(id) {
			continue
		}
		if _, err := st.Playlists().Put(p.WithoutMedia(id)); err != nil {
			s.log.WithFields(logrus.Fields{"media_id": id, "playlist_id": p.ID}).WithError(err).Warn("playlist cleanup failed")
			errs = append(errs, fmt.Errorf("remove media from playlist %s: %w", p.ID, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if err := st.Media().DeleteByID(id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	s.log.WithField("media_id", id).Info("deleted media")
	return nil
}

// FilterByName keeps items whose name contains query, ignoring case.
// A blank query returns list unchanged.
func FilterByName(list []*models.MediaItem, query string) []*models.MediaItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]*models.MediaItem, 0, len(list))
	for _, m := range list {
		if strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}

func FilterByKind(list []*models.MediaItem, kind models.MediaKind) []*models.MediaItem {
	out := make([]*models.MediaItem, 0, len(list))
	for _, m := range list {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}
