// ABOUTME: Backup archive of the whole library for export and import.
// ABOUTME: Import keeps original ids and creation times; each record succeeds or fails on its own.

package library

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/store"
)

// ArchiveVersion is written into every export.
const ArchiveVersion = 1

type Archive struct {
	Version    int                `json:"version" yaml:"version"`
	ExportedAt time.Time          `json:"exported_at" yaml:"exported_at"`
	Media      []ArchivedMedia    `json:"media" yaml:"media"`
	Playlists  []ArchivedPlaylist `json:"playlists" yaml:"playlists"`
}

type ArchivedMedia struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Kind      string    `json:"kind" yaml:"kind"`
	MimeType  string    `json:"mime_type" yaml:"mime_type"`
	Size      int64     `json:"size" yaml:"size"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	Artist    string    `json:"artist,omitempty" yaml:"artist,omitempty"`
	Album     string    `json:"album,omitempty" yaml:"album,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Content   *string   `json:"content,omitempty" yaml:"content,omitempty"` // base64
}

type ArchivedPlaylist struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	MediaIDs  []string  `json:"media_ids" yaml:"media_ids"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type ImportReport struct {
	Media     int
	Playlists int
	Skipped   int
	// DroppedRefs counts playlist entries naming media the library does not hold.
	DroppedRefs int
}

// Export snapshots the library. Content is included only when withContent is set.
func (s *Service) Export(ctx context.Context, withContent bool) (*Archive, error) {
	items, err := s.ListMedia(ctx)
	if err != nil {
		return nil, err
	}
	playlists, err := s.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	archive := &Archive{
		Version:    ArchiveVersion,
		ExportedAt: time.Now().UTC(),
		Media:      make([]ArchivedMedia, 0, len(items)),
		Playlists:  make([]ArchivedPlaylist, 0, len(playlists)),
	}
	for _, m := range items {
		am := ArchivedMedia{
			ID:        m.ID,
			Name:      m.Name,
			Kind:      string(m.Kind),
			MimeType:  m.MimeType,
			Size:      m.Size,
			Title:     m.Title,
			Artist:    m.Artist,
			Album:     m.Album,
			CreatedAt: m.CreatedAt,
		}
		if withContent {
			full, err := s.GetPlayableMedia(ctx, m.ID)
			if err != nil {
				return nil, fmt.Errorf("export media %s: %w", m.ID, err)
			}
			encoded := base64.StdEncoding.EncodeToString(full.Content)
			am.Content = &encoded
		}
		archive.Media = append(archive.Media, am)
	}
	for _, p := range playlists {
		archive.Playlists = append(archive.Playlists, ArchivedPlaylist{
			ID:        p.ID,
			Name:      p.Name,
			MediaIDs:  p.MediaIDs,
			CreatedAt: p.CreatedAt,
		})
	}
	return archive, nil
}

// Import writes every archived record. Media without content is skipped
// unless the library already holds that id. Playlists keep only entries for
// media present after the media pass. Failures are joined and returned
// alongside the counts of what did succeed.
func (s *Service) Import(ctx context.Context, archive *Archive) (ImportReport, error) {
	var report ImportReport
	if archive == nil {
		return report, fmt.Errorf("%w: nil archive", ErrInvalidInput)
	}
	if archive.Version > ArchiveVersion {
		return report, fmt.Errorf("%w: archive version %d is newer than %d", ErrInvalidInput, archive.Version, ArchiveVersion)
	}
	st, err := s.open(ctx)
	if err != nil {
		return report, err
	}

	var errs []error
	for _, am := range archive.Media {
		imported, err := importMedia(st, am)
		if err != nil {
			errs = append(errs, fmt.Errorf("import media %s: %w", am.ID, err))
			continue
		}
		if imported {
			report.Media++
		} else {
			report.Skipped++
		}
	}
	if len(archive.Playlists) == 0 {
		s.log.WithField("media", report.Media).Info("imported archive")
		return report, errors.Join(errs...)
	}

	held, err := st.Media().GetAll()
	if err != nil {
		errs = append(errs, fmt.Errorf("list media: %w", err))
		return report, errors.Join(errs...)
	}
	present := make(map[string]bool, len(held))
	for _, m := range held {
		present[m.ID] = true
	}

	for _, ap := range archive.Playlists {
		p := &models.Playlist{
			ID:        ap.ID,
			Name:      ap.Name,
			MediaIDs:  make([]string, 0, len(ap.MediaIDs)),
			CreatedAt: ap.CreatedAt,
		}
		for _, id := range ap.MediaIDs {
			if !present[id] {
				report.DroppedRefs++
				continue
			}
			p.MediaIDs = append(p.MediaIDs, id)
		}
		if _, err := st.Playlists().Put(p); err != nil {
			errs = append(errs, fmt.Errorf("import playlist %s: %w", ap.ID, err))
			continue
		}
		report.Playlists++
	}

	s.log.WithField("media", report.Media).WithField("playlists", report.Playlists).Info("imported archive")
	return report, errors.Join(errs...)
}

func importMedia(st store.Store, am ArchivedMedia) (bool, error) {
	kind, err := models.ParseKind(am.Kind)
	if err != nil {
		return false, err
	}
	if am.Content == nil {
		_, exists, err := st.Media().GetByID(am.ID)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
		return false, errors.New("archive carries no content for this item")
	}

	content, err := base64.StdEncoding.DecodeString(*am.Content)
	if err != nil {
		return false, fmt.Errorf("%w: decode content: %w", ErrInvalidInput, err)
	}
	item := &models.MediaItem{
		ID:        am.ID,
		Name:      am.Name,
		Kind:      kind,
		MimeType:  am.MimeType,
		Size:      int64(len(content)),
		Title:     am.Title,
		Artist:    am.Artist,
		Album:     am.Album,
		Content:   content,
		CreatedAt: am.CreatedAt,
	}
	if _, err := st.Media().Put(item); err != nil {
		return false, err
	}
	return true, nil
}
