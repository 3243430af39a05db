// ABOUTME: Media and playlist collections over SQLite tables.
// ABOUTME: List queries never select the content column.

package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/store"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type mediaCollection struct {
	db     *sql.DB
	closed *atomic.Bool
}

func (c *mediaCollection) Put(item *models.MediaItem) (*models.MediaItem, error) {
	const op = "put media"
	if c.closed.Load() {
		return nil, errClosed(op)
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, store.ErrInvalidRecord, err)
	}
	content := item.Content
	if content == nil {
		content = []byte{}
	}

	err := withTx(c.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO media (id, name, kind, mime_type, size, title, artist, album, content, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name, kind = excluded.kind, mime_type = excluded.mime_type,
			   size = excluded.size, title = excluded.title, artist = excluded.artist,
			   album = excluded.album, content = excluded.content, created_at = excluded.created_at`,
			item.ID, item.Name, string(item.Kind), item.MimeType, item.Size,
			item.Title, item.Artist, item.Album, content, item.CreatedAt.UnixMilli(),
		)
		return err
	})
	if err != nil {
		return nil, txnErr(op, err)
	}
	return item, nil
}

func (c *mediaCollection) GetAll() ([]*models.MediaItem, error) {
	const op = "list media"
	if c.closed.Load() {
		return nil, errClosed(op)
	}

	rows, err := c.db.Query(
		`SELECT id, name, kind, mime_type, size, title, artist, album, created_at
		 FROM media ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, txnErr(op, err)
	}
	defer func() { _ = rows.Close() }()

	var items []*models.MediaItem
	for rows.Next() {
		item, err := scanMedia(rows, false)
		if err != nil {
			return nil, txnErr(op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, txnErr(op, err)
	}
	return items, nil
}

func (c *mediaCollection) GetByID(id string) (*models.MediaItem, bool, error) {
	const op = "get media"
	if c.closed.Load() {
		return nil, false, errClosed(op)
	}

	row := c.db.QueryRow(
		`SELECT id, name, kind, mime_type, size, title, artist, album, created_at, COALESCE(content, X'')
		 FROM media WHERE id = ?`,
		id,
	)
	item, err := scanMedia(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, txnErr(op, err)
	}
	return item, true, nil
}

func (c *mediaCollection) DeleteByID(id string) error {
	const op = "delete media"
	if c.closed.Load() {
		return errClosed(op)
	}
	err := withTx(c.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM media WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return txnErr(op, err)
	}
	return nil
}

func scanMedia(row rowScanner, withContent bool) (*models.MediaItem, error) {
	item := &models.MediaItem{}
	var kind string
	var created int64
	dest := []any{&item.ID, &item.Name, &kind, &item.MimeType, &item.Size,
		&item.Title, &item.Artist, &item.Album, &created}
	if withContent {
		dest = append(dest, &item.Content)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	k, err := models.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: media %s: %w", store.ErrInvalidRecord, item.ID, err)
	}
	item.Kind = k
	item.CreatedAt = time.UnixMilli(created)
	if withContent && item.Content == nil {
		item.Content = []byte{}
	}
	return item, nil
}

type playlistCollection struct {
	db     *sql.DB
	closed *atomic.Bool
}

func (c *playlistCollection) Put(p *models.Playlist) (*models.Playlist, error) {
	const op = "put playlist"
	if c.closed.Load() {
		return nil, errClosed(op)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, store.ErrInvalidRecord, err)
	}
	ids := p.MediaIDs
	if ids == nil {
		ids = []string{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, store.ErrInvalidRecord, err)
	}

	err = withTx(c.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO playlists (id, name, media_ids, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name, media_ids = excluded.media_ids, created_at = excluded.created_at`,
			p.ID, p.Name, string(encoded), p.CreatedAt.UnixMilli(),
		)
		return err
	})
	if err != nil {
		return nil, txnErr(op, err)
	}
	return p, nil
}

func (c *playlistCollection) GetAll() ([]*models.Playlist, error) {
	const op = "list playlists"
	if c.closed.Load() {
		return nil, errClosed(op)
	}

	rows, err := c.db.Query(`SELECT id, name, media_ids, created_at FROM playlists ORDER BY created_at, id`)
	if err != nil {
		return nil, txnErr(op, err)
	}
	defer func() { _ = rows.Close() }()

	var playlists []*models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, txnErr(op, err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, txnErr(op, err)
	}
	return playlists, nil
}

func (c *playlistCollection) GetByID(id string) (*models.Playlist, bool, error) {
	const op = "get playlist"
	if c.closed.Load() {
		return nil, false, errClosed(op)
	}

	row := c.db.QueryRow(`SELECT id, name, media_ids, created_at FROM playlists WHERE id = ?`, id)
	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, txnErr(op, err)
	}
	return p, true, nil
}

func (c *playlistCollection) DeleteByID(id string) error {
	const op = "delete playlist"
	if c.closed.Load() {
		return errClosed(op)
	}
	err := withTx(c.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM playlists WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return txnErr(op, err)
	}
	return nil
}

func scanPlaylist(row rowScanner) (*models.Playlist, error) {
	p := &models.Playlist{}
	var idsJSON string
	var created int64
	if err := row.Scan(&p.ID, &p.Name, &idsJSON, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(idsJSON), &p.MediaIDs); err != nil {
		return nil, fmt.Errorf("%w: playlist %s media ids: %w", store.ErrInvalidRecord, p.ID, err)
	}
	if p.MediaIDs == nil {
		p.MediaIDs = []string{}
	}
	p.CreatedAt = time.UnixMilli(created)
	return p, nil
}
