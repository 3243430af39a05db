// ABOUTME: Storage engine contract shared by the kv and sqlite backends.
// ABOUTME: Defines collections, the error taxonomy and the schema version.

package store

import (
	"errors"

	"github.com/harper/myaktube/internal/models"
)

// SchemaVersion is the newest on-disk layout this build knows how to open.
// Migrations are additive: a bump may add collections or indexes, never drop them.
const SchemaVersion = 1

const (
	CollectionMedia     = "media"
	CollectionPlaylists = "playlists"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrInvalidRecord      = errors.New("invalid record")
)

// Collection is an id-keyed set of records. Every method runs as one
// transaction; a failed Put leaves no partial state behind.
type Collection[T any] interface {
	// Put inserts rec or fully replaces the record with the same id.
	Put(rec T) (T, error)
	// GetAll returns every record. Media records come back without content.
	// Callers that need an order sort the result themselves.
	GetAll() ([]T, error)
	// GetByID reports ok=false when the id is absent.
	GetByID(id string) (rec T, ok bool, err error)
	// DeleteByID is a no-op for an absent id.
	DeleteByID(id string) error
}

type Store interface {
	Media() Collection[*models.MediaItem]
	Playlists() Collection[*models.Playlist]
	// SchemaVersion reports the layout version recorded on disk.
	SchemaVersion() (int, error)
	Close() error
}
