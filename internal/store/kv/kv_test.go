// ABOUTME: Tests for the badger storage engine.
// ABOUTME: Runs the shared contract suite plus persistence and migration checks.

package kv

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/store"
	"github.com/harper/myaktube/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open("", WithInMemory())
		require.NoError(t, err)
		return s
	})
}

func TestContractOnDisk(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(filepath.Join(t.TempDir(), "library.badger"))
		require.NoError(t, err)
		return s
	})
}

func TestGetAllSkipsStaleIndexEntries(t *testing.T) {
	s, err := Open("", WithInMemory())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	p := &models.Playlist{ID: "pl", Name: "Road Trip", MediaIDs: []string{}, CreatedAt: time.UnixMilli(2000)}
	_, err = s.Playlists().Put(p)
	require.NoError(t, err)

	// An index entry for an older creation time of the same id.
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.playlists.indexKey(1000, "pl"), []byte{})
	})
	require.NoError(t, err)

	all, err := s.Playlists().GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Road Trip", all[0].Name)
}

func TestOversizedValueLeavesNothingBehind(t *testing.T) {
	s, err := Open("", WithInMemory())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	big := make([]byte, 2<<20)
	item := models.NewMediaItem("long.flac", "audio/flac", big)
	_, err = s.Media().Put(item)
	require.ErrorIs(t, err, store.ErrInvalidRecord)
	assert.Less(t, len(err.Error()), 200, "error should not carry the payload")

	_, ok, err := s.Media().GetByID(item.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	all, err := s.Media().GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.badger")

	s, err := Open(path)
	require.NoError(t, err)
	item := models.NewMediaItem("clip.mp4", "video/mp4", []byte("frames"))
	_, err = s.Media().Put(item)
	require.NoError(t, err)
	p := models.NewPlaylist("Road Trip").WithMedia(item.ID)
	_, err = s.Playlists().Put(p)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, store.SchemaVersion, v)

	got, ok, err := s.Media().GetByID(item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("frames"), got.Content)
	assert.Equal(t, models.KindVideo, got.Kind)

	pl, ok, err := s.Playlists().GetByID(p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{item.ID}, pl.MediaIDs)
}

func TestMigrationIsAdditive(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, migrate(db, migrations))

	s := &Store{db: db}
	s.media = &collection[*models.MediaItem]{db: db, closed: &s.closed, prefix: "media:", name: store.CollectionMedia, codec: mediaCodec{}}
	item := models.NewMediaItem("a.mp3", "audio/mpeg", []byte("x"))
	_, err = s.media.Put(item)
	require.NoError(t, err)

	extended := append([]migration{}, migrations...)
	extended = append(extended, migration{
		version: 2,
		name:    "register extra index",
		apply: func(txn *badger.Txn) error {
			return txn.Set([]byte("meta:index:media:kind"), []byte("{}"))
		},
	})
	require.NoError(t, migrate(db, extended))

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, ok, err := s.media.GetByID(item.ID)
	require.NoError(t, err)
	assert.True(t, ok, "existing data must survive a version bump")

	// Running the same steps again must not re-apply anything.
	require.NoError(t, migrate(db, extended))
}

func TestOpenRefusesNewerSchema(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(versionKey), []byte("99"))
	}))

	err = migrate(db, migrations)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestClosedStore(t *testing.T) {
	s, err := Open("", WithInMemory())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Media().GetAll()
	assert.True(t, errors.Is(err, store.ErrStorageUnavailable))

	_, err = s.Playlists().Put(models.NewPlaylist("x"))
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestPutMovesIndexEntry(t *testing.T) {
	s, err := Open("", WithInMemory())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	p := models.NewPlaylist("moving")
	_, err = s.Playlists().Put(p)
	require.NoError(t, err)

	later := *p
	later.CreatedAt = p.CreatedAt.Add(time.Second)
	_, err = s.Playlists().Put(&later)
	require.NoError(t, err)

	all, err := s.Playlists().GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1, "a replaced record must not be listed twice")
}
