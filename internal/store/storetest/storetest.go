// ABOUTME: Backend-independent contract tests for store.Store implementations.
// ABOUTME: The kv and sqlite packages run the same suite against their engines.

package storetest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, open Factory) {
	t.Run("MediaPutGetRoundTrip", func(t *testing.T) { testMediaRoundTrip(t, open(t)) })
	t.Run("MediaGetAllOmitsContent", func(t *testing.T) { testMediaGetAllOmitsContent(t, open(t)) })
	t.Run("PutReplaces", func(t *testing.T) { testPutReplaces(t, open(t)) })
	t.Run("GetByIDMissing", func(t *testing.T) { testGetByIDMissing(t, open(t)) })
	t.Run("DeleteMissingIsNoop", func(t *testing.T) { testDeleteMissing(t, open(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("PlaylistRoundTrip", func(t *testing.T) { testPlaylistRoundTrip(t, open(t)) })
	t.Run("GetAllCreationOrder", func(t *testing.T) { testGetAllCreationOrder(t, open(t)) })
	t.Run("RejectsInvalidRecord", func(t *testing.T) { testRejectsInvalid(t, open(t)) })
	t.Run("SchemaVersion", func(t *testing.T) { testSchemaVersion(t, open(t)) })
	t.Run("ConcurrentPutsLastCommitWins", func(t *testing.T) { testConcurrentPuts(t, open(t)) })
	t.Run("FailedPutKeepsPreviousRecord", func(t *testing.T) { testFailedPutKeepsPrevious(t, open(t)) })
}

func testMediaRoundTrip(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	item := models.NewMediaItem("song.final.mp3", "audio/mpeg", []byte{0x49, 0x44, 0x33, 0x00, 0xff})
	item.Artist = "Someone"

	stored, err := s.Media().Put(item)
	require.NoError(t, err)
	assert.Equal(t, item.ID, stored.ID)

	got, ok, err := s.Media().GetByID(item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, item.Content, got.Content)
	assert.Equal(t, "song.final", got.Name)
	assert.Equal(t, models.KindAudio, got.Kind)
	assert.Equal(t, "audio/mpeg", got.MimeType)
	assert.Equal(t, int64(5), got.Size)
	assert.Equal(t, "Someone", got.Artist)
	assert.True(t, item.CreatedAt.Equal(got.CreatedAt), "created %v, got %v", item.CreatedAt, got.CreatedAt)
}

func testMediaGetAllOmitsContent(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	_, err := s.Media().Put(models.NewMediaItem("a.mp3", "audio/mpeg", []byte("aaa")))
	require.NoError(t, err)
	_, err = s.Media().Put(models.NewMediaItem("b.mp4", "video/mp4", []byte("bbb")))
	require.NoError(t, err)

	all, err := s.Media().GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, m := range all {
		assert.Nil(t, m.Content, "list results must not carry content")
		assert.Equal(t, int64(3), m.Size)
	}
}

func testPutReplaces(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	p := models.NewPlaylist("first")
	_, err := s.Playlists().Put(p)
	require.NoError(t, err)

	replaced := p.WithMedia("m1")
	replaced.Name = "second"
	_, err = s.Playlists().Put(replaced)
	require.NoError(t, err)

	all, err := s.Playlists().GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Name)
	assert.Equal(t, []string{"m1"}, all[0].MediaIDs)
}

func testGetByIDMissing(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	m, ok, err := s.Media().GetByID("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)

	p, ok, err := s.Playlists().GetByID("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func testDeleteMissing(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	assert.NoError(t, s.Media().DeleteByID("nope"))
	assert.NoError(t, s.Playlists().DeleteByID("nope"))
}

func testDelete(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	item := models.NewMediaItem("a.mp3", "audio/mpeg", []byte("x"))
	_, err := s.Media().Put(item)
	require.NoError(t, err)

	require.NoError(t, s.Media().DeleteByID(item.ID))

	_, ok, err := s.Media().GetByID(item.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := s.Media().GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testPlaylistRoundTrip(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	p := models.NewPlaylist("Road Trip").WithMedia("m1").WithMedia("m2")
	_, err := s.Playlists().Put(p)
	require.NoError(t, err)

	got, ok, err := s.Playlists().GetByID(p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Road Trip", got.Name)
	assert.Equal(t, []string{"m1", "m2"}, got.MediaIDs)

	empty := models.NewPlaylist("empty")
	_, err = s.Playlists().Put(empty)
	require.NoError(t, err)
	got, _, err = s.Playlists().GetByID(empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.MediaIDs)
	assert.Empty(t, got.MediaIDs)
}

func testGetAllCreationOrder(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	base := time.UnixMilli(1_700_000_000_000)
	ids := []string{"c", "a", "b"}
	for i, id := range ids {
		p := &models.Playlist{ID: id, Name: id, MediaIDs: []string{}, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		_, err := s.Playlists().Put(p)
		require.NoError(t, err)
	}

	all, err := s.Playlists().GetAll()
	require.NoError(t, err)
	got := make([]string, len(all))
	for i, p := range all {
		got[i] = p.ID
	}
	assert.Equal(t, ids, got)
}

func testRejectsInvalid(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	_, err := s.Media().Put(&models.MediaItem{Name: "no id", Kind: models.KindAudio})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	_, err = s.Playlists().Put(&models.Playlist{Name: "no id"})
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	all, err := s.Media().GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testSchemaVersion(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, store.SchemaVersion, v)
}

func testConcurrentPuts(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	const writers = 8
	for round := range 10 {
		id := fmt.Sprintf("race-%d", round)
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for w := range writers {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				p := &models.Playlist{
					ID:        id,
					Name:      fmt.Sprintf("writer %d", w),
					MediaIDs:  []string{},
					CreatedAt: time.UnixMilli(int64(1000 + w)),
				}
				_, err := s.Playlists().Put(p)
				errs <- err
			}(w)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		stored, ok, err := s.Playlists().GetByID(id)
		require.NoError(t, err)
		require.True(t, ok)

		all, err := s.Playlists().GetAll()
		require.NoError(t, err)
		var listed []*models.Playlist
		for _, p := range all {
			if p.ID == id {
				listed = append(listed, p)
			}
		}
		require.Len(t, listed, 1, "round %d listed the id %d times", round, len(listed))
		assert.Equal(t, stored.Name, listed[0].Name)
		assert.True(t, stored.CreatedAt.Equal(listed[0].CreatedAt))
	}
}

func testFailedPutKeepsPrevious(t *testing.T, s store.Store) {
	defer func() { _ = s.Close() }()

	item := models.NewMediaItem("keep.mp3", "audio/mpeg", []byte("original"))
	_, err := s.Media().Put(item)
	require.NoError(t, err)

	broken := *item
	broken.Kind = "podcast"
	broken.Content = []byte("replacement")
	broken.Size = int64(len(broken.Content))
	_, err = s.Media().Put(&broken)
	require.ErrorIs(t, err, store.ErrInvalidRecord)

	got, ok, err := s.Media().GetByID(item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.KindAudio, got.Kind)
	assert.Equal(t, []byte("original"), got.Content)

	all, err := s.Media().GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
