// ABOUTME: Tests for the library service, mostly against an in-memory badger store.
// ABOUTME: Covers upload, ordering, cascade delete, soft-fail cases and the Road Trip flow.

package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/store"
	"github.com/harper/myaktube/internal/store/kv"
	"github.com/harper/myaktube/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T, opts ...Option) (*Service, store.Store) {
	t.Helper()
	s, err := kv.Open("", kv.WithInMemory())
	require.NoError(t, err)
	h := store.NewHandle(func() (store.Store, error) { return s, nil })
	t.Cleanup(func() { _ = h.Close() })
	return New(h, opts...), s
}

func upload(t *testing.T, svc *Service, name, mime string, content []byte) *models.MediaItem {
	t.Helper()
	item, err := svc.UploadMedia(context.Background(), Upload{Name: name, MimeType: mime, Body: bytes.NewReader(content)})
	require.NoError(t, err)
	return item
}

func TestUploadRoundTrip(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	payload := []byte{0x00, 0x01, 0xfe, 0xff, 'v'}

	meta := upload(t, svc, "clip.final.mp4", "video/mp4", payload)
	assert.Nil(t, meta.Content, "upload returns metadata only")
	assert.Equal(t, "clip.final", meta.Name)
	assert.Equal(t, models.KindVideo, meta.Kind)
	assert.Equal(t, int64(len(payload)), meta.Size)

	full, err := svc.GetPlayableMedia(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, payload, full.Content)
	assert.Equal(t, models.KindVideo, full.Kind)
	assert.Equal(t, "video/mp4", full.MimeType)

	list, err := svc.ListMedia(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Content)
}

func TestUploadDerivesAudioKind(t *testing.T) {
	svc, _ := setupService(t)
	meta := upload(t, svc, "song.final.mp3", "audio/mpeg", []byte("abc"))
	assert.Equal(t, "song.final", meta.Name)
	assert.Equal(t, models.KindAudio, meta.Kind)

	other := upload(t, svc, "notes.bin", "application/octet-stream", []byte("abc"))
	assert.Equal(t, models.KindAudio, other.Kind)
}

func TestUploadValidation(t *testing.T) {
	svc, _ := setupService(t, WithMaxUploadBytes(4))
	ctx := context.Background()

	tests := []struct {
		name string
		up   Upload
	}{
		{"missing name", Upload{Name: "  ", MimeType: "audio/mpeg", Body: strings.NewReader("x")}},
		{"missing mime", Upload{Name: "a.mp3", Body: strings.NewReader("x")}},
		{"nil body", Upload{Name: "a.mp3", MimeType: "audio/mpeg"}},
		{"too large", Upload{Name: "a.mp3", MimeType: "audio/mpeg", Body: strings.NewReader("12345")}},
		{"unreadable", Upload{Name: "a.mp3", MimeType: "audio/mpeg", Body: errReader{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadMedia(ctx, tt.up)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	list, err := svc.ListMedia(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "rejected uploads must not be stored")
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk went away") }

func TestUploadEmptyPayload(t *testing.T) {
	svc, _ := setupService(t)
	meta := upload(t, svc, "silence.wav", "audio/wav", nil)

	full, err := svc.GetPlayableMedia(context.Background(), meta.ID)
	require.NoError(t, err)
	assert.Empty(t, full.Content)
	assert.Equal(t, int64(0), full.Size)
}

func TestUploadReadsTags(t *testing.T) {
	svc, _ := setupService(t)

	tagBlock := make([]byte, 128)
	copy(tagBlock, "TAG")
	copy(tagBlock[3:], "Highway Song")
	copy(tagBlock[33:], "The Drivers")
	copy(tagBlock[63:], "Open Road")
	copy(tagBlock[93:], "2024")
	payload := append(make([]byte, 64), tagBlock...)

	meta := upload(t, svc, "track01.mp3", "audio/mpeg", payload)
	assert.Equal(t, "Highway Song", meta.Title)
	assert.Equal(t, "The Drivers", meta.Artist)
	assert.Equal(t, "Open Road", meta.Album)
}

func TestUploadAllIsolatesFailures(t *testing.T) {
	svc, _ := setupService(t)

	results := svc.UploadAll(context.Background(), []Upload{
		{Name: "a.mp3", MimeType: "audio/mpeg", Body: strings.NewReader("a")},
		{Name: "broken.mp3", MimeType: "", Body: strings.NewReader("b")},
		{Name: "c.mp4", MimeType: "video/mp4", Body: strings.NewReader("c")},
	})
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrInvalidInput)
	assert.Nil(t, results[1].Media)
	assert.NoError(t, results[2].Err)

	list, err := svc.ListMedia(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListMediaSortedByCreation(t *testing.T) {
	svc, _ := setupService(t)
	first := upload(t, svc, "1.mp3", "audio/mpeg", []byte("1"))
	second := upload(t, svc, "2.mp3", "audio/mpeg", []byte("2"))
	third := upload(t, svc, "3.mp3", "audio/mpeg", []byte("3"))

	list, err := svc.ListMedia(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestAddMediaIsIdempotent(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	m := upload(t, svc, "a.mp3", "audio/mpeg", []byte("a"))
	p, err := svc.CreatePlaylist(ctx, "Mix")
	require.NoError(t, err)

	_, err = svc.AddMediaToPlaylist(ctx, p.ID, m.ID)
	require.NoError(t, err)
	again, err := svc.AddMediaToPlaylist(ctx, p.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{m.ID}, again.MediaIDs)

	stored, err := svc.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Count())
}

func TestAddPreservesOrder(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	p, err := svc.CreatePlaylist(ctx, "Ordered")
	require.NoError(t, err)

	var ids []string
	for i := range 4 {
		m := upload(t, svc, fmt.Sprintf("%d.mp3", i), "audio/mpeg", []byte{byte(i)})
		ids = append(ids, m.ID)
	}
	for _, i := range []int{2, 0, 3, 1} {
		_, err := svc.AddMediaToPlaylist(ctx, p.ID, ids[i])
		require.NoError(t, err)
	}

	stored, err := svc.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[0], ids[3], ids[1]}, stored.MediaIDs)

	items, err := svc.ListMediaForPlaylist(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, ids[2], items[0].ID)
	assert.Equal(t, ids[1], items[3].ID)
}

func TestRemoveMediaFromPlaylist(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp3", "audio/mpeg", []byte("a"))
	b := upload(t, svc, "b.mp3", "audio/mpeg", []byte("b"))
	p, err := svc.CreatePlaylist(ctx, "Two")
	require.NoError(t, err)
	_, err = svc.AddMediaToPlaylist(ctx, p.ID, a.ID)
	require.NoError(t, err)
	_, err = svc.AddMediaToPlaylist(ctx, p.ID, b.ID)
	require.NoError(t, err)

	updated, err := svc.RemoveMediaFromPlaylist(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, updated.MediaIDs)

	// The media itself stays in the library.
	_, err = svc.GetPlayableMedia(ctx, a.ID)
	assert.NoError(t, err)
}

func TestMissingPlaylistIsSoftFail(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.AddMediaToPlaylist(ctx, "no-such-playlist", "m1")
	assert.NoError(t, err)
	assert.Nil(t, p)

	p, err = svc.RemoveMediaFromPlaylist(ctx, "no-such-playlist", "m1")
	assert.NoError(t, err)
	assert.Nil(t, p)

	playlists, err := svc.ListPlaylists(ctx)
	require.NoError(t, err)
	assert.Empty(t, playlists)
}

func TestDeleteMediaCleansEveryPlaylist(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp3", "audio/mpeg", []byte("a"))
	b := upload(t, svc, "b.mp3", "audio/mpeg", []byte("b"))

	for _, name := range []string{"one", "two", "three"} {
		p, err := svc.CreatePlaylist(ctx, name)
		require.NoError(t, err)
		_, err = svc.AddMediaToPlaylist(ctx, p.ID, a.ID)
		require.NoError(t, err)
		_, err = svc.AddMediaToPlaylist(ctx, p.ID, b.ID)
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteMedia(ctx, a.ID))

	playlists, err := svc.ListPlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, playlists, 3)
	for _, p := range playlists {
		assert.False(t, p.Contains(a.ID), "playlist %s still references deleted media", p.Name)
		assert.Equal(t, []string{b.ID}, p.MediaIDs)
	}

	_, err = svc.GetPlayableMedia(ctx, a.ID)
	assert.ErrorIs(t, err, ErrMediaNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteMissingMediaIsNoop(t *testing.T) {
	svc, _ := setupService(t)
	assert.NoError(t, svc.DeleteMedia(context.Background(), "never-existed"))
}

type failingPlaylists struct {
	store.Collection[*models.Playlist]
	failID string
}

func (f failingPlaylists) Put(p *models.Playlist) (*models.Playlist, error) {
	if p.ID == f.failID {
		return nil, fmt.Errorf("put playlist: %w", store.ErrTransactionFailed)
	}
	return f.Collection.Put(p)
}

type failingStore struct {
	store.Store
	playlists store.Collection[*models.Playlist]
}

func (f failingStore) Playlists() store.Collection[*models.Playlist] {
	return f.playlists
}

type staticStore struct{ s store.Store }

func (p staticStore) Store() (store.Store, error) { return p.s, nil }

func TestDeleteMediaKeepsOrphanWhenCleanupFails(t *testing.T) {
	healthy, base := setupService(t)
	ctx := context.Background()
	m := upload(t, healthy, "a.mp3", "audio/mpeg", []byte("a"))
	good, err := healthy.CreatePlaylist(ctx, "good")
	require.NoError(t, err)
	bad, err := healthy.CreatePlaylist(ctx, "bad")
	require.NoError(t, err)
	for _, p := range []*models.Playlist{good, bad} {
		_, err := healthy.AddMediaToPlaylist(ctx, p.ID, m.ID)
		require.NoError(t, err)
	}

	broken := New(staticStore{failingStore{
		Store:     base,
		playlists: failingPlaylists{Collection: base.Playlists(), failID: bad.ID},
	}})

	err = broken.DeleteMedia(ctx, m.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrTransactionFailed)

	// The sibling playlist was still cleaned.
	gotGood, err := healthy.GetPlaylist(ctx, good.ID)
	require.NoError(t, err)
	assert.Empty(t, gotGood.MediaIDs)

	// The media survives because one playlist still references it.
	_, err = healthy.GetPlayableMedia(ctx, m.ID)
	assert.NoError(t, err)
	gotBad, err := healthy.GetPlaylist(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{m.ID}, gotBad.MediaIDs)
}

func TestRoadTripScenario(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	trip, err := svc.CreatePlaylist(ctx, "Road Trip")
	require.NoError(t, err)
	a := upload(t, svc, "a.mp3", "audio/mpeg", []byte("aaaa"))
	b := upload(t, svc, "b.mp4", "video/mp4", []byte("bbbb"))
	_, err = svc.AddMediaToPlaylist(ctx, trip.ID, a.ID)
	require.NoError(t, err)
	_, err = svc.AddMediaToPlaylist(ctx, trip.ID, b.ID)
	require.NoError(t, err)

	playlists, err := svc.ListPlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, 2, playlists[0].Count())

	require.NoError(t, svc.DeleteMedia(ctx, a.ID))

	playlists, err = svc.ListPlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, []string{b.ID}, playlists[0].MediaIDs)

	media, err := svc.ListMedia(ctx)
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, b.ID, media[0].ID)
}

func TestDeletePlaylistLeavesMedia(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp3", "audio/mpeg", []byte("a"))
	b := upload(t, svc, "b.mp4", "video/mp4", []byte("b"))
	p, err := svc.CreatePlaylist(ctx, "Doomed")
	require.NoError(t, err)
	_, err = svc.AddMediaToPlaylist(ctx, p.ID, a.ID)
	require.NoError(t, err)

	before, err := svc.ListMedia(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeletePlaylist(ctx, p.ID))

	playlists, err := svc.ListPlaylists(ctx)
	require.NoError(t, err)
	assert.Empty(t, playlists)

	after, err := svc.ListMedia(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, after, 2)
	assert.Equal(t, []string{a.ID, b.ID}, []string{after[0].ID, after[1].ID})
}

func TestCreatePlaylistNames(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.CreatePlaylist(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPlaylistName, p.Name)
	assert.NotNil(t, p.MediaIDs)
	assert.Empty(t, p.MediaIDs)

	q, err := svc.CreatePlaylist(ctx, "  Chill  ")
	require.NoError(t, err)
	assert.Equal(t, "Chill", q.Name)
	assert.NotEqual(t, p.ID, q.ID)
}

func TestGetMissingRecords(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.GetPlayableMedia(ctx, "nope")
	assert.ErrorIs(t, err, ErrMediaNotFound)

	_, err = svc.GetPlaylist(ctx, "nope")
	assert.ErrorIs(t, err, ErrPlaylistNotFound)

	_, err = svc.ListMediaForPlaylist(ctx, "nope")
	assert.ErrorIs(t, err, ErrPlaylistNotFound)
}

func TestListMediaForPlaylistSkipsDangling(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp3", "audio/mpeg", []byte("a"))
	p, err := svc.CreatePlaylist(ctx, "Dangling")
	require.NoError(t, err)

	// Write a reference to an id that was never uploaded, bypassing the service.
	_, err = st.Playlists().Put(p.WithMedia("ghost").WithMedia(a.ID))
	require.NoError(t, err)

	items, err := svc.ListMediaForPlaylist(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)
}

func TestFilterByName(t *testing.T) {
	list := []*models.MediaItem{
		{ID: "1", Name: "Summer Song"},
		{ID: "2", Name: "winter"},
		{ID: "3", Name: "SONGBIRD"},
	}

	assert.Equal(t, list, FilterByName(list, ""))
	assert.Equal(t, list, FilterByName(list, "   "))

	got := FilterByName(list, "song")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	assert.Empty(t, FilterByName(list, "autumn"))
}

func TestFilterByKind(t *testing.T) {
	list := []*models.MediaItem{
		{ID: "1", Kind: models.KindAudio},
		{ID: "2", Kind: models.KindVideo},
		{ID: "3", Kind: models.KindAudio},
	}
	audio := FilterByKind(list, models.KindAudio)
	require.Len(t, audio, 2)
	assert.Equal(t, "3", audio[1].ID)
	assert.Len(t, FilterByKind(list, models.KindVideo), 1)
}

func TestCanceledContext(t *testing.T) {
	svc, _ := setupService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ListMedia(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = svc.UploadMedia(ctx, Upload{Name: "a.mp3", MimeType: "audio/mpeg", Body: strings.NewReader("a")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClosedStorePropagates(t *testing.T) {
	s, err := kv.Open("", kv.WithInMemory())
	require.NoError(t, err)
	h := store.NewHandle(func() (store.Store, error) { return s, nil })
	svc := New(h)
	require.NoError(t, h.Close())

	_, err = svc.ListMedia(context.Background())
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestResolveMedia(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	a := upload(t, svc, "a.mp3", "audio/mpeg", []byte("a"))
	b := upload(t, svc, "b.mp3", "audio/mpeg", []byte("b"))

	got, err := svc.ResolveMedia(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Nil(t, got.Content)

	// Both ids start with the same millisecond-era digits.
	_, err = svc.ResolveMedia(ctx, a.ID[:MinPrefixLen])
	if a.ID[:MinPrefixLen] == b.ID[:MinPrefixLen] {
		assert.ErrorIs(t, err, ErrAmbiguousRef)
	}

	got, err = svc.ResolveMedia(ctx, b.ID[:len(b.ID)-1])
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	got, err = svc.ResolveMedia(ctx, models.ShortID(a.ID))
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.ResolveMedia(ctx, "zzzzzzzzzz")
	assert.ErrorIs(t, err, ErrMediaNotFound)

	_, err = svc.ResolveMedia(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolvePlaylist(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	trip, err := svc.CreatePlaylist(ctx, "Road Trip")
	require.NoError(t, err)
	_, err = svc.CreatePlaylist(ctx, "dupe")
	require.NoError(t, err)
	_, err = svc.CreatePlaylist(ctx, "Dupe")
	require.NoError(t, err)

	got, err := svc.ResolvePlaylist(ctx, "road trip")
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)

	got, err = svc.ResolvePlaylist(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", got.Name)

	_, err = svc.ResolvePlaylist(ctx, "DUPE")
	assert.ErrorIs(t, err, ErrAmbiguousRef)

	_, err = svc.ResolvePlaylist(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlaylistNotFound)
}

func TestExportImport(t *testing.T) {
	src, _ := setupService(t)
	ctx := context.Background()
	a := upload(t, src, "a.mp3", "audio/mpeg", []byte("alpha"))
	b := upload(t, src, "b.mp4", "video/mp4", []byte{})
	p, err := src.CreatePlaylist(ctx, "Road Trip")
	require.NoError(t, err)
	_, err = src.AddMediaToPlaylist(ctx, p.ID, b.ID)
	require.NoError(t, err)
	_, err = src.AddMediaToPlaylist(ctx, p.ID, a.ID)
	require.NoError(t, err)

	archive, err := src.Export(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, ArchiveVersion, archive.Version)
	require.Len(t, archive.Media, 2)
	require.NotNil(t, archive.Media[1].Content, "empty payloads still carry content")

	dst, _ := setupService(t)
	report, err := dst.Import(ctx, archive)
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Media: 2, Playlists: 1}, report)

	full, err := dst.GetPlayableMedia(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), full.Content)
	assert.True(t, a.CreatedAt.Equal(full.CreatedAt))

	got, err := dst.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID}, got.MediaIDs)
}

func TestImportWithoutContent(t *testing.T) {
	src, _ := setupService(t)
	ctx := context.Background()
	upload(t, src, "a.mp3", "audio/mpeg", []byte("alpha"))

	archive, err := src.Export(ctx, false)
	require.NoError(t, err)
	assert.Nil(t, archive.Media[0].Content)

	// Re-importing into the same library leaves the existing item alone.
	report, err := src.Import(ctx, archive)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)

	dst, _ := setupService(t)
	report, err = dst.Import(ctx, archive)
	assert.Error(t, err)
	assert.Equal(t, 0, report.Media)
}

func TestImportRejectsNewerArchive(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.Import(context.Background(), &Archive{Version: ArchiveVersion + 1, ExportedAt: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImportDropsMissingPlaylistEntries(t *testing.T) {
	src, _ := setupService(t)
	ctx := context.Background()
	kept := upload(t, src, "kept.mp3", "audio/mpeg", []byte("k"))
	lost := upload(t, src, "lost.mp3", "audio/mpeg", []byte("l"))
	p, err := src.CreatePlaylist(ctx, "Mix")
	require.NoError(t, err)
	_, err = src.AddMediaToPlaylist(ctx, p.ID, lost.ID)
	require.NoError(t, err)
	_, err = src.AddMediaToPlaylist(ctx, p.ID, kept.ID)
	require.NoError(t, err)

	archive, err := src.Export(ctx, true)
	require.NoError(t, err)
	// One item arrives without content and one was never exported.
	archive.Media[1].Content = nil
	archive.Playlists[0].MediaIDs = append(archive.Playlists[0].MediaIDs, "never-exported")

	dst, _ := setupService(t)
	report, err := dst.Import(ctx, archive)
	require.Error(t, err, "the item without content cannot be imported")
	assert.Equal(t, 1, report.Media)
	assert.Equal(t, 1, report.Playlists)
	assert.Equal(t, 2, report.DroppedRefs)

	got, err := dst.GetPlaylist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, got.MediaIDs)
}

func TestLargeUploadRoundTripOnDisk(t *testing.T) {
	backends := map[string]func(dir string) (store.Store, error){
		"kv": func(dir string) (store.Store, error) {
			return kv.Open(filepath.Join(dir, "library.badger"))
		},
		"sqlite": func(dir string) (store.Store, error) {
			return sqlite.Open(filepath.Join(dir, "library.db"))
		},
	}
	payload := make([]byte, 3<<20)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range payload {
		payload[i] = byte(rng.UintN(256))
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			h := store.NewHandle(func() (store.Store, error) { return open(dir) })
			svc := New(h)
			ctx := context.Background()

			meta := upload(t, svc, "concert.mkv", "video/x-matroska", payload)
			assert.Equal(t, int64(len(payload)), meta.Size)
			require.NoError(t, h.Close())

			// A fresh handle reads what the first one wrote.
			h = store.NewHandle(func() (store.Store, error) { return open(dir) })
			t.Cleanup(func() { _ = h.Close() })
			full, err := New(h).GetPlayableMedia(ctx, meta.ID)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(payload, full.Content), "content differs after reopen")
			assert.Equal(t, models.KindVideo, full.Kind)
		})
	}
}

func TestUploadTooLargeForStoreIsInvalidInput(t *testing.T) {
	// In-memory badger holds values up to 1 MiB.
	svc, _ := setupService(t)
	_, err := svc.UploadMedia(context.Background(), Upload{
		Name:     "long.flac",
		MimeType: "audio/flac",
		Body:     bytes.NewReader(make([]byte, 2<<20)),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, store.ErrInvalidRecord)
	assert.Less(t, len(err.Error()), 200)

	list, err := svc.ListMedia(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDefaultUploadCapFitsBadger(t *testing.T) {
	assert.Less(t, DefaultMaxUploadBytes, badger.DefaultOptions("").ValueLogFileSize)
}
