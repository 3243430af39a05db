// ABOUTME: Library service coordinating media and playlist operations over a store.
// ABOUTME: Holds no mutable state of its own; every call reads and writes through the storage engine.

package library

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultMaxUploadBytes caps a single upload just under 1 GiB, which keeps it
// inside badger's default value log file.
const DefaultMaxUploadBytes int64 = 1023 << 20

// idAttempts bounds regeneration when a fresh id is already taken.
const idAttempts = 3

var (
	ErrMediaNotFound    = fmt.Errorf("media %w", store.ErrNotFound)
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", store.ErrNotFound)
	ErrInvalidInput     = errors.New("invalid input")
	ErrAmbiguousRef     = errors.New("ambiguous reference")
)

// StoreProvider hands out the open store. *store.Handle implements it.
type StoreProvider interface {
	Store() (store.Store, error)
}

type Service struct {
	stores    StoreProvider
	log       logrus.FieldLogger
	validate  *validator.Validate
	maxUpload int64
}

type Option func(*Service)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMaxUploadBytes limits payload size. Zero or less disables the limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		s.maxUpload = n
	}
}

func New(stores StoreProvider, opts ...Option) *Service {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	s := &Service{
		stores:    stores,
		log:       quiet,
		validate:  validator.New(),
		maxUpload: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// open checks the caller's context once, then returns the store.
func (s *Service) open(ctx context.Context) (store.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.stores.Store()
}

func sortMedia(items []*models.MediaItem) {
	slices.SortStableFunc(items, func(a, b *models.MediaItem) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func sortPlaylists(playlists []*models.Playlist) {
	slices.SortStableFunc(playlists, func(a, b *models.Playlist) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
