// ABOUTME: Open-or-reuse handle owning the lifetime of one Store.
// ABOUTME: Replaces a global connection with an explicitly constructed value.

package store

import (
	"errors"
	"sync"
)

// Opener opens a backend.
type Opener func() (Store, error)

// Handle opens its Store on first use and returns the same Store afterwards.
// A failed open is not cached, so a later call may retry.
type Handle struct {
	mu     sync.Mutex
	open   Opener
	store  Store
	closed bool
}

func NewHandle(open Opener) *Handle {
	return &Handle{open: open}
}

func (h *Handle) Store() (Store, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errors.Join(ErrStorageUnavailable, errors.New("handle closed"))
	}
	if h.store != nil {
		return h.store, nil
	}
	s, err := h.open()
	if err != nil {
		return nil, err
	}
	h.store = s
	return s, nil
}

// Close releases the Store if it was opened. Calling it twice is safe.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.store == nil {
		return nil
	}
	err := h.store.Close()
	h.store = nil
	return err
}
