// ABOUTME: Playback queue over a listing of media metadata.
// ABOUTME: Next and Prev wrap around at both ends; content is fetched only when an item plays.

package library

import (
	"context"
	"errors"

	"github.com/harper/myaktube/internal/models"
)

// Queue walks a fixed list of media in order. It is not safe for concurrent use.
type Queue struct {
	items []*models.MediaItem
	index int
}

// NewQueue starts at startID, or at the first item when startID is not listed.
func NewQueue(items []*models.MediaItem, startID string) *Queue {
	q := &Queue{items: items}
	for i, m := range items {
		if m.ID == startID {
			q.index = i
			break
		}
	}
	return q
}

func (q *Queue) Len() int {
	return len(q.items)
}

// Index is the position of the current item, or -1 for an empty queue.
func (q *Queue) Index() int {
	if len(q.items) == 0 {
		return -1
	}
	return q.index
}

// Current returns nil for an empty queue.
func (q *Queue) Current() *models.MediaItem {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[q.index]
}

// Next advances, wrapping from the last item to the first.
func (q *Queue) Next() *models.MediaItem {
	if len(q.items) == 0 {
		return nil
	}
	q.index = (q.index + 1) % len(q.items)
	return q.items[q.index]
}

// Prev steps back, wrapping from the first item to the last.
func (q *Queue) Prev() *models.MediaItem {
	if len(q.items) == 0 {
		return nil
	}
	q.index = (q.index - 1 + len(q.items)) % len(q.items)
	return q.items[q.index]
}

// PlayFunc receives each item with its content loaded.
type PlayFunc func(ctx context.Context, m *models.MediaItem) error

// PlayQueue plays every item of q once, starting at the current one and
// wrapping past the end. With loop set it keeps going round until ctx is done
// or play fails. Items deleted since the queue
// was built are skipped. It returns how many items were played.
func (s *Service) PlayQueue(ctx context.Context, q *Queue, loop bool, play PlayFunc) (int, error) {
	played, misses := 0, 0
	for step := 0; q.Len() > 0; step++ {
		if step > 0 {
			if !loop && step == q.Len() {
				return played, nil
			}
			q.Next()
		}
		if err := ctx.Err(); err != nil {
			return played, err
		}

		meta := q.Current()
		full, err := s.GetPlayableMedia(ctx, meta.ID)
		if errors.Is(err, ErrMediaNotFound) {
			s.log.WithField("media_id", meta.ID).Warn("queued media is gone")
			// A full lap without anything playable ends a looping queue.
			if misses++; misses >= q.Len() {
				return played, nil
			}
			continue
		}
		if err != nil {
			return played, err
		}
		if err := play(ctx, full); err != nil {
			return played, err
		}
		played++
		misses = 0
	}
	return played, nil
}
