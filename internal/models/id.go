// ABOUTME: Identifier generation and creation timestamps for stored records.
// ABOUTME: IDs are millisecond time plus a random base36 suffix, unique within a process.

package models

import (
	"encoding/binary"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 9

var (
	idMu     sync.Mutex
	idLastMS int64
	idSeq    int64

	clockMu   sync.Mutex
	clockLast int64
)

// NewID returns "<unix-ms>-<suffix>". IDs minted in the same millisecond by
// this process carry an extra "-<seq>" so they never repeat.
func NewID() string {
	ms := time.Now().UnixMilli()

	idMu.Lock()
	if ms == idLastMS {
		idSeq++
	} else {
		idLastMS = ms
		idSeq = 0
	}
	seq := idSeq
	idMu.Unlock()

	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(ms, 10))
	sb.WriteByte('-')
	sb.WriteString(randomSuffix())
	if seq > 0 {
		sb.WriteByte('-')
		sb.WriteString(strconv.FormatInt(seq, 36))
	}
	return sb.String()
}

func randomSuffix() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[8:])
	s := strconv.FormatUint(n, 36)
	if len(s) < suffixLen {
		s = strings.Repeat("0", suffixLen-len(s)) + s
	}
	return s[len(s)-suffixLen:]
}

// Now returns the current time truncated to milliseconds, strictly later than
// any value it returned before in this process.
func Now() time.Time {
	ms := time.Now().UnixMilli()

	clockMu.Lock()
	defer clockMu.Unlock()
	if ms <= clockLast {
		ms = clockLast + 1
	}
	clockLast = ms
	return time.UnixMilli(ms)
}

// ShortID returns the random segment of id, the form listings display.
func ShortID(id string) string {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) < 2 {
		return id
	}
	return parts[1]
}
