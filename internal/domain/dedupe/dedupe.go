package dedupe

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// Deduper records seen handles so each user is collected at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if handle was seen and records it if not.
	// Returns true if handle was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, handle string) bool

	// Unrecord forgets a handle so it can be scheduled again.
	Unrecord(ctx context.Context, handle string)

	Size() int64
}

type handleDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size atomic.Int64
	fold bool
}

// NewHandleDeduper creates a deduper with configuration options.
func NewHandleDeduper(opts ...Option) Deduper {
	d := &handleDeduper{
		seen: make(map[string]struct{}),
		fold: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *handleDeduper) key(handle string) string {
	handle = strings.TrimSpace(handle)
	if d.fold {
		return strings.ToLower(handle)
	}
	return handle
}

// SeenAndRecord atomically checks if handle was seen and records it if not.
func (d *handleDeduper) SeenAndRecord(_ context.Context, handle string) bool {
	k := d.key(handle)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[k]; exists {
		return true
	}
	d.seen[k] = struct{}{}
	d.size.Add(1)
	return false
}

// Unrecord removes a handle from the seen set.
func (d *handleDeduper) Unrecord(_ context.Context, handle string) {
	k := d.key(handle)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[k]; exists {
		delete(d.seen, k)
		d.size.Add(-1)
	}
}

// Size returns the number of recorded handles.
func (d *handleDeduper) Size() int64 {
	return d.size.Load()
}

// Unique returns handles in first-seen order with duplicates and blanks
// removed, stopping once limit handles are collected. A limit <= 0 keeps all.
func Unique(ctx context.Context, d Deduper, handles []string, limit int) []string {
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		if limit > 0 && len(out) >= limit {
			break
		}
		h = strings.TrimSpace(h)
		if h == "" || d.SeenAndRecord(ctx, h) {
			continue
		}
		out = append(out, h)
	}
	return out
}
