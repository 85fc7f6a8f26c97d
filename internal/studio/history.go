package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sajina/voicecloneai/pkg/provider"
	"github.com/sajina/voicecloneai/pkg/types"
)

// History is the session-scoped list of generations, most recent first.
// Items that exist server-side (saved results) are deleted there too when
// removed. Safe for concurrent use.
type History struct {
	svc provider.SpeechService

	mu    sync.Mutex
	items []types.GenerationResult
}

// NewHistory creates an empty History backed by svc for server deletes.
func NewHistory(svc provider.SpeechService) *History {
	return &History{svc: svc}
}

// Load replaces the local list with the server's saved generations. The
// server already orders them most recent first.
func (h *History) Load(ctx context.Context) error {
	items, err := h.svc.History(ctx)
	if err != nil {
		return fmt.Errorf("studio: load history: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = items
	return nil
}

// Append prepends a batch of results. The batch lands at the front as a
// block, keeping its internal order, so the newest batch reads top-down in
// the order its units were issued.
func (h *History) Append(results ...types.GenerationResult) {
	if len(results) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	merged := make([]types.GenerationResult, 0, len(results)+len(h.items))
	merged = append(merged, results...)
	merged = append(merged, h.items...)
	h.items = merged
}

// Remove deletes the entry with the given id. Saved entries are deleted on
// the server first; an entry the server no longer knows is still removed
// locally. Unknown ids are a no-op.
func (h *History) Remove(ctx context.Context, id string) error {
	h.mu.Lock()
	idx := -1
	var item types.GenerationResult
	for i, it := range h.items {
		if it.ID == id {
			idx, item = i, it
			break
		}
	}
	h.mu.Unlock()

	if idx < 0 {
		return nil
	}

	if item.Saved() {
		if err := h.svc.DeleteHistory(ctx, id); err != nil && !errors.Is(err, provider.ErrNotFound) {
			return fmt.Errorf("studio: delete history entry %s: %w", id, err)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, it := range h.items {
		if it.ID == id {
			h.items = append(h.items[:i], h.items[i+1:]...)
			break
		}
	}
	return nil
}

// List returns a snapshot, most recent first.
func (h *History) List() []types.GenerationResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.GenerationResult, len(h.items))
	copy(out, h.items)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// ByID returns the entry with the given id.
func (h *History) ByID(id string) (types.GenerationResult, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, it := range h.items {
		if it.ID == id {
			return it, true
		}
	}
	return types.GenerationResult{}, false
}
