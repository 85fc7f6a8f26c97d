// Package catalog holds the in-memory voice catalogue: stock profiles and
// the account's clones, the active kind/filter context, and the multi-select
// set the batch orchestrator consumes.
//
// The invariant the package exists to protect: the selection only ever
// contains voices that are visible under the current filter context. Any
// change to the kind or filter clears the selection wholesale rather than
// trying to prune it.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"
	"golang.org/x/sync/errgroup"

	"github.com/sajina/voicecloneai/internal/language"
	"github.com/sajina/voicecloneai/pkg/provider"
	"github.com/sajina/voicecloneai/pkg/types"
)

// Any is the wildcard filter value matching every voice.
const Any = "all"

// searchThreshold is the minimum Jaro-Winkler score for a fuzzy name match.
const searchThreshold = 0.82

// Filter is the attribute filter applied to the visible catalogue.
type Filter struct {
	Gender   string
	Emotion  string
	Language string
}

// normalized treats empty fields as the wildcard.
func (f Filter) normalized() Filter {
	if f.Gender == "" {
		f.Gender = Any
	}
	if f.Emotion == "" {
		f.Emotion = Any
	}
	if f.Language == "" {
		f.Language = language.Unrestricted
	}
	return f
}

func (f Filter) matches(v types.VoiceIdentity) bool {
	if f.Gender != Any && v.Gender != f.Gender {
		return false
	}
	if f.Emotion != Any && v.Emotion != f.Emotion {
		return false
	}
	if f.Language != language.Unrestricted && v.Language != f.Language {
		return false
	}
	return true
}

// Catalog is the filterable voice catalogue. Safe for concurrent use.
type Catalog struct {
	svc provider.CatalogService

	mu        sync.Mutex
	profiles  []types.VoiceIdentity
	clones    []types.VoiceIdentity
	kind      types.VoiceKind
	filter    Filter
	selection map[string]struct{}
}

// New creates an empty Catalog; call Load before using it.
func New(svc provider.CatalogService) *Catalog {
	return &Catalog{
		svc:       svc,
		kind:      types.KindProfile,
		filter:    Filter{}.normalized(),
		selection: make(map[string]struct{}),
	}
}

// Load fetches profiles and clones concurrently and replaces the catalogue.
// The selection is cleared: previously selected ids may no longer exist.
func (c *Catalog) Load(ctx context.Context) error {
	var (
		profiles []types.VoiceIdentity
		clones   []types.VoiceIdentity
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = c.svc.Profiles(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		clones, err = c.svc.Clones(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles = profiles
	c.clones = clones
	c.selection = make(map[string]struct{})
	return nil
}

// Kind returns the active voice kind.
func (c *Catalog) Kind() types.VoiceKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}

// SetKind switches between stock profiles and clones. An actual switch
// clears the selection; setting the kind already active keeps it.
func (c *Catalog) SetKind(kind types.VoiceKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == c.kind {
		return
	}
	c.kind = kind
	c.selection = make(map[string]struct{})
}

// Filter returns the active filter.
func (c *Catalog) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// SetFilter replaces the attribute filter. Any actual change clears the
// selection.
func (c *Catalog) SetFilter(f Filter) {
	f = f.normalized()

	c.mu.Lock()
	defer c.mu.Unlock()
	if f == c.filter {
		return
	}
	c.filter = f
	c.selection = make(map[string]struct{})
}

// Visible returns the voices of the active kind that pass moderation rules
// and the active filter, in catalogue order. Stock profiles must be active;
// clones must additionally have finished training.
func (c *Catalog) Visible() []types.VoiceIdentity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

// visibleLocked must be called with c.mu held.
func (c *Catalog) visibleLocked() []types.VoiceIdentity {
	source := c.profiles
	if c.kind == types.KindClone {
		source = c.clones
	}

	var out []types.VoiceIdentity
	for _, v := range source {
		if !v.Active {
			continue
		}
		if v.Kind == types.KindClone && v.Status != types.CloneStatusReady {
			continue
		}
		if !c.filter.matches(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Clones returns every clone regardless of status, for the training
// dashboard.
func (c *Catalog) Clones() []types.VoiceIdentity {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.VoiceIdentity, len(c.clones))
	copy(out, c.clones)
	return out
}

// ByID looks a voice up across both kinds.
func (c *Catalog) ByID(id string) (types.VoiceIdentity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.profiles {
		if v.ID == id {
			return v, true
		}
	}
	for _, v := range c.clones {
		if v.ID == id {
			return v, true
		}
	}
	return types.VoiceIdentity{}, false
}

// Search fuzzy-matches q against the display names of the currently visible
// voices. Substring matches rank before Jaro-Winkler matches; results keep
// catalogue order within each band.
func (c *Catalog) Search(q string) []types.VoiceIdentity {
	q = strings.ToLower(strings.TrimSpace(q))

	c.mu.Lock()
	visible := c.visibleLocked()
	c.mu.Unlock()

	if q == "" {
		return visible
	}

	type scored struct {
		voice types.VoiceIdentity
		rank  int // 0 substring, 1 fuzzy
		score float64
		idx   int
	}
	var hits []scored
	for i, v := range visible {
		name := strings.ToLower(v.Name)
		switch {
		case strings.Contains(name, q):
			hits = append(hits, scored{voice: v, rank: 0, score: 1, idx: i})
		default:
			if s := matchr.JaroWinkler(q, name, false); s >= searchThreshold {
				hits = append(hits, scored{voice: v, rank: 1, score: s, idx: i})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		if hits[i].rank == 1 && hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].idx < hits[j].idx
	})

	out := make([]types.VoiceIdentity, len(hits))
	for i, h := range hits {
		out[i] = h.voice
	}
	return out
}

// ---- selection ----

// Toggle flips the selection state of id. Only currently visible voices can
// be selected; toggling anything else is a no-op and reports false.
func (c *Catalog) Toggle(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.selection[id]; ok {
		delete(c.selection, id)
		return true
	}

	for _, v := range c.visibleLocked() {
		if v.ID == id {
			c.selection[id] = struct{}{}
			return true
		}
	}
	return false
}

// ClearSelection empties the selection.
func (c *Catalog) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = make(map[string]struct{})
}

// SelectionSize returns the number of selected voices.
func (c *Catalog) SelectionSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selection)
}

// Selected returns the selected voices in visible (catalogue) order.
func (c *Catalog) Selected() []types.VoiceIdentity {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []types.VoiceIdentity
	for _, v := range c.visibleLocked() {
		if _, ok := c.selection[v.ID]; ok {
			out = append(out, v)
		}
	}
	return out
}
