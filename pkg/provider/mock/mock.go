// Package mock provides in-memory test doubles for the provider interfaces.
//
// Each mock exposes configurable responses as public fields and records every
// invocation so tests can assert on what was sent to the backend.
//
// Example:
//
//	svc := &mock.Speech{
//	    GenerateFn: func(req types.GenerationRequest) (types.GenerationResult, error) {
//	        return types.GenerationResult{ID: "1", InputText: req.Text}, nil
//	    },
//	}
package mock

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/sajina/voicecloneai/pkg/provider"
	"github.com/sajina/voicecloneai/pkg/types"
)

// Compile-time interface assertions.
var (
	_ provider.ProfileService     = (*Profile)(nil)
	_ provider.CatalogService     = (*Catalog)(nil)
	_ provider.TranslationService = (*Translator)(nil)
	_ provider.SpeechService      = (*Speech)(nil)
	_ provider.AudioFetcher       = (*Fetcher)(nil)
)

// ---- Profile ----

// Profile is a mock provider.ProfileService.
type Profile struct {
	mu sync.Mutex

	// ProfileResult is returned by Profile.
	ProfileResult types.Profile

	// ProfileErr, if non-nil, is returned instead of ProfileResult.
	ProfileErr error

	// Calls counts invocations of Profile.
	Calls int
}

func (p *Profile) Profile(ctx context.Context) (types.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	if p.ProfileErr != nil {
		return types.Profile{}, p.ProfileErr
	}
	return p.ProfileResult, nil
}

// SetCredits updates the balance returned by subsequent Profile calls.
func (p *Profile) SetCredits(credits int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ProfileResult.Credits = credits
}

// ---- Catalog ----

// Catalog is a mock provider.CatalogService.
type Catalog struct {
	mu sync.Mutex

	// ProfilesResult is returned by Profiles.
	ProfilesResult []types.VoiceIdentity

	// ProfilesErr, if non-nil, is returned instead of ProfilesResult.
	ProfilesErr error

	// ClonesResult is returned by Clones.
	ClonesResult []types.VoiceIdentity

	// ClonesErr, if non-nil, is returned instead of ClonesResult.
	ClonesErr error

	// ProfilesCalls and ClonesCalls count invocations.
	ProfilesCalls int
	ClonesCalls   int
}

func (c *Catalog) Profiles(ctx context.Context) ([]types.VoiceIdentity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ProfilesCalls++
	if c.ProfilesErr != nil {
		return nil, c.ProfilesErr
	}
	return c.ProfilesResult, nil
}

func (c *Catalog) Clones(ctx context.Context) ([]types.VoiceIdentity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ClonesCalls++
	if c.ClonesErr != nil {
		return nil, c.ClonesErr
	}
	return c.ClonesResult, nil
}

// ---- Translator ----

// TranslateCall records a single invocation of Translate.
type TranslateCall struct {
	Text   string
	Source string
	Target string
}

// Translator is a mock provider.TranslationService.
type Translator struct {
	mu sync.Mutex

	// TranslateFn, if set, computes the outcome per call. Otherwise
	// TranslateResult/TranslateErr are used.
	TranslateFn func(text, source, target string) (types.TranslationOutcome, error)

	// TranslateResult is returned by Translate when TranslateFn is nil.
	TranslateResult types.TranslationOutcome

	// TranslateErr, if non-nil, is returned instead of TranslateResult.
	TranslateErr error

	// TranslateCalls records every call in order.
	TranslateCalls []TranslateCall
}

func (t *Translator) Translate(ctx context.Context, text, source, target string) (types.TranslationOutcome, error) {
	t.mu.Lock()
	t.TranslateCalls = append(t.TranslateCalls, TranslateCall{Text: text, Source: source, Target: target})
	fn := t.TranslateFn
	result, err := t.TranslateResult, t.TranslateErr
	t.mu.Unlock()

	if fn != nil {
		return fn(text, source, target)
	}
	if err != nil {
		return types.TranslationOutcome{}, err
	}
	return result, nil
}

// ---- Speech ----

// Speech is a mock provider.SpeechService.
type Speech struct {
	mu sync.Mutex

	// GenerateFn, if set, computes the result per call. Otherwise
	// GenerateResult/GenerateErr are used.
	GenerateFn func(req types.GenerationRequest) (types.GenerationResult, error)

	// GenerateResult is returned by Generate when GenerateFn is nil.
	GenerateResult types.GenerationResult

	// GenerateErr, if non-nil, is returned instead of GenerateResult.
	GenerateErr error

	// HistoryResult is returned by History.
	HistoryResult []types.GenerationResult

	// HistoryErr, if non-nil, is returned instead of HistoryResult.
	HistoryErr error

	// DeleteErr, if non-nil, is returned by DeleteHistory.
	DeleteErr error

	// GenerateCalls records every generation request in order.
	GenerateCalls []types.GenerationRequest

	// DeletedIDs records every ID passed to DeleteHistory in order.
	DeletedIDs []string
}

func (s *Speech) Generate(ctx context.Context, req types.GenerationRequest) (types.GenerationResult, error) {
	s.mu.Lock()
	s.GenerateCalls = append(s.GenerateCalls, req)
	fn := s.GenerateFn
	result, err := s.GenerateResult, s.GenerateErr
	s.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	if err != nil {
		return types.GenerationResult{}, err
	}
	return result, nil
}

func (s *Speech) History(ctx context.Context) ([]types.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.HistoryErr != nil {
		return nil, s.HistoryErr
	}
	return s.HistoryResult, nil
}

func (s *Speech) DeleteHistory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeletedIDs = append(s.DeletedIDs, id)
	return s.DeleteErr
}

// ---- Fetcher ----

// Fetcher is a mock provider.AudioFetcher.
type Fetcher struct {
	mu sync.Mutex

	// Audio maps refs to the bytes returned by Fetch. Refs not in the map
	// yield provider.ErrNotFound.
	Audio map[string][]byte

	// FetchErr, if non-nil, is returned by every Fetch call.
	FetchErr error

	// FetchedRefs records every ref passed to Fetch in order.
	FetchedRefs []string
}

func (f *Fetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchedRefs = append(f.FetchedRefs, ref)
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	data, ok := f.Audio[ref]
	if !ok {
		return nil, provider.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
