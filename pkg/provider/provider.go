// Package provider defines the service interfaces the application depends on
// to talk to the voice backend: the account profile, the voice catalogue,
// translation, speech generation, and audio retrieval.
//
// Interfaces are split per concern so implementations can be swapped or mocked
// independently. The restapi subpackage implements all of them against the
// backend's HTTP API; the mock subpackage provides in-memory test doubles.
//
// Implementations must be safe for concurrent use.
package provider

import (
	"context"
	"errors"
	"io"

	"github.com/sajina/voicecloneai/pkg/types"
)

// ErrNotFound is returned when a requested resource does not exist on the
// backend, e.g. deleting a history entry that was already removed.
var ErrNotFound = errors.New("provider: not found")

// ProfileService retrieves the signed-in account's profile, including the
// authoritative credit balance.
type ProfileService interface {
	// Profile returns the current account profile. The Credits field is the
	// server-side balance at the time of the call and supersedes any locally
	// cached value.
	Profile(ctx context.Context) (types.Profile, error)
}

// CatalogService lists the voices available to the account.
type CatalogService interface {
	// Profiles returns the stock voice catalogue.
	Profiles(ctx context.Context) ([]types.VoiceIdentity, error)

	// Clones returns the account's custom cloned voices, in every training
	// status. Callers decide which statuses to surface.
	Clones(ctx context.Context) ([]types.VoiceIdentity, error)
}

// TranslationService translates text between supported languages.
type TranslationService interface {
	// Translate converts text from the source language to the target language.
	// source may be a concrete language code or "auto" to let the backend
	// detect it. A degraded-but-usable result is reported via the outcome's
	// Warning field rather than an error.
	Translate(ctx context.Context, text, source, target string) (types.TranslationOutcome, error)
}

// SpeechService generates speech audio and manages the account's generation
// history.
type SpeechService interface {
	// Generate synthesises req.Text with req.Voice and returns the stored
	// result. Preview requests are not persisted server-side and consume no
	// credits; their result carries an empty ID.
	Generate(ctx context.Context, req types.GenerationRequest) (types.GenerationResult, error)

	// History returns the account's saved generations, most recent first.
	History(ctx context.Context) ([]types.GenerationResult, error)

	// DeleteHistory removes the saved generation with the given ID.
	DeleteHistory(ctx context.Context, id string) error
}

// AudioFetcher retrieves generated audio by its reference for playback.
type AudioFetcher interface {
	// Fetch opens the audio stream behind ref. The caller must close the
	// returned reader.
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
}
