package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sajina/voicecloneai/internal/config"
	"github.com/sajina/voicecloneai/internal/playback"
	audiomock "github.com/sajina/voicecloneai/pkg/audio/mock"
	"github.com/sajina/voicecloneai/pkg/provider"
	"github.com/sajina/voicecloneai/pkg/provider/mock"
	"github.com/sajina/voicecloneai/pkg/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{BaseURL: "https://api.example.com", Token: "t"},
	}
}

func testProviders() (*Providers, *mock.Speech, *audiomock.Player) {
	speech := &mock.Speech{
		HistoryResult: []types.GenerationResult{
			{ID: "h1", InputText: "hello", AudioRef: "/media/h1.mp3", Voice: types.VoiceIdentity{ID: "v1", Kind: types.KindProfile}},
		},
		GenerateFn: func(req types.GenerationRequest) (types.GenerationResult, error) {
			return types.GenerationResult{
				InputText: req.Text,
				AudioRef:  "/media/preview.mp3",
				Voice:     req.Voice,
			}, nil
		},
	}
	player := &audiomock.Player{}

	p := &Providers{
		Profile: &mock.Profile{ProfileResult: types.Profile{Email: "u@example.com", Credits: 50}},
		Catalog: &mock.Catalog{
			ProfilesResult: []types.VoiceIdentity{
				{ID: "v1", Kind: types.KindProfile, Name: "Aria", Gender: "female", Language: "en", Active: true},
			},
		},
		Translation: &mock.Translator{},
		Speech:      speech,
		Fetcher: &mock.Fetcher{Audio: map[string][]byte{
			"/media/h1.mp3":      []byte("hist"),
			"/media/preview.mp3": []byte("prev"),
		}},
		Player: player,
	}
	return p, speech, player
}

func TestNew_LoadsCatalogAndHistory(t *testing.T) {
	providers, _, _ := testProviders()

	a, err := New(t.Context(), testConfig(), providers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := len(a.Catalog().Visible()); got != 1 {
		t.Errorf("visible voices = %d, want 1", got)
	}
	if got := a.History().Len(); got != 1 {
		t.Errorf("history len = %d, want 1", got)
	}
}

func TestNew_CatalogLoadFailureIsFatal(t *testing.T) {
	providers, _, _ := testProviders()
	providers.Catalog = &mock.Catalog{ProfilesErr: errors.New("backend down")}

	if _, err := New(t.Context(), testConfig(), providers); err == nil {
		t.Fatal("expected error when catalog cannot load")
	}
}

func TestNew_HistoryLoadFailureIsNotFatal(t *testing.T) {
	providers, speech, _ := testProviders()
	speech.HistoryErr = errors.New("history down")

	a, err := New(t.Context(), testConfig(), providers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.History().Len() != 0 {
		t.Errorf("history len = %d, want 0", a.History().Len())
	}
}

func TestApp_PlaysHistoryEntry(t *testing.T) {
	providers, _, player := testProviders()

	a, err := New(t.Context(), testConfig(), providers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := playback.Key{Slot: playback.SlotHistory, ID: "h1"}
	if err := a.Playback().Toggle(t.Context(), key); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	if len(player.PlayCalls) != 1 {
		t.Fatalf("play calls = %d, want 1", len(player.PlayCalls))
	}
	if got := string(player.PlayCalls[0].Data); got != "hist" {
		t.Errorf("played %q, want %q", got, "hist")
	}
}

func TestApp_PlaysPreviewOnDemand(t *testing.T) {
	providers, speech, player := testProviders()

	a, err := New(t.Context(), testConfig(), providers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := playback.Key{Slot: playback.SlotPreview, ID: "v1"}
	if err := a.Playback().Toggle(t.Context(), key); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	if len(speech.GenerateCalls) != 1 {
		t.Fatalf("generate calls = %d, want 1", len(speech.GenerateCalls))
	}
	if !speech.GenerateCalls[0].Preview {
		t.Error("preview flag not set on generation request")
	}
	if len(player.PlayCalls) != 1 {
		t.Fatalf("play calls = %d, want 1", len(player.PlayCalls))
	}
	if got := string(player.PlayCalls[0].Data); got != "prev" {
		t.Errorf("played %q, want %q", got, "prev")
	}
}

func TestApp_PlayUnknownHistoryEntry(t *testing.T) {
	providers, _, _ := testProviders()

	a, err := New(t.Context(), testConfig(), providers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := playback.Key{Slot: playback.SlotHistory, ID: "missing"}
	if err := a.Playback().Toggle(t.Context(), key); err == nil {
		t.Fatal("expected error for unknown history entry")
	}
}

func TestApp_DownloadHistoryEntry(t *testing.T) {
	providers, _, _ := testProviders()

	a, err := New(t.Context(), testConfig(), providers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := a.Download(t.Context(), "h1", &buf); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if buf.String() != "hist" {
		t.Errorf("downloaded %q, want %q", buf.String(), "hist")
	}

	if err := a.Download(t.Context(), "missing", &buf); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("missing entry error = %v, want ErrNotFound", err)
	}
}

func TestApp_ShutdownIsIdempotent(t *testing.T) {
	providers, _, _ := testProviders()

	a, err := New(t.Context(), testConfig(), providers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
	if err := a.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}
