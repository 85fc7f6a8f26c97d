package restapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sajina/voicecloneai/pkg/provider"
	"github.com/sajina/voicecloneai/pkg/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithToken("test-token"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty baseURL")
	}
}

func TestProfile(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != profileEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"email": "a@b.c", "credits": 120})
	}))

	p, err := c.Profile(t.Context())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Email != "a@b.c" || p.Credits != 120 {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestProfilesAcceptsBothEnvelopes(t *testing.T) {
	bare := `[{"id": 1, "name": "Aria", "language": "en", "is_premium": true}]`
	paginated := `{"count": 1, "results": [{"id": 1, "name": "Aria", "language": "en", "is_premium": true}]}`

	for name, body := range map[string]string{"bare array": bare, "paginated": paginated} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			}))

			voices, err := c.Profiles(t.Context())
			if err != nil {
				t.Fatalf("Profiles: %v", err)
			}
			if len(voices) != 1 {
				t.Fatalf("expected 1 voice, got %d", len(voices))
			}
			v := voices[0]
			if v.ID != "1" || v.Name != "Aria" || v.Kind != types.KindProfile || !v.Premium {
				t.Errorf("unexpected voice: %+v", v)
			}
			if !v.Active {
				t.Error("voice without is_active flag should be active")
			}
		})
	}
}

func TestClonesCarryStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": 7, "name": "Me", "status": "processing", "is_active": true}]`)
	}))

	clones, err := c.Clones(t.Context())
	if err != nil {
		t.Fatalf("Clones: %v", err)
	}
	if clones[0].Kind != types.KindClone || clones[0].Status != types.CloneStatusProcessing {
		t.Errorf("unexpected clone: %+v", clones[0])
	}
}

func TestGenerate(t *testing.T) {
	t.Run("routes profile and clone ids", func(t *testing.T) {
		var got generateRequest
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode request: %v", err)
			}
			io.WriteString(w, `{"id": 42, "input_text": "hi", "audio_file": "/media/42.mp3", "credits_used": 5, "balance_after": 95}`)
		}))

		req := types.GenerationRequest{
			Text:  "hi",
			Voice: types.VoiceIdentity{ID: "3", Kind: types.KindClone},
		}
		result, err := c.Generate(t.Context(), req)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if got.VoiceCloneID != "3" || got.VoiceProfileID != "" {
			t.Errorf("wrong id routing: %+v", got)
		}
		if result.ID != "42" || result.CreditsUsed != 5 || result.BalanceAfter != 95 {
			t.Errorf("unexpected result: %+v", result)
		}
		if result.Voice.ID != "3" {
			t.Errorf("voice not carried through: %+v", result.Voice)
		}
	})

	t.Run("marks preview requests", func(t *testing.T) {
		var got generateRequest
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got)
			io.WriteString(w, `{"input_text": "hi", "audio_file": "/media/tmp.mp3"}`)
		}))

		req := types.GenerationRequest{
			Text:    "hi",
			Voice:   types.VoiceIdentity{ID: "1", Kind: types.KindProfile},
			Preview: true,
		}
		result, err := c.Generate(t.Context(), req)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !got.IsPreview {
			t.Error("is_preview not set")
		}
		if result.Saved() {
			t.Error("preview result must not be saved")
		}
	})

	t.Run("rejects empty voice", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		if _, err := c.Generate(t.Context(), types.GenerationRequest{Text: "hi"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("surfaces backend error detail", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error": "insufficient credits"}`)
		}))

		_, err := c.Generate(t.Context(), types.GenerationRequest{
			Text:  "hi",
			Voice: types.VoiceIdentity{ID: "1"},
		})
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("expected StatusError, got %v", err)
		}
		if se.Code != http.StatusBadRequest || se.Detail != "insufficient credits" {
			t.Errorf("unexpected status error: %+v", se)
		}
	})
}

func TestTranslate(t *testing.T) {
	t.Run("clean success", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req translateRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.SourceLanguage != "auto" || req.TargetLanguage != "ta" {
				t.Errorf("unexpected request: %+v", req)
			}
			io.WriteString(w, `{"translated_text": "வணக்கம்", "source_language": "en", "target_language": "ta"}`)
		}))

		out, err := c.Translate(t.Context(), "hello", "auto", "ta")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if out.Text != "வணக்கம்" || out.SourceLanguage != "en" || out.Warning != "" {
			t.Errorf("unexpected outcome: %+v", out)
		}
	})

	// A degraded translation comes back as HTTP 200 with the notice in the
	// "error" field, not as a non-2xx status.
	t.Run("degraded translation surfaces warning", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"translated_text": "வணக்கம்", "source_language": "en", "target_language": "ta", "error": "Translation failed"}`)
		}))

		out, err := c.Translate(t.Context(), "hello", "auto", "ta")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if out.Text != "வணக்கம்" {
			t.Errorf("text = %q", out.Text)
		}
		if out.Warning != "Translation failed" {
			t.Errorf("warning = %q, want the backend notice", out.Warning)
		}
	})

	t.Run("warning field fallback", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"translated_text": "hola", "source_language": "en", "target_language": "es", "warning": "low confidence"}`)
		}))

		out, err := c.Translate(t.Context(), "hello", "auto", "es")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if out.Warning != "low confidence" {
			t.Errorf("warning = %q, want %q", out.Warning, "low confidence")
		}
	})
}

func TestHistory(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"results": [
			{"id": 2, "input_text": "later", "voice_clone": {"id": 9, "name": "Me"}},
			{"id": 1, "input_text": "earlier", "voice_profile": {"id": 4, "name": "Aria"}}
		]}`)
	}))

	items, err := c.History(t.Context())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "2" || items[0].Voice.Kind != types.KindClone {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].Voice.Kind != types.KindProfile || items[1].Voice.Name != "Aria" {
		t.Errorf("unexpected second item: %+v", items[1])
	}
}

func TestDeleteHistory(t *testing.T) {
	t.Run("deletes by id", func(t *testing.T) {
		var gotPath, gotMethod string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath, gotMethod = r.URL.Path, r.Method
			w.WriteHeader(http.StatusNoContent)
		}))

		if err := c.DeleteHistory(t.Context(), "42"); err != nil {
			t.Fatalf("DeleteHistory: %v", err)
		}
		if gotMethod != http.MethodDelete || gotPath != historyEndpoint+"42/" {
			t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
		}
	})

	t.Run("missing entry yields ErrNotFound", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		if err := c.DeleteHistory(t.Context(), "42"); !errors.Is(err, provider.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestFetch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/42.mp3" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("mp3-bytes"))
	}))

	t.Run("resolves relative refs", func(t *testing.T) {
		rc, err := c.Fetch(t.Context(), "/media/42.mp3")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		if string(data) != "mp3-bytes" {
			t.Errorf("unexpected audio: %q", data)
		}
	})

	t.Run("missing audio yields ErrNotFound", func(t *testing.T) {
		if _, err := c.Fetch(t.Context(), "/media/missing.mp3"); !errors.Is(err, provider.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
