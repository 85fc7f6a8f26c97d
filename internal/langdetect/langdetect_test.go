package langdetect

import (
	"sync"
	"testing"
	"time"
)

func TestDetect(t *testing.T) {
	d := NewDetector()

	t.Run("detects english", func(t *testing.T) {
		guess, ok := d.Detect("The quick brown fox jumps over the lazy dog near the river bank.")
		if !ok {
			t.Fatal("expected a detection")
		}
		if guess.Language != "en" {
			t.Errorf("language = %q, want en", guess.Language)
		}
	})

	t.Run("detects non-latin scripts", func(t *testing.T) {
		guess, ok := d.Detect("Это довольно длинное предложение на русском языке для проверки.")
		if !ok {
			t.Fatal("expected a detection")
		}
		if guess.Language != "ru" {
			t.Errorf("language = %q, want ru", guess.Language)
		}
	})

	t.Run("short samples are skipped", func(t *testing.T) {
		if _, ok := d.Detect("hi there"); ok {
			t.Error("expected no detection for a short sample")
		}
	})

	t.Run("whitespace does not count toward the minimum", func(t *testing.T) {
		if _, ok := d.Detect("   hello   \n\t "); ok {
			t.Error("expected no detection for padded short sample")
		}
	})

	t.Run("custom minimum sample", func(t *testing.T) {
		strict := NewDetector(WithMinSample(100))
		if _, ok := strict.Detect("This sentence is long enough for the default but not for strict."); ok {
			t.Error("expected no detection below the custom minimum")
		}
	})
}

func TestDebouncedCoalescesUpdates(t *testing.T) {
	var (
		mu      sync.Mutex
		results []Guess
	)
	db := NewDebounced(NewDetector(), 30*time.Millisecond, func(g Guess, ok bool) {
		if !ok {
			return
		}
		mu.Lock()
		results = append(results, g)
		mu.Unlock()
	})

	// Simulate typing: rapid updates, each within the debounce window.
	db.Observe("Ceci est une")
	time.Sleep(5 * time.Millisecond)
	db.Observe("Ceci est une phrase en")
	time.Sleep(5 * time.Millisecond)
	db.Observe("Ceci est une phrase en français pour tester la détection.")

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 detection, got %d", len(results))
	}
	if results[0].Language != "fr" {
		t.Errorf("language = %q, want fr", results[0].Language)
	}
}

func TestDebouncedEmitsNegativeOutcome(t *testing.T) {
	type outcome struct {
		guess Guess
		ok    bool
	}
	ch := make(chan outcome, 1)
	db := NewDebounced(NewDetector(), 10*time.Millisecond, func(g Guess, ok bool) {
		ch <- outcome{g, ok}
	})

	db.Observe("short")

	select {
	case o := <-ch:
		if o.ok {
			t.Errorf("expected negative outcome, got %+v", o.guess)
		}
	case <-time.After(time.Second):
		t.Fatal("no outcome delivered")
	}
}

func TestDebouncedCancel(t *testing.T) {
	fired := make(chan struct{}, 1)
	db := NewDebounced(NewDetector(), 10*time.Millisecond, func(Guess, bool) {
		fired <- struct{}{}
	})

	db.Observe("The quick brown fox jumps over the lazy dog near the bank.")
	db.Reset()

	select {
	case <-fired:
		t.Fatal("cancelled detection must not emit")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncedLatestWins(t *testing.T) {
	var (
		mu   sync.Mutex
		last Guess
		seen int
	)
	db := NewDebounced(NewDetector(), 10*time.Millisecond, func(g Guess, ok bool) {
		if !ok {
			return
		}
		mu.Lock()
		last = g
		seen++
		mu.Unlock()
	})

	db.Observe("Dies ist ein ziemlich langer deutscher Satz zum Testen der Erkennung.")
	// Let the first detection land, then immediately replace the text.
	time.Sleep(50 * time.Millisecond)
	db.Observe("Questa è una frase italiana abbastanza lunga per il rilevamento.")
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if seen != 2 {
		t.Fatalf("expected 2 detections, got %d", seen)
	}
	if last.Language != "it" {
		t.Errorf("final language = %q, want it", last.Language)
	}

	if latest, ok := db.Latest(); !ok || latest.Language != "it" {
		t.Errorf("Latest() = %+v, %v; want it, true", latest, ok)
	}
}
