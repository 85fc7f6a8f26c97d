// Package app wires all voicecloneai subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves the operational HTTP endpoints until the context is
// cancelled, and Shutdown tears everything down in order.
//
// For testing, inject mock implementations via the Providers struct. When a
// slot is nil, New creates the real implementation from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sajina/voicecloneai/internal/catalog"
	"github.com/sajina/voicecloneai/internal/config"
	"github.com/sajina/voicecloneai/internal/credit"
	"github.com/sajina/voicecloneai/internal/health"
	"github.com/sajina/voicecloneai/internal/langdetect"
	"github.com/sajina/voicecloneai/internal/observe"
	"github.com/sajina/voicecloneai/internal/playback"
	"github.com/sajina/voicecloneai/internal/studio"
	"github.com/sajina/voicecloneai/internal/translate"
	"github.com/sajina/voicecloneai/pkg/audio"
	audiobeep "github.com/sajina/voicecloneai/pkg/audio/beep"
	"github.com/sajina/voicecloneai/pkg/provider"
	"github.com/sajina/voicecloneai/pkg/provider/restapi"
)

// Providers holds one interface value per backend slot. Nil slots are filled
// from the config by New; tests populate them with mocks.
type Providers struct {
	Profile     provider.ProfileService
	Catalog     provider.CatalogService
	Translation provider.TranslationService
	Speech      provider.SpeechService
	Fetcher     provider.AudioFetcher
	Player      audio.Player
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers
	log       *slog.Logger
	metrics   *observe.Metrics

	// Subsystems, initialised in New.
	ledger   *credit.Ledger
	catalog  *catalog.Catalog
	detector *langdetect.Debounced
	pipeline *translate.Pipeline
	history  *studio.History
	studio   *studio.Orchestrator
	playback *playback.Controller

	srv *http.Server

	// closers are called in order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New.
type Option func(*App)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithMetrics sets the metrics set. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. Nil slots in
// providers are filled with the REST client and local speaker output built
// from cfg.
//
// New performs the initial catalog and history load synchronously so the
// application starts with a populated voice list.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil {
		providers = &Providers{}
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	if err := a.initProviders(); err != nil {
		return nil, fmt.Errorf("app: init providers: %w", err)
	}
	a.initSubsystems()

	if err := a.catalog.Load(ctx); err != nil {
		return nil, fmt.Errorf("app: load voice catalog: %w", err)
	}
	if err := a.history.Load(ctx); err != nil {
		// A history load failure is not fatal; generation still works.
		a.log.Warn("history load failed", "err", err)
	}

	a.initServer()
	return a, nil
}

// initProviders fills nil provider slots from the config.
func (a *App) initProviders() error {
	p := a.providers

	needsClient := p.Profile == nil || p.Catalog == nil || p.Translation == nil ||
		p.Speech == nil || p.Fetcher == nil

	if needsClient {
		clientOpts := []restapi.Option{restapi.WithToken(a.cfg.Backend.Token)}
		if a.cfg.Backend.Timeout > 0 {
			clientOpts = append(clientOpts, restapi.WithTimeout(a.cfg.Backend.Timeout))
		}
		client, err := restapi.New(a.cfg.Backend.BaseURL, clientOpts...)
		if err != nil {
			return err
		}
		if p.Profile == nil {
			p.Profile = client
		}
		if p.Catalog == nil {
			p.Catalog = client
		}
		if p.Translation == nil {
			p.Translation = client
		}
		if p.Speech == nil {
			p.Speech = client
		}
		if p.Fetcher == nil {
			p.Fetcher = client
		}
	}

	if p.Player == nil {
		p.Player = audiobeep.New(audiobeep.WithVolume(a.cfg.Playback.VolumeDB))
	}
	return nil
}

// initSubsystems builds the domain layer on top of the providers.
func (a *App) initSubsystems() {
	p := a.providers

	ledgerOpts := []credit.Option{
		credit.WithLogger(a.log),
		credit.WithMetrics(a.metrics),
	}
	if a.cfg.Tariff.CreditsPerUnit > 0 {
		ledgerOpts = append(ledgerOpts, credit.WithCostPerUnit(int64(a.cfg.Tariff.CreditsPerUnit)))
	}
	a.ledger = credit.NewLedger(p.Profile, ledgerOpts...)

	a.catalog = catalog.New(p.Catalog)

	detOpts := []langdetect.Option{langdetect.WithMetrics(a.metrics)}
	if a.cfg.Detection.MinSample > 0 {
		detOpts = append(detOpts, langdetect.WithMinSample(a.cfg.Detection.MinSample))
	}
	delay := a.cfg.Detection.Debounce
	if delay <= 0 {
		delay = langdetect.DefaultDelay
	}
	a.detector = langdetect.NewDebounced(langdetect.NewDetector(detOpts...), delay, nil)

	a.pipeline = translate.NewPipeline(p.Translation,
		translate.WithDetector(a.detector),
		translate.WithLogger(a.log),
		translate.WithMetrics(a.metrics),
	)

	a.history = studio.NewHistory(p.Speech)

	studioOpts := []studio.Option{
		studio.WithTranslation(a.pipeline),
		studio.WithLogger(a.log),
		studio.WithMetrics(a.metrics),
	}
	if a.cfg.Backend.MaxParallel > 0 {
		studioOpts = append(studioOpts, studio.WithMaxParallel(a.cfg.Backend.MaxParallel))
	}
	if a.cfg.Tariff.MaxTextLen > 0 {
		studioOpts = append(studioOpts, studio.WithMaxTextLen(a.cfg.Tariff.MaxTextLen))
	}
	a.studio = studio.New(p.Speech, a.catalog, a.ledger, a.history, studioOpts...)

	a.playback = playback.New(a.resolveClip, p.Fetcher, p.Player,
		playback.WithLogger(a.log),
		playback.WithMetrics(a.metrics),
	)
	a.closers = append(a.closers, func() error {
		a.playback.Stop()
		return nil
	})
}

// resolveClip maps playback keys to audio references. History keys resolve
// from the loaded session; preview keys generate the sample clip on demand.
func (a *App) resolveClip(ctx context.Context, key playback.Key) (string, error) {
	switch key.Slot {
	case playback.SlotHistory:
		item, ok := a.history.ByID(key.ID)
		if !ok {
			return "", fmt.Errorf("history entry %q: %w", key.ID, provider.ErrNotFound)
		}
		return item.AudioRef, nil

	case playback.SlotPreview:
		voice, ok := a.catalog.ByID(key.ID)
		if !ok {
			return "", fmt.Errorf("voice %q: %w", key.ID, provider.ErrNotFound)
		}
		result, err := a.studio.Preview(ctx, voice)
		if err != nil {
			return "", err
		}
		return result.AudioRef, nil

	default:
		return "", fmt.Errorf("unknown playback slot %q", key.Slot)
	}
}

// Download copies the audio of a history entry to w.
func (a *App) Download(ctx context.Context, id string, w io.Writer) error {
	item, ok := a.history.ByID(id)
	if !ok {
		return fmt.Errorf("history entry %q: %w", id, provider.ErrNotFound)
	}
	rc, err := a.providers.Fetcher.Fetch(ctx, item.AudioRef)
	if err != nil {
		return fmt.Errorf("fetch %q: %w", item.AudioRef, err)
	}
	defer rc.Close()
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("copy audio: %w", err)
	}
	return nil
}

// initServer builds the operational HTTP server (metrics and health probes).
func (a *App) initServer() {
	if a.cfg.Server.ListenAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(health.Backend(a.providers.Profile)).Register(mux)

	a.srv = &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           observe.Middleware(a.metrics)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ---- accessors ----

// Studio returns the batch generation orchestrator.
func (a *App) Studio() *studio.Orchestrator { return a.studio }

// Catalog returns the voice catalog.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Ledger returns the credit ledger.
func (a *App) Ledger() *credit.Ledger { return a.ledger }

// History returns the session history.
func (a *App) History() *studio.History { return a.history }

// Playback returns the playback controller.
func (a *App) Playback() *playback.Controller { return a.playback }

// Detector returns the debounced language detector fed by the text input.
func (a *App) Detector() *langdetect.Debounced { return a.detector }

// ---- Run ----

// Run refreshes the credit balance, starts the operational HTTP server when
// one is configured, and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.ledger.Reconcile(ctx); err != nil {
		a.log.Warn("initial balance fetch failed", "err", err)
	} else {
		a.log.Info("credit balance loaded", "credits", a.ledger.Balance())
	}

	errCh := make(chan error, 1)
	if a.srv != nil {
		go func() {
			a.log.Info("operational server listening", "addr", a.srv.Addr)
			var err error
			if tls := a.cfg.Server.TLS; tls != nil {
				err = a.srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
			} else {
				err = a.srv.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("app: serve: %w", err)
	}
}

// ---- Shutdown ----

// Shutdown tears down all subsystems in reverse-init order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		a.log.Info("shutting down", "closers", len(a.closers))

		if a.srv != nil {
			if err := a.srv.Shutdown(ctx); err != nil {
				a.log.Warn("server shutdown error", "err", err)
			}
		}

		a.detector.Reset()

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				a.log.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				a.log.Warn("closer error", "index", i, "err", err)
			}
		}

		a.log.Info("shutdown complete")
	})
	return shutdownErr
}
