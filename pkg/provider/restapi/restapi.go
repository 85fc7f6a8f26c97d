// Package restapi implements the provider interfaces against the voice
// backend's HTTP API.
//
// All endpoints live under a single base URL and authenticate with a bearer
// token. List endpoints may return either a paginated envelope ({"results":
// [...]}) or a bare JSON array; both shapes are accepted.
//
// Typical usage:
//
//	c, err := restapi.New("https://api.example.com",
//	    restapi.WithToken(token),
//	    restapi.WithTimeout(20*time.Second),
//	)
//	profile, err := c.Profile(ctx)
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sajina/voicecloneai/pkg/provider"
	"github.com/sajina/voicecloneai/pkg/types"
)

// Compile-time interface assertions.
var (
	_ provider.ProfileService     = (*Client)(nil)
	_ provider.CatalogService     = (*Client)(nil)
	_ provider.TranslationService = (*Client)(nil)
	_ provider.SpeechService      = (*Client)(nil)
	_ provider.AudioFetcher       = (*Client)(nil)
)

// ---- constants ----

const (
	defaultTimeout = 30 * time.Second

	profileEndpoint   = "/api/auth/profile/"
	profilesEndpoint  = "/api/voices/profiles/"
	clonesEndpoint    = "/api/voices/clones/"
	generateEndpoint  = "/api/voices/generate/"
	translateEndpoint = "/api/voices/translate/"
	historyEndpoint   = "/api/voices/history/"
)

// ---- options ----

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request. Without it the
// client issues unauthenticated requests, which the backend rejects for all
// account-scoped endpoints.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful for injecting
// transports with custom TLS or proxy settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// ---- Client ----

// Client talks to the voice backend over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a Client targeting the backend at baseURL
// (e.g. "https://api.example.com"). baseURL must be non-empty.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("restapi: baseURL must not be empty")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// StatusError is returned when the backend answers with a non-2xx status.
// The Detail field carries the backend's error message when one was provided.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("restapi: backend returned status %d", e.Code)
	}
	return fmt.Sprintf("restapi: backend returned status %d: %s", e.Code, e.Detail)
}

// ---- wire types ----

// voiceDTO is the backend's representation of both stock profiles and clones.
type voiceDTO struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	Gender      string      `json:"gender"`
	Emotion     string      `json:"emotion"`
	Language    string      `json:"language"`
	SampleAudio string      `json:"sample_audio"`
	IsActive    *bool       `json:"is_active"`
	IsPremium   bool        `json:"is_premium"`
	Status      string      `json:"status"`
}

func (d voiceDTO) identity(kind types.VoiceKind) types.VoiceIdentity {
	// Catalogue entries without an explicit is_active flag are live.
	active := d.IsActive == nil || *d.IsActive
	return types.VoiceIdentity{
		ID:          d.ID.String(),
		Kind:        kind,
		Name:        d.Name,
		Gender:      d.Gender,
		Emotion:     d.Emotion,
		Language:    d.Language,
		SampleAudio: d.SampleAudio,
		Active:      active,
		Premium:     d.IsPremium,
		Status:      types.CloneStatus(d.Status),
	}
}

// generateRequest is the JSON body for POST /api/voices/generate/.
type generateRequest struct {
	Text           string      `json:"text"`
	VoiceProfileID json.Number `json:"voice_profile_id,omitempty"`
	VoiceCloneID   json.Number `json:"voice_clone_id,omitempty"`
	IsPreview      bool        `json:"is_preview"`
}

// generationDTO is the backend's representation of one speech generation.
type generationDTO struct {
	ID              json.Number `json:"id"`
	InputText       string      `json:"input_text"`
	AudioFile       string      `json:"audio_file"`
	DurationSeconds float64     `json:"duration_seconds"`
	CreditsUsed     int64       `json:"credits_used"`
	BalanceAfter    int64       `json:"balance_after"`
	VoiceProfile    *voiceDTO   `json:"voice_profile"`
	VoiceClone      *voiceDTO   `json:"voice_clone"`
	CreatedAt       time.Time   `json:"created_at"`
}

func (d generationDTO) result() types.GenerationResult {
	r := types.GenerationResult{
		ID:              d.ID.String(),
		InputText:       d.InputText,
		AudioRef:        d.AudioFile,
		DurationSeconds: d.DurationSeconds,
		CreditsUsed:     d.CreditsUsed,
		BalanceAfter:    d.BalanceAfter,
		CreatedAt:       d.CreatedAt,
	}
	switch {
	case d.VoiceProfile != nil:
		r.Voice = d.VoiceProfile.identity(types.KindProfile)
	case d.VoiceClone != nil:
		r.Voice = d.VoiceClone.identity(types.KindClone)
	}
	return r
}

// translateRequest is the JSON body for POST /api/voices/translate/.
type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// translateResponse is the backend's translation result. A degraded but
// usable translation still arrives as HTTP 200 with the notice in the
// "error" field.
type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Error          string `json:"error"`
	Warning        string `json:"warning"`
}

// warning returns the degraded-translation notice regardless of which
// field the backend put it in.
func (r translateResponse) warning() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Warning
}

// profileDTO is the account profile returned by GET /api/auth/profile/.
type profileDTO struct {
	Email   string `json:"email"`
	Credits int64  `json:"credits"`
}

// ---- ProfileService ----

// Profile returns the account profile, including the server-side credit
// balance.
func (c *Client) Profile(ctx context.Context) (types.Profile, error) {
	var dto profileDTO
	if err := c.getJSON(ctx, profileEndpoint, &dto); err != nil {
		return types.Profile{}, err
	}
	return types.Profile{Email: dto.Email, Credits: dto.Credits}, nil
}

// ---- CatalogService ----

// Profiles returns the stock voice catalogue.
func (c *Client) Profiles(ctx context.Context) ([]types.VoiceIdentity, error) {
	return c.listVoices(ctx, profilesEndpoint, types.KindProfile)
}

// Clones returns the account's cloned voices in every training status.
func (c *Client) Clones(ctx context.Context) ([]types.VoiceIdentity, error) {
	return c.listVoices(ctx, clonesEndpoint, types.KindClone)
}

func (c *Client) listVoices(ctx context.Context, endpoint string, kind types.VoiceKind) ([]types.VoiceIdentity, error) {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	dtos, err := decodeList[voiceDTO](body)
	if err != nil {
		return nil, fmt.Errorf("restapi: decode %s response: %w", endpoint, err)
	}

	voices := make([]types.VoiceIdentity, 0, len(dtos))
	for _, d := range dtos {
		voices = append(voices, d.identity(kind))
	}
	return voices, nil
}

// ---- TranslationService ----

// Translate converts text into the target language via the backend.
func (c *Client) Translate(ctx context.Context, text, source, target string) (types.TranslationOutcome, error) {
	reqBody := translateRequest{
		Text:           text,
		SourceLanguage: source,
		TargetLanguage: target,
	}
	var resp translateResponse
	if err := c.postJSON(ctx, translateEndpoint, reqBody, &resp); err != nil {
		return types.TranslationOutcome{}, err
	}
	return types.TranslationOutcome{
		SourceLanguage: resp.SourceLanguage,
		TargetLanguage: resp.TargetLanguage,
		Text:           resp.TranslatedText,
		Warning:        resp.warning(),
	}, nil
}

// ---- SpeechService ----

// Generate synthesises speech for a single text/voice pair.
func (c *Client) Generate(ctx context.Context, req types.GenerationRequest) (types.GenerationResult, error) {
	if req.Voice.ID == "" {
		return types.GenerationResult{}, errors.New("restapi: generation request has no voice")
	}
	body := generateRequest{
		Text:      req.Text,
		IsPreview: req.Preview,
	}
	switch req.Voice.Kind {
	case types.KindClone:
		body.VoiceCloneID = json.Number(req.Voice.ID)
	default:
		body.VoiceProfileID = json.Number(req.Voice.ID)
	}

	var dto generationDTO
	if err := c.postJSON(ctx, generateEndpoint, body, &dto); err != nil {
		return types.GenerationResult{}, err
	}
	result := dto.result()
	if result.Voice.ID == "" {
		result.Voice = req.Voice
	}
	return result, nil
}

// History returns the saved generations, most recent first (backend order).
func (c *Client) History(ctx context.Context) ([]types.GenerationResult, error) {
	body, err := c.get(ctx, historyEndpoint)
	if err != nil {
		return nil, err
	}

	dtos, err := decodeList[generationDTO](body)
	if err != nil {
		return nil, fmt.Errorf("restapi: decode history response: %w", err)
	}

	results := make([]types.GenerationResult, 0, len(dtos))
	for _, d := range dtos {
		results = append(results, d.result())
	}
	return results, nil
}

// DeleteHistory removes one saved generation. Deleting an entry the backend
// no longer has returns provider.ErrNotFound.
func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+historyEndpoint+id+"/", nil)
	if err != nil {
		return fmt.Errorf("restapi: create delete-history request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("restapi: DELETE %s: %w", historyEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return provider.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	return nil
}

// ---- AudioFetcher ----

// Fetch opens the audio stream behind ref. Relative refs are resolved against
// the backend base URL. The caller must close the returned reader.
func (c *Client) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if ref == "" {
		return nil, errors.New("restapi: audio ref must not be empty")
	}
	u := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		u = c.baseURL + "/" + strings.TrimLeft(ref, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("restapi: create audio request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("restapi: GET audio: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, provider.ErrNotFound
		}
		return nil, statusError(resp)
	}
	return resp.Body, nil
}

// ---- helpers ----

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
}

// get performs a GET and returns the raw response body for a 2xx status.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("restapi: create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("restapi: GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("restapi: read %s response: %w", endpoint, err)
	}
	return body, nil
}

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("restapi: decode %s response: %w", endpoint, err)
	}
	return nil
}

// postJSON performs a POST with a JSON body and decodes the JSON response
// into out.
func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("restapi: marshal %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("restapi: create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("restapi: POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("restapi: decode %s response: %w", endpoint, err)
	}
	return nil
}

// statusError builds a StatusError from a non-2xx response, extracting the
// backend's "error" or "detail" message when the body is JSON.
func statusError(resp *http.Response) error {
	e := &StatusError{Code: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var payload struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Error != "" {
				e.Detail = payload.Error
			} else {
				e.Detail = payload.Detail
			}
		}
	}
	return e
}

// decodeList decodes a list endpoint body that is either a paginated envelope
// ({"results": [...]}) or a bare JSON array.
func decodeList[T any](body []byte) ([]T, error) {
	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Results != nil {
		return envelope.Results, nil
	}

	var bare []T
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}
