// Package types defines the shared types used across all voicecloneai packages.
//
// These types form the lingua franca between the backend service clients, the
// studio orchestrator, the credit ledger, and the playback controller. They
// are intentionally minimal — each package defines its own domain types, but
// cross-cutting data structures live here to avoid circular imports.
package types

import "time"

// VoiceKind distinguishes the two catalogue families a voice can belong to.
type VoiceKind string

const (
	// KindProfile is a curated system voice maintained by the product team.
	KindProfile VoiceKind = "profile"

	// KindClone is a user-submitted voice that went through moderation.
	KindClone VoiceKind = "clone"
)

// IsValid reports whether k is a recognised voice kind.
func (k VoiceKind) IsValid() bool {
	return k == KindProfile || k == KindClone
}

// CloneStatus tracks a voice clone through its moderation pipeline.
type CloneStatus string

const (
	CloneStatusPending    CloneStatus = "pending"
	CloneStatusProcessing CloneStatus = "processing"
	CloneStatusReady      CloneStatus = "ready"
	CloneStatusFailed     CloneStatus = "failed"
)

// VoiceIdentity describes one synthesis target from the voice catalogue.
// Identities are created and mutated exclusively by the admin backend; this
// process treats them as read-only.
type VoiceIdentity struct {
	// ID is the backend-assigned identifier, stable for the voice's lifetime.
	ID string

	// Kind says whether this is a curated profile or a user clone.
	Kind VoiceKind

	// Name is the human-readable display name.
	Name string

	// Gender is "male" or "female" for profiles; may be empty for clones.
	Gender string

	// Emotion is the voice's emotion tag (neutral, happy, sad, angry,
	// excited, calm). Profiles only.
	Emotion string

	// Language is the ISO 639-1 code the voice speaks.
	Language string

	// SampleAudio references a pre-rendered audition clip. Empty when the
	// voice has no sample — preview then synthesises one on the fly.
	SampleAudio string

	// Active reports whether the backend currently offers this voice.
	Active bool

	// Premium marks profiles reserved for paying tiers.
	Premium bool

	// Status is the moderation state for clones; empty for profiles.
	Status CloneStatus
}

// Previewable reports whether the voice may be auditioned by the current
// user: profiles must be active, clones must be active and moderation-ready.
func (v VoiceIdentity) Previewable() bool {
	if !v.Active {
		return false
	}
	if v.Kind == KindClone {
		return v.Status == CloneStatusReady
	}
	return true
}

// GenerationRequest is the ephemeral unit of work sent to the speech service.
// One request is constructed per selected voice during fan-out; requests are
// never persisted client-side.
type GenerationRequest struct {
	// Text is the input to synthesise, at most 5000 code points.
	Text string

	// Voice references the synthesis target.
	Voice VoiceIdentity

	// Preview marks a zero-cost audition request. Preview results carry no
	// server id and must not enter the session history or touch the ledger.
	Preview bool
}

// GenerationResult is one synthesised-speech artifact as reported by the
// speech service. Owned by the session history once appended.
type GenerationResult struct {
	// ID is the server-assigned record id. Empty for previews, which the
	// backend does not persist.
	ID string

	// InputText is the (possibly translated) text that was synthesised.
	InputText string

	// AudioRef locates the produced audio (absolute URL or backend-relative
	// path).
	AudioRef string

	// DurationSeconds is the audio length reported by the backend.
	DurationSeconds float64

	// CreditsUsed is the amount charged for this unit. Zero for previews.
	CreditsUsed int64

	// BalanceAfter is the server-side balance snapshot taken after the
	// charge, when the backend reports one. Advisory only.
	BalanceAfter int64

	// Voice is the identity the audio was generated from.
	Voice VoiceIdentity

	// CreatedAt is when the result was received client-side. Used for
	// display, not for history ordering (insertion order wins).
	CreatedAt time.Time
}

// Saved reports whether the result has a server-side record that must be
// deleted remotely when the user removes it from the session history.
func (r GenerationResult) Saved() bool {
	return r.ID != ""
}

// TranslationOutcome is the transient result of one translation call.
// Superseded by each new call.
type TranslationOutcome struct {
	// SourceLanguage is the detected-or-declared source code, or the literal
	// "auto" sentinel when neither was available.
	SourceLanguage string

	// TargetLanguage is the requested target code.
	TargetLanguage string

	// Text is the translated text.
	Text string

	// Warning is a non-fatal notice returned alongside usable output
	// (e.g. "low confidence"). Empty when the service had nothing to say.
	Warning string
}

// Profile is the authenticated user's account snapshot from the auth service.
// Credits is the sole source of truth for the ledger's reconciliation.
type Profile struct {
	Email   string
	Credits int64
}
