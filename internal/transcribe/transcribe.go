// Package transcribe converts decoded audio into text via an external
// speech-recognition service.
package transcribe

import (
	"context"
	"errors"

	"voice-calendar-go/internal/ingest"
)

var (
	// ErrUnintelligible means the engine produced no hypothesis at all.
	// Distinct from ErrServiceUnavailable so the user gets told to speak
	// more clearly rather than to try again later.
	ErrUnintelligible = errors.New("no speech recognized in audio")

	// ErrServiceUnavailable covers transport, auth and quota failures.
	ErrServiceUnavailable = errors.New("speech recognition service unavailable")
)

// Transcript is the immutable recognition result.
type Transcript struct {
	Text     string
	Language string
}

// Transcriber turns decoded audio plus a language hint into a transcript.
// The hint is forwarded verbatim; implementations must accept any value.
type Transcriber interface {
	Transcribe(ctx context.Context, audio *ingest.DecodedAudio, languageHint string) (Transcript, error)
}
