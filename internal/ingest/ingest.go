// Package ingest fetches a voice attachment and materializes it as a decoded
// WAV artifact with guaranteed cleanup. Temp files are uuid-named so
// concurrent pipeline runs never collide.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"voice-calendar-go/internal/audioconv"
	"voice-calendar-go/internal/logger"
)

var (
	// ErrDownload marks an attachment that could not be fetched from the
	// messaging backend.
	ErrDownload = errors.New("attachment download failed")

	// ErrDecode marks an attachment whose container could not be decoded.
	ErrDecode = errors.New("attachment decode failed")
)

// AttachmentFetcher retrieves the raw bytes of a voice attachment by its
// backend reference.
type AttachmentFetcher interface {
	FetchAttachment(ctx context.Context, ref string) ([]byte, error)
}

// DecodedAudio is a scoped resource owning the per-run temp artifacts.
// Close must be called on every exit path; it is safe to call twice.
type DecodedAudio struct {
	// WAVPath is the decoded mono 16 kHz WAV ready for transcription.
	WAVPath string

	rawPath string
	once    sync.Once
	err     error
}

// Close removes the temp artifacts.
func (d *DecodedAudio) Close() error {
	d.once.Do(func() {
		if err := removeIfSet(d.WAVPath); err != nil {
			d.err = err
		}
		if err := removeIfSet(d.rawPath); err != nil && d.err == nil {
			d.err = err
		}
	})
	return d.err
}

func removeIfSet(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

type Ingestor struct {
	fetcher AttachmentFetcher
	dir     string
	decode  func(src, dst string) error
	log     *logger.Logger
}

func New(fetcher AttachmentFetcher) *Ingestor {
	return &Ingestor{
		fetcher: fetcher,
		dir:     os.TempDir(),
		decode:  audioconv.DecodeToWAV16k,
		log:     logger.New(),
	}
}

// Ingest downloads the attachment, writes it to a uniquely-named temp file
// and decodes it to WAV. On any failure the artifacts created so far are
// removed before the error is returned.
func (in *Ingestor) Ingest(ctx context.Context, ref string) (*DecodedAudio, error) {
	log := in.log.WithField("module", "ingest")

	raw, err := in.fetcher.FetchAttachment(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	id := uuid.New().String()
	rawPath := filepath.Join(in.dir, "voicecal-"+id+".oga")
	wavPath := filepath.Join(in.dir, "voicecal-"+id+".wav")

	if err := os.WriteFile(rawPath, raw, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write temp file: %v", ErrDownload, err)
	}

	if err := in.decode(rawPath, wavPath); err != nil {
		_ = os.Remove(rawPath)
		_ = os.Remove(wavPath)
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	log.WithField("wav_path", wavPath).Debug("attachment decoded")
	return &DecodedAudio{WAVPath: wavPath, rawPath: rawPath}, nil
}
