package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"

	"voice-calendar-go/internal/ingest"
	"voice-calendar-go/internal/logger"
)

// Whisper implements Transcriber using the OpenAI transcription API.
type Whisper struct {
	client oai.Client
	model  string
	log    *logger.Logger
}

func NewWhisper(client oai.Client, model string) *Whisper {
	return &Whisper{client: client, model: model, log: logger.New()}
}

// Transcribe uploads the decoded WAV and returns the top hypothesis.
func (w *Whisper) Transcribe(ctx context.Context, audio *ingest.DecodedAudio, languageHint string) (Transcript, error) {
	f, err := os.Open(audio.WAVPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: open decoded audio: %v", ErrServiceUnavailable, err)
	}
	defer f.Close()

	params := oai.AudioTranscriptionNewParams{
		File:  f,
		Model: oai.AudioModel(w.model),
	}
	if languageHint != "" {
		params.Language = param.NewOpt(languageHint)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Transcript{}, ErrUnintelligible
	}

	w.log.WithField("module", "transcribe").
		WithField("chars", len(text)).
		Debug("transcription completed")
	return Transcript{Text: text, Language: languageHint}, nil
}
