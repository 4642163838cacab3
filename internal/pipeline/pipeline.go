// Package pipeline sequences one voice message through gate, ingestion,
// transcription, extraction and calendar write, and maps every terminal
// outcome to exactly one user-facing reply. Each message is an independent
// run; nothing is retained between runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voice-calendar-go/internal/calendar"
	"voice-calendar-go/internal/event"
	"voice-calendar-go/internal/extract"
	"voice-calendar-go/internal/gate"
	"voice-calendar-go/internal/ingest"
	"voice-calendar-go/internal/logger"
	"voice-calendar-go/internal/transcribe"
)

// ErrGateClosed marks a message received outside the active window. No
// resource is allocated for such a message.
var ErrGateClosed = errors.New("outside active hours")

// Stage timeouts. The external services define no bound of their own, so
// each network-dependent stage gets an explicit one.
const (
	ingestTimeout     = 30 * time.Second
	transcribeTimeout = 60 * time.Second
	extractTimeout    = 30 * time.Second
	writeTimeout      = 30 * time.Second
)

// Message is one inbound voice message. Read-only; discarded after the run.
type Message struct {
	UserID        int64
	ChatID        int64
	AttachmentRef string
	ReceivedAt    time.Time
}

// Result carries the single user-facing reply for a finished run and the
// underlying error, nil on success.
type Result struct {
	Reply string
	Err   error
}

// Ingestor is the slice of ingest.Ingestor the pipeline needs; an interface
// so tests can fail any stage deterministically.
type Ingestor interface {
	Ingest(ctx context.Context, ref string) (*ingest.DecodedAudio, error)
}

type Pipeline struct {
	window       gate.Window
	ingestor     Ingestor
	transcriber  transcribe.Transcriber
	extractor    extract.Extractor
	writer       calendar.Writer
	languageHint string
	log          *logger.Logger
}

func New(window gate.Window, ing Ingestor, tr transcribe.Transcriber, ex extract.Extractor, w calendar.Writer, languageHint string) *Pipeline {
	return &Pipeline{
		window:       window,
		ingestor:     ing,
		transcriber:  tr,
		extractor:    ex,
		writer:       w,
		languageHint: languageHint,
		log:          logger.New(),
	}
}

// Handle runs the full pipeline for one message. Every failure is converted
// into a Result; no failure may disturb the handling of other messages.
func (p *Pipeline) Handle(ctx context.Context, msg Message) Result {
	log := p.log.WithRun(msg.ChatID, msg.UserID)

	now := time.Now().In(p.window.Loc)
	if !p.window.IsActive(now) {
		log.WithField("hour", now.Hour()).Info("gate closed")
		return p.fail(ErrGateClosed)
	}

	ictx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()
	audio, err := p.ingestor.Ingest(ictx, msg.AttachmentRef)
	if err != nil {
		log.WithField("error", err.Error()).Warn("ingest failed")
		return p.fail(err)
	}
	defer audio.Close()

	tctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()
	transcript, err := p.transcriber.Transcribe(tctx, audio, p.languageHint)
	if err != nil {
		log.WithField("error", err.Error()).Warn("transcription failed")
		return p.fail(err)
	}
	log.WithField("transcript_chars", len(transcript.Text)).Debug("transcribed")

	ectx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()
	cand, err := p.extractor.Extract(ectx, transcript.Text, now)
	if err != nil {
		log.WithField("error", err.Error()).Info("extraction failed")
		return p.fail(err)
	}

	if err := cand.Validate(now); err != nil {
		log.WithField("error", err.Error()).Info("candidate rejected")
		return p.fail(err)
	}

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if _, err := p.writer.Write(wctx, *cand); err != nil {
		log.WithField("error", err.Error()).Error("calendar write failed")
		return p.fail(err)
	}

	log.WithField("start", cand.Start.Format(time.RFC3339)).Info("event written")
	return Result{Reply: successReply(*cand)}
}

func (p *Pipeline) fail(err error) Result {
	return Result{Reply: p.replyFor(err), Err: err}
}

// replyFor maps every failure kind onto its one user-facing message, so the
// user knows which stage to retry.
func (p *Pipeline) replyFor(err error) string {
	switch {
	case errors.Is(err, ErrGateClosed):
		return fmt.Sprintf("⏰ Зараз неробочий час. Надішліть повідомлення з %02d:00 до %02d:00.",
			p.window.StartHour, p.window.EndHour)
	case errors.Is(err, ingest.ErrDownload):
		return "⚠️ Не вдалося завантажити голосове повідомлення. Спробуйте надіслати його ще раз."
	case errors.Is(err, ingest.ErrDecode):
		return "⚠️ Не вдалося обробити аудіоформат повідомлення."
	case errors.Is(err, transcribe.ErrUnintelligible):
		return "🎙️ На жаль, не вдалося розібрати слова. Спробуйте сказати чіткіше."
	case errors.Is(err, transcribe.ErrServiceUnavailable):
		return "⚠️ Сервіс розпізнавання мовлення тимчасово недоступний. Спробуйте пізніше."
	case errors.Is(err, extract.ErrNoEvent):
		return "🤷 Я не знайшов дати чи часу в повідомленні. Скажіть, наприклад: «зустріч завтра о 14:30»."
	case errors.Is(err, event.ErrPastStart):
		return "⏳ Ця дата вже минула. Назвіть, будь ласка, майбутній час."
	case errors.Is(err, extract.ErrMalformedResponse):
		return "⚠️ Не вдалося визначити дату й час події. Спробуйте сформулювати інакше."
	case errors.Is(err, calendar.ErrAuth):
		return "🔒 Немає доступу до календаря. Перевірте налаштування бота."
	case errors.Is(err, calendar.ErrAPI):
		return "⚠️ Не вдалося зберегти подію в календарі. Спробуйте пізніше."
	default:
		return "⚠️ Сталася помилка під час обробки повідомлення. Спробуйте ще раз."
	}
}

func successReply(cand event.Candidate) string {
	return fmt.Sprintf("✅ Додав подію «%s» на %s.",
		cand.Summary, cand.Start.Format("02.01.2006 о 15:04"))
}
