// Package telegram is the messaging backend: it long-polls the Bot API for
// voice messages, resolves attachment bytes and delivers replies.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"voice-calendar-go/internal/calendar"
	"voice-calendar-go/internal/logger"
)

// upcomingLimit caps the /upcoming listing, matching the remote query size.
const upcomingLimit = 10

// VoiceMessage is one inbound voice note as seen by the frontend.
type VoiceMessage struct {
	UserID     int64
	ChatID     int64
	FileID     string
	ReceivedAt time.Time
}

type Bot struct {
	api    *tgbotapi.BotAPI
	lister calendar.Lister
	http   *http.Client
	log    *logger.Logger
}

// Connect performs the initial Bot API handshake, retried with exponential
// backoff. This is startup bootstrapping only; per-message calls are never
// retried.
func Connect(token string, lister calendar.Lister) (*Bot, error) {
	log := logger.New().WithField("module", "telegram")

	var api *tgbotapi.BotAPI
	op := func() error {
		a, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			log.WithField("error", err.Error()).Warn("telegram handshake failed, retrying")
			return err
		}
		api = a
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 60 * time.Second
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("telegram handshake: %w", err)
	}

	log.WithField("username", api.Self.UserName).Info("connected to telegram")
	return &Bot{
		api:    api,
		lister: lister,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    logger.New(),
	}, nil
}

// FetchAttachment implements ingest.AttachmentFetcher: it resolves the file
// reference to a download URL and fetches the raw bytes.
func (b *Bot) FetchAttachment(ctx context.Context, ref string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(ref)
	if err != nil {
		return nil, fmt.Errorf("resolve file %s: %w", ref, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download file %s: status %s", ref, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// SendReply delivers one text reply to the chat.
func (b *Bot) SendReply(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Run long-polls for updates until ctx is cancelled. Each voice message is
// handed to onVoice in its own goroutine so one slow external call never
// stalls unrelated messages.
func (b *Bot) Run(ctx context.Context, onVoice func(VoiceMessage)) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, upd, onVoice)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, upd tgbotapi.Update, onVoice func(VoiceMessage)) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}

	switch {
	case msg.Voice != nil:
		go onVoice(VoiceMessage{
			UserID:     msg.From.ID,
			ChatID:     msg.Chat.ID,
			FileID:     msg.Voice.FileID,
			ReceivedAt: msg.Time(),
		})
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	log := b.log.WithField("module", "telegram").WithField("command", msg.Command())

	switch msg.Command() {
	case "start":
		if err := b.SendReply(msg.Chat.ID, "👋 Привіт! Надішліть голосове повідомлення з датою та часом, і я додам подію у ваш календар."); err != nil {
			log.WithField("error", err.Error()).Warn("reply failed")
		}
	case "upcoming":
		cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		entries, err := b.lister.Upcoming(cctx, upcomingLimit)
		if err != nil {
			log.WithField("error", err.Error()).Warn("upcoming listing failed")
			_ = b.SendReply(msg.Chat.ID, "⚠️ Не вдалося отримати список подій. Спробуйте пізніше.")
			return
		}
		if err := b.SendReply(msg.Chat.ID, FormatUpcoming(entries)); err != nil {
			log.WithField("error", err.Error()).Warn("reply failed")
		}
	}
}

// FormatUpcoming renders the /upcoming reply, soonest event first.
func FormatUpcoming(entries []calendar.Entry) string {
	if len(entries) == 0 {
		return "📭 Найближчих подій не знайдено."
	}
	var sb strings.Builder
	sb.WriteString("🔎 Найближчі події:")
	for _, e := range entries {
		fmt.Fprintf(&sb, "\n📅 %s — %s", e.Start.Format("02.01.2006 15:04"), e.Summary)
	}
	return sb.String()
}
