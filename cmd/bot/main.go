package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"voice-calendar-go/internal/calendar"
	"voice-calendar-go/internal/config"
	"voice-calendar-go/internal/extract"
	"voice-calendar-go/internal/gate"
	"voice-calendar-go/internal/ingest"
	"voice-calendar-go/internal/logger"
	"voice-calendar-go/internal/pipeline"
	"voice-calendar-go/internal/telegram"
	"voice-calendar-go/internal/transcribe"
)

func main() {
	_ = godotenv.Load() // loads .env

	authorize := flag.Bool("authorize", false, "run the interactive Google Calendar authorization flow and exit")
	flag.Parse()

	log := logger.New()
	log.WithField("service", "voice-calendar-go").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *authorize {
		if err := calendar.Authorize(ctx, cfg.CredentialsFile, cfg.TokenFile); err != nil {
			log.WithError(err).Fatal("calendar authorization failed")
		}
		log.WithField("token_file", cfg.TokenFile).Info("calendar token saved")
		return
	}

	cal, err := calendar.NewGoogle(ctx, cfg.CredentialsFile, cfg.TokenFile, cfg.CalendarID, cfg.Location)
	if err != nil {
		log.WithError(err).Fatal("failed to build calendar client")
	}

	bot, err := telegram.Connect(cfg.TelegramToken, cal)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to telegram")
	}

	oaiClient := oai.NewClient(option.WithAPIKey(cfg.OpenAIKey))

	var extractor extract.Extractor
	switch cfg.Extractor {
	case config.ExtractorPattern:
		extractor = extract.NewPattern()
	default:
		extractor = extract.NewLLM(extract.NewOpenAICompleter(oaiClient, cfg.LLMModel), cfg.Location)
	}

	window := gate.Window{
		StartHour: cfg.ActiveStartHour,
		EndHour:   cfg.ActiveEndHour,
		Loc:       cfg.Location,
	}
	pipe := pipeline.New(
		window,
		ingest.New(bot),
		transcribe.NewWhisper(oaiClient, cfg.WhisperModel),
		extractor,
		cal,
		cfg.LanguageHint,
	)

	log.WithField("extractor", string(cfg.Extractor)).
		WithField("timezone", cfg.TimezoneName).
		WithField("active_hours", [2]int{cfg.ActiveStartHour, cfg.ActiveEndHour}).
		Info("listening for voice messages")

	bot.Run(ctx, func(vm telegram.VoiceMessage) {
		res := pipe.Handle(ctx, pipeline.Message{
			UserID:        vm.UserID,
			ChatID:        vm.ChatID,
			AttachmentRef: vm.FileID,
			ReceivedAt:    vm.ReceivedAt,
		})
		if err := bot.SendReply(vm.ChatID, res.Reply); err != nil {
			log.WithError(err).Warn("failed to send reply")
		}
	})

	log.Info("shutting down")
}
