package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/wachiwi/auto-daddy/pkg/gemini"
	"github.com/wachiwi/auto-daddy/pkg/library"
	"github.com/wachiwi/auto-daddy/pkg/logger"
	"github.com/wachiwi/auto-daddy/pkg/studio"
	"github.com/wachiwi/auto-daddy/pkg/telemetry"
)

// defaultThemes is rotated through when nothing is queued.
var defaultThemes = []string{
	"comforting",
	"bedtime relaxation",
	"sleep aid",
	"stress relief after a long day",
	"gentle encouragement",
}

func main() {
	logger.Setup()

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "daemon")
	if err != nil {
		slog.Warn("Telemetry disabled", "error", err)
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				slog.Error("Failed to shut down telemetry", "error", err)
			}
		}()
	}

	client, err := gemini.NewClient(os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		logger.Fatal("Failed to create Gemini client", "error", err)
	}

	outputDir := os.Getenv("ASMR_OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "output"
	}
	s, err := studio.New(client, outputDir)
	if err != nil {
		logger.Fatal("Failed to set up studio", "error", err)
	}

	schedule := os.Getenv("ASMR_CRON")
	if schedule == "" {
		schedule = "0 * * * *" // hourly
	}

	cronLogger := &logger.CronLogger{Logger: slog.Default()}
	c := cron.New(
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)

	_, err = c.AddFunc(schedule, func() {
		runGeneration(ctx, s)
	})
	if err != nil {
		logger.Fatal("Invalid cron schedule", "schedule", schedule, "error", err)
	}

	slog.Info("Daemon started", "schedule", schedule, "output", outputDir)
	c.Start()

	select {}
}

// runGeneration handles one cron tick: a queued request when one is pending,
// otherwise a random default theme.
func runGeneration(ctx context.Context, s *studio.Studio) {
	req, err := library.NextRequest()
	if err != nil {
		slog.Error("Failed to check request queue", "error", err)
	}

	theme := defaultThemes[rand.Intn(len(defaultThemes))]
	length := "medium"
	voice := gemini.DefaultVoice
	if req != nil {
		slog.Info("Picking up queued request", "theme", req.Theme, "length", req.Length, "voice", req.Voice)
		theme = req.Theme
		length = req.Length
		voice = req.Voice
	}

	slog.Info("Generating script", "theme", theme, "length", length)
	if _, err := s.GenerateScript(ctx, theme, length, ""); err != nil {
		slog.Error("Failed to generate script", "error", err)
		return
	}

	if _, err := s.SaveScript(""); err != nil {
		slog.Error("Failed to save script", "error", err)
	}

	slog.Info("Generating audio", "voice", voice)
	path, err := s.GenerateAudio(ctx, "", voice, "")
	if err != nil {
		slog.Error("Failed to generate audio", "error", err)
		return
	}
	slog.Info("Generation complete", "path", path)
}
