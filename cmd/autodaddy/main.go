package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/wachiwi/auto-daddy/pkg/gemini"
	"github.com/wachiwi/auto-daddy/pkg/logger"
	"github.com/wachiwi/auto-daddy/pkg/player"
	"github.com/wachiwi/auto-daddy/pkg/script"
	"github.com/wachiwi/auto-daddy/pkg/studio"
)

func main() {
	logger.Setup()

	var (
		theme      string
		length     string
		voice      string
		prompt     string
		manual     string
		manualFile string
		outputDir  string
		filename   string
		saveScript bool
		play       bool
		listVoices bool
	)

	flag.StringVar(&theme, "theme", "comforting", "Theme for the generated script")
	flag.StringVar(&length, "length", "medium", "Script length: "+strings.Join(script.Lengths(), ", "))
	flag.StringVar(&voice, "voice", gemini.DefaultVoice, "TTS voice: "+strings.Join(gemini.Voices, ", "))
	flag.StringVar(&prompt, "prompt", "", "Custom prompt overriding the built-in prompt engineering")
	flag.StringVar(&manual, "script", "", "Manual script text (skips script generation)")
	flag.StringVar(&manualFile, "script-file", "", "Read the manual script from a file")
	flag.StringVar(&outputDir, "output", envOr("ASMR_OUTPUT_DIR", "output"), "Output directory")
	flag.StringVar(&filename, "filename", "", "Audio filename (default asmr_daddy_<timestamp>.wav)")
	flag.BoolVar(&saveScript, "save-script", false, "Also save the script as a text file")
	flag.BoolVar(&play, "play", false, "Play the generated audio when done")
	flag.BoolVar(&listVoices, "voices", false, "List available voices and exit")
	flag.Parse()

	if listVoices {
		for _, v := range gemini.Voices {
			fmt.Println(v)
		}
		return
	}

	client, err := gemini.NewClient(os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		logger.Fatal("Failed to create Gemini client", "error", err)
	}

	s, err := studio.New(client, outputDir)
	if err != nil {
		logger.Fatal("Failed to set up studio", "error", err)
	}

	ctx := context.Background()

	if manualFile != "" {
		data, err := os.ReadFile(manualFile)
		if err != nil {
			logger.Fatal("Failed to read script file", "error", err)
		}
		manual = string(data)
	}

	var text string
	if manual != "" {
		text = s.SetManualScript(manual)
	} else {
		slog.Info("generating script", "theme", theme, "length", length)
		text, err = s.GenerateScript(ctx, theme, length, prompt)
		if err != nil {
			logger.Fatal("Failed to generate script", "error", err)
		}
	}
	fmt.Println(text)

	if saveScript {
		path, err := s.SaveScript("")
		if err != nil {
			logger.Fatal("Failed to save script", "error", err)
		}
		slog.Info("script saved", "path", path)
	}

	slog.Info("generating audio", "voice", voice)
	audioPath, err := s.GenerateAudio(ctx, "", voice, filename)
	if err != nil {
		logger.Fatal("Failed to generate audio", "error", err)
	}
	slog.Info("audio generated", "path", audioPath)

	if play {
		p, err := player.New()
		if err != nil {
			logger.Fatal("Failed to initialize audio output", "error", err)
		}
		if err := p.PlayFile(audioPath); err != nil {
			logger.Fatal("Failed to play audio", "error", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
