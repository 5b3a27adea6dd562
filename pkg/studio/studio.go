// Package studio ties script generation and speech synthesis together into
// the pipeline the CLI, the web UI and the daemon all drive.
package studio

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wachiwi/auto-daddy/pkg/gemini"
	"github.com/wachiwi/auto-daddy/pkg/library"
	"github.com/wachiwi/auto-daddy/pkg/script"
	"github.com/wachiwi/auto-daddy/pkg/wave"
)

// historyRetention is how long generated items stay in the library history.
const historyRetention = 30 * 24 * time.Hour

const timestampLayout = "20060102_150405"

func init() {
	// The stdlib mime table ships without audio types; register the
	// containers the API is known to return so extensionFor can resolve
	// them without an OS mime database.
	_ = mime.AddExtensionType(".wav", "audio/wav")
	_ = mime.AddExtensionType(".mp3", "audio/mpeg")
	_ = mime.AddExtensionType(".ogg", "audio/ogg")
	_ = mime.AddExtensionType(".aac", "audio/aac")
	_ = mime.AddExtensionType(".flac", "audio/flac")
}

type Studio struct {
	Client    *gemini.Client
	OutputDir string

	mu            sync.Mutex
	currentScript string
	currentTheme  string
}

// New creates a studio writing into outputDir, creating it if needed.
func New(client *gemini.Client, outputDir string) (*Studio, error) {
	if outputDir == "" {
		outputDir = filepath.Join(".", "output")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	library.Init(outputDir)
	return &Studio{Client: client, OutputDir: outputDir}, nil
}

// GenerateScript asks the model for a new script. customPrompt overrides the
// built-in prompt engineering when non-empty. The result becomes the current
// script.
func (s *Studio) GenerateScript(ctx context.Context, theme, length, customPrompt string) (string, error) {
	prompt := customPrompt
	if prompt == "" {
		prompt = script.Prompt(theme, length)
	}

	text, err := s.Client.GenerateText(ctx, gemini.TextModel, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate script: %w", err)
	}
	text = script.Annotate(text)

	s.mu.Lock()
	s.currentScript = text
	s.currentTheme = theme
	s.mu.Unlock()

	return text, nil
}

// SetManualScript stores a hand-written script, adding speaker annotations
// if they are missing.
func (s *Studio) SetManualScript(text string) string {
	text = script.Annotate(text)
	s.mu.Lock()
	s.currentScript = text
	s.currentTheme = ""
	s.mu.Unlock()
	return text
}

// CurrentScript returns the script the next audio generation will use.
func (s *Studio) CurrentScript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentScript
}

// GenerateAudio synthesizes speech for scriptText (or the current script
// when empty) and writes it into the output directory. Unknown voices fall
// back to the default. The file extension follows the MIME type the API
// reports; raw PCM payloads with no registered extension are wrapped into a
// WAV container first. It returns the path of the written file.
func (s *Studio) GenerateAudio(ctx context.Context, scriptText, voice, filename string) (string, error) {
	s.mu.Lock()
	if scriptText == "" {
		scriptText = s.currentScript
	}
	theme := s.currentTheme
	s.mu.Unlock()

	if scriptText == "" {
		return "", fmt.Errorf("no script available, generate or set a script first")
	}

	if !gemini.VoiceAvailable(voice) {
		voice = gemini.DefaultVoice
	}

	data, mimeType, err := s.Client.SynthesizeSpeech(ctx, gemini.SpeechModel, scriptText, voice)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize audio: %w", err)
	}

	ext := extensionFor(mimeType)
	if ext == "" {
		// Headerless PCM such as audio/L16;rate=24000: wrap it.
		data = wave.Encode(data, mimeType)
		ext = ".wav"
	}

	if filename == "" {
		filename = fmt.Sprintf("asmr_daddy_%s%s", time.Now().Format(timestampLayout), ext)
	} else if !strings.HasSuffix(filename, ext) {
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
	}

	outputPath := filepath.Join(s.OutputDir, filename)
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	slog.Info("audio saved", "path", outputPath, "voice", voice, "mime_type", mimeType)

	item := library.GeneratedItem{
		Name:      filename,
		Kind:      "audio",
		Theme:     theme,
		Voice:     voice,
		Timestamp: time.Now(),
	}
	if err := library.Record(item, historyRetention); err != nil {
		slog.Error("failed to record generated audio", "error", err)
	}

	return outputPath, nil
}

// SaveScript writes the current script to a text file in the output
// directory and returns its path.
func (s *Studio) SaveScript(filename string) (string, error) {
	s.mu.Lock()
	text := s.currentScript
	theme := s.currentTheme
	s.mu.Unlock()

	if text == "" {
		return "", fmt.Errorf("no script available to save")
	}

	if filename == "" {
		filename = fmt.Sprintf("asmr_script_%s.txt", time.Now().Format(timestampLayout))
	}

	outputPath := filepath.Join(s.OutputDir, filename)
	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to save script: %w", err)
	}

	item := library.GeneratedItem{
		Name:      filename,
		Kind:      "script",
		Theme:     theme,
		Timestamp: time.Now(),
	}
	if err := library.Record(item, historyRetention); err != nil {
		slog.Error("failed to record saved script", "error", err)
	}

	return outputPath, nil
}

// extensionFor maps a MIME type to a file extension, or "" when the type has
// no registered container format.
func extensionFor(mimeType string) string {
	// Strip parameters; "audio/L16;rate=24000" has no extension either way.
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	// Prefer the conventional suffixes over whatever sorts first.
	for _, preferred := range []string{".wav", ".mp3", ".ogg"} {
		for _, e := range exts {
			if e == preferred {
				return e
			}
		}
	}
	return exts[0]
}
