package handlers

import (
	"embed"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/wachiwi/auto-daddy/pkg/gemini"
	"github.com/wachiwi/auto-daddy/pkg/library"
	"github.com/wachiwi/auto-daddy/pkg/script"
	"github.com/wachiwi/auto-daddy/pkg/studio"
)

var (
	scriptsCounter metric.Int64Counter
	audioCounter   metric.Int64Counter
)

func init() {
	var err error
	meter := otel.Meter("github.com/wachiwi/auto-daddy/cmd/studio")
	scriptsCounter, err = meter.Int64Counter("studio.scripts.generated",
		metric.WithDescription("Total number of scripts generated"),
		metric.WithUnit("{scripts}"),
	)
	if err != nil {
		slog.Error("Failed to create script metrics", "error", err)
	}
	audioCounter, err = meter.Int64Counter("studio.audio.generated",
		metric.WithDescription("Total number of audio files generated"),
		metric.WithUnit("{files}"),
	)
	if err != nil {
		slog.Error("Failed to create audio metrics", "error", err)
	}
}

type AudioFile struct {
	Name string
	Path string
}

type StudioHandler struct {
	Studio     *studio.Studio
	TemplateFS embed.FS
}

func (h *StudioHandler) audioFiles() []AudioFile {
	files, err := os.ReadDir(h.Studio.OutputDir)
	if err != nil {
		slog.Error("Failed to read output directory", "error", err)
		return []AudioFile{}
	}

	var audio []AudioFile
	for _, file := range files {
		ext := filepath.Ext(file.Name())
		if !file.IsDir() && (ext == ".wav" || ext == ".mp3" || ext == ".ogg") {
			audio = append(audio, AudioFile{
				Name: file.Name(),
				Path: filepath.Join("/audio", file.Name()),
			})
		}
	}
	return audio
}

func (h *StudioHandler) page() *template.Template {
	return template.Must(template.New("studio.html").ParseFS(h.TemplateFS, "templates/studio.html"))
}

func (h *StudioHandler) pageData() gin.H {
	history, err := library.History()
	if err != nil {
		slog.Error("Failed to get history", "error", err)
		history = []library.GeneratedItem{}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Timestamp.After(history[j].Timestamp)
	})

	pending, err := library.PendingRequests()
	if err != nil {
		slog.Error("Failed to get pending requests", "error", err)
		pending = []library.Request{}
	}

	return gin.H{
		"audioFiles": h.audioFiles(),
		"history":    history,
		"pending":    pending,
		"voices":     gemini.Voices,
		"lengths":    script.Lengths(),
		"script":     h.Studio.CurrentScript(),
	}
}

func (h *StudioHandler) Index(c *gin.Context) {
	if err := h.page().Execute(c.Writer, h.pageData()); err != nil {
		slog.Error("Template execution error", "error", err)
		c.String(http.StatusInternalServerError, "Failed to render page")
	}
}

func (h *StudioHandler) GenerateScript(c *gin.Context) {
	theme := c.PostForm("theme")
	length := c.PostForm("length")
	customPrompt := c.PostForm("prompt")

	text, err := h.Studio.GenerateScript(c.Request.Context(), theme, length, customPrompt)
	if err != nil {
		slog.Error("Failed to generate script", "error", err)
		c.String(http.StatusBadGateway, "Failed to generate script")
		return
	}
	scriptsCounter.Add(c.Request.Context(), 1)

	data := h.pageData()
	data["script"] = text
	h.page().ExecuteTemplate(c.Writer, "script-view", data)
}

func (h *StudioHandler) SetScript(c *gin.Context) {
	text := h.Studio.SetManualScript(c.PostForm("script"))

	data := h.pageData()
	data["script"] = text
	h.page().ExecuteTemplate(c.Writer, "script-view", data)
}

func (h *StudioHandler) GenerateAudio(c *gin.Context) {
	voice := c.PostForm("voice")

	path, err := h.Studio.GenerateAudio(c.Request.Context(), "", voice, "")
	if err != nil {
		slog.Error("Failed to generate audio", "error", err)
		c.String(http.StatusBadGateway, "Failed to generate audio")
		return
	}
	audioCounter.Add(c.Request.Context(), 1)
	slog.Info("Generated audio", "path", path)

	h.page().ExecuteTemplate(c.Writer, "library", h.pageData())
}

func (h *StudioHandler) SaveScript(c *gin.Context) {
	path, err := h.Studio.SaveScript("")
	if err != nil {
		slog.Error("Failed to save script", "error", err)
		c.String(http.StatusBadRequest, "No script to save")
		return
	}
	slog.Info("Saved script", "path", path)

	h.page().ExecuteTemplate(c.Writer, "library", h.pageData())
}

// Enqueue records a generation request for the daemon to pick up on its next
// cron run.
func (h *StudioHandler) Enqueue(c *gin.Context) {
	req := library.Request{
		Theme:  c.PostForm("theme"),
		Length: c.PostForm("length"),
		Voice:  c.PostForm("voice"),
	}
	if err := library.Enqueue(req); err != nil {
		slog.Error("Failed to enqueue request", "error", err)
		c.String(http.StatusInternalServerError, "Failed to queue request")
		return
	}
	slog.Info("Queued generation request", "theme", req.Theme, "voice", req.Voice)

	h.page().ExecuteTemplate(c.Writer, "pending-list", h.pageData())
}
