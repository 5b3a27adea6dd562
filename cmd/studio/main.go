package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/wachiwi/auto-daddy/cmd/studio/handlers"
	"github.com/wachiwi/auto-daddy/cmd/studio/middleware"
	"github.com/wachiwi/auto-daddy/pkg/gemini"
	"github.com/wachiwi/auto-daddy/pkg/logger"
	"github.com/wachiwi/auto-daddy/pkg/studio"
	"github.com/wachiwi/auto-daddy/pkg/telemetry"
)

//go:embed templates/*
var templateFS embed.FS

func main() {
	logger.Setup()

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "studio")
	if err != nil {
		slog.Warn("Telemetry disabled", "error", err)
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				slog.Error("Failed to shut down telemetry", "error", err)
			}
		}()
	}

	user := os.Getenv("STUDIO_USER")
	password := os.Getenv("STUDIO_PASSWORD")
	if user == "" || password == "" {
		logger.Fatal("STUDIO_USER and STUDIO_PASSWORD environment variables must be set")
	}

	sessionSecret := os.Getenv("STUDIO_SESSION_SECRET")
	if sessionSecret == "" {
		slog.Warn("STUDIO_SESSION_SECRET not set, sessions will not survive restarts")
		sessionSecret = "auto-daddy-dev-secret"
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

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1"})

	store := cookie.NewStore([]byte(sessionSecret))
	router.Use(sessions.Sessions("studio-session", store))

	authHandler := &handlers.AuthHandler{User: user, Password: password, TemplateFS: templateFS}
	studioHandler := &handlers.StudioHandler{Studio: s, TemplateFS: templateFS}

	// --- Public Routes ---
	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	// --- Authenticated Routes ---
	authorized := router.Group("/", middleware.AuthRequired)
	authorized.GET("/", studioHandler.Index)
	authorized.POST("/script/generate", studioHandler.GenerateScript)
	authorized.POST("/script/manual", studioHandler.SetScript)
	authorized.POST("/script/save", studioHandler.SaveScript)
	authorized.POST("/audio/generate", studioHandler.GenerateAudio)
	authorized.POST("/queue", studioHandler.Enqueue)
	authorized.Static("/audio", outputDir)

	slog.Info("Studio running", "addr", "http://localhost:8080")
	if err := router.Run(":8080"); err != nil {
		logger.Fatal("Failed to run server", "error", err)
	}
}
