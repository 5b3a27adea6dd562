// Package gemini is a small REST client for the Google Generative Language
// API, covering the two calls this project needs: text generation for
// scripts and multi-speaker speech synthesis.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Models used by the pipeline. The TTS model is the only one that accepts a
// speech config.
const (
	TextModel   = "gemini-2.5-flash-preview"
	SpeechModel = "gemini-2.5-pro-preview-tts"
)

// DefaultVoice is a warm, comforting voice suitable for ASMR content.
const DefaultVoice = "Enceladus"

// Voices lists the prebuilt voices the synthesizer is allowed to use.
var Voices = []string{
	"Enceladus", // warm, deep
	"Puck",      // gentle, soothing
	"Ceres",     // calm, reassuring
	"Io",        // soft, nurturing
}

// VoiceAvailable reports whether name is one of Voices.
func VoiceAvailable(name string) bool {
	for _, v := range Voices {
		if v == name {
			return true
		}
	}
	return false
}

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required, set GEMINI_API_KEY")
	}
	return &Client{
		APIKey:     apiKey,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Request/response shapes for the v1beta generateContent endpoints. Only the
// fields this client reads and writes are declared.

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type GenerationConfig struct {
	Temperature        float64       `json:"temperature"`
	TopP               float64       `json:"topP,omitempty"`
	MaxOutputTokens    int           `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

type SpeechConfig struct {
	MultiSpeakerVoiceConfig *MultiSpeakerVoiceConfig `json:"multiSpeakerVoiceConfig,omitempty"`
}

type MultiSpeakerVoiceConfig struct {
	SpeakerVoiceConfigs []SpeakerVoiceConfig `json:"speakerVoiceConfigs"`
}

type SpeakerVoiceConfig struct {
	Speaker     string      `json:"speaker"`
	VoiceConfig VoiceConfig `json:"voiceConfig"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig PrebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content *Content `json:"content"`
	} `json:"candidates"`
}

// GenerateText asks model for a completion of prompt and returns the text of
// the first candidate.
func (c *Client) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: prompt}}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:     0.7,
			TopP:            0.95,
			MaxOutputTokens: 1024,
		},
	}

	var resp generateResponse
	if err := c.post(ctx, fmt.Sprintf("/v1beta/models/%s:generateContent", model), reqBody, &resp); err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", fmt.Errorf("no text generated")
}

// SynthesizeSpeech renders script as speech using the given prebuilt voice
// for "Speaker 1". It streams the response and returns the first inline
// audio payload together with the MIME type the API reported for it. The
// payload may be a containerized format (e.g. audio/mpeg) or headerless PCM
// such as audio/L16;rate=24000 — callers decide how to store it.
func (c *Client) SynthesizeSpeech(ctx context.Context, model, script, voice string) ([]byte, string, error) {
	reqBody := generateRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: script}}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:        1,
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &SpeechConfig{
				MultiSpeakerVoiceConfig: &MultiSpeakerVoiceConfig{
					SpeakerVoiceConfigs: []SpeakerVoiceConfig{
						{
							Speaker: "Speaker 1",
							VoiceConfig: VoiceConfig{
								PrebuiltVoiceConfig: PrebuiltVoiceConfig{VoiceName: voice},
							},
						},
					},
				},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	// The stream is server-sent events, one JSON response per "data:" line.
	// The first chunk carrying inline data is the whole audio clip.
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var chunk generateResponse
		if err := json.Unmarshal([]byte(strings.TrimSpace(line[len("data:"):])), &chunk); err != nil {
			return nil, "", fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		for _, cand := range chunk.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part.InlineData == nil {
					continue
				}
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, "", fmt.Errorf("failed to decode audio payload: %w", err)
				}
				return data, part.InlineData.MimeType, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to read stream: %w", err)
	}

	return nil, "", fmt.Errorf("no audio data generated")
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
