package studio

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wachiwi/auto-daddy/pkg/gemini"
	"github.com/wachiwi/auto-daddy/pkg/library"
)

// newMockAPI serves both Gemini endpoints: text generation returns
// scriptText, speech synthesis returns audioData under audioMime. The voice
// of the last synthesis request is captured into lastVoice.
func newMockAPI(t *testing.T, scriptText string, audioData []byte, audioMime string, lastVoice *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		if strings.Contains(r.URL.Path, ":streamGenerateContent") {
			var req struct {
				GenerationConfig struct {
					SpeechConfig struct {
						MultiSpeakerVoiceConfig struct {
							SpeakerVoiceConfigs []struct {
								VoiceConfig struct {
									PrebuiltVoiceConfig struct {
										VoiceName string `json:"voiceName"`
									} `json:"prebuiltVoiceConfig"`
								} `json:"voiceConfig"`
							} `json:"speakerVoiceConfigs"`
						} `json:"multiSpeakerVoiceConfig"`
					} `json:"speechConfig"`
				} `json:"generationConfig"`
			}
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("Failed to unmarshal synthesis request: %v", err)
			}
			if cfgs := req.GenerationConfig.SpeechConfig.MultiSpeakerVoiceConfig.SpeakerVoiceConfigs; len(cfgs) == 1 && lastVoice != nil {
				*lastVoice = cfgs[0].VoiceConfig.PrebuiltVoiceConfig.VoiceName
			}
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"inlineData\":{\"mimeType\":%q,\"data\":%q}}]}}]}\n\n",
				audioMime, base64.StdEncoding.EncodeToString(audioData))
			return
		}

		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, scriptText)
	}))
}

func newTestStudio(t *testing.T, server *httptest.Server) *Studio {
	t.Helper()
	client, err := gemini.NewClient("test-key")
	if err != nil {
		t.Fatal(err)
	}
	client.BaseURL = server.URL

	s, err := New(client, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestGenerateScriptAnnotates(t *testing.T) {
	server := newMockAPI(t, "Hello there.\nTime to relax.", nil, "", nil)
	defer server.Close()
	s := newTestStudio(t, server)

	text, err := s.GenerateScript(context.Background(), "bedtime relaxation", "short", "")
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if !strings.HasPrefix(text, "Speaker 1: Hello there.") {
		t.Errorf("Expected annotated script, got %q", text)
	}
	if s.CurrentScript() != text {
		t.Error("Generated script should become the current script")
	}
}

func TestSetManualScript(t *testing.T) {
	server := newMockAPI(t, "", nil, "", nil)
	defer server.Close()
	s := newTestStudio(t, server)

	got := s.SetManualScript("Just close your eyes.")
	if got != "Speaker 1: Just close your eyes." {
		t.Errorf("SetManualScript = %q", got)
	}
}

func TestGenerateAudioWrapsRawPCM(t *testing.T) {
	rawPCM := []byte{0x01, 0x02, 0x03, 0x04}
	var voice string
	server := newMockAPI(t, "", rawPCM, "audio/L16;rate=24000", &voice)
	defer server.Close()
	s := newTestStudio(t, server)

	s.SetManualScript("Relax now.")
	path, err := s.GenerateAudio(context.Background(), "", "Puck", "")
	if err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	if filepath.Ext(path) != ".wav" {
		t.Errorf("Expected .wav output for raw PCM, got %s", path)
	}
	if voice != "Puck" {
		t.Errorf("Expected voice Puck, got %q", voice)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 44+len(rawPCM) {
		t.Fatalf("Expected 44-byte header + payload, got %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" {
		t.Errorf("Expected RIFF header, got %q", data[0:4])
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 24000 {
		t.Errorf("Expected 24000 Hz in header, got %d", rate)
	}

	items, err := library.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Kind != "audio" || items[0].Voice != "Puck" {
		t.Errorf("Expected audio history entry, got %v", items)
	}
}

func TestGenerateAudioKeepsContainerizedPayload(t *testing.T) {
	mp3ish := []byte("not-really-mp3-frames")
	server := newMockAPI(t, "", mp3ish, "audio/mpeg", nil)
	defer server.Close()
	s := newTestStudio(t, server)

	s.SetManualScript("Relax now.")
	path, err := s.GenerateAudio(context.Background(), "", gemini.DefaultVoice, "bedtime.wav")
	if err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	if filepath.Ext(path) != ".mp3" {
		t.Errorf("Expected extension swapped to .mp3, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(mp3ish) {
		t.Error("Containerized payload should be written verbatim")
	}
}

func TestGenerateAudioUnknownVoiceFallsBack(t *testing.T) {
	var voice string
	server := newMockAPI(t, "", []byte{0x00}, "audio/L16;rate=24000", &voice)
	defer server.Close()
	s := newTestStudio(t, server)

	s.SetManualScript("Relax now.")
	if _, err := s.GenerateAudio(context.Background(), "", "NotAVoice", ""); err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	if voice != gemini.DefaultVoice {
		t.Errorf("Expected fallback to %s, got %q", gemini.DefaultVoice, voice)
	}
}

func TestGenerateAudioWithoutScript(t *testing.T) {
	server := newMockAPI(t, "", nil, "", nil)
	defer server.Close()
	s := newTestStudio(t, server)

	if _, err := s.GenerateAudio(context.Background(), "", gemini.DefaultVoice, ""); err == nil {
		t.Fatal("Expected error when no script is available")
	}
}

func TestSaveScript(t *testing.T) {
	server := newMockAPI(t, "", nil, "", nil)
	defer server.Close()
	s := newTestStudio(t, server)

	if _, err := s.SaveScript(""); err == nil {
		t.Fatal("Expected error when saving with no script")
	}

	s.SetManualScript("Sleep well.")
	path, err := s.SaveScript("my_script.txt")
	if err != nil {
		t.Fatalf("SaveScript failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Speaker 1: Sleep well." {
		t.Errorf("Saved script = %q", data)
	}
}
