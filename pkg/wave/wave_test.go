package wave

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		name     string
		mimeType string
		bits     int
		rate     int
	}{
		{"typical", "audio/L16;rate=24000", 16, 24000},
		{"empty string", "", 16, 24000},
		{"rate only", "rate=48000", 16, 48000},
		{"bits only", "audio/L24", 24, 24000},
		{"bad rate keeps default", "audio/L24;rate=not-a-number", 24, 24000},
		{"bad bits keeps default", "audio/Labc;rate=16000", 16, 16000},
		{"whitespace around params", " audio/L8 ; rate=8000 ", 8, 8000},
		{"rate prefix is case-insensitive", "audio/L16;RATE=44100", 16, 44100},
		{"audio/L prefix is case-sensitive", "AUDIO/L24", 16, 24000},
		{"last rate wins", "rate=8000;rate=16000", 16, 16000},
		{"last bits wins", "audio/L8;audio/L32", 32, 24000},
		{"unknown params ignored", "audio/L16;codec=pcm;rate=22050", 16, 22050},
		{"empty rate value keeps default", "rate=", 16, 24000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := ParseFormat(tc.mimeType)
			if f.BitsPerSample != tc.bits {
				t.Errorf("BitsPerSample = %d, want %d", f.BitsPerSample, tc.bits)
			}
			if f.SampleRate != tc.rate {
				t.Errorf("SampleRate = %d, want %d", f.SampleRate, tc.rate)
			}
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	out := Encode(raw, "audio/L16;rate=24000")

	if len(out) != 44+len(raw) {
		t.Fatalf("total length = %d, want %d", len(out), 44+len(raw))
	}

	if string(out[0:4]) != "RIFF" {
		t.Errorf("chunk id = %q, want RIFF", out[0:4])
	}
	if string(out[8:12]) != "WAVE" {
		t.Errorf("format = %q, want WAVE", out[8:12])
	}
	if string(out[12:16]) != "fmt " {
		t.Errorf("subchunk1 id = %q, want 'fmt '", out[12:16])
	}
	if string(out[36:40]) != "data" {
		t.Errorf("subchunk2 id = %q, want data", out[36:40])
	}

	if got := binary.LittleEndian.Uint32(out[4:8]); got != uint32(36+len(raw)) {
		t.Errorf("riff size = %d, want %d", got, 36+len(raw))
	}
	if got := binary.LittleEndian.Uint32(out[16:20]); got != 16 {
		t.Errorf("fmt chunk size = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint16(out[20:22]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != uint32(len(raw)) {
		t.Errorf("data size = %d, want %d", got, len(raw))
	}

	if !bytes.Equal(out[44:], raw) {
		t.Errorf("payload modified: got % x, want % x", out[44:], raw)
	}
}

func TestEncodeHeaderRoundTrip(t *testing.T) {
	raw := make([]byte, 480)
	out := Encode(raw, "audio/L24;rate=48000")

	bits := int(binary.LittleEndian.Uint16(out[34:36]))
	rate := int(binary.LittleEndian.Uint32(out[24:28]))
	channels := int(binary.LittleEndian.Uint16(out[22:24]))
	byteRate := int(binary.LittleEndian.Uint32(out[28:32]))
	blockAlign := int(binary.LittleEndian.Uint16(out[32:34]))
	dataSize := int(binary.LittleEndian.Uint32(out[40:44]))

	if bits != 24 {
		t.Errorf("bits per sample = %d, want 24", bits)
	}
	if rate != 48000 {
		t.Errorf("sample rate = %d, want 48000", rate)
	}
	if channels != 1 {
		t.Errorf("channels = %d, want 1 (always mono)", channels)
	}
	if want := 48000 * 3; byteRate != want {
		t.Errorf("byte rate = %d, want %d", byteRate, want)
	}
	if blockAlign != 3 {
		t.Errorf("block align = %d, want 3", blockAlign)
	}
	if dataSize != len(raw) {
		t.Errorf("data size = %d, want %d", dataSize, len(raw))
	}
}

func TestEncodeEmptyPayload(t *testing.T) {
	out := Encode(nil, "audio/L16;rate=24000")

	if len(out) != 44 {
		t.Fatalf("total length = %d, want 44", len(out))
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != 0 {
		t.Errorf("data size = %d, want 0", got)
	}
	if got := binary.LittleEndian.Uint32(out[4:8]); got != 36 {
		t.Errorf("riff size = %d, want 36", got)
	}
}

func TestEncodeUnparseableMimeType(t *testing.T) {
	raw := []byte{0xAA, 0xBB}
	out := Encode(raw, "complete nonsense")

	if len(out) != 46 {
		t.Fatalf("total length = %d, want 46", len(out))
	}
	// Defaults: 16-bit, 24000 Hz, mono.
	if got := binary.LittleEndian.Uint16(out[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want default 16", got)
	}
	if got := binary.LittleEndian.Uint32(out[24:28]); got != 24000 {
		t.Errorf("sample rate = %d, want default 24000", got)
	}
	if got := binary.LittleEndian.Uint32(out[28:32]); got != 48000 {
		t.Errorf("byte rate = %d, want 48000", got)
	}
}
