// Package wave wraps raw PCM audio in a minimal RIFF/WAVE container.
//
// The speech API reports raw audio as a MIME type like "audio/L16;rate=24000"
// with no container around the samples. Encode derives the sample format from
// that string and prepends the 44-byte header so the result can be written
// straight to disk as a playable .wav file.
package wave

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// Defaults used when the MIME type carries no usable value.
const (
	DefaultBitsPerSample = 16
	DefaultSampleRate    = 24000
)

// headerSize is the fixed RIFF/WAVE/fmt/data header length for single-chunk PCM.
const headerSize = 44

// Format describes the raw PCM sample layout. The API only ever emits mono,
// so the channel count is not part of the format.
type Format struct {
	BitsPerSample int
	SampleRate    int
}

// ParseFormat extracts bits per sample and sample rate from an audio MIME
// type string. It never fails: missing or malformed fields keep their
// defaults, so an unexpected vendor string still yields a playable file.
// When a field appears more than once the last occurrence wins.
func ParseFormat(mimeType string) Format {
	f := Format{
		BitsPerSample: DefaultBitsPerSample,
		SampleRate:    DefaultSampleRate,
	}

	for _, param := range strings.Split(mimeType, ";") {
		param = strings.TrimSpace(param)
		switch {
		case strings.HasPrefix(strings.ToLower(param), "rate="):
			if rate, err := strconv.Atoi(param[strings.Index(param, "=")+1:]); err == nil {
				f.SampleRate = rate
			}
		case strings.HasPrefix(param, "audio/L"):
			if bits, err := strconv.Atoi(param[len("audio/L"):]); err == nil {
				f.BitsPerSample = bits
			}
		}
	}

	return f
}

// Encode returns a complete WAV file: a 44-byte header for the format named
// by mimeType followed by raw unchanged. The sample bytes are never
// inspected, and like ParseFormat this cannot fail; a zero-length raw buffer
// produces a structurally valid 44-byte file with an empty data chunk.
func Encode(raw []byte, mimeType string) []byte {
	f := ParseFormat(mimeType)

	const numChannels = 1
	bytesPerSample := f.BitsPerSample / 8
	blockAlign := numChannels * bytesPerSample
	byteRate := f.SampleRate * blockAlign
	dataSize := len(raw)
	riffSize := 36 + dataSize // total size minus the 8-byte RIFF tag+size

	out := make([]byte, headerSize, headerSize+dataSize)

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(riffSize))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16) // fmt chunk size for PCM
	binary.LittleEndian.PutUint16(out[20:22], 1)  // audio format 1 = linear PCM
	binary.LittleEndian.PutUint16(out[22:24], numChannels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], uint16(f.BitsPerSample))

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	return append(out, raw...)
}
