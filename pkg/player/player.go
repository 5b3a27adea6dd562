// Package player previews generated audio files on the local sound device.
package player

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
	"github.com/youpy/go-wav"
)

// The oto context is created once per process; everything played through it
// is converted to this format first.
const (
	outputSampleRate = 44100
	outputChannels   = 2
)

type Player struct {
	otoCtx *oto.Context
}

// New initializes the audio output context. This fails on headless machines
// with no sound device.
func New() (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   outputSampleRate,
		ChannelCount: outputChannels,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}
	<-ready

	return &Player{otoCtx: otoCtx}, nil
}

// PlayFile decodes a .wav or .mp3 file and plays it to completion.
func (p *Player) PlayFile(path string) error {
	fileData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	var pcmData []byte
	var sampleRate int
	var channelCount int

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		wavReader := wav.NewReader(bytes.NewReader(fileData))
		format, err := wavReader.Format()
		if err != nil {
			return fmt.Errorf("failed to get wav format: %w", err)
		}
		wavReader = wav.NewReader(bytes.NewReader(fileData))
		pcmData, err = io.ReadAll(wavReader)
		if err != nil {
			return fmt.Errorf("failed to decode wav data: %w", err)
		}
		sampleRate = int(format.SampleRate)
		channelCount = int(format.NumChannels)

	case ".mp3":
		decoder, err := mp3.NewDecoder(bytes.NewReader(fileData))
		if err != nil {
			return fmt.Errorf("failed to create mp3 decoder: %w", err)
		}
		pcmData, err = io.ReadAll(decoder)
		if err != nil {
			return fmt.Errorf("failed to decode mp3 data: %w", err)
		}
		sampleRate = decoder.SampleRate()
		channelCount = 2

	default:
		return fmt.Errorf("unsupported audio file %q", filepath.Base(path))
	}

	if len(pcmData) == 0 {
		slog.Info("nothing to play", "path", path)
		return nil
	}

	if sampleRate != outputSampleRate || channelCount != outputChannels {
		pcmData = convertAudio(pcmData, sampleRate, channelCount, outputSampleRate, outputChannels)
	}

	player := p.otoCtx.NewPlayer(bytes.NewReader(pcmData))
	defer player.Close()
	player.Play()

	for player.IsPlaying() {
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}

// convertAudio converts 16-bit PCM from one sample rate and channel count to
// another, duplicating mono into stereo and resampling with linear
// interpolation.
func convertAudio(pcmData []byte, fromRate, fromChannels, toRate, toChannels int) []byte {
	sampleCount := len(pcmData) / 2
	samples := make([]int16, sampleCount)
	for i := 0; i < sampleCount; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcmData[i*2 : i*2+2]))
	}

	if fromChannels == 1 && toChannels == 2 {
		stereo := make([]int16, sampleCount*2)
		for i, s := range samples {
			stereo[i*2] = s
			stereo[i*2+1] = s
		}
		samples = stereo
	}

	if fromRate != toRate {
		ratio := float64(toRate) / float64(fromRate)
		newCount := int(float64(len(samples)) * ratio)
		resampled := make([]int16, newCount)

		for i := 0; i < newCount; i++ {
			srcPos := float64(i) / ratio
			srcIdx := int(srcPos)

			if srcIdx >= len(samples)-1 {
				resampled[i] = samples[len(samples)-1]
				continue
			}
			frac := srcPos - float64(srcIdx)
			s1 := float64(samples[srcIdx])
			s2 := float64(samples[srcIdx+1])
			resampled[i] = int16(s1 + (s2-s1)*frac)
		}
		samples = resampled
	}

	result := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(result[i*2:i*2+2], uint16(sample))
	}
	return result
}
