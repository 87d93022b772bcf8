package alert

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// DefaultSampleRate is the sample rate tones are rendered at
const DefaultSampleRate = 22050

// Render mixes the tone's notes into mono samples in [-1, 1]
func Render(t Tone, sampleRate int) []float64 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	samples := make([]float64, samplesFor(t.Length(), sampleRate))

	for _, n := range t.Notes {
		first := samplesFor(n.Start, sampleRate)
		count := samplesFor(n.Duration, sampleRate)
		if count == 0 {
			continue
		}

		for i := 0; i < count && first+i < len(samples); i++ {
			progress := float64(i) / float64(count)
			phase := 2 * math.Pi * n.Frequency * float64(i) / float64(sampleRate)
			samples[first+i] += math.Sin(phase) * gain(n, progress)
		}
	}

	for i, v := range samples {
		samples[i] = math.Max(-1, math.Min(1, v))
	}

	return samples
}

// gain returns the envelope level of n at progress in [0, 1)
func gain(n Note, progress float64) float64 {
	if n.Amplitude <= 0 {
		return 0
	}

	switch n.Envelope {
	case EnvelopeLinear:
		return n.Amplitude * (1 - progress)
	default:
		if n.Amplitude <= decayFloor {
			return n.Amplitude
		}
		return n.Amplitude * math.Pow(decayFloor/n.Amplitude, progress)
	}
}

func samplesFor(d time.Duration, sampleRate int) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds() * float64(sampleRate))
}

// wavHeader is the canonical 44-byte RIFF/WAVE header for 16-bit mono PCM
type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// EncodeWAV encodes samples as 16-bit mono PCM WAV
func EncodeWAV(samples []float64, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	dataSize := uint32(len(samples) * 2)
	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * 2),
		BlockAlign:    2,
		BitsPerSample: 16,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}

	pcm := make([]int16, len(samples))
	for i, v := range samples {
		pcm[i] = int16(math.Round(math.Max(-1, math.Min(1, v)) * math.MaxInt16))
	}
	if err := binary.Write(buf, binary.LittleEndian, pcm); err != nil {
		return nil, fmt.Errorf("failed to write WAV samples: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderWAV renders t and encodes it as WAV
func RenderWAV(t Tone, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return EncodeWAV(Render(t, sampleRate), sampleRate)
}
