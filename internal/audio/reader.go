package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"
	"time"

	"github.com/himanishpuri/spectrodft/internal/model"
)

// Canonical PCM WAV layout: RIFF(12) + fmt(24) + data header(8).
const (
	HeaderSize       = 44
	sampleRateOffset = 24
)

// SampleStore holds decoded mono 16-bit samples and their rate.
// It is built by DecodeWAV and treated as read-only afterwards.
type SampleStore struct {
	Samples    []int16
	SampleRate uint32
}

// Len returns the number of decoded samples.
func (s *SampleStore) Len() int {
	return len(s.Samples)
}

// Duration returns the signal length at the store's sample rate.
func (s *SampleStore) Duration() time.Duration {
	if s.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(s.Samples)) * time.Second / time.Duration(s.SampleRate)
}

// SamplesIn converts d to a whole number of samples at rate, truncating.
// The product d·rate is computed in 128 bits; a count that does not fit in
// an int is an allocation failure.
func SamplesIn(d time.Duration, rate uint32) (int, error) {
	if d < 0 {
		return 0, fmt.Errorf("duration %v: %w", d, model.ErrInvalidArgument)
	}
	hi, lo := bits.Mul64(uint64(d), uint64(rate))
	if hi >= uint64(time.Second) {
		return 0, fmt.Errorf("%v at %d Hz: %w", d, rate, model.ErrAllocation)
	}
	n, _ := bits.Div64(hi, lo, uint64(time.Second))
	if n > math.MaxInt {
		return 0, fmt.Errorf("%v at %d Hz: %w", d, rate, model.ErrAllocation)
	}
	return int(n), nil
}

// Float64 returns the unscaled sample values as float64.
func (s *SampleStore) Float64() []float64 {
	out := make([]float64, len(s.Samples))
	for i, v := range s.Samples {
		out[i] = float64(v)
	}
	return out
}

// decodePCM16 combines byte pairs into samples. The second byte of each
// pair is the most significant one; a trailing odd byte is dropped.
func decodePCM16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		lo := data[2*i]
		hi := data[2*i+1]
		samples[i] = int16(uint16(hi)<<8 | uint16(lo))
	}
	return samples
}

// DecodeWAV reads a canonical 44-byte-header PCM WAV stream. Only the sample
// rate (offset 24) and the data region (offset 44 onwards) are consumed;
// chunk IDs, format, channel count and bit depth are not validated.
func DecodeWAV(r io.Reader) (*SampleStore, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav stream: %v: %w", err, model.ErrIO)
	}
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("wav stream is %d bytes, need at least %d: %w", len(raw), HeaderSize, model.ErrIO)
	}

	return &SampleStore{
		Samples:    decodePCM16(raw[HeaderSize:]),
		SampleRate: binary.LittleEndian.Uint32(raw[sampleRateOffset : sampleRateOffset+4]),
	}, nil
}

// ReadWAV opens path and decodes it with DecodeWAV.
func ReadWAV(path string) (*SampleStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v: %w", path, err, model.ErrIO)
	}
	defer f.Close()

	store, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}
