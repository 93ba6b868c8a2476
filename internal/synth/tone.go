// Package synth generates gated test tones and writes them as WAV files.
package synth

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/himanishpuri/spectrodft/internal/audio"
	"github.com/himanishpuri/spectrodft/internal/model"
)

// DefaultGate is how long a tone sounds before the gate closes.
const DefaultGate = 100 * time.Millisecond

type Waveform int

const (
	Sine Waveform = iota
	Sawtooth
	Square
	Triangle
)

var waveformNames = [...]string{"sine", "sawtooth", "square", "triangle"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// ParseWaveform accepts the lower-case names returned by String.
func ParseWaveform(s string) (Waveform, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("unknown waveform %q: %w", s, model.ErrInvalidArgument)
}

func (w Waveform) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Waveform) UnmarshalText(text []byte) error {
	parsed, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Tone describes one generated signal.
type Tone struct {
	Waveform   Waveform
	Frequency  float64 // Hz
	Amplitude  float64 // peak value in sample units
	SampleRate uint32
	Duration   time.Duration // signal length
	Gate       time.Duration // zero means DefaultGate
}

func (t Tone) validate() error {
	switch {
	case t.SampleRate == 0:
		return fmt.Errorf("tone sample rate is 0: %w", model.ErrInvalidArgument)
	case t.Duration < 0:
		return fmt.Errorf("tone duration %v: %w", t.Duration, model.ErrInvalidArgument)
	case t.Frequency < 0:
		return fmt.Errorf("tone frequency %g: %w", t.Frequency, model.ErrInvalidArgument)
	case t.Waveform < Sine || t.Waveform > Triangle:
		return fmt.Errorf("waveform %v: %w", t.Waveform, model.ErrInvalidArgument)
	}
	return nil
}

// shape returns the unit waveform value at time ts.
func (t Tone) shape(ts float64) float64 {
	phase := t.Frequency * ts
	switch t.Waveform {
	case Sawtooth:
		return phase - math.Floor(phase)
	case Square:
		if math.Sin(2*math.Pi*phase) > 0 {
			return 1
		}
		return -1
	case Triangle:
		return 2*math.Abs(2*(phase-math.Floor(phase+0.5))) - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Generate renders the tone. The gate is open for 0 < t <= Gate, so the
// first sample is always zero; values are truncated toward zero.
func Generate(t Tone) (*audio.SampleStore, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	gate := t.Gate
	if gate == 0 {
		gate = DefaultGate
	}
	gateEnd := gate.Seconds()

	n, err := audio.SamplesIn(t.Duration, t.SampleRate)
	if err != nil {
		return nil, err
	}
	samples := make([]int16, n)
	for i := range samples {
		ts := float64(i) / float64(t.SampleRate)
		if ts <= 0 || ts > gateEnd {
			continue
		}
		v := t.Amplitude * t.shape(ts)
		samples[i] = int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, v)))
	}
	return &audio.SampleStore{Samples: samples, SampleRate: t.SampleRate}, nil
}

// FileName is the conventional name of a tone file, e.g.
// waveform_sine_freq_440_8k.wav.
func (t Tone) FileName() string {
	return fmt.Sprintf("waveform_%s_freq_%d_%dk.wav", t.Waveform, int(t.Frequency), t.SampleRate/1000)
}

// Label is the manifest label of a tone, e.g. label_waveType0_freq440_sr8000.
func (t Tone) Label() string {
	return fmt.Sprintf("label_waveType%d_freq%d_sr%d", int(t.Waveform), int(t.Frequency), t.SampleRate)
}
