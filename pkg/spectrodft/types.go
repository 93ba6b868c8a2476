package spectrodft

import (
	"time"

	"github.com/himanishpuri/spectrodft/internal/audio"
	"github.com/himanishpuri/spectrodft/internal/cascade"
	"github.com/himanishpuri/spectrodft/internal/spectrogram"
	"github.com/himanishpuri/spectrodft/internal/synth"
)

// Params selects the analysis geometry of a run: window lengths, hop,
// window shape and optional sample rate / sample count checks.
type Params = spectrogram.Config

type WindowType = spectrogram.WindowType

const (
	Rectangular = spectrogram.Rectangular
	Hamming     = spectrogram.Hamming
)

// DefaultParams is 32 ms analysis and DFT windows, 10 ms hop, rectangular.
func DefaultParams() Params {
	return spectrogram.DefaultConfig()
}

// ParseWindowType accepts "rectangular" (or "rect") and "hamming".
func ParseWindowType(s string) (WindowType, error) {
	return spectrogram.ParseWindowType(s)
}

// Run is one computed spectrogram.
type Run struct {
	ID             string
	InputPath      string
	OutputPath     string
	SampleRate     uint32
	SampleCount    int
	AnalysisWindow time.Duration
	DFTWindow      time.Duration
	FrameInterval  time.Duration
	WindowType     string
	TransformSize  int
	HopSamples     int
	Frames         int
	Bins           int
	PeakBins       []int // loudest bin per frame
	Elapsed        time.Duration
	CreatedAt      time.Time
}

// PeakFrequency converts a bin index of this run to Hz.
func (r *Run) PeakFrequency(bin int) float64 {
	if r.TransformSize == 0 {
		return 0
	}
	return float64(bin) * float64(r.SampleRate) / float64(r.TransformSize)
}

// MatrixInfo summarizes a matrix file.
type MatrixInfo struct {
	Path     string
	Frames   int
	Bins     int
	Min      float64
	Max      float64
	PeakBins []int
	Bytes    int64
}

// BatchFailure names the input and parameter set of a failed batch run.
type BatchFailure struct {
	Input string
	Set   string
	Err   error
}

type BatchResult struct {
	Runs     []Run
	Failures []BatchFailure
	Elapsed  time.Duration
}

type (
	ToneSet       = synth.ToneSet
	ToneComponent = synth.Component
	Waveform      = synth.Waveform
	ManifestEntry = audio.ManifestEntry
	ConcatResult  = cascade.Result
)

const (
	Sine     = synth.Sine
	Sawtooth = synth.Sawtooth
	Square   = synth.Square
	Triangle = synth.Triangle
)

// DefaultToneSet is four waveforms × ten tones at 8 and 16 kHz.
func DefaultToneSet() ToneSet {
	return synth.DefaultToneSet()
}
