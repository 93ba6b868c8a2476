package spectrogram

import (
	"fmt"

	"github.com/himanishpuri/spectrodft/internal/model"
)

// Layout fixes the sample geometry of one spectrogram run.
type Layout struct {
	AnalysisSamples int // A: samples windowed per frame
	TransformSize   int // N: DFT length, N >= A
	HopSamples      int // H: offset between frame starts
	SampleCount     int // S: samples available in the signal
}

func (l Layout) validate() error {
	switch {
	case l.AnalysisSamples <= 0:
		return fmt.Errorf("analysis window of %d samples: %w", l.AnalysisSamples, model.ErrInvalidArgument)
	case l.TransformSize > MaxTransformSize:
		return fmt.Errorf("transform size %d exceeds %d: %w", l.TransformSize, MaxTransformSize, model.ErrAllocation)
	case l.TransformSize < l.AnalysisSamples:
		return fmt.Errorf("transform size %d smaller than analysis window %d: %w",
			l.TransformSize, l.AnalysisSamples, model.ErrInvalidArgument)
	case l.HopSamples <= 0:
		return fmt.Errorf("frame interval of %d samples: %w", l.HopSamples, model.ErrInvalidArgument)
	case l.SampleCount < 0:
		return fmt.Errorf("sample count %d: %w", l.SampleCount, model.ErrInvalidArgument)
	}
	return nil
}

// FrameCount is floor(S/H). The last frames run past S and are zero-padded.
func (l Layout) FrameCount() int {
	if l.HopSamples <= 0 {
		return 0
	}
	return l.SampleCount / l.HopSamples
}

// Bins is the number of emitted magnitude columns, floor(A/2)+1.
func (l Layout) Bins() int {
	return l.AnalysisSamples/2 + 1
}

// ExtractFrame fills dst (length N) with frame k of signal multiplied by the
// window. Samples at or beyond SampleCount, and positions [A, N), are zero.
func ExtractFrame(signal []int16, win *Window, l Layout, k int, dst []float64) {
	start := k * l.HopSamples
	for n := 0; n < l.AnalysisSamples; n++ {
		if idx := start + n; idx < l.SampleCount {
			dst[n] = float64(signal[idx]) * win.At(n)
		} else {
			dst[n] = 0
		}
	}
	for n := l.AnalysisSamples; n < l.TransformSize; n++ {
		dst[n] = 0
	}
}
