package spectrogram

import (
	"fmt"
	"time"

	"github.com/himanishpuri/spectrodft/internal/audio"
	"github.com/himanishpuri/spectrodft/internal/model"
)

// Defaults used by the reference runs: 32 ms windows, 10 ms hop.
const (
	DefaultAnalysisWindow = 32 * time.Millisecond
	DefaultDFTWindow      = 32 * time.Millisecond
	DefaultFrameInterval  = 10 * time.Millisecond
)

// Config is the per-invocation parameter set.
type Config struct {
	// SampleRate must match the decoded audio; zero accepts whatever the file says.
	SampleRate     uint32        `yaml:"sample_rate,omitempty"`
	AnalysisWindow time.Duration `yaml:"analysis_window"`
	DFTWindow      time.Duration `yaml:"dft_window"`
	FrameInterval  time.Duration `yaml:"frame_interval"`
	Window         WindowType    `yaml:"window"`
	// SampleCount limits analysis to the first SampleCount samples; zero means all.
	SampleCount int `yaml:"sample_count,omitempty"`
}

// DefaultConfig returns the 32 ms / 32 ms / 10 ms rectangular configuration.
func DefaultConfig() Config {
	return Config{
		AnalysisWindow: DefaultAnalysisWindow,
		DFTWindow:      DefaultDFTWindow,
		FrameInterval:  DefaultFrameInterval,
		Window:         Rectangular,
	}
}

// Validate checks the parameters that do not depend on the signal.
func (c Config) Validate() error {
	if c.AnalysisWindow <= 0 {
		return fmt.Errorf("analysis_window %v must be positive: %w", c.AnalysisWindow, model.ErrInvalidArgument)
	}
	if c.DFTWindow <= 0 {
		return fmt.Errorf("dft_window %v must be positive: %w", c.DFTWindow, model.ErrInvalidArgument)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval %v must be positive: %w", c.FrameInterval, model.ErrInvalidArgument)
	}
	if c.DFTWindow < c.AnalysisWindow {
		return fmt.Errorf("dft_window %v shorter than analysis_window %v: %w",
			c.DFTWindow, c.AnalysisWindow, model.ErrInvalidArgument)
	}
	if c.SampleCount < 0 {
		return fmt.Errorf("sample_count %d: %w", c.SampleCount, model.ErrInvalidArgument)
	}
	if c.Window != Rectangular && c.Window != Hamming {
		return fmt.Errorf("window %v: %w", c.Window, model.ErrInvalidArgument)
	}
	return nil
}

// Layout validates c against store and derives the sample geometry.
func (c Config) Layout(store *audio.SampleStore) (Layout, error) {
	if err := c.Validate(); err != nil {
		return Layout{}, err
	}
	if store.SampleRate == 0 {
		return Layout{}, fmt.Errorf("decoded sample rate is 0: %w", model.ErrInvalidArgument)
	}
	if c.SampleRate != 0 && c.SampleRate != store.SampleRate {
		return Layout{}, fmt.Errorf("sample_rate %d does not match decoded audio rate %d: %w",
			c.SampleRate, store.SampleRate, model.ErrInvalidArgument)
	}

	count := c.SampleCount
	if count == 0 {
		count = store.Len()
	}
	if count > store.Len() {
		return Layout{}, fmt.Errorf("sample_count %d exceeds %d decoded samples: %w",
			count, store.Len(), model.ErrInvalidArgument)
	}

	l := Layout{SampleCount: count}
	for _, f := range []struct {
		d   time.Duration
		dst *int
	}{
		{c.AnalysisWindow, &l.AnalysisSamples},
		{c.DFTWindow, &l.TransformSize},
		{c.FrameInterval, &l.HopSamples},
	} {
		n, err := audio.SamplesIn(f.d, store.SampleRate)
		if err != nil {
			return Layout{}, err
		}
		*f.dst = n
	}
	if err := l.validate(); err != nil {
		return Layout{}, fmt.Errorf("at %d Hz: %w", store.SampleRate, err)
	}
	return l, nil
}
