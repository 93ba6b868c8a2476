package spectrogram

import (
	"errors"
	"math"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/spectrodft/internal/model"
)

func TestConfigLayout(t *testing.T) {
	tests := []struct {
		name  string
		rate  uint32
		cfg   Config
		want  Layout
		total int
	}{
		{
			name:  "Default at 8k",
			rate:  8000,
			cfg:   DefaultConfig(),
			total: 800,
			want:  Layout{AnalysisSamples: 256, TransformSize: 256, HopSamples: 80, SampleCount: 800},
		},
		{
			name:  "Padded at 16k",
			rate:  16000,
			cfg:   Config{AnalysisWindow: 30 * time.Millisecond, DFTWindow: 32 * time.Millisecond, FrameInterval: 10 * time.Millisecond, Window: Hamming},
			total: 1600,
			want:  Layout{AnalysisSamples: 480, TransformSize: 512, HopSamples: 160, SampleCount: 1600},
		},
		{
			name:  "Sample count limit",
			rate:  8000,
			cfg:   Config{SampleRate: 8000, AnalysisWindow: 32 * time.Millisecond, DFTWindow: 32 * time.Millisecond, FrameInterval: 32 * time.Millisecond, SampleCount: 512},
			total: 2000,
			want:  Layout{AnalysisSamples: 256, TransformSize: 256, HopSamples: 256, SampleCount: 512},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Layout(silentStore(tt.rate, tt.total))
			if err != nil {
				t.Fatalf("Layout failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Layout() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfigLayoutErrors(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
		rate   uint32
	}{
		{name: "Rate mismatch", rate: 8000, mutate: func(c *Config) { c.SampleRate = 16000 }},
		{name: "DFT shorter than analysis", rate: 8000, mutate: func(c *Config) { c.DFTWindow = 20 * time.Millisecond }},
		{name: "Zero analysis", rate: 8000, mutate: func(c *Config) { c.AnalysisWindow = 0; c.DFTWindow = 0 }},
		{name: "Negative interval", rate: 8000, mutate: func(c *Config) { c.FrameInterval = -time.Millisecond }},
		{name: "Interval below one sample", rate: 8000, mutate: func(c *Config) { c.FrameInterval = 100 * time.Microsecond }},
		{name: "Sample count too large", rate: 8000, mutate: func(c *Config) { c.SampleCount = 801 }},
		{name: "Negative sample count", rate: 8000, mutate: func(c *Config) { c.SampleCount = -1 }},
		{name: "Unknown window", rate: 8000, mutate: func(c *Config) { c.Window = WindowType(5) }},
		{name: "Zero decoded rate", rate: 0, mutate: func(c *Config) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			_, err := cfg.Layout(silentStore(tt.rate, 800))
			if !errors.Is(err, model.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestConfigLayoutTooLarge(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "Default windows", mutate: func(c *Config) {}},
		{name: "Three second window", mutate: func(c *Config) { c.AnalysisWindow = 3 * time.Second; c.DFTWindow = 3 * time.Second }},
		{name: "Overflowing window", mutate: func(c *Config) { c.AnalysisWindow = math.MaxInt64; c.DFTWindow = math.MaxInt64 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := cfg.Layout(silentStore(math.MaxUint32, 800))
			if !errors.Is(err, model.ErrAllocation) {
				t.Errorf("Expected ErrAllocation, got %v", err)
			}
		})
	}
}

func TestConfigYAML(t *testing.T) {
	src := `
sample_rate: 16000
analysis_window: 30ms
dft_window: 32ms
frame_interval: 10ms
window: hamming
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(src), &cfg); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}

	want := Config{
		SampleRate:     16000,
		AnalysisWindow: 30 * time.Millisecond,
		DFTWindow:      32 * time.Millisecond,
		FrameInterval:  10 * time.Millisecond,
		Window:         Hamming,
	}
	if cfg != want {
		t.Errorf("decoded %+v, want %+v", cfg, want)
	}
}
