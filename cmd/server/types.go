package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/himanishpuri/spectrodft/pkg/spectrodft"
)

// Upload limits for POST /api/spectrogram
const (
	// MaxUploadBytes bounds the multipart body (~25 minutes of 16 kHz mono)
	MaxUploadBytes = 50 << 20

	// LargeUploadThreshold triggers logging for big uploads
	LargeUploadThreshold = 10 << 20
)

// SpectrogramRequest holds the form fields of POST /api/spectrogram. Empty
// fields keep their defaults.
type SpectrogramRequest struct {
	AnalysisWindow string
	DFTWindow      string
	FrameInterval  string
	Window         string
	SampleRate     string
	SampleCount    string
}

// Params converts the form fields, starting from the default parameters.
func (r *SpectrogramRequest) Params() (spectrodft.Params, error) {
	p := spectrodft.DefaultParams()

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"analysis_window", r.AnalysisWindow, &p.AnalysisWindow},
		{"dft_window", r.DFTWindow, &p.DFTWindow},
		{"frame_interval", r.FrameInterval, &p.FrameInterval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return p, fmt.Errorf("invalid %s: %q", d.name, d.value)
		}
		*d.dst = v
	}

	if r.Window != "" {
		wt, err := spectrodft.ParseWindowType(r.Window)
		if err != nil {
			return p, fmt.Errorf("invalid window: %q", r.Window)
		}
		p.Window = wt
	}
	if r.SampleRate != "" {
		v, err := strconv.ParseUint(r.SampleRate, 10, 32)
		if err != nil {
			return p, fmt.Errorf("invalid sample_rate: %q", r.SampleRate)
		}
		p.SampleRate = uint32(v)
	}
	if r.SampleCount != "" {
		v, err := strconv.Atoi(r.SampleCount)
		if err != nil {
			return p, fmt.Errorf("invalid sample_count: %q", r.SampleCount)
		}
		p.SampleCount = v
	}

	return p, p.Validate()
}

// RunDTO represents a catalogued run in API responses
type RunDTO struct {
	ID             string `json:"id"`
	InputPath      string `json:"input_path"`
	OutputPath     string `json:"output_path"`
	SampleRate     uint32 `json:"sample_rate"`
	SampleCount    int    `json:"sample_count"`
	AnalysisWindow string `json:"analysis_window"`
	DFTWindow      string `json:"dft_window"`
	FrameInterval  string `json:"frame_interval"`
	WindowType     string `json:"window"`
	TransformSize  int    `json:"transform_size"`
	HopSamples     int    `json:"hop_samples"`
	Frames         int    `json:"frames"`
	Bins           int    `json:"bins"`
	PeakBins       []int  `json:"peak_bins,omitempty"`
	ElapsedMs      int64  `json:"elapsed_ms"`
	CreatedAt      string `json:"created_at"`
	Age            string `json:"age"`
}

func toRunDTO(run *spectrodft.Run) RunDTO {
	return RunDTO{
		ID:             run.ID,
		InputPath:      run.InputPath,
		OutputPath:     run.OutputPath,
		SampleRate:     run.SampleRate,
		SampleCount:    run.SampleCount,
		AnalysisWindow: run.AnalysisWindow.String(),
		DFTWindow:      run.DFTWindow.String(),
		FrameInterval:  run.FrameInterval.String(),
		WindowType:     run.WindowType,
		TransformSize:  run.TransformSize,
		HopSamples:     run.HopSamples,
		Frames:         run.Frames,
		Bins:           run.Bins,
		PeakBins:       run.PeakBins,
		ElapsedMs:      run.Elapsed.Milliseconds(),
		CreatedAt:      run.CreatedAt.Format(time.RFC3339),
		Age:            humanize.Time(run.CreatedAt),
	}
}

// ListRunsResponse is the response for GET /api/runs
type ListRunsResponse struct {
	Runs  []RunDTO `json:"runs"`
	Count int      `json:"count"`
}

// DeleteRunResponse is the response for DELETE /api/runs/{id}
type DeleteRunResponse struct {
	Message       string `json:"message"`
	ID            string `json:"id"`
	OutputRemoved bool   `json:"output_removed"`
}

// MetricsResponse provides server health and catalog metrics
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	RunCount     int    `json:"run_count"`
	Workers      int    `json:"workers"`
	MaxUpload    string `json:"max_upload"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
