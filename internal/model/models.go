package model

import "time"

// Run describes one completed spectrogram computation.
// Params mirror the configuration the matrix was produced with.
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
	Elapsed        time.Duration
	CreatedAt      time.Time
	// PeakBins is the loudest bin of each frame. Only filled on request.
	PeakBins []int
}
