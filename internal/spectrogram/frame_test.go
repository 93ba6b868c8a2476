package spectrogram

import "testing"

func TestLayoutCounts(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		frames int
		bins   int
	}{
		{name: "Even hop", layout: Layout{AnalysisSamples: 256, TransformSize: 256, HopSamples: 80, SampleCount: 800}, frames: 10, bins: 129},
		{name: "Remainder dropped", layout: Layout{AnalysisSamples: 240, TransformSize: 256, HopSamples: 80, SampleCount: 879}, frames: 10, bins: 121},
		{name: "Odd analysis", layout: Layout{AnalysisSamples: 5, TransformSize: 8, HopSamples: 2, SampleCount: 3}, frames: 1, bins: 3},
		{name: "Shorter than hop", layout: Layout{AnalysisSamples: 4, TransformSize: 4, HopSamples: 10, SampleCount: 9}, frames: 0, bins: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layout.FrameCount(); got != tt.frames {
				t.Errorf("FrameCount() = %d, want %d", got, tt.frames)
			}
			if got := tt.layout.Bins(); got != tt.bins {
				t.Errorf("Bins() = %d, want %d", got, tt.bins)
			}
		})
	}
}

func TestExtractFrameZeroPadding(t *testing.T) {
	signal := []int16{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	l := Layout{AnalysisSamples: 4, TransformSize: 6, HopSamples: 3, SampleCount: 8}
	win, _ := RectangularWindow(4)

	dst := make([]float64, 6)
	for i := range dst {
		dst[i] = 99
	}

	ExtractFrame(signal, win, l, 0, dst)
	want := []float64{1, 2, 3, 4, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("frame 0 position %d: got %g, want %g", i, dst[i], want[i])
		}
	}

	// samples 8 and 9 exist in the slice but lie beyond SampleCount
	ExtractFrame(signal, win, l, 2, dst)
	want = []float64{7, 8, 0, 0, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("frame 2 position %d: got %g, want %g", i, dst[i], want[i])
		}
	}
}

func TestExtractFrameAppliesWindow(t *testing.T) {
	signal := []int16{100, 100, 100, 100, 100}
	l := Layout{AnalysisSamples: 5, TransformSize: 5, HopSamples: 5, SampleCount: 5}
	win, _ := HammingWindow(5)

	dst := make([]float64, 5)
	ExtractFrame(signal, win, l, 0, dst)

	for i := range dst {
		assertClose(t, "windowed sample", dst[i], 100*win.At(i), 1e-12)
	}
	assertClose(t, "edge", dst[0], 8, 1e-9)
	assertClose(t, "centre", dst[2], 100, 1e-9)
}
