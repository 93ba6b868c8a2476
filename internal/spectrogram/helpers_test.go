package spectrogram

import (
	"math"
	"testing"

	"github.com/himanishpuri/spectrodft/internal/audio"
)

// sineStore returns n samples of amplitude*sin(2*pi*freq*t) at sampleRate.
func sineStore(sampleRate uint32, freq, amplitude float64, n int) *audio.SampleStore {
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = int16(amplitude * math.Sin(2*math.Pi*freq*t))
	}
	return &audio.SampleStore{Samples: samples, SampleRate: sampleRate}
}

func silentStore(sampleRate uint32, n int) *audio.SampleStore {
	return &audio.SampleStore{Samples: make([]int16, n), SampleRate: sampleRate}
}

func assertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: expected %.12f, got %.12f (tolerance %g)", name, want, got, tol)
	}
}
