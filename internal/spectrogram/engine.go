package spectrogram

import (
	"math"

	"github.com/himanishpuri/spectrodft/internal/audio"
)

// SilenceFloor replaces 10*log10(power) for bins with zero power.
const SilenceFloor = -100.0

// MagnitudeRow is one frame of the spectrogram in dB, floor(A/2)+1 values.
type MagnitudeRow []float64

// Engine binds a signal to a window, a basis and a layout. After NewEngine
// returns, nothing in it is mutated, so Frame can run from many goroutines
// as long as each caller brings its own Scratch.
type Engine struct {
	signal []int16
	window *Window
	basis  *Basis
	layout Layout
}

// Scratch holds the per-worker frame and spectrum buffers.
type Scratch struct {
	frame []float64
	re    []float64
	im    []float64
}

// NewEngine builds the window and the DFT basis for cfg against store.
func NewEngine(store *audio.SampleStore, cfg Config) (*Engine, error) {
	layout, err := cfg.Layout(store)
	if err != nil {
		return nil, err
	}
	window, err := NewWindow(cfg.Window, layout.AnalysisSamples)
	if err != nil {
		return nil, err
	}
	basis, err := NewBasis(layout.TransformSize)
	if err != nil {
		return nil, err
	}
	return &Engine{
		signal: store.Samples,
		window: window,
		basis:  basis,
		layout: layout,
	}, nil
}

func (e *Engine) Layout() Layout { return e.layout }

func (e *Engine) Window() *Window { return e.window }

// NewScratch allocates buffers sized for this engine's transform.
func (e *Engine) NewScratch() *Scratch {
	n := e.basis.Size()
	return &Scratch{
		frame: make([]float64, n),
		re:    make([]float64, n),
		im:    make([]float64, n),
	}
}

// Frame computes the magnitude row for frame k into a fresh slice.
func (e *Engine) Frame(k int, s *Scratch) MagnitudeRow {
	ExtractFrame(e.signal, e.window, e.layout, k, s.frame)
	e.basis.TransformReal(s.frame, s.re, s.im)

	row := make(MagnitudeRow, e.layout.Bins())
	HalfSpectrumDB(s.re, s.im, row)
	return row
}

// HalfSpectrumDB writes 10*log10(re²+im²) for bins [0, len(dst)) into dst,
// using SilenceFloor where the power is zero.
func HalfSpectrumDB(re, im []float64, dst []float64) {
	for n := range dst {
		power := re[n]*re[n] + im[n]*im[n]
		if power > 0 {
			dst[n] = 10 * math.Log10(power)
		} else {
			dst[n] = SilenceFloor
		}
	}
}
