package spectrogram

import (
	"fmt"
	"math"
	"strings"

	"github.com/himanishpuri/spectrodft/internal/model"
)

// WindowType selects the analysis window applied to each frame.
type WindowType int

const (
	Rectangular WindowType = iota
	Hamming
)

func (t WindowType) String() string {
	switch t {
	case Rectangular:
		return "rectangular"
	case Hamming:
		return "hamming"
	default:
		return fmt.Sprintf("WindowType(%d)", int(t))
	}
}

// ParseWindowType accepts "rectangular"/"rect" and "hamming" (any case).
func ParseWindowType(s string) (WindowType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangular", "rect", "boxcar":
		return Rectangular, nil
	case "hamming":
		return Hamming, nil
	}
	return 0, fmt.Errorf("window type %q: %w", s, model.ErrInvalidArgument)
}

// MarshalText lets WindowType round-trip through YAML and JSON as a name.
func (t WindowType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *WindowType) UnmarshalText(text []byte) error {
	parsed, err := ParseWindowType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Window is an immutable coefficient vector. It is safe for concurrent reads.
type Window struct {
	kind         WindowType
	coefficients []float64
}

// NewWindow generates coefficients for the given type and length.
func NewWindow(t WindowType, length int) (*Window, error) {
	if length <= 0 {
		return nil, fmt.Errorf("window length %d: %w", length, model.ErrInvalidArgument)
	}

	w := &Window{kind: t, coefficients: make([]float64, length)}
	switch t {
	case Rectangular:
		for i := range w.coefficients {
			w.coefficients[i] = 1.0
		}
	case Hamming:
		if length == 1 {
			return nil, fmt.Errorf("hamming window needs length >= 2, got 1: %w", model.ErrInvalidArgument)
		}
		denominator := float64(length - 1)
		for i := range w.coefficients {
			w.coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
		}
	default:
		return nil, fmt.Errorf("unknown window type %d: %w", int(t), model.ErrInvalidArgument)
	}
	return w, nil
}

// RectangularWindow returns a window of ones.
func RectangularWindow(length int) (*Window, error) {
	return NewWindow(Rectangular, length)
}

// HammingWindow returns 0.54 - 0.46*cos(2*pi*i/(length-1)).
func HammingWindow(length int) (*Window, error) {
	return NewWindow(Hamming, length)
}

func (w *Window) Type() WindowType { return w.kind }

func (w *Window) Len() int { return len(w.coefficients) }

// At returns coefficient i.
func (w *Window) At(i int) float64 { return w.coefficients[i] }

// Coefficients returns a copy of the window coefficients
func (w *Window) Coefficients() []float64 {
	coeffs := make([]float64, len(w.coefficients))
	copy(coeffs, w.coefficients)
	return coeffs
}
