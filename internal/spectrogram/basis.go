package spectrogram

import (
	"fmt"
	"math"

	"github.com/himanishpuri/spectrodft/internal/model"
)

// MaxTransformSize caps N so the two N×N tables stay around 1 GiB.
const MaxTransformSize = 8192

// Basis holds precomputed cosine and sine tables for an N-point DFT,
// row-major: cos[i*N+j] = cos(2*pi*i*j/N). The transform is deliberately
// the O(N²) matrix form; do not swap in an FFT, the output is compared
// against reference matrices produced this way.
type Basis struct {
	n   int
	cos []float64
	sin []float64
}

// NewBasis builds the tables for transform size n.
func NewBasis(n int) (*Basis, error) {
	if n <= 0 {
		return nil, fmt.Errorf("transform size %d: %w", n, model.ErrInvalidArgument)
	}
	if n > MaxTransformSize || n > math.MaxInt/n {
		return nil, fmt.Errorf("transform size %d exceeds %d: %w", n, MaxTransformSize, model.ErrAllocation)
	}

	b := &Basis{
		n:   n,
		cos: make([]float64, n*n),
		sin: make([]float64, n*n),
	}
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// i*j mod n keeps the angle small so both triangles agree exactly
			rad := step * float64((i*j)%n)
			c, s := math.Cos(rad), math.Sin(rad)
			b.cos[i*n+j], b.cos[j*n+i] = c, c
			b.sin[i*n+j], b.sin[j*n+i] = s, s
		}
	}
	return b, nil
}

// Size returns N.
func (b *Basis) Size() int { return b.n }

func (b *Basis) Cos(i, j int) float64 { return b.cos[i*b.n+j] }

func (b *Basis) Sin(i, j int) float64 { return b.sin[i*b.n+j] }

// Transform computes
//
//	XRe[i] = Σ xRe[j]·cos[i][j] − xIm[j]·sin[i][j]
//	XIm[i] = Σ xIm[j]·cos[i][j] + xRe[j]·sin[i][j]
//
// All slices must have length N. Non-finite input propagates.
func (b *Basis) Transform(xRe, xIm, XRe, XIm []float64) {
	n := b.n
	xRe, xIm = xRe[:n], xIm[:n]
	XRe, XIm = XRe[:n], XIm[:n]
	for i := 0; i < n; i++ {
		cosRow := b.cos[i*n : (i+1)*n]
		sinRow := b.sin[i*n : (i+1)*n]
		var re, im float64
		for j := 0; j < n; j++ {
			re += xRe[j]*cosRow[j] - xIm[j]*sinRow[j]
			im += xIm[j]*cosRow[j] + xRe[j]*sinRow[j]
		}
		XRe[i] = re
		XIm[i] = im
	}
}

// TransformReal is Transform with an all-zero imaginary input.
func (b *Basis) TransformReal(x, XRe, XIm []float64) {
	n := b.n
	x = x[:n]
	XRe, XIm = XRe[:n], XIm[:n]
	for i := 0; i < n; i++ {
		cosRow := b.cos[i*n : (i+1)*n]
		sinRow := b.sin[i*n : (i+1)*n]
		var re, im float64
		for j := 0; j < n; j++ {
			re += x[j] * cosRow[j]
			im += x[j] * sinRow[j]
		}
		XRe[i] = re
		XIm[i] = im
	}
}

// Inverse undoes Transform using the conjugate basis scaled by 1/N.
func (b *Basis) Inverse(XRe, XIm, xRe, xIm []float64) {
	n := b.n
	XRe, XIm = XRe[:n], XIm[:n]
	xRe, xIm = xRe[:n], xIm[:n]
	scale := 1 / float64(n)
	for i := 0; i < n; i++ {
		cosRow := b.cos[i*n : (i+1)*n]
		sinRow := b.sin[i*n : (i+1)*n]
		var re, im float64
		for j := 0; j < n; j++ {
			re += XRe[j]*cosRow[j] + XIm[j]*sinRow[j]
			im += XIm[j]*cosRow[j] - XRe[j]*sinRow[j]
		}
		xRe[i] = re * scale
		xIm[i] = im * scale
	}
}
