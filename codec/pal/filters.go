/*
DESCRIPTION
  filters.go provides FIR filtering of raw composite-video samples prior to
  sync detection, principally a low-pass to suppress the chroma subcarrier
  when digitising at rates high enough to alias it into the luma band.

AUTHORS
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pal

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/pkg/errors"
)

// ChromaSubcarrierHz is the PAL colour subcarrier frequency. Luma filtering
// cuts below this to leave sync and brightness intact.
const ChromaSubcarrierHz = 4433618.75

// SampleFilter transforms a block of raw samples in place of the originals.
// Filters must preserve sample timing: output sample i corresponds to input
// sample i.
type SampleFilter interface {
	Apply(s []Sample) ([]Sample, error)
}

// LowPass is a windowed-sinc FIR low-pass filter over voltage samples.
type LowPass struct {
	coeffs []float64
	taps   int
}

// NewLowPass returns a low-pass filter with cutoff frequency fc for samples
// taken every periodPS picoseconds, using a FIR of the given even number of
// taps.
func NewLowPass(fc float64, periodPS uint, taps int) (*LowPass, error) {
	if periodPS == 0 {
		return nil, errors.New("sample period not set")
	}
	rate := 1e12 / float64(periodPS)
	if fc <= 0 || fc >= rate/2 {
		return nil, errors.Errorf("cutoff frequency %v out of bounds for rate %v", fc, rate)
	}
	if taps <= 0 || taps%2 != 0 {
		return nil, errors.Errorf("invalid tap count %d", taps)
	}

	// Windowed sinc, mirrored about the centre tap.
	fd := fc / rate
	size := taps + 1
	coeffs := make([]float64, size)
	b := 2 * math.Pi * fd
	win := window.FlatTop(size)
	for n := 0; n < taps/2; n++ {
		c := float64(n) - float64(taps)/2
		y := math.Sin(c*b) / (math.Pi * c)
		coeffs[n] = y * win[n]
		coeffs[size-1-n] = coeffs[n]
	}
	coeffs[taps/2] = 2 * fd * win[taps/2]

	// Normalise to unit DC gain so voltage levels are preserved.
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	for i := range coeffs {
		coeffs[i] /= sum
	}
	return &LowPass{coeffs: coeffs, taps: taps}, nil
}

// NewChromaLowPass returns a low-pass that attenuates the PAL chroma
// subcarrier and above, leaving the luma band.
func NewChromaLowPass(periodPS uint, taps int) (*LowPass, error) {
	f, err := NewLowPass(ChromaSubcarrierHz*0.75, periodPS, taps)
	if err != nil {
		return nil, errors.Wrap(err, "could not create chroma low-pass")
	}
	return f, nil
}

// Apply implements SampleFilter. The convolution's group delay is removed so
// that pulse timing is unchanged by filtering.
func (f *LowPass) Apply(s []Sample) ([]Sample, error) {
	if len(s) == 0 {
		return nil, errors.New("no samples to filter")
	}
	x := make([]float64, len(s))
	for i, v := range s {
		x[i] = float64(v)
	}
	y, err := fastConvolve(x, f.coeffs)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute fast convolution")
	}
	// Trim the leading taps/2 samples of delay and the convolution tail.
	y = y[f.taps/2 : f.taps/2+len(s)]
	out := make([]Sample, len(s))
	for i, v := range y {
		out[i] = Sample(math.Round(v))
	}
	return out, nil
}

// fastConvolve computes the linear convolution of x and h by pointwise
// multiplication in the frequency domain (O(n log n)).
func fastConvolve(x, h []float64) ([]float64, error) {
	if len(x) == 0 || len(h) == 0 {
		return nil, errors.New("convolution requires slice of length > 0")
	}

	convLen := len(x) + len(h) - 1

	// Pad both signals to the next power of 2 at or above convLen.
	padLen := int(math.Pow(2, math.Ceil(math.Log2(float64(convLen)))))
	x = append(x, make([]float64, padLen-len(x))...)
	h = append(h, make([]float64, padLen-len(h))...)

	xFFT, hFFT := fft.FFTReal(x), fft.FFTReal(h)
	yFFT := make([]complex128, padLen)
	for i := range xFFT {
		yFFT[i] = xFFT[i] * hFFT[i]
	}
	iy := fft.IFFT(yFFT)

	y := make([]float64, convLen)
	for i := range y {
		y[i] = real(iy[i])
	}
	return y, nil
}
