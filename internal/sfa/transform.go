package sfa

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrSeriesTooShort   = errors.New("series is shorter than the window")
)

// Transform turns windows of a series into wordLength interleaved real and
// imaginary Fourier coefficients, divided by the window standard deviation
// and by sqrt(windowSize). With norm set the zero frequency is skipped.
type Transform struct {
	windowSize    int
	wordLength    int
	norm          bool
	invSqrtWindow float64
}

func NewTransform(windowSize, wordLength int, norm bool) (*Transform, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("window size %d: %w", windowSize, ErrInvalidParameter)
	}
	if wordLength < 1 {
		return nil, fmt.Errorf("word length %d: %w", wordLength, ErrInvalidParameter)
	}
	return &Transform{
		windowSize:    windowSize,
		wordLength:    wordLength,
		norm:          norm,
		invSqrtWindow: 1 / math.Sqrt(float64(windowSize)),
	}, nil
}

func (t *Transform) WindowSize() int {
	return t.windowSize
}

func (t *Transform) WordLength() int {
	return t.wordLength
}

func (t *Transform) Norm() bool {
	return t.norm
}

// span is the number of interleaved values computed per window, rounded up
// to a whole complex coefficient.
func (t *Transform) span() int {
	return t.wordLength + t.wordLength%2
}

// frequency returns the DFT index of the interleaved value at position j.
func (t *Transform) frequency(j int) int {
	k := j / 2
	if t.norm {
		k++
	}
	return k
}

// Disjoint transforms the non-overlapping windows of series with the direct
// strategy. The last window is right aligned so that it is always complete.
func (t *Transform) Disjoint(series []float64) ([][]float64, error) {
	n := len(series)
	if n < t.windowSize {
		return nil, fmt.Errorf("length %d, window %d: %w", n, t.windowSize, ErrSeriesTooShort)
	}
	count := (n + t.windowSize - 1) / t.windowSize
	d := t.newDirect()
	out := make([][]float64, count)
	for i := 0; i < count; i++ {
		offset := i * t.windowSize
		if offset > n-t.windowSize {
			offset = n - t.windowSize
		}
		out[i] = d.window(series[offset : offset+t.windowSize])
	}
	return out, nil
}

// SlidingDirect transforms every stride-1 window from scratch.
func (t *Transform) SlidingDirect(series []float64) ([][]float64, error) {
	n := len(series)
	if n < t.windowSize {
		return nil, fmt.Errorf("length %d, window %d: %w", n, t.windowSize, ErrSeriesTooShort)
	}
	d := t.newDirect()
	out := make([][]float64, n-t.windowSize+1)
	for i := range out {
		out[i] = d.window(series[i : i+t.windowSize])
	}
	return out, nil
}

// Sliding transforms every stride-1 window incrementally.
func (t *Transform) Sliding(series []float64) ([][]float64, error) {
	n := len(series)
	w := t.windowSize
	if n < w {
		return nil, fmt.Errorf("length %d, window %d: %w", n, w, ErrSeriesTooShort)
	}
	span := t.span()
	phis := make([]float64, span)
	for j := 0; j < span; j += 2 {
		angle := 2 * math.Pi * float64(t.frequency(j)) / float64(w)
		phis[j] = math.Cos(angle)
		phis[j+1] = math.Sin(angle)
	}

	stds := runningStdDev(series, w)
	d := t.newDirect()
	mft := d.unnormalized(series[:w], make([]float64, span))

	out := make([][]float64, n-w+1)
	for i := range out {
		if i > 0 {
			delta := series[i+w-1] - series[i-1]
			for k := 0; k < span; k += 2 {
				re := mft[k] + delta
				im := mft[k+1]
				mft[k] = re*phis[k] - im*phis[k+1]
				mft[k+1] = re*phis[k+1] + im*phis[k]
			}
		}
		out[i] = t.normalize(mft, stds[i])
	}
	return out, nil
}

func (t *Transform) normalize(coeffs []float64, std float64) []float64 {
	factor := t.invSqrtWindow
	if std > 0 {
		factor /= std
	}
	out := make([]float64, t.wordLength)
	for i := range out {
		out[i] = coeffs[i] * factor
	}
	return out
}

// direct holds the FFT plan and scratch buffers of one call.
type direct struct {
	t      *Transform
	fft    *fourier.CmplxFFT
	in     []complex128
	coeffs []complex128
	buf    []float64
}

func (t *Transform) newDirect() *direct {
	return &direct{
		t:      t,
		fft:    fourier.NewCmplxFFT(t.windowSize),
		in:     make([]complex128, t.windowSize),
		coeffs: make([]complex128, t.windowSize),
		buf:    make([]float64, t.span()),
	}
}

func (d *direct) unnormalized(window []float64, dst []float64) []float64 {
	for i, v := range window {
		d.in[i] = complex(v, 0)
	}
	d.coeffs = d.fft.Coefficients(d.coeffs, d.in)
	n := len(window)
	for j := 0; j < len(dst); j += 2 {
		// the spectrum of a length n window is n-periodic
		c := d.coeffs[d.t.frequency(j)%n]
		dst[j] = real(c)
		dst[j+1] = imag(c)
	}
	return dst
}

func (d *direct) window(window []float64) []float64 {
	_, std := stat.PopMeanStdDev(window, nil)
	return d.t.normalize(d.unnormalized(window, d.buf), std)
}

// runningStdDev returns the population standard deviation of every stride-1
// window, updating the sums in O(1) per window. Non-positive variance yields 0.
func runningStdDev(series []float64, w int) []float64 {
	end := len(series) - w + 1
	stds := make([]float64, end)
	r := 1 / float64(w)
	var sum, squareSum float64
	for i := 0; i < w; i++ {
		sum += series[i]
		squareSum += series[i] * series[i]
	}
	stds[0] = stdFromSums(sum, squareSum, r)
	for i := 1; i < end; i++ {
		in, out := series[i+w-1], series[i-1]
		sum += in - out
		squareSum += in*in - out*out
		stds[i] = stdFromSums(sum, squareSum, r)
	}
	return stds
}

func stdFromSums(sum, squareSum, r float64) float64 {
	mean := sum * r
	variance := squareSum*r - mean*mean
	if variance > 0 {
		return math.Sqrt(variance)
	}
	return 0
}
