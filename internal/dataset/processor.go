package dataset

import (
	"fmt"
	"math"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/stat"
)

// Processor harmonizes a series to maxLen values.
type Processor interface {
	Process(data []float64, maxLen int) []float64
}

// Normalizer rescales the values of a series.
type Normalizer interface {
	Normalize(data []float64) []float64
}

type ProcessorType string

const (
	ProcessorTypeNone               ProcessorType = "NONE"
	ProcessorTypeSuffixNoise        ProcessorType = "SUFFIX_NOISE"
	ProcessorTypePrefixSuffixNoise  ProcessorType = "PREFIX_SUFFIX_NOISE"
	ProcessorTypePrefixSuffixZero   ProcessorType = "PREFIX_SUFFIX_ZERO"
	ProcessorTypeSameLengthRescaler ProcessorType = "RESCALE"
)

type NormalizerType string

const (
	NormalizerTypeNone NormalizerType = "NONE"
	NormalizerTypeZ    NormalizerType = "Z"
)

func ProcessorFor(p ProcessorType) (Processor, error) {
	switch p {
	case ProcessorTypeNone:
		return NoProcessing{}, nil
	case ProcessorTypeSuffixNoise:
		return &SuffixNoisePadder{}, nil
	case ProcessorTypePrefixSuffixNoise:
		return &PrefixSuffixNoisePadder{}, nil
	case ProcessorTypePrefixSuffixZero:
		return PrefixSuffixZeroPadder{}, nil
	case ProcessorTypeSameLengthRescaler:
		return SameLengthRescaler{}, nil
	default:
		return nil, fmt.Errorf("unknown processor type: %s", p)
	}
}

func NormalizerFor(n NormalizerType) (Normalizer, error) {
	switch n {
	case NormalizerTypeNone:
		return NoNormalizer{}, nil
	case NormalizerTypeZ:
		return ZNormalizer{}, nil
	default:
		return nil, fmt.Errorf("unknown normalizer type: %s", n)
	}
}

type NoProcessing struct{}

func (NoProcessing) Process(data []float64, _ int) []float64 {
	return data
}

// noise returns uniform values in [0, 0.001).
type noise struct {
	rng fastrand.RNG
}

func (n *noise) next() float64 {
	return float64(n.rng.Uint32()) / (math.MaxUint32 + 1.0) / 1000
}

// SuffixNoisePadder appends low amplitude noise up to maxLen.
// Not safe for concurrent use.
type SuffixNoisePadder struct {
	noise noise
}

func (p *SuffixNoisePadder) Process(data []float64, maxLen int) []float64 {
	if len(data) >= maxLen {
		return data
	}
	out := make([]float64, maxLen)
	copy(out, data)
	for i := len(data); i < maxLen; i++ {
		out[i] = p.noise.next()
	}
	return out
}

// PrefixSuffixNoisePadder centres the series and fills both ends with low
// amplitude noise. Not safe for concurrent use.
type PrefixSuffixNoisePadder struct {
	noise noise
}

func (p *PrefixSuffixNoisePadder) Process(data []float64, maxLen int) []float64 {
	if len(data) >= maxLen {
		return data
	}
	diff := (maxLen - len(data)) / 2
	out := make([]float64, maxLen)
	for i := 0; i < diff; i++ {
		out[i] = p.noise.next()
	}
	copy(out[diff:], data)
	for i := diff + len(data); i < maxLen; i++ {
		out[i] = p.noise.next()
	}
	return out
}

// PrefixSuffixZeroPadder adds a single zero at each end of the series.
type PrefixSuffixZeroPadder struct{}

func (PrefixSuffixZeroPadder) Process(data []float64, _ int) []float64 {
	out := make([]float64, len(data)+2)
	copy(out[1:], data)
	return out
}

// SameLengthRescaler uniformly stretches the series to maxLen by nearest
// preceding sample.
type SameLengthRescaler struct{}

func (SameLengthRescaler) Process(data []float64, maxLen int) []float64 {
	if len(data) == 0 {
		return data
	}
	out := make([]float64, maxLen)
	for j := range out {
		out[j] = data[j*len(data)/maxLen]
	}
	return out
}

type NoNormalizer struct{}

func (NoNormalizer) Normalize(data []float64) []float64 {
	return data
}

// ZNormalizer shifts to zero mean and scales to unit population standard
// deviation. A constant series maps to all zeros.
type ZNormalizer struct{}

func (ZNormalizer) Normalize(data []float64) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}
	mean, std := stat.PopMeanStdDev(data, nil)
	if std == 0 || math.IsNaN(std) {
		return out
	}
	for i, v := range data {
		out[i] = (v - mean) / std
	}
	return out
}
