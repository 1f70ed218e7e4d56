package boss

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-sod/boss/internal/bag"
	"github.com/go-sod/boss/internal/classifier"
	"github.com/go-sod/boss/internal/dataset"
	"github.com/go-sod/boss/internal/sfa"
)

var (
	ErrNotBuilt = errors.New("model is not built")
	ErrCleaned  = errors.New("model words were released")
)

var _ classifier.Member = (*Model)(nil)

// wordCache holds the full length words of every training series, the
// source all shortened bags are derived from.
type wordCache struct {
	length int
	series [][]sfa.Word
}

// Model is one BOSS parameterization: bags of SFA words of every training
// series, classified by 1-NN under the bag distance. A built model is read
// only, so Classify may be called concurrently.
type Model struct {
	params      classifier.Params
	transform   *sfa.Transform
	breakpoints *sfa.Breakpoints
	bags        []*bag.Bag
	cache       *wordCache
}

func New(windowSize, wordLength, alphabetSize int, norm bool) (*Model, error) {
	if err := sfa.ValidateWord(wordLength, alphabetSize); err != nil {
		return nil, fmt.Errorf("unable to create model: %w", err)
	}
	t, err := sfa.NewTransform(windowSize, wordLength, norm)
	if err != nil {
		return nil, fmt.Errorf("unable to create model: %w", err)
	}
	return &Model{
		params: classifier.Params{
			WindowSize:   windowSize,
			WordLength:   wordLength,
			AlphabetSize: alphabetSize,
			Norm:         norm,
		},
		transform: t,
	}, nil
}

// Build fits the breakpoints on train and turns every training series into
// a bag.
func (m *Model) Build(ctx context.Context, train dataset.Collection) error {
	bp, err := sfa.Fit(train, m.transform, m.params.AlphabetSize)
	if err != nil {
		return fmt.Errorf("unable to fit breakpoints: %w", err)
	}

	n := train.Len()
	cache := &wordCache{length: m.params.WordLength, series: make([][]sfa.Word, n)}
	bags := make([]*bag.Bag, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		seq := train.At(i)
		ws, err := quantize(m.transform, bp, seq.Data)
		if err != nil {
			return fmt.Errorf("unable to transform series %d: %w", i, err)
		}
		cache.series[i] = ws
		bags[i] = bag.FromWords(ws, seq.Label)
	}
	m.breakpoints = bp
	m.cache = cache
	m.bags = bags
	return nil
}

func quantize(t *sfa.Transform, bp *sfa.Breakpoints, series []float64) ([]sfa.Word, error) {
	dfts, err := t.Sliding(series)
	if err != nil {
		return nil, err
	}
	return bp.QuantizeAll(dfts), nil
}

// Bag turns an unseen series into a bag with an undefined label.
func (m *Model) Bag(series []float64) (*bag.Bag, error) {
	if m.breakpoints == nil {
		return nil, ErrNotBuilt
	}
	ws, err := quantize(m.transform, m.breakpoints, series)
	if err != nil {
		return nil, err
	}
	return bag.FromWords(ws, -1), nil
}

// Distance is the bag distance from training series a to training series b.
func (m *Model) Distance(a, b int) float64 {
	return bag.Distance(m.bags[a], m.bags[b])
}

// DistanceBounded is Distance that gives up with +Inf once bound is exceeded.
func (m *Model) DistanceBounded(a, b int, bound float64) float64 {
	return bag.DistanceBounded(m.bags[a], m.bags[b], bound)
}

// Classify returns the label of the nearest training bag.
func (m *Model) Classify(series []float64) (int, error) {
	b, err := m.Bag(series)
	if err != nil {
		return -1, fmt.Errorf("unable to classify: %w", err)
	}
	return m.nearest(b, -1), nil
}

// ClassifyLeaveOneOut classifies training series i against all other
// training series, -1 if there are none.
func (m *Model) ClassifyLeaveOneOut(i int) int {
	return m.nearest(m.bags[i], i)
}

// nearest scans every bag but skip. Ties keep the first minimum.
func (m *Model) nearest(b *bag.Bag, skip int) int {
	best := math.Inf(1)
	label := -1
	for i, other := range m.bags {
		if i == skip {
			continue
		}
		if dist := bag.DistanceBounded(b, other, best); dist < best {
			best = dist
			label = other.Label
		}
	}
	return label
}

// Accuracy is the fraction of training series whose leave-one-out label
// matches their own.
func (m *Model) Accuracy() float64 {
	if len(m.bags) == 0 {
		return 0
	}
	var correct int
	for i := range m.bags {
		if m.ClassifyLeaveOneOut(i) == m.bags[i].Label {
			correct++
		}
	}
	return float64(correct) / float64(len(m.bags))
}

// Shorten derives the model at a shorter word length from the cached full
// length words. The result shares breakpoint rows with m.
func (m *Model) Shorten(wordLength int) (*Model, error) {
	if m.breakpoints == nil {
		return nil, ErrNotBuilt
	}
	if m.cache == nil {
		return nil, ErrCleaned
	}
	if wordLength > m.params.WordLength || wordLength < 2 {
		return nil, fmt.Errorf("shorten %d to %d: %w", m.params.WordLength, wordLength, bag.ErrInvalidWordLength)
	}

	short := *m
	if wordLength == m.params.WordLength {
		return &short, nil
	}

	t, err := sfa.NewTransform(m.params.WindowSize, wordLength, m.params.Norm)
	if err != nil {
		return nil, err
	}
	bags := make([]*bag.Bag, len(m.bags))
	for i, ws := range m.cache.series {
		res := bag.Shorten(ws, m.cache.length, wordLength, m.params.AlphabetSize, m.bags[i].Label)
		if res.Err != nil {
			return nil, res.Err
		}
		bags[i] = res.Bag
	}
	short.params.WordLength = wordLength
	short.transform = t
	short.breakpoints = m.breakpoints.Truncate(wordLength)
	short.bags = bags
	return &short, nil
}

// Clean releases the cached words. The model still classifies but can no
// longer be shortened.
func (m *Model) Clean() {
	m.cache = nil
}

func (m *Model) Params() classifier.Params {
	return m.params
}

func (m *Model) Bags() []*bag.Bag {
	return m.bags
}

func (m *Model) Breakpoints() *sfa.Breakpoints {
	return m.breakpoints
}

// Len is the number of training bags.
func (m *Model) Len() int {
	return len(m.bags)
}
