// Package boss implements the Bag-of-SFA-Symbols classifier and its
// ensemble over window sizes and word lengths.
package boss

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/sync/errgroup"

	"github.com/go-sod/boss/internal/classifier"
	"github.com/go-sod/boss/internal/dataset"
	"github.com/go-sod/boss/internal/logging"
	"github.com/go-sod/boss/internal/sfa"
)

var ErrEmptyEnsemble = errors.New("ensemble has no members")

var _ classifier.Classifier = (*Ensemble)(nil)

const (
	DefaultAlphabetSize     = 4
	DefaultMinWindow        = 10
	DefaultCorrectThreshold = 0.92
	// DefaultMaxEnsembleSize leaves the ensemble size bounded by the threshold only.
	DefaultMaxEnsembleSize = int(^uint(0) >> 1)
)

var DefaultWordLengths = []int{16, 14, 12, 10, 8}

type Option func(*Ensemble)

// WithWordLengths sets the word lengths tried per window size.
func WithWordLengths(lengths ...int) Option {
	return func(e *Ensemble) {
		e.opts.wordLengths = append([]int(nil), lengths...)
	}
}

func WithAlphabetSize(n int) Option {
	return func(e *Ensemble) {
		e.opts.alphabetSize = n
	}
}

// WithNormOptions sets the normalization flags searched, in order.
func WithNormOptions(norms ...bool) Option {
	return func(e *Ensemble) {
		e.opts.normOptions = append([]bool(nil), norms...)
	}
}

func WithMaxEnsembleSize(n int) Option {
	return func(e *Ensemble) {
		e.opts.maxEnsembleSize = n
	}
}

func WithMinWindow(n int) Option {
	return func(e *Ensemble) {
		e.opts.minWindow = n
	}
}

func WithCorrectThreshold(v float64) Option {
	return func(e *Ensemble) {
		e.opts.correctThreshold = v
	}
}

// WithConcurrency bounds the number of window sizes evaluated at once.
func WithConcurrency(n int) Option {
	return func(e *Ensemble) {
		e.opts.concurrency = n
	}
}

type Options struct {
	wordLengths      []int
	alphabetSize     int
	normOptions      []bool
	maxEnsembleSize  int
	minWindow        int
	correctThreshold float64
	concurrency      int
}

// Member is a trained model of the ensemble and its leave-one-out accuracy.
type Member struct {
	classifier.Params
	Accuracy float64 `json:"accuracy"`

	model classifier.Member
}

// Ensemble keeps every window size whose best leave-one-out accuracy is
// within a fraction of the best one, and classifies by majority vote.
type Ensemble struct {
	opts Options

	members       []*Member
	numClasses    int
	trainAccuracy float64
}

func NewEnsemble(opts ...Option) (*Ensemble, error) {
	e := &Ensemble{
		opts: Options{
			wordLengths:      DefaultWordLengths,
			alphabetSize:     DefaultAlphabetSize,
			normOptions:      []bool{true, false},
			maxEnsembleSize:  DefaultMaxEnsembleSize,
			minWindow:        DefaultMinWindow,
			correctThreshold: DefaultCorrectThreshold,
			concurrency:      runtime.GOMAXPROCS(0),
		},
	}
	for _, f := range opts {
		f(e)
	}

	o := &e.opts
	if len(o.wordLengths) == 0 || len(o.normOptions) == 0 {
		return nil, fmt.Errorf("unable to create ensemble: empty search space: %w", sfa.ErrInvalidParameter)
	}
	o.wordLengths = append([]int(nil), o.wordLengths...)
	sort.Sort(sort.Reverse(sort.IntSlice(o.wordLengths)))
	if err := sfa.ValidateWord(o.wordLengths[0], o.alphabetSize); err != nil {
		return nil, fmt.Errorf("unable to create ensemble: %w", err)
	}
	if o.wordLengths[len(o.wordLengths)-1] < 2 {
		return nil, fmt.Errorf("unable to create ensemble: word length %d: %w", o.wordLengths[len(o.wordLengths)-1], sfa.ErrInvalidParameter)
	}
	if o.maxEnsembleSize < 1 || o.minWindow < 1 || o.correctThreshold < 0 {
		return nil, fmt.Errorf("unable to create ensemble: %w", sfa.ErrInvalidParameter)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return e, nil
}

// candidate is the best model of one (norm, window size) pair.
type candidate struct {
	norm     bool
	window   int
	model    *Model
	accuracy float64
	elapsed  time.Duration
	err      error
}

// searchSpace lists the candidates in the order they are admitted: norm
// options outer, window sizes ascending.
func (e *Ensemble) searchSpace(seriesLength int) []candidate {
	minWindow, maxWindow := e.opts.minWindow, seriesLength
	inc := int(float64(maxWindow-minWindow) / (float64(seriesLength) / 4.0))
	if inc < 1 {
		inc = 1
	}
	var space []candidate
	for _, norm := range e.opts.normOptions {
		for w := minWindow; w <= maxWindow; w += inc {
			space = append(space, candidate{norm: norm, window: w})
		}
	}
	return space
}

// Build searches the parameter space on train. Candidates of one batch are
// computed concurrently and admitted in search order.
func (e *Ensemble) Build(ctx context.Context, train dataset.Collection) error {
	logger := logging.FromContext(ctx)
	if train.Len() == 0 {
		return dataset.ErrEmptyDataset
	}

	e.members = nil
	e.numClasses = train.NumClasses()
	e.trainAccuracy = 0
	sel := selection{
		threshold: e.opts.correctThreshold,
		maxSize:   e.opts.maxEnsembleSize,
		maxAcc:    -1,
		minMaxAcc: -1,
	}

	space := e.searchSpace(train.MaxLength())
	logger.Debugf("searching %d candidates, word lengths %v, concurrency %d", len(space), e.opts.wordLengths, e.opts.concurrency)
	start := time.Now()

	for from := 0; from < len(space); from += e.opts.concurrency {
		to := from + e.opts.concurrency
		if to > len(space) {
			to = len(space)
		}
		batch := space[from:to]

		g, gctx := errgroup.WithContext(ctx)
		for i := range batch {
			c := &batch[i]
			g.Go(func() error {
				begin := time.Now()
				c.model, c.accuracy, c.err = e.evaluate(gctx, train, c.norm, c.window)
				c.elapsed = time.Since(begin)
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("unable to build ensemble: %w", err)
		}

		for i := range batch {
			c := &batch[i]
			stats.Record(ctx, candidateLatencyMs.M(float64(c.elapsed)/float64(time.Millisecond)))
			if c.err != nil {
				logger.Warnf("skip candidate window %d norm %v: %v", c.window, c.norm, c.err)
				recordOutcome(ctx, outcomeFailed)
				continue
			}
			stats.Record(ctx, candidateAccuracy.M(c.accuracy))
			logger.Debugf("candidate window %d word length %d norm %v: accuracy %.4f",
				c.window, c.model.Params().WordLength, c.norm, c.accuracy)

			if sel.admit(&Member{Params: c.model.Params(), Accuracy: c.accuracy, model: c.model}) {
				recordOutcome(ctx, outcomeAdmitted)
				logger.Debugf("admitted window %d, ensemble size %d, max accuracy %.4f", c.window, len(sel.members), sel.maxAcc)
			} else {
				recordOutcome(ctx, outcomeRejected)
			}
			c.model = nil
		}
	}

	e.members = sel.members
	e.trainAccuracy = e.leaveOneOutAccuracy(train)
	logger.Infof("built ensemble of %d members in %s, train accuracy %.4f", len(e.members), time.Since(start), e.trainAccuracy)
	return nil
}

// evaluate builds the model at the longest word length and keeps the
// shortening with the best leave-one-out accuracy. Later word lengths win
// ties.
func (e *Ensemble) evaluate(ctx context.Context, train dataset.Collection, norm bool, window int) (*Model, float64, error) {
	m, err := New(window, e.opts.wordLengths[0], e.opts.alphabetSize, norm)
	if err != nil {
		return nil, 0, err
	}
	if err := m.Build(ctx, train); err != nil {
		return nil, 0, err
	}

	var best *Model
	bestAcc := -1.0
	for _, l := range e.opts.wordLengths {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		short, err := m.Shorten(l)
		if err != nil {
			return nil, 0, err
		}
		if acc := short.Accuracy(); acc >= bestAcc {
			best, bestAcc = short, acc
		}
	}
	best.Clean()
	return best, bestAcc, nil
}

func recordOutcome(ctx context.Context, outcome string) {
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(keyOutcome, outcome)}, candidates.M(1))
}

// selection is the admission state of the search.
type selection struct {
	threshold float64
	maxSize   int
	maxAcc    float64
	minMaxAcc float64
	members   []*Member
}

// admit adds m if it is close enough to the best accuracy and either there
// is room or it beats the weakest member. Members that fall below a raised
// threshold are evicted and the weakest are culled down to maxSize.
func (s *selection) admit(m *Member) bool {
	if m.Accuracy < s.maxAcc*s.threshold {
		return false
	}
	if len(s.members) >= s.maxSize && m.Accuracy <= s.minMaxAcc {
		return false
	}

	s.members = append(s.members, m)
	if m.Accuracy > s.maxAcc {
		s.maxAcc = m.Accuracy
		kept := s.members[:0]
		for _, member := range s.members {
			if member.Accuracy >= s.maxAcc*s.threshold {
				kept = append(kept, member)
			}
		}
		s.members = kept
	}
	for len(s.members) > s.maxSize {
		i, _ := s.weakest()
		s.members = append(s.members[:i], s.members[i+1:]...)
	}
	_, s.minMaxAcc = s.weakest()
	return true
}

// weakest returns the first member with the lowest accuracy.
func (s *selection) weakest() (int, float64) {
	idx, acc := -1, -1.0
	for i, m := range s.members {
		if idx == -1 || m.Accuracy < acc {
			idx, acc = i, m.Accuracy
		}
	}
	return idx, acc
}

// leaveOneOutAccuracy scores the majority vote of the members' leave-one-out
// predictions.
func (e *Ensemble) leaveOneOutAccuracy(train dataset.Collection) float64 {
	if len(e.members) == 0 || train.Len() == 0 {
		return 0
	}
	var correct int
	for i := 0; i < train.Len(); i++ {
		votes := make([]float64, e.numClasses)
		for _, m := range e.members {
			if label := m.model.ClassifyLeaveOneOut(i); label >= 0 && label < e.numClasses {
				votes[label]++
			}
		}
		if Argmax(votes) == train.At(i).Label {
			correct++
		}
	}
	return float64(correct) / float64(train.Len())
}

// ClassifyDistribution returns the fraction of member votes per class.
func (e *Ensemble) ClassifyDistribution(series []float64) ([]float64, error) {
	dist := make([]float64, e.numClasses)
	if len(e.members) == 0 {
		return dist, ErrEmptyEnsemble
	}
	var total float64
	for _, m := range e.members {
		label, err := m.model.Classify(series)
		if err != nil {
			return nil, fmt.Errorf("unable to classify with window %d: %w", m.WindowSize, err)
		}
		if label < 0 || label >= e.numClasses {
			continue
		}
		dist[label]++
		total++
	}
	if total > 0 {
		for i := range dist {
			dist[i] /= total
		}
	}
	return dist, nil
}

// Classify returns the majority label, ties going to the lowest label.
func (e *Ensemble) Classify(series []float64) (int, error) {
	dist, err := e.ClassifyDistribution(series)
	if err != nil {
		return -1, err
	}
	return Argmax(dist), nil
}

// Argmax returns the index of the largest value, ties going to the lowest
// index.
func Argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// Members lists the parameters and accuracy of every member.
func (e *Ensemble) Members() []Member {
	out := make([]Member, len(e.members))
	for i, m := range e.members {
		out[i] = Member{Params: m.Params, Accuracy: m.Accuracy}
	}
	return out
}

// TrainAccuracy is the leave-one-out accuracy of the majority vote.
func (e *Ensemble) TrainAccuracy() float64 {
	return e.trainAccuracy
}

func (e *Ensemble) NumClasses() int {
	return e.numClasses
}

func (e *Ensemble) Len() int {
	return len(e.members)
}
