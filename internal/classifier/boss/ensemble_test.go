package boss

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/boss/internal/dataset"
	"github.com/go-sod/boss/internal/sfa"
)

func TestEnsemble_TwoClass(t *testing.T) {
	train := twoClass(t, 10, 24)
	e, err := NewEnsemble(WithMinWindow(10))
	require.NoError(t, err)
	require.NoError(t, e.Build(context.Background(), train))

	require.GreaterOrEqual(t, e.Len(), 1)
	best := 0.0
	for _, m := range e.Members() {
		assert.GreaterOrEqual(t, m.Accuracy, 0.0)
		assert.LessOrEqual(t, m.Accuracy, 1.0)
		assert.GreaterOrEqual(t, m.WindowSize, 10)
		assert.LessOrEqual(t, m.WindowSize, 24)
		assert.Contains(t, DefaultWordLengths, m.WordLength)
		assert.Equal(t, 4, m.AlphabetSize)
		if m.Accuracy > best {
			best = m.Accuracy
		}
	}
	for _, m := range e.Members() {
		assert.GreaterOrEqual(t, m.Accuracy, best*DefaultCorrectThreshold)
	}
	assert.GreaterOrEqual(t, e.TrainAccuracy(), 0.0)
	assert.LessOrEqual(t, e.TrainAccuracy(), 1.0)

	for seed := 100; seed < 104; seed++ {
		label, err := e.Classify(series(24, seed%2, seed))
		require.NoError(t, err)
		assert.Contains(t, []int{0, 1}, label)

		dist, err := e.ClassifyDistribution(series(24, seed%2, seed))
		require.NoError(t, err)
		require.Len(t, dist, 2)
		assert.InDelta(t, 1.0, dist[0]+dist[1], 1e-12)
		assert.Equal(t, Argmax(dist), label)
	}
}

func TestEnsemble_ConcurrencyIsDeterministic(t *testing.T) {
	train := twoClass(t, 10, 24)

	sequential, err := NewEnsemble(WithConcurrency(1), WithMaxEnsembleSize(3))
	require.NoError(t, err)
	require.NoError(t, sequential.Build(context.Background(), train))

	parallel, err := NewEnsemble(WithConcurrency(4), WithMaxEnsembleSize(3))
	require.NoError(t, err)
	require.NoError(t, parallel.Build(context.Background(), train))

	assert.Equal(t, sequential.Members(), parallel.Members())
	assert.Equal(t, sequential.TrainAccuracy(), parallel.TrainAccuracy())
	assert.LessOrEqual(t, parallel.Len(), 3)
}

func TestEnsemble_SkipsFailingCandidates(t *testing.T) {
	items := make([]dataset.Sequence, 10)
	for i := range items {
		n := 24
		if i == 3 {
			n = 12
		}
		items[i] = dataset.Sequence{Data: series(n, i%2, i), Label: i % 2}
	}
	train, err := dataset.New("ragged", items, 2)
	require.NoError(t, err)

	e, err := NewEnsemble(WithNormOptions(true))
	require.NoError(t, err)
	require.NoError(t, e.Build(context.Background(), train))

	require.GreaterOrEqual(t, e.Len(), 1)
	for _, m := range e.Members() {
		assert.LessOrEqual(t, m.WindowSize, 12)
		assert.True(t, m.Norm)
	}
}

func TestEnsemble_Empty(t *testing.T) {
	e, err := NewEnsemble(WithMinWindow(100))
	require.NoError(t, err)
	require.NoError(t, e.Build(context.Background(), twoClass(t, 10, 24)))
	assert.Equal(t, 0, e.Len())

	dist, err := e.ClassifyDistribution(series(24, 0, 1))
	assert.ErrorIs(t, err, ErrEmptyEnsemble)
	assert.Equal(t, []float64{0, 0}, dist)

	label, err := e.Classify(series(24, 0, 1))
	assert.ErrorIs(t, err, ErrEmptyEnsemble)
	assert.Equal(t, -1, label)
}

func TestEnsemble_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e, err := NewEnsemble()
	require.NoError(t, err)
	assert.ErrorIs(t, e.Build(ctx, twoClass(t, 10, 24)), context.Canceled)
}

func TestNewEnsemble_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "word_too_long", opts: []Option{WithWordLengths(40, 16)}},
		{name: "word_too_short", opts: []Option{WithWordLengths(16, 1)}},
		{name: "no_word_lengths", opts: []Option{WithWordLengths()}},
		{name: "no_norm_options", opts: []Option{WithNormOptions()}},
		{name: "zero_max_size", opts: []Option{WithMaxEnsembleSize(0)}},
		{name: "zero_min_window", opts: []Option{WithMinWindow(0)}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewEnsemble(test.opts...)
			assert.ErrorIs(t, err, sfa.ErrInvalidParameter)
		})
	}
}

func TestEnsemble_SearchSpace(t *testing.T) {
	e, err := NewEnsemble()
	require.NoError(t, err)

	space := e.searchSpace(24)
	// inc = int(14 / 6) = 2
	windows := []int{10, 12, 14, 16, 18, 20, 22, 24}
	require.Len(t, space, 2*len(windows))
	for i, c := range space {
		assert.Equal(t, i < len(windows), c.norm)
		assert.Equal(t, windows[i%len(windows)], c.window)
	}

	space = e.searchSpace(100)
	assert.Equal(t, 10, space[0].window)
	assert.Equal(t, 13, space[1].window)
}

func TestSelection_Admit(t *testing.T) {
	s := selection{threshold: 0.92, maxSize: 2, maxAcc: -1, minMaxAcc: -1}

	steps := []struct {
		acc      float64
		admitted bool
		expected []float64
	}{
		{acc: 0.5, admitted: true, expected: []float64{0.5}},
		{acc: 0.6, admitted: true, expected: []float64{0.6}},
		{acc: 0.56, admitted: true, expected: []float64{0.6, 0.56}},
		{acc: 0.58, admitted: true, expected: []float64{0.6, 0.58}},
		{acc: 0.57, admitted: false, expected: []float64{0.6, 0.58}},
		{acc: 0.5, admitted: false, expected: []float64{0.6, 0.58}},
		{acc: 0.9, admitted: true, expected: []float64{0.9}},
	}
	for i, step := range steps {
		assert.Equal(t, step.admitted, s.admit(&Member{Accuracy: step.acc}), "step %d", i)

		var got []float64
		for _, m := range s.members {
			got = append(got, m.Accuracy)
			assert.GreaterOrEqual(t, m.Accuracy, s.maxAcc*s.threshold)
		}
		assert.Equal(t, step.expected, got, "step %d", i)
		assert.LessOrEqual(t, len(s.members), s.maxSize)

		_, weakest := s.weakest()
		assert.Equal(t, weakest, s.minMaxAcc)
	}
}

func TestConfig_Options(t *testing.T) {
	threshold := 0.9
	cfg := &Config{WordLengths: "12, 8", AlphabetSize: 4, Norm: "true", MinWindow: 8, MaxEnsembleSize: 5, CorrectThreshold: &threshold, Concurrency: 2}
	opts, err := cfg.Options()
	require.NoError(t, err)

	e, err := NewEnsemble(opts...)
	require.NoError(t, err)
	assert.Equal(t, []int{12, 8}, e.opts.wordLengths)
	assert.Equal(t, []bool{true}, e.opts.normOptions)
	assert.Equal(t, 8, e.opts.minWindow)
	assert.Equal(t, 5, e.opts.maxEnsembleSize)
	assert.Equal(t, 0.9, e.opts.correctThreshold)
	assert.Equal(t, 2, e.opts.concurrency)

	_, err = (&Config{Norm: "sometimes"}).Options()
	assert.Error(t, err)
	_, err = (&Config{WordLengths: "a,b"}).Options()
	assert.Error(t, err)
}

func TestConfig_CorrectThreshold(t *testing.T) {
	zero := 0.0
	tests := []struct {
		name      string
		threshold *float64
		expected  float64
	}{
		{name: "unset keeps default", expected: DefaultCorrectThreshold},
		{name: "explicit zero", threshold: &zero, expected: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := (&Config{CorrectThreshold: tc.threshold}).Options()
			require.NoError(t, err)
			e, err := NewEnsemble(opts...)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, e.opts.correctThreshold)
		})
	}
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 0, Argmax([]float64{0.5, 0.5}))
	assert.Equal(t, 1, Argmax([]float64{0.25, 0.5, 0.25}))
	assert.Equal(t, 0, Argmax([]float64{0, 0, 0}))
}
