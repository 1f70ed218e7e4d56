package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProblem(t *testing.T, dir, problem, train, test string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, problem), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, problem, problem+"_TRAIN.tsv"), []byte(train), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, problem, problem+"_TEST.tsv"), []byte(test), 0o644))
}

func TestReadUCR(t *testing.T) {
	items, err := ReadUCR(strings.NewReader("1\t0.5\t1.5\t2.5\n\n2\t3\tNaN\tNaN\n"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, Sequence{Data: []float64{0.5, 1.5, 2.5}, Label: 1}, items[0])
	assert.Equal(t, Sequence{Data: []float64{3}, Label: 2}, items[1])

	tests := []struct {
		name  string
		input string
		err   error
	}{
		{name: "empty", input: "\n\n", err: ErrEmptyDataset},
		{name: "class_only", input: "1\n", err: ErrEmptyLine},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadUCR(strings.NewReader(test.input))
			assert.ErrorIs(t, err, test.err)
		})
	}

	_, err = ReadUCR(strings.NewReader("1\tabc\n"))
	assert.Error(t, err)
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeProblem(t, dir, "Toy",
		"3\t1\t2\t3\t4\n-1\t4\t3\tNaN\n",
		"-1\t1\t1\t1\t1\t1\t1\n3\t2\t2\n",
	)

	l := NewLoader(dir, WithProcessor(PrefixSuffixZeroPadder{}), WithNormalizer(ZNormalizer{}), WithMethod(MethodNormalizeFirst))
	train, test, err := l.Load(context.Background(), "Toy")
	require.NoError(t, err)

	assert.Equal(t, SplitTrain, train.Split())
	assert.Equal(t, SplitTest, test.Split())
	assert.Equal(t, 2, train.NumClasses())
	assert.Equal(t, 2, test.NumClasses())

	// -1 is the smaller class value
	assert.Equal(t, 1, train.At(0).Label)
	assert.Equal(t, 0, train.At(1).Label)
	assert.Equal(t, 0, test.At(0).Label)

	// normalized, then framed by zeros
	assert.Equal(t, []float64{0, 1, -1, 0}, train.At(1).Data)
	assert.Len(t, train.At(0).Data, 6)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 0}, test.At(0).Data)
}

func TestLoader_Padding(t *testing.T) {
	dir := t.TempDir()
	writeProblem(t, dir, "Ragged",
		"1\t1\t2\t3\t4\t5\t6\n2\t1\t2\n",
		"1\t1\t2\t3\t4\t5\t6\t7\t8\n",
	)

	l := NewLoader(dir, WithProcessor(SameLengthRescaler{}))
	train, test, err := l.Load(context.Background(), "Ragged")
	require.NoError(t, err)

	// every series is stretched to the longest series of either split
	assert.Equal(t, 8, train.MinLength())
	assert.Equal(t, 8, train.MaxLength())
	assert.Equal(t, 8, test.MaxLength())
	assert.Equal(t, []float64{1, 1, 1, 1, 2, 2, 2, 2}, train.At(1).Data)
}

func TestLoader_Missing(t *testing.T) {
	l := NewLoader(t.TempDir())
	_, _, err := l.Load(context.Background(), "Nope")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLoaderFromConfig(t *testing.T) {
	l, err := NewLoaderFromConfig(&Config{Path: "/data", Processor: ProcessorTypeSuffixNoise, Normalizer: NormalizerTypeZ, Method: MethodNormalizeFirst})
	require.NoError(t, err)
	assert.IsType(t, &SuffixNoisePadder{}, l.processor)
	assert.IsType(t, ZNormalizer{}, l.normalizer)
	assert.Equal(t, filepath.Join("/data", "Coffee", "Coffee_TEST.tsv"), l.filename("Coffee", SplitTest))

	_, err = NewLoaderFromConfig(&Config{Processor: "X", Normalizer: NormalizerTypeNone})
	assert.Error(t, err)
	_, err = NewLoaderFromConfig(&Config{Processor: ProcessorTypeNone, Normalizer: "X"})
	assert.Error(t, err)
	_, err = NewLoaderFromConfig(&Config{Processor: ProcessorTypeNone, Normalizer: NormalizerTypeNone, Method: 7})
	assert.Error(t, err)
}
