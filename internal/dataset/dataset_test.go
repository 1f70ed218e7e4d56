package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	d, err := New("toy", []Sequence{
		{Data: []float64{1, 2, 3}, Label: 1},
		{Data: []float64{1, 2, 3, 4, 5}, Label: 0},
		{Data: []float64{1, 2, 3}, Label: 1},
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, "toy", d.Name())
	assert.Equal(t, SplitTrain, d.WithSplit(SplitTrain).Split())
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 2, d.NumClasses())
	assert.Equal(t, 3, d.MinLength())
	assert.Equal(t, 5, d.MaxLength())
	assert.Equal(t, []int{3, 5}, d.Lengths())
	assert.Equal(t, []int{1, 2}, d.ClassCounts())
	assert.Contains(t, d.Summary(), "mean len: 3.7")
}

func TestNew_Errors(t *testing.T) {
	_, err := New("empty", nil, 2)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = New("range", []Sequence{{Data: []float64{1}, Label: 2}}, 2)
	assert.ErrorIs(t, err, ErrLabelRange)
	_, err = New("negative", []Sequence{{Data: []float64{1}, Label: -1}}, 2)
	assert.ErrorIs(t, err, ErrLabelRange)
}

func TestLabelEncoder(t *testing.T) {
	raw := []Sequence{
		{Data: []float64{1}, Label: 7},
		{Data: []float64{2}, Label: -1},
		{Data: []float64{3}, Label: 3},
		{Data: []float64{4}, Label: 7},
	}
	e := NewLabelEncoder(raw)
	assert.Equal(t, 3, e.Len())
	assert.Equal(t, []int{-1, 3, 7}, e.Classes())

	encoded, err := e.Encode(raw)
	require.NoError(t, err)
	var labels []int
	for _, s := range encoded {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []int{2, 0, 1, 2}, labels)
	assert.Equal(t, 7, raw[0].Label)
	assert.Equal(t, 3, e.Decode(1))

	_, err = e.Encode([]Sequence{{Data: []float64{1}, Label: 5}})
	assert.ErrorIs(t, err, ErrLabelRange)
}
