// Package dataset holds labelled, fixed-length time series and the loaders
// and pre-processors that produce them.
package dataset

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyDataset = errors.New("dataset is empty")
	ErrLabelRange   = errors.New("label out of range")
)

// Collection is the read-only view the classifiers consume.
type Collection interface {
	Len() int
	At(i int) Sequence
	NumClasses() int
	MaxLength() int
}

var _ Collection = (*Dataset)(nil)

// Sequence is an ordered list of values with a dense class label.
type Sequence struct {
	Data  []float64 `json:"data"`
	Label int       `json:"label"`
}

func (s Sequence) Len() int {
	return len(s.Data)
}

type Dataset struct {
	name       string
	split      string
	items      []Sequence
	numClasses int
	minLen     int
	maxLen     int
	lengths    []int
}

// New builds a dataset from sequences whose labels are already in [0, numClasses).
func New(name string, items []Sequence, numClasses int) (*Dataset, error) {
	if len(items) == 0 {
		return nil, ErrEmptyDataset
	}
	d := &Dataset{
		name:       name,
		items:      items,
		numClasses: numClasses,
		minLen:     items[0].Len(),
		maxLen:     items[0].Len(),
	}
	seen := map[int]struct{}{}
	for i := range items {
		if items[i].Label < 0 || items[i].Label >= numClasses {
			return nil, fmt.Errorf("sequence %d has label %d, classes %d: %w", i, items[i].Label, numClasses, ErrLabelRange)
		}
		n := items[i].Len()
		if n < d.minLen {
			d.minLen = n
		}
		if n > d.maxLen {
			d.maxLen = n
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			d.lengths = append(d.lengths, n)
		}
	}
	sort.Ints(d.lengths)
	return d, nil
}

func (d *Dataset) WithSplit(split string) *Dataset {
	d.split = split
	return d
}

func (d *Dataset) Name() string {
	return d.name
}

func (d *Dataset) Split() string {
	return d.split
}

func (d *Dataset) Len() int {
	return len(d.items)
}

func (d *Dataset) At(i int) Sequence {
	return d.items[i]
}

func (d *Dataset) NumClasses() int {
	return d.numClasses
}

func (d *Dataset) MinLength() int {
	return d.minLen
}

func (d *Dataset) MaxLength() int {
	return d.maxLen
}

// Lengths returns the distinct series lengths in ascending order.
func (d *Dataset) Lengths() []int {
	return d.lengths
}

// ClassCounts returns the number of sequences per class.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, d.numClasses)
	for i := range d.items {
		counts[d.items[i].Label]++
	}
	return counts
}

func (d *Dataset) Summary() string {
	lengths := make([]float64, len(d.items))
	for i := range d.items {
		lengths[i] = float64(d.items[i].Len())
	}
	return fmt.Sprintf(
		"problem: %s(%s) size: %d classes: %d min len: %d max len: %d mean len: %.1f",
		d.name, d.split, d.Len(), d.numClasses, d.minLen, d.maxLen, stat.Mean(lengths, nil),
	)
}
