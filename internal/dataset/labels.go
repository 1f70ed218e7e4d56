package dataset

import (
	"fmt"
	"sort"
)

// LabelEncoder maps raw class values to dense indices by ascending raw value.
type LabelEncoder struct {
	classes []int
	index   map[int]int
}

func NewLabelEncoder(items []Sequence) *LabelEncoder {
	index := map[int]int{}
	var classes []int
	for i := range items {
		if _, ok := index[items[i].Label]; !ok {
			index[items[i].Label] = 0
			classes = append(classes, items[i].Label)
		}
	}
	sort.Ints(classes)
	for i, c := range classes {
		index[c] = i
	}
	return &LabelEncoder{classes: classes, index: index}
}

func (e *LabelEncoder) Len() int {
	return len(e.classes)
}

// Classes returns the raw class values, indexed by dense label.
func (e *LabelEncoder) Classes() []int {
	return e.classes
}

func (e *LabelEncoder) Decode(label int) int {
	return e.classes[label]
}

// Encode returns a copy of items with dense labels. It fails on raw values
// the encoder has not seen.
func (e *LabelEncoder) Encode(items []Sequence) ([]Sequence, error) {
	out := make([]Sequence, len(items))
	for i := range items {
		label, ok := e.index[items[i].Label]
		if !ok {
			return nil, fmt.Errorf("unknown class %d at row %d: %w", items[i].Label, i, ErrLabelRange)
		}
		out[i] = Sequence{Data: items[i].Data, Label: label}
	}
	return out, nil
}
