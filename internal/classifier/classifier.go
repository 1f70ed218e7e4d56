// Package classifier declares the capabilities shared by the bag-of-words
// classifiers.
package classifier

import (
	"context"

	"github.com/go-sod/boss/internal/dataset"
)

type Classifier interface {
	Build(ctx context.Context, train dataset.Collection) error
	Classify(series []float64) (int, error)
}

// Distancer measures how far the bag of series a is from the bag of series b.
type Distancer interface {
	Distance(a, b int) float64
}

// LeaveOneOut classifies training series i against every other training series.
type LeaveOneOut interface {
	ClassifyLeaveOneOut(i int) int
}

// Params identifies one parameterization of a member.
type Params struct {
	WindowSize   int  `json:"windowSize"`
	WordLength   int  `json:"wordLength"`
	AlphabetSize int  `json:"alphabetSize"`
	Norm         bool `json:"norm"`
}

// Member is what an ensemble needs from one of its models.
type Member interface {
	Classifier
	Distancer
	LeaveOneOut
	Params() Params
}

