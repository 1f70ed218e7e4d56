package bag

import (
	"errors"
	"fmt"

	"github.com/go-sod/boss/internal/sfa"
)

var ErrInvalidWordLength = fmt.Errorf("invalid word length: %w", sfa.ErrInvalidParameter)

// Result is the outcome of shortening one series' words.
type Result struct {
	Bag *Bag
	Err error
}

// Shorten truncates words of length from to length to and rebuilds the bag,
// reducing runs of equal truncated words again.
func Shorten(words []sfa.Word, from, to, alphabetSize int, label int) Result {
	if to > from || to < 2 {
		return Result{Err: fmt.Errorf("shorten %d to %d: %w", from, to, ErrInvalidWordLength)}
	}
	truncated := make([]sfa.Word, len(words))
	for i, w := range words {
		truncated[i] = w.Truncate(from, to, alphabetSize)
	}
	return Result{Bag: FromWords(truncated, label)}
}

// IsInvalidWordLength reports whether err came from a rejected shortening.
func IsInvalidWordLength(err error) bool {
	return errors.Is(err, ErrInvalidWordLength)
}
