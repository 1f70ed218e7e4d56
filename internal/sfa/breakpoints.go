package sfa

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-sod/boss/internal/dataset"
)

// Breakpoints is the [wordLength][alphabetSize] table of ascending
// quantization thresholds. The last threshold of every row is +Inf.
// A table is never modified after Fit.
type Breakpoints struct {
	table        [][]float64
	alphabetSize int
}

// Fit estimates equi-depth breakpoints (multiple coefficient binning) from
// the disjoint windows of every training series. Coefficients are rounded to
// two decimals before binning.
func Fit(train dataset.Collection, t *Transform, alphabetSize int) (*Breakpoints, error) {
	if err := ValidateWord(t.WordLength(), alphabetSize); err != nil {
		return nil, err
	}
	if train.Len() == 0 {
		return nil, dataset.ErrEmptyDataset
	}

	var windows [][]float64
	for i := 0; i < train.Len(); i++ {
		dfts, err := t.Disjoint(train.At(i).Data)
		if err != nil {
			return nil, fmt.Errorf("unable to transform series %d: %w", i, err)
		}
		windows = append(windows, dfts...)
	}

	total := len(windows)
	table := make([][]float64, t.WordLength())
	column := make([]float64, total)
	for letter := range table {
		for i := range windows {
			column[i] = roundHalfUp(windows[i][letter])
		}
		sort.Float64s(column)

		row := make([]float64, alphabetSize)
		for bp := 0; bp < alphabetSize-1; bp++ {
			row[bp] = column[(bp+1)*total/alphabetSize]
		}
		row[alphabetSize-1] = math.Inf(1)
		table[letter] = row
	}
	return &Breakpoints{table: table, alphabetSize: alphabetSize}, nil
}

// NewBreakpoints wraps an explicit table. Rows must share the alphabet size.
func NewBreakpoints(table [][]float64) (*Breakpoints, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("empty breakpoint table: %w", ErrInvalidParameter)
	}
	alphabetSize := len(table[0])
	if err := ValidateWord(len(table), alphabetSize); err != nil {
		return nil, err
	}
	rows := make([][]float64, len(table))
	for i := range table {
		if len(table[i]) != alphabetSize {
			return nil, fmt.Errorf("row %d has %d thresholds, want %d: %w", i, len(table[i]), alphabetSize, ErrInvalidParameter)
		}
		rows[i] = append([]float64(nil), table[i]...)
	}
	return &Breakpoints{table: rows, alphabetSize: alphabetSize}, nil
}

func (b *Breakpoints) WordLength() int {
	return len(b.table)
}

func (b *Breakpoints) AlphabetSize() int {
	return b.alphabetSize
}

// Table returns a copy of the thresholds.
func (b *Breakpoints) Table() [][]float64 {
	out := make([][]float64, len(b.table))
	for i := range b.table {
		out[i] = append([]float64(nil), b.table[i]...)
	}
	return out
}

// Truncate returns a view of the first wordLength rows.
func (b *Breakpoints) Truncate(wordLength int) *Breakpoints {
	if wordLength >= len(b.table) {
		return b
	}
	return &Breakpoints{table: b.table[:wordLength:wordLength], alphabetSize: b.alphabetSize}
}

// Quantize maps one window's coefficients to a word: per position, the index
// of the first threshold that is not below the coefficient.
func (b *Breakpoints) Quantize(coeffs []float64) Word {
	bits := SymbolBits(b.alphabetSize)
	var w Word
	for letter, row := range b.table {
		symbol := len(row) - 1
		for bp, threshold := range row {
			if coeffs[letter] <= threshold {
				symbol = bp
				break
			}
		}
		w = w<<bits | Word(symbol)
	}
	return w
}

// QuantizeAll quantizes a sequence of windows.
func (b *Breakpoints) QuantizeAll(dfts [][]float64) []Word {
	words := make([]Word, len(dfts))
	for i := range dfts {
		words[i] = b.Quantize(dfts[i])
	}
	return words
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
