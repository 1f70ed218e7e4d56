package sfa

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Word is a packed vector of symbols. The first symbol occupies the highest
// order bits, so dropping trailing symbols is a right shift.
type Word uint64

// SymbolBits is the number of bits one symbol of the alphabet needs.
func SymbolBits(alphabetSize int) uint {
	if alphabetSize <= 2 {
		return 1
	}
	return uint(bits.Len(uint(alphabetSize - 1)))
}

// ValidateWord reports whether words of the given shape fit into a Word.
func ValidateWord(wordLength, alphabetSize int) error {
	if alphabetSize < 2 {
		return fmt.Errorf("alphabet size %d: %w", alphabetSize, ErrInvalidParameter)
	}
	if wordLength < 1 || uint(wordLength)*SymbolBits(alphabetSize) > 64 {
		return fmt.Errorf("word length %d with alphabet size %d: %w", wordLength, alphabetSize, ErrInvalidParameter)
	}
	return nil
}

func NewWord(symbols []int, alphabetSize int) Word {
	b := SymbolBits(alphabetSize)
	var w Word
	for _, s := range symbols {
		w = w<<b | Word(s)
	}
	return w
}

// Truncate keeps the first to symbols of a word of length from.
func (w Word) Truncate(from, to, alphabetSize int) Word {
	return w >> (uint(from-to) * SymbolBits(alphabetSize))
}

func (w Word) Symbols(length, alphabetSize int) []int {
	b := SymbolBits(alphabetSize)
	mask := Word(1)<<b - 1
	out := make([]int, length)
	for i := length - 1; i >= 0; i-- {
		out[i] = int(w & mask)
		w >>= b
	}
	return out
}

// Format renders the word with letters starting at 'a' for small alphabets.
func (w Word) Format(length, alphabetSize int) string {
	var sb strings.Builder
	for _, s := range w.Symbols(length, alphabetSize) {
		if alphabetSize <= 26 {
			sb.WriteByte(byte('a' + s))
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(s))
	}
	return sb.String()
}
