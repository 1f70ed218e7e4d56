// Package bag turns word sequences into histograms and measures the
// distance between them.
package bag

import (
	"math"
	"sort"

	"github.com/go-sod/boss/internal/sfa"
)

// Entry is one word of a bag and the number of times it was counted.
type Entry struct {
	Word  sfa.Word `json:"word"`
	Count int      `json:"count"`
}

// Bag is a histogram of words with the label of the series it came from.
// Entries are sorted by word, unique and have positive counts.
type Bag struct {
	Label   int
	entries []Entry
}

// FromWords counts words, skipping a word equal to the one right before it.
func FromWords(words []sfa.Word, label int) *Bag {
	return fromReduced(Reduce(words), label)
}

func fromReduced(words []sfa.Word, label int) *Bag {
	sorted := append([]sfa.Word(nil), words...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	entries := make([]Entry, 0, len(sorted))
	for _, w := range sorted {
		if n := len(entries); n > 0 && entries[n-1].Word == w {
			entries[n-1].Count++
			continue
		}
		entries = append(entries, Entry{Word: w, Count: 1})
	}
	return &Bag{Label: label, entries: entries}
}

// Reduce drops every word equal to its predecessor.
func Reduce(words []sfa.Word) []sfa.Word {
	out := make([]sfa.Word, 0, len(words))
	for i, w := range words {
		if i > 0 && w == words[i-1] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Count returns the number of times w was counted, 0 if absent.
func (b *Bag) Count(w sfa.Word) int {
	i := sort.Search(len(b.entries), func(i int) bool { return b.entries[i].Word >= w })
	if i < len(b.entries) && b.entries[i].Word == w {
		return b.entries[i].Count
	}
	return 0
}

// Len is the number of distinct words.
func (b *Bag) Len() int {
	return len(b.entries)
}

// Total is the sum of all counts.
func (b *Bag) Total() int {
	var total int
	for _, e := range b.entries {
		total += e.Count
	}
	return total
}

func (b *Bag) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Bag) Equal(other *Bag) bool {
	if b.Label != other.Label || len(b.entries) != len(other.entries) {
		return false
	}
	for i := range b.entries {
		if b.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}

// Distance sums the squared count differences over the words of a. Words
// present only in b are ignored, so the measure is not symmetric.
func Distance(a, b *Bag) float64 {
	return DistanceBounded(a, b, math.Inf(1))
}

// DistanceBounded is Distance that returns +Inf as soon as the partial sum
// exceeds bound.
func DistanceBounded(a, b *Bag, bound float64) float64 {
	var dist float64
	j := 0
	for _, e := range a.entries {
		for j < len(b.entries) && b.entries[j].Word < e.Word {
			j++
		}
		diff := e.Count
		if j < len(b.entries) && b.entries[j].Word == e.Word {
			diff -= b.entries[j].Count
		}
		dist += float64(diff * diff)
		if dist > bound {
			return math.Inf(1)
		}
	}
	return dist
}
