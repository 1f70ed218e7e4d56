package boss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-sod/boss/internal/dataset"
)

// series draws a noisy sine whose period depends on the class.
func series(n, class, seed int) []float64 {
	period := 6.0
	if class == 1 {
		period = 13.0
	}
	out := make([]float64, n)
	for i := range out {
		jitter := float64((i*7+seed*13)%5) / 20
		out[i] = math.Sin(2*math.Pi*float64(i+seed)/period) + jitter
	}
	return out
}

func twoClass(t *testing.T, count, length int) *dataset.Dataset {
	t.Helper()
	items := make([]dataset.Sequence, count)
	for i := range items {
		items[i] = dataset.Sequence{Data: series(length, i%2, i), Label: i % 2}
	}
	d, err := dataset.New("two-class", items, 2)
	require.NoError(t, err)
	return d
}
