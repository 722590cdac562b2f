package anomaly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gilah-EnE/sampen_scanner/internal/catalog"
)

var (
	txt = catalog.GroupKey{Type: ".txt", Annotation: catalog.Unconfirmed}
	pdf = catalog.GroupKey{Type: ".pdf"}
	inf = math.Inf(1)
)

func entries(values ...float64) []Entry {
	out := make([]Entry, len(values))
	for i, v := range values {
		out[i] = Entry{Path: string(rune('a' + i)), Entropy: v}
	}
	return out
}

func TestSummarize(t *testing.T) {
	s, ok, err := Summarize(entries(1, 2, 3, 4, inf))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 4, s.Finite)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	// Population deviation divides by n, not n-1.
	assert.InDelta(t, math.Sqrt(1.25), s.StdDev, 1e-12)

	_, ok, err = Summarize(entries(inf, inf))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Summarize(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummarizeIdenticalValuesHaveNoSpread(t *testing.T) {
	s, ok, err := Summarize(entries(0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Zero(t, s.StdDev)
}

func TestScoreTwoPointGroupIsSymmetric(t *testing.T) {
	s, ok, err := Summarize(entries(0.4, 1.3))
	require.NoError(t, err)
	require.True(t, ok)

	zLow, zHigh := s.ZScore(0.4), s.ZScore(1.3)
	assert.InDelta(t, -zHigh, zLow, 1e-12)
	assert.InDelta(t, 1.0, zHigh, 1e-12)

	f, err := Score(Group{Key: txt, Entries: entries(0.4, 1.3)}, DefaultThreshold)
	require.NoError(t, err)
	assert.Empty(t, f.Records)
}

func TestScoreFlagsOutlier(t *testing.T) {
	g := Group{Key: txt, Entries: entries(0.5, 0.5, 0.5, 0.5, 1.7)}

	f, err := Score(g, DefaultThreshold)
	require.NoError(t, err)
	require.Len(t, f.Records, 1)
	assert.Equal(t, "e", f.Records[0].Path)
	// One outlier among n values sits sqrt(n-1) deviations away.
	assert.InDelta(t, 2.0, f.Records[0].ZScore, 1e-9)
	assert.False(t, f.Records[0].Infinite())
}

func TestScoreThresholdIsStrict(t *testing.T) {
	g := Group{Key: txt, Entries: entries(0.5, 0.5, 0.5, 0.5, 1.7)}

	f, err := Score(g, 2.5)
	require.NoError(t, err)
	assert.Empty(t, f.Records)

	f, err = Score(g, 0.1)
	require.NoError(t, err)
	assert.Len(t, f.Records, 5)
}

func TestScoreInfiniteAlwaysFlagged(t *testing.T) {
	g := Group{Key: pdf, Entries: entries(0.7, inf, 0.7, 0.9, inf)}

	for _, threshold := range []float64{0, 1.5, 100, math.MaxFloat64} {
		f, err := Score(g, threshold)
		require.NoError(t, err)

		var infinite []string
		for _, r := range f.Records {
			if r.Infinite() {
				assert.True(t, math.IsInf(r.ZScore, 1))
				infinite = append(infinite, r.Path)
			}
		}
		assert.Equal(t, []string{"b", "e"}, infinite, "threshold=%v", threshold)
	}
}

func TestScoreIdenticalFiniteValuesYieldNoFiniteAnomalies(t *testing.T) {
	g := Group{Key: txt, Entries: entries(0.3, 0.3, 0.3, inf)}

	for _, threshold := range []float64{0, 0.5, 1.5} {
		f, err := Score(g, threshold)
		require.NoError(t, err)
		require.Len(t, f.Records, 1)
		assert.Equal(t, "d", f.Records[0].Path)
	}
}

func TestScoreAllInfiniteGroupReportsNothing(t *testing.T) {
	f, err := Score(Group{Key: txt, Entries: entries(inf, inf)}, DefaultThreshold)
	require.NoError(t, err)
	assert.Empty(t, f.Records)
	assert.Zero(t, f.Stats.Finite)
}

func TestScorePreservesInputOrder(t *testing.T) {
	g := Group{Key: txt, Entries: entries(9, inf, 1, 1, 1, 1, 1, 1, 1, 1, 1, -7)}

	f, err := Score(g, DefaultThreshold)
	require.NoError(t, err)

	var paths []string
	for _, r := range f.Records {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"a", "b", "l"}, paths)
}

func TestDetectKeepsGroupsSeparate(t *testing.T) {
	groups := []Group{
		{Key: txt, Entries: entries(0.5, 0.5, 0.5, 0.5, 1.7)},
		{Key: pdf, Entries: entries(3.0, 3.0)},
		{Key: catalog.GroupKey{Type: ".pdf", Annotation: catalog.Mismatch}, Entries: entries(inf, 0.2)},
	}

	out, err := Detect(groups, DefaultThreshold)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, txt, out[0].Key)
	assert.Len(t, out[0].Records, 1)
	assert.Equal(t, ".pdf [signature mismatch]", out[1].Key.String())
	require.Len(t, out[1].Records, 1)
	assert.True(t, out[1].Records[0].Infinite())
}
