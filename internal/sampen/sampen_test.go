package sampen

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveCount is a direct, single-threaded rendition of the pair loop using
// float distances, used as the reference for the optimized counter.
func naiveCount(data []byte, k, m int, r float64) MatchCounts {
	var counts MatchCounts
	n := len(data) - k + 1
	dist := func(a, b []byte) float64 {
		d := 0
		for x := range a {
			if a[x] != b[x] {
				d++
			}
		}
		return float64(d) / float64(len(a))
	}
	for i := 0; i < n-m; i++ {
		for j := i + 1; j < n-m; j++ {
			if dist(data[i:i+m], data[j:j+m]) <= r {
				counts.M++
				if dist(data[i:i+m+1], data[j:j+m+1]) <= r {
					counts.M1++
				}
			}
		}
	}
	return counts
}

func randomBytes(seed int64, n, alphabet int) []byte {
	rng := rand.New(rand.NewSource(seed))
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(rng.Intn(alphabet))
	}
	return data
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		n, k int
		want int
	}{
		{"regular", 10, 4, 7},
		{"window equals content", 4, 4, 1},
		{"window longer than content", 3, 4, 0},
		{"empty content", 0, 1, 0},
		{"single byte windows", 5, 1, 5},
		{"minimum admitted size", 4 + DefaultComparisonLength, 4, DefaultComparisonLength + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := Extract(make([]byte, tt.n), tt.k)
			assert.Equal(t, tt.want, seq.Len())
		})
	}
}

func TestExtractWindowsAreOrderedViews(t *testing.T) {
	data := []byte("abcdef")
	seq := Extract(data, 3)
	require.Equal(t, 4, seq.Len())

	for i := 0; i < seq.Len(); i++ {
		assert.Equal(t, data[i:i+3], seq.At(i))
	}

	data[2] = 'X'
	assert.Equal(t, []byte("bXd"), seq.At(1))
	assert.Equal(t, 3, cap(seq.At(0)))
}

func TestTemplateExtendsPastShortWindow(t *testing.T) {
	seq := Extract([]byte("abcdef"), 2)
	assert.Equal(t, []byte("bc"), seq.At(1))
	assert.Equal(t, []byte("bcd"), seq.template(1, 3))
	assert.Equal(t, []byte("b"), seq.template(1, 1))
}

func TestPartition(t *testing.T) {
	spans := partition(10, 3)
	require.Len(t, spans, 3)
	assert.Equal(t, []span{{0, 4}, {4, 8}, {8, 10}}, spans)

	assert.Equal(t, []span{{0, 1}, {1, 2}}, partition(2, 8))
	assert.Equal(t, []span{{0, 7}}, partition(7, 1))
	assert.Nil(t, partition(0, 4))
	assert.Nil(t, partition(-3, 4))
}

func TestAllowedMismatches(t *testing.T) {
	assert.Equal(t, 0, allowedMismatches(2, 0.2))
	assert.Equal(t, 0, allowedMismatches(3, 0.2))
	assert.Equal(t, 1, allowedMismatches(5, 0.2))
	assert.Equal(t, 2, allowedMismatches(10, 0.2))
	assert.Equal(t, 1, allowedMismatches(2, 0.5))
	assert.Equal(t, 3, allowedMismatches(3, 1))
}

func TestCountConstantContent(t *testing.T) {
	data := make([]byte, 10)
	for i := range data {
		data[i] = 'a'
	}

	counts, err := NewCounter(2).Count(context.Background(), Extract(data, 4))
	require.NoError(t, err)
	// n = 7 shingles, i and j range over [0, 5): C(5, 2) pairs, all equal.
	assert.Equal(t, MatchCounts{M: 10, M1: 10}, counts)
}

func TestCountAlternatingContent(t *testing.T) {
	data := []byte("abababababab")

	counts, err := NewCounter(3).Count(context.Background(), Extract(data, 3))
	require.NoError(t, err)
	// 10 shingles, indices [0, 8): four even and four odd templates.
	assert.Equal(t, MatchCounts{M: 12, M1: 12}, counts)
}

func TestCountMatchesReference(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		k, m     int
		r        float64
		alphabet int
	}{
		{"binary alphabet", randomBytes(1, 400, 2), 4, 2, 0.2, 2},
		{"small alphabet", randomBytes(2, 600, 4), 8, 2, 0.2, 4},
		{"loose tolerance", randomBytes(3, 300, 4), 5, 2, 0.5, 4},
		{"longer templates", randomBytes(4, 300, 3), 6, 4, 0.25, 3},
		{"window shorter than template", randomBytes(5, 200, 2), 1, 2, 0.2, 2},
		{"window equal to template", randomBytes(6, 200, 3), 2, 2, 0.2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := naiveCount(tt.data, tt.k, tt.m, tt.r)
			counter := Counter{M: tt.m, R: tt.r, Workers: 4}
			got, err := counter.Count(context.Background(), Extract(tt.data, tt.k))
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.LessOrEqual(t, got.M1, got.M)
		})
	}
}

func TestCountIsPartitionIndependent(t *testing.T) {
	data := randomBytes(42, 1500, 4)
	seq := Extract(data, 6)
	ctx := context.Background()

	base, err := Counter{M: 2, R: 0.2, Workers: 1}.Count(ctx, seq)
	require.NoError(t, err)
	require.Positive(t, base.M)

	for _, workers := range []int{2, 3, 5, 7, 16, 64, 5000} {
		got, err := Counter{M: 2, R: 0.2, Workers: workers}.Count(ctx, seq)
		require.NoError(t, err)
		assert.Equal(t, base, got, "workers=%d", workers)
	}

	// Arbitrary uneven spans reduce to the same totals.
	c := NewCounter(1)
	total := seq.Len() - c.M
	rng := rand.New(rand.NewSource(7))
	var summed MatchCounts
	for lo := 0; lo < total; {
		hi := min(total, lo+1+rng.Intn(200))
		part, err := c.countSpan(ctx, seq, span{lo: lo, hi: hi})
		require.NoError(t, err)
		summed = summed.Add(part)
		lo = hi
	}
	assert.Equal(t, base, summed)
}

func TestCountRejectsInvalidParameters(t *testing.T) {
	seq := Extract([]byte("abcdefgh"), 2)

	_, err := Counter{M: 0, R: 0.2}.Count(context.Background(), seq)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Counter{M: 2, R: -0.1}.Count(context.Background(), seq)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Counter{M: 2, R: math.NaN()}.Estimate(context.Background(), seq)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestCountHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCounter(2).Count(ctx, Extract(randomBytes(9, 500, 4), 4))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEntropy(t *testing.T) {
	assert.True(t, math.IsInf(Entropy(MatchCounts{}), 1))
	assert.True(t, math.IsInf(Entropy(MatchCounts{M: 5, M1: 0}), 1))
	assert.Equal(t, 0.0, Entropy(MatchCounts{M: 7, M1: 7}))
	assert.False(t, math.Signbit(Entropy(MatchCounts{M: 7, M1: 7})))
	assert.InDelta(t, math.Ln2, Entropy(MatchCounts{M: 4, M1: 2}), 1e-12)

	for m := int64(1); m <= 50; m++ {
		for m1 := int64(1); m1 <= m; m1++ {
			e := Entropy(MatchCounts{M: m, M1: m1})
			require.False(t, math.IsInf(e, 0) || math.IsNaN(e))
			require.GreaterOrEqual(t, e, 0.0)
		}
	}
}

func TestEstimate(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(2)

	// Two shingles cannot hold m+1 = 3 templates.
	res, err := c.Estimate(ctx, Extract([]byte("abc"), 2))
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.Entropy, 1))
	assert.Equal(t, MatchCounts{}, res.Counts)

	// Minimum admitted size: one outer index and no partner, so no matches.
	res, err = c.Estimate(ctx, Extract([]byte("aaaaaa"), 4))
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.Entropy, 1))

	res, err = c.Estimate(ctx, Extract(make([]byte, 64), 4))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Entropy)
}

func TestEstimateOrdersRegularity(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(0)

	periodic := make([]byte, 2048)
	for i := range periodic {
		periodic[i] = byte(i % 7)
	}
	noisy := randomBytes(11, 2048, 4)

	low, err := c.Estimate(ctx, Extract(periodic, 4))
	require.NoError(t, err)
	high, err := c.Estimate(ctx, Extract(noisy, 4))
	require.NoError(t, err)

	require.False(t, math.IsInf(high.Entropy, 0))
	assert.Less(t, low.Entropy, high.Entropy)
}

func BenchmarkCount(b *testing.B) {
	seq := Extract(randomBytes(99, 4096, 16), 8)
	c := NewCounter(0)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Count(ctx, seq); err != nil {
			b.Fatal(err)
		}
	}
}
