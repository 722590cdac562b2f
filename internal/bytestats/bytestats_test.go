package bytestats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cycle(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func random(n int) []byte {
	data := make([]byte, n)
	rand.New(rand.NewSource(1)).Read(data)
	return data
}

func TestCountBytesAndMerge(t *testing.T) {
	h := CountBytes([]byte("aab"))
	assert.Equal(t, 2, h['a'])
	assert.Equal(t, 1, h['b'])
	assert.Equal(t, 3, h.Total())

	merged := h.Merge(CountBytes([]byte("bc")))
	assert.Equal(t, 2, merged['b'])
	assert.Equal(t, 1, merged['c'])
	assert.Equal(t, 5, merged.Total())
	assert.Equal(t, 1, h['b'], "merge must not modify the receiver")
}

func TestCountTrueBools(t *testing.T) {
	assert.Equal(t, 0, CountTrueBools())
	assert.Equal(t, 2, CountTrueBools(true, false, true))
}

func TestShannonEntropy(t *testing.T) {
	assert.Equal(t, 0.0, ShannonEntropy(CountBytes(make([]byte, 100))))
	assert.Equal(t, 0.0, ShannonEntropy(Histogram{}))
	assert.InDelta(t, 8.0, ShannonEntropy(CountBytes(cycle(256*4))), 1e-12)
	assert.InDelta(t, 1.0, ShannonEntropy(CountBytes([]byte("abababab"))), 1e-12)
}

func TestChiSquare(t *testing.T) {
	assert.InDelta(t, 0.0, ChiSquare(CountBytes(cycle(512))), 1e-9)
	// All mass on one value: (n - n/256)^2/(n/256) + 255*(n/256).
	n := 256.0
	want := (n-1)*(n-1)/1 + 255*1
	assert.InDelta(t, want, ChiSquare(CountBytes(make([]byte, 256))), 1e-9)
	assert.Equal(t, 0.0, ChiSquare(Histogram{}))
}

func TestKsTest(t *testing.T) {
	uniform := KsTest(CountBytes(cycle(1024)))
	assert.InDelta(t, 0.0, uniform.Statistic, 1e-9)

	zeros := KsTest(CountBytes(make([]byte, 1024)))
	assert.InDelta(t, 255.0/256.0, zeros.Statistic, 1e-9)
	assert.Equal(t, 0, zeros.MaxDiffPosition)
	assert.InDelta(t, 1.36/32, zeros.Critical005, 1e-12)
	assert.Greater(t, zeros.Critical001, zeros.Critical005)
}

func TestAutocorrelation(t *testing.T) {
	constant, err := Autocorrelation(make([]byte, 4096), DefaultBlockSize)
	require.NoError(t, err)
	assert.Equal(t, 0.0, constant)

	periodic := make([]byte, 4096)
	for i := range periodic {
		periodic[i] = byte((i % 2) * 200)
	}
	high, err := Autocorrelation(periodic, 1024)
	require.NoError(t, err)

	low, err := Autocorrelation(random(4096), 1024)
	require.NoError(t, err)

	assert.Greater(t, high, 0.9)
	assert.Less(t, low, DefaultThresholds.Autocorrelation)

	tiny, err := Autocorrelation([]byte{7}, 16)
	require.NoError(t, err)
	assert.Equal(t, 0.0, tiny)
}

func TestCompressionRatio(t *testing.T) {
	text, err := CompressionRatio(make([]byte, 64*1024))
	require.NoError(t, err)
	assert.Greater(t, text, 10.0)

	noise, err := CompressionRatio(random(64 * 1024))
	require.NoError(t, err)
	assert.Less(t, noise, DefaultThresholds.Compression)

	empty, err := CompressionRatio(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty)
}

func TestSummarizeAndVotes(t *testing.T) {
	noise, err := Summarize(random(256 * 1024))
	require.NoError(t, err)
	assert.Equal(t, 256*1024, noise.Size)
	assert.Greater(t, noise.Shannon, 7.99)
	assert.True(t, LikelyEncrypted(noise.Votes(0, DefaultThresholds)))

	zeros, err := Summarize(make([]byte, 256*1024))
	require.NoError(t, err)
	votes := zeros.Votes(1000, DefaultThresholds)
	// Only the autocorrelation of constant data is low.
	assert.Equal(t, 1, votes)
	assert.False(t, LikelyEncrypted(votes))
}
