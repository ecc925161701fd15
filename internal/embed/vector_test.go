package embed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorBytes_RoundTripIsExact(t *testing.T) {
	// Given: a vector with awkward float32 values
	original := []float32{0.1, -2.5, 3.14159, 0, float32(math.SmallestNonzeroFloat32), -1e30}

	// When: serializing and deserializing
	restored := BytesToVector(VectorToBytes(original))

	// Then: every bit should survive
	require.Len(t, restored, len(original))
	for i := range original {
		assert.Equal(t, math.Float32bits(original[i]), math.Float32bits(restored[i]),
			"component %d must round-trip bit-exactly", i)
	}
}

func TestVectorToBytes_FourBytesPerComponent(t *testing.T) {
	assert.Len(t, VectorToBytes(make([]float32, 7)), 28)
	assert.Empty(t, VectorToBytes(nil))
}

func TestBytesToVector_IgnoresTrailingBytes(t *testing.T) {
	// Given: serialized bytes with a truncated trailing component
	buf := append(VectorToBytes([]float32{1, 2}), 0xff, 0xff)

	// Then: only whole components are decoded
	assert.Equal(t, []float32{1, 2}, BytesToVector(buf))
}

func TestCosineSimilarity_IdenticalVectorsScoreOne(t *testing.T) {
	v := []float32{0.3, -0.4, 0.5}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

func TestCosineSimilarity_OrthogonalVectorsScoreZero(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarity_OppositeVectorsScoreMinusOne(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}
	assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarity_IsSymmetric(t *testing.T) {
	a := []float32{0.2, 0.9, -0.1}
	b := []float32{0.8, 0.1, 0.4}
	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
}

func TestCosineSimilarity_DegenerateInputsScoreZero(t *testing.T) {
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}), "length mismatch")
	assert.Zero(t, CosineSimilarity(nil, nil), "empty vectors")
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}), "zero norm")
}

func TestNormalizeVector_UnitLength(t *testing.T) {
	// Given: an arbitrary non-zero vector
	normalized := normalizeVector([]float32{3, 4})

	// Then: its magnitude should be 1
	var sum float64
	for _, v := range normalized {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
}

func TestNormalizeVector_ZeroVectorUnchanged(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, normalizeVector(zero))
}
