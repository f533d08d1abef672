package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
}

func TestNormalize_UnitVectorUnchanged(t *testing.T) {
	v := []float32{0, 1}
	Normalize(v)
	assert.Equal(t, []float32{0, 1}, v)
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	Normalize(v)
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestDot_SelfSimilarityOfNormalized(t *testing.T) {
	v := []float32{1, 2, 2}
	Normalize(v)
	assert.InDelta(t, 1.0, dot(v, v), 1e-6)
}
