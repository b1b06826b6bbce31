package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineEmbedExtractInverse(t *testing.T) {
	e, err := NewEngine(DefaultScale)
	require.NoError(t, err)

	carrier := []float64{32000, 1500, 800, 12.5, 0.3}
	payload := []float64{30000, 1600, 420, 7, 0}

	embedded, err := e.Embed(carrier, payload)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{32300, 1516, 804.2, 12.57, 0.3}, embedded, 1e-9)

	got, err := e.Extract(embedded, carrier)
	require.NoError(t, err)
	assert.InDeltaSlice(t, payload, got, 1e-6)

	// 输入不被修改
	assert.Equal(t, []float64{32000, 1500, 800, 12.5, 0.3}, carrier)
}

func TestEngineLengthMismatch(t *testing.T) {
	e := &Engine{Scale: 0.1}
	_, err := e.Embed([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = e.Extract([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewEngineRejectsBadScale(t *testing.T) {
	for _, s := range []float64{0, -0.01, math.NaN(), math.Inf(1)} {
		_, err := NewEngine(s)
		assert.Error(t, err, "scale %v", s)
	}
}
