package core

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func randomMatrix(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64() * 255
	}
	return mat.NewDense(rows, cols, data)
}

func TestWaveletRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	shapes := [][2]int{{8, 8}, {64, 48}, {7, 9}, {33, 16}, {1, 5}, {256, 256}}
	for _, name := range []string{"haar", "db2", "db4", "db20"} {
		w, err := NewWavelet(name)
		require.NoError(t, err)
		for _, sh := range shapes {
			t.Run(fmt.Sprintf("%s/%dx%d", name, sh[0], sh[1]), func(t *testing.T) {
				m := randomMatrix(rng, sh[0], sh[1])
				sb, err := w.Decompose(m)
				require.NoError(t, err)

				hr, hc := sb.Approx.Dims()
				assert.Equal(t, (sh[0]+1)/2, hr)
				assert.Equal(t, (sh[1]+1)/2, hc)

				got, err := w.Reconstruct(sb)
				require.NoError(t, err)
				r, c := got.Dims()
				require.Equal(t, sh, [2]int{r, c})
				assert.True(t, mat.EqualApprox(got, m, 1e-6), "round trip differs")
			})
		}
	}
}

func TestWaveletIsOrthogonalOnEvenShapes(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	w, err := NewWavelet("db20")
	require.NoError(t, err)

	m := randomMatrix(rng, 64, 32)
	sb, err := w.Decompose(m)
	require.NoError(t, err)

	// 能量守恒
	energy := func(ms ...*mat.Dense) float64 {
		s := 0.0
		for _, x := range ms {
			n := mat.Norm(x, 2)
			s += n * n
		}
		return s
	}
	assert.InDelta(t, 1, energy(sb.Approx, sb.Horizontal, sb.Vertical, sb.Diagonal)/energy(m), 1e-7)

	// 改动子带后，再分解得到的仍是改动后的子带
	approx := randomMatrix(rng, 32, 16)
	rec, err := w.Reconstruct(sb.WithApprox(approx))
	require.NoError(t, err)
	again, err := w.Decompose(rec)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(again.Approx, approx, 1e-6))
	assert.True(t, mat.EqualApprox(again.Diagonal, sb.Diagonal, 1e-6))
}

func TestWaveletConstantImage(t *testing.T) {
	w, err := NewWavelet("db4")
	require.NoError(t, err)

	data := make([]float64, 16*16)
	for i := range data {
		data[i] = 100
	}
	sb, err := w.Decompose(mat.NewDense(16, 16, data))
	require.NoError(t, err)

	// 常数信号: 近似系数为 2*100，细节为 0
	assert.InDelta(t, 200, sb.Approx.At(3, 5), 1e-9)
	assert.InDelta(t, 0, mat.Norm(sb.Horizontal, 2), 1e-9)
	assert.InDelta(t, 0, mat.Norm(sb.Vertical, 2), 1e-9)
	assert.InDelta(t, 0, mat.Norm(sb.Diagonal, 2), 1e-9)
}

func TestWaveletFilterMismatch(t *testing.T) {
	db2, err := NewWavelet("db2")
	require.NoError(t, err)
	db4, err := NewWavelet("db4")
	require.NoError(t, err)

	sb, err := db2.Decompose(randomMatrix(rand.New(rand.NewPCG(5, 6)), 8, 8))
	require.NoError(t, err)

	_, err = db4.Reconstruct(sb)
	assert.ErrorIs(t, err, ErrFilterMismatch)
}

func TestWaveletReconstructShapeChecks(t *testing.T) {
	w, err := NewWavelet("haar")
	require.NoError(t, err)
	sb, err := w.Decompose(randomMatrix(rand.New(rand.NewPCG(7, 8)), 8, 8))
	require.NoError(t, err)

	_, err = w.Reconstruct(sb.WithApprox(mat.NewDense(3, 4, nil)))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = w.Reconstruct(sb.WithApprox(nil))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestWaveletRejectsNonFinite(t *testing.T) {
	w, err := NewWavelet("haar")
	require.NoError(t, err)

	m := mat.NewDense(4, 4, nil)
	m.Set(2, 1, math.NaN())
	_, err = w.Decompose(m)

	var ce *ComputationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "dwt", ce.Op)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestNewWaveletUnknown(t *testing.T) {
	_, err := NewWavelet("coif3")
	assert.ErrorIs(t, err, ErrUnknownWavelet)
}
