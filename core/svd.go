package core

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// SVDTriple 紧凑形式的奇异值分解 M = Left · diag(Values) · Right
// Left: m×k，Values: 长度 k 且降序，Right: k×n，k = min(m, n)
type SVDTriple struct {
	Left   *mat.Dense
	Values []float64
	Right  *mat.Dense
}

// DecomposeSVD 对矩阵做 thin SVD
func DecomposeSVD(m *mat.Dense) (*SVDTriple, error) {
	if m == nil || m.IsEmpty() {
		return nil, shapeErr("cannot factorize an empty matrix")
	}
	if err := checkFinite("svd", m); err != nil {
		return nil, err
	}

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, &ComputationError{Op: "svd", Err: errors.New("factorization did not converge")}
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v) // gonum 返回 V，这里需要 V^T

	return &SVDTriple{
		Left:   &u,
		Values: svd.Values(nil),
		Right:  mat.DenseCopyOf(v.T()),
	}, nil
}

// Rank 奇异值个数 k
func (t *SVDTriple) Rank() int { return len(t.Values) }

// Reconstruct 用自身的奇异值重建矩阵
func (t *SVDTriple) Reconstruct() *mat.Dense {
	out, _ := t.ReconstructWith(t.Values)
	return out
}

// ReconstructWith 保持左右基不变，替换奇异值后重建: (Left * values) · Right
func (t *SVDTriple) ReconstructWith(values []float64) (*mat.Dense, error) {
	_, k := t.Left.Dims()
	if len(values) != k {
		return nil, shapeErr("got %d singular values for a rank-%d basis", len(values), k)
	}

	// Left 按列缩放，等价于 Left · diag(values)
	var scaled mat.Dense
	scaled.Apply(func(_, j int, v float64) float64 {
		return v * values[j]
	}, t.Left)

	var out mat.Dense
	out.Mul(&scaled, t.Right)
	return &out, nil
}
