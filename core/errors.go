package core

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch 图像或矩阵尺寸不一致
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrFilterMismatch 逆变换使用的小波与正变换不一致
	ErrFilterMismatch = errors.New("wavelet filter mismatch")
	// ErrUnknownWavelet 不支持的小波名称
	ErrUnknownWavelet = errors.New("unknown wavelet")
	// ErrNonFinite 输入中包含 NaN 或 Inf
	ErrNonFinite = errors.New("non-finite value")
)

// ComputationError 矩阵运算失败，Op 标明出错的步骤 (dwt / idwt / svd ...)
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: computation failed: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

func shapeErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrShapeMismatch}, args...)...)
}

// checkFinite 检查矩阵中不含 NaN/Inf
func checkFinite(op string, m *mat.Dense) error {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		for j, v := range m.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &ComputationError{Op: op, Err: fmt.Errorf("%w at (%d,%d)", ErrNonFinite, i, j)}
			}
		}
	}
	return nil
}
