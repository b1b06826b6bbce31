package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultScale 默认嵌入强度
const DefaultScale = 0.01

// Engine 负责奇异值的嵌入和提取
type Engine struct {
	Scale float64 // 嵌入强度 (越大越容易恢复载荷，但隐写图像质量越差)
}

// NewEngine 创建嵌入引擎，scale 必须是正的有限数
func NewEngine(scale float64) (*Engine, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("invalid embedding scale %v: must be a positive finite number", scale)
	}
	return &Engine{Scale: scale}, nil
}

// Embed embedded = carrier + Scale * payload
func (e *Engine) Embed(carrier, payload []float64) ([]float64, error) {
	if len(carrier) != len(payload) {
		return nil, shapeErr("carrier has %d singular values, payload has %d", len(carrier), len(payload))
	}
	out := make([]float64, len(carrier))
	floats.AddScaledTo(out, carrier, e.Scale, payload)
	return out, nil
}

// Extract payload = (embedded - carrier) / Scale
// 只是 Embed 的代数逆运算，无法还原量化/截断造成的误差。
func (e *Engine) Extract(embedded, carrier []float64) ([]float64, error) {
	if len(embedded) != len(carrier) {
		return nil, shapeErr("embedded has %d singular values, carrier has %d", len(embedded), len(carrier))
	}
	out := make([]float64, len(embedded))
	floats.SubTo(out, embedded, carrier)
	floats.Scale(1/e.Scale, out)
	return out, nil
}
