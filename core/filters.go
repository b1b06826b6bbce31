package core

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// maxDaubechies 谱分解在 float64 下超过 30 阶后正交性误差超过 orthoTolerance
const maxDaubechies = 30

// orthoTolerance 生成的滤波器必须满足的正交性误差上限
const orthoTolerance = 1e-7

// parseWaveletName 解析小波名称，返回 Daubechies 阶数 (消失矩个数)
// "haar" 等价于 "db1"
func parseWaveletName(name string) (int, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "haar" {
		return 1, nil
	}
	if !strings.HasPrefix(n, "db") {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWavelet, name)
	}
	order, err := strconv.Atoi(n[2:])
	if err != nil || order < 1 || order > maxDaubechies {
		return 0, fmt.Errorf("%w: %q (supported: haar, db1..db%d)", ErrUnknownWavelet, name, maxDaubechies)
	}
	return order, nil
}

// daubechies 生成 N 阶 Daubechies 分解低通滤波器 (长度 2N)
//
// 谱分解法:
//
//	|H(w)|^2 = cos^(2N)(w/2) * P(sin^2(w/2)),  P(y) = Σ C(N-1+k, k) y^k
//
// 对 P 的每个根 y，z^2 - (2-4y)z + 1 = 0 有一对互为倒数的根，取单位圆内的那个 (极值相位)。
// 结果顺序与 PyWavelets 的 rec_lo 一致，db2 即 [(1+√3), (3+√3), (3-√3), (1-√3)] / (4√2)。
func daubechies(order int) ([]float64, error) {
	if order == 1 {
		return []float64{1 / math.Sqrt2, 1 / math.Sqrt2}, nil
	}

	// 1. P(y) 的系数 (升幂)
	p := make([]float64, order)
	for k := 0; k < order; k++ {
		p[k] = binomial(order-1+k, k)
	}

	roots, err := polyRoots(p)
	if err != nil {
		return nil, err
	}

	// 2. 由 y 根得到 z 根，并展开 Q(z) = Π (z - z_k)
	poly := []complex128{1}
	for _, y := range roots {
		b := 1 - 2*y
		d := cmplx.Sqrt(b*b - 1)
		// 两根之积为 1，先取模较大的根再求倒数，避免相减抵消
		big := b + d
		if cmplx.Abs(b-d) > cmplx.Abs(big) {
			big = b - d
		}
		poly = mulRoot(poly, 1/big)
	}

	// 3. 乘上 (1+z)^N
	for i := 0; i < order; i++ {
		poly = mulRoot(poly, -1)
	}

	// 4. 取实部并归一化，使低通系数和为 √2
	n := len(poly)
	filter := make([]float64, n)
	sum := 0.0
	for _, c := range poly {
		sum += real(c)
	}
	if sum == 0 || math.IsNaN(sum) {
		return nil, &ComputationError{Op: "wavelet", Err: errors.New("degenerate filter")}
	}
	// 升幂系数是 rec_lo 的逆序
	for i, c := range poly {
		filter[n-1-i] = real(c) * math.Sqrt2 / sum
	}

	if err := checkOrthonormal(filter); err != nil {
		return nil, err
	}
	return filter, nil
}

// polyRoots 通过伴随矩阵的特征值求多项式根，coef 为升幂系数
func polyRoots(coef []float64) ([]complex128, error) {
	deg := len(coef) - 1
	lead := coef[deg]

	c := mat.NewDense(deg, deg, nil)
	for j := 0; j < deg; j++ {
		c.Set(0, j, -coef[deg-1-j]/lead)
	}
	for i := 1; i < deg; i++ {
		c.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(c, mat.EigenNone); !ok {
		return nil, &ComputationError{Op: "wavelet", Err: errors.New("companion eigen decomposition failed")}
	}
	roots := eig.Values(nil)

	// 牛顿迭代修正特征值求根的舍入误差
	for i, r := range roots {
		for iter := 0; iter < 4; iter++ {
			v, dv := horner(coef, r)
			if dv == 0 {
				break
			}
			r -= v / dv
		}
		roots[i] = r
	}
	return roots, nil
}

// horner 计算多项式及其导数在 x 处的值
func horner(coef []float64, x complex128) (v, dv complex128) {
	for i := len(coef) - 1; i >= 0; i-- {
		dv = dv*x + v
		v = v*x + complex(coef[i], 0)
	}
	return v, dv
}

// mulRoot 计算 poly(z) * (z - root)，系数升幂
func mulRoot(poly []complex128, root complex128) []complex128 {
	out := make([]complex128, len(poly)+1)
	for i, c := range poly {
		out[i+1] += c
		out[i] -= root * c
	}
	return out
}

func binomial(n, k int) float64 {
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}

// checkOrthonormal 校验 Σ h[k]h[k+2m] = δ(m)
func checkOrthonormal(h []float64) error {
	for shift := 0; shift < len(h); shift += 2 {
		s := 0.0
		for k := 0; k+shift < len(h); k++ {
			s += h[k] * h[k+shift]
		}
		want := 0.0
		if shift == 0 {
			want = 1
		}
		if math.Abs(s-want) > orthoTolerance {
			return &ComputationError{
				Op:  "wavelet",
				Err: fmt.Errorf("filter of length %d is not orthonormal at shift %d (%.3g)", len(h), shift, s-want),
			}
		}
	}
	return nil
}

// highPass 由低通滤波器构造正交镜像高通: g[k] = (-1)^k h[L-1-k]
func highPass(lo []float64) []float64 {
	n := len(lo)
	hi := make([]float64, n)
	for k := range hi {
		v := lo[n-1-k]
		if k%2 == 1 {
			v = -v
		}
		hi[k] = v
	}
	return hi
}
