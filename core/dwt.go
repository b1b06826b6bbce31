package core

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Wavelet 单层二维离散小波变换
// 分解与重构只能通过同一个实例调用，保证两个方向使用同一组滤波器。
//
// 边界处理采用周期延拓 (periodization)：奇数长度先重复最后一个样本补成偶数，
// 每个子带边长为 ceil(n/2)。偶数尺寸下变换矩阵是正交方阵，
// 因此 Reconstruct(Decompose(M)) == M，且 Decompose(Reconstruct(S)) == S。
type Wavelet struct {
	name string
	lo   []float64 // 分解低通
	hi   []float64 // 分解高通
}

// Subbands 一层分解得到的四个子带
// 左上: Approx (低频近似)
// Horizontal: 列方向高通、行方向低通
// Vertical: 列方向低通、行方向高通
// Diagonal: 两个方向都是高通
type Subbands struct {
	Wavelet    string // 产生这组子带的小波名称
	Rows, Cols int    // 原始矩阵尺寸
	Approx     *mat.Dense
	Horizontal *mat.Dense
	Vertical   *mat.Dense
	Diagonal   *mat.Dense
}

// WithApprox 替换近似子带，细节子带共享
func (s *Subbands) WithApprox(a *mat.Dense) *Subbands {
	out := *s
	out.Approx = a
	return &out
}

// NewWavelet 按名称创建小波，支持 "haar" 与 "db1" ~ "db30"
func NewWavelet(name string) (*Wavelet, error) {
	order, err := parseWaveletName(name)
	if err != nil {
		return nil, err
	}
	lo, err := daubechies(order)
	if err != nil {
		return nil, fmt.Errorf("build %s filters: %w", name, err)
	}
	return &Wavelet{name: strings.ToLower(strings.TrimSpace(name)), lo: lo, hi: highPass(lo)}, nil
}

// Name 小波名称
func (w *Wavelet) Name() string { return w.name }

// FilterLen 滤波器长度
func (w *Wavelet) FilterLen() int { return len(w.lo) }

// Filters 返回分解低通/高通滤波器的副本
func (w *Wavelet) Filters() (lo, hi []float64) {
	lo = append([]float64(nil), w.lo...)
	hi = append([]float64(nil), w.hi...)
	return lo, hi
}

// Decompose 对矩阵进行一次二维小波分解
func (w *Wavelet) Decompose(m *mat.Dense) (*Subbands, error) {
	if m == nil || m.IsEmpty() {
		return nil, shapeErr("cannot decompose an empty matrix")
	}
	if err := checkFinite("dwt", m); err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	hr, hc := halfLen(rows), halfLen(cols)

	// 1. 行变换 (Row Transform)，每行拆成 L | H 两半
	lo := mat.NewDense(rows, hc, nil)
	hi := mat.NewDense(rows, hc, nil)
	for i := 0; i < rows; i++ {
		w.dwt1D(m.RawRowView(i), lo.RawRowView(i), hi.RawRowView(i))
	}

	// 2. 列变换 (Col Transform)
	sb := &Subbands{
		Wavelet:    w.name,
		Rows:       rows,
		Cols:       cols,
		Approx:     mat.NewDense(hr, hc, nil),
		Horizontal: mat.NewDense(hr, hc, nil),
		Vertical:   mat.NewDense(hr, hc, nil),
		Diagonal:   mat.NewDense(hr, hc, nil),
	}
	col := make([]float64, rows)
	a := make([]float64, hr)
	d := make([]float64, hr)
	for j := 0; j < hc; j++ {
		mat.Col(col, j, lo)
		w.dwt1D(col, a, d)
		sb.Approx.SetCol(j, a)
		sb.Horizontal.SetCol(j, d)

		mat.Col(col, j, hi)
		w.dwt1D(col, a, d)
		sb.Vertical.SetCol(j, a)
		sb.Diagonal.SetCol(j, d)
	}
	return sb, nil
}

// Reconstruct 二维小波逆变换
// 子带必须由同名小波产生，否则返回 ErrFilterMismatch。
func (w *Wavelet) Reconstruct(sb *Subbands) (*mat.Dense, error) {
	if sb == nil {
		return nil, shapeErr("nil subbands")
	}
	if sb.Wavelet != w.name {
		return nil, fmt.Errorf("%w: subbands produced by %q, reconstructing with %q", ErrFilterMismatch, sb.Wavelet, w.name)
	}
	if sb.Rows <= 0 || sb.Cols <= 0 {
		return nil, shapeErr("invalid target size %dx%d", sb.Rows, sb.Cols)
	}
	hr, hc := halfLen(sb.Rows), halfLen(sb.Cols)
	bands := []struct {
		name string
		m    *mat.Dense
	}{
		{"approximation", sb.Approx},
		{"horizontal", sb.Horizontal},
		{"vertical", sb.Vertical},
		{"diagonal", sb.Diagonal},
	}
	for _, b := range bands {
		if b.m == nil || b.m.IsEmpty() {
			return nil, shapeErr("missing %s subband", b.name)
		}
		if r, c := b.m.Dims(); r != hr || c != hc {
			return nil, shapeErr("%s subband is %dx%d, want %dx%d for a %dx%d target", b.name, r, c, hr, hc, sb.Rows, sb.Cols)
		}
		if err := checkFinite("idwt", b.m); err != nil {
			return nil, err
		}
	}

	// 1. 列逆变换
	lo := mat.NewDense(sb.Rows, hc, nil)
	hi := mat.NewDense(sb.Rows, hc, nil)
	a := make([]float64, hr)
	d := make([]float64, hr)
	col := make([]float64, sb.Rows)
	for j := 0; j < hc; j++ {
		mat.Col(a, j, sb.Approx)
		mat.Col(d, j, sb.Horizontal)
		w.idwt1D(a, d, col)
		lo.SetCol(j, col)

		mat.Col(a, j, sb.Vertical)
		mat.Col(d, j, sb.Diagonal)
		w.idwt1D(a, d, col)
		hi.SetCol(j, col)
	}

	// 2. 行逆变换
	out := mat.NewDense(sb.Rows, sb.Cols, nil)
	for i := 0; i < sb.Rows; i++ {
		w.idwt1D(lo.RawRowView(i), hi.RawRowView(i), out.RawRowView(i))
	}
	return out, nil
}

// dwt1D 一维周期延拓小波分解
// len(approx) == len(detail) == ceil(len(data)/2)
func (w *Wavelet) dwt1D(data, approx, detail []float64) {
	n := len(data)
	period := 2 * len(approx)
	for i := range approx {
		var a, d float64
		for k, h := range w.lo {
			idx := (2*i + k) % period
			if idx >= n {
				// 奇数长度: 补出的样本等于最后一个样本
				idx = n - 1
			}
			a += h * data[idx]
			d += w.hi[k] * data[idx]
		}
		approx[i] = a
		detail[i] = d
	}
}

// idwt1D 一维逆变换，即 dwt1D 的转置；结果裁剪到 len(out)
func (w *Wavelet) idwt1D(approx, detail, out []float64) {
	period := 2 * len(approx)
	full := make([]float64, period)
	for i := range approx {
		a, d := approx[i], detail[i]
		for k, h := range w.lo {
			full[(2*i+k)%period] += h*a + w.hi[k]*d
		}
	}
	copy(out, full)
}

func halfLen(n int) int { return (n + 1) / 2 }
