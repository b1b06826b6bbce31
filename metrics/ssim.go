package metrics

import (
	"fmt"

	"svdstego/converter"
	"svdstego/core"
)

const (
	ssimWindow = 7
	ssimK1     = 0.01
	ssimK2     = 0.03
)

// SSIM 结构相似度
// 7×7 均值窗口、样本协方差、动态范围 255；每个通道在去掉 3 像素边框的区域上取均值，
// 最后三个通道取平均。
func SSIM(original, other *converter.Image) (float64, error) {
	if err := checkShape(original, other); err != nil {
		return 0, err
	}
	if original.Height < ssimWindow || original.Width < ssimWindow {
		return 0, fmt.Errorf("%w: SSIM needs at least %dx%d pixels, got %dx%d",
			core.ErrShapeMismatch, ssimWindow, ssimWindow, original.Height, original.Width)
	}

	total := 0.0
	for c := 0; c < 3; c++ {
		total += channelSSIM(original, other, c)
	}
	return total / 3, nil
}

func channelSSIM(a, b *converter.Image, c int) float64 {
	h, w := a.Height, a.Width
	sx := newIntegral(h, w)
	sy := newIntegral(h, w)
	sxx := newIntegral(h, w)
	syy := newIntegral(h, w)
	sxy := newIntegral(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			xv := float64(a.At(y, x, c))
			yv := float64(b.At(y, x, c))
			sx.add(y, x, xv)
			sy.add(y, x, yv)
			sxx.add(y, x, xv*xv)
			syy.add(y, x, yv*yv)
			sxy.add(y, x, xv*yv)
		}
	}

	const np = ssimWindow * ssimWindow
	covNorm := float64(np) / float64(np-1)
	c1 := (ssimK1 * PixelMax) * (ssimK1 * PixelMax)
	c2 := (ssimK2 * PixelMax) * (ssimK2 * PixelMax)
	pad := ssimWindow / 2

	sum := 0.0
	count := 0
	for y := pad; y < h-pad; y++ {
		for x := pad; x < w-pad; x++ {
			y0, x0, y1, x1 := y-pad, x-pad, y+pad+1, x+pad+1
			ux := sx.box(y0, x0, y1, x1) / np
			uy := sy.box(y0, x0, y1, x1) / np
			uxx := sxx.box(y0, x0, y1, x1) / np
			uyy := syy.box(y0, x0, y1, x1) / np
			uxy := sxy.box(y0, x0, y1, x1) / np

			vx := covNorm * (uxx - ux*ux)
			vy := covNorm * (uyy - uy*uy)
			vxy := covNorm * (uxy - ux*uy)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			sum += num / den
			count++
		}
	}
	return sum / float64(count)
}

// integral 二维前缀和，box 查询任意矩形区域的和
type integral struct {
	w   int
	sum []float64 // (h+1)×(w+1)
}

func newIntegral(h, w int) *integral {
	return &integral{w: w + 1, sum: make([]float64, (h+1)*(w+1))}
}

// add 必须按行优先顺序调用
func (t *integral) add(y, x int, v float64) {
	i := (y+1)*t.w + x + 1
	t.sum[i] = v + t.sum[i-1] + t.sum[i-t.w] - t.sum[i-t.w-1]
}

// box 返回 [y0,y1)×[x0,x1) 的和
func (t *integral) box(y0, x0, y1, x1 int) float64 {
	return t.sum[y1*t.w+x1] - t.sum[y0*t.w+x1] - t.sum[y1*t.w+x0] + t.sum[y0*t.w+x0]
}
