package converter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"svdstego/core"
)

// Channels 三个颜色通道，顺序 R, G, B
type Channels [3]*mat.Dense

// Split 将 RGB 图像拆成三个 H×W 矩阵
func Split(img *Image) (Channels, error) {
	var ch Channels
	if !img.Valid() {
		return ch, fmt.Errorf("%w: invalid RGB buffer %s", core.ErrShapeMismatch, describe(img))
	}
	n := img.Height * img.Width
	for c := range ch {
		data := make([]float64, n)
		for p := 0; p < n; p++ {
			data[p] = float64(img.Pix[p*3+c])
		}
		ch[c] = mat.NewDense(img.Height, img.Width, data)
	}
	return ch, nil
}

// Compose 合并三个通道，每个值截断到 [0,255] 并四舍五入
func Compose(ch Channels) (*Image, error) {
	for c, m := range ch {
		if m == nil || m.IsEmpty() {
			return nil, fmt.Errorf("%w: channel %d is empty", core.ErrShapeMismatch, c)
		}
	}
	h, w := ch[0].Dims()
	for c := 1; c < 3; c++ {
		if r, cc := ch[c].Dims(); r != h || cc != w {
			return nil, fmt.Errorf("%w: channel %d is %dx%d, channel 0 is %dx%d", core.ErrShapeMismatch, c, r, cc, h, w)
		}
	}

	out := NewImage(h, w)
	for c, m := range ch {
		for y := 0; y < h; y++ {
			for x, v := range m.RawRowView(y) {
				out.Pix[(y*w+x)*3+c] = Quantize(v)
			}
		}
	}
	return out, nil
}

// Quantize 截断到 [0,255] 后四舍五入，NaN 视为 0
func Quantize(v float64) uint8 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func describe(img *Image) string {
	if img == nil {
		return "nil"
	}
	return fmt.Sprintf("%dx%d (%d bytes)", img.Height, img.Width, len(img.Pix))
}
