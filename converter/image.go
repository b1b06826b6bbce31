package converter

import (
	"image"
	"image/color"
)

// Image 8 位 RGB 图像，按行存储，每个像素 3 个字节 (R, G, B)
type Image struct {
	Height int
	Width  int
	Pix    []uint8
}

// NewImage 创建全黑图像
func NewImage(height, width int) *Image {
	return &Image{Height: height, Width: width, Pix: make([]uint8, height*width*3)}
}

// At 返回 (y, x) 处第 c 个通道的值
func (m *Image) At(y, x, c int) uint8 {
	return m.Pix[(y*m.Width+x)*3+c]
}

// Set 设置 (y, x) 处第 c 个通道的值
func (m *Image) Set(y, x, c int, v uint8) {
	m.Pix[(y*m.Width+x)*3+c] = v
}

// Valid 尺寸与像素数据是否一致
func (m *Image) Valid() bool {
	return m != nil && m.Height > 0 && m.Width > 0 && len(m.Pix) == m.Height*m.Width*3
}

// SameShape 两张图尺寸是否相同
func (m *Image) SameShape(o *Image) bool {
	return m != nil && o != nil && m.Height == o.Height && m.Width == o.Width
}

// FromImage 将任意 image.Image 转为 RGB 图像，丢弃 alpha
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := NewImage(b.Dy(), b.Dx())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.Pix[i] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			i += 3
		}
	}
	return out
}

// NRGBA 转回标准库图像，alpha 固定为 255
func (m *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for p := 0; p < m.Width*m.Height; p++ {
		copy(dst.Pix[p*4:p*4+3], m.Pix[p*3:p*3+3])
		dst.Pix[p*4+3] = 255
	}
	return dst
}
