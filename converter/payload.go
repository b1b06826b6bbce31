package converter

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

// Resize 使用 CatmullRom 插值缩放到 height×width
func Resize(img *Image, height, width int) *Image {
	if img.Height == height && img.Width == width {
		return img
	}
	src := img.NRGBA()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)

	log.Debug().
		Int("from_w", img.Width).Int("from_h", img.Height).
		Int("to_w", width).Int("to_h", height).
		Msg("payload resized")
	return FromImage(dst)
}

// QRPayload 把文本生成二维码，居中放在 height×width 的白底上作为载荷图像
// 二维码保持正方形，不拉伸。
func QRPayload(content string, height, width int) (*Image, error) {
	if content == "" {
		return nil, fmt.Errorf("qr payload: empty content")
	}
	side := min(height, width)

	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr payload: %w", err)
	}
	// 底图太小时二维码会被 go-qrcode 放大到最小可用尺寸
	code := qr.Image(side)

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	cb := code.Bounds()
	if cb.Dx() > width || cb.Dy() > height {
		return nil, fmt.Errorf("qr payload: %q needs at least %dx%d pixels, image is %dx%d", content, cb.Dx(), cb.Dy(), width, height)
	}
	offset := image.Pt((width-cb.Dx())/2, (height-cb.Dy())/2)
	draw.Draw(canvas, cb.Sub(cb.Min).Add(offset), code, cb.Min, draw.Src)

	return FromImage(canvas), nil
}
