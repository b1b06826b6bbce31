package converter

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrLossyFormat 隐写图像必须无损保存，否则提取时量化误差无法控制
var ErrLossyFormat = errors.New("lossy output format")

// Load 读取图片文件 (png/jpeg/gif/bmp/tiff/webp) 并转为 RGB
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// Save 按扩展名选择无损格式保存: .png (默认) / .bmp / .tif / .tiff
func Save(path string, img *Image) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	var encode func(f *os.File) error
	switch ext {
	case ".png", "":
		encode = func(f *os.File) error { return png.Encode(f, img.NRGBA()) }
	case ".bmp":
		encode = func(f *os.File) error { return bmp.Encode(f, img.NRGBA()) }
	case ".tif", ".tiff":
		encode = func(f *os.File) error {
			return tiff.Encode(f, img.NRGBA(), &tiff.Options{Compression: tiff.Deflate})
		}
	case ".jpg", ".jpeg", ".webp", ".gif":
		return fmt.Errorf("%w: %s (use .png, .bmp or .tiff)", ErrLossyFormat, ext)
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f)
}
