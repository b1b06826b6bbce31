// Package metrics 计算两张同尺寸 RGB 图像之间的保真度指标
package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"svdstego/converter"
	"svdstego/core"
)

// PixelMax 8 位图像的最大值
const PixelMax = 255.0

// Report 一次比较的全部指标
type Report struct {
	PSNR        float64 // dB，完全相同时为 +Inf
	RMSE        float64
	SQNR        float64 // dB，原图全黑时为 -Inf，完全相同时为 +Inf
	MSE         float64
	SSIM        float64
	Correlation [3]float64 // R, G, B
}

// Compare 计算全部指标
func Compare(original, other *converter.Image) (Report, error) {
	var r Report
	if err := checkShape(original, other); err != nil {
		return r, err
	}

	mse := meanSquaredError(original, other)
	r.PSNR = psnr(mse)
	r.RMSE = math.Sqrt(mse)
	r.SQNR, r.MSE = sqnr(original, mse)

	var err error
	if r.SSIM, err = SSIM(original, other); err != nil {
		return r, err
	}
	if r.Correlation, err = Correlation(original, other); err != nil {
		return r, err
	}
	return r, nil
}

// PSNR 峰值信噪比: 20·log10(255/sqrt(MSE))
func PSNR(original, other *converter.Image) (float64, error) {
	if err := checkShape(original, other); err != nil {
		return 0, err
	}
	return psnr(meanSquaredError(original, other)), nil
}

// RMSE 均方根误差，三个通道一起计算
func RMSE(original, other *converter.Image) (float64, error) {
	if err := checkShape(original, other); err != nil {
		return 0, err
	}
	return math.Sqrt(meanSquaredError(original, other)), nil
}

// SQNR 信号量化噪声比及 MSE
// 原图信号功率为 0 时返回 (-Inf, 0)，MSE 为 0 时返回 (+Inf, 0)。
func SQNR(original, other *converter.Image) (sqnrDB, mse float64, err error) {
	if err := checkShape(original, other); err != nil {
		return 0, 0, err
	}
	sqnrDB, mse = sqnr(original, meanSquaredError(original, other))
	return sqnrDB, mse, nil
}

// Correlation 每个通道的皮尔逊相关系数
// 某个通道为常数时相关系数无定义，返回 NaN。
func Correlation(original, other *converter.Image) ([3]float64, error) {
	var out [3]float64
	if err := checkShape(original, other); err != nil {
		return out, err
	}
	n := original.Height * original.Width
	x := make([]float64, n)
	y := make([]float64, n)
	for c := 0; c < 3; c++ {
		for p := 0; p < n; p++ {
			x[p] = float64(original.Pix[p*3+c])
			y[p] = float64(other.Pix[p*3+c])
		}
		out[c] = stat.Correlation(x, y, nil)
	}
	return out, nil
}

func psnr(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(PixelMax/math.Sqrt(mse))
}

func sqnr(original *converter.Image, mse float64) (float64, float64) {
	power := 0.0
	for _, v := range original.Pix {
		f := float64(v)
		power += f * f
	}
	power /= float64(len(original.Pix))

	if power == 0 {
		return math.Inf(-1), 0
	}
	if mse == 0 {
		return math.Inf(1), 0
	}
	return 10 * math.Log10(power/mse), mse
}

func meanSquaredError(a, b *converter.Image) float64 {
	sum := 0.0
	for i := range a.Pix {
		d := float64(a.Pix[i]) - float64(b.Pix[i])
		sum += d * d
	}
	return sum / float64(len(a.Pix))
}

func checkShape(a, b *converter.Image) error {
	if !a.Valid() || !b.Valid() {
		return fmt.Errorf("%w: invalid image buffer", core.ErrShapeMismatch)
	}
	if !a.SameShape(b) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", core.ErrShapeMismatch, a.Height, a.Width, b.Height, b.Width)
	}
	return nil
}

// String 按文本块输出指标
func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("--- Quality Metrics ---\n")
	fmt.Fprintf(&sb, "PSNR Value: %.2f dB\n", r.PSNR)
	fmt.Fprintf(&sb, "RMSE Value: %.4f\n", r.RMSE)
	fmt.Fprintf(&sb, "SQNR (Signal-to-Quantization Noise Ratio): %.2f dB\n", r.SQNR)
	fmt.Fprintf(&sb, "MSE (Mean Squared Error): %.4f\n", r.MSE)
	fmt.Fprintf(&sb, "SSIM (Structural Similarity Index): %.7f\n", r.SSIM)
	sb.WriteString("--- Correlation Coefficients ---\n")
	for i, name := range []string{"Red", "Green", "Blue"} {
		fmt.Fprintf(&sb, "%s Channel Correlation: %.7f\n", name, r.Correlation[i])
	}
	return sb.String()
}

// MarshalZerologObject 让 Report 可以直接写进日志
func (r Report) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("psnr_db", r.PSNR).
		Float64("rmse", r.RMSE).
		Float64("sqnr_db", r.SQNR).
		Float64("mse", r.MSE).
		Float64("ssim", r.SSIM).
		Floats64("correlation", r.Correlation[:])
}
