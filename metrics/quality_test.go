package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svdstego/converter"
	"svdstego/core"
)

func randomImage(rng *rand.Rand, h, w int) *converter.Image {
	img := converter.NewImage(h, w)
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
	}
	return img
}

func clone(img *converter.Image) *converter.Image {
	out := *img
	out.Pix = append([]uint8(nil), img.Pix...)
	return &out
}

func TestCompareIdentical(t *testing.T) {
	img := randomImage(rand.New(rand.NewPCG(1, 1)), 32, 40)

	r, err := Compare(img, clone(img))
	require.NoError(t, err)
	assert.True(t, math.IsInf(r.PSNR, 1))
	assert.Equal(t, 0.0, r.RMSE)
	assert.True(t, math.IsInf(r.SQNR, 1))
	assert.Equal(t, 0.0, r.MSE)
	assert.InDelta(t, 1.0, r.SSIM, 1e-9)
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 1.0, r.Correlation[c], 1e-12)
	}
}

func TestSQNRZeroSignal(t *testing.T) {
	black := converter.NewImage(8, 8)
	other := randomImage(rand.New(rand.NewPCG(2, 2)), 8, 8)

	s, mse, err := SQNR(black, other)
	require.NoError(t, err)
	assert.True(t, math.IsInf(s, -1))
	assert.Equal(t, 0.0, mse)
}

func TestKnownError(t *testing.T) {
	a := converter.NewImage(10, 10)
	b := converter.NewImage(10, 10)
	for i := range a.Pix {
		a.Pix[i] = 100
		b.Pix[i] = 102
	}

	p, err := PSNR(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 20*math.Log10(255.0/2), p, 1e-12)

	rmse, err := RMSE(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, rmse, 1e-12)

	s, mse, err := SQNR(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, mse, 1e-12)
	assert.InDelta(t, 10*math.Log10(10000.0/4), s, 1e-12)
}

func TestCorrelationPerChannel(t *testing.T) {
	a := randomImage(rand.New(rand.NewPCG(3, 3)), 16, 16)
	b := clone(a)
	for p := 0; p < 16*16; p++ {
		b.Pix[p*3+1] = 255 - a.Pix[p*3+1] // 绿色通道取反
	}

	corr, err := Correlation(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, corr[0], 1e-12)
	assert.InDelta(t, -1.0, corr[1], 1e-12)
	assert.InDelta(t, 1.0, corr[2], 1e-12)
}

func TestSSIMDecreasesWithNoise(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))
	a := randomImage(rng, 48, 48)
	b := clone(a)
	for i := range b.Pix {
		v := int(b.Pix[i]) + rng.IntN(61) - 30
		b.Pix[i] = uint8(min(max(v, 0), 255))
	}

	s, err := SSIM(a, b)
	require.NoError(t, err)
	assert.Less(t, s, 0.99)
	assert.Greater(t, s, 0.0)
}

func TestSSIMSmallImage(t *testing.T) {
	a := converter.NewImage(6, 20)
	_, err := SSIM(a, converter.NewImage(6, 20))
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestShapeMismatch(t *testing.T) {
	a := converter.NewImage(256, 256)
	b := converter.NewImage(128, 128)

	_, err := Compare(a, b)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
	_, err = PSNR(a, b)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
	_, err = RMSE(a, b)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
	_, _, err = SQNR(a, b)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
	_, err = Correlation(a, b)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestReportString(t *testing.T) {
	r := Report{PSNR: 41.234, RMSE: 2.1, SQNR: 35, MSE: 4.41, SSIM: 0.98, Correlation: [3]float64{0.99, 0.98, 0.97}}
	out := r.String()
	assert.Contains(t, out, "PSNR Value: 41.23 dB")
	assert.Contains(t, out, "Blue Channel Correlation: 0.9700000")
}
