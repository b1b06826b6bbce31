package svdstego

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"svdstego/converter"
	"svdstego/core"
	"svdstego/metrics"
)

// DefaultWavelet 默认使用 20 阶 Daubechies 小波
const DefaultWavelet = "db20"

// ErrSessionMismatch 会话与解码器的配置不一致
var ErrSessionMismatch = errors.New("session does not match decoder")

var channelNames = [3]string{"red", "green", "blue"}

// Options 隐写配置
type Options struct {
	Wavelet       string  // 小波名称，如 "db20"
	Scale         float64 // 嵌入强度，越大越容易恢复载荷，但隐写图像质量越差
	ResizePayload bool    // 载荷与载体尺寸不同时缩放载荷，否则返回 ErrShapeMismatch
}

// DefaultOptions db20, 0.01, 不缩放
func DefaultOptions() Options {
	return Options{Wavelet: DefaultWavelet, Scale: core.DefaultScale}
}

// Stego 基于 DWT + SVD 的图像隐写
type Stego struct {
	wavelet *core.Wavelet
	engine  *core.Engine
	opts    Options
}

func New(opts Options) (*Stego, error) {
	w, err := core.NewWavelet(opts.Wavelet)
	if err != nil {
		return nil, err
	}
	e, err := core.NewEngine(opts.Scale)
	if err != nil {
		return nil, err
	}
	return &Stego{wavelet: w, engine: e, opts: opts}, nil
}

// Wavelet 使用的小波名称
func (s *Stego) Wavelet() string { return s.wavelet.Name() }

// Scale 嵌入强度
func (s *Stego) Scale() float64 { return s.engine.Scale }

// Encode 把 payload 隐藏进 carrier，返回隐写图像以及解码需要的会话
//
// 每个通道独立处理:
//  1. 载体、载荷分别做一层小波分解
//  2. 两个近似子带做 SVD
//  3. 载体奇异值 + Scale * 载荷奇异值
//  4. 用载体的左右基重建近似子带，再用载体的细节子带逆变换
//
// 载荷的细节子带不嵌入，只保存在会话里供解码使用。
func (s *Stego) Encode(carrier, payload *converter.Image) (*converter.Image, *Session, error) {
	if !carrier.Valid() || !payload.Valid() {
		return nil, nil, fmt.Errorf("%w: invalid carrier or payload buffer", core.ErrShapeMismatch)
	}
	if !carrier.SameShape(payload) {
		if !s.opts.ResizePayload {
			return nil, nil, fmt.Errorf("%w: carrier is %dx%d, payload is %dx%d",
				core.ErrShapeMismatch, carrier.Width, carrier.Height, payload.Width, payload.Height)
		}
		log.Warn().
			Int("payload_w", payload.Width).Int("payload_h", payload.Height).
			Int("carrier_w", carrier.Width).Int("carrier_h", carrier.Height).
			Msg("payload size differs from carrier, resizing")
		payload = converter.Resize(payload, carrier.Height, carrier.Width)
	}

	cc, err := converter.Split(carrier)
	if err != nil {
		return nil, nil, err
	}
	pc, err := converter.Split(payload)
	if err != nil {
		return nil, nil, err
	}

	sess := &Session{
		wavelet: s.wavelet.Name(),
		scale:   s.engine.Scale,
		height:  carrier.Height,
		width:   carrier.Width,
	}
	var out converter.Channels
	err = forEachChannel(func(c int) error {
		m, st, err := s.encodeChannel(cc[c], pc[c])
		if err != nil {
			return err
		}
		out[c] = m
		sess.channels[c] = st
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	stego, err := converter.Compose(out)
	if err != nil {
		return nil, nil, err
	}

	log.Debug().
		Str("wavelet", s.wavelet.Name()).
		Int("filter_len", s.wavelet.FilterLen()).
		Float64("scale", s.engine.Scale).
		Int("width", carrier.Width).Int("height", carrier.Height).
		Int("singular_values", len(sess.channels[0].carrierValues)).
		Msg("payload embedded")
	return stego, sess, nil
}

func (s *Stego) encodeChannel(carrier, payload *mat.Dense) (*mat.Dense, channelState, error) {
	var st channelState

	cb, err := s.wavelet.Decompose(carrier)
	if err != nil {
		return nil, st, err
	}
	pb, err := s.wavelet.Decompose(payload)
	if err != nil {
		return nil, st, err
	}

	ct, err := core.DecomposeSVD(cb.Approx)
	if err != nil {
		return nil, st, err
	}
	pt, err := core.DecomposeSVD(pb.Approx)
	if err != nil {
		return nil, st, err
	}

	embedded, err := s.engine.Embed(ct.Values, pt.Values)
	if err != nil {
		return nil, st, err
	}
	approx, err := ct.ReconstructWith(embedded)
	if err != nil {
		return nil, st, err
	}

	stego, err := s.wavelet.Reconstruct(cb.WithApprox(approx))
	if err != nil {
		return nil, st, err
	}

	st = channelState{
		carrierValues: ct.Values,
		payloadBasis:  &core.SVDTriple{Left: pt.Left, Right: pt.Right},
		payloadBands:  pb.WithApprox(nil),
	}
	return stego, st, nil
}

// Decode 用 Encode 返回的会话从隐写图像中恢复载荷 (近似)
func (s *Stego) Decode(stego *converter.Image, sess *Session) (*converter.Image, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: nil session", ErrSessionMismatch)
	}
	if sess.wavelet != s.wavelet.Name() {
		return nil, fmt.Errorf("%w: session encoded with %q, decoder uses %q", core.ErrFilterMismatch, sess.wavelet, s.wavelet.Name())
	}
	if sess.scale != s.engine.Scale {
		return nil, fmt.Errorf("%w: session scale %v, decoder scale %v", ErrSessionMismatch, sess.scale, s.engine.Scale)
	}
	if !stego.Valid() || stego.Height != sess.height || stego.Width != sess.width {
		return nil, fmt.Errorf("%w: stego image is %s, session expects %dx%d",
			core.ErrShapeMismatch, shapeOf(stego), sess.width, sess.height)
	}

	sc, err := converter.Split(stego)
	if err != nil {
		return nil, err
	}

	var out converter.Channels
	err = forEachChannel(func(c int) error {
		m, err := s.decodeChannel(sc[c], &sess.channels[c])
		if err != nil {
			return err
		}
		out[c] = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("wavelet", s.wavelet.Name()).Msg("payload extracted")
	return converter.Compose(out)
}

func (s *Stego) decodeChannel(stego *mat.Dense, st *channelState) (*mat.Dense, error) {
	sb, err := s.wavelet.Decompose(stego)
	if err != nil {
		return nil, err
	}
	t, err := core.DecomposeSVD(sb.Approx)
	if err != nil {
		return nil, err
	}

	// 原载体的奇异值必须来自编码阶段
	values, err := s.engine.Extract(t.Values, st.carrierValues)
	if err != nil {
		return nil, err
	}
	approx, err := st.payloadBasis.ReconstructWith(values)
	if err != nil {
		return nil, err
	}

	// 用载荷原来的细节子带逆变换
	return s.wavelet.Reconstruct(st.payloadBands.WithApprox(approx))
}

// Compare 计算原图与另一张图之间的质量指标
func (s *Stego) Compare(original, other *converter.Image) (metrics.Report, error) {
	return metrics.Compare(original, other)
}

// forEachChannel 三个通道并行执行 fn，互不共享可写状态
func forEachChannel(fn func(c int) error) error {
	var g errgroup.Group
	for c := 0; c < 3; c++ {
		g.Go(func() error {
			if err := fn(c); err != nil {
				return fmt.Errorf("%s channel: %w", channelNames[c], err)
			}
			return nil
		})
	}
	return g.Wait()
}

func shapeOf(img *converter.Image) string {
	if img == nil {
		return "nil"
	}
	return fmt.Sprintf("%dx%d", img.Width, img.Height)
}
