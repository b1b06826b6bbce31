package svdstego

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"

	"svdstego/core"
)

// Session 编码阶段保留下来、解码必需的数据，创建后不再修改
//
// 每个通道保存:
//   - 载体近似子带的原始奇异值
//   - 载荷近似子带的左右奇异向量
//   - 载荷的三个细节子带
type Session struct {
	wavelet       string
	scale         float64
	height, width int
	channels      [3]channelState
}

type channelState struct {
	carrierValues []float64
	payloadBasis  *core.SVDTriple // 只有 Left/Right
	payloadBands  *core.Subbands  // Approx 为空
}

// Wavelet 编码时使用的小波
func (s *Session) Wavelet() string { return s.wavelet }

// Scale 编码时使用的嵌入强度
func (s *Session) Scale() float64 { return s.scale }

// Shape 载体 (也是隐写图像) 的高和宽
func (s *Session) Shape() (height, width int) { return s.height, s.width }

// CarrierValues 返回第 c 个通道载体奇异值的副本
func (s *Session) CarrierValues(c int) []float64 {
	return append([]float64(nil), s.channels[c].carrierValues...)
}

// 会话文件格式: magic(8) + version(1) + zstd(gob(sessionFile))
var sessionMagic = [8]byte{'S', 'V', 'D', 'S', 'T', 'E', 'G', 'O'}

const sessionVersion = 1

type sessionFile struct {
	Wavelet  string
	Scale    float64
	Height   int
	Width    int
	Channels [3]channelFile
}

type channelFile struct {
	CarrierValues []float64
	PayloadLeft   []byte
	PayloadRight  []byte
	Rows, Cols    int
	Horizontal    []byte
	Vertical      []byte
	Diagonal      []byte
}

// WriteTo 序列化会话
func (s *Session) WriteTo(w io.Writer) (int64, error) {
	f := sessionFile{Wavelet: s.wavelet, Scale: s.scale, Height: s.height, Width: s.width}
	for c, st := range s.channels {
		cf := channelFile{
			CarrierValues: st.carrierValues,
			Rows:          st.payloadBands.Rows,
			Cols:          st.payloadBands.Cols,
		}
		var err error
		for _, m := range []struct {
			dst *[]byte
			src *mat.Dense
		}{
			{&cf.PayloadLeft, st.payloadBasis.Left},
			{&cf.PayloadRight, st.payloadBasis.Right},
			{&cf.Horizontal, st.payloadBands.Horizontal},
			{&cf.Vertical, st.payloadBands.Vertical},
			{&cf.Diagonal, st.payloadBands.Diagonal},
		} {
			if *m.dst, err = m.src.MarshalBinary(); err != nil {
				return 0, fmt.Errorf("marshal %s channel: %w", channelNames[c], err)
			}
		}
		f.Channels[c] = cf
	}

	cw := &countingWriter{w: w}
	if _, err := cw.Write(append(sessionMagic[:], sessionVersion)); err != nil {
		return cw.n, err
	}
	enc, err := zstd.NewWriter(cw)
	if err != nil {
		return cw.n, err
	}
	if err := gob.NewEncoder(enc).Encode(&f); err != nil {
		enc.Close()
		return cw.n, fmt.Errorf("encode session: %w", err)
	}
	if err := enc.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadSession 读取 WriteTo 写出的会话
func ReadSession(r io.Reader) (*Session, error) {
	var header [len(sessionMagic) + 1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read session header: %w", err)
	}
	if !bytes.Equal(header[:len(sessionMagic)], sessionMagic[:]) {
		return nil, fmt.Errorf("not a session file")
	}
	if v := header[len(sessionMagic)]; v != sessionVersion {
		return nil, fmt.Errorf("unsupported session version %d", v)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var f sessionFile
	if err := gob.NewDecoder(dec).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	s := &Session{wavelet: f.Wavelet, scale: f.Scale, height: f.Height, width: f.Width}
	for c, cf := range f.Channels {
		st, err := cf.state(f.Wavelet)
		if err != nil {
			return nil, fmt.Errorf("%s channel: %w", channelNames[c], err)
		}
		s.channels[c] = st
	}
	return s, nil
}

func (cf channelFile) state(wavelet string) (channelState, error) {
	var st channelState
	mats := make([]*mat.Dense, 5)
	for i, raw := range [][]byte{cf.PayloadLeft, cf.PayloadRight, cf.Horizontal, cf.Vertical, cf.Diagonal} {
		var m mat.Dense
		if err := m.UnmarshalBinary(raw); err != nil {
			return st, err
		}
		mats[i] = &m
	}

	left, right := mats[0], mats[1]
	lr, k := left.Dims()
	rk, rc := right.Dims()
	if k != rk || k != len(cf.CarrierValues) {
		return st, fmt.Errorf("%w: basis %dx%d / %dx%d with %d carrier values", core.ErrShapeMismatch, lr, k, rk, rc, len(cf.CarrierValues))
	}
	for _, m := range mats[2:] {
		if r, c := m.Dims(); r != lr || c != rc {
			return st, fmt.Errorf("%w: detail subband %dx%d, basis implies %dx%d", core.ErrShapeMismatch, r, c, lr, rc)
		}
	}

	st.carrierValues = cf.CarrierValues
	st.payloadBasis = &core.SVDTriple{Left: left, Right: right}
	st.payloadBands = &core.Subbands{
		Wavelet:    wavelet,
		Rows:       cf.Rows,
		Cols:       cf.Cols,
		Horizontal: mats[2],
		Vertical:   mats[3],
		Diagonal:   mats[4],
	}
	return st, nil
}

// SaveSession 写入会话文件
func SaveSession(path string, s *Session) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = s.WriteTo(f)
	return err
}

// LoadSession 读取会话文件
func LoadSession(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSession(f)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
