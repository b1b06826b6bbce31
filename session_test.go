package svdstego

import (
	"bytes"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 21))
	carrier := randomImage(rng, 48, 40)
	payload := randomImage(rng, 48, 40)

	s := newTestStego(t, Options{Wavelet: "db4", Scale: 0.01})
	stego, sess, err := s.Encode(carrier, payload)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := sess.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	loaded, err := ReadSession(&buf)
	require.NoError(t, err)
	assert.Equal(t, "db4", loaded.Wavelet())
	assert.Equal(t, 0.01, loaded.Scale())
	h, w := loaded.Shape()
	assert.Equal(t, [2]int{48, 40}, [2]int{h, w})
	assert.Equal(t, sess.CarrierValues(2), loaded.CarrierValues(2))

	want, err := s.Decode(stego, sess)
	require.NoError(t, err)
	got, err := s.Decode(stego, loaded)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSessionFile(t *testing.T) {
	rng := rand.New(rand.NewPCG(22, 22))
	carrier := randomImage(rng, 16, 16)
	payload := randomImage(rng, 16, 16)

	s := newTestStego(t, Options{Wavelet: "haar", Scale: 0.1})
	_, sess, err := s.Encode(carrier, payload)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "s.sess")
	require.NoError(t, SaveSession(path, sess))
	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, sess.CarrierValues(0), loaded.CarrierValues(0))
}

func TestReadSessionRejectsGarbage(t *testing.T) {
	_, err := ReadSession(bytes.NewReader([]byte("definitely not a session")))
	assert.Error(t, err)

	_, err = ReadSession(bytes.NewReader([]byte("SVD")))
	assert.Error(t, err)

	bad := append(append([]byte(nil), sessionMagic[:]...), 99)
	_, err = ReadSession(bytes.NewReader(bad))
	assert.ErrorContains(t, err, "unsupported session version")
}

func TestCarrierValuesIsACopy(t *testing.T) {
	rng := rand.New(rand.NewPCG(23, 23))
	s := newTestStego(t, Options{Wavelet: "haar", Scale: 0.1})
	_, sess, err := s.Encode(randomImage(rng, 8, 8), randomImage(rng, 8, 8))
	require.NoError(t, err)

	v := sess.CarrierValues(1)
	v[0] = -1
	assert.NotEqual(t, -1.0, sess.CarrierValues(1)[0])
}
