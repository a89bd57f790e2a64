package utils

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMiMCHash(t *testing.T) {
	h0 := MiMCHash([]byte("phoenix"), []byte{0x1})
	h1 := MiMCHash([]byte("phoenix"), []byte{0x1})
	require.Equal(t, h0, h1)
	require.Len(t, h0, fr.Bytes)

	h2 := MiMCHash([]byte("phoenix"), []byte{0x2})
	require.NotEqual(t, h0, h2)
}

func TestMiMCHash_NonCanonicalInput(t *testing.T) {
	// 0xff.. is above the modulus; the hasher must reduce it rather than fail
	big := bytes.Repeat([]byte{0xff}, 64)
	require.NotPanics(t, func() {
		_ = MiMCHash(big)
	})

	var s fr.Element
	s.SetBytes(DefaultHashSum(big))
	b := s.Bytes()
	require.Equal(t, DefaultHashSum(big), b[:])
}

func TestHashToScalar(t *testing.T) {
	s := HashToScalar([]byte{0x1}, []byte{0x2})
	b := s.Bytes()
	require.Equal(t, MiMCHash([]byte{0x1}, []byte{0x2}), b[:])
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "warn")
	require.Equal(t, zerolog.WarnLevel, l.GetLevel())

	l.Info().Msg("hidden")
	require.Zero(t, buf.Len())
	l.Warn().Msg("shown")
	require.Contains(t, buf.String(), "shown")

	l = NewLogger(&buf, "nonsense")
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())
}
