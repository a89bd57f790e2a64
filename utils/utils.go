package utils

import (
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
)

// DefaultHasher returns the hasher used for commitments, nullifiers and the
// note tree. Its input is reduced into BLS12-381 scalars chunk by chunk, so
// arbitrary bytes can be written to it.
func DefaultHasher() hash.Hash {
	return &fieldHasher{
		inner: MiMCHasher(),
	}
}

func DefaultHashSum(ins ...[]byte) []byte {
	return MiMCHash(ins...)
}

func MiMCHasher() hash.Hash {
	return mimc.NewMiMC()
}

// MiMCHash hashes every input as a sequence of field elements.
// A trailing chunk shorter than fr.Bytes is read as a big-endian integer.
func MiMCHash(ins ...[]byte) []byte {
	hasher := DefaultHasher()
	for _, in := range ins {
		if _, err := hasher.Write(in); err != nil {
			panic(err)
		}
	}
	return hasher.Sum(nil)
}

// HashToScalar is MiMCHash with the digest read back as a scalar.
func HashToScalar(ins ...[]byte) fr.Element {
	var s fr.Element
	s.SetBytes(MiMCHash(ins...))
	return s
}

// fieldHasher wraps MiMC to handle inputs that may exceed the Fr modulus
type fieldHasher struct {
	inner hash.Hash
}

func (w *fieldHasher) Write(p []byte) (n int, err error) {
	const blockSize = fr.Bytes

	originalLen := len(p)
	for i := 0; i < len(p); i += blockSize {
		end := i + blockSize
		if end > len(p) {
			end = len(p)
		}

		// SetBytes reduces modulo r, Bytes gives the canonical 32-byte form
		var elem fr.Element
		elem.SetBytes(p[i:end])
		b := elem.Bytes()
		if _, err := w.inner.Write(b[:]); err != nil {
			return 0, err
		}
	}
	return originalLen, nil
}

func (w *fieldHasher) Sum(b []byte) []byte {
	return w.inner.Sum(b)
}

func (w *fieldHasher) Reset() {
	w.inner.Reset()
}

func (w *fieldHasher) Size() int {
	return w.inner.Size()
}

func (w *fieldHasher) BlockSize() int {
	return w.inner.BlockSize()
}
