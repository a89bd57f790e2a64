package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	tedwards "github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
	"golang.org/x/crypto/blake2s"
)

var (
	ErrNotOnCurve   = errors.New("point is not on curve")
	ErrNonCanonical = errors.New("non-canonical point encoding")
	ErrDegenerate   = errors.New("shared secret is the identity")
)

// Point is an affine point on Jubjub, the twisted Edwards curve embedded in
// BLS12-381.
type Point = tedwards.PointAffine

func Generator() Point {
	return tedwards.GetEdwardsCurve().Base
}

func Identity() Point {
	var p Point
	p.X.SetZero()
	p.Y.SetOne()
	return p
}

// Order returns the order of the prime subgroup, the modulus of Jubjub scalars.
func Order() *big.Int {
	params := tedwards.GetEdwardsCurve()
	return new(big.Int).Set(&params.Order)
}

func EncodePoint(p *Point) [32]byte {
	return p.Bytes()
}

// DecodePoint decompresses b and rejects anything that is not the canonical
// encoding of a point on the curve.
func DecodePoint(b [32]byte) (Point, error) {
	var p Point
	if _, err := p.SetBytes(b[:]); err != nil {
		return Point{}, err
	}
	if !p.IsOnCurve() {
		return Point{}, ErrNotOnCurve
	}
	if p.Bytes() != b {
		return Point{}, ErrNonCanonical
	}
	return p, nil
}

func EncodeScalar(s *fr.Element) [32]byte {
	return s.Bytes()
}

// DecodeScalar reads a big-endian BLS12-381 scalar, failing when b is not
// reduced modulo r.
func DecodeScalar(b [32]byte) (fr.Element, error) {
	var s fr.Element
	if err := s.SetBytesCanonical(b[:]); err != nil {
		return fr.Element{}, fmt.Errorf("invalid scalar: %w", err)
	}
	return s, nil
}

// RandomScalar returns a non-zero Jubjub scalar.
func RandomScalar(rng io.Reader) (*big.Int, error) {
	if rng == nil {
		rng = rand.Reader
	}
	order := Order()
	for {
		k, err := rand.Int(rng, order)
		if err != nil {
			return nil, err
		}
		if k.Sign() != 0 {
			return k, nil
		}
	}
}

// RandomBlsScalar returns a uniformly distributed BLS12-381 scalar.
func RandomBlsScalar(rng io.Reader) (fr.Element, error) {
	if rng == nil {
		rng = rand.Reader
	}
	// 64 bytes keep the modular bias negligible
	var wide [64]byte
	if _, err := io.ReadFull(rng, wide[:]); err != nil {
		return fr.Element{}, err
	}
	var s fr.Element
	s.SetBytes(wide[:])
	return s, nil
}

func MulBase(k *big.Int) Point {
	g := Generator()
	var p Point
	p.ScalarMultiplication(&g, k)
	return p
}

// HashToScalar maps a point to a Jubjub scalar.
func HashToScalar(p *Point) *big.Int {
	b := p.Bytes()
	h := blake2s.Sum256(b[:])
	k := new(big.Int).SetBytes(h[:])
	return k.Mod(k, Order())
}

// SharedSecret computes the ECDH point k * other. It fails when other is
// off the curve or the product is the identity.
func SharedSecret(k *big.Int, other *Point) (Point, error) {
	if !other.IsOnCurve() {
		return Point{}, fmt.Errorf("other public key: %w", ErrNotOnCurve)
	}

	var shared Point
	shared.ScalarMultiplication(other, k)

	if !shared.IsOnCurve() {
		return Point{}, fmt.Errorf("shared secret: %w", ErrNotOnCurve)
	}
	if id := Identity(); shared.Equal(&id) {
		return Point{}, ErrDegenerate
	}
	return shared, nil
}

// ExpandKey derives a key stream of outputLen bytes from a shared point
// using keyed BLAKE2s in counter mode, like PRF^expand in Sapling.
func ExpandKey(shared *Point, outputLen int) ([]byte, error) {
	personalization := []byte("Phoenix_ExpandSeed")
	seed := shared.Bytes()

	var keyStream []byte
	var counter byte = 1 // The counter must start at 1.
	for len(keyStream) < outputLen {
		// Create a new hash instance for each iteration to avoid state pollution.
		h, err := blake2s.New256(personalization)
		if err != nil {
			return nil, fmt.Errorf("failed to create blake2s hash: %w", err)
		}
		h.Write(seed[:])
		h.Write([]byte{counter})
		keyStream = h.Sum(keyStream)

		counter++
		if counter == 0 {
			return nil, errors.New("KDF counter overflow")
		}
	}

	return keyStream[:outputLen], nil
}
