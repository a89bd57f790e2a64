package phoenix

import (
	"io"
	"math/big"

	"github.com/kysee/phoenix-abi/zk-abi/crypto"
)

// SecretKey is the pair of Jubjub scalars (a, b).
type SecretKey struct {
	A *big.Int
	B *big.Int
}

// PublicKey is (A, B) = (a·G, b·G).
type PublicKey struct {
	A crypto.Point
	B crypto.Point
}

// ViewKey (a, B) recognizes the notes addressed to a key without being able
// to spend them.
type ViewKey struct {
	A *big.Int
	B crypto.Point
}

func GenerateSecretKey(rng io.Reader) (*SecretKey, error) {
	a, err := crypto.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	b, err := crypto.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	return &SecretKey{A: a, B: b}, nil
}

func (sk *SecretKey) PublicKey() PublicKey {
	return PublicKey{
		A: crypto.MulBase(sk.A),
		B: crypto.MulBase(sk.B),
	}
}

func (sk *SecretKey) ViewKey() ViewKey {
	return ViewKey{
		A: new(big.Int).Set(sk.A),
		B: crypto.MulBase(sk.B),
	}
}

func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.A.Equal(&other.A) && pk.B.Equal(&other.B)
}

// StealthAddress derives the one-time key pk_r = H(r·A)·G + B a note is
// sent to, together with R = r·G.
func (pk *PublicKey) StealthAddress(r *big.Int) (R, pkR crypto.Point) {
	var rA crypto.Point
	rA.ScalarMultiplication(&pk.A, r)
	return crypto.MulBase(r), stealth(&rA, &pk.B)
}

func stealth(shared, b *crypto.Point) crypto.Point {
	hG := crypto.MulBase(crypto.HashToScalar(shared))
	var pkR crypto.Point
	pkR.Add(&hG, b)
	return pkR
}

// Owns reports whether the note was addressed to this view key.
func (vk *ViewKey) Owns(n NoteVariant) bool {
	h := n.Header()
	var aR crypto.Point
	aR.ScalarMultiplication(&h.R, vk.A)
	pkR := stealth(&aR, &vk.B)
	return pkR.Equal(&h.PkR)
}
