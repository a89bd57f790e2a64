package abi

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PublicKey is a Phoenix public key: two compressed curve points A and B.
type PublicKey [PublicKeySize]byte

func NewPublicKey(a, b [PointSize]byte) PublicKey {
	var pk PublicKey
	copy(pk[:PointSize], a[:])
	copy(pk[PointSize:], b[:])
	return pk
}

func (pk PublicKey) A() (a [PointSize]byte) {
	copy(a[:], pk[:PointSize])
	return
}

func (pk PublicKey) B() (b [PointSize]byte) {
	copy(b[:], pk[PointSize:])
	return
}

func (pk PublicKey) Bytes() [PublicKeySize]byte {
	return pk
}

func (pk PublicKey) String() string {
	return "PublicKey(" + hexutil.Encode(pk[:]) + ")"
}

func (PublicKey) Layout() Layout {
	return PublicKeyLayout
}

func (pk *PublicKey) MarshalABI(dst []byte) error {
	if err := checkMarshal(PublicKeyLayout, dst); err != nil {
		return err
	}
	copy(dst, pk[:])
	return nil
}

func (pk *PublicKey) UnmarshalABI(src []byte) error {
	if err := checkUnmarshal(PublicKeyLayout, src); err != nil {
		return err
	}
	copy(pk[:], src[:PublicKeySize])
	return nil
}

// BlindingFactorBytes holds either a plaintext scalar or the sealed form of
// one; which of the two is decided by the note that carries it.
type BlindingFactorBytes [EncryptedBlindingFactorSize]byte

func (b BlindingFactorBytes) String() string {
	return "BlindingFactorBytes(" + hexutil.Encode(b[:]) + ")"
}
