package abi

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Nullifier is the encoding of a nullifier scalar.
type Nullifier [NullifierSize]byte

func (n Nullifier) IsZero() bool {
	return n == Nullifier{}
}

func (n Nullifier) String() string {
	return "Nullifier(" + hexutil.Encode(n[:]) + ")"
}

func (Nullifier) Layout() Layout {
	return NullifierLayout
}

func (n *Nullifier) MarshalABI(dst []byte) error {
	if err := checkMarshal(NullifierLayout, dst); err != nil {
		return err
	}
	copy(dst, n[:])
	return nil
}

func (n *Nullifier) UnmarshalABI(src []byte) error {
	if err := checkUnmarshal(NullifierLayout, src); err != nil {
		return err
	}
	copy(n[:], src[:NullifierSize])
	return nil
}

// Input is a Phoenix transaction input, consisting of a nullifier and the
// merkle root the spent note was proven against. It holds only the
// non-sensitive part of an input.
type Input struct {
	Nullifier  Nullifier
	MerkleRoot [ScalarSize]byte
}

func (in *Input) IsZero() bool {
	return *in == Input{}
}

func (in Input) String() string {
	return "Input{nullifier:" + hexutil.Encode(in.Nullifier[:]) + ", root:" + hexutil.Encode(in.MerkleRoot[:]) + "}"
}

func (Input) Layout() Layout {
	return InputLayout
}

func (in *Input) MarshalABI(dst []byte) error {
	if err := checkMarshal(InputLayout, dst); err != nil {
		return err
	}
	c := cursor{buf: dst}
	c.put(in.Nullifier[:])
	c.put(in.MerkleRoot[:])
	return nil
}

func (in *Input) UnmarshalABI(src []byte) error {
	if err := checkUnmarshal(InputLayout, src); err != nil {
		return err
	}
	c := cursor{buf: src}
	c.get(in.Nullifier[:])
	c.get(in.MerkleRoot[:])
	return nil
}
