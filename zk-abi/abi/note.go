package abi

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Note is a Phoenix transaction output in its boundary form. It carries the
// fields of both note variants. Value doubles as the discriminant: a zero
// Value marks an obfuscated note whose EncryptedValue and
// EncryptedBlindingFactor are set, any other Value a transparent note whose
// BlindingFactor is set. The unused alternative is all zero.
type Note struct {
	ValueCommitment         [ScalarSize]byte
	Nonce                   [NonceSize]byte
	R                       [PointSize]byte
	PkR                     [PointSize]byte
	Pos                     uint64
	Value                   uint64
	EncryptedValue          [EncryptedValueSize]byte
	BlindingFactor          [BlindingFactorSize]byte
	EncryptedBlindingFactor BlindingFactorBytes
}

// IsTransparent applies the value rule.
func (n *Note) IsTransparent() bool {
	return n.Value != 0
}

// IsZero reports whether n is the all-zero default record.
func (n *Note) IsZero() bool {
	return *n == Note{}
}

func (Note) Layout() Layout {
	return NoteLayout
}

func (n *Note) MarshalABI(dst []byte) error {
	if err := checkMarshal(NoteLayout, dst); err != nil {
		return err
	}
	c := cursor{buf: dst}
	n.marshal(&c)
	return nil
}

func (n *Note) marshal(c *cursor) {
	c.put(n.ValueCommitment[:])
	c.put(n.Nonce[:])
	c.put(n.R[:])
	c.put(n.PkR[:])
	c.putUint64(n.Pos)
	c.putUint64(n.Value)
	c.put(n.EncryptedValue[:])
	c.put(n.BlindingFactor[:])
	c.put(n.EncryptedBlindingFactor[:])
}

func (n *Note) UnmarshalABI(src []byte) error {
	if err := checkUnmarshal(NoteLayout, src); err != nil {
		return err
	}
	c := cursor{buf: src}
	n.unmarshal(&c)
	return nil
}

func (n *Note) unmarshal(c *cursor) {
	c.get(n.ValueCommitment[:])
	c.get(n.Nonce[:])
	c.get(n.R[:])
	c.get(n.PkR[:])
	n.Pos = c.getUint64()
	n.Value = c.getUint64()
	c.get(n.EncryptedValue[:])
	c.get(n.BlindingFactor[:])
	c.get(n.EncryptedBlindingFactor[:])
}

func (n Note) String() string {
	if n.IsTransparent() {
		return fmt.Sprintf("Note{pos:%d, value:%d, commitment:%s, pk_r:%s}",
			n.Pos, n.Value, hexutil.Encode(n.ValueCommitment[:]), hexutil.Encode(n.PkR[:]))
	}
	return fmt.Sprintf("Note{pos:%d, obfuscated, commitment:%s, pk_r:%s}",
		n.Pos, hexutil.Encode(n.ValueCommitment[:]), hexutil.Encode(n.PkR[:]))
}
