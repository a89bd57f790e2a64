// Package rpc defines the RLP messages clients submit transactions with and
// their conversion into boundary records.
package rpc

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Scalar is a BLS12-381 scalar in its 32-byte encoding.
type Scalar struct {
	Data []byte
}

// CompressedPoint is a Jubjub point in its 32-byte compressed encoding.
type CompressedPoint struct {
	Y []byte
}

// Value wraps a transparent amount so an absent value encodes as an empty
// list rather than as integer zero.
type Value struct {
	Int *uint256.Int
}

type Nonce struct {
	Bs []byte
}

type Nullifier struct {
	H *Scalar `rlp:"nil"`
}

type TransactionInput struct {
	Nullifier  *Nullifier `rlp:"nil"`
	MerkleRoot *Scalar    `rlp:"nil"`
}

// Note is the wire form of a note. Exactly one of TransparentValue and
// EncryptedValue is set, and likewise one of TransparentBlindingFactor and
// EncryptedBlindingFactor.
type Note struct {
	Pos                       uint64
	Nonce                     *Nonce           `rlp:"nil"`
	RG                        *CompressedPoint `rlp:"nil"`
	PkR                       *CompressedPoint `rlp:"nil"`
	ValueCommitment           *Scalar          `rlp:"nil"`
	TransparentBlindingFactor *Scalar          `rlp:"nil"`
	EncryptedBlindingFactor   []byte
	TransparentValue          *Value           `rlp:"nil"`
	EncryptedValue            []byte
}

type TransactionOutput struct {
	Note *Note `rlp:"nil"`
}

type Transaction struct {
	Inputs  []TransactionInput
	Outputs []TransactionOutput
	Proof   []byte
}

// Bytes returns the RLP encoding of tx.
func (tx *Transaction) Bytes() ([]byte, error) {
	b, err := rlp.EncodeToBytes(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to RLP encode transaction: %w", err)
	}
	return b, nil
}

func DecodeTransaction(b []byte) (*Transaction, error) {
	tx := new(Transaction)
	if err := rlp.DecodeBytes(b, tx); err != nil {
		return nil, fmt.Errorf("failed to RLP decode transaction: %w", err)
	}
	return tx, nil
}
