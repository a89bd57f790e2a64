// Package convert maps between the flat boundary records of package abi and
// the domain values of package phoenix.
//
// Lowering never fails for values built through package phoenix. Raising
// decodes every point and scalar and fails as a whole on the first invalid
// field; no partially raised value is ever returned.
package convert

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/kysee/phoenix-abi/zk-abi/crypto"
	"github.com/kysee/phoenix-abi/zk-abi/phoenix"
)

var errFiller = errors.New("field unused by the note variant is not zero")

func point(record, field string, b [abi.PointSize]byte) (crypto.Point, error) {
	p, err := crypto.DecodePoint(b)
	if err != nil {
		return crypto.Point{}, abi.Malformed(record, field, err)
	}
	return p, nil
}

func scalar(record, field string, b [abi.ScalarSize]byte) (fr.Element, error) {
	s, err := crypto.DecodeScalar(b)
	if err != nil {
		return fr.Element{}, abi.Malformed(record, field, err)
	}
	return s, nil
}

func LowerPublicKey(pk *phoenix.PublicKey) abi.PublicKey {
	return abi.NewPublicKey(crypto.EncodePoint(&pk.A), crypto.EncodePoint(&pk.B))
}

func RaisePublicKey(rec abi.PublicKey) (phoenix.PublicKey, error) {
	const name = "PublicKey"
	a, err := point(name, "a", rec.A())
	if err != nil {
		return phoenix.PublicKey{}, err
	}
	b, err := point(name, "b", rec.B())
	if err != nil {
		return phoenix.PublicKey{}, err
	}
	return phoenix.PublicKey{A: a, B: b}, nil
}

func LowerNullifier(n *phoenix.Nullifier) abi.Nullifier {
	return abi.Nullifier(crypto.EncodeScalar(&n.Scalar))
}

func RaiseNullifier(rec abi.Nullifier) (phoenix.Nullifier, error) {
	s, err := scalar("Nullifier", "scalar", rec)
	if err != nil {
		return phoenix.Nullifier{}, err
	}
	return phoenix.Nullifier{Scalar: s}, nil
}

func LowerInput(in *phoenix.TransactionInput) abi.Input {
	return abi.Input{
		Nullifier:  LowerNullifier(&in.Nullifier),
		MerkleRoot: crypto.EncodeScalar(&in.MerkleRoot),
	}
}

func RaiseInput(rec *abi.Input) (phoenix.TransactionInput, error) {
	const name = "Input"
	nf, err := scalar(name, "nullifier", rec.Nullifier)
	if err != nil {
		return phoenix.TransactionInput{}, err
	}
	root, err := scalar(name, "merkle_root", rec.MerkleRoot)
	if err != nil {
		return phoenix.TransactionInput{}, err
	}
	return phoenix.TransactionInput{
		Nullifier:  phoenix.Nullifier{Scalar: nf},
		MerkleRoot: root,
	}, nil
}

// LowerNote flattens a note variant. A transparent note fills Value and
// BlindingFactor, an obfuscated note EncryptedValue and
// EncryptedBlindingFactor; the other pair stays zero.
func LowerNote(n phoenix.NoteVariant) abi.Note {
	h := n.Header()
	rec := abi.Note{
		ValueCommitment: crypto.EncodeScalar(&h.ValueCommitment),
		Nonce:           h.Nonce,
		R:               crypto.EncodePoint(&h.R),
		PkR:             crypto.EncodePoint(&h.PkR),
		Pos:             h.Pos,
	}
	switch v := n.(type) {
	case *phoenix.TransparentNote:
		rec.Value = v.Value
		rec.BlindingFactor = crypto.EncodeScalar(&v.BlindingFactor)
	case *phoenix.ObfuscatedNote:
		rec.EncryptedValue = v.EncryptedValue
		rec.EncryptedBlindingFactor = abi.BlindingFactorBytes(v.EncryptedBlindingFactor)
	}
	return rec
}

// RaiseNote rebuilds the note variant selected by the value rule. Non-zero
// bytes in the fields of the other variant are rejected.
func RaiseNote(rec *abi.Note) (phoenix.NoteVariant, error) {
	const name = "Note"
	var (
		h   phoenix.NoteHeader
		err error
	)
	if h.ValueCommitment, err = scalar(name, "value_commitment", rec.ValueCommitment); err != nil {
		return nil, err
	}
	if h.R, err = point(name, "r", rec.R); err != nil {
		return nil, err
	}
	if h.PkR, err = point(name, "pk_r", rec.PkR); err != nil {
		return nil, err
	}
	h.Nonce = rec.Nonce
	h.Pos = rec.Pos

	if rec.IsTransparent() {
		if rec.EncryptedValue != ([abi.EncryptedValueSize]byte{}) {
			return nil, abi.Malformed(name, "encrypted_value", errFiller)
		}
		if rec.EncryptedBlindingFactor != (abi.BlindingFactorBytes{}) {
			return nil, abi.Malformed(name, "encrypted_blinding_factor", errFiller)
		}
		bf, err := scalar(name, "blinding_factor", rec.BlindingFactor)
		if err != nil {
			return nil, err
		}
		return &phoenix.TransparentNote{NoteHeader: h, Value: rec.Value, BlindingFactor: bf}, nil
	}

	if rec.BlindingFactor != ([abi.BlindingFactorSize]byte{}) {
		return nil, abi.Malformed(name, "blinding_factor", errFiller)
	}
	return &phoenix.ObfuscatedNote{
		NoteHeader:              h,
		EncryptedValue:          rec.EncryptedValue,
		EncryptedBlindingFactor: [phoenix.EncryptedBlindingFactorSize]byte(rec.EncryptedBlindingFactor),
	}, nil
}

func LowerItem(it *phoenix.TransactionItem) abi.Item {
	return abi.Item{
		Note:      LowerNote(it.Note),
		Owner:     LowerPublicKey(&it.Owner),
		Role:      abi.Role(it.Role),
		Nullifier: LowerNullifier(&it.Nullifier),
	}
}

func RaiseItem(rec *abi.Item) (phoenix.TransactionItem, error) {
	if !rec.Role.Valid() {
		return phoenix.TransactionItem{}, abi.Malformed("Item", "role", fmt.Errorf("tag %d not in {1,2}", uint8(rec.Role)))
	}
	note, err := RaiseNote(&rec.Note)
	if err != nil {
		return phoenix.TransactionItem{}, withRecord(err, "Item", "note")
	}
	owner, err := RaisePublicKey(rec.Owner)
	if err != nil {
		return phoenix.TransactionItem{}, withRecord(err, "Item", "owner")
	}
	nf, err := RaiseNullifier(rec.Nullifier)
	if err != nil {
		return phoenix.TransactionItem{}, withRecord(err, "Item", "nullifier")
	}
	return phoenix.TransactionItem{
		Note:      note,
		Owner:     owner,
		Role:      phoenix.Role(rec.Role),
		Nullifier: nf,
	}, nil
}

// withRecord reports a nested record error against the enclosing record.
func withRecord(err error, record, field string) error {
	e, ok := err.(*abi.Error)
	if !ok {
		return err
	}
	c := *e
	c.Record = record
	c.Field = field + "." + c.Field
	return &c
}
