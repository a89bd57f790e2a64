package rpc

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/kysee/phoenix-abi/zk-abi/abi"
)

var (
	errMissing = errors.New("missing")
	errBoth    = errors.New("both transparent and encrypted forms are set")
	errNeither = errors.New("neither transparent nor encrypted form is set")
	errZero    = errors.New("transparent value is zero")
)

func fixed(dst []byte, src []byte, record, field string) error {
	if len(src) != len(dst) {
		return abi.Malformed(record, field, fmt.Errorf("length %d, want %d", len(src), len(dst)))
	}
	copy(dst, src)
	return nil
}

// ToABI copies the input into its boundary record. Field contents are only
// checked for length here; raising the record validates them.
func (in *TransactionInput) ToABI() (abi.Input, error) {
	const name = "TransactionInput"
	var rec abi.Input
	if in.Nullifier == nil || in.Nullifier.H == nil {
		return rec, abi.Malformed(name, "nullifier", errMissing)
	}
	if in.MerkleRoot == nil {
		return rec, abi.Malformed(name, "merkle_root", errMissing)
	}
	if err := fixed(rec.Nullifier[:], in.Nullifier.H.Data, name, "nullifier"); err != nil {
		return rec, err
	}
	if err := fixed(rec.MerkleRoot[:], in.MerkleRoot.Data, name, "merkle_root"); err != nil {
		return rec, err
	}
	return rec, nil
}

// ToABI flattens the output note, routing value and blinding factor to the
// transparent or encrypted fields.
func (out *TransactionOutput) ToABI() (abi.Note, error) {
	const name = "TransactionOutput"
	var rec abi.Note
	n := out.Note
	if n == nil {
		return rec, abi.Malformed(name, "note", errMissing)
	}
	if n.ValueCommitment == nil {
		return rec, abi.Malformed(name, "value_commitment", errMissing)
	}
	if n.Nonce == nil {
		return rec, abi.Malformed(name, "nonce", errMissing)
	}
	if n.RG == nil {
		return rec, abi.Malformed(name, "r_g", errMissing)
	}
	if n.PkR == nil {
		return rec, abi.Malformed(name, "pk_r", errMissing)
	}
	for _, f := range []struct {
		dst, src []byte
		field    string
	}{
		{rec.ValueCommitment[:], n.ValueCommitment.Data, "value_commitment"},
		{rec.Nonce[:], n.Nonce.Bs, "nonce"},
		{rec.R[:], n.RG.Y, "r_g"},
		{rec.PkR[:], n.PkR.Y, "pk_r"},
	} {
		if err := fixed(f.dst, f.src, name, f.field); err != nil {
			return rec, err
		}
	}
	rec.Pos = n.Pos

	switch {
	case n.TransparentValue != nil && len(n.EncryptedValue) > 0:
		return rec, abi.Malformed(name, "value", errBoth)
	case n.TransparentValue != nil:
		v := n.TransparentValue.Int
		if v == nil || v.IsZero() {
			return rec, abi.Malformed(name, "value", errZero)
		}
		if !v.IsUint64() {
			return rec, abi.Malformed(name, "value", fmt.Errorf("%s overflows uint64", v.Dec()))
		}
		rec.Value = v.Uint64()
	case len(n.EncryptedValue) > 0:
		if err := fixed(rec.EncryptedValue[:], n.EncryptedValue, name, "encrypted_value"); err != nil {
			return rec, err
		}
	default:
		return rec, abi.Malformed(name, "value", errNeither)
	}

	switch {
	case n.TransparentBlindingFactor != nil && len(n.EncryptedBlindingFactor) > 0:
		return rec, abi.Malformed(name, "blinding_factor", errBoth)
	case n.TransparentBlindingFactor != nil:
		if err := fixed(rec.BlindingFactor[:], n.TransparentBlindingFactor.Data, name, "blinding_factor"); err != nil {
			return rec, err
		}
	case len(n.EncryptedBlindingFactor) > 0:
		if err := fixed(rec.EncryptedBlindingFactor[:], n.EncryptedBlindingFactor, name, "encrypted_blinding_factor"); err != nil {
			return rec, err
		}
	default:
		return rec, abi.Malformed(name, "blinding_factor", errNeither)
	}

	if rec.IsTransparent() != (n.TransparentBlindingFactor != nil) {
		return rec, abi.Malformed(name, "blinding_factor", errors.New("form does not match the value"))
	}
	return rec, nil
}

// NewTransactionInput is the inverse of TransactionInput.ToABI.
func NewTransactionInput(rec *abi.Input) TransactionInput {
	return TransactionInput{
		Nullifier:  &Nullifier{H: &Scalar{Data: append([]byte(nil), rec.Nullifier[:]...)}},
		MerkleRoot: &Scalar{Data: append([]byte(nil), rec.MerkleRoot[:]...)},
	}
}

// NewTransactionOutput is the inverse of TransactionOutput.ToABI.
func NewTransactionOutput(rec *abi.Note) TransactionOutput {
	n := &Note{
		Pos:             rec.Pos,
		Nonce:           &Nonce{Bs: append([]byte(nil), rec.Nonce[:]...)},
		RG:              &CompressedPoint{Y: append([]byte(nil), rec.R[:]...)},
		PkR:             &CompressedPoint{Y: append([]byte(nil), rec.PkR[:]...)},
		ValueCommitment: &Scalar{Data: append([]byte(nil), rec.ValueCommitment[:]...)},
	}
	if rec.IsTransparent() {
		n.TransparentValue = &Value{Int: uint256.NewInt(rec.Value)}
		n.TransparentBlindingFactor = &Scalar{Data: append([]byte(nil), rec.BlindingFactor[:]...)}
	} else {
		n.EncryptedValue = append([]byte(nil), rec.EncryptedValue[:]...)
		n.EncryptedBlindingFactor = append([]byte(nil), rec.EncryptedBlindingFactor[:]...)
	}
	return TransactionOutput{Note: n}
}

// Buffers holds a transaction packed for the boundary, with the record
// counts the buffers themselves do not carry.
type Buffers struct {
	Inputs     *abi.InputsBuffer
	Nullifiers *abi.NullifiersBuffer
	Notes      *abi.NotesBuffer
	Proof      abi.Proof

	NumInputs int
	NumNotes  int
}

// Buffers converts every input and output and packs them. The proof is
// padded to the layout size. Any failure rejects the whole transaction.
func (tx *Transaction) Buffers(layout abi.ProofLayout) (*Buffers, error) {
	inputs := make([]abi.Input, len(tx.Inputs))
	nullifiers := make([]abi.Nullifier, len(tx.Inputs))
	for i := range tx.Inputs {
		rec, err := tx.Inputs[i].ToABI()
		if err != nil {
			return nil, abi.AtSlot(err, i)
		}
		inputs[i], nullifiers[i] = rec, rec.Nullifier
	}
	notes := make([]abi.Note, len(tx.Outputs))
	for i := range tx.Outputs {
		rec, err := tx.Outputs[i].ToABI()
		if err != nil {
			return nil, abi.AtSlot(err, i)
		}
		notes[i] = rec
	}

	var (
		b   = &Buffers{NumInputs: len(inputs), NumNotes: len(notes)}
		err error
	)
	if b.Inputs, err = abi.EncodeInputs(inputs); err != nil {
		return nil, err
	}
	if b.Nullifiers, err = abi.EncodeNullifiers(nullifiers); err != nil {
		return nil, err
	}
	if b.Notes, err = abi.EncodeNotes(notes); err != nil {
		return nil, err
	}
	if b.Proof, err = layout.Encode(tx.Proof); err != nil {
		return nil, err
	}
	return b, nil
}
