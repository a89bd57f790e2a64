package convert

import (
	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/kysee/phoenix-abi/zk-abi/phoenix"
)

// lowerAll and raiseAll apply a single record conversion to a batch. Raising
// is all or nothing and reports the slot of the first failure.
func lowerAll[D, R any](in []D, lower func(*D) R) []R {
	out := make([]R, len(in))
	for i := range in {
		out[i] = lower(&in[i])
	}
	return out
}

func raiseAll[R, D any](in []R, raise func(*R) (D, error)) ([]D, error) {
	out := make([]D, len(in))
	for i := range in {
		d, err := raise(&in[i])
		if err != nil {
			return nil, abi.AtSlot(err, i)
		}
		out[i] = d
	}
	return out, nil
}

func LowerNotes(notes []phoenix.NoteVariant) []abi.Note {
	return lowerAll(notes, func(n *phoenix.NoteVariant) abi.Note { return LowerNote(*n) })
}

func RaiseNotes(recs []abi.Note) ([]phoenix.NoteVariant, error) {
	return raiseAll(recs, RaiseNote)
}

func LowerNullifiers(ns []phoenix.Nullifier) []abi.Nullifier {
	return lowerAll(ns, LowerNullifier)
}

func RaiseNullifiers(recs []abi.Nullifier) ([]phoenix.Nullifier, error) {
	return raiseAll(recs, func(r *abi.Nullifier) (phoenix.Nullifier, error) { return RaiseNullifier(*r) })
}

func LowerInputs(ins []phoenix.TransactionInput) []abi.Input {
	return lowerAll(ins, LowerInput)
}

func RaiseInputs(recs []abi.Input) ([]phoenix.TransactionInput, error) {
	return raiseAll(recs, RaiseInput)
}

func LowerItems(items []phoenix.TransactionItem) []abi.Item {
	return lowerAll(items, LowerItem)
}

func RaiseItems(recs []abi.Item) ([]phoenix.TransactionItem, error) {
	return raiseAll(recs, RaiseItem)
}

// EncodeNotes lowers notes and packs them into a boundary buffer.
func EncodeNotes(notes []phoenix.NoteVariant) (*abi.NotesBuffer, error) {
	return abi.EncodeNotes(LowerNotes(notes))
}

// DecodeNotes unpacks the first n notes of a boundary buffer and raises them.
func DecodeNotes(buf *abi.NotesBuffer, n int) ([]phoenix.NoteVariant, error) {
	recs, err := buf.DecodeN(n)
	if err != nil {
		return nil, err
	}
	return RaiseNotes(recs)
}

func EncodeNullifiers(ns []phoenix.Nullifier) (*abi.NullifiersBuffer, error) {
	return abi.EncodeNullifiers(LowerNullifiers(ns))
}

// DecodeNullifiers decodes and raises the first n slots. The rest of the
// buffer is padding and is not read.
func DecodeNullifiers(buf *abi.NullifiersBuffer, n int) ([]phoenix.Nullifier, error) {
	recs, err := abi.DecodeN[abi.Nullifier](buf[:], n)
	if err != nil {
		return nil, err
	}
	return RaiseNullifiers(recs)
}

func EncodeInputs(ins []phoenix.TransactionInput) (*abi.InputsBuffer, error) {
	return abi.EncodeInputs(LowerInputs(ins))
}

func DecodeInputs(buf *abi.InputsBuffer, n int) ([]phoenix.TransactionInput, error) {
	recs, err := buf.DecodeN(n)
	if err != nil {
		return nil, err
	}
	return RaiseInputs(recs)
}

func EncodeItems(items []phoenix.TransactionItem) (*abi.ItemsBuffer, error) {
	return abi.EncodeItems(LowerItems(items))
}

func DecodeItems(buf *abi.ItemsBuffer, n int) ([]phoenix.TransactionItem, error) {
	recs, err := buf.DecodeN(n)
	if err != nil {
		return nil, err
	}
	return RaiseItems(recs)
}
