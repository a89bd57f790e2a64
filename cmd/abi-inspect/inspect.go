package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/kysee/phoenix-abi/config"
	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/kysee/phoenix-abi/zk-abi/convert"
	"github.com/kysee/phoenix-abi/zk-abi/phoenix"
	"github.com/kysee/phoenix-abi/zk-abi/rpc"
)

type inspection struct {
	w     io.Writer
	buf   []byte
	count int
	cfg   config.Config
}

func (in *inspection) printf(format string, args ...any) {
	fmt.Fprintf(in.w, format, args...)
}

var kinds = map[string]func(*inspection) error{
	"pubkey":     inspectPublicKey,
	"notes":      inspectNotes,
	"nullifiers": inspectNullifiers,
	"inputs":     inspectInputs,
	"items":      inspectItems,
	"proof":      inspectProof,
	"tx":         inspectTransaction,
}

func kindNames() []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// records decodes count slots of buf, or every slot when count is negative.
func records[T any, P abi.Record[T]](in *inspection) ([]T, error) {
	if in.count < 0 {
		return abi.Decode[T, P](in.buf)
	}
	return abi.DecodeN[T, P](in.buf, in.count)
}

func inspectPublicKey(in *inspection) error {
	recs, err := abi.Decode[abi.PublicKey](in.buf)
	if err != nil {
		return err
	}
	pk := recs[0]
	if _, err := convert.RaisePublicKey(pk); err != nil {
		return err
	}
	in.printf("public key %s\naddress    %s\n", pk, pk.Address())
	return nil
}

func describeNote(n phoenix.NoteVariant) string {
	switch v := n.(type) {
	case *phoenix.TransparentNote:
		return fmt.Sprintf("transparent pos=%d value=%d", v.Pos, v.Value)
	case *phoenix.ObfuscatedNote:
		return fmt.Sprintf("obfuscated pos=%d", v.Pos)
	}
	return n.Kind().String()
}

func inspectNotes(in *inspection) error {
	recs, err := records[abi.Note](in)
	if err != nil {
		return err
	}
	notes, err := convert.RaiseNotes(recs)
	if err != nil {
		return err
	}
	for i := range recs {
		in.printf("[%d] %s\n    %s\n", i, recs[i], describeNote(notes[i]))
	}
	return nil
}

func inspectNullifiers(in *inspection) error {
	recs, err := records[abi.Nullifier](in)
	if err != nil {
		return err
	}
	if _, err := convert.RaiseNullifiers(recs); err != nil {
		return err
	}
	for i, r := range recs {
		in.printf("[%d] %s\n", i, r)
	}
	return nil
}

func inspectInputs(in *inspection) error {
	recs, err := records[abi.Input](in)
	if err != nil {
		return err
	}
	if _, err := convert.RaiseInputs(recs); err != nil {
		return err
	}
	for i, r := range recs {
		in.printf("[%d] %s\n", i, r)
	}
	return nil
}

func inspectItems(in *inspection) error {
	recs, err := records[abi.Item](in)
	if err != nil {
		return err
	}
	items, err := convert.RaiseItems(recs)
	if err != nil {
		return err
	}
	for i := range recs {
		in.printf("[%d] %s\n    %s %s\n", i, recs[i], items[i].Role, describeNote(items[i].Note))
	}
	return nil
}

func inspectProof(in *inspection) error {
	p, err := in.cfg.ProofLayout().Decode(in.buf)
	if err != nil {
		return err
	}
	in.printf("proof %d bytes %s\n", len(p), p)
	return nil
}

// inspectTransaction reads an RLP transaction and shows the buffers it packs to.
func inspectTransaction(in *inspection) error {
	tx, err := rpc.DecodeTransaction(in.buf)
	if err != nil {
		return err
	}
	b, err := tx.Buffers(in.cfg.ProofLayout())
	if err != nil {
		return err
	}
	inputs, err := b.Inputs.DecodeN(b.NumInputs)
	if err != nil {
		return err
	}
	if _, err := convert.RaiseInputs(inputs); err != nil {
		return err
	}
	notes, err := b.Notes.DecodeN(b.NumNotes)
	if err != nil {
		return err
	}
	raised, err := convert.RaiseNotes(notes)
	if err != nil {
		return err
	}

	in.printf("inputs %d, outputs %d, proof %d bytes\n", b.NumInputs, b.NumNotes, len(b.Proof))
	for i, r := range inputs {
		in.printf("input [%d] %s\n", i, r)
	}
	for i := range notes {
		in.printf("output [%d] %s\n    %s\n", i, notes[i], describeNote(raised[i]))
	}
	return nil
}
