package host

import (
	"context"
	"fmt"

	"github.com/kysee/phoenix-abi/config"
	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Names of the functions exported to guests. Every parameter and result is
// an i32; pointers address guest memory.
const (
	FuncStore         = "phoenix_store"
	FuncVerify        = "phoenix_verify"
	FuncCredit        = "phoenix_credit"
	FuncIsTransparent = "phoenix_is_transparent"
	FuncIsAddressedTo = "phoenix_is_addressed_to"

	DefaultModuleName = "phoenix"
)

type exports struct {
	host        Host
	proofLayout abi.ProofLayout
	log         zerolog.Logger
}

// Instantiate registers a host module named name on rt whose functions read
// boundary buffers from the calling guest's memory and forward them to h.
// A pointer whose buffer does not fit in guest memory makes the call return 0.
func Instantiate(ctx context.Context, rt wazero.Runtime, name string, h Host, opts ...Option) (api.Module, error) {
	o := newOptions(opts)
	e := &exports{
		host:        h,
		proofLayout: o.proofLayout,
		log:         o.log.With().Str("module", name).Logger(),
	}

	i32 := api.ValueTypeI32
	b := rt.NewHostModuleBuilder(name)
	for _, f := range []struct {
		name   string
		fn     api.GoModuleFunc
		params []api.ValueType
	}{
		{FuncStore, e.callStore, []api.ValueType{i32, i32, i32}},
		{FuncVerify, e.callVerify, []api.ValueType{i32, i32, i32}},
		{FuncCredit, e.callCredit, []api.ValueType{i32, i32}},
		{FuncIsTransparent, e.callIsTransparent, []api.ValueType{i32}},
		{FuncIsAddressedTo, e.callIsAddressedTo, []api.ValueType{i32, i32}},
	} {
		b.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, []api.ValueType{i32}).
			Export(f.name)
	}

	mod, err := b.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiate host module %q: %w", name, err)
	}
	return mod, nil
}

// InstantiateConfig registers the host module under cfg.HostModule with the
// proof layout of cfg. Options in opts are applied after those from cfg.
func InstantiateConfig(ctx context.Context, rt wazero.Runtime, cfg config.Config, h Host, opts ...Option) (api.Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = append([]Option{WithProofLayout(cfg.ProofLayout())}, opts...)
	return Instantiate(ctx, rt, cfg.HostModule, h, opts...)
}

func result(ok bool) uint64 {
	if ok {
		return 1
	}
	return 0
}

func (e *exports) read(mem api.Memory, fn string, ptr uint32, dst []byte) bool {
	if mem == nil {
		e.log.Warn().Str("func", fn).Msg("guest has no memory")
		return false
	}
	b, ok := mem.Read(ptr, uint32(len(dst)))
	if !ok {
		e.log.Warn().Str("func", fn).Uint32("ptr", ptr).Int("size", len(dst)).Msg("buffer out of range")
		return false
	}
	copy(dst, b)
	return true
}

func (e *exports) txBuffers(mem api.Memory, fn string, nfPtr, notesPtr, proofPtr uint32) (*abi.NullifiersBuffer, *abi.NotesBuffer, abi.Proof, bool) {
	var (
		nullifiers abi.NullifiersBuffer
		notes      abi.NotesBuffer
		proof      = e.proofLayout.Empty()
	)
	if !e.read(mem, fn, nfPtr, nullifiers[:]) ||
		!e.read(mem, fn, notesPtr, notes[:]) ||
		!e.read(mem, fn, proofPtr, proof) {
		return nil, nil, nil, false
	}
	return &nullifiers, &notes, proof, true
}

func (e *exports) store(mem api.Memory, nfPtr, notesPtr, proofPtr uint32) bool {
	nullifiers, notes, proof, ok := e.txBuffers(mem, FuncStore, nfPtr, notesPtr, proofPtr)
	return ok && e.host.Store(nullifiers, notes, proof)
}

func (e *exports) verify(mem api.Memory, nfPtr, notesPtr, proofPtr uint32) bool {
	nullifiers, notes, proof, ok := e.txBuffers(mem, FuncVerify, nfPtr, notesPtr, proofPtr)
	return ok && e.host.Verify(nullifiers, notes, proof)
}

func (e *exports) credit(mem api.Memory, value int32, pkPtr uint32) bool {
	var pk abi.PublicKey
	return e.read(mem, FuncCredit, pkPtr, pk[:]) && e.host.Credit(value, &pk)
}

func (e *exports) isTransparent(mem api.Memory, notesPtr uint32) bool {
	var notes abi.NotesBuffer
	return e.read(mem, FuncIsTransparent, notesPtr, notes[:]) && e.host.IsTransparent(&notes)
}

func (e *exports) isAddressedTo(mem api.Memory, notesPtr, pkPtr uint32) bool {
	var (
		notes abi.NotesBuffer
		pk    abi.PublicKey
	)
	return e.read(mem, FuncIsAddressedTo, notesPtr, notes[:]) &&
		e.read(mem, FuncIsAddressedTo, pkPtr, pk[:]) &&
		e.host.IsAddressedTo(&notes, &pk)
}

func (e *exports) callStore(_ context.Context, m api.Module, stack []uint64) {
	stack[0] = result(e.store(m.Memory(), api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2])))
}

func (e *exports) callVerify(_ context.Context, m api.Module, stack []uint64) {
	stack[0] = result(e.verify(m.Memory(), api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2])))
}

func (e *exports) callCredit(_ context.Context, m api.Module, stack []uint64) {
	stack[0] = result(e.credit(m.Memory(), api.DecodeI32(stack[0]), api.DecodeU32(stack[1])))
}

func (e *exports) callIsTransparent(_ context.Context, m api.Module, stack []uint64) {
	stack[0] = result(e.isTransparent(m.Memory(), api.DecodeU32(stack[0])))
}

func (e *exports) callIsAddressedTo(_ context.Context, m api.Module, stack []uint64) {
	stack[0] = result(e.isAddressedTo(m.Memory(), api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}
