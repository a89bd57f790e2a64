package host

import (
	"context"
	crand "crypto/rand"
	"math"
	"testing"

	"github.com/kysee/phoenix-abi/config"
	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/kysee/phoenix-abi/zk-abi/convert"
	"github.com/kysee/phoenix-abi/zk-abi/ledger"
	"github.com/kysee/phoenix-abi/zk-abi/phoenix"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// recorder answers every call with ok and keeps the last arguments.
type recorder struct {
	ok         bool
	nullifiers *abi.NullifiersBuffer
	notes      *abi.NotesBuffer
	proof      abi.Proof
	value      int32
	pk         *abi.PublicKey
}

func (r *recorder) Store(nullifiers *abi.NullifiersBuffer, notes *abi.NotesBuffer, proof abi.Proof) bool {
	r.nullifiers, r.notes, r.proof = nullifiers, notes, proof
	return r.ok
}

func (r *recorder) Verify(nullifiers *abi.NullifiersBuffer, notes *abi.NotesBuffer, proof abi.Proof) bool {
	return r.Store(nullifiers, notes, proof)
}

func (r *recorder) Credit(value int32, pk *abi.PublicKey) bool {
	r.value, r.pk = value, pk
	return r.ok
}

func (r *recorder) IsTransparent(notes *abi.NotesBuffer) bool {
	r.notes = notes
	return r.ok
}

func (r *recorder) IsAddressedTo(notes *abi.NotesBuffer, pk *abi.PublicKey) bool {
	r.notes, r.pk = notes, pk
	return r.ok
}

func newKey(t *testing.T) (*phoenix.SecretKey, phoenix.PublicKey) {
	sk, err := phoenix.GenerateSecretKey(crand.Reader)
	require.NoError(t, err)
	return sk, sk.PublicKey()
}

func newTransaction(t *testing.T) *phoenix.Transaction {
	sk, pk := newKey(t)
	spent, err := phoenix.NewTransparentNote(crand.Reader, &pk, 10)
	require.NoError(t, err)
	out, err := phoenix.NewObfuscatedNote(crand.Reader, &pk, 10)
	require.NoError(t, err)
	return &phoenix.Transaction{
		Inputs:  []phoenix.TransactionInput{{Nullifier: sk.Nullifier(spent)}},
		Outputs: []phoenix.NoteVariant{out},
		Proof:   []byte{1, 2, 3},
	}
}

func TestClient_Store(t *testing.T) {
	r := &recorder{ok: true}
	c := NewClient(r, WithProofLayout(abi.ProofLayout{Size: abi.ProofSizeLegacy}))
	tx := newTransaction(t)

	require.NoError(t, c.Store(tx))
	require.Len(t, r.proof, abi.ProofSizeLegacy)
	require.Equal(t, []byte{1, 2, 3}, []byte(r.proof[:3]))

	notes, err := convert.DecodeNotes(r.notes, 1)
	require.NoError(t, err)
	require.True(t, phoenix.NotesEqual(tx.Outputs[0], notes[0]))
	nfs, err := convert.DecodeNullifiers(r.nullifiers, 1)
	require.NoError(t, err)
	require.True(t, nfs[0].Equal(&tx.Inputs[0].Nullifier))

	r.ok = false
	require.ErrorIs(t, c.Store(tx), abi.ErrBoundaryCallFailure)
	require.ErrorIs(t, c.Verify(tx), abi.ErrBoundaryCallFailure)
}

func TestClient_EncodingErrors(t *testing.T) {
	r := &recorder{ok: true}
	c := NewClient(r)
	tx := newTransaction(t)

	tx.Proof = make([]byte, abi.ProofSizePlonk+1)
	require.ErrorIs(t, c.Store(tx), abi.ErrEncodingOverflow)

	tx = newTransaction(t)
	tx.Outputs = append(tx.Outputs, tx.Outputs[0], tx.Outputs[0], tx.Outputs[0])
	require.ErrorIs(t, c.Verify(tx), abi.ErrEncodingOverflow)
	require.Nil(t, r.notes)
}

func TestClient_Credit(t *testing.T) {
	r := &recorder{ok: true}
	c := NewClient(r)
	_, pk := newKey(t)

	require.NoError(t, c.Credit(math.MaxInt32, &pk))
	require.Equal(t, int32(math.MaxInt32), r.value)
	require.Equal(t, convert.LowerPublicKey(&pk), *r.pk)

	require.ErrorIs(t, c.Credit(math.MaxInt32+1, &pk), abi.ErrEncodingOverflow)

	r.ok = false
	require.ErrorIs(t, c.Credit(1, &pk), abi.ErrBoundaryCallFailure)
}

func TestClient_Ledger(t *testing.T) {
	lg := ledger.New()
	c := NewClient(lg)
	sk, pk := newKey(t)
	lg.RegisterViewKey(sk.ViewKey())

	genesis, err := phoenix.NewTransparentNote(crand.Reader, &pk, 50)
	require.NoError(t, err)
	require.NoError(t, c.Store(&phoenix.Transaction{Outputs: []phoenix.NoteVariant{genesis}}))

	ok, err := c.IsTransparent([]phoenix.NoteVariant{genesis})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.IsAddressedTo([]phoenix.NoteVariant{genesis}, &pk)
	require.NoError(t, err)
	require.True(t, ok)

	stored, _ := lg.Note(0)
	out, err := phoenix.NewObfuscatedNote(crand.Reader, &pk, 50)
	require.NoError(t, err)
	tx := &phoenix.Transaction{
		Inputs:  []phoenix.TransactionInput{{Nullifier: sk.Nullifier(stored), MerkleRoot: lg.Root()}},
		Outputs: []phoenix.NoteVariant{out},
	}
	require.NoError(t, c.Verify(tx))
	require.NoError(t, c.Store(tx))
	require.ErrorIs(t, c.Store(tx), abi.ErrBoundaryCallFailure)
}

// guestWasm imports phoenix.phoenix_is_transparent (i32) -> i32, exports one
// page of memory and a function "run" forwarding its argument to the import.
var guestWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type: (i32) -> i32
	0x01, 0x06, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	// import "phoenix" "phoenix_is_transparent"
	0x02, 0x22, 0x01,
	0x07, 'p', 'h', 'o', 'e', 'n', 'i', 'x',
	0x16, 'p', 'h', 'o', 'e', 'n', 'i', 'x', '_', 'i', 's', '_',
	't', 'r', 'a', 'n', 's', 'p', 'a', 'r', 'e', 'n', 't',
	0x00, 0x00,
	// function 1 has type 0
	0x03, 0x02, 0x01, 0x00,
	// memory, min 1 page
	0x05, 0x03, 0x01, 0x00, 0x01,
	// export "memory" and "run"
	0x07, 0x10, 0x02,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x03, 'r', 'u', 'n', 0x00, 0x01,
	// run: local.get 0; call 0
	0x0a, 0x08, 0x01, 0x06, 0x00, 0x20, 0x00, 0x10, 0x00, 0x0b,
}

func instantiate(t *testing.T, h Host) (context.Context, api.Module) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	_, err := Instantiate(ctx, rt, DefaultModuleName, h)
	require.NoError(t, err)
	guest, err := rt.Instantiate(ctx, guestWasm)
	require.NoError(t, err)
	return ctx, guest
}

func TestWasm_IsTransparent(t *testing.T) {
	lg := ledger.New()
	ctx, guest := instantiate(t, lg)
	_, pk := newKey(t)

	n, err := phoenix.NewTransparentNote(crand.Reader, &pk, 3)
	require.NoError(t, err)
	buf, err := convert.EncodeNotes([]phoenix.NoteVariant{n})
	require.NoError(t, err)

	const ptr = 1024
	require.True(t, guest.Memory().Write(ptr, buf[:]))

	run := guest.ExportedFunction("run")
	res, err := run.Call(ctx, api.EncodeU32(ptr))
	require.NoError(t, err)
	require.Equal(t, uint64(1), res[0])

	// buffer would end past the single page
	res, err = run.Call(ctx, api.EncodeU32(65536-100))
	require.NoError(t, err)
	require.Equal(t, uint64(0), res[0])
}

func TestWasm_Exports(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := Instantiate(ctx, rt, "phoenix_v2", &recorder{})
	require.NoError(t, err)
	defs := mod.ExportedFunctionDefinitions()
	for _, name := range []string{FuncStore, FuncVerify, FuncCredit, FuncIsTransparent, FuncIsAddressedTo} {
		require.Contains(t, defs, name)
	}
	require.Len(t, defs[FuncStore].ParamTypes(), 3)
	require.Equal(t, []api.ValueType{api.ValueTypeI32}, defs[FuncCredit].ResultTypes())
}

func TestWasm_InstantiateConfig(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.HostModule = "phoenix_v2"
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	mod, err := InstantiateConfig(ctx, rt, cfg, &recorder{})
	require.NoError(t, err)
	require.Equal(t, "phoenix_v2", mod.Name())
	require.NotNil(t, rt.Module(cfg.HostModule))
	// the guest imports from "phoenix", which this runtime does not provide
	_, err = rt.Instantiate(ctx, guestWasm)
	require.Error(t, err)

	rt2 := wazero.NewRuntime(ctx)
	defer rt2.Close(ctx)
	_, err = InstantiateConfig(ctx, rt2, config.Default(), ledger.New())
	require.NoError(t, err)
	_, err = rt2.Instantiate(ctx, guestWasm)
	require.NoError(t, err)

	cfg.HostModule = ""
	_, err = InstantiateConfig(ctx, rt2, cfg, &recorder{})
	require.Error(t, err)
}

func TestWasm_Handlers(t *testing.T) {
	r := &recorder{ok: true}
	_, guest := instantiate(t, r)
	mem := guest.Memory()
	e := &exports{host: r, proofLayout: abi.ProofLayout{Size: 16}}
	e.log = newOptions(nil).log

	_, pk := newKey(t)
	rec := convert.LowerPublicKey(&pk)
	require.True(t, mem.Write(0, rec[:]))
	require.True(t, e.credit(mem, 7, 0))
	require.Equal(t, int32(7), r.value)
	require.Equal(t, rec, *r.pk)
	require.False(t, e.credit(mem, 7, 65536-10))

	var nf abi.NullifiersBuffer
	nf[0] = 0xaa
	require.True(t, mem.Write(100, nf[:]))
	proof := []byte("0123456789abcdef")
	require.True(t, mem.Write(2000, proof))
	require.True(t, e.store(mem, 100, 400, 2000))
	require.Equal(t, byte(0xaa), r.nullifiers[0])
	require.Equal(t, proof, []byte(r.proof))
	require.True(t, e.verify(mem, 100, 400, 2000))
	require.False(t, e.verify(mem, 100, 400, 65536-8))

	require.True(t, e.isAddressedTo(mem, 400, 0))
	require.False(t, e.isAddressedTo(nil, 400, 0))

	r.ok = false
	require.False(t, e.store(mem, 100, 400, 2000))
}
