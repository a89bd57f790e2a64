package ledger

import (
	crand "crypto/rand"
	"errors"
	"testing"

	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/kysee/phoenix-abi/zk-abi/convert"
	"github.com/kysee/phoenix-abi/zk-abi/phoenix"
	"github.com/stretchr/testify/require"
)

type wallet struct {
	sk *phoenix.SecretKey
	pk phoenix.PublicKey
}

func newWallet(t *testing.T) wallet {
	sk, err := phoenix.GenerateSecretKey(crand.Reader)
	require.NoError(t, err)
	return wallet{sk: sk, pk: sk.PublicKey()}
}

func (w wallet) transparent(t *testing.T, value uint64) phoenix.NoteVariant {
	n, err := phoenix.NewTransparentNote(crand.Reader, &w.pk, value)
	require.NoError(t, err)
	return n
}

func (w wallet) obfuscated(t *testing.T, value uint64) phoenix.NoteVariant {
	n, err := phoenix.NewObfuscatedNote(crand.Reader, &w.pk, value)
	require.NoError(t, err)
	return n
}

func buffers(t *testing.T, nfs []phoenix.Nullifier, notes []phoenix.NoteVariant) (*abi.NullifiersBuffer, *abi.NotesBuffer) {
	nfBuf, err := convert.EncodeNullifiers(nfs)
	require.NoError(t, err)
	notesBuf, err := convert.EncodeNotes(notes)
	require.NoError(t, err)
	return nfBuf, notesBuf
}

func TestStore(t *testing.T) {
	lg := New()
	alice := newWallet(t)
	proof := abi.DefaultProofLayout.Empty()

	genesis := alice.transparent(t, 100)
	nfBuf, notesBuf := buffers(t, nil, []phoenix.NoteVariant{genesis})
	require.True(t, lg.Store(nfBuf, notesBuf, proof))

	stored, ok := lg.Note(0)
	require.True(t, ok)
	require.Equal(t, uint64(0), stored.Header().Pos)
	require.True(t, lg.KnownRoot(lg.Root()))

	nf := alice.sk.Nullifier(stored)
	nfBuf, notesBuf = buffers(t, []phoenix.Nullifier{nf}, []phoenix.NoteVariant{alice.obfuscated(t, 60), alice.transparent(t, 40)})
	require.True(t, lg.Verify(nfBuf, notesBuf, proof))
	require.True(t, lg.Store(nfBuf, notesBuf, proof))
	require.True(t, lg.IsSpent(nf))

	second, ok := lg.Note(2)
	require.True(t, ok)
	require.Equal(t, uint64(2), second.Header().Pos)

	// double spend
	require.False(t, lg.Verify(nfBuf, notesBuf, proof))
	require.False(t, lg.Store(nfBuf, notesBuf, proof))
	_, ok = lg.Note(3)
	require.False(t, ok)
}

func TestStore_Rejects(t *testing.T) {
	lg := New()
	alice := newWallet(t)
	proof := abi.DefaultProofLayout.Empty()
	note := alice.transparent(t, 5)
	nf := alice.sk.Nullifier(note)

	nfBuf, notesBuf := buffers(t, []phoenix.Nullifier{nf, nf}, []phoenix.NoteVariant{note})
	require.False(t, lg.Store(nfBuf, notesBuf, proof), "duplicate nullifier")

	nfBuf, notesBuf = buffers(t, []phoenix.Nullifier{nf}, nil)
	require.False(t, lg.Store(nfBuf, notesBuf, proof), "no outputs")

	nfBuf, notesBuf = buffers(t, nil, []phoenix.NoteVariant{note})
	notesBuf[2*abi.NoteSize] = 1
	require.False(t, lg.Store(nfBuf, notesBuf, proof), "record after padding")

	nfBuf, notesBuf = buffers(t, []phoenix.Nullifier{nf}, []phoenix.NoteVariant{note, alice.transparent(t, 1)})
	for i := 0; i < abi.PointSize; i++ {
		notesBuf[abi.NoteSize+56+i] = 0xff
	}
	require.False(t, lg.Store(nfBuf, notesBuf, proof), "malformed second note")
	require.False(t, lg.IsSpent(nf))
	_, ok := lg.Note(0)
	require.False(t, ok)
}

func TestProofCheck(t *testing.T) {
	errBad := errors.New("bad proof")
	var got int
	lg := New(WithProofCheck(func(nfs []phoenix.Nullifier, notes []phoenix.NoteVariant, proof abi.Proof) error {
		got = len(notes)
		if proof[0] != 1 {
			return errBad
		}
		return nil
	}))
	alice := newWallet(t)
	nfBuf, notesBuf := buffers(t, nil, []phoenix.NoteVariant{alice.transparent(t, 1)})

	proof := abi.DefaultProofLayout.Empty()
	require.False(t, lg.Store(nfBuf, notesBuf, proof))
	require.Equal(t, 1, got)

	proof[0] = 1
	require.True(t, lg.Store(nfBuf, notesBuf, proof))
}

func TestStore_ProofSize(t *testing.T) {
	layout := abi.ProofLayout{Size: abi.ProofSizeLegacy}
	lg := New(WithProofLayout(layout))
	alice := newWallet(t)
	nfBuf, notesBuf := buffers(t, nil, []phoenix.NoteVariant{alice.transparent(t, 1)})

	for _, proof := range []abi.Proof{nil, abi.DefaultProofLayout.Empty(), make(abi.Proof, layout.Size-1)} {
		require.False(t, lg.Verify(nfBuf, notesBuf, proof), "proof of %d bytes", len(proof))
		require.False(t, lg.Store(nfBuf, notesBuf, proof), "proof of %d bytes", len(proof))
	}
	_, ok := lg.Note(0)
	require.False(t, ok)

	require.True(t, lg.Store(nfBuf, notesBuf, layout.Empty()))
}

func TestCredit(t *testing.T) {
	lg := New()
	alice := newWallet(t)
	pk := convert.LowerPublicKey(&alice.pk)

	require.True(t, lg.Credit(10, &pk))
	require.True(t, lg.Credit(5, &pk))
	require.Equal(t, int64(15), lg.Balance(&pk))

	require.False(t, lg.Credit(0, &pk))
	require.False(t, lg.Credit(-1, &pk))

	var bad abi.PublicKey
	for i := range bad {
		bad[i] = 0xff
	}
	require.False(t, lg.Credit(1, &bad))
}

func TestIsTransparent(t *testing.T) {
	lg := New()
	alice := newWallet(t)

	_, buf := buffers(t, nil, []phoenix.NoteVariant{alice.transparent(t, 1), alice.transparent(t, 2)})
	require.True(t, lg.IsTransparent(buf))

	_, buf = buffers(t, nil, []phoenix.NoteVariant{alice.transparent(t, 1), alice.obfuscated(t, 2)})
	require.False(t, lg.IsTransparent(buf))

	_, buf = buffers(t, nil, nil)
	require.False(t, lg.IsTransparent(buf))
}

func TestIsAddressedTo(t *testing.T) {
	lg := New()
	alice, bob := newWallet(t), newWallet(t)

	pk := lg.RegisterViewKey(alice.sk.ViewKey())
	require.Equal(t, convert.LowerPublicKey(&alice.pk), pk)

	_, buf := buffers(t, nil, []phoenix.NoteVariant{bob.obfuscated(t, 1), alice.obfuscated(t, 2)})
	require.True(t, lg.IsAddressedTo(buf, &pk))

	_, buf = buffers(t, nil, []phoenix.NoteVariant{bob.transparent(t, 1)})
	require.False(t, lg.IsAddressedTo(buf, &pk))

	bobPk := convert.LowerPublicKey(&bob.pk)
	require.False(t, lg.IsAddressedTo(buf, &bobPk), "unregistered key")
}

func TestOpening(t *testing.T) {
	lg := New()
	alice := newWallet(t)
	proof := abi.DefaultProofLayout.Empty()

	for i := 0; i < 3; i++ {
		_, buf := buffers(t, nil, []phoenix.NoteVariant{alice.transparent(t, uint64(i+1)), alice.obfuscated(t, 7)})
		require.True(t, lg.Store(&abi.NullifiersBuffer{}, buf, proof))
	}

	o, err := lg.Open(3)
	require.NoError(t, err)
	require.Equal(t, uint64(6), o.NumLeaves)
	require.NoError(t, lg.VerifyOpening(o))

	o.Pos = 2
	require.ErrorIs(t, lg.VerifyOpening(o), ErrBadOpening)

	_, err = lg.Open(6)
	require.ErrorIs(t, err, ErrNotInTree)
}
