package phoenix

import (
	crand "crypto/rand"
	"testing"

	"github.com/kysee/phoenix-abi/zk-abi/crypto"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *SecretKey {
	sk, err := GenerateSecretKey(crand.Reader)
	require.NoError(t, err)
	return sk
}

func TestTransparentNote(t *testing.T) {
	sk := newKey(t)
	pk := sk.PublicKey()

	n, err := NewTransparentNote(crand.Reader, &pk, 100)
	require.NoError(t, err)
	require.Equal(t, KindTransparent, n.Kind())
	require.True(t, n.R.IsOnCurve())
	require.True(t, n.PkR.IsOnCurve())

	c := Commit(100, &n.BlindingFactor)
	require.True(t, c.Equal(&n.ValueCommitment))

	_, err = NewTransparentNote(crand.Reader, &pk, 0)
	require.ErrorIs(t, err, ErrZeroValue)
}

func TestObfuscatedNote_Decrypt(t *testing.T) {
	sk := newKey(t)
	pk := sk.PublicKey()

	n, err := NewObfuscatedNote(crand.Reader, &pk, 4242)
	require.NoError(t, err)
	require.Equal(t, KindObfuscated, n.Kind())

	value, bf, err := sk.Decrypt(n)
	require.NoError(t, err)
	require.Equal(t, uint64(4242), value)
	c := Commit(value, &bf)
	require.True(t, c.Equal(&n.ValueCommitment))

	other := newKey(t)
	_, _, err = other.Decrypt(n)
	require.Error(t, err)
}

func TestObfuscatedNote_DecryptOffCurve(t *testing.T) {
	sk := newKey(t)
	pk := sk.PublicKey()

	n, err := NewObfuscatedNote(crand.Reader, &pk, 7)
	require.NoError(t, err)
	bad := *n
	bad.R.X.SetOne()
	bad.R.Y.SetOne()
	_, _, err = sk.Decrypt(&bad)
	require.ErrorIs(t, err, crypto.ErrNotOnCurve)
}

func TestViewKeyOwns(t *testing.T) {
	alice, bob := newKey(t), newKey(t)
	alicePk := alice.PublicKey()

	n, err := NewObfuscatedNote(crand.Reader, &alicePk, 1)
	require.NoError(t, err)

	aliceVk, bobVk := alice.ViewKey(), bob.ViewKey()
	require.True(t, aliceVk.Owns(n))
	require.False(t, bobVk.Owns(n))

	// the one-time key must not reveal B
	require.False(t, n.PkR.Equal(&alicePk.B))
}

func TestNullifier(t *testing.T) {
	sk := newKey(t)
	pk := sk.PublicKey()

	n0, err := NewTransparentNote(crand.Reader, &pk, 10)
	require.NoError(t, err)
	n1, err := NewTransparentNote(crand.Reader, &pk, 10)
	require.NoError(t, err)
	n1.Pos = 1

	nf0, nf0Again, nf1 := sk.Nullifier(n0), sk.Nullifier(n0), sk.Nullifier(n1)
	require.True(t, nf0.Equal(&nf0Again))
	require.False(t, nf0.Equal(&nf1))
}

func TestNotesEqual(t *testing.T) {
	sk := newKey(t)
	pk := sk.PublicKey()

	tn, err := NewTransparentNote(crand.Reader, &pk, 7)
	require.NoError(t, err)
	on, err := NewObfuscatedNote(crand.Reader, &pk, 7)
	require.NoError(t, err)

	cp := *tn
	require.True(t, NotesEqual(tn, &cp))
	cp.Value = 8
	require.False(t, NotesEqual(tn, &cp))
	require.False(t, NotesEqual(tn, on))
}

func TestTransactionNullifiers(t *testing.T) {
	sk := newKey(t)
	pk := sk.PublicKey()
	n, err := NewTransparentNote(crand.Reader, &pk, 3)
	require.NoError(t, err)

	tx := Transaction{
		Inputs: []TransactionInput{{Nullifier: sk.Nullifier(n)}},
	}
	nfs := tx.Nullifiers()
	require.Len(t, nfs, 1)
	require.True(t, nfs[0].Equal(&tx.Inputs[0].Nullifier))
}
