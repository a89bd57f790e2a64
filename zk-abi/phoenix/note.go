package phoenix

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/kysee/phoenix-abi/utils"
	"github.com/kysee/phoenix-abi/zk-abi/crypto"
)

const (
	EncryptedValueSize          = 8 + crypto.Overhead
	EncryptedBlindingFactorSize = fr.Bytes + crypto.Overhead
)

type NoteKind uint8

const (
	KindTransparent NoteKind = iota + 1
	KindObfuscated
)

func (k NoteKind) String() string {
	switch k {
	case KindTransparent:
		return "transparent"
	case KindObfuscated:
		return "obfuscated"
	}
	return fmt.Sprintf("NoteKind(%d)", uint8(k))
}

type Nonce [crypto.NonceSize]byte

// NoteHeader holds the fields shared by both note variants.
type NoteHeader struct {
	ValueCommitment fr.Element
	Nonce           Nonce
	R               crypto.Point
	PkR             crypto.Point
	Pos             uint64
}

// NoteVariant is either a *TransparentNote or an *ObfuscatedNote.
type NoteVariant interface {
	Header() *NoteHeader
	Kind() NoteKind
	isNoteVariant()
}

// TransparentNote carries its value and blinding factor in the clear.
// Value is never zero: a zero value is how the boundary format marks an
// obfuscated note.
type TransparentNote struct {
	NoteHeader
	Value          uint64
	BlindingFactor fr.Element
}

func (n *TransparentNote) Header() *NoteHeader { return &n.NoteHeader }
func (n *TransparentNote) Kind() NoteKind      { return KindTransparent }
func (*TransparentNote) isNoteVariant()        {}

// ObfuscatedNote carries its value and blinding factor sealed to the
// recipient.
type ObfuscatedNote struct {
	NoteHeader
	EncryptedValue          [EncryptedValueSize]byte
	EncryptedBlindingFactor [EncryptedBlindingFactorSize]byte
}

func (n *ObfuscatedNote) Header() *NoteHeader { return &n.NoteHeader }
func (n *ObfuscatedNote) Kind() NoteKind      { return KindObfuscated }
func (*ObfuscatedNote) isNoteVariant()        {}

var ErrZeroValue = errors.New("transparent note value must be non-zero")

// Commit computes the value commitment of (value, blinding factor).
func Commit(value uint64, blindingFactor *fr.Element) fr.Element {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], value)
	bf := blindingFactor.Bytes()
	return utils.HashToScalar(v[:], bf[:])
}

// note secrets shared by both constructors
type draft struct {
	header         NoteHeader
	shared         crypto.Point
	blindingFactor fr.Element
}

func newDraft(rng io.Reader, pk *PublicKey, value uint64) (*draft, error) {
	r, err := crypto.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	bf, err := crypto.RandomBlsScalar(rng)
	if err != nil {
		return nil, err
	}

	if rng == nil {
		rng = rand.Reader
	}
	d := &draft{blindingFactor: bf}
	if _, err := io.ReadFull(rng, d.header.Nonce[:]); err != nil {
		return nil, err
	}
	d.header.R, d.header.PkR = pk.StealthAddress(r)
	d.header.ValueCommitment = Commit(value, &bf)
	if d.shared, err = crypto.SharedSecret(r, &pk.A); err != nil {
		return nil, err
	}
	return d, nil
}

// NewTransparentNote creates a note to pk whose value is public.
func NewTransparentNote(rng io.Reader, pk *PublicKey, value uint64) (*TransparentNote, error) {
	if value == 0 {
		return nil, ErrZeroValue
	}
	d, err := newDraft(rng, pk, value)
	if err != nil {
		return nil, err
	}
	return &TransparentNote{
		NoteHeader:     d.header,
		Value:          value,
		BlindingFactor: d.blindingFactor,
	}, nil
}

// NewObfuscatedNote creates a note to pk whose value and blinding factor are
// sealed with a key only the owner of pk can derive.
func NewObfuscatedNote(rng io.Reader, pk *PublicKey, value uint64) (*ObfuscatedNote, error) {
	d, err := newDraft(rng, pk, value)
	if err != nil {
		return nil, err
	}
	valueKey, bfKey, err := sealingKeys(&d.shared)
	if err != nil {
		return nil, err
	}

	n := &ObfuscatedNote{NoteHeader: d.header}
	ad := n.PkR.Bytes()

	var v [8]byte
	binary.LittleEndian.PutUint64(v[:], value)
	encValue, err := crypto.Seal(valueKey, d.header.Nonce, v[:], ad[:])
	if err != nil {
		return nil, err
	}
	copy(n.EncryptedValue[:], encValue)

	bf := d.blindingFactor.Bytes()
	encBf, err := crypto.Seal(bfKey, d.header.Nonce, bf[:], ad[:])
	if err != nil {
		return nil, err
	}
	copy(n.EncryptedBlindingFactor[:], encBf)
	return n, nil
}

// Decrypt opens the value and blinding factor of an obfuscated note owned
// by sk and checks them against the value commitment.
func (sk *SecretKey) Decrypt(n *ObfuscatedNote) (uint64, fr.Element, error) {
	shared, err := crypto.SharedSecret(sk.A, &n.R)
	if err != nil {
		return 0, fr.Element{}, err
	}
	valueKey, bfKey, err := sealingKeys(&shared)
	if err != nil {
		return 0, fr.Element{}, err
	}
	ad := n.PkR.Bytes()

	v, err := crypto.Open(valueKey, n.Nonce, n.EncryptedValue[:], ad[:])
	if err != nil {
		return 0, fr.Element{}, fmt.Errorf("value: %w", err)
	}
	bfBytes, err := crypto.Open(bfKey, n.Nonce, n.EncryptedBlindingFactor[:], ad[:])
	if err != nil {
		return 0, fr.Element{}, fmt.Errorf("blinding factor: %w", err)
	}

	value := binary.LittleEndian.Uint64(v)
	bf, err := crypto.DecodeScalar([32]byte(bfBytes))
	if err != nil {
		return 0, fr.Element{}, err
	}
	if c := Commit(value, &bf); !c.Equal(&n.ValueCommitment) {
		return 0, fr.Element{}, errors.New("value commitment mismatch")
	}
	return value, bf, nil
}

func sealingKeys(shared *crypto.Point) ([]byte, []byte, error) {
	keys, err := crypto.ExpandKey(shared, 64)
	if err != nil {
		return nil, nil, err
	}
	return keys[:32], keys[32:], nil
}

// NotesEqual compares two notes by variant and canonical field encodings.
func NotesEqual(a, b NoteVariant) bool {
	if a.Kind() != b.Kind() || !headersEqual(a.Header(), b.Header()) {
		return false
	}
	switch x := a.(type) {
	case *TransparentNote:
		y := b.(*TransparentNote)
		return x.Value == y.Value && x.BlindingFactor.Equal(&y.BlindingFactor)
	case *ObfuscatedNote:
		y := b.(*ObfuscatedNote)
		return x.EncryptedValue == y.EncryptedValue && x.EncryptedBlindingFactor == y.EncryptedBlindingFactor
	}
	return false
}

func headersEqual(a, b *NoteHeader) bool {
	return a.ValueCommitment.Equal(&b.ValueCommitment) &&
		a.Nonce == b.Nonce &&
		a.R.Equal(&b.R) &&
		a.PkR.Equal(&b.PkR) &&
		a.Pos == b.Pos
}

// Nullifier derives the nullifier of a note owned by sk from a and the
// note position.
func (sk *SecretKey) Nullifier(n NoteVariant) Nullifier {
	var a [32]byte
	sk.A.FillBytes(a[:])
	var pos [8]byte
	binary.BigEndian.PutUint64(pos[:], n.Header().Pos)
	return Nullifier{Scalar: utils.HashToScalar(a[:], pos[:])}
}
