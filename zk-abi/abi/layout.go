package abi

import "encoding/binary"

// Encoded sizes in bytes. Changing any of them changes the wire format.
const (
	ScalarSize  = 32
	PointSize   = 32
	NonceSize   = 24
	Uint64Size  = 8
	RoleTagSize = 1

	EncryptedValueSize          = 24
	BlindingFactorSize          = 32
	EncryptedBlindingFactorSize = 48

	PublicKeySize = 2 * PointSize
	NullifierSize = ScalarSize
	InputSize     = 2 * ScalarSize
	NoteSize      = ScalarSize + NonceSize + 2*PointSize + 2*Uint64Size +
		EncryptedValueSize + BlindingFactorSize + EncryptedBlindingFactorSize
	ItemSize = NoteSize + PublicKeySize + RoleTagSize + NullifierSize
)

// Maximum records of each kind in one transaction.
const (
	PublicKeyMax = 1
	NoteMax      = 3
	NullifierMax = 8
	InputMax     = NullifierMax
	ItemMax      = InputMax + NoteMax
)

// Layout describes the slotting of one record kind inside a boundary buffer.
type Layout struct {
	Name string
	Size int
	Max  int
}

// BufferSize is the exact length of a boundary buffer for the record kind.
func (l Layout) BufferSize() int {
	return l.Size * l.Max
}

var (
	PublicKeyLayout = Layout{Name: "PublicKey", Size: PublicKeySize, Max: PublicKeyMax}
	NoteLayout      = Layout{Name: "Note", Size: NoteSize, Max: NoteMax}
	NullifierLayout = Layout{Name: "Nullifier", Size: NullifierSize, Max: NullifierMax}
	InputLayout     = Layout{Name: "Input", Size: InputSize, Max: InputMax}
	ItemLayout      = Layout{Name: "Item", Size: ItemSize, Max: ItemMax}
)

// cursor walks a single record slot field by field.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) put(b []byte) {
	c.off += copy(c.buf[c.off:], b)
}

func (c *cursor) putUint64(v uint64) {
	binary.LittleEndian.PutUint64(c.buf[c.off:], v)
	c.off += Uint64Size
}

func (c *cursor) putByte(v byte) {
	c.buf[c.off] = v
	c.off++
}

func (c *cursor) get(dst []byte) {
	c.off += copy(dst, c.buf[c.off:c.off+len(dst)])
}

func (c *cursor) getUint64() uint64 {
	v := binary.LittleEndian.Uint64(c.buf[c.off:])
	c.off += Uint64Size
	return v
}

func (c *cursor) getByte() byte {
	v := c.buf[c.off]
	c.off++
	return v
}
