package abi

// Boundary buffer types, one per record kind. Their lengths are
// Layout.Max * Layout.Size and must agree with the host bit for bit.
type (
	NotesBuffer      [NoteMax * NoteSize]byte
	NullifiersBuffer [NullifierMax * NullifierSize]byte
	InputsBuffer     [InputMax * InputSize]byte
	ItemsBuffer      [ItemMax * ItemSize]byte
)

func EncodeNotes(notes []Note) (*NotesBuffer, error) {
	var buf NotesBuffer
	if err := EncodeInto(buf[:], notes); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (b *NotesBuffer) Decode() ([]Note, error) {
	return Decode[Note](b[:])
}

func (b *NotesBuffer) DecodeN(n int) ([]Note, error) {
	return DecodeN[Note](b[:], n)
}

func EncodeNullifiers(nullifiers []Nullifier) (*NullifiersBuffer, error) {
	var buf NullifiersBuffer
	if err := EncodeInto(buf[:], nullifiers); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (b *NullifiersBuffer) Decode() ([]Nullifier, error) {
	return Decode[Nullifier](b[:])
}

func EncodeInputs(inputs []Input) (*InputsBuffer, error) {
	var buf InputsBuffer
	if err := EncodeInto(buf[:], inputs); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (b *InputsBuffer) Decode() ([]Input, error) {
	return Decode[Input](b[:])
}

func (b *InputsBuffer) DecodeN(n int) ([]Input, error) {
	return DecodeN[Input](b[:], n)
}

func EncodeItems(items []Item) (*ItemsBuffer, error) {
	var buf ItemsBuffer
	if err := EncodeInto(buf[:], items); err != nil {
		return nil, err
	}
	return &buf, nil
}

// Decode requires every slot to hold a valid item. Use DecodeN when the
// buffer carries fewer than ItemMax items.
func (b *ItemsBuffer) Decode() ([]Item, error) {
	return Decode[Item](b[:])
}

func (b *ItemsBuffer) DecodeN(n int) ([]Item, error) {
	return DecodeN[Item](b[:], n)
}

