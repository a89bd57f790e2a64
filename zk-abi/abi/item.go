package abi

import "fmt"

// Role tells whether an Item is being spent or created.
type Role uint8

const (
	RoleInput  Role = 1
	RoleOutput Role = 2
)

func (r Role) Valid() bool {
	return r == RoleInput || r == RoleOutput
}

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Item combines a note with its owner key, role and nullifier.
// Only roles 1 and 2 are valid; any other tag fails to decode.
type Item struct {
	Note      Note
	Owner     PublicKey
	Role      Role
	Nullifier Nullifier
}

func (Item) Layout() Layout {
	return ItemLayout
}

func (it *Item) MarshalABI(dst []byte) error {
	if err := checkMarshal(ItemLayout, dst); err != nil {
		return err
	}
	if !it.Role.Valid() {
		e := Overflow(ItemLayout.Name, "role tag %d is not encodable", uint8(it.Role))
		e.Field = "role"
		return e
	}
	c := cursor{buf: dst}
	it.Note.marshal(&c)
	c.put(it.Owner[:])
	c.putByte(byte(it.Role))
	c.put(it.Nullifier[:])
	return nil
}

func (it *Item) UnmarshalABI(src []byte) error {
	if err := checkUnmarshal(ItemLayout, src); err != nil {
		return err
	}
	c := cursor{buf: src}
	var dec Item
	dec.Note.unmarshal(&c)
	c.get(dec.Owner[:])
	dec.Role = Role(c.getByte())
	c.get(dec.Nullifier[:])

	if !dec.Role.Valid() {
		return Malformed(ItemLayout.Name, "role", fmt.Errorf("tag %d not in {1,2}", uint8(dec.Role)))
	}
	*it = dec
	return nil
}

func (it Item) String() string {
	return fmt.Sprintf("Item{%s, role:%s, owner:%s, nullifier:%s}", it.Note, it.Role, it.Owner, it.Nullifier)
}
