package phoenix

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Nullifier marks a note as spent without revealing which note it was.
type Nullifier struct {
	Scalar fr.Element
}

func (n *Nullifier) Equal(other *Nullifier) bool {
	return n.Scalar.Equal(&other.Scalar)
}

func (n Nullifier) String() string {
	return "Nullifier(" + n.Scalar.String() + ")"
}

// TransactionInput is the public part of a spent note.
type TransactionInput struct {
	Nullifier  Nullifier
	MerkleRoot fr.Element
}

func (in *TransactionInput) Equal(other *TransactionInput) bool {
	return in.Nullifier.Equal(&other.Nullifier) && in.MerkleRoot.Equal(&other.MerkleRoot)
}

type Role uint8

const (
	RoleInput Role = iota + 1
	RoleOutput
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// TransactionItem is a note seen from one side of a transaction: spent
// (RoleInput, with its nullifier) or created (RoleOutput).
type TransactionItem struct {
	Note      NoteVariant
	Owner     PublicKey
	Role      Role
	Nullifier Nullifier
}

func (it *TransactionItem) Equal(other *TransactionItem) bool {
	return it.Role == other.Role &&
		NotesEqual(it.Note, other.Note) &&
		it.Owner.Equal(&other.Owner) &&
		it.Nullifier.Equal(&other.Nullifier)
}

// Transaction is what a client hands to the host: the inputs it spends, the
// notes it creates and the proof tying them together.
type Transaction struct {
	Inputs  []TransactionInput
	Outputs []NoteVariant
	Proof   []byte
}

// Nullifiers lists the nullifiers of the transaction inputs in order.
func (tx *Transaction) Nullifiers() []Nullifier {
	ns := make([]Nullifier, len(tx.Inputs))
	for i := range tx.Inputs {
		ns[i] = tx.Inputs[i].Nullifier
	}
	return ns
}
