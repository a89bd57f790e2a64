// Package ledger is an in-memory Host: it keeps the spent nullifiers, the
// note commitment tree and the credited balances.
package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/kysee/phoenix-abi/utils"
	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/kysee/phoenix-abi/zk-abi/convert"
	"github.com/kysee/phoenix-abi/zk-abi/crypto"
	"github.com/kysee/phoenix-abi/zk-abi/phoenix"
	"github.com/rs/zerolog"
)

// ProofCheck validates the proof of a transaction against its public data.
type ProofCheck func(nullifiers []phoenix.Nullifier, notes []phoenix.NoteVariant, proof abi.Proof) error

var (
	ErrSpent      = errors.New("nullifier already spent")
	ErrDuplicate  = errors.New("nullifier repeated in transaction")
	ErrNoOutputs  = errors.New("transaction has no outputs")
	ErrGap        = errors.New("record after zero padding")
	ErrNotInTree  = errors.New("note position not in tree")
	ErrBadOpening = errors.New("merkle opening does not verify")
	ErrProofSize  = errors.New("proof size does not match the layout")
)

type Ledger struct {
	mu  sync.Mutex
	log zerolog.Logger

	checkProof  ProofCheck
	proofLayout abi.ProofLayout

	spent    map[abi.Nullifier]struct{}
	tree     *merkletree.Tree
	leaves   [][]byte
	notes    []phoenix.NoteVariant
	roots    map[fr.Element]struct{}
	credits  map[abi.PublicKey]int64
	viewKeys map[abi.PublicKey]phoenix.ViewKey
}

type Option func(*Ledger)

func WithLogger(l zerolog.Logger) Option {
	return func(lg *Ledger) { lg.log = l }
}

// WithProofCheck makes Verify and Store run check on every transaction.
// Without it proofs are accepted unread.
func WithProofCheck(check ProofCheck) Option {
	return func(lg *Ledger) { lg.checkProof = check }
}

// WithProofLayout sets the proof size Verify and Store accept. It defaults to
// abi.DefaultProofLayout.
func WithProofLayout(l abi.ProofLayout) Option {
	return func(lg *Ledger) { lg.proofLayout = l }
}

func New(opts ...Option) *Ledger {
	lg := &Ledger{
		log:         zerolog.Nop(),
		proofLayout: abi.DefaultProofLayout,
		spent:       make(map[abi.Nullifier]struct{}),
		tree:        merkletree.New(utils.DefaultHasher()),
		roots:       make(map[fr.Element]struct{}),
		credits:     make(map[abi.PublicKey]int64),
		viewKeys:    make(map[abi.PublicKey]phoenix.ViewKey),
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// used returns how many leading records of recs are set. Zero records are
// padding and must all trail.
func used[T comparable](recs []T) (int, error) {
	var zero T
	n := len(recs)
	for i, r := range recs {
		if r == zero {
			n = i
			break
		}
	}
	for i := n; i < len(recs); i++ {
		if recs[i] != zero {
			return 0, fmt.Errorf("slot %d: %w", i, ErrGap)
		}
	}
	return n, nil
}

type transaction struct {
	recs       []abi.Nullifier
	nullifiers []phoenix.Nullifier
	notes      []phoenix.NoteVariant
}

func (lg *Ledger) decode(nfBuf *abi.NullifiersBuffer, notesBuf *abi.NotesBuffer) (*transaction, error) {
	nfRecs, err := nfBuf.Decode()
	if err != nil {
		return nil, err
	}
	n, err := used(nfRecs)
	if err != nil {
		return nil, fmt.Errorf("nullifiers: %w", err)
	}
	nfRecs = nfRecs[:n]
	nullifiers, err := convert.RaiseNullifiers(nfRecs)
	if err != nil {
		return nil, err
	}

	noteRecs, err := notesBuf.Decode()
	if err != nil {
		return nil, err
	}
	if n, err = used(noteRecs); err != nil {
		return nil, fmt.Errorf("notes: %w", err)
	}
	notes, err := convert.RaiseNotes(noteRecs[:n])
	if err != nil {
		return nil, err
	}
	return &transaction{recs: nfRecs, nullifiers: nullifiers, notes: notes}, nil
}

// check needs lg.mu held.
func (lg *Ledger) check(tx *transaction, proof abi.Proof) error {
	if len(proof) != lg.proofLayout.Size {
		return fmt.Errorf("%d bytes, want %d: %w", len(proof), lg.proofLayout.Size, ErrProofSize)
	}
	if len(tx.notes) == 0 {
		return ErrNoOutputs
	}
	seen := make(map[abi.Nullifier]struct{}, len(tx.recs))
	for i, nf := range tx.recs {
		if _, ok := lg.spent[nf]; ok {
			return fmt.Errorf("nullifier %d: %w", i, ErrSpent)
		}
		if _, ok := seen[nf]; ok {
			return fmt.Errorf("nullifier %d: %w", i, ErrDuplicate)
		}
		seen[nf] = struct{}{}
	}
	if lg.checkProof != nil {
		if err := lg.checkProof(tx.nullifiers, tx.notes, proof); err != nil {
			return fmt.Errorf("proof: %w", err)
		}
	}
	return nil
}

// Verify checks a transaction without changing the ledger.
func (lg *Ledger) Verify(nullifiers *abi.NullifiersBuffer, notes *abi.NotesBuffer, proof abi.Proof) bool {
	tx, err := lg.decode(nullifiers, notes)
	if err != nil {
		lg.log.Info().Err(err).Msg("verify: malformed transaction")
		return false
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if err := lg.check(tx, proof); err != nil {
		lg.log.Info().Err(err).Msg("verify: rejected")
		return false
	}
	return true
}

// Store verifies a transaction and applies it: the nullifiers are marked
// spent and each output note is appended to the tree at the next position.
// A rejected transaction leaves the ledger untouched.
func (lg *Ledger) Store(nullifiers *abi.NullifiersBuffer, notes *abi.NotesBuffer, proof abi.Proof) bool {
	tx, err := lg.decode(nullifiers, notes)
	if err != nil {
		lg.log.Info().Err(err).Msg("store: malformed transaction")
		return false
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if err := lg.check(tx, proof); err != nil {
		lg.log.Info().Err(err).Msg("store: rejected")
		return false
	}

	for _, nf := range tx.recs {
		lg.spent[nf] = struct{}{}
	}
	for _, n := range tx.notes {
		lg.addNote(n)
	}
	lg.log.Debug().
		Int("nullifiers", len(tx.recs)).
		Int("notes", len(tx.notes)).
		Int("leaves", len(lg.leaves)).
		Msg("stored transaction")
	return true
}

// addNote needs lg.mu held.
func (lg *Ledger) addNote(n phoenix.NoteVariant) {
	n.Header().Pos = uint64(len(lg.leaves))
	rec := convert.LowerNote(n)
	var buf [abi.NoteSize]byte
	if err := rec.MarshalABI(buf[:]); err != nil {
		panic(err)
	}

	leaf := utils.DefaultHashSum(buf[:])
	lg.leaves = append(lg.leaves, leaf)
	lg.notes = append(lg.notes, n)
	lg.tree.Push(leaf)

	var root fr.Element
	root.SetBytes(lg.tree.Root())
	lg.roots[root] = struct{}{}
}

// Credit adds value to the balance of pk. Only positive values are accepted.
func (lg *Ledger) Credit(value int32, pk *abi.PublicKey) bool {
	if value <= 0 {
		return false
	}
	if _, err := convert.RaisePublicKey(*pk); err != nil {
		lg.log.Info().Err(err).Msg("credit: malformed public key")
		return false
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.credits[*pk] += int64(value)
	return true
}

func (lg *Ledger) Balance(pk *abi.PublicKey) int64 {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.credits[*pk]
}

// IsTransparent reports whether the buffer holds at least one note and all
// of its notes are transparent.
func (lg *Ledger) IsTransparent(notes *abi.NotesBuffer) bool {
	ns, err := lg.raiseNotes(notes)
	if err != nil || len(ns) == 0 {
		return false
	}
	for _, n := range ns {
		if n.Kind() != phoenix.KindTransparent {
			return false
		}
	}
	return true
}

// RegisterViewKey lets IsAddressedTo recognize notes sent to the public key
// behind vk.
func (lg *Ledger) RegisterViewKey(vk phoenix.ViewKey) abi.PublicKey {
	a := crypto.MulBase(vk.A)
	pk := abi.NewPublicKey(crypto.EncodePoint(&a), crypto.EncodePoint(&vk.B))
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.viewKeys[pk] = vk
	return pk
}

// IsAddressedTo reports whether any note in the buffer was sent to pk. Only
// keys registered with RegisterViewKey can be recognized.
func (lg *Ledger) IsAddressedTo(notes *abi.NotesBuffer, pk *abi.PublicKey) bool {
	lg.mu.Lock()
	vk, ok := lg.viewKeys[*pk]
	lg.mu.Unlock()
	if !ok {
		return false
	}
	ns, err := lg.raiseNotes(notes)
	if err != nil {
		return false
	}
	for _, n := range ns {
		if vk.Owns(n) {
			return true
		}
	}
	return false
}

func (lg *Ledger) raiseNotes(buf *abi.NotesBuffer) ([]phoenix.NoteVariant, error) {
	recs, err := buf.Decode()
	if err != nil {
		return nil, err
	}
	n, err := used(recs)
	if err != nil {
		return nil, err
	}
	ns, err := convert.RaiseNotes(recs[:n])
	if err != nil {
		lg.log.Info().Err(err).Msg("malformed notes")
		return nil, err
	}
	return ns, nil
}

func (lg *Ledger) IsSpent(nf phoenix.Nullifier) bool {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	_, ok := lg.spent[convert.LowerNullifier(&nf)]
	return ok
}

// Note returns the note stored at pos.
func (lg *Ledger) Note(pos uint64) (phoenix.NoteVariant, bool) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if pos >= uint64(len(lg.notes)) {
		return nil, false
	}
	return lg.notes[pos], true
}

// Root is the current root of the note tree.
func (lg *Ledger) Root() fr.Element {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	var root fr.Element
	if len(lg.leaves) > 0 {
		root.SetBytes(lg.tree.Root())
	}
	return root
}

// KnownRoot reports whether root was the tree root after some Store.
func (lg *Ledger) KnownRoot(root fr.Element) bool {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	_, ok := lg.roots[root]
	return ok
}

// Opening is a merkle path from a stored note to a tree root.
type Opening struct {
	Root      []byte
	Path      [][]byte
	Pos       uint64
	NumLeaves uint64
}

// Open builds the merkle opening of the note at pos against the current root.
func (lg *Ledger) Open(pos uint64) (*Opening, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if pos >= uint64(len(lg.leaves)) {
		return nil, ErrNotInTree
	}
	var buf bytes.Buffer
	for _, l := range lg.leaves {
		buf.Write(l)
	}
	root, path, numLeaves, err := merkletree.BuildReaderProof(&buf, utils.DefaultHasher(), utils.DefaultHasher().Size(), pos)
	if err != nil {
		return nil, err
	}
	return &Opening{Root: root, Path: path, Pos: pos, NumLeaves: numLeaves}, nil
}

// VerifyOpening checks o against the tree and against the known roots.
func (lg *Ledger) VerifyOpening(o *Opening) error {
	var root fr.Element
	root.SetBytes(o.Root)
	if !lg.KnownRoot(root) {
		return fmt.Errorf("root %s: %w", root.String(), ErrBadOpening)
	}
	if !merkletree.VerifyProof(utils.DefaultHasher(), o.Root, o.Path, o.Pos, o.NumLeaves) {
		return ErrBadOpening
	}
	return nil
}
