// Package prover produces and checks the PLONK proofs carried by
// transactions, packed into fixed-size proof blobs.
package prover

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/kysee/phoenix-abi/zk-abi/phoenix"
	"github.com/rs/zerolog"
)

// Curve is the curve proofs are built on. Its scalar field is the one value
// commitments live in.
const Curve = ecc.BLS12_381

var ErrTooManyNotes = errors.New("more openings than note slots")

// Opening is the secret behind one value commitment.
type Opening struct {
	Value          uint64
	BlindingFactor fr.Element
}

func (o *Opening) commitment() fr.Element {
	return phoenix.Commit(o.Value, &o.BlindingFactor)
}

// Keys holds the compiled circuit and its PLONK keys.
type Keys struct {
	ccs constraint.ConstraintSystem
	pk  plonk.ProvingKey
	vk  plonk.VerifyingKey
	log zerolog.Logger
}

type Option func(*Keys)

// WithLogger routes the solver logs of Prove to l.
func WithLogger(l zerolog.Logger) Option {
	return func(k *Keys) { k.log = l }
}

// Setup compiles OpeningCircuit and runs the PLONK setup.
// TODO: load an SRS from a ceremony instead of generating an unsafe one.
func Setup(opts ...Option) (*Keys, error) {
	var c OpeningCircuit
	ccs, err := frontend.Compile(Curve.ScalarField(), scs.NewBuilder, &c)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return nil, fmt.Errorf("srs: %w", err)
	}
	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return nil, fmt.Errorf("plonk setup: %w", err)
	}
	k := &Keys{ccs: ccs, pk: pk, vk: vk, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(k)
	}
	k.log.Debug().Int("constraints", ccs.GetNbConstraints()).Msg("plonk setup done")
	return k, nil
}

func bigOf(e *fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}

func assign(commitments []fr.Element, openings []Opening) *OpeningCircuit {
	var (
		a    OpeningCircuit
		zero Opening
		pad  = zero.commitment()
	)
	for i := range a.Commitments {
		a.Commitments[i] = bigOf(&pad)
		a.Values[i] = 0
		a.BlindingFactors[i] = 0
		if i < len(commitments) {
			a.Commitments[i] = bigOf(&commitments[i])
		}
		if i < len(openings) {
			a.Values[i] = openings[i].Value
			a.BlindingFactors[i] = bigOf(&openings[i].BlindingFactor)
		}
	}
	return &a
}

// Prove proves the openings, one per output note in order, and seals the
// proof into a blob of the given layout.
func (k *Keys) Prove(openings []Opening, layout abi.ProofLayout) (abi.Proof, error) {
	if len(openings) > abi.NoteMax {
		return nil, ErrTooManyNotes
	}
	commitments := make([]fr.Element, len(openings))
	for i := range openings {
		commitments[i] = openings[i].commitment()
	}
	wtn, err := frontend.NewWitness(assign(commitments, openings), Curve.ScalarField())
	if err != nil {
		return nil, err
	}
	proof, err := plonk.Prove(k.ccs, k.pk, wtn,
		backend.WithSolverOptions(solver.WithLogger(k.log)),
	)
	if err != nil {
		return nil, err
	}
	return Seal(proof, layout)
}

// Verify checks a sealed proof against the commitments of notes.
func (k *Keys) Verify(notes []phoenix.NoteVariant, blob abi.Proof) error {
	if len(notes) > abi.NoteMax {
		return ErrTooManyNotes
	}
	proof, err := Open(blob)
	if err != nil {
		return err
	}
	commitments := make([]fr.Element, len(notes))
	for i, n := range notes {
		commitments[i] = n.Header().ValueCommitment
	}
	pubWtn, err := frontend.NewWitness(assign(commitments, nil), Curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}
	return plonk.Verify(proof, k.vk, pubWtn)
}

// Check has the shape of a ledger proof check. Nullifiers are not bound by
// OpeningCircuit.
func (k *Keys) Check(_ []phoenix.Nullifier, notes []phoenix.NoteVariant, blob abi.Proof) error {
	return k.Verify(notes, blob)
}

// Seal serializes a proof and pads it to the layout size.
func Seal(proof plonk.Proof, layout abi.ProofLayout) (abi.Proof, error) {
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, err
	}
	return layout.Encode(buf.Bytes())
}

// Open reads a proof back from a sealed blob. The padding after the proof
// is ignored.
func Open(blob abi.Proof) (plonk.Proof, error) {
	proof := plonk.NewProof(Curve)
	if _, err := proof.ReadFrom(bytes.NewReader(blob)); err != nil {
		return nil, abi.Malformed("Proof", "", err)
	}
	return proof, nil
}
