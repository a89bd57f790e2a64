package abi

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Proof sizes used by the proving systems seen so far. The size is owned by
// the proving system, so the codec only ever works through a ProofLayout.
const (
	ProofSizeLegacy = 600
	ProofSizePlonk  = 1097
)

// DefaultProofLayout matches the current PLONK proofs.
var DefaultProofLayout = ProofLayout{Size: ProofSizePlonk}

// Proof is an opaque proof blob of exactly ProofLayout.Size bytes.
type Proof []byte

func (p Proof) String() string {
	return "Proof(" + hexutil.Encode(p) + ")"
}

// ProofLayout fixes the size of the proof buffer crossing the boundary.
type ProofLayout struct {
	Size int
}

func (l ProofLayout) Layout() Layout {
	return Layout{Name: "Proof", Size: l.Size, Max: 1}
}

// Encode copies blob into a zero-padded proof buffer.
func (l ProofLayout) Encode(blob []byte) (Proof, error) {
	if l.Size <= 0 {
		return nil, Overflow("Proof", "proof layout has no size")
	}
	if len(blob) > l.Size {
		return nil, Overflow("Proof", "proof is %d bytes, layout allows %d", len(blob), l.Size)
	}
	p := make(Proof, l.Size)
	copy(p, blob)
	return p, nil
}

// Decode takes a proof buffer back without interpreting it.
func (l ProofLayout) Decode(buf []byte) (Proof, error) {
	if len(buf) < l.Size {
		return nil, Truncated("Proof", l.Size, len(buf))
	}
	if len(buf) > l.Size {
		return nil, newError(KindDecodingMalformed, "Proof", "buffer is %d bytes, layout needs %d", len(buf), l.Size)
	}
	p := make(Proof, l.Size)
	copy(p, buf)
	return p, nil
}

// Empty returns the all-zero proof for the layout.
func (l ProofLayout) Empty() Proof {
	return make(Proof, l.Size)
}
