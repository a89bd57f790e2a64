package prover

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/kysee/phoenix-abi/zk-abi/abi"
)

// OpeningCircuit proves knowledge of the value and blinding factor behind
// each output commitment of a transaction. Unused slots hold the commitment
// to (0, 0).
type OpeningCircuit struct {
	Commitments     [abi.NoteMax]frontend.Variable `gnark:",public"`
	Values          [abi.NoteMax]frontend.Variable
	BlindingFactors [abi.NoteMax]frontend.Variable
}

func (c *OpeningCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	for i := range c.Commitments {
		// values are u64 on the wire
		api.ToBinary(c.Values[i], 64)

		h.Reset()
		h.Write(c.Values[i], c.BlindingFactors[i])
		api.AssertIsEqual(h.Sum(), c.Commitments[i])
	}
	return nil
}
