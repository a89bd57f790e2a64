// Package host crosses the boundary: it defines the host capability that
// consumes fixed-size buffers, a client that prepares those buffers from
// domain values, and the wazero module exposing a Host to wasm guests.
package host

import (
	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/rs/zerolog"
)

// Host consumes boundary buffers. Buffers are read only and exactly
// Max*Size bytes; proofs are exactly the configured proof size.
type Host interface {
	Store(nullifiers *abi.NullifiersBuffer, notes *abi.NotesBuffer, proof abi.Proof) bool
	Verify(nullifiers *abi.NullifiersBuffer, notes *abi.NotesBuffer, proof abi.Proof) bool
	Credit(value int32, pk *abi.PublicKey) bool
	IsTransparent(notes *abi.NotesBuffer) bool
	IsAddressedTo(notes *abi.NotesBuffer, pk *abi.PublicKey) bool
}

type options struct {
	log         zerolog.Logger
	proofLayout abi.ProofLayout
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithProofLayout(l abi.ProofLayout) Option {
	return func(o *options) { o.proofLayout = l }
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop(), proofLayout: abi.DefaultProofLayout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
