package host

import (
	"math"

	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/kysee/phoenix-abi/zk-abi/convert"
	"github.com/kysee/phoenix-abi/zk-abi/phoenix"
	"github.com/rs/zerolog"
)

// Client lowers domain values, packs them and hands them to a Host. A host
// answering false surfaces as ErrBoundaryCallFailure; nothing is retried.
type Client struct {
	host        Host
	proofLayout abi.ProofLayout
	log         zerolog.Logger
}

func NewClient(h Host, opts ...Option) *Client {
	o := newOptions(opts)
	return &Client{
		host:        h,
		proofLayout: o.proofLayout,
		log:         o.log.With().Str("component", "host-client").Logger(),
	}
}

func (c *Client) ProofLayout() abi.ProofLayout {
	return c.proofLayout
}

func (c *Client) txBuffers(tx *phoenix.Transaction) (*abi.NullifiersBuffer, *abi.NotesBuffer, abi.Proof, error) {
	nullifiers, err := convert.EncodeNullifiers(tx.Nullifiers())
	if err != nil {
		return nil, nil, nil, err
	}
	notes, err := convert.EncodeNotes(tx.Outputs)
	if err != nil {
		return nil, nil, nil, err
	}
	proof, err := c.proofLayout.Encode(tx.Proof)
	if err != nil {
		return nil, nil, nil, err
	}
	return nullifiers, notes, proof, nil
}

// Store asks the host to persist the nullifiers and output notes of tx.
func (c *Client) Store(tx *phoenix.Transaction) error {
	nullifiers, notes, proof, err := c.txBuffers(tx)
	if err != nil {
		return err
	}
	if !c.host.Store(nullifiers, notes, proof) {
		c.log.Debug().Int("inputs", len(tx.Inputs)).Int("outputs", len(tx.Outputs)).Msg("store rejected")
		return abi.BoundaryFailure("store")
	}
	return nil
}

// Verify asks the host to check tx without persisting it.
func (c *Client) Verify(tx *phoenix.Transaction) error {
	nullifiers, notes, proof, err := c.txBuffers(tx)
	if err != nil {
		return err
	}
	if !c.host.Verify(nullifiers, notes, proof) {
		c.log.Debug().Int("inputs", len(tx.Inputs)).Int("outputs", len(tx.Outputs)).Msg("verify rejected")
		return abi.BoundaryFailure("verify")
	}
	return nil
}

// Credit assigns value to pk. The host takes a signed 32-bit value.
func (c *Client) Credit(value uint64, pk *phoenix.PublicKey) error {
	if value > math.MaxInt32 {
		return abi.Overflow("Credit", "value %d exceeds %d", value, math.MaxInt32)
	}
	rec := convert.LowerPublicKey(pk)
	if !c.host.Credit(int32(value), &rec) {
		c.log.Debug().Uint64("value", value).Msg("credit rejected")
		return abi.BoundaryFailure("credit")
	}
	return nil
}

// IsTransparent reports what the host answers for the packed notes.
func (c *Client) IsTransparent(notes []phoenix.NoteVariant) (bool, error) {
	buf, err := convert.EncodeNotes(notes)
	if err != nil {
		return false, err
	}
	return c.host.IsTransparent(buf), nil
}

func (c *Client) IsAddressedTo(notes []phoenix.NoteVariant, pk *phoenix.PublicKey) (bool, error) {
	buf, err := convert.EncodeNotes(notes)
	if err != nil {
		return false, err
	}
	rec := convert.LowerPublicKey(pk)
	return c.host.IsAddressedTo(buf, &rec), nil
}
