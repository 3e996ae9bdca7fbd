package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	"golang.org/x/crypto/blake2b"
)

const transactionHashDomain = "tari.transaction.v1"

// UnsignedTransactionV1 is the transaction body that signatures are made over.
type UnsignedTransactionV1 struct {
	Network                Network               `json:"network"`
	FeeInstructions        []Instruction         `json:"fee_instructions"`
	Instructions           []Instruction         `json:"instructions"`
	Inputs                 []SubstateRequirement `json:"inputs"`
	MinEpoch               *Epoch                `json:"min_epoch"`
	MaxEpoch               *Epoch                `json:"max_epoch"`
	DryRun                 bool                  `json:"dry_run"`
	IsSealSignerAuthorized bool                  `json:"is_seal_signer_authorized"`
}

// NewUnsignedTransaction returns an empty transaction bound to network.
func NewUnsignedTransaction(network Network) UnsignedTransactionV1 {
	return UnsignedTransactionV1{
		Network:         network,
		FeeInstructions: []Instruction{},
		Instructions:    []Instruction{},
		Inputs:          []SubstateRequirement{},
	}
}

// Clone copies the top-level sequences and epoch bounds so the result does
// not share backing arrays with t.
func (t UnsignedTransactionV1) Clone() UnsignedTransactionV1 {
	c := t
	c.FeeInstructions = cloneOrEmpty(t.FeeInstructions)
	c.Instructions = cloneOrEmpty(t.Instructions)
	c.Inputs = cloneOrEmpty(t.Inputs)
	if t.MinEpoch != nil {
		e := *t.MinEpoch
		c.MinEpoch = &e
	}
	if t.MaxEpoch != nil {
		e := *t.MaxEpoch
		c.MaxEpoch = &e
	}
	return c
}

func cloneOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

func (t UnsignedTransactionV1) MarshalJSON() ([]byte, error) {
	type body UnsignedTransactionV1
	return json.Marshal(body(t.Clone()))
}

func (t *UnsignedTransactionV1) UnmarshalJSON(data []byte) error {
	var v struct {
		Network                Network               `json:"network"`
		FeeInstructions        []json.RawMessage     `json:"fee_instructions"`
		Instructions           []json.RawMessage     `json:"instructions"`
		Inputs                 []SubstateRequirement `json:"inputs"`
		MinEpoch               *Epoch                `json:"min_epoch"`
		MaxEpoch               *Epoch                `json:"max_epoch"`
		DryRun                 bool                  `json:"dry_run"`
		IsSealSignerAuthorized bool                  `json:"is_seal_signer_authorized"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	fee, err := decodeInstructions(v.FeeInstructions)
	if err != nil {
		return fmt.Errorf("fee_instructions: %w", err)
	}
	ins, err := decodeInstructions(v.Instructions)
	if err != nil {
		return fmt.Errorf("instructions: %w", err)
	}
	*t = UnsignedTransactionV1{
		Network:                v.Network,
		FeeInstructions:        fee,
		Instructions:           ins,
		Inputs:                 cloneOrEmpty(v.Inputs),
		MinEpoch:               v.MinEpoch,
		MaxEpoch:               v.MaxEpoch,
		DryRun:                 v.DryRun,
		IsSealSignerAuthorized: v.IsSealSignerAuthorized,
	}
	return nil
}

// Hash is blake2b-256 over a domain tag followed by the JSON encoding.
// It identifies the transaction locally and is the message signers sign.
func (t UnsignedTransactionV1) Hash() ([32]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode transaction: %w", err)
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, err
	}
	h.Write([]byte(transactionHashDomain))
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// HashHex returns Hash() hex encoded.
func (t UnsignedTransactionV1) HashHex() (string, error) {
	h, err := t.Hash()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h[:]), nil
}

type SchnorrSignature struct {
	PublicNonce string `json:"public_nonce"`
	Signature   string `json:"signature"`
}

type TransactionSignature struct {
	PublicKey string           `json:"public_key"`
	Signature SchnorrSignature `json:"signature"`
}

// Transaction pairs a finalized unsigned transaction with its signatures.
// Values are produced by NewTransaction (or decoded) and never modified.
type Transaction struct {
	unsigned   UnsignedTransactionV1
	signatures []TransactionSignature
}

func NewTransaction(unsigned UnsignedTransactionV1, signatures []TransactionSignature) Transaction {
	return Transaction{
		unsigned:   unsigned.Clone(),
		signatures: cloneOrEmpty(signatures),
	}
}

func (t Transaction) UnsignedTransaction() UnsignedTransactionV1 { return t.unsigned.Clone() }

func (t Transaction) Signatures() []TransactionSignature { return cloneOrEmpty(t.signatures) }

// ID returns the hex transaction hash.
func (t Transaction) ID() (string, error) { return t.unsigned.HashHex() }

type transactionJSON struct {
	Transaction UnsignedTransactionV1  `json:"transaction"`
	Signatures  []TransactionSignature `json:"signatures"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{Transaction: t.unsigned, Signatures: cloneOrEmpty(t.signatures)})
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var v transactionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = NewTransaction(v.Transaction, v.Signatures)
	return nil
}
