package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type (
	ComponentAddress         string
	ResourceAddress          string
	PublishedTemplateAddress string
	SubstateID               string
)

// ConfidentialClaim and ConfidentialWithdrawProof are produced by the wallet's
// proving subsystem; they are placed into instructions verbatim.
type (
	ConfidentialClaim         = json.RawMessage
	ConfidentialWithdrawProof = json.RawMessage
)

// AllocatableAddressType 可预分配地址的类型
type AllocatableAddressType string

const (
	AllocatableComponent AllocatableAddressType = "Component"
	AllocatableResource  AllocatableAddressType = "Resource"
)

// WorkspaceOffsetID points at a workspace slot, optionally at a positional
// offset inside the value stored there.
type WorkspaceOffsetID struct {
	ID     uint32  `json:"id"`
	Offset *uint32 `json:"offset"`
}

// SubstateRequirement declares a substate the transaction reads or consumes.
// A nil Version lets the network pick the latest version.
type SubstateRequirement struct {
	SubstateID SubstateID `json:"substate_id"`
	Version    *uint32    `json:"version"`
}

// Arg is an instruction argument: either a literal value or a workspace reference.
type Arg interface {
	isArg()
}

// LiteralArg is encoded as its bare JSON value.
type LiteralArg struct {
	Value any
}

func (LiteralArg) isArg() {}

func (a LiteralArg) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value)
}

// WorkspaceArg is encoded as {"Workspace": {"id": .., "offset": ..}}.
type WorkspaceArg struct {
	Workspace WorkspaceOffsetID `json:"Workspace"`
}

func (WorkspaceArg) isArg() {}

// ComponentCall is the target of a CallMethod instruction.
type ComponentCall interface {
	isComponentCall()
}

type CallAddress struct {
	Address ComponentAddress `json:"Address"`
}

func (CallAddress) isComponentCall() {}

type CallWorkspace struct {
	Workspace WorkspaceOffsetID `json:"Workspace"`
}

func (CallWorkspace) isComponentCall() {}

// DecodeArg decodes a single argument. Anything that is not exactly a
// {"Workspace": {...}} object is kept as a raw literal.
func DecodeArg(raw json.RawMessage) (Arg, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err == nil && len(tagged) == 1 {
		if body, ok := tagged["Workspace"]; ok {
			var id WorkspaceOffsetID
			if err := json.Unmarshal(body, &id); err != nil {
				return nil, fmt.Errorf("decode workspace arg: %w", err)
			}
			return WorkspaceArg{Workspace: id}, nil
		}
	}
	return LiteralArg{Value: json.RawMessage(bytes.Clone(raw))}, nil
}

func decodeArgs(raw []json.RawMessage) ([]Arg, error) {
	args := make([]Arg, 0, len(raw))
	for i, r := range raw {
		a, err := DecodeArg(r)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		args = append(args, a)
	}
	return args, nil
}

// DecodeComponentCall decodes {"Address": ".."} or {"Workspace": {..}}.
func DecodeComponentCall(raw json.RawMessage) (ComponentCall, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, fmt.Errorf("decode component call: %w", err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("decode component call: expected one variant, got %d", len(tagged))
	}
	if body, ok := tagged["Address"]; ok {
		var addr ComponentAddress
		if err := json.Unmarshal(body, &addr); err != nil {
			return nil, fmt.Errorf("decode component call: %w", err)
		}
		return CallAddress{Address: addr}, nil
	}
	if body, ok := tagged["Workspace"]; ok {
		var id WorkspaceOffsetID
		if err := json.Unmarshal(body, &id); err != nil {
			return nil, fmt.Errorf("decode component call: %w", err)
		}
		return CallWorkspace{Workspace: id}, nil
	}
	return nil, fmt.Errorf("decode component call: unknown variant")
}
