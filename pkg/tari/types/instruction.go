package types

import (
	"encoding/json"
	"fmt"
)

// Instruction is one step of a transaction's execution program. The set of
// variants is closed; each one encodes as an externally tagged JSON object.
type Instruction interface {
	isInstruction()
}

type CallFunction struct {
	Address  PublishedTemplateAddress `json:"address"`
	Function string                   `json:"function"`
	Args     []Arg                    `json:"args"`
}

type CallMethod struct {
	Call   ComponentCall `json:"call"`
	Method string        `json:"method"`
	Args   []Arg         `json:"args"`
}

// CreateAccount with nil OwnerRule / AccessRules uses the protocol defaults.
type CreateAccount struct {
	PublicKeyAddress string             `json:"public_key_address"`
	OwnerRule        json.RawMessage    `json:"owner_rule"`
	AccessRules      json.RawMessage    `json:"access_rules"`
	WorkspaceID      *WorkspaceOffsetID `json:"workspace_id"`
}

type ClaimBurn struct {
	Claim ConfidentialClaim `json:"claim"`
}

type AllocateAddress struct {
	AllocatableType AllocatableAddressType `json:"allocatable_type"`
	WorkspaceID     uint32                 `json:"workspace_id"`
}

type AssertBucketContains struct {
	Key             WorkspaceOffsetID `json:"key"`
	ResourceAddress ResourceAddress   `json:"resource_address"`
	MinAmount       Amount            `json:"min_amount"`
}

type PutLastInstructionOutputOnWorkspace struct {
	Key uint32 `json:"key"`
}

type DropAllProofsInWorkspace struct{}

func (CallFunction) isInstruction()                        {}
func (CallMethod) isInstruction()                          {}
func (CreateAccount) isInstruction()                       {}
func (ClaimBurn) isInstruction()                           {}
func (AllocateAddress) isInstruction()                     {}
func (AssertBucketContains) isInstruction()                {}
func (PutLastInstructionOutputOnWorkspace) isInstruction() {}
func (DropAllProofsInWorkspace) isInstruction()            {}

// InstructionName returns the variant tag used on the wire.
func InstructionName(i Instruction) string {
	switch i.(type) {
	case CallFunction:
		return "CallFunction"
	case CallMethod:
		return "CallMethod"
	case CreateAccount:
		return "CreateAccount"
	case ClaimBurn:
		return "ClaimBurn"
	case AllocateAddress:
		return "AllocateAddress"
	case AssertBucketContains:
		return "AssertBucketContains"
	case PutLastInstructionOutputOnWorkspace:
		return "PutLastInstructionOutputOnWorkspace"
	case DropAllProofsInWorkspace:
		return "DropAllProofsInWorkspace"
	default:
		return fmt.Sprintf("%T", i)
	}
}

func tagged(name string, body any) ([]byte, error) {
	return json.Marshal(map[string]any{name: body})
}

func nonNilArgs(args []Arg) []Arg {
	if args == nil {
		return []Arg{}
	}
	return args
}

func (i CallFunction) MarshalJSON() ([]byte, error) {
	type body CallFunction
	i.Args = nonNilArgs(i.Args)
	return tagged("CallFunction", body(i))
}

func (i CallMethod) MarshalJSON() ([]byte, error) {
	type body CallMethod
	i.Args = nonNilArgs(i.Args)
	return tagged("CallMethod", body(i))
}

func (i CreateAccount) MarshalJSON() ([]byte, error) {
	type body CreateAccount
	return tagged("CreateAccount", body(i))
}

func (i ClaimBurn) MarshalJSON() ([]byte, error) {
	type body ClaimBurn
	return tagged("ClaimBurn", body(i))
}

func (i AllocateAddress) MarshalJSON() ([]byte, error) {
	type body AllocateAddress
	return tagged("AllocateAddress", body(i))
}

func (i AssertBucketContains) MarshalJSON() ([]byte, error) {
	type body AssertBucketContains
	return tagged("AssertBucketContains", body(i))
}

func (i PutLastInstructionOutputOnWorkspace) MarshalJSON() ([]byte, error) {
	type body PutLastInstructionOutputOnWorkspace
	return tagged("PutLastInstructionOutputOnWorkspace", body(i))
}

func (DropAllProofsInWorkspace) MarshalJSON() ([]byte, error) {
	return json.Marshal("DropAllProofsInWorkspace")
}

// DecodeInstruction decodes one externally tagged instruction.
func DecodeInstruction(raw json.RawMessage) (Instruction, error) {
	var unit string
	if err := json.Unmarshal(raw, &unit); err == nil {
		if unit == "DropAllProofsInWorkspace" {
			return DropAllProofsInWorkspace{}, nil
		}
		return nil, fmt.Errorf("unknown instruction %q", unit)
	}

	var variants map[string]json.RawMessage
	if err := json.Unmarshal(raw, &variants); err != nil {
		return nil, fmt.Errorf("decode instruction: %w", err)
	}
	if len(variants) != 1 {
		return nil, fmt.Errorf("decode instruction: expected one variant, got %d", len(variants))
	}

	for name, body := range variants {
		switch name {
		case "CallFunction":
			var v struct {
				Address  PublishedTemplateAddress `json:"address"`
				Function string                   `json:"function"`
				Args     []json.RawMessage        `json:"args"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			args, err := decodeArgs(v.Args)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return CallFunction{Address: v.Address, Function: v.Function, Args: args}, nil

		case "CallMethod":
			var v struct {
				Call   json.RawMessage   `json:"call"`
				Method string            `json:"method"`
				Args   []json.RawMessage `json:"args"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			call, err := DecodeComponentCall(v.Call)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			args, err := decodeArgs(v.Args)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return CallMethod{Call: call, Method: v.Method, Args: args}, nil

		case "CreateAccount":
			var v CreateAccount
			if err := json.Unmarshal(body, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			v.OwnerRule = nullToNil(v.OwnerRule)
			v.AccessRules = nullToNil(v.AccessRules)
			return v, nil

		case "ClaimBurn":
			var v ClaimBurn
			if err := json.Unmarshal(body, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return v, nil

		case "AllocateAddress":
			var v AllocateAddress
			if err := json.Unmarshal(body, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return v, nil

		case "AssertBucketContains":
			var v AssertBucketContains
			if err := json.Unmarshal(body, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return v, nil

		case "PutLastInstructionOutputOnWorkspace":
			var v PutLastInstructionOutputOnWorkspace
			if err := json.Unmarshal(body, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return v, nil

		default:
			return nil, fmt.Errorf("unknown instruction %q", name)
		}
	}
	panic("unreachable")
}

func decodeInstructions(raw []json.RawMessage) ([]Instruction, error) {
	out := make([]Instruction, 0, len(raw))
	for i, r := range raw {
		ins, err := DecodeInstruction(r)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		out = append(out, ins)
	}
	return out, nil
}

func nullToNil(m json.RawMessage) json.RawMessage {
	if string(m) == "null" {
		return nil
	}
	return m
}
