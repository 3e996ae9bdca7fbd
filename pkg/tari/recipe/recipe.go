// Package recipe describes transactions declaratively, in YAML or JSON, and
// replays them on a builder.
//
//	network: igor
//	fee:
//	  - op: pay_fee
//	    component: component_8a3f...
//	    max_fee: "0.002"
//	steps:
//	  - op: call_method
//	    component: component_8a3f...
//	    method: withdraw
//	    args: [resource_01ab..., {amount: "10"}]
//	  - op: save_var
//	    name: bucket
//	  - op: call_method
//	    component: component_77c2...
//	    method: deposit
//	    args: [{workspace: bucket}]
package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tari-sdk/pkg/crypto_util"
	"tari-sdk/pkg/tari/builder"
	"tari-sdk/pkg/tari/types"
	"tari-sdk/pkg/validator"

	"gopkg.in/yaml.v3"
)

var ErrInvalidRecipe = errors.New("invalid recipe")

const (
	OpCallFunction         = "call_function"
	OpCallMethod           = "call_method"
	OpCreateAccount        = "create_account"
	OpCreateProof          = "create_proof"
	OpClaimBurn            = "claim_burn"
	OpAllocateAddress      = "allocate_address"
	OpAssertBucketContains = "assert_bucket_contains"
	OpSaveVar              = "save_var"
	OpDropAllProofs        = "drop_all_proofs"
	OpPayFee               = "pay_fee"
	OpPayFeeConfidential   = "pay_fee_confidential"
)

type Recipe struct {
	// Network 名称或数字，为空时使用调用方给定的默认网络
	Network              string                      `yaml:"network,omitempty" json:"network,omitempty"`
	MinEpoch             *types.Epoch                `yaml:"min_epoch,omitempty" json:"min_epoch,omitempty"`
	MaxEpoch             *types.Epoch                `yaml:"max_epoch,omitempty" json:"max_epoch,omitempty"`
	DryRun               bool                        `yaml:"dry_run,omitempty" json:"dry_run,omitempty"`
	SealSignerAuthorized bool                        `yaml:"seal_signer_authorized,omitempty" json:"seal_signer_authorized,omitempty"`
	Inputs               []types.SubstateRequirement `yaml:"inputs,omitempty" json:"inputs,omitempty" validate:"dive"`
	Fee                  []Step                      `yaml:"fee,omitempty" json:"fee,omitempty" validate:"dive"`
	Steps                []Step                      `yaml:"steps" json:"steps" validate:"required,min=1,dive"`
}

// Step is one operation. Only the fields its Op needs are read.
type Step struct {
	Op string `yaml:"op" json:"op" validate:"required,oneof=call_function call_method create_account create_proof claim_burn allocate_address assert_bucket_contains save_var drop_all_proofs pay_fee pay_fee_confidential"`

	Template  string `yaml:"template,omitempty" json:"template,omitempty"`
	Function  string `yaml:"function,omitempty" json:"function,omitempty"`
	Component string `yaml:"component,omitempty" json:"component,omitempty"`
	Workspace string `yaml:"workspace,omitempty" json:"workspace,omitempty"`
	Method    string `yaml:"method,omitempty" json:"method,omitempty"`
	Args      []any  `yaml:"args,omitempty" json:"args,omitempty"`

	PublicKey   string `yaml:"public_key,omitempty" json:"public_key,omitempty"`
	Resource    string `yaml:"resource,omitempty" json:"resource,omitempty"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	AddressType string `yaml:"address_type,omitempty" json:"address_type,omitempty" validate:"omitempty,oneof=Component Resource"`
	MinAmount   string `yaml:"min_amount,omitempty" json:"min_amount,omitempty"`
	MaxFee      string `yaml:"max_fee,omitempty" json:"max_fee,omitempty"`
	Claim       any    `yaml:"claim,omitempty" json:"claim,omitempty"`
	Proof       any    `yaml:"proof,omitempty" json:"proof,omitempty"`
}

// Load reads a recipe file. Files ending in .json are decoded as JSON,
// anything else as YAML.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// Parse sniffs the format: a document starting with '{' is JSON.
func Parse(data []byte) (*Recipe, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (*Recipe, error) {
	var r Recipe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	return &r, r.Validate()
}

// ParseJSON keeps numbers as json.Number so large integers survive.
func ParseJSON(data []byte) (*Recipe, error) {
	var r Recipe
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	return &r, r.Validate()
}

// Validate checks the structure of r and the fields each step's op needs.
func (r *Recipe) Validate() error {
	if err := validator.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	if r.MinEpoch != nil && r.MaxEpoch != nil && *r.MaxEpoch < *r.MinEpoch {
		return fmt.Errorf("%w: max_epoch %d is before min_epoch %d", ErrInvalidRecipe, *r.MaxEpoch, *r.MinEpoch)
	}
	if r.Network != "" {
		if _, err := types.ParseNetwork(r.Network); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
		}
	}
	for i, s := range r.Fee {
		if err := s.check(); err != nil {
			return fmt.Errorf("%w: fee[%d]: %v", ErrInvalidRecipe, i, err)
		}
	}
	for i, s := range r.Steps {
		if err := s.check(); err != nil {
			return fmt.Errorf("%w: steps[%d]: %v", ErrInvalidRecipe, i, err)
		}
	}
	return nil
}

func (s Step) check() error {
	need := func(fields ...string) error {
		values := map[string]string{
			"template":     s.Template,
			"function":     s.Function,
			"component":    s.Component,
			"method":       s.Method,
			"public_key":   s.PublicKey,
			"resource":     s.Resource,
			"name":         s.Name,
			"address_type": s.AddressType,
			"min_amount":   s.MinAmount,
			"max_fee":      s.MaxFee,
			"workspace":    s.Workspace,
		}
		for _, f := range fields {
			if values[f] == "" {
				return fmt.Errorf("%s requires %s", s.Op, f)
			}
		}
		return nil
	}

	switch s.Op {
	case OpCallFunction:
		return need("template", "function")
	case OpCallMethod:
		if (s.Component == "") == (s.Workspace == "") {
			return fmt.Errorf("%s requires exactly one of component or workspace", s.Op)
		}
		return need("method")
	case OpCreateAccount:
		return need("public_key")
	case OpCreateProof:
		return need("component", "resource")
	case OpClaimBurn:
		if s.Claim == nil {
			return fmt.Errorf("%s requires claim", s.Op)
		}
	case OpAllocateAddress:
		return need("address_type", "name")
	case OpAssertBucketContains:
		if err := need("workspace", "resource", "min_amount"); err != nil {
			return err
		}
		_, err := types.ParseXTR(s.MinAmount)
		return err
	case OpSaveVar:
		return need("name")
	case OpPayFee:
		if err := need("component", "max_fee"); err != nil {
			return err
		}
		_, err := types.ParseXTR(s.MaxFee)
		return err
	case OpPayFeeConfidential:
		if s.Proof == nil {
			return fmt.Errorf("%s requires proof", s.Op)
		}
		return need("component")
	}
	return nil
}

// Digest 返回配方的 blake3 摘要，相同内容的配方摘要相同，用作缓存键
func (r *Recipe) Digest() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return crypto_util.CalculateBlake3(data), nil
}

// ResolveNetwork returns the recipe's network, or def when none is set.
func (r *Recipe) ResolveNetwork(def types.Network) (types.Network, error) {
	if r.Network == "" {
		return def, nil
	}
	return types.ParseNetwork(r.Network)
}

// NewBuilder returns a builder with the recipe applied.
func (r *Recipe) NewBuilder(def types.Network) (*builder.TransactionBuilder, error) {
	network, err := r.ResolveNetwork(def)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	b := builder.New(network)
	if err := r.Apply(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Build applies the recipe to a fresh builder and builds the transaction.
func (r *Recipe) Build(def types.Network) (types.Transaction, error) {
	b, err := r.NewBuilder(def)
	if err != nil {
		return types.Transaction{}, err
	}
	return b.Build()
}

// Apply replays the recipe on b. Fee steps run in an isolated fee builder,
// so they cannot see workspaces saved by main steps.
func (r *Recipe) Apply(b *builder.TransactionBuilder) error {
	if r.MinEpoch != nil {
		b.WithMinEpoch(*r.MinEpoch)
	}
	if r.MaxEpoch != nil {
		b.WithMaxEpoch(*r.MaxEpoch)
	}
	b.WithDryRun(r.DryRun).
		WithSealSignerAuthorized(r.SealSignerAuthorized).
		WithInputs(r.Inputs...)

	if len(r.Fee) > 0 {
		var stepErr error
		b.WithFeeInstructionsBuilder(func(fb *builder.TransactionBuilder) *builder.TransactionBuilder {
			for i, s := range r.Fee {
				if err := s.apply(fb); err != nil {
					stepErr = fmt.Errorf("fee[%d]: %w", i, err)
					break
				}
			}
			return fb
		})
		if stepErr != nil {
			return stepErr
		}
	}

	for i, s := range r.Steps {
		if err := s.apply(b); err != nil {
			return fmt.Errorf("steps[%d] %s: %w", i, s.Op, err)
		}
	}
	return b.Err()
}

func (s Step) apply(b *builder.TransactionBuilder) error {
	args, err := convertArgs(s.Args)
	if err != nil {
		return err
	}

	switch s.Op {
	case OpCallFunction:
		b.CallFunction(builder.FunctionDefinition{
			TemplateAddress: types.PublishedTemplateAddress(s.Template),
			FunctionName:    s.Function,
		}, args...)
	case OpCallMethod:
		target := builder.OnComponent(types.ComponentAddress(s.Component))
		if s.Workspace != "" {
			target = builder.OnWorkspace(s.Workspace)
		}
		b.CallMethod(builder.MethodDefinition{MethodName: s.Method, Target: target}, args...)
	case OpCreateAccount:
		b.CreateAccount(s.PublicKey, s.Workspace)
	case OpCreateProof:
		b.CreateProof(types.ComponentAddress(s.Component), types.ResourceAddress(s.Resource))
	case OpClaimBurn:
		claim, err := json.Marshal(s.Claim)
		if err != nil {
			return err
		}
		b.ClaimBurn(types.ConfidentialClaim(claim))
	case OpAllocateAddress:
		b.AllocateAddress(types.AllocatableAddressType(s.AddressType), s.Name)
	case OpAssertBucketContains:
		minAmount, err := types.ParseXTR(s.MinAmount)
		if err != nil {
			return err
		}
		b.AssertBucketContains(s.Workspace, types.ResourceAddress(s.Resource), minAmount)
	case OpSaveVar:
		b.SaveVar(s.Name)
	case OpDropAllProofs:
		b.DropAllProofsInWorkspace()
	case OpPayFee:
		maxFee, err := types.ParseXTR(s.MaxFee)
		if err != nil {
			return err
		}
		b.FeeTransactionPayFromComponent(types.ComponentAddress(s.Component), maxFee)
	case OpPayFeeConfidential:
		proof, err := json.Marshal(s.Proof)
		if err != nil {
			return err
		}
		b.FeeTransactionPayFromComponentConfidential(types.ComponentAddress(s.Component), types.ConfidentialWithdrawProof(proof))
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidRecipe, s.Op)
	}
	return b.Err()
}

// convertArgs maps {workspace: name} to a workspace reference and
// {amount: "1.5"} to microtari. Other values are passed through as literals.
func convertArgs(args []any) ([]any, error) {
	out := make([]any, 0, len(args))
	for _, arg := range args {
		m, ok := arg.(map[string]any)
		if !ok || len(m) != 1 {
			out = append(out, arg)
			continue
		}
		if name, ok := m["workspace"].(string); ok {
			out = append(out, builder.Workspace(name))
			continue
		}
		if v, ok := m["amount"]; ok {
			amount, err := types.ParseXTR(fmt.Sprint(v))
			if err != nil {
				return nil, err
			}
			out = append(out, amount)
			continue
		}
		out = append(out, arg)
	}
	return out, nil
}
