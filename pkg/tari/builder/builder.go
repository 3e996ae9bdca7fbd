// Package builder assembles unsigned Tari transactions.
//
// A TransactionBuilder accumulates fee instructions, instructions, inputs and
// epoch bounds. Workspace names used by SaveVar and AllocateAddress are turned
// into numeric ids immediately, so every instruction in the builder is fully
// resolved by the time it is appended.
//
// Builder methods chain. A step that cannot be applied (for example one that
// refers to a workspace name that was never saved) leaves the builder
// untouched and records the error, which is returned by Err, Build and
// BuildUnsignedTransaction:
//
//	tx, err := builder.New(types.Igor).
//		CallMethod(builder.MethodDefinition{
//			MethodName: "withdraw",
//			Target:     builder.OnComponent(account),
//		}, resource, types.Amount(1000)).
//		SaveVar("bucket").
//		CallMethod(builder.MethodDefinition{
//			MethodName: "deposit",
//			Target:     builder.OnComponent(recipient),
//		}, builder.Workspace("bucket")).
//		Build()
package builder

import (
	"errors"
	"fmt"

	"tari-sdk/pkg/tari/types"
)

var (
	ErrWorkspaceNotFound   = errors.New("workspace not found")
	ErrInvalidWorkspaceKey = errors.New("invalid workspace key")
	ErrInvalidMethodTarget = errors.New("invalid method target")
	ErrOffsetNotSupported  = errors.New("offset workspace keys are not supported for method calls")
)

const (
	methodCreateProofForResource = "create_proof_for_resource"
	methodPayFee                 = "pay_fee"
	methodPayFeeConfidential     = "pay_fee_confidential"
)

// Signer signs a transaction hash. Wallet adapters implement it.
type Signer interface {
	Sign(hash [32]byte) (types.TransactionSignature, error)
}

type TransactionBuilder struct {
	unsignedTransaction types.UnsignedTransactionV1
	signatures          []types.TransactionSignature
	workspaces          *workspaces
	errs                []error
}

// New returns an empty builder for network.
func New(network types.Network) *TransactionBuilder {
	return &TransactionBuilder{
		unsignedTransaction: types.NewUnsignedTransaction(network),
		workspaces:          newWorkspaces(),
	}
}

// Network returns the network the builder was created for.
func (b *TransactionBuilder) Network() types.Network {
	return b.unsignedTransaction.Network
}

// markDirty is called by every operation that changes the transaction
// content. Signatures are only valid for the exact content they were made
// over.
func (b *TransactionBuilder) markDirty() {
	b.signatures = nil
}

func (b *TransactionBuilder) record(err error) *TransactionBuilder {
	b.errs = append(b.errs, err)
	return b
}

// Err returns the errors recorded by failed steps, joined, or nil.
func (b *TransactionBuilder) Err() error {
	return errors.Join(b.errs...)
}

// resolveArgs converts call arguments. Workspace values are looked up,
// types.Arg values are used as is and everything else becomes a literal.
func (b *TransactionBuilder) resolveArgs(args []any) ([]types.Arg, error) {
	resolved := make([]types.Arg, 0, len(args))
	for _, arg := range args {
		switch arg := arg.(type) {
		case Workspace:
			id, err := b.workspaces.resolve(string(arg))
			if err != nil {
				return nil, err
			}
			resolved = append(resolved, types.WorkspaceArg{Workspace: id})
		case types.Arg:
			resolved = append(resolved, arg)
		default:
			resolved = append(resolved, types.LiteralArg{Value: arg})
		}
	}
	return resolved, nil
}

func (b *TransactionBuilder) CallFunction(fn FunctionDefinition, args ...any) *TransactionBuilder {
	resolved, err := b.resolveArgs(args)
	if err != nil {
		return b.record(fmt.Errorf("call function %s: %w", fn.FunctionName, err))
	}
	return b.AddInstruction(types.CallFunction{
		Address:  fn.TemplateAddress,
		Function: fn.FunctionName,
		Args:     resolved,
	})
}

func (b *TransactionBuilder) CallMethod(m MethodDefinition, args ...any) *TransactionBuilder {
	call, err := b.resolveTarget(m.Target)
	if err != nil {
		return b.record(fmt.Errorf("call method %s: %w", m.MethodName, err))
	}
	resolved, err := b.resolveArgs(args)
	if err != nil {
		return b.record(fmt.Errorf("call method %s: %w", m.MethodName, err))
	}
	return b.AddInstruction(types.CallMethod{
		Call:   call,
		Method: m.MethodName,
		Args:   resolved,
	})
}

func (b *TransactionBuilder) resolveTarget(target MethodTarget) (types.ComponentCall, error) {
	switch t := target.(type) {
	case componentTarget:
		return types.CallAddress{Address: types.ComponentAddress(t)}, nil
	case workspaceTarget:
		k, err := ParseWorkspaceKey(string(t))
		if err != nil {
			return nil, err
		}
		if k.Offset != nil {
			return nil, fmt.Errorf("%w: %q", ErrOffsetNotSupported, string(t))
		}
		id, err := b.workspaces.lookup(k.Name)
		if err != nil {
			return nil, err
		}
		return types.CallWorkspace{Workspace: types.WorkspaceOffsetID{ID: id}}, nil
	default:
		return nil, fmt.Errorf("%w: use OnComponent or OnWorkspace", ErrInvalidMethodTarget)
	}
}

// CreateAccount creates an account owned by ownerPublicKey. If
// workspaceBucket is not empty the bucket stored under that name is deposited
// into the new account.
func (b *TransactionBuilder) CreateAccount(ownerPublicKey string, workspaceBucket string) *TransactionBuilder {
	var workspaceID *types.WorkspaceOffsetID
	if workspaceBucket != "" {
		id, err := b.workspaces.resolve(workspaceBucket)
		if err != nil {
			return b.record(fmt.Errorf("create account: %w", err))
		}
		workspaceID = &id
	}
	return b.AddInstruction(types.CreateAccount{
		PublicKeyAddress: ownerPublicKey,
		WorkspaceID:      workspaceID,
	})
}

func (b *TransactionBuilder) CreateProof(account types.ComponentAddress, resource types.ResourceAddress) *TransactionBuilder {
	return b.AddInstruction(types.CallMethod{
		Call:   types.CallAddress{Address: account},
		Method: methodCreateProofForResource,
		Args:   []types.Arg{types.LiteralArg{Value: resource}},
	})
}

func (b *TransactionBuilder) ClaimBurn(claim types.ConfidentialClaim) *TransactionBuilder {
	return b.AddInstruction(types.ClaimBurn{Claim: claim})
}

// AllocateAddress binds name to a new workspace id and allocates an address
// of the given type into it.
func (b *TransactionBuilder) AllocateAddress(typ types.AllocatableAddressType, name string) *TransactionBuilder {
	if err := bareName(name); err != nil {
		return b.record(fmt.Errorf("allocate address: %w", err))
	}
	id := b.workspaces.allocate(name)
	return b.AddInstruction(types.AllocateAddress{
		AllocatableType: typ,
		WorkspaceID:     id,
	})
}

func (b *TransactionBuilder) AssertBucketContains(name string, resource types.ResourceAddress, minAmount types.Amount) *TransactionBuilder {
	key, err := b.workspaces.resolve(name)
	if err != nil {
		return b.record(fmt.Errorf("assert bucket contains: %w", err))
	}
	return b.AddInstruction(types.AssertBucketContains{
		Key:             key,
		ResourceAddress: resource,
		MinAmount:       minAmount,
	})
}

// SaveVar puts the output of the previous instruction on the workspace under
// name. It is the only way to make an instruction's output nameable.
func (b *TransactionBuilder) SaveVar(name string) *TransactionBuilder {
	if err := bareName(name); err != nil {
		return b.record(fmt.Errorf("save var: %w", err))
	}
	id := b.workspaces.allocate(name)
	return b.AddInstruction(types.PutLastInstructionOutputOnWorkspace{Key: id})
}

func (b *TransactionBuilder) DropAllProofsInWorkspace() *TransactionBuilder {
	return b.AddInstruction(types.DropAllProofsInWorkspace{})
}

// FeeTransactionPayFromComponent adds a fee instruction calling pay_fee on
// component. The component must return a bucket of revealed XTR; maxFee is
// locked for the duration of the transaction.
func (b *TransactionBuilder) FeeTransactionPayFromComponent(component types.ComponentAddress, maxFee types.Amount) *TransactionBuilder {
	return b.AddFeeInstruction(types.CallMethod{
		Call:   types.CallAddress{Address: component},
		Method: methodPayFee,
		Args:   []types.Arg{types.LiteralArg{Value: maxFee}},
	})
}

// FeeTransactionPayFromComponentConfidential is FeeTransactionPayFromComponent
// paying from a confidential withdraw proof.
func (b *TransactionBuilder) FeeTransactionPayFromComponentConfidential(component types.ComponentAddress, proof types.ConfidentialWithdrawProof) *TransactionBuilder {
	return b.AddFeeInstruction(types.CallMethod{
		Call:   types.CallAddress{Address: component},
		Method: methodPayFeeConfidential,
		Args:   []types.Arg{types.LiteralArg{Value: proof}},
	})
}

// WithUnsignedTransaction replaces the accumulated transaction. Workspace
// bindings are kept.
func (b *TransactionBuilder) WithUnsignedTransaction(utx types.UnsignedTransactionV1) *TransactionBuilder {
	b.unsignedTransaction = utx.Clone()
	b.markDirty()
	return b
}

// WithFeeInstructions replaces the fee instructions.
func (b *TransactionBuilder) WithFeeInstructions(instructions []types.Instruction) *TransactionBuilder {
	b.unsignedTransaction.FeeInstructions = append([]types.Instruction{}, instructions...)
	b.markDirty()
	return b
}

// WithFeeInstructionsBuilder runs fn on a fresh builder for the same network
// and uses its instructions as the fee instructions. The sub-builder has its
// own workspace, so names saved inside fn are not visible here.
func (b *TransactionBuilder) WithFeeInstructionsBuilder(fn func(*TransactionBuilder) *TransactionBuilder) *TransactionBuilder {
	sub := New(b.unsignedTransaction.Network)
	if out := fn(sub); out != nil {
		sub = out
	}
	if err := sub.Err(); err != nil {
		return b.record(fmt.Errorf("fee instructions: %w", err))
	}
	return b.WithFeeInstructions(sub.unsignedTransaction.Instructions)
}

func (b *TransactionBuilder) AddInstruction(instruction types.Instruction) *TransactionBuilder {
	b.unsignedTransaction.Instructions = append(b.unsignedTransaction.Instructions, instruction)
	b.markDirty()
	return b
}

func (b *TransactionBuilder) AddFeeInstruction(instruction types.Instruction) *TransactionBuilder {
	b.unsignedTransaction.FeeInstructions = append(b.unsignedTransaction.FeeInstructions, instruction)
	b.markDirty()
	return b
}

// WithInstructions appends instructions as is; workspace ids inside them are
// not checked.
func (b *TransactionBuilder) WithInstructions(instructions ...types.Instruction) *TransactionBuilder {
	b.unsignedTransaction.Instructions = append(b.unsignedTransaction.Instructions, instructions...)
	b.markDirty()
	return b
}

func (b *TransactionBuilder) AddInput(input types.SubstateRequirement) *TransactionBuilder {
	b.unsignedTransaction.Inputs = append(b.unsignedTransaction.Inputs, input)
	b.markDirty()
	return b
}

func (b *TransactionBuilder) WithInputs(inputs ...types.SubstateRequirement) *TransactionBuilder {
	b.unsignedTransaction.Inputs = append(b.unsignedTransaction.Inputs, inputs...)
	b.markDirty()
	return b
}

func (b *TransactionBuilder) WithMinEpoch(epoch types.Epoch) *TransactionBuilder {
	b.unsignedTransaction.MinEpoch = &epoch
	b.markDirty()
	return b
}

func (b *TransactionBuilder) WithMaxEpoch(epoch types.Epoch) *TransactionBuilder {
	b.unsignedTransaction.MaxEpoch = &epoch
	b.markDirty()
	return b
}

func (b *TransactionBuilder) WithDryRun(dryRun bool) *TransactionBuilder {
	b.unsignedTransaction.DryRun = dryRun
	b.markDirty()
	return b
}

func (b *TransactionBuilder) WithSealSignerAuthorized(authorized bool) *TransactionBuilder {
	b.unsignedTransaction.IsSealSignerAuthorized = authorized
	b.markDirty()
	return b
}

// AddSignature attaches a signature over the current content. It does not
// change the content, so existing signatures are kept.
func (b *TransactionBuilder) AddSignature(sig types.TransactionSignature) *TransactionBuilder {
	b.signatures = append(b.signatures, sig)
	return b
}

// Sign hashes the current content and attaches signer's signature.
func (b *TransactionBuilder) Sign(signer Signer) *TransactionBuilder {
	hash, err := b.unsignedTransaction.Hash()
	if err != nil {
		return b.record(fmt.Errorf("sign: %w", err))
	}
	sig, err := signer.Sign(hash)
	if err != nil {
		return b.record(fmt.Errorf("sign: %w", err))
	}
	return b.AddSignature(sig)
}

// Signatures returns a copy of the signatures collected since the last change.
func (b *TransactionBuilder) Signatures() []types.TransactionSignature {
	return append([]types.TransactionSignature{}, b.signatures...)
}

// BuildUnsignedTransaction returns a snapshot of the transaction. The
// snapshot does not share state with the builder.
func (b *TransactionBuilder) BuildUnsignedTransaction() (types.UnsignedTransactionV1, error) {
	if err := b.Err(); err != nil {
		return types.UnsignedTransactionV1{}, err
	}
	return b.unsignedTransaction.Clone(), nil
}

// Build pairs a snapshot with the current signatures. The builder stays
// usable afterwards.
func (b *TransactionBuilder) Build() (types.Transaction, error) {
	utx, err := b.BuildUnsignedTransaction()
	if err != nil {
		return types.Transaction{}, err
	}
	return types.NewTransaction(utx, b.signatures), nil
}
