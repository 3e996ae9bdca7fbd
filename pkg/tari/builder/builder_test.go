package builder

import (
	"encoding/json"
	"testing"

	"tari-sdk/pkg/tari/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccount  = types.ComponentAddress("component_a1b2c3")
	testResource = types.ResourceAddress("resource_x")
	testTemplate = types.PublishedTemplateAddress("template_f00d")
)

var testSig = types.TransactionSignature{
	PublicKey: "pk",
	Signature: types.SchnorrSignature{PublicNonce: "nonce", Signature: "sig"},
}

type fakeSigner struct {
	hashes [][32]byte
}

func (s *fakeSigner) Sign(hash [32]byte) (types.TransactionSignature, error) {
	s.hashes = append(s.hashes, hash)
	return testSig, nil
}

func u32(v uint32) *uint32 { return &v }

func TestSaveVarAssignsIncreasingIDs(t *testing.T) {
	b := New(types.LocalNet)
	names := []string{"a", "b", "c", "d"}
	for i, name := range names {
		if i%2 == 0 {
			b.SaveVar(name)
		} else {
			b.AllocateAddress(types.AllocatableComponent, name)
		}
	}
	require.NoError(t, b.Err())

	utx, err := b.BuildUnsignedTransaction()
	require.NoError(t, err)
	require.Len(t, utx.Instructions, len(names))

	for i, ins := range utx.Instructions {
		switch ins := ins.(type) {
		case types.PutLastInstructionOutputOnWorkspace:
			assert.Equal(t, uint32(i), ins.Key)
		case types.AllocateAddress:
			assert.Equal(t, uint32(i), ins.WorkspaceID)
			assert.Equal(t, types.AllocatableComponent, ins.AllocatableType)
		default:
			t.Fatalf("unexpected instruction %T", ins)
		}
	}
}

func TestRebindingNameNeverReusesID(t *testing.T) {
	b := New(types.LocalNet).SaveVar("x").SaveVar("x").AssertBucketContains("x", testResource, 1)
	utx, err := b.BuildUnsignedTransaction()
	require.NoError(t, err)

	assert.Equal(t, types.PutLastInstructionOutputOnWorkspace{Key: 0}, utx.Instructions[0])
	assert.Equal(t, types.PutLastInstructionOutputOnWorkspace{Key: 1}, utx.Instructions[1])
	assert.Equal(t, types.WorkspaceOffsetID{ID: 1}, utx.Instructions[2].(types.AssertBucketContains).Key)
}

func TestMutationsClearSignatures(t *testing.T) {
	mutations := []struct {
		name string
		fn   func(b *TransactionBuilder)
	}{
		{"AddInstruction", func(b *TransactionBuilder) { b.AddInstruction(types.DropAllProofsInWorkspace{}) }},
		{"AddFeeInstruction", func(b *TransactionBuilder) { b.AddFeeInstruction(types.DropAllProofsInWorkspace{}) }},
		{"WithInstructions", func(b *TransactionBuilder) { b.WithInstructions(types.DropAllProofsInWorkspace{}) }},
		{"WithFeeInstructions", func(b *TransactionBuilder) { b.WithFeeInstructions(nil) }},
		{"AddInput", func(b *TransactionBuilder) { b.AddInput(types.SubstateRequirement{SubstateID: "s"}) }},
		{"WithInputs", func(b *TransactionBuilder) { b.WithInputs(types.SubstateRequirement{SubstateID: "s"}) }},
		{"WithMinEpoch", func(b *TransactionBuilder) { b.WithMinEpoch(1) }},
		{"WithMaxEpoch", func(b *TransactionBuilder) { b.WithMaxEpoch(9) }},
		{"WithDryRun", func(b *TransactionBuilder) { b.WithDryRun(true) }},
		{"WithSealSignerAuthorized", func(b *TransactionBuilder) { b.WithSealSignerAuthorized(true) }},
		{"WithUnsignedTransaction", func(b *TransactionBuilder) {
			b.WithUnsignedTransaction(types.NewUnsignedTransaction(types.Igor))
		}},
		{"SaveVar", func(b *TransactionBuilder) { b.SaveVar("v") }},
		{"CreateAccount", func(b *TransactionBuilder) { b.CreateAccount("pubkey", "") }},
		{"CreateProof", func(b *TransactionBuilder) { b.CreateProof(testAccount, testResource) }},
		{"FeeTransactionPayFromComponent", func(b *TransactionBuilder) {
			b.FeeTransactionPayFromComponent(testAccount, 1000)
		}},
		{"WithFeeInstructionsBuilder", func(b *TransactionBuilder) {
			b.WithFeeInstructionsBuilder(func(fb *TransactionBuilder) *TransactionBuilder {
				return fb.DropAllProofsInWorkspace()
			})
		}},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			b := New(types.LocalNet).AddSignature(testSig)
			require.Len(t, b.Signatures(), 1)

			tt.fn(b)

			assert.Empty(t, b.Signatures())
			tx, err := b.Build()
			require.NoError(t, err)
			assert.Empty(t, tx.Signatures())
		})
	}
}

func TestUnboundWorkspaceLeavesBuilderUnchanged(t *testing.T) {
	b := New(types.LocalNet).DropAllProofsInWorkspace().AddSignature(testSig)

	b.AssertBucketContains("bucket.1", testResource, 100)

	require.ErrorIs(t, b.Err(), ErrWorkspaceNotFound)
	assert.Len(t, b.unsignedTransaction.Instructions, 1)
	assert.Len(t, b.Signatures(), 1, "a rejected step must not touch the signatures")

	_, err := b.BuildUnsignedTransaction()
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
	_, err = b.Build()
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestUnboundWorkspaceInArgs(t *testing.T) {
	tests := []struct {
		name string
		fn   func(b *TransactionBuilder)
	}{
		{"CallFunction", func(b *TransactionBuilder) {
			b.CallFunction(FunctionDefinition{TemplateAddress: testTemplate, FunctionName: "new"}, Workspace("missing"))
		}},
		{"CallMethodArg", func(b *TransactionBuilder) {
			b.CallMethod(MethodDefinition{MethodName: "deposit", Target: OnComponent(testAccount)}, Workspace("missing.0"))
		}},
		{"CallMethodTarget", func(b *TransactionBuilder) {
			b.CallMethod(MethodDefinition{MethodName: "deposit", Target: OnWorkspace("missing")})
		}},
		{"CreateAccount", func(b *TransactionBuilder) { b.CreateAccount("pubkey", "missing") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(types.LocalNet)
			tt.fn(b)
			assert.ErrorIs(t, b.Err(), ErrWorkspaceNotFound)
			assert.Empty(t, b.unsignedTransaction.Instructions)
		})
	}
}

func TestResolveOffsetKeys(t *testing.T) {
	b := New(types.LocalNet).DropAllProofsInWorkspace().SaveVar("other").SaveVar("foo")

	b.AssertBucketContains("foo.3", testResource, 5).
		AssertBucketContains("foo", testResource, 5)
	require.NoError(t, b.Err())

	utx, err := b.BuildUnsignedTransaction()
	require.NoError(t, err)
	withOffset := utx.Instructions[3].(types.AssertBucketContains)
	bare := utx.Instructions[4].(types.AssertBucketContains)

	assert.Equal(t, types.WorkspaceOffsetID{ID: 1, Offset: u32(3)}, withOffset.Key)
	assert.Equal(t, types.WorkspaceOffsetID{ID: 1}, bare.Key)
	assert.Nil(t, bare.Key.Offset)
	assert.Equal(t, types.Amount(5), bare.MinAmount)
}

func TestCallMethodFromWorkspace(t *testing.T) {
	b := New(types.Network(0)).
		SaveVar("acc").
		CallMethod(MethodDefinition{MethodName: "balance", Target: OnWorkspace("acc")})
	require.NoError(t, b.Err())

	utx, err := b.BuildUnsignedTransaction()
	require.NoError(t, err)
	call := utx.Instructions[1].(types.CallMethod)
	assert.Equal(t, types.CallWorkspace{Workspace: types.WorkspaceOffsetID{ID: 0}}, call.Call)
	assert.Empty(t, call.Args)

	data, err := json.Marshal(call)
	require.NoError(t, err)
	assert.JSONEq(t, `{"CallMethod":{"call":{"Workspace":{"id":0,"offset":null}},"method":"balance","args":[]}}`, string(data))
}

func TestCallMethodTargetValidation(t *testing.T) {
	t.Run("offset rejected", func(t *testing.T) {
		b := New(types.LocalNet).SaveVar("acc").
			CallMethod(MethodDefinition{MethodName: "balance", Target: OnWorkspace("acc.1")})
		assert.ErrorIs(t, b.Err(), ErrOffsetNotSupported)
		assert.Len(t, b.unsignedTransaction.Instructions, 1)
	})

	t.Run("missing target", func(t *testing.T) {
		b := New(types.LocalNet).CallMethod(MethodDefinition{MethodName: "balance"})
		assert.ErrorIs(t, b.Err(), ErrInvalidMethodTarget)
		assert.Empty(t, b.unsignedTransaction.Instructions)
	})

	t.Run("component address", func(t *testing.T) {
		b := New(types.LocalNet).
			CallMethod(MethodDefinition{MethodName: "withdraw", Target: OnComponent(testAccount)}, testResource, types.Amount(10))
		require.NoError(t, b.Err())
		call := b.unsignedTransaction.Instructions[0].(types.CallMethod)
		assert.Equal(t, types.CallAddress{Address: testAccount}, call.Call)
		assert.Equal(t, []types.Arg{
			types.LiteralArg{Value: testResource},
			types.LiteralArg{Value: types.Amount(10)},
		}, call.Args)
	})
}

func TestCallFunctionResolvesArgs(t *testing.T) {
	b := New(types.LocalNet).SaveVar("bucket").
		CallFunction(FunctionDefinition{TemplateAddress: testTemplate, FunctionName: "mint"},
			"literal", Workspace("bucket.2"), types.WorkspaceArg{Workspace: types.WorkspaceOffsetID{ID: 7}})
	require.NoError(t, b.Err())

	fn := b.unsignedTransaction.Instructions[1].(types.CallFunction)
	assert.Equal(t, testTemplate, fn.Address)
	assert.Equal(t, "mint", fn.Function)
	assert.Equal(t, []types.Arg{
		types.LiteralArg{Value: "literal"},
		types.WorkspaceArg{Workspace: types.WorkspaceOffsetID{ID: 0, Offset: u32(2)}},
		types.WorkspaceArg{Workspace: types.WorkspaceOffsetID{ID: 7}},
	}, fn.Args)
}

func TestCreateAccount(t *testing.T) {
	t.Run("no bucket", func(t *testing.T) {
		b := New(types.LocalNet).CreateAccount("pubkey123", "")
		require.NoError(t, b.Err())

		ins := b.unsignedTransaction.Instructions[0].(types.CreateAccount)
		assert.Nil(t, ins.WorkspaceID)

		data, err := json.Marshal(ins)
		require.NoError(t, err)
		assert.JSONEq(t, `{"CreateAccount":{"public_key_address":"pubkey123","owner_rule":null,"access_rules":null,"workspace_id":null}}`, string(data))
	})

	t.Run("with bucket", func(t *testing.T) {
		b := New(types.LocalNet).SaveVar("coins").CreateAccount("pubkey123", "coins")
		require.NoError(t, b.Err())

		ins := b.unsignedTransaction.Instructions[1].(types.CreateAccount)
		require.NotNil(t, ins.WorkspaceID)
		assert.Equal(t, types.WorkspaceOffsetID{ID: 0}, *ins.WorkspaceID)
	})
}

func TestCreateProofAndClaimBurn(t *testing.T) {
	claim := types.ConfidentialClaim(`{"output_address":"abc"}`)
	b := New(types.LocalNet).CreateProof(testAccount, testResource).ClaimBurn(claim)
	require.NoError(t, b.Err())

	proof := b.unsignedTransaction.Instructions[0].(types.CallMethod)
	assert.Equal(t, "create_proof_for_resource", proof.Method)
	assert.Equal(t, types.CallAddress{Address: testAccount}, proof.Call)
	assert.Equal(t, []types.Arg{types.LiteralArg{Value: testResource}}, proof.Args)

	assert.Equal(t, types.ClaimBurn{Claim: claim}, b.unsignedTransaction.Instructions[1])
}

func TestFeeInstructions(t *testing.T) {
	proof := types.ConfidentialWithdrawProof(`{"inputs":[]}`)
	b := New(types.LocalNet).
		FeeTransactionPayFromComponent(testAccount, 2000).
		FeeTransactionPayFromComponentConfidential(testAccount, proof)
	require.NoError(t, b.Err())

	utx, err := b.BuildUnsignedTransaction()
	require.NoError(t, err)
	assert.Empty(t, utx.Instructions)
	require.Len(t, utx.FeeInstructions, 2)

	payFee := utx.FeeInstructions[0].(types.CallMethod)
	assert.Equal(t, "pay_fee", payFee.Method)
	assert.Equal(t, []types.Arg{types.LiteralArg{Value: types.Amount(2000)}}, payFee.Args)

	confidential := utx.FeeInstructions[1].(types.CallMethod)
	assert.Equal(t, "pay_fee_confidential", confidential.Method)
	assert.Equal(t, []types.Arg{types.LiteralArg{Value: proof}}, confidential.Args)
}

func TestWithFeeInstructionsBuilderIsolatesWorkspace(t *testing.T) {
	b := New(types.Igor).SaveVar("outer")

	b.WithFeeInstructionsBuilder(func(fb *TransactionBuilder) *TransactionBuilder {
		assert.Equal(t, types.Igor, fb.Network())
		return fb.CallMethod(MethodDefinition{MethodName: "withdraw", Target: OnComponent(testAccount)}).
			SaveVar("x").
			CallMethod(MethodDefinition{MethodName: "pay_fee", Target: OnWorkspace("x")})
	})
	require.NoError(t, b.Err())

	utx, err := b.BuildUnsignedTransaction()
	require.NoError(t, err)
	require.Len(t, utx.FeeInstructions, 3)
	// the sub-builder numbers its own workspace from 0
	assert.Equal(t, types.PutLastInstructionOutputOnWorkspace{Key: 0}, utx.FeeInstructions[1])

	b.AssertBucketContains("x", testResource, 1)
	assert.ErrorIs(t, b.Err(), ErrWorkspaceNotFound)
	assert.Len(t, b.unsignedTransaction.Instructions, 1)
}

func TestWithFeeInstructionsBuilderPropagatesErrors(t *testing.T) {
	b := New(types.Igor).FeeTransactionPayFromComponent(testAccount, 1)

	b.WithFeeInstructionsBuilder(func(fb *TransactionBuilder) *TransactionBuilder {
		return fb.AssertBucketContains("nope", testResource, 1)
	})

	assert.ErrorIs(t, b.Err(), ErrWorkspaceNotFound)
	assert.Len(t, b.unsignedTransaction.FeeInstructions, 1)
}

func TestBindingNamesMustBeBare(t *testing.T) {
	b := New(types.LocalNet).SaveVar("a.1").AllocateAddress(types.AllocatableResource, "")
	assert.ErrorIs(t, b.Err(), ErrInvalidWorkspaceKey)
	assert.Empty(t, b.unsignedTransaction.Instructions)

	// a rejected binding does not consume an id
	b.SaveVar("a")
	assert.Equal(t, types.PutLastInstructionOutputOnWorkspace{Key: 0}, b.unsignedTransaction.Instructions[0])
}

func TestBuildSnapshots(t *testing.T) {
	b := New(types.Esmeralda).
		AddInput(types.SubstateRequirement{SubstateID: "component_1", Version: u32(2)}).
		WithMinEpoch(10).
		WithMaxEpoch(20).
		SaveVar("v")

	first, err := b.BuildUnsignedTransaction()
	require.NoError(t, err)
	second, err := b.BuildUnsignedTransaction()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// later mutation of the builder is not visible through an old snapshot
	b.DropAllProofsInWorkspace().WithMinEpoch(11)
	assert.Len(t, first.Instructions, 1)
	assert.Equal(t, types.Epoch(10), *first.MinEpoch)

	// and mutating a snapshot does not reach the builder
	first.Instructions[0] = types.DropAllProofsInWorkspace{}
	assert.Equal(t, types.PutLastInstructionOutputOnWorkspace{Key: 0}, b.unsignedTransaction.Instructions[0])
}

func TestBuildKeepsBuilderMutable(t *testing.T) {
	signer := &fakeSigner{}
	b := New(types.LocalNet).DropAllProofsInWorkspace().Sign(signer)
	require.NoError(t, b.Err())

	tx, err := b.Build()
	require.NoError(t, err)
	require.Len(t, tx.Signatures(), 1)

	hash, err := tx.UnsignedTransaction().Hash()
	require.NoError(t, err)
	assert.Equal(t, [][32]byte{hash}, signer.hashes)

	b.DropAllProofsInWorkspace()
	assert.Len(t, tx.UnsignedTransaction().Instructions, 1)
	assert.Len(t, tx.Signatures(), 1)

	next, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, next.UnsignedTransaction().Instructions, 2)
	assert.Empty(t, next.Signatures())
}

func TestWithUnsignedTransactionKeepsBindings(t *testing.T) {
	replacement := types.NewUnsignedTransaction(types.NextNet)
	replacement.DryRun = true

	b := New(types.LocalNet).SaveVar("kept").WithUnsignedTransaction(replacement)
	b.AssertBucketContains("kept", testResource, 1)
	require.NoError(t, b.Err())

	utx, err := b.BuildUnsignedTransaction()
	require.NoError(t, err)
	assert.Equal(t, types.NextNet, utx.Network)
	assert.True(t, utx.DryRun)
	assert.Len(t, utx.Instructions, 1)
}
