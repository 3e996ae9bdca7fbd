// Package submit hands built transactions to a wallet or indexer and waits
// for the network's verdict.
package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tari-sdk/pkg/logger"
	"tari-sdk/pkg/tari/types"

	"go.uber.org/zap"
)

var ErrTransactionRejected = errors.New("transaction rejected")

const DefaultPollInterval = time.Second

// Provider is the narrow contract of a submission backend (wallet daemon,
// indexer, ...).
type Provider interface {
	SubmitTransaction(ctx context.Context, req SubmitTransactionRequest) (SubmitTransactionResponse, error)
	GetTransactionResult(ctx context.Context, transactionID string) (types.GetTransactionResultResponse, error)
}

type SubmitTransactionRequest struct {
	Transaction                types.Transaction `json:"transaction"`
	SigningKeyIndex            *uint64           `json:"signing_key_index"`
	DetectInputs               bool              `json:"detect_inputs"`
	DetectInputsUseUnversioned bool              `json:"detect_inputs_use_unversioned"`
	ProofIDs                   []uint32          `json:"proof_ids"`
}

type SubmitTransactionResponse struct {
	TransactionID string `json:"transaction_id"`
}

// RequestOptions tweaks BuildTransactionRequest.
type RequestOptions struct {
	SigningKeyIndex            *uint64
	DetectInputs               bool
	DetectInputsUseUnversioned bool
	ProofIDs                   []uint32
}

// BuildTransactionRequest wraps tx in a submission request.
func BuildTransactionRequest(tx types.Transaction, opts RequestOptions) SubmitTransactionRequest {
	proofIDs := opts.ProofIDs
	if proofIDs == nil {
		proofIDs = []uint32{}
	}
	return SubmitTransactionRequest{
		Transaction:                tx,
		SigningKeyIndex:            opts.SigningKeyIndex,
		DetectInputs:               opts.DetectInputs,
		DetectInputsUseUnversioned: opts.DetectInputsUseUnversioned,
		ProofIDs:                   proofIDs,
	}
}

type WaitOptions struct {
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	Logger       *zap.Logger
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Logger == nil {
		o.Logger = logger.Log
	}
	return o
}

// WaitForTransactionResult polls provider until the transaction reaches a
// final status. A rejected transaction is returned together with an error
// wrapping ErrTransactionRejected.
func WaitForTransactionResult(ctx context.Context, provider Provider, transactionID string, opts WaitOptions) (types.GetTransactionResultResponse, error) {
	opts = opts.withDefaults()
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		resp, err := provider.GetTransactionResult(ctx, transactionID)
		if err != nil {
			return resp, fmt.Errorf("get transaction result %s: %w", transactionID, err)
		}

		if resp.Status == types.TransactionStatusRejected {
			opts.Logger.Warn("transaction rejected",
				zap.String("transaction_id", transactionID),
				zap.ByteString("result", resp.Result))
			return resp, fmt.Errorf("%w: %s: %s", ErrTransactionRejected, transactionID, resp.Result)
		}
		if resp.Status.IsFinalized() {
			opts.Logger.Debug("transaction finalized",
				zap.String("transaction_id", transactionID),
				zap.Stringer("status", resp.Status))
			return resp, nil
		}

		select {
		case <-ctx.Done():
			return resp, ctx.Err()
		case <-ticker.C:
		}
	}
}

type SubmitAndWaitResult struct {
	Response SubmitTransactionResponse
	Result   types.GetTransactionResultResponse
}

// SubmitAndWaitForTransaction submits req and waits for its final result.
func SubmitAndWaitForTransaction(ctx context.Context, provider Provider, req SubmitTransactionRequest, opts WaitOptions) (SubmitAndWaitResult, error) {
	opts = opts.withDefaults()

	resp, err := provider.SubmitTransaction(ctx, req)
	if err != nil {
		return SubmitAndWaitResult{}, fmt.Errorf("submit transaction: %w", err)
	}
	opts.Logger.Info("transaction submitted", zap.String("transaction_id", resp.TransactionID))

	result, err := WaitForTransactionResult(ctx, provider, resp.TransactionID, opts)
	return SubmitAndWaitResult{Response: resp, Result: result}, err
}
