package service

import (
	"context"
	"encoding/json"

	"tari-sdk/pkg/tari/recipe"
)

type TransactionAPI interface {
	// Build 执行配方并保存构建出的交易，相同配方命中缓存
	Build(ctx context.Context, r *recipe.Recipe) (*BuildResult, error)

	// Get 按交易哈希查询
	Get(ctx context.Context, hash string) (*TransactionView, error)

	// RecordResult 记录网络返回的最终状态
	// status: New, DryRun, Pending, Accepted, Rejected, InvalidTransaction, OnlyFeeAccepted
	RecordResult(ctx context.Context, hash, status string, result json.RawMessage) (*TransactionView, error)
}
