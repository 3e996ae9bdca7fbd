package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tari-sdk/internal/event"
	"tari-sdk/internal/model"
	"tari-sdk/pkg/cache"
	"tari-sdk/pkg/errno"
	"tari-sdk/pkg/logger"
	"tari-sdk/pkg/monitor"
	"tari-sdk/pkg/tari/builder"
	"tari-sdk/pkg/tari/recipe"
	"tari-sdk/pkg/tari/types"

	"go.uber.org/zap"
)

const (
	recipeCachePrefix = "tari:recipe:"
	txCachePrefix     = "tari:tx:"
)

type BuildResult struct {
	Hash         string          `json:"hash"`
	Network      string          `json:"network"`
	RecipeDigest string          `json:"recipe_digest"`
	Cached       bool            `json:"cached"`
	Transaction  json.RawMessage `json:"transaction" swaggertype:"object"`
}

type TransactionView struct {
	Hash             string          `json:"hash"`
	Network          string          `json:"network"`
	Status           string          `json:"status"`
	RecipeDigest     string          `json:"recipe_digest,omitempty"`
	InstructionCount int             `json:"instruction_count"`
	Transaction      json.RawMessage `json:"transaction" swaggertype:"object"`
	Result           json.RawMessage `json:"result,omitempty" swaggertype:"object"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func newTransactionView(tx *model.Transaction) *TransactionView {
	v := &TransactionView{
		Hash:             tx.Hash,
		Network:          tx.Network,
		Status:           tx.Status,
		RecipeDigest:     tx.RecipeDigest,
		InstructionCount: tx.InstructionCount,
		Transaction:      json.RawMessage(tx.Payload),
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
	if len(tx.Result) > 0 {
		v.Result = json.RawMessage(tx.Result)
	}
	return v
}

type TransactionOptions struct {
	Network     types.Network // 配方未指定网络时使用
	EventsTopic string
	CacheTTL    time.Duration
}

// TransactionService 是 TransactionAPI 的实现
type TransactionService struct {
	store TransactionStore
	cache cache.Cache
	opts  TransactionOptions
	log   *zap.Logger
}

// NewTransactionService c 可以为 nil (不使用缓存)
func NewTransactionService(store TransactionStore, c cache.Cache, opts TransactionOptions) *TransactionService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	return &TransactionService{
		store: store,
		cache: c,
		opts:  opts,
		log:   logger.Named("transaction"),
	}
}

// Build 逻辑:
// 1. 按配方摘要查缓存
// 2. 执行配方得到交易
// 3. 交易和事件在同一事务中落库 (哈希相同的交易只保存一次)
// 4. 回写缓存
func (s *TransactionService) Build(ctx context.Context, r *recipe.Recipe) (*BuildResult, error) {
	digest, err := r.Digest()
	if err != nil {
		return nil, errno.ErrRecipeInvalid.WithDetail(err.Error())
	}

	network, err := r.ResolveNetwork(s.opts.Network)
	if err != nil {
		monitor.Tari.BuildErrors.WithLabelValues("invalid_recipe").Inc()
		return nil, errno.ErrRecipeInvalid.WithDetail(err.Error())
	}

	// 1. 查缓存，键包含网络 (未指定网络的配方在不同默认网络下结果不同)
	cacheKey := recipeCacheKey(network, digest)
	var cached BuildResult
	if s.cache != nil && s.cache.Get(ctx, cacheKey, &cached) == nil {
		cached.Cached = true
		return &cached, nil
	}

	// 2. 构建
	tx, err := r.Build(network)
	if err != nil {
		return nil, s.buildError(err)
	}

	hash, err := tx.ID()
	if err != nil {
		return nil, errno.ErrBuildFailed.WithDetail(err.Error())
	}
	payload, err := json.Marshal(tx)
	if err != nil {
		return nil, errno.ErrBuildFailed.WithDetail(err.Error())
	}
	utx := tx.UnsignedTransaction()

	// 3. 落库 + Outbox
	rec := &model.Transaction{
		Hash:             hash,
		Network:          network.String(),
		Status:           types.TransactionStatusNew.String(),
		RecipeDigest:     digest,
		InstructionCount: len(utx.Instructions),
		Payload:          payload,
	}
	msg, err := model.NewOutboxMessage(s.opts.EventsTopic, hash, event.TransactionBuiltEvent{
		Type:             event.TypeTransactionBuilt,
		Hash:             hash,
		Network:          network.String(),
		RecipeDigest:     digest,
		InstructionCount: len(utx.Instructions),
		FeeInstructions:  len(utx.FeeInstructions),
	})
	if err != nil {
		return nil, errno.InternalServerError.WithDetail(err.Error())
	}

	stored, created, err := s.store.CreateWithEvent(ctx, rec, msg)
	if err != nil {
		s.log.Error("save transaction failed", zap.String("hash", hash), zap.Error(err))
		return nil, errno.ErrDatabase
	}
	if created {
		monitor.Tari.TransactionsBuilt.WithLabelValues(network.String()).Inc()
		monitor.Tari.TransactionInstructions.Observe(float64(len(utx.Instructions)))
		s.log.Info("transaction built",
			zap.String("hash", hash),
			zap.Stringer("network", network),
			zap.Int("instructions", len(utx.Instructions)))
	}

	result := &BuildResult{
		Hash:         stored.Hash,
		Network:      stored.Network,
		RecipeDigest: digest,
		Transaction:  json.RawMessage(stored.Payload),
	}

	// 4. 回写缓存，失败不影响主流程
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.opts.CacheTTL); err != nil {
			s.log.Warn("cache set failed", zap.String("digest", digest), zap.Error(err))
		}
	}
	return result, nil
}

func recipeCacheKey(network types.Network, digest string) string {
	return recipeCachePrefix + network.String() + ":" + digest
}

func (s *TransactionService) buildError(err error) error {
	var (
		reason string
		base   errno.Errno
	)
	switch {
	case errors.Is(err, builder.ErrWorkspaceNotFound):
		reason, base = "workspace_not_found", errno.ErrWorkspaceNotFound
	case errors.Is(err, recipe.ErrInvalidRecipe),
		errors.Is(err, builder.ErrInvalidWorkspaceKey),
		errors.Is(err, builder.ErrInvalidMethodTarget),
		errors.Is(err, builder.ErrOffsetNotSupported):
		reason, base = "invalid_recipe", errno.ErrRecipeInvalid
	default:
		reason, base = "build_failed", errno.ErrBuildFailed
	}
	monitor.Tari.BuildErrors.WithLabelValues(reason).Inc()
	s.log.Warn("build failed", zap.String("reason", reason), zap.Error(err))
	return base.WithDetail(err.Error())
}

func (s *TransactionService) Get(ctx context.Context, hash string) (*TransactionView, error) {
	var view TransactionView
	if s.cache != nil && s.cache.Get(ctx, txCachePrefix+hash, &view) == nil {
		return &view, nil
	}

	tx, err := s.find(ctx, hash)
	if err != nil {
		return nil, err
	}
	v := newTransactionView(tx)
	if s.cache != nil {
		if err := s.cache.Set(ctx, txCachePrefix+hash, v, s.opts.CacheTTL); err != nil {
			s.log.Warn("cache set failed", zap.String("hash", hash), zap.Error(err))
		}
	}
	return v, nil
}

func (s *TransactionService) find(ctx context.Context, hash string) (*model.Transaction, error) {
	tx, err := s.store.FindByHash(ctx, hash)
	if errors.Is(err, ErrNotFound) {
		return nil, errno.ErrTransactionNotFound
	}
	if err != nil {
		s.log.Error("find transaction failed", zap.String("hash", hash), zap.Error(err))
		return nil, errno.ErrDatabase
	}
	return tx, nil
}

// RecordResult 已处于最终状态的交易不能再改为其他状态，重复提交相同状态是幂等的
func (s *TransactionService) RecordResult(ctx context.Context, hash, status string, result json.RawMessage) (*TransactionView, error) {
	next, err := types.ConvertStringToTransactionStatus(status)
	if err != nil {
		return nil, errno.ErrStatusInvalid.WithDetail(err.Error())
	}

	tx, err := s.find(ctx, hash)
	if err != nil {
		return nil, err
	}
	current, err := types.ConvertStringToTransactionStatus(tx.Status)
	if err != nil {
		return nil, errno.ErrStatusInvalid.WithDetail(err.Error())
	}
	if current.IsFinalized() {
		return finalizedView(tx, current, next)
	}

	msg, err := model.NewOutboxMessage(s.opts.EventsTopic, hash, event.TransactionResultEvent{
		Type:   event.TypeTransactionResult,
		Hash:   hash,
		Status: next.String(),
	})
	if err != nil {
		return nil, errno.InternalServerError.WithDetail(err.Error())
	}
	if err := s.store.UpdateResultWithEvent(ctx, hash, next.String(), result, msg); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errno.ErrTransactionNotFound
		}
		if errors.Is(err, ErrStatusFinalized) {
			// 读取之后被其他请求改为最终状态
			if tx, err = s.find(ctx, hash); err != nil {
				return nil, err
			}
			if current, err = types.ConvertStringToTransactionStatus(tx.Status); err != nil {
				return nil, errno.ErrStatusInvalid.WithDetail(err.Error())
			}
			return finalizedView(tx, current, next)
		}
		s.log.Error("update transaction failed", zap.String("hash", hash), zap.Error(err))
		return nil, errno.ErrDatabase
	}

	if next.IsFinalized() {
		monitor.Tari.TransactionResults.WithLabelValues(next.String()).Inc()
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, txCachePrefix+hash); err != nil {
			s.log.Warn("cache delete failed", zap.String("hash", hash), zap.Error(err))
		}
	}
	s.log.Info("transaction result recorded", zap.String("hash", hash), zap.Stringer("status", next))

	tx.Status = next.String()
	tx.Result = result
	return newTransactionView(tx), nil
}

// finalizedView 已是最终状态: 相同状态幂等，不同状态报错
func finalizedView(tx *model.Transaction, current, next types.TransactionStatus) (*TransactionView, error) {
	if current == next {
		return newTransactionView(tx), nil
	}
	return nil, errno.ErrStatusInvalid.WithDetail("already finalized as " + current.String())
}
