package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tari-sdk/internal/event"
	"tari-sdk/internal/model"
	"tari-sdk/pkg/cache"
	"tari-sdk/pkg/errno"
	"tari-sdk/pkg/tari/recipe"
	"tari-sdk/pkg/tari/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const transferRecipe = `
network: igor
fee:
  - op: pay_fee
    component: component_src
    max_fee: "0.001"
steps:
  - op: call_method
    component: component_src
    method: withdraw
    args: [resource_xtr, {amount: "2"}]
  - op: save_var
    name: bucket
  - op: call_method
    component: component_dst
    method: deposit
    args: [{workspace: bucket}]
`

func newTestService(t *testing.T) (*TransactionService, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewTransactionService(store, cache.NewMemoryCache(time.Minute, time.Minute), TransactionOptions{
		Network:     types.LocalNet,
		EventsTopic: "tari.transactions",
	})
	return svc, store
}

func parseRecipe(t *testing.T, doc string) *recipe.Recipe {
	t.Helper()
	r, err := recipe.Parse([]byte(doc))
	require.NoError(t, err)
	return r
}

func TestBuild(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res, err := svc.Build(ctx, parseRecipe(t, transferRecipe))
	require.NoError(t, err)
	assert.Len(t, res.Hash, 64)
	assert.Equal(t, "igor", res.Network)
	assert.False(t, res.Cached)

	var tx types.Transaction
	require.NoError(t, json.Unmarshal(res.Transaction, &tx))
	id, err := tx.ID()
	require.NoError(t, err)
	assert.Equal(t, res.Hash, id)

	// 落库 + 一条 outbox 事件
	require.Len(t, store.outbox, 1)
	var ev event.TransactionBuiltEvent
	require.NoError(t, json.Unmarshal(store.outbox[0].Payload, &ev))
	assert.Equal(t, event.TypeTransactionBuilt, ev.Type)
	assert.Equal(t, 3, ev.InstructionCount)
	assert.Equal(t, 1, ev.FeeInstructions)
	assert.Equal(t, res.Hash, store.outbox[0].Key)
	assert.Equal(t, "tari.transactions", store.outbox[0].Topic)

	// 相同配方命中缓存
	again, err := svc.Build(ctx, parseRecipe(t, transferRecipe))
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, res.Hash, again.Hash)
	assert.Len(t, store.outbox, 1)
}

func TestBuildSameTransactionStoredOnce(t *testing.T) {
	store := newMemStore()
	svc := NewTransactionService(store, nil, TransactionOptions{Network: types.LocalNet})
	ctx := context.Background()

	a, err := svc.Build(ctx, parseRecipe(t, "steps: [{op: drop_all_proofs}]"))
	require.NoError(t, err)
	// 网络显式写出后配方摘要不同，但交易内容相同
	b, err := svc.Build(ctx, parseRecipe(t, "network: localnet\nsteps: [{op: drop_all_proofs}]"))
	require.NoError(t, err)

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.RecipeDigest, b.RecipeDigest)
	assert.Len(t, store.txs, 1)
	assert.Len(t, store.outbox, 1)
}

func TestBuildErrors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Build(context.Background(), parseRecipe(t, `
steps:
  - op: call_method
    component: c
    method: deposit
    args: [{workspace: nothing}]
`))
	code, _ := errno.Decode(err)
	assert.Equal(t, errno.ErrWorkspaceNotFound.Code, code)

	_, err = svc.Build(context.Background(), parseRecipe(t, "steps: [{op: save_var, name: a.1}]"))
	code, _ = errno.Decode(err)
	assert.Equal(t, errno.ErrRecipeInvalid.Code, code)
}

func TestBuildDatabaseError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	svc := NewTransactionService(store, nil, TransactionOptions{Network: types.LocalNet})

	_, err := svc.Build(context.Background(), parseRecipe(t, "steps: [{op: drop_all_proofs}]"))
	assert.Equal(t, errno.ErrDatabase, err)
}

func TestGetAndRecordResult(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res, err := svc.Build(ctx, parseRecipe(t, transferRecipe))
	require.NoError(t, err)

	view, err := svc.Get(ctx, res.Hash)
	require.NoError(t, err)
	assert.Equal(t, "New", view.Status)
	assert.Nil(t, view.Result)

	view, err = svc.RecordResult(ctx, res.Hash, "Pending", nil)
	require.NoError(t, err)
	assert.Equal(t, "Pending", view.Status)

	view, err = svc.RecordResult(ctx, res.Hash, "Accepted", json.RawMessage(`{"fee":12}`))
	require.NoError(t, err)
	assert.Equal(t, "Accepted", view.Status)

	// 缓存已失效，能读到新状态
	view, err = svc.Get(ctx, res.Hash)
	require.NoError(t, err)
	assert.Equal(t, "Accepted", view.Status)
	assert.JSONEq(t, `{"fee":12}`, string(view.Result))

	// built + pending + accepted
	require.Len(t, store.outbox, 3)
	var ev event.TransactionResultEvent
	require.NoError(t, json.Unmarshal(store.outbox[2].Payload, &ev))
	assert.Equal(t, "Accepted", ev.Status)

	// 幂等
	_, err = svc.RecordResult(ctx, res.Hash, "Accepted", nil)
	require.NoError(t, err)
	assert.Len(t, store.outbox, 3)

	// 最终状态不能再改
	_, err = svc.RecordResult(ctx, res.Hash, "Rejected", nil)
	code, _ := errno.Decode(err)
	assert.Equal(t, errno.ErrStatusInvalid.Code, code)
}

func TestRecordResultErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordResult(ctx, "missing", "Accepted", nil)
	assert.Equal(t, errno.ErrTransactionNotFound, err)

	_, err = svc.RecordResult(ctx, "missing", "accepted", nil)
	code, _ := errno.Decode(err)
	assert.Equal(t, errno.ErrStatusInvalid.Code, code)

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, errno.ErrTransactionNotFound, err)
}

// interleavingStore 在第一次 UpdateResultWithEvent 之前执行 before，
// 模拟另一个请求在读取与更新之间写入了结果
type interleavingStore struct {
	*memStore
	before func()
}

func (s *interleavingStore) UpdateResultWithEvent(ctx context.Context, hash, status string, result []byte, ev *model.OutboxMessage) error {
	if fn := s.before; fn != nil {
		s.before = nil
		fn()
	}
	return s.memStore.UpdateResultWithEvent(ctx, hash, status, result, ev)
}

func TestRecordResultConcurrentFinalization(t *testing.T) {
	ctx := context.Background()
	base := newMemStore()
	store := &interleavingStore{memStore: base}
	svc := NewTransactionService(store, cache.NewMemoryCache(time.Minute, time.Minute), TransactionOptions{
		Network:     types.LocalNet,
		EventsTopic: "tari.transactions",
	})

	res, err := svc.Build(ctx, parseRecipe(t, transferRecipe))
	require.NoError(t, err)

	store.before = func() {
		_, err := svc.RecordResult(ctx, res.Hash, "Rejected", nil)
		require.NoError(t, err)
	}
	_, err = svc.RecordResult(ctx, res.Hash, "Accepted", nil)
	code, _ := errno.Decode(err)
	assert.Equal(t, errno.ErrStatusInvalid.Code, code)

	view, err := svc.Get(ctx, res.Hash)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", view.Status)
	// built + rejected
	assert.Len(t, base.outbox, 2)

	// 并发写入相同的最终状态是幂等的
	base.txs[res.Hash].Status = "Pending"
	store.before = func() { base.txs[res.Hash].Status = "Rejected" }
	view, err = svc.RecordResult(ctx, res.Hash, "Rejected", nil)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", view.Status)
	assert.Len(t, base.outbox, 2)
}

func TestBuildCacheScopedByNetwork(t *testing.T) {
	ctx := context.Background()
	shared := cache.NewMemoryCache(time.Minute, time.Minute)
	newSvc := func(network types.Network) *TransactionService {
		return NewTransactionService(newMemStore(), shared, TransactionOptions{
			Network:     network,
			EventsTopic: "tari.transactions",
		})
	}
	doc := "steps: [{op: drop_all_proofs}]"

	igor, err := newSvc(types.Igor).Build(ctx, parseRecipe(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "igor", igor.Network)
	assert.False(t, igor.Cached)

	esme, err := newSvc(types.Esmeralda).Build(ctx, parseRecipe(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "esmeralda", esme.Network)
	assert.False(t, esme.Cached)
	assert.NotEqual(t, igor.Hash, esme.Hash)

	again, err := newSvc(types.Igor).Build(ctx, parseRecipe(t, doc))
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, igor.Hash, again.Hash)
}

// brokenCache 读取总是未命中，写入和删除总是失败
type brokenCache struct{}

func (brokenCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("cache down")
}

func (brokenCache) Get(ctx context.Context, key string, target interface{}) error {
	return cache.ErrCacheMiss
}

func (brokenCache) Delete(ctx context.Context, key string) error {
	return errors.New("cache down")
}

func TestCacheFailuresAreLogged(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	svc := NewTransactionService(newMemStore(), brokenCache{}, TransactionOptions{
		Network:     types.LocalNet,
		EventsTopic: "tari.transactions",
	})
	svc.log = zap.New(core)

	res, err := svc.Build(ctx, parseRecipe(t, transferRecipe))
	require.NoError(t, err)
	_, err = svc.Get(ctx, res.Hash)
	require.NoError(t, err)
	view, err := svc.RecordResult(ctx, res.Hash, "Accepted", nil)
	require.NoError(t, err)
	assert.Equal(t, "Accepted", view.Status)

	assert.Equal(t, 2, logs.FilterMessage("cache set failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("cache delete failed").Len())
}
