package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"tari-sdk/internal/model"
	"tari-sdk/pkg/tari/types"
)

// memStore 内存版 TransactionStore / OutboxStore，仅用于测试
type memStore struct {
	mu     sync.Mutex
	txs    map[string]*model.Transaction
	outbox []*model.OutboxMessage
	err    error
}

func newMemStore() *memStore {
	return &memStore{txs: make(map[string]*model.Transaction)}
}

func (m *memStore) CreateWithEvent(ctx context.Context, tx *model.Transaction, event *model.OutboxMessage) (*model.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	if existing, ok := m.txs[tx.Hash]; ok {
		return existing, false, nil
	}
	tx.ID = uint64(len(m.txs) + 1)
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	m.txs[tx.Hash] = tx
	m.addOutbox(event)
	return tx, true, nil
}

func (m *memStore) FindByHash(ctx context.Context, hash string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	tx, ok := m.txs[hash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (m *memStore) UpdateResultWithEvent(ctx context.Context, hash, status string, result []byte, event *model.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[hash]
	if !ok {
		return ErrNotFound
	}
	if slices.Contains(types.FinalizedStatusNames(), tx.Status) {
		return ErrStatusFinalized
	}
	tx.Status = status
	tx.Result = result
	m.addOutbox(event)
	return nil
}

func (m *memStore) addOutbox(event *model.OutboxMessage) {
	event.ID = uint64(len(m.outbox) + 1)
	m.outbox = append(m.outbox, event)
}

func (m *memStore) PendingOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.OutboxMessage
	for _, msg := range m.outbox {
		if msg.Status == model.OutboxPending && len(out) < limit {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *memStore) MarkOutboxSent(ctx context.Context, id uint64) error {
	return m.update(id, func(msg *model.OutboxMessage) { msg.Status = model.OutboxSent })
}

func (m *memStore) MarkOutboxRetry(ctx context.Context, id uint64, maxAttempts int) error {
	return m.update(id, func(msg *model.OutboxMessage) {
		msg.Attempts++
		if msg.Attempts >= maxAttempts {
			msg.Status = model.OutboxFailed
		}
	})
}

func (m *memStore) update(id uint64, fn func(*model.OutboxMessage)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.outbox {
		if msg.ID == id {
			fn(msg)
			return nil
		}
	}
	return errors.New("no such message")
}
