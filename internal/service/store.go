package service

import (
	"context"
	"errors"

	"tari-sdk/internal/model"
	"tari-sdk/pkg/tari/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrStatusFinalized 交易已处于最终状态，不再更新
	ErrStatusFinalized = errors.New("transaction status finalized")
)

// TransactionStore 交易记录与 outbox 的持久化
type TransactionStore interface {
	// CreateWithEvent 在同一事务中写入交易和事件。哈希已存在时返回已有记录, created 为 false, 不写事件
	CreateWithEvent(ctx context.Context, tx *model.Transaction, event *model.OutboxMessage) (stored *model.Transaction, created bool, err error)
	FindByHash(ctx context.Context, hash string) (*model.Transaction, error)
	// UpdateResultWithEvent 仅在当前状态不是最终状态时更新状态和结果并写入事件，
	// 否则返回 ErrStatusFinalized
	UpdateResultWithEvent(ctx context.Context, hash, status string, result []byte, event *model.OutboxMessage) error
}

// OutboxStore Relay 使用的本地消息表访问
type OutboxStore interface {
	PendingOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, id uint64) error
	// MarkOutboxRetry 增加重试次数，达到 maxAttempts 后标记为 FAILED
	MarkOutboxRetry(ctx context.Context, id uint64, maxAttempts int) error
}

// GormStore 基于 PostgreSQL 的实现
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateWithEvent(ctx context.Context, tx *model.Transaction, event *model.OutboxMessage) (*model.Transaction, bool, error) {
	var (
		stored  = tx
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		// 1. 哈希冲突时不插入 (相同内容的交易只保存一次)
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}},
			DoNothing: true,
		}).Create(tx)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing model.Transaction
			if err := db.Where("hash = ?", tx.Hash).First(&existing).Error; err != nil {
				return err
			}
			stored = &existing
			return nil
		}

		// 2. 同一事务写 Outbox
		created = true
		return db.Create(event).Error
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *GormStore) FindByHash(ctx context.Context, hash string) (*model.Transaction, error) {
	var tx model.Transaction
	err := s.db.WithContext(ctx).Where("hash = ?", hash).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *GormStore) UpdateResultWithEvent(ctx context.Context, hash, status string, result []byte, event *model.OutboxMessage) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		// 条件更新，并发请求中只有一个能把交易改为最终状态
		res := db.Model(&model.Transaction{}).
			Where("hash = ? AND status NOT IN ?", hash, types.FinalizedStatusNames()).
			Updates(map[string]interface{}{"status": status, "result": result})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := db.Model(&model.Transaction{}).Where("hash = ?", hash).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrStatusFinalized
		}
		return db.Create(event).Error
	})
}

func (s *GormStore) PendingOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	var messages []model.OutboxMessage
	err := s.db.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("id").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (s *GormStore) MarkOutboxSent(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}

func (s *GormStore) MarkOutboxRetry(ctx context.Context, id uint64, maxAttempts int) error {
	return s.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts": gorm.Expr("attempts + 1"),
			"status": gorm.Expr("CASE WHEN attempts + 1 >= ? THEN ? ELSE status END",
				maxAttempts, model.OutboxFailed),
		}).Error
}
