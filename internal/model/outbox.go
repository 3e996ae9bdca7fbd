package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

const (
	OutboxPending = "PENDING"
	OutboxSent    = "SENT"
	OutboxFailed  = "FAILED"
)

// OutboxMessage 本地消息表，与业务数据在同一事务中写入
type OutboxMessage struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string         `gorm:"type:varchar(255);not null" json:"topic"`
	Key       string         `gorm:"type:varchar(255)" json:"key"` // 分区键，这里使用交易哈希
	Payload   []byte         `gorm:"type:text;not null" json:"payload"`
	Status    string         `gorm:"type:varchar(50);not null;default:'PENDING';index" json:"status"` // PENDING, SENT, FAILED
	Attempts  int            `gorm:"not null;default:0" json:"attempts"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

// NewOutboxMessage 构造一条待发送的消息
func NewOutboxMessage(topic, key string, payload interface{}) (*OutboxMessage, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxMessage{
		Topic:   topic,
		Key:     key,
		Payload: payloadBytes,
		Status:  OutboxPending,
	}, nil
}

// CreateOutboxMessage 在同一个事务中创建业务数据和 Outbox 消息
func CreateOutboxMessage(tx *gorm.DB, topic, key string, payload interface{}) error {
	msg, err := NewOutboxMessage(topic, key, payload)
	if err != nil {
		return err
	}
	return tx.Create(msg).Error
}
