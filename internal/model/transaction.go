package model

import (
	"time"
)

// Transaction 已构建的交易记录表
type Transaction struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Hash             string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"hash"`
	Network          string    `gorm:"type:varchar(20);not null" json:"network"`
	Status           string    `gorm:"type:varchar(32);not null;default:'New';index" json:"status"` // New, Pending, Accepted, Rejected ...
	RecipeDigest     string    `gorm:"type:varchar(64);index" json:"recipe_digest"`
	InstructionCount int       `gorm:"not null;default:0" json:"instruction_count"`
	Payload          []byte    `gorm:"type:text;not null" json:"-"` // 序列化后的 Transaction JSON
	Result           []byte    `gorm:"type:text" json:"-"`          // 网络返回的执行结果
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
