package model

import "time"

type SaleStatus string

const SaleStatusCompleted SaleStatus = "completed"

// 店頭販売の支払い方法
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

// 店頭販売（レシート）
type Sale struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	Total         int64      `gorm:"not null" json:"total"`
	PaymentMethod string     `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        SaleStatus `gorm:"type:varchar(20);not null" json:"status"`
	Items         []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt     time.Time  `gorm:"not null;index" json:"created_at"`
}
