package model

import "time"

type CartStatus string

const (
	CartStatusPending   CartStatus = "pending"
	CartStatusPaid      CartStatus = "paid"
	CartStatusCancelled CartStatus = "cancelled"
)

// 1顧客につきpendingは1つ（部分ユニークインデックス）
type Cart struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID *string    `gorm:"type:varchar(255);index" json:"customer_id"`
	Status     CartStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
