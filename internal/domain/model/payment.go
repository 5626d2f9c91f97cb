package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

type Payment struct {
	ID             int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID         int64         `gorm:"not null;index" json:"cart_id"`
	Amount         int64         `gorm:"not null" json:"amount"`
	DiscountAmount int64         `gorm:"not null;default:0" json:"discount_amount"`
	PromotionCode  *string       `gorm:"type:varchar(64)" json:"promotion_code"`
	Method         string        `gorm:"type:varchar(50);not null" json:"method"`
	Status         PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt      time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Cart *Cart `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"-"`
}
