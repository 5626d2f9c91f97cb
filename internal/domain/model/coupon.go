package model

import "time"

type CouponKind string

const (
	CouponKindPercentage CouponKind = "percentage"
	CouponKindFixed      CouponKind = "fixed"
)

// カート全体のクーポン。codeは大文字で保存
type Coupon struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code       string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Kind       CouponKind `gorm:"type:varchar(20);not null" json:"kind"`
	Value      int64      `gorm:"not null" json:"value"`
	SingleUse  bool       `gorm:"not null;default:false" json:"single_use"`
	MaxUses    *int64     `json:"max_uses"` // nullなら無制限
	UsageCount int64      `gorm:"not null;default:0" json:"usage_count"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	Active     bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
