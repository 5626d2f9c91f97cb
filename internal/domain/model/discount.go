package model

import "time"

// 商品ごとの割引
// 未使用の割引は1商品につき1つ（部分ユニークインデックス）
type Discount struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  int64      `gorm:"not null;index" json:"product_id"`
	Percentage int64      `gorm:"not null;check:percentage BETWEEN 1 AND 100" json:"percentage"`
	Code       string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	Used       bool       `gorm:"not null;default:false" json:"used"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}
