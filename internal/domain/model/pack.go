package model

import "time"

// 商品セット。価格は固定
type Pack struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Price       int64      `gorm:"not null" json:"price"`
	Items       []PackItem `gorm:"foreignKey:PackID" json:"items"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type PackItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	PackID    int64 `gorm:"not null;index" json:"pack_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`
	Quantity  int64 `gorm:"not null;check:quantity > 0" json:"quantity"`

	Pack    *Pack    `gorm:"foreignKey:PackID;constraint:OnDelete:CASCADE" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}
