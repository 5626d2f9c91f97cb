package model

import (
	"time"

	"github.com/lib/pq"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// 最小通貨単位
	Price       int64  `gorm:"not null" json:"price"`
	Category    string `gorm:"type:varchar(100);not null;default:'';index" json:"category"`
	Subcategory string `gorm:"type:varchar(100);not null;default:'';index" json:"subcategory"`
	Stock       int64  `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	// 手動並び順
	Position   int64 `gorm:"not null;default:0;index" json:"position"`
	SalesCount int64 `gorm:"not null;default:0;check:sales_count >= 0" json:"sales_count"`

	//メディア
	ImageURLs pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"image_urls"`
	VideoURLs pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"video_urls"`
	MediaMeta string         `gorm:"type:text" json:"media_meta"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
