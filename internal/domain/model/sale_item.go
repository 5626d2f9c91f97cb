package model

// 販売明細。商品名と単価は販売時点のスナップショット
type SaleItem struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	SaleID      string `gorm:"type:uuid;not null;index" json:"-"`
	ProductID   int64  `gorm:"not null;index" json:"product_id"`
	ProductName string `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int64  `gorm:"not null" json:"quantity"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`
	Subtotal    int64  `gorm:"not null" json:"subtotal"`

	Sale *Sale `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"-"`
}
