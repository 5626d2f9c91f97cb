package model

import "time"

type ShipmentStatus string

const (
	ShipmentStatusPreparing ShipmentStatus = "preparing"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

type Shipment struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64          `gorm:"not null;index" json:"cart_id"`
	PaymentID int64          `gorm:"not null;index" json:"payment_id"`
	Address   string         `gorm:"type:text;not null" json:"address"`
	Courier   string         `gorm:"type:varchar(100)" json:"courier"`
	Status    ShipmentStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`

	Cart    *Cart    `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"-"`
	Payment *Payment `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE" json:"-"`
}
