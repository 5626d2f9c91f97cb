package db

import (
	"fmt"

	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
}

// AutoMigrateでは作れない部分インデックス
var partialIndexes = []string{
	// 顧客ごとにpendingカートは1つ
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_pending_customer ON carts (customer_id) WHERE status = 'pending' AND customer_id IS NOT NULL`,
	// 商品ごとに未使用の割引は1つ
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_discounts_unused_product ON discounts (product_id) WHERE used = false`,
}

// Migrate はテーブルとインデックスを揃える
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.InventoryAdjustment{},
		&model.Cart{},
		&model.CartItem{},
		&model.Discount{},
		&model.Coupon{},
		&model.Pack{},
		&model.PackItem{},
		&model.Payment{},
		&model.Shipment{},
		&model.Sale{},
		&model.SaleItem{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
