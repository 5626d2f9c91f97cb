package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// ID昇順でFOR UPDATE。存在しないIDは結果に含まれない
func (r *InventoryGormRepository) LockProducts(ctx context.Context, productIDs []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var products []model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", productIDs).
		Order("id asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// 在庫が足りるときだけ減らす
func (r *InventoryGormRepository) DecreaseStockAndCountSale(ctx context.Context, productID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]interface{}{
			"stock":       gorm.Expr("stock - ?", qty),
			"sales_count": gorm.Expr("sales_count + ?", qty),
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}
