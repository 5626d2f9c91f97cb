package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type InventoryRepository interface {
	// 商品行をID昇順でロックして取得（トランザクション内で使う）
	LockProducts(ctx context.Context, productIDs []int64) (map[int64]model.Product, error)

	// 在庫が足りるときだけ減算し、販売数を加算
	DecreaseStockAndCountSale(ctx context.Context, productID int64, qty int64) (bool, error)

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
