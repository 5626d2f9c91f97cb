package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// Productをpreloadして返す。削除済み商品はnil
	ListWithProducts(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量を加算。単価は初回のまま
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPrice int64) (model.CartItem, error)
	// 別カートの明細ならErrNotFound
	UpdateQuantity(ctx context.Context, cartID int64, cartItemID int64, qty int64) (model.CartItem, error)
	// 削除件数を返す（0件はエラーにしない）
	DeleteByID(ctx context.Context, cartID int64, cartItemID int64) (int64, error)
}
