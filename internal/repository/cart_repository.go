package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	Create(ctx context.Context, customerID *string) (model.Cart, error)
	FindByID(ctx context.Context, cartID int64) (model.Cart, error)
	// 行ロック付き（トランザクション内で使う）
	FindByIDForUpdate(ctx context.Context, cartID int64) (model.Cart, error)
	GetOrCreatePendingByCustomer(ctx context.Context, customerID string) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
}
