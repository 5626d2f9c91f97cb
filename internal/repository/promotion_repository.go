package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type DiscountRepository interface {
	Create(ctx context.Context, d model.Discount) (model.Discount, error)
	FindByCode(ctx context.Context, code string) (model.Discount, error)
	FindUnusedByProductID(ctx context.Context, productID int64) (model.Discount, bool, error)
	List(ctx context.Context, productID *int64) ([]model.Discount, error)
	Delete(ctx context.Context, id int64) (int64, error)
	// 未使用のときだけ使用済みにする
	MarkUsed(ctx context.Context, id int64) (bool, error)
}

type CouponRepository interface {
	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	SetActive(ctx context.Context, id int64, active bool) (model.Coupon, error)
	Delete(ctx context.Context, id int64) (int64, error)
	// 上限・単回利用を満たすときだけ使用回数を加算
	Redeem(ctx context.Context, id int64) (bool, error)
}
