package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type PackRepository interface {
	Create(ctx context.Context, p model.Pack) (model.Pack, error)
	Update(ctx context.Context, p model.Pack) error
	// 構成商品は全削除してから入れ直す
	ReplaceItems(ctx context.Context, packID int64, items []model.PackItem) error
	FindByID(ctx context.Context, id int64) (model.Pack, error)
	List(ctx context.Context) ([]model.Pack, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
