package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// ユニーク制約違反
var ErrDuplicate = errors.New("duplicate")

// 一覧検索
type ProductListQuery struct {
	Page        int
	Limit       int
	Q           string
	Category    string
	Subcategory string
	MinPrice    *int64
	MaxPrice    *int64
	Sort        string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) (model.Product, error)
	// 依存する明細・セット・割引はFKでカスケード削除
	Delete(ctx context.Context, id int64) error

	UpdatePosition(ctx context.Context, id int64, position int64) error
	AppendImageURL(ctx context.Context, id int64, url string) (model.Product, error)
}
