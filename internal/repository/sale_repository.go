package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type SaleRepository interface {
	// 明細ごと保存
	Create(ctx context.Context, s model.Sale) error
	FindByID(ctx context.Context, id string) (model.Sale, error)
}
