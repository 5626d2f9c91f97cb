package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

type SaleGormRepository struct {
	db *gorm.DB
}

func NewSaleGormRepository(db *gorm.DB) *SaleGormRepository {
	return &SaleGormRepository{db: db}
}

// 明細はassociationで一緒に入る
func (r *SaleGormRepository) Create(ctx context.Context, s model.Sale) error {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *SaleGormRepository) FindByID(ctx context.Context, id string) (model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return model.Sale{}, translate(err)
	}
	return s, nil
}
