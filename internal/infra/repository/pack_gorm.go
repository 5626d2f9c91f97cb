package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type PackGormRepository struct {
	db *gorm.DB
}

func NewPackGormRepository(db *gorm.DB) *PackGormRepository {
	return &PackGormRepository{db: db}
}

// 構成商品も一緒に作成
func (r *PackGormRepository) Create(ctx context.Context, p model.Pack) (model.Pack, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Pack{}, translate(err)
	}
	return p, nil
}

func (r *PackGormRepository) Update(ctx context.Context, p model.Pack) error {
	res := r.db.WithContext(ctx).Model(&model.Pack{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PackGormRepository) ReplaceItems(ctx context.Context, packID int64, items []model.PackItem) error {
	if err := r.db.WithContext(ctx).Where("pack_id = ?", packID).Delete(&model.PackItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([]model.PackItem, 0, len(items))
	for _, it := range items {
		rows = append(rows, model.PackItem{
			PackID:    packID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

func (r *PackGormRepository) FindByID(ctx context.Context, id int64) (model.Pack, error) {
	var p model.Pack
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&p, id).Error
	if err != nil {
		return model.Pack{}, translate(err)
	}
	return p, nil
}

func (r *PackGormRepository) List(ctx context.Context) ([]model.Pack, error) {
	var packs []model.Pack
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Order("id asc").
		Find(&packs).Error
	if err != nil {
		return []model.Pack{}, err
	}
	return packs, nil
}

func (r *PackGormRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Pack{}, id)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
