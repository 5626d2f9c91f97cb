package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type DiscountGormRepository struct {
	db *gorm.DB
}

func NewDiscountGormRepository(db *gorm.DB) *DiscountGormRepository {
	return &DiscountGormRepository{db: db}
}

func (r *DiscountGormRepository) Create(ctx context.Context, d model.Discount) (model.Discount, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return model.Discount{}, translate(err)
	}
	return d, nil
}

func (r *DiscountGormRepository) FindByCode(ctx context.Context, code string) (model.Discount, error) {
	var d model.Discount
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&d).Error; err != nil {
		return model.Discount{}, translate(err)
	}
	return d, nil
}

func (r *DiscountGormRepository) FindUnusedByProductID(ctx context.Context, productID int64) (model.Discount, bool, error) {
	var d model.Discount
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND used = ?", productID, false).
		First(&d).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Discount{}, false, nil
	}
	if err != nil {
		return model.Discount{}, false, err
	}
	return d, true, nil
}

func (r *DiscountGormRepository) List(ctx context.Context, productID *int64) ([]model.Discount, error) {
	q := r.db.WithContext(ctx).Model(&model.Discount{})
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}

	var items []model.Discount
	if err := q.Order("id desc").Find(&items).Error; err != nil {
		return []model.Discount{}, err
	}
	return items, nil
}

func (r *DiscountGormRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Discount{}, id)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 未使用のときだけ使用済みにする
func (r *DiscountGormRepository) MarkUsed(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Discount{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type CouponGormRepository struct {
	db *gorm.DB
}

func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

func (r *CouponGormRepository) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	// falseはdefault:trueに負けるので作成後に更新
	active := c.Active
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Coupon{}, translate(err)
	}
	if !active {
		return r.SetActive(ctx, c.ID, false)
	}
	return c, nil
}

func (r *CouponGormRepository) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return model.Coupon{}, translate(err)
	}
	return c, nil
}

func (r *CouponGormRepository) List(ctx context.Context) ([]model.Coupon, error) {
	var items []model.Coupon
	if err := r.db.WithContext(ctx).Order("id desc").Find(&items).Error; err != nil {
		return []model.Coupon{}, err
	}
	return items, nil
}

func (r *CouponGormRepository) SetActive(ctx context.Context, id int64, active bool) (model.Coupon, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return model.Coupon{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Coupon{}, repo.ErrNotFound
	}

	var c model.Coupon
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Coupon{}, translate(err)
	}
	return c, nil
}

func (r *CouponGormRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Coupon{}, id)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 条件付きで使用回数を加算
func (r *CouponGormRepository) Redeem(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ? AND active = ?", id, true).
		Where("max_uses IS NULL OR usage_count < max_uses").
		Where("single_use = ? OR usage_count = 0", false).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
