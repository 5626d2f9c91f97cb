package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Payment{}, translate(err)
	}
	return p, nil
}

func (r *PaymentGormRepository) FindByID(ctx context.Context, id int64) (model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return model.Payment{}, translate(err)
	}
	return p, nil
}

func (r *PaymentGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return model.Payment{}, translate(err)
	}
	return p, nil
}

func (r *PaymentGormRepository) ExistsPendingByCartID(ctx context.Context, cartID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("cart_id = ? AND status = ?", cartID, model.PaymentStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PaymentGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.Payment, error) {
	var items []model.Payment
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.Payment{}, err
	}
	return items, nil
}

func (r *PaymentGormRepository) UpdateStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", id).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type ShipmentGormRepository struct {
	db *gorm.DB
}

func NewShipmentGormRepository(db *gorm.DB) *ShipmentGormRepository {
	return &ShipmentGormRepository{db: db}
}

func (r *ShipmentGormRepository) Create(ctx context.Context, s model.Shipment) (model.Shipment, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Shipment{}, translate(err)
	}
	return s, nil
}

func (r *ShipmentGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.Shipment, error) {
	var items []model.Shipment
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.Shipment{}, err
	}
	return items, nil
}
