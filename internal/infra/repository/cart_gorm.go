package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) Create(ctx context.Context, customerID *string) (model.Cart, error) {
	cart := model.Cart{
		CustomerID: customerID,
		Status:     model.CartStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

func (r *CartGormRepository) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("id = ?", cartID).First(&cart).Error; err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

func (r *CartGormRepository) FindByIDForUpdate(ctx context.Context, cartID int64) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", cartID).
		First(&cart).Error
	if err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

// 顧客のpendingカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreatePendingByCustomer(ctx context.Context, customerID string) (model.Cart, error) {
	cart, err := r.findPending(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if err != repo.ErrNotFound {
		return model.Cart{}, err
	}

	// 無ければ作る
	cart, err = r.Create(ctx, &customerID)
	if err == repo.ErrDuplicate {
		// 同時作成に負けたら勝った方を返す
		return r.findPending(ctx, customerID)
	}
	return cart, err
}

func (r *CartGormRepository) findPending(ctx context.Context, customerID string) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, model.CartStatusPending).
		Order("id desc").
		First(&cart).Error
	if err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

// carts.statusを更新
func (r *CartGormRepository) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("status", status)

	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type CartItemGormRepository struct {
	db *gorm.DB
}

func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// カート明細を一覧取得
func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

func (r *CartItemGormRepository) ListWithProducts(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// 同一商品は数量加算（ON CONFLICTで1文にする）
func (r *CartItemGormRepository) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPrice int64) (model.CartItem, error) {
	now := time.Now()
	item := model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  addQty,
		UnitPrice: unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"updated_at": now,
			}),
		}).
		Create(&item).Error
	if err != nil {
		return model.CartItem{}, translate(err)
	}

	var saved model.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&saved).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return saved, nil
}

// 明細の数量を更新
func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, cartID int64, cartItemID int64, qty int64) (model.CartItem, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND cart_id = ?", cartItemID, cartID).
		Update("quantity", qty)

	if res.Error != nil {
		return model.CartItem{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.CartItem{}, repo.ErrNotFound
	}

	var item model.CartItem
	if err := r.db.WithContext(ctx).Where("id = ?", cartItemID).First(&item).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return item, nil
}

// 明細を削除
func (r *CartItemGormRepository) DeleteByID(ctx context.Context, cartID int64, cartItemID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", cartItemID, cartID).
		Delete(&model.CartItem{})

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
