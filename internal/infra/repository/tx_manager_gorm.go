package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	products  repo.ProductRepository
	inventory repo.InventoryRepository
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	payments  repo.PaymentRepository
	shipments repo.ShipmentRepository
	sales     repo.SaleRepository
	packs     repo.PackRepository
	discounts repo.DiscountRepository
	coupons   repo.CouponRepository
	auditLogs repo.AuditLogRepository
}

func (r *txReposGorm) Products() repo.ProductRepository { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository { return r.inventory }
func (r *txReposGorm) Carts() repo.CartRepository { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository { return r.cartItems }
func (r *txReposGorm) Payments() repo.PaymentRepository { return r.payments }
func (r *txReposGorm) Shipments() repo.ShipmentRepository { return r.shipments }
func (r *txReposGorm) Sales() repo.SaleRepository { return r.sales }
func (r *txReposGorm) Packs() repo.PackRepository { return r.packs }
func (r *txReposGorm) Discounts() repo.DiscountRepository { return r.discounts }
func (r *txReposGorm) Coupons() repo.CouponRepository { return r.coupons }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			products:  NewProductGormRepository(tx),
			inventory: NewInventoryGormRepository(tx),
			carts:     NewCartGormRepository(tx),
			cartItems: NewCartItemGormRepository(tx),
			payments:  NewPaymentGormRepository(tx),
			shipments: NewShipmentGormRepository(tx),
			sales:     NewSaleGormRepository(tx),
			packs:     NewPackGormRepository(tx),
			discounts: NewDiscountGormRepository(tx),
			coupons:   NewCouponGormRepository(tx),
			auditLogs: NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
