package usecase

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Repositoryモック
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	updated, _ := args.Get(0).(model.Product)
	return updated, args.Error(1)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProductRepoMock) UpdatePosition(ctx context.Context, id int64, position int64) error {
	return m.Called(ctx, id, position).Error(0)
}

func (m *ProductRepoMock) AppendImageURL(ctx context.Context, id int64, url string) (model.Product, error) {
	args := m.Called(ctx, id, url)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) LockProducts(ctx context.Context, productIDs []int64) (map[int64]model.Product, error) {
	args := m.Called(ctx, productIDs)
	locked, _ := args.Get(0).(map[int64]model.Product)
	return locked, args.Error(1)
}

func (m *InventoryRepoMock) DecreaseStockAndCountSale(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return m.Called(ctx, adj).Error(0)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) Create(ctx context.Context, customerID *string) (model.Cart, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	args := m.Called(ctx, cartID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByIDForUpdate(ctx context.Context, cartID int64) (model.Cart, error) {
	args := m.Called(ctx, cartID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) GetOrCreatePendingByCustomer(ctx context.Context, customerID string) (model.Cart, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	return m.Called(ctx, cartID, status).Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) ListWithProducts(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID, productID, addQty, unitPrice int64) (model.CartItem, error) {
	args := m.Called(ctx, cartID, productID, addQty, unitPrice)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartID, cartItemID, qty int64) (model.CartItem, error) {
	args := m.Called(ctx, cartID, cartItemID, qty)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartID, cartItemID int64) (int64, error) {
	args := m.Called(ctx, cartID, cartItemID)
	return args.Get(0).(int64), args.Error(1)
}

type DiscountRepoMock struct{ mock.Mock }

func (m *DiscountRepoMock) Create(ctx context.Context, d model.Discount) (model.Discount, error) {
	args := m.Called(ctx, d)
	out, _ := args.Get(0).(model.Discount)
	return out, args.Error(1)
}

func (m *DiscountRepoMock) FindByCode(ctx context.Context, code string) (model.Discount, error) {
	args := m.Called(ctx, code)
	out, _ := args.Get(0).(model.Discount)
	return out, args.Error(1)
}

func (m *DiscountRepoMock) FindUnusedByProductID(ctx context.Context, productID int64) (model.Discount, bool, error) {
	args := m.Called(ctx, productID)
	out, _ := args.Get(0).(model.Discount)
	return out, args.Bool(1), args.Error(2)
}

func (m *DiscountRepoMock) List(ctx context.Context, productID *int64) ([]model.Discount, error) {
	args := m.Called(ctx, productID)
	out, _ := args.Get(0).([]model.Discount)
	return out, args.Error(1)
}

func (m *DiscountRepoMock) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DiscountRepoMock) MarkUsed(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type CouponRepoMock struct{ mock.Mock }

func (m *CouponRepoMock) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(model.Coupon)
	return out, args.Error(1)
}

func (m *CouponRepoMock) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	args := m.Called(ctx, code)
	out, _ := args.Get(0).(model.Coupon)
	return out, args.Error(1)
}

func (m *CouponRepoMock) List(ctx context.Context) ([]model.Coupon, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]model.Coupon)
	return out, args.Error(1)
}

func (m *CouponRepoMock) SetActive(ctx context.Context, id int64, active bool) (model.Coupon, error) {
	args := m.Called(ctx, id, active)
	out, _ := args.Get(0).(model.Coupon)
	return out, args.Error(1)
}

func (m *CouponRepoMock) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CouponRepoMock) Redeem(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type PackRepoMock struct{ mock.Mock }

func (m *PackRepoMock) Create(ctx context.Context, p model.Pack) (model.Pack, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Pack)
	return out, args.Error(1)
}

func (m *PackRepoMock) Update(ctx context.Context, p model.Pack) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PackRepoMock) ReplaceItems(ctx context.Context, packID int64, items []model.PackItem) error {
	return m.Called(ctx, packID, items).Error(0)
}

func (m *PackRepoMock) FindByID(ctx context.Context, id int64) (model.Pack, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(model.Pack)
	return out, args.Error(1)
}

func (m *PackRepoMock) List(ctx context.Context) ([]model.Pack, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]model.Pack)
	return out, args.Error(1)
}

func (m *PackRepoMock) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Payment)
	return out, args.Error(1)
}

func (m *PaymentRepoMock) FindByID(ctx context.Context, id int64) (model.Payment, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(model.Payment)
	return out, args.Error(1)
}

func (m *PaymentRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.Payment, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(model.Payment)
	return out, args.Error(1)
}

func (m *PaymentRepoMock) ExistsPendingByCartID(ctx context.Context, cartID int64) (bool, error) {
	args := m.Called(ctx, cartID)
	return args.Bool(0), args.Error(1)
}

func (m *PaymentRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.Payment, error) {
	args := m.Called(ctx, cartID)
	out, _ := args.Get(0).([]model.Payment)
	return out, args.Error(1)
}

func (m *PaymentRepoMock) UpdateStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type ShipmentRepoMock struct{ mock.Mock }

func (m *ShipmentRepoMock) Create(ctx context.Context, s model.Shipment) (model.Shipment, error) {
	args := m.Called(ctx, s)
	out, _ := args.Get(0).(model.Shipment)
	return out, args.Error(1)
}

func (m *ShipmentRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.Shipment, error) {
	args := m.Called(ctx, cartID)
	out, _ := args.Get(0).([]model.Shipment)
	return out, args.Error(1)
}

type SaleRepoMock struct{ mock.Mock }

func (m *SaleRepoMock) Create(ctx context.Context, s model.Sale) error {
	return m.Called(ctx, s).Error(0)
}

func (m *SaleRepoMock) FindByID(ctx context.Context, id string) (model.Sale, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(model.Sale)
	return out, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]model.AuditLog)
	return out, args.Error(1)
}

// =====================
// Tx（fnをそのまま実行）
// =====================

type txRepos struct {
	products  *ProductRepoMock
	inventory *InventoryRepoMock
	carts     *CartRepoMock
	cartItems *CartItemRepoMock
	payments  *PaymentRepoMock
	shipments *ShipmentRepoMock
	sales     *SaleRepoMock
	packs     *PackRepoMock
	discounts *DiscountRepoMock
	coupons   *CouponRepoMock
	auditLogs *AuditRepoMock
}

func newTxRepos() *txRepos {
	return &txRepos{
		products:  &ProductRepoMock{},
		inventory: &InventoryRepoMock{},
		carts:     &CartRepoMock{},
		cartItems: &CartItemRepoMock{},
		payments:  &PaymentRepoMock{},
		shipments: &ShipmentRepoMock{},
		sales:     &SaleRepoMock{},
		packs:     &PackRepoMock{},
		discounts: &DiscountRepoMock{},
		coupons:   &CouponRepoMock{},
		auditLogs: &AuditRepoMock{},
	}
}

func (r *txRepos) Products() repo.ProductRepository { return r.products }
func (r *txRepos) Inventory() repo.InventoryRepository { return r.inventory }
func (r *txRepos) Carts() repo.CartRepository { return r.carts }
func (r *txRepos) CartItems() repo.CartItemRepository { return r.cartItems }
func (r *txRepos) Payments() repo.PaymentRepository { return r.payments }
func (r *txRepos) Shipments() repo.ShipmentRepository { return r.shipments }
func (r *txRepos) Sales() repo.SaleRepository { return r.sales }
func (r *txRepos) Packs() repo.PackRepository { return r.packs }
func (r *txRepos) Discounts() repo.DiscountRepository { return r.discounts }
func (r *txRepos) Coupons() repo.CouponRepository { return r.coupons }
func (r *txRepos) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

type fakeTx struct {
	repos *txRepos
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	f.calls++
	return fn(f.repos)
}

// =====================
// その他のポート
// =====================

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct {
	ids []string
	i   int
}

func (g *seqIDs) NewID() string {
	id := g.ids[g.i%len(g.ids)]
	g.i++
	return id
}

type EventsMock struct{ mock.Mock }

func (m *EventsMock) Publish(ctx context.Context, topic string, payload any) error {
	return m.Called(ctx, topic, payload).Error(0)
}

type InvalidatorMock struct{ mock.Mock }

func (m *InvalidatorMock) Invalidate(ctx context.Context, ids ...int64) {
	m.Called(ctx, ids)
}

type BlobStoreMock struct{ mock.Mock }

func (m *BlobStoreMock) Put(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, objectPath, data, contentType)
	return args.String(0), args.Error(1)
}

type ThumbnailerMock struct{ mock.Mock }

func (m *ThumbnailerMock) Thumbnail(data []byte) ([]byte, error) {
	args := m.Called(data)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

type ReceiptRendererMock struct{ mock.Mock }

func (m *ReceiptRendererMock) Render(sale model.Sale) ([]byte, error) {
	args := m.Called(sale)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}
