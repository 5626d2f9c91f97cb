package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Products() ProductRepository
	Inventory() InventoryRepository
	Carts() CartRepository
	CartItems() CartItemRepository
	Payments() PaymentRepository
	Shipments() ShipmentRepository
	Sales() SaleRepository
	Packs() PackRepository
	Discounts() DiscountRepository
	Coupons() CouponRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
