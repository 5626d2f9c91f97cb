package usecase

import (
	"context"
	"sort"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleUsecase は店頭販売の在庫減算とレシートを扱う。
type SaleUsecase struct {
	tx       repo.TransactionManager
	saleRepo repo.SaleRepository
	cache    ProductCacheInvalidator
	events   EventPublisher
	receipts ReceiptRenderer
	ids      IDGenerator
	clock    Clock
	log      *zap.Logger
}

func NewSaleUsecase(
	tx repo.TransactionManager,
	saleRepo repo.SaleRepository,
	cache ProductCacheInvalidator,
	events EventPublisher,
	receipts ReceiptRenderer,
	ids IDGenerator,
	clock Clock,
	log *zap.Logger,
) *SaleUsecase {
	return &SaleUsecase{
		tx:       tx,
		saleRepo: saleRepo,
		cache:    cache,
		events:   events,
		receipts: receipts,
		ids:      ids,
		clock:    clock,
		log:      log,
	}
}

type SaleLineInput struct {
	ProductID int64
	Quantity  int64
	UnitPrice int64
}

type RecordSaleInput struct {
	Lines         []SaleLineInput
	Total         int64
	PaymentMethod string
}

var saleMethods = map[string]bool{
	model.PaymentMethodCash:     true,
	model.PaymentMethodCard:     true,
	model.PaymentMethodTransfer: true,
}

// RecordSale は全明細の在庫を確認してから減算する（どれか足りなければ何も変えない）。
func (u *SaleUsecase) RecordSale(ctx context.Context, in RecordSaleInput) (model.Sale, error) {
	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if !saleMethods[method] {
		return model.Sale{}, apperr.Validation(apperr.CodeInvalidPaymentMethod, "payment method must be cash, card or transfer").
			With("payment_method", in.PaymentMethod)
	}
	if in.Total <= 0 {
		return model.Sale{}, apperr.Validation(apperr.CodeInvalidTotal, "total must be positive").
			With("actual", in.Total)
	}
	if len(in.Lines) == 0 {
		return model.Sale{}, apperr.Validation(apperr.CodeInvalidInput, "at least one line is required")
	}

	var expected int64
	for i, l := range in.Lines {
		if l.Quantity <= 0 || l.Quantity > pricing.MaxQuantity {
			return model.Sale{}, apperr.Validation(apperr.CodeInvalidQuantity, "quantity must be positive and within limit").
				With("index", i).With("quantity", l.Quantity)
		}
		if l.UnitPrice < 0 {
			return model.Sale{}, apperr.Validation(apperr.CodeInvalidInput, "unit price must be >= 0").
				With("index", i).With("unit_price", l.UnitPrice)
		}
		amount, err := pricing.LineAmount(l.UnitPrice, l.Quantity)
		if err != nil {
			return model.Sale{}, err
		}
		if expected, err = pricing.AddAmount(expected, amount); err != nil {
			return model.Sale{}, err
		}
	}
	if expected != in.Total {
		return model.Sale{}, apperr.Validation(apperr.CodeInvalidTotal, "total does not match lines").
			With("expected", expected).With("actual", in.Total)
	}

	productIDs := uniqueSortedIDs(in.Lines)
	sale := model.Sale{
		ID:            u.ids.NewID(),
		Total:         expected,
		PaymentMethod: method,
		Status:        model.SaleStatusCompleted,
		CreatedAt:     u.clock.Now(),
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//ID昇順でロック
		locked, err := r.Inventory().LockProducts(ctx, productIDs)
		if err != nil {
			return storeErr(err)
		}

		//事前検証（入力順、同一商品は数量を合算）
		requested := make(map[int64]int64, len(productIDs))
		for _, l := range in.Lines {
			p, ok := locked[l.ProductID]
			if !ok {
				return apperr.NotFound(apperr.CodeProductNotFound, "product not found").
					With("product_id", l.ProductID)
			}
			requested[l.ProductID] += l.Quantity
			if requested[l.ProductID] > p.Stock {
				return insufficientStock(l.ProductID, p.Stock, requested[l.ProductID])
			}
		}

		//適用
		items := make([]model.SaleItem, 0, len(in.Lines))
		for _, l := range in.Lines {
			ok, err := r.Inventory().DecreaseStockAndCountSale(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return storeErr(err)
			}
			if !ok {
				return insufficientStock(l.ProductID, locked[l.ProductID].Stock, requested[l.ProductID])
			}

			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID: l.ProductID,
				Delta:     -l.Quantity,
				Reason:    "sale:" + sale.ID,
				CreatedAt: sale.CreatedAt,
			}); err != nil {
				return storeErr(err)
			}

			items = append(items, model.SaleItem{
				SaleID:      sale.ID,
				ProductID:   l.ProductID,
				ProductName: locked[l.ProductID].Name,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				Subtotal:    l.UnitPrice * l.Quantity,
			})
		}

		sale.Items = items
		if err := r.Sales().Create(ctx, sale); err != nil {
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return model.Sale{}, storeErr(err)
	}

	u.cache.Invalidate(ctx, productIDs...)
	if err := u.events.Publish(ctx, TopicSaleCompleted, sale); err != nil {
		u.log.Warn("publish sale event failed", zap.String("sale_id", sale.ID), zap.Error(err))
	}

	return sale, nil
}

func (u *SaleUsecase) GetReceipt(ctx context.Context, id string) (model.Sale, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Sale{}, apperr.NotFound(apperr.CodeSaleNotFound, "sale not found")
	}

	s, err := u.saleRepo.FindByID(ctx, id)
	if err != nil {
		return model.Sale{}, notFoundOr(err, apperr.CodeSaleNotFound, "sale not found")
	}
	return s, nil
}

func (u *SaleUsecase) RenderReceiptPDF(ctx context.Context, id string) ([]byte, error) {
	s, err := u.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.receipts.Render(s)
}

func insufficientStock(productID, available, requested int64) error {
	return apperr.Conflict(apperr.CodeInsufficientStock, "insufficient stock").
		With("product_id", productID).
		With("available", available).
		With("requested", requested)
}

func uniqueSortedIDs(lines []SaleLineInput) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
