package usecase

import (
	"context"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

// CartUsecase はカート明細の追加・変更・削除と表示用の集計を行う。
type CartUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
) *CartUsecase {
	return &CartUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
	}
}

// 表示用の明細。商品が消えていればProductはnil
type CartLine struct {
	Item    model.CartItem `json:"item"`
	Product *model.Product `json:"product"`
}

type EnrichedCart struct {
	Cart   model.Cart     `json:"cart"`
	Items  []CartLine     `json:"items"`
	Totals pricing.Totals `json:"totals"`
}

type RemoveResult struct {
	Removed int64 `json:"removed"`
}

func (u *CartUsecase) CreateCart(ctx context.Context, customerID *string) (model.Cart, error) {
	if customerID != nil {
		id := strings.TrimSpace(*customerID)
		if id == "" {
			customerID = nil
		} else {
			customerID = &id
		}
	}

	cart, err := u.cartRepo.Create(ctx, customerID)
	if err != nil {
		return model.Cart{}, storeErr(err)
	}
	return cart, nil
}

// 顧客のpendingカート（無ければ作る）
func (u *CartUsecase) GetOrCreatePendingCart(ctx context.Context, customerID string) (model.Cart, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return model.Cart{}, apperr.Validation(apperr.CodeInvalidInput, "customer id required")
	}

	cart, err := u.cartRepo.GetOrCreatePendingByCustomer(ctx, customerID)
	if err != nil {
		return model.Cart{}, storeErr(err)
	}
	return cart, nil
}

// AddItem は追加時点の価格で明細を作る。既存明細は数量だけ加算
func (u *CartUsecase) AddItem(ctx context.Context, cartID, productID, qty int64) (model.CartItem, error) {
	if err := validateQuantity(qty); err != nil {
		return model.CartItem{}, err
	}

	var out model.CartItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := lockEditableCart(ctx, r, cartID); err != nil {
			return err
		}

		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return notFoundOr(err, apperr.CodeProductNotFound, "product not found")
		}

		item, err := r.CartItems().UpsertByCartAndProduct(ctx, cartID, productID, qty, p.Price)
		if err != nil {
			return storeErr(err)
		}
		out = item
		return nil
	})
	if err != nil {
		return model.CartItem{}, storeErr(err)
	}
	return out, nil
}

func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, cartID, lineID, qty int64) (model.CartItem, error) {
	if err := validateQuantity(qty); err != nil {
		return model.CartItem{}, err
	}

	var out model.CartItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := lockEditableCart(ctx, r, cartID); err != nil {
			return err
		}

		item, err := r.CartItems().UpdateQuantity(ctx, cartID, lineID, qty)
		if err != nil {
			return notFoundOr(err, apperr.CodeLineNotFound, "line not found in cart")
		}
		out = item
		return nil
	})
	if err != nil {
		return model.CartItem{}, storeErr(err)
	}
	return out, nil
}

// 存在しない明細・カートの削除はRemoved=0で成功
func (u *CartUsecase) RemoveItem(ctx context.Context, cartID, lineID int64) (RemoveResult, error) {
	var out RemoveResult
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := lockEditableCart(ctx, r, cartID)
		if apperr.HasCode(err, apperr.CodeCartNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		n, err := r.CartItems().DeleteByID(ctx, cartID, lineID)
		if err != nil {
			return storeErr(err)
		}
		out.Removed = n
		return nil
	})
	if err != nil {
		return RemoveResult{}, storeErr(err)
	}
	return out, nil
}

func (u *CartUsecase) GetEnrichedCart(ctx context.Context, cartID int64) (EnrichedCart, error) {
	cart, err := u.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return EnrichedCart{}, notFoundOr(err, apperr.CodeCartNotFound, "cart not found")
	}

	items, err := u.cartItemRepo.ListWithProducts(ctx, cartID)
	if err != nil {
		return EnrichedCart{}, storeErr(err)
	}

	lines := make([]CartLine, 0, len(items))
	priced := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		p := it.Product
		it.Product = nil
		lines = append(lines, CartLine{Item: it, Product: p})
		priced = append(priced, pricing.Line{ProductID: it.ProductID, UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}

	totals, err := pricing.ComputeCartTotal(priced, nil)
	if err != nil {
		return EnrichedCart{}, err
	}

	return EnrichedCart{Cart: cart, Items: lines, Totals: totals}, nil
}

// pending → cancelled
func (u *CartUsecase) CancelCart(ctx context.Context, cartID int64) (model.Cart, error) {
	var out model.Cart

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := lockEditableCart(ctx, r, cartID)
		if err != nil {
			return err
		}

		if err := r.Carts().UpdateStatus(ctx, cartID, model.CartStatusCancelled); err != nil {
			return storeErr(err)
		}
		cart.Status = model.CartStatusCancelled
		out = cart
		return nil
	})
	if err != nil {
		return model.Cart{}, storeErr(err)
	}
	return out, nil
}

// AuthorizeCart は顧客に紐づいたカートを本人以外から隠す。
// 匿名カートと存在しないカートはそのまま通す（存在チェックは各操作で行う）
func (u *CartUsecase) AuthorizeCart(ctx context.Context, cartID int64, customerID string) error {
	cart, err := u.cartRepo.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return nil
	}
	if err != nil {
		return storeErr(err)
	}
	if cart.CustomerID == nil || *cart.CustomerID == customerID {
		return nil
	}
	return apperr.NotFound(apperr.CodeCartNotFound, "cart not found")
}

// 行ロックを取り、pendingかつ支払い待ちが無いことを確かめる。
// 支払い待ちの間は明細も状態も変えられない
func lockEditableCart(ctx context.Context, r repo.TxRepos, cartID int64) (model.Cart, error) {
	cart, err := r.Carts().FindByIDForUpdate(ctx, cartID)
	if err != nil {
		return model.Cart{}, notFoundOr(err, apperr.CodeCartNotFound, "cart not found")
	}
	if cart.Status != model.CartStatusPending {
		return model.Cart{}, cartNotPending(cart)
	}

	inProgress, err := r.Payments().ExistsPendingByCartID(ctx, cartID)
	if err != nil {
		return model.Cart{}, storeErr(err)
	}
	if inProgress {
		return model.Cart{}, apperr.Conflict(apperr.CodeCheckoutInProgress, "cart has a pending payment").
			With("cart_id", cartID)
	}
	return cart, nil
}

func validateQuantity(qty int64) error {
	if qty <= 0 {
		return apperr.Validation(apperr.CodeInvalidQuantity, "quantity must be positive").
			With("quantity", qty)
	}
	if qty > pricing.MaxQuantity {
		return apperr.Validation(apperr.CodeInvalidQuantity, "quantity is too large").
			With("quantity", qty).With("max", pricing.MaxQuantity)
	}
	return nil
}

func cartNotPending(cart model.Cart) error {
	return apperr.Conflict(apperr.CodeCartNotPending, "cart is not pending").
		With("cart_id", cart.ID).
		With("status", string(cart.Status))
}
