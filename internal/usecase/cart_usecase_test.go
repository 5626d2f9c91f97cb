package usecase

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartDeps struct {
	tx        *fakeTx
	carts     *CartRepoMock
	cartItems *CartItemRepoMock
}

func newCartUC() (*CartUsecase, cartDeps) {
	d := cartDeps{
		tx:        &fakeTx{repos: newTxRepos()},
		carts:     &CartRepoMock{},
		cartItems: &CartItemRepoMock{},
	}
	return NewCartUsecase(d.tx, d.carts, d.cartItems), d
}

func pendingCartOf(id int64) model.Cart {
	return model.Cart{ID: id, Status: model.CartStatusPending}
}

// 行ロック付きで読めて、支払い待ちが無いカート
func editableCart(ctx context.Context, r *txRepos, id int64) {
	r.carts.On("FindByIDForUpdate", ctx, id).Return(pendingCartOf(id), nil)
	r.payments.On("ExistsPendingByCartID", ctx, id).Return(false, nil)
}

func TestCartUsecase_AddItem_UsesCurrentPriceAsSnapshot(t *testing.T) {
	ctx := context.Background()
	uc, d := newCartUC()
	r := d.tx.repos

	editableCart(ctx, r, 1)
	r.products.On("FindByID", ctx, int64(10)).Return(model.Product{ID: 10, Price: 1200}, nil)
	r.cartItems.On("UpsertByCartAndProduct", ctx, int64(1), int64(10), int64(2), int64(1200)).
		Return(model.CartItem{ID: 5, CartID: 1, ProductID: 10, Quantity: 2, UnitPrice: 1200}, nil)

	item, err := uc.AddItem(ctx, 1, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Quantity)
	assert.Equal(t, int64(1200), item.UnitPrice)
	assert.Equal(t, 1, d.tx.calls)
	r.cartItems.AssertExpectations(t)
}

// 2回目は値上げ後の価格を渡すが、保存済みの単価はリポジトリ側で残る
func TestCartUsecase_AddItem_PassesPriceAtCallTime(t *testing.T) {
	ctx := context.Background()
	uc, d := newCartUC()
	r := d.tx.repos

	editableCart(ctx, r, 1)
	r.products.On("FindByID", ctx, int64(10)).Return(model.Product{ID: 10, Price: 1000}, nil).Once()
	r.products.On("FindByID", ctx, int64(10)).Return(model.Product{ID: 10, Price: 1500}, nil).Once()
	r.cartItems.On("UpsertByCartAndProduct", ctx, int64(1), int64(10), int64(1), int64(1000)).
		Return(model.CartItem{ID: 5, CartID: 1, ProductID: 10, Quantity: 1, UnitPrice: 1000}, nil).Once()
	r.cartItems.On("UpsertByCartAndProduct", ctx, int64(1), int64(10), int64(3), int64(1500)).
		Return(model.CartItem{ID: 5, CartID: 1, ProductID: 10, Quantity: 4, UnitPrice: 1000}, nil).Once()

	_, err := uc.AddItem(ctx, 1, 10, 1)
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, 1, 10, 3)
	require.NoError(t, err)

	r.cartItems.AssertExpectations(t)
}

func TestCartUsecase_AddItem_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("quantity must be positive", func(t *testing.T) {
		uc, d := newCartUC()
		_, err := uc.AddItem(ctx, 1, 10, 0)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidQuantity))
		assert.Equal(t, 0, d.tx.calls)
	})

	t.Run("quantity above limit", func(t *testing.T) {
		uc, d := newCartUC()
		_, err := uc.AddItem(ctx, 1, 10, pricing.MaxQuantity+1)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidQuantity))
		assert.Equal(t, 0, d.tx.calls)
	})

	t.Run("cart not found", func(t *testing.T) {
		uc, d := newCartUC()
		d.tx.repos.carts.On("FindByIDForUpdate", ctx, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

		_, err := uc.AddItem(ctx, 1, 10, 1)
		assert.True(t, apperr.HasCode(err, apperr.CodeCartNotFound))
	})

	t.Run("cart not pending", func(t *testing.T) {
		uc, d := newCartUC()
		d.tx.repos.carts.On("FindByIDForUpdate", ctx, int64(1)).Return(model.Cart{ID: 1, Status: model.CartStatusPaid}, nil)

		_, err := uc.AddItem(ctx, 1, 10, 1)
		assert.True(t, apperr.HasCode(err, apperr.CodeCartNotPending))
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("product not found", func(t *testing.T) {
		uc, d := newCartUC()
		r := d.tx.repos
		editableCart(ctx, r, 1)
		r.products.On("FindByID", ctx, int64(99)).Return(model.Product{}, repo.ErrNotFound)

		_, err := uc.AddItem(ctx, 1, 99, 1)
		assert.True(t, apperr.HasCode(err, apperr.CodeProductNotFound))
	})

	t.Run("store failure is upstream", func(t *testing.T) {
		uc, d := newCartUC()
		r := d.tx.repos
		editableCart(ctx, r, 1)
		r.products.On("FindByID", ctx, int64(10)).Return(model.Product{ID: 10, Price: 100}, nil)
		r.cartItems.On("UpsertByCartAndProduct", ctx, int64(1), int64(10), int64(1), int64(100)).
			Return(model.CartItem{}, errors.New("connection reset"))

		_, err := uc.AddItem(ctx, 1, 10, 1)
		assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
	})
}

// checkout済み（支払い待ち）のカートは明細を変えられない
func TestCartUsecase_LinesFrozenWhilePaymentPending(t *testing.T) {
	ctx := context.Background()

	frozen := func(t *testing.T) (*CartUsecase, *txRepos) {
		uc, d := newCartUC()
		r := d.tx.repos
		r.carts.On("FindByIDForUpdate", ctx, int64(1)).Return(pendingCartOf(1), nil)
		r.payments.On("ExistsPendingByCartID", ctx, int64(1)).Return(true, nil)
		return uc, r
	}

	t.Run("add", func(t *testing.T) {
		uc, r := frozen(t)
		_, err := uc.AddItem(ctx, 1, 10, 4)
		assert.True(t, apperr.HasCode(err, apperr.CodeCheckoutInProgress))
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
		r.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		r.cartItems.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update quantity", func(t *testing.T) {
		uc, r := frozen(t)
		_, err := uc.UpdateItemQuantity(ctx, 1, 5, 50)
		assert.True(t, apperr.HasCode(err, apperr.CodeCheckoutInProgress))
		r.cartItems.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("remove", func(t *testing.T) {
		uc, r := frozen(t)
		_, err := uc.RemoveItem(ctx, 1, 5)
		assert.True(t, apperr.HasCode(err, apperr.CodeCheckoutInProgress))
		r.cartItems.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCartUsecase_UpdateItemQuantity_LineFromOtherCart(t *testing.T) {
	ctx := context.Background()
	uc, d := newCartUC()
	r := d.tx.repos

	editableCart(ctx, r, 1)
	r.cartItems.On("UpdateQuantity", ctx, int64(1), int64(77), int64(3)).Return(model.CartItem{}, repo.ErrNotFound)

	_, err := uc.UpdateItemQuantity(ctx, 1, 77, 3)
	assert.True(t, apperr.HasCode(err, apperr.CodeLineNotFound))
}

func TestCartUsecase_RemoveItem_IsLenient(t *testing.T) {
	ctx := context.Background()

	t.Run("missing cart removes nothing", func(t *testing.T) {
		uc, d := newCartUC()
		r := d.tx.repos
		r.carts.On("FindByIDForUpdate", ctx, int64(404)).Return(model.Cart{}, repo.ErrNotFound)

		out, err := uc.RemoveItem(ctx, 404, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), out.Removed)
		r.cartItems.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing line removes nothing", func(t *testing.T) {
		uc, d := newCartUC()
		r := d.tx.repos
		editableCart(ctx, r, 1)
		r.cartItems.On("DeleteByID", ctx, int64(1), int64(9)).Return(int64(0), nil)

		out, err := uc.RemoveItem(ctx, 1, 9)
		require.NoError(t, err)
		assert.Equal(t, int64(0), out.Removed)
	})

	t.Run("existing line", func(t *testing.T) {
		uc, d := newCartUC()
		r := d.tx.repos
		editableCart(ctx, r, 1)
		r.cartItems.On("DeleteByID", ctx, int64(1), int64(5)).Return(int64(1), nil)

		out, err := uc.RemoveItem(ctx, 1, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(1), out.Removed)
	})

	t.Run("cancelled cart", func(t *testing.T) {
		uc, d := newCartUC()
		d.tx.repos.carts.On("FindByIDForUpdate", ctx, int64(1)).
			Return(model.Cart{ID: 1, Status: model.CartStatusCancelled}, nil)

		_, err := uc.RemoveItem(ctx, 1, 5)
		assert.True(t, apperr.HasCode(err, apperr.CodeCartNotPending))
	})
}

func TestCartUsecase_AuthorizeCart(t *testing.T) {
	ctx := context.Background()
	alice := "alice"

	cases := []struct {
		name     string
		cart     model.Cart
		findErr  error
		customer string
		wantCode string
	}{
		{name: "owner", cart: model.Cart{ID: 1, CustomerID: &alice}, customer: "alice"},
		{name: "other customer", cart: model.Cart{ID: 1, CustomerID: &alice}, customer: "mallory", wantCode: apperr.CodeCartNotFound},
		{name: "anonymous caller", cart: model.Cart{ID: 1, CustomerID: &alice}, customer: "", wantCode: apperr.CodeCartNotFound},
		{name: "anonymous cart", cart: model.Cart{ID: 1}, customer: ""},
		{name: "missing cart", findErr: repo.ErrNotFound, customer: "mallory"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, d := newCartUC()
			d.carts.On("FindByID", ctx, int64(1)).Return(tc.cart, tc.findErr)

			err := uc.AuthorizeCart(ctx, 1, tc.customer)
			if tc.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.HasCode(err, tc.wantCode))
			assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
		})
	}
}

func TestCartUsecase_GetEnrichedCart(t *testing.T) {
	ctx := context.Background()
	uc, d := newCartUC()

	// 商品が消えた明細もスナップショット価格で計算する
	d.carts.On("FindByID", ctx, int64(1)).Return(pendingCartOf(1), nil)
	d.cartItems.On("ListWithProducts", ctx, int64(1)).Return([]model.CartItem{
		{ID: 1, CartID: 1, ProductID: 10, Quantity: 2, UnitPrice: 1000, Product: &model.Product{ID: 10, Name: "Tea", Price: 1300}},
		{ID: 2, CartID: 1, ProductID: 11, Quantity: 1, UnitPrice: 500},
	}, nil)

	out, err := uc.GetEnrichedCart(ctx, 1)
	require.NoError(t, err)

	require.Len(t, out.Items, 2)
	require.NotNil(t, out.Items[0].Product)
	assert.Equal(t, "Tea", out.Items[0].Product.Name)
	assert.Nil(t, out.Items[0].Item.Product)
	assert.Nil(t, out.Items[1].Product)
	assert.Equal(t, int64(2500), out.Totals.Subtotal)
	assert.Equal(t, int64(2500), out.Totals.Total)
}

func TestCartUsecase_GetOrCreatePendingCart(t *testing.T) {
	ctx := context.Background()

	t.Run("blank customer", func(t *testing.T) {
		uc, _ := newCartUC()
		_, err := uc.GetOrCreatePendingCart(ctx, "  ")
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))
	})

	t.Run("trimmed id is passed through", func(t *testing.T) {
		uc, d := newCartUC()
		cid := "cus_1"
		d.carts.On("GetOrCreatePendingByCustomer", ctx, "cus_1").
			Return(model.Cart{ID: 3, CustomerID: &cid, Status: model.CartStatusPending}, nil)

		cart, err := uc.GetOrCreatePendingCart(ctx, " cus_1 ")
		require.NoError(t, err)
		assert.Equal(t, int64(3), cart.ID)
	})
}

func TestCartUsecase_CancelCart(t *testing.T) {
	ctx := context.Background()

	t.Run("pending payment blocks cancel", func(t *testing.T) {
		uc, d := newCartUC()
		r := d.tx.repos
		r.carts.On("FindByIDForUpdate", ctx, int64(1)).Return(pendingCartOf(1), nil)
		r.payments.On("ExistsPendingByCartID", ctx, int64(1)).Return(true, nil)

		_, err := uc.CancelCart(ctx, 1)
		assert.True(t, apperr.HasCode(err, apperr.CodeCheckoutInProgress))
		r.carts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancels pending cart", func(t *testing.T) {
		uc, d := newCartUC()
		r := d.tx.repos
		r.carts.On("FindByIDForUpdate", ctx, int64(1)).Return(pendingCartOf(1), nil)
		r.payments.On("ExistsPendingByCartID", ctx, int64(1)).Return(false, nil)
		r.carts.On("UpdateStatus", ctx, int64(1), model.CartStatusCancelled).Return(nil)

		cart, err := uc.CancelCart(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, model.CartStatusCancelled, cart.Status)
	})

	t.Run("already paid", func(t *testing.T) {
		uc, d := newCartUC()
		d.tx.repos.carts.On("FindByIDForUpdate", ctx, int64(1)).Return(model.Cart{ID: 1, Status: model.CartStatusPaid}, nil)

		_, err := uc.CancelCart(ctx, 1)
		assert.True(t, apperr.HasCode(err, apperr.CodeCartNotPending))
	})
}
