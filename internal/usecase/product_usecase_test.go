package usecase

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type productDeps struct {
	tx       *fakeTx
	products *ProductRepoMock
	audit    *AuditRepoMock
	cache    *InvalidatorMock
	blobs    *BlobStoreMock
	thumbs   *ThumbnailerMock
}

func newProductUC() (*ProductUsecase, productDeps) {
	d := productDeps{
		tx:       &fakeTx{repos: newTxRepos()},
		products: &ProductRepoMock{},
		audit:    &AuditRepoMock{},
		cache:    &InvalidatorMock{},
		blobs:    &BlobStoreMock{},
		thumbs:   &ThumbnailerMock{},
	}
	uc := NewProductUsecase(d.tx, d.products, d.audit, d.cache, d.blobs, d.thumbs,
		&seqIDs{ids: []string{"img-1"}}, fixedClock{now: testNow}, zap.NewNop())
	return uc, d
}

func TestListProducts_Validation(t *testing.T) {
	ctx := context.Background()
	lo, hi := int64(500), int64(100)

	cases := []struct {
		name string
		in   ListProductsInput
	}{
		{"page 0", ListProductsInput{Page: 0, Limit: 20}},
		{"limit too large", ListProductsInput{Page: 1, Limit: 101}},
		{"min above max", ListProductsInput{Page: 1, Limit: 20, MinPrice: &lo, MaxPrice: &hi}},
		{"unknown sort", ListProductsInput{Page: 1, Limit: 20, Sort: "random"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, d := newProductUC()
			_, err := uc.ListProducts(ctx, tc.in)
			assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))
			d.products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestListProducts_PassesFilters(t *testing.T) {
	ctx := context.Background()
	uc, d := newProductUC()

	d.products.On("List", ctx, repo.ProductListQuery{
		Page: 2, Limit: 10, Q: "tea", Category: "drinks", Sort: "price_asc",
	}).Return([]model.Product{{ID: 1}}, int64(11), nil)

	out, err := uc.ListProducts(ctx, ListProductsInput{Page: 2, Limit: 10, Q: " tea ", Category: "drinks ", Sort: "price_asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), out.Total)
	assert.Len(t, out.Items, 1)
}

func TestUpdateProduct_StockChangeWritesAdjustmentAndAudit(t *testing.T) {
	ctx := context.Background()
	uc, d := newProductUC()
	r := d.tx.repos

	before := model.Product{ID: 1, Name: "Mug", Price: 500, Stock: 10, ImageURLs: pq.StringArray{"a.jpg"}}
	r.products.On("FindByID", ctx, int64(1)).Return(before, nil)
	r.products.On("Update", ctx, mock.MatchedBy(func(p model.Product) bool {
		// 画像未指定なら既存を残す
		return p.ID == 1 && p.Stock == 4 && len(p.ImageURLs) == 1 && p.ImageURLs[0] == "a.jpg"
	})).Return(model.Product{ID: 1, Name: "Mug", Price: 500, Stock: 4, ImageURLs: pq.StringArray{"a.jpg"}}, nil)
	r.inventory.On("CreateAdjustment", ctx, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 1 && a.Delta == -6 && a.Reason == "manual"
	})).Return(nil)
	r.auditLogs.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock && l.Actor == "admin-1" &&
			l.BeforeJSON == `{"stock":10}` && l.AfterJSON == `{"stock":4}`
	})).Return(nil)
	d.cache.On("Invalidate", ctx, []int64{1}).Return()

	out, err := uc.UpdateProduct(ctx, "admin-1", 1, ProductInput{Name: "Mug", Price: 500, Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Stock)
	r.inventory.AssertExpectations(t)
	r.auditLogs.AssertExpectations(t)
	d.cache.AssertExpectations(t)
}

func TestUpdateProduct_NoStockChangeNoAudit(t *testing.T) {
	ctx := context.Background()
	uc, d := newProductUC()
	r := d.tx.repos

	p := model.Product{ID: 1, Name: "Mug", Price: 500, Stock: 10}
	r.products.On("FindByID", ctx, int64(1)).Return(p, nil)
	r.products.On("Update", ctx, mock.Anything).Return(model.Product{ID: 1, Name: "Mug", Price: 600, Stock: 10}, nil)
	d.cache.On("Invalidate", ctx, []int64{1}).Return()

	_, err := uc.UpdateProduct(ctx, "admin-1", 1, ProductInput{Name: "Mug", Price: 600, Stock: 10})
	require.NoError(t, err)
	r.inventory.AssertNotCalled(t, "CreateAdjustment", mock.Anything, mock.Anything)
	r.auditLogs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	uc, d := newProductUC()
	d.tx.repos.products.On("FindByID", ctx, int64(5)).Return(model.Product{}, repo.ErrNotFound)

	err := uc.DeleteProduct(ctx, "admin-1", 5)
	assert.True(t, apperr.HasCode(err, apperr.CodeProductNotFound))
	d.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

// 1件失敗しても他は適用される
func TestReorderPositions_PartialFailure(t *testing.T) {
	ctx := context.Background()
	uc, d := newProductUC()

	d.products.On("UpdatePosition", ctx, int64(1), int64(3)).Return(nil)
	d.products.On("UpdatePosition", ctx, int64(2), int64(1)).Return(repo.ErrNotFound)
	d.products.On("UpdatePosition", ctx, int64(3), int64(2)).Return(errors.New("deadlock"))
	d.audit.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionReorder && l.AfterJSON == `[{"id":1,"position":3}]`
	})).Return(nil)

	results := uc.ReorderPositions(ctx, "admin-1", []PositionUpdate{
		{ID: 1, Position: 3},
		{ID: 2, Position: 1},
		{ID: 3, Position: 2},
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Applied)
	assert.False(t, results[1].Applied)
	assert.Equal(t, apperr.CodeProductNotFound, results[1].Error)
	assert.False(t, results[2].Applied)
	assert.Equal(t, apperr.CodeStore, results[2].Error)
	d.audit.AssertNumberOfCalls(t, "Create", 1)
}

func TestReorderPositions_NothingAppliedNoAudit(t *testing.T) {
	ctx := context.Background()
	uc, d := newProductUC()
	d.products.On("UpdatePosition", ctx, int64(1), int64(1)).Return(repo.ErrNotFound)

	results := uc.ReorderPositions(ctx, "admin-1", []PositionUpdate{{ID: 1, Position: 1}})
	require.Len(t, results, 1)
	assert.False(t, results[0].Applied)
	d.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUploadProductImage(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		uc, d := newProductUC()
		_, err := uc.UploadProductImage(ctx, 1, []byte("x"), "application/pdf")
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidInput))
		d.blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores original and thumbnail", func(t *testing.T) {
		uc, d := newProductUC()
		data := []byte("png-bytes")
		d.products.On("FindByID", ctx, int64(1)).Return(model.Product{ID: 1}, nil)
		d.thumbs.On("Thumbnail", data).Return([]byte("thumb"), nil)
		d.blobs.On("Put", ctx, "products/1/img-1.png", data, "image/png").Return("/uploads/products/1/img-1.png", nil)
		d.blobs.On("Put", ctx, "products/1/thumb/img-1.jpg", []byte("thumb"), "image/jpeg").Return("/uploads/products/1/thumb/img-1.jpg", nil)
		d.products.On("AppendImageURL", ctx, int64(1), "/uploads/products/1/img-1.png").
			Return(model.Product{ID: 1, ImageURLs: pq.StringArray{"/uploads/products/1/img-1.png"}}, nil)

		p, err := uc.UploadProductImage(ctx, 1, data, "image/png")
		require.NoError(t, err)
		assert.Equal(t, []string{"/uploads/products/1/img-1.png"}, []string(p.ImageURLs))
		d.blobs.AssertExpectations(t)
	})

	t.Run("blob failure is upstream", func(t *testing.T) {
		uc, d := newProductUC()
		data := []byte("jpeg-bytes")
		d.products.On("FindByID", ctx, int64(1)).Return(model.Product{ID: 1}, nil)
		d.thumbs.On("Thumbnail", data).Return([]byte("thumb"), nil)
		d.blobs.On("Put", ctx, mock.Anything, data, "image/jpeg").Return("", errors.New("disk full"))

		_, err := uc.UploadProductImage(ctx, 1, data, "image/jpeg")
		assert.True(t, apperr.HasCode(err, apperr.CodeBlobStore))
		d.products.AssertNotCalled(t, "AppendImageURL", mock.Anything, mock.Anything, mock.Anything)
	})
}
