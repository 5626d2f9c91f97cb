package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

type ProductUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
	cache       ProductCacheInvalidator
	blobs       BlobStore
	thumbs      Thumbnailer
	ids         IDGenerator
	clock       Clock
	log         *zap.Logger
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	auditRepo repo.AuditLogRepository,
	cache ProductCacheInvalidator,
	blobs BlobStore,
	thumbs Thumbnailer,
	ids IDGenerator,
	clock Clock,
	log *zap.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		tx:          tx,
		productRepo: productRepo,
		auditRepo:   auditRepo,
		cache:       cache,
		blobs:       blobs,
		thumbs:      thumbs,
		ids:         ids,
		clock:       clock,
		log:         log,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page        int
	Limit       int
	Q           string
	Category    string
	Subcategory string
	MinPrice    *int64
	MaxPrice    *int64
	Sort        string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, invalidInput("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, invalidInput("invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, invalidInput("q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, invalidInput("min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, invalidInput("max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, invalidInput("min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "position", "new", "price_asc", "price_desc", "best_selling":
	default:
		return ProductListOutput{}, invalidInput("invalid sort")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:        in.Page,
		Limit:       in.Limit,
		Q:           strings.TrimSpace(in.Q),
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
		MinPrice:    in.MinPrice,
		MaxPrice:    in.MaxPrice,
		Sort:        in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, storeErr(err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, notFoundOr(err, apperr.CodeProductNotFound, "product not found")
	}
	return p, nil
}

type ProductInput struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Subcategory string
	Stock       int64
	ImageURLs   []string
	VideoURLs   []string
	MediaMeta   string
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidInput("name required")
	}
	if in.Price < 0 {
		return invalidInput("price must be >= 0")
	}
	if in.Stock < 0 {
		return invalidInput("stock must be >= 0")
	}
	return nil
}

func (in ProductInput) toModel(id int64) model.Product {
	return model.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
		Stock:       in.Stock,
		ImageURLs:   in.ImageURLs,
		VideoURLs:   in.VideoURLs,
		MediaMeta:   in.MediaMeta,
	}
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	p, err := u.productRepo.Create(ctx, in.toModel(0))
	if err != nil {
		return model.Product{}, storeErr(err)
	}
	return p, nil
}

// 在庫が変わったら調整履歴と監査ログも残す
func (u *ProductUsecase) UpdateProduct(ctx context.Context, actor string, productID int64, in ProductInput) (model.Product, error) {
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return notFoundOr(err, apperr.CodeProductNotFound, "product not found")
		}

		// メディア未指定なら既存を残す
		next := in.toModel(productID)
		if in.ImageURLs == nil {
			next.ImageURLs = before.ImageURLs
		}
		if in.VideoURLs == nil {
			next.VideoURLs = before.VideoURLs
		}

		after, err := r.Products().Update(ctx, next)
		if err != nil {
			return notFoundOr(err, apperr.CodeProductNotFound, "product not found")
		}

		if before.Stock != after.Stock {
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID: productID,
				Delta:     after.Stock - before.Stock,
				Reason:    "manual",
				CreatedAt: u.clock.Now(),
			}); err != nil {
				return storeErr(err)
			}

			//監査ログ（在庫更新）
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				Actor:        actor,
				Action:       model.AuditActionUpdateStock,
				ResourceType: model.AuditResourceProduct,
				ResourceID:   productID,
				BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, before.Stock),
				AfterJSON:    fmt.Sprintf(`{"stock":%d}`, after.Stock),
				CreatedAt:    u.clock.Now(),
			}); err != nil {
				return storeErr(err)
			}
		}

		out = after
		return nil
	})
	if err != nil {
		return model.Product{}, storeErr(err)
	}

	u.cache.Invalidate(ctx, productID)
	return out, nil
}

// 明細・セット構成・割引はFKで一緒に消える
func (u *ProductUsecase) DeleteProduct(ctx context.Context, actor string, productID int64) error {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return notFoundOr(err, apperr.CodeProductNotFound, "product not found")
		}

		if err := r.Products().Delete(ctx, productID); err != nil {
			return notFoundOr(err, apperr.CodeProductNotFound, "product not found")
		}

		beforeJSON, _ := json.Marshal(before)
		return storeErr(r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actor,
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   string(beforeJSON),
			CreatedAt:    u.clock.Now(),
		}))
	})
	if err != nil {
		return storeErr(err)
	}

	u.cache.Invalidate(ctx, productID)
	return nil
}

type PositionUpdate struct {
	ID       int64 `json:"id"`
	Position int64 `json:"position"`
}

type ReorderResult struct {
	ID       int64  `json:"id"`
	Position int64  `json:"position"`
	Applied  bool   `json:"applied"`
	Error    string `json:"error,omitempty"`
}

// ReorderPositions は1件ずつ独立して更新する。失敗しても他は戻さない
func (u *ProductUsecase) ReorderPositions(ctx context.Context, actor string, updates []PositionUpdate) []ReorderResult {
	results := make([]ReorderResult, 0, len(updates))
	applied := make([]PositionUpdate, 0, len(updates))

	for _, up := range updates {
		res := ReorderResult{ID: up.ID, Position: up.Position}

		err := u.productRepo.UpdatePosition(ctx, up.ID, up.Position)
		switch {
		case err == nil:
			res.Applied = true
			applied = append(applied, up)
		case err == repo.ErrNotFound:
			res.Error = apperr.CodeProductNotFound
		default:
			u.log.Error("update position failed", zap.Int64("product_id", up.ID), zap.Error(err))
			res.Error = apperr.CodeStore
		}
		results = append(results, res)
	}

	if len(applied) > 0 {
		afterJSON, _ := json.Marshal(applied)
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			Actor:        actor,
			Action:       model.AuditActionReorder,
			ResourceType: model.AuditResourceProduct,
			AfterJSON:    string(afterJSON),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			u.log.Warn("audit reorder failed", zap.Error(err))
		}
	}

	return results
}

var imageExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// 元画像とサムネイルを保存し、元画像のURLを末尾に追加
func (u *ProductUsecase) UploadProductImage(ctx context.Context, productID int64, data []byte, contentType string) (model.Product, error) {
	ext, ok := imageExt[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return model.Product{}, invalidInput("unsupported image type").With("content_type", contentType)
	}
	if len(data) == 0 {
		return model.Product{}, invalidInput("empty image")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		return model.Product{}, notFoundOr(err, apperr.CodeProductNotFound, "product not found")
	}

	thumb, err := u.thumbs.Thumbnail(data)
	if err != nil {
		return model.Product{}, invalidInput("image could not be decoded")
	}

	name := u.ids.NewID()
	url, err := u.blobs.Put(ctx, fmt.Sprintf("products/%d/%s.%s", productID, name, ext), data, contentType)
	if err != nil {
		return model.Product{}, blobErr(err)
	}
	if _, err := u.blobs.Put(ctx, fmt.Sprintf("products/%d/thumb/%s.jpg", productID, name), thumb, "image/jpeg"); err != nil {
		return model.Product{}, blobErr(err)
	}

	p, err := u.productRepo.AppendImageURL(ctx, productID, url)
	if err != nil {
		return model.Product{}, notFoundOr(err, apperr.CodeProductNotFound, "product not found")
	}
	return p, nil
}

func invalidInput(msg string) *apperr.Error {
	return apperr.Validation(apperr.CodeInvalidInput, msg)
}

func blobErr(err error) error {
	return &apperr.Error{Kind: apperr.KindUpstream, Code: apperr.CodeBlobStore, Message: "blob store error", Err: err}
}
