package usecase

import (
	"context"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type PackUsecase struct {
	tx       repo.TransactionManager
	packRepo repo.PackRepository
}

func NewPackUsecase(tx repo.TransactionManager, packRepo repo.PackRepository) *PackUsecase {
	return &PackUsecase{tx: tx, packRepo: packRepo}
}

type PackItemInput struct {
	ProductID int64
	Quantity  int64
}

type PackInput struct {
	Name        string
	Description string
	Price       int64
	Items       []PackItemInput
}

func (in PackInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidInput("name required")
	}
	if in.Price < 0 {
		return invalidInput("price must be >= 0")
	}
	if len(in.Items) == 0 {
		return invalidInput("at least one item is required")
	}
	seen := make(map[int64]bool, len(in.Items))
	for i, it := range in.Items {
		if it.Quantity <= 0 {
			return apperr.Validation(apperr.CodeInvalidQuantity, "quantity must be positive").
				With("index", i).With("quantity", it.Quantity)
		}
		if seen[it.ProductID] {
			return invalidInput("duplicate product in pack").With("product_id", it.ProductID)
		}
		seen[it.ProductID] = true
	}
	return nil
}

func (in PackInput) items() []model.PackItem {
	out := make([]model.PackItem, 0, len(in.Items))
	for _, it := range in.Items {
		out = append(out, model.PackItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func (u *PackUsecase) CreatePack(ctx context.Context, in PackInput) (model.Pack, error) {
	if err := in.validate(); err != nil {
		return model.Pack{}, err
	}

	var out model.Pack
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := ensureProducts(ctx, r.Products(), in.Items); err != nil {
			return err
		}

		p, err := r.Packs().Create(ctx, model.Pack{
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Price:       in.Price,
			Items:       in.items(),
		})
		if err != nil {
			return storeErr(err)
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Pack{}, storeErr(err)
	}
	return out, nil
}

// 構成は全削除してから入れ直す（差分更新しない）
func (u *PackUsecase) UpdatePack(ctx context.Context, packID int64, in PackInput) (model.Pack, error) {
	if err := in.validate(); err != nil {
		return model.Pack{}, err
	}

	var out model.Pack
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := ensureProducts(ctx, r.Products(), in.Items); err != nil {
			return err
		}

		if err := r.Packs().Update(ctx, model.Pack{
			ID:          packID,
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Price:       in.Price,
		}); err != nil {
			return notFoundOr(err, apperr.CodePackNotFound, "pack not found")
		}

		if err := r.Packs().ReplaceItems(ctx, packID, in.items()); err != nil {
			return storeErr(err)
		}

		p, err := r.Packs().FindByID(ctx, packID)
		if err != nil {
			return notFoundOr(err, apperr.CodePackNotFound, "pack not found")
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Pack{}, storeErr(err)
	}
	return out, nil
}

func (u *PackUsecase) GetPack(ctx context.Context, packID int64) (model.Pack, error) {
	p, err := u.packRepo.FindByID(ctx, packID)
	if err != nil {
		return model.Pack{}, notFoundOr(err, apperr.CodePackNotFound, "pack not found")
	}
	return p, nil
}

func (u *PackUsecase) ListPacks(ctx context.Context) ([]model.Pack, error) {
	packs, err := u.packRepo.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return packs, nil
}

func (u *PackUsecase) DeletePack(ctx context.Context, packID int64) error {
	n, err := u.packRepo.Delete(ctx, packID)
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return apperr.NotFound(apperr.CodePackNotFound, "pack not found")
	}
	return nil
}

func ensureProducts(ctx context.Context, products repo.ProductRepository, items []PackItemInput) error {
	for _, it := range items {
		if _, err := products.FindByID(ctx, it.ProductID); err != nil {
			if err == repo.ErrNotFound {
				return apperr.NotFound(apperr.CodeProductNotFound, "product not found").With("product_id", it.ProductID)
			}
			return storeErr(err)
		}
	}
	return nil
}
