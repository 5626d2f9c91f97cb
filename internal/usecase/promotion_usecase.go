package usecase

import (
	"context"
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

// どのレコードを消費するか
type promotionRef struct {
	source pricing.Source
	id     int64
}

// コードを引く。クーポン→割引の順
func lookupPromotion(ctx context.Context, coupons repo.CouponRepository, discounts repo.DiscountRepository, code string) (*pricing.Promotion, promotionRef, error) {
	code = pricing.NormalizeCode(code)
	if code == "" {
		return nil, promotionRef{}, nil
	}

	c, err := coupons.FindByCode(ctx, code)
	if err == nil {
		return pricing.FromCoupon(c), promotionRef{source: pricing.SourceCoupon, id: c.ID}, nil
	}
	if err != repo.ErrNotFound {
		return nil, promotionRef{}, storeErr(err)
	}

	d, err := discounts.FindByCode(ctx, code)
	if err == nil {
		return pricing.FromDiscount(d), promotionRef{source: pricing.SourceDiscount, id: d.ID}, nil
	}
	if err != repo.ErrNotFound {
		return nil, promotionRef{}, storeErr(err)
	}
	return nil, promotionRef{}, nil
}

// 条件付きで消費。falseは他で先に使われた
func redeemPromotion(ctx context.Context, coupons repo.CouponRepository, discounts repo.DiscountRepository, ref promotionRef) (bool, error) {
	switch ref.source {
	case pricing.SourceCoupon:
		return coupons.Redeem(ctx, ref.id)
	case pricing.SourceDiscount:
		return discounts.MarkUsed(ctx, ref.id)
	default:
		return false, nil
	}
}

type PromotionUsecase struct {
	tx           repo.TransactionManager
	discountRepo repo.DiscountRepository
	couponRepo   repo.CouponRepository
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	clock        Clock
}

func NewPromotionUsecase(
	tx repo.TransactionManager,
	discountRepo repo.DiscountRepository,
	couponRepo repo.CouponRepository,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	clock Clock,
) *PromotionUsecase {
	return &PromotionUsecase{
		tx:           tx,
		discountRepo: discountRepo,
		couponRepo:   couponRepo,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		clock:        clock,
	}
}

type ValidateCodeOutput struct {
	Effect pricing.Effect  `json:"effect"`
	Totals *pricing.Totals `json:"totals,omitempty"`
}

// ValidateCode はコードを検証するだけで消費しない。cartIDがあれば適用後の金額も返す
func (u *PromotionUsecase) ValidateCode(ctx context.Context, code string, cartID *int64) (ValidateCodeOutput, error) {
	promo, _, err := lookupPromotion(ctx, u.couponRepo, u.discountRepo, code)
	if err != nil {
		return ValidateCodeOutput{}, err
	}

	effect, err := pricing.ValidatePromotion(promo, u.clock.Now())
	if err != nil {
		return ValidateCodeOutput{}, err
	}

	out := ValidateCodeOutput{Effect: effect}
	if cartID == nil {
		return out, nil
	}

	if _, err := u.cartRepo.FindByID(ctx, *cartID); err != nil {
		return ValidateCodeOutput{}, notFoundOr(err, apperr.CodeCartNotFound, "cart not found")
	}
	items, err := u.cartItemRepo.ListByCartID(ctx, *cartID)
	if err != nil {
		return ValidateCodeOutput{}, storeErr(err)
	}

	totals, err := pricing.ComputeCartTotal(toPricingLines(items), &effect)
	if err != nil {
		return ValidateCodeOutput{}, err
	}
	out.Totals = &totals
	return out, nil
}

type CreateDiscountInput struct {
	ProductID  int64
	Percentage int64
	Code       string
	ValidFrom  *time.Time
	ValidUntil *time.Time
}

// 1商品につき未使用の割引は1つまで
func (u *PromotionUsecase) CreateDiscount(ctx context.Context, in CreateDiscountInput) (model.Discount, error) {
	code := pricing.NormalizeCode(in.Code)
	if code == "" {
		return model.Discount{}, apperr.Validation(apperr.CodeInvalidInput, "code required")
	}
	if in.Percentage < 1 || in.Percentage > 100 {
		return model.Discount{}, apperr.Validation(apperr.CodeInvalidPromotionValue, "percentage must be 1-100").
			With("value", in.Percentage)
	}
	if err := validateWindow(in.ValidFrom, in.ValidUntil); err != nil {
		return model.Discount{}, err
	}

	var out model.Discount
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, in.ProductID); err != nil {
			return notFoundOr(err, apperr.CodeProductNotFound, "product not found")
		}

		existing, found, err := r.Discounts().FindUnusedByProductID(ctx, in.ProductID)
		if err != nil {
			return storeErr(err)
		}
		if found {
			return apperr.Conflict(apperr.CodeDuplicate, "product already has an active discount").
				With("product_id", in.ProductID).
				With("discount_id", existing.ID)
		}

		d, err := r.Discounts().Create(ctx, model.Discount{
			ProductID:  in.ProductID,
			Percentage: in.Percentage,
			Code:       code,
			ValidFrom:  in.ValidFrom,
			ValidUntil: in.ValidUntil,
		})
		if err != nil {
			return storeErr(err)
		}
		out = d
		return nil
	})
	if err != nil {
		return model.Discount{}, storeErr(err)
	}
	return out, nil
}

func (u *PromotionUsecase) ListDiscounts(ctx context.Context, productID *int64) ([]model.Discount, error) {
	items, err := u.discountRepo.List(ctx, productID)
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

func (u *PromotionUsecase) DeleteDiscount(ctx context.Context, id int64) error {
	n, err := u.discountRepo.Delete(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return apperr.NotFound(apperr.CodeDiscountNotFound, "discount not found")
	}
	return nil
}

type CreateCouponInput struct {
	Code       string
	Kind       string
	Value      int64
	SingleUse  bool
	MaxUses    *int64
	ValidFrom  *time.Time
	ValidUntil *time.Time
	Active     *bool
}

func (u *PromotionUsecase) CreateCoupon(ctx context.Context, in CreateCouponInput) (model.Coupon, error) {
	code := pricing.NormalizeCode(in.Code)
	if code == "" {
		return model.Coupon{}, apperr.Validation(apperr.CodeInvalidInput, "code required")
	}

	kind := model.CouponKind(strings.ToLower(strings.TrimSpace(in.Kind)))
	switch kind {
	case model.CouponKindPercentage:
		if in.Value < 1 || in.Value > 100 {
			return model.Coupon{}, apperr.Validation(apperr.CodeInvalidPromotionValue, "percentage must be 1-100").
				With("value", in.Value)
		}
	case model.CouponKindFixed:
		if in.Value <= 0 {
			return model.Coupon{}, apperr.Validation(apperr.CodeInvalidPromotionValue, "fixed value must be positive").
				With("value", in.Value)
		}
	default:
		return model.Coupon{}, apperr.Validation(apperr.CodeInvalidPromotionKind, "kind must be percentage or fixed").
			With("kind", in.Kind)
	}
	if in.MaxUses != nil && *in.MaxUses < 1 {
		return model.Coupon{}, apperr.Validation(apperr.CodeInvalidInput, "max_uses must be >= 1")
	}
	if err := validateWindow(in.ValidFrom, in.ValidUntil); err != nil {
		return model.Coupon{}, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	c, err := u.couponRepo.Create(ctx, model.Coupon{
		Code:       code,
		Kind:       kind,
		Value:      in.Value,
		SingleUse:  in.SingleUse,
		MaxUses:    in.MaxUses,
		ValidFrom:  in.ValidFrom,
		ValidUntil: in.ValidUntil,
		Active:     active,
	})
	if err != nil {
		return model.Coupon{}, storeErr(err)
	}
	return c, nil
}

func (u *PromotionUsecase) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	items, err := u.couponRepo.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

func (u *PromotionUsecase) SetCouponActive(ctx context.Context, id int64, active bool) (model.Coupon, error) {
	c, err := u.couponRepo.SetActive(ctx, id, active)
	if err != nil {
		return model.Coupon{}, notFoundOr(err, apperr.CodeCouponNotFound, "coupon not found")
	}
	return c, nil
}

func (u *PromotionUsecase) DeleteCoupon(ctx context.Context, id int64) error {
	n, err := u.couponRepo.Delete(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return apperr.NotFound(apperr.CodeCouponNotFound, "coupon not found")
	}
	return nil
}

func validateWindow(from, until *time.Time) error {
	if from != nil && until != nil && until.Before(*from) {
		return apperr.Validation(apperr.CodeInvalidInput, "valid_until must be after valid_from")
	}
	return nil
}

func toPricingLines(items []model.CartItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{ProductID: it.ProductID, UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}
	return lines
}
