package pricing

import (
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/domain/model"
)

type Source string

const (
	SourceDiscount Source = "discount"
	SourceCoupon   Source = "coupon"
)

// Promotion は割引(商品)とクーポン(カート)を同じ形で扱うための値
type Promotion struct {
	Source     Source
	Code       string
	Kind       Kind
	Value      int64
	Active     bool
	ValidFrom  *time.Time
	ValidUntil *time.Time
	SingleUse  bool
	Used       bool
	UsageCount int64
	MaxUses    *int64
	ProductID  *int64
}

// コードは前後空白を除いて大文字にそろえる
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func FromCoupon(c model.Coupon) *Promotion {
	return &Promotion{
		Source:     SourceCoupon,
		Code:       c.Code,
		Kind:       Kind(c.Kind),
		Value:      c.Value,
		Active:     c.Active,
		ValidFrom:  c.ValidFrom,
		ValidUntil: c.ValidUntil,
		SingleUse:  c.SingleUse,
		UsageCount: c.UsageCount,
		MaxUses:    c.MaxUses,
	}
}

// 割引にはactiveフラグが無いので常にtrue。usedは使用済み判定に使う
func FromDiscount(d model.Discount) *Promotion {
	productID := d.ProductID
	return &Promotion{
		Source:     SourceDiscount,
		Code:       d.Code,
		Kind:       KindPercentage,
		Value:      d.Percentage,
		Active:     true,
		ValidFrom:  d.ValidFrom,
		ValidUntil: d.ValidUntil,
		SingleUse:  true,
		Used:       d.Used,
		ProductID:  &productID,
	}
}

// ValidatePromotion は状態を順番に検査し、最初の失敗を返す。
// 使用回数は変更しない。
func ValidatePromotion(p *Promotion, now time.Time) (Effect, error) {
	if p == nil {
		return Effect{}, apperr.NotFound(apperr.CodePromotionNotFound, "promotion code not found")
	}
	if !p.Active {
		return Effect{}, conflict(p, apperr.CodeInactive, "promotion is inactive")
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return Effect{}, conflict(p, apperr.CodeNotYetValid, "promotion is not yet valid").
			With("valid_from", p.ValidFrom.UTC().Format(time.RFC3339))
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return Effect{}, conflict(p, apperr.CodeExpired, "promotion has expired").
			With("valid_until", p.ValidUntil.UTC().Format(time.RFC3339))
	}
	if alreadyUsed(p) {
		return Effect{}, conflict(p, apperr.CodeAlreadyUsed, "promotion has already been used")
	}
	if p.MaxUses != nil && p.UsageCount >= *p.MaxUses {
		return Effect{}, conflict(p, apperr.CodeUsageExhausted, "promotion usage limit reached").
			With("usage_count", p.UsageCount).With("max_uses", *p.MaxUses)
	}

	return Effect{Source: p.Source, Code: p.Code, Kind: p.Kind, Value: p.Value, ProductID: p.ProductID}, nil
}

func alreadyUsed(p *Promotion) bool {
	if p.Source == SourceDiscount {
		return p.Used
	}
	return p.SingleUse && p.UsageCount > 0
}

func conflict(p *Promotion, code, msg string) *apperr.Error {
	return apperr.Conflict(code, msg).With("promotion_code", p.Code).With("source", string(p.Source))
}
