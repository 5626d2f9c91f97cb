// Package pricing はカート金額の計算とプロモーションの検証を行う。
// 金額はすべて最小通貨単位の整数で扱う。
package pricing

import (
	"math"

	"storefront/internal/apperr"
)

// 割引の種類
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

// 1明細の数量の上限
const MaxQuantity int64 = 1_000_000

// 計算に使う明細（単価はスナップショット）
type Line struct {
	ProductID int64
	UnitPrice int64
	Quantity  int64
}

// 検証済みプロモーションの効果。ProductIDがあればその商品の明細だけに効く
type Effect struct {
	Source    Source `json:"source"`
	Code      string `json:"code"`
	Kind      Kind   `json:"kind"`
	Value     int64  `json:"value"`
	ProductID *int64 `json:"product_id,omitempty"`
}

type Totals struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	Total          int64 `json:"total"`
}

// LineAmount は単価×数量。int64に収まらなければエラー
func LineAmount(unitPrice, qty int64) (int64, error) {
	if unitPrice > 0 && qty > math.MaxInt64/unitPrice {
		return 0, amountOverflow()
	}
	return unitPrice * qty, nil
}

// AddAmount は0以上の金額の加算
func AddAmount(a, b int64) (int64, error) {
	if a > math.MaxInt64-b {
		return 0, amountOverflow()
	}
	return a + b, nil
}

// Subtotal は単価×数量の合計
func Subtotal(items []Line) (int64, error) {
	var sum int64
	for _, it := range items {
		amount, err := LineAmount(it.UnitPrice, it.Quantity)
		if err != nil {
			return 0, err
		}
		if sum, err = AddAmount(sum, amount); err != nil {
			return 0, err
		}
	}
	return sum, nil
}

// ComputeCartTotal は小計を出し、promoがあれば1つだけ適用する。
func ComputeCartTotal(items []Line, promo *Effect) (Totals, error) {
	for i, it := range items {
		if it.Quantity <= 0 {
			return Totals{}, apperr.Validation(apperr.CodeInvalidQuantity, "quantity must be positive").
				With("index", i).With("quantity", it.Quantity)
		}
		if it.UnitPrice < 0 {
			return Totals{}, apperr.Validation(apperr.CodeInvalidInput, "unit price must be >= 0").
				With("index", i).With("unit_price", it.UnitPrice)
		}
	}

	subtotal, err := Subtotal(items)
	if err != nil {
		return Totals{}, err
	}
	if promo == nil {
		return Totals{Subtotal: subtotal, Total: subtotal}, nil
	}

	base, err := discountBase(items, subtotal, promo)
	if err != nil {
		return Totals{}, err
	}

	discount, err := DiscountAmount(base, promo.Kind, promo.Value)
	if err != nil {
		return Totals{}, err
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}
	return Totals{Subtotal: subtotal, DiscountAmount: discount, Total: total}, nil
}

// 商品指定の割引は、その商品の明細の合計が対象
func discountBase(items []Line, subtotal int64, promo *Effect) (int64, error) {
	if promo.ProductID == nil {
		return subtotal, nil
	}

	var matched []Line
	for _, it := range items {
		if it.ProductID == *promo.ProductID {
			matched = append(matched, it)
		}
	}
	if len(matched) == 0 {
		return 0, apperr.Conflict(apperr.CodeNotApplicable, "promotion does not apply to any line in the cart").
			With("promotion_code", promo.Code).
			With("product_id", *promo.ProductID)
	}
	return Subtotal(matched)
}

// DiscountAmount は小計に対する割引額。百分率は四捨五入（half-up）
func DiscountAmount(subtotal int64, kind Kind, value int64) (int64, error) {
	switch kind {
	case KindPercentage:
		if value < 0 || value > 100 {
			return 0, apperr.Validation(apperr.CodeInvalidPromotionValue, "percentage must be 0-100").
				With("value", value)
		}
		if subtotal <= 0 {
			return 0, nil
		}
		// subtotal*valueは溢れうるので100で割った商と余りに分ける
		q, r := subtotal/100, subtotal%100
		return q*value + (r*value+50)/100, nil
	case KindFixed:
		if value < 0 {
			return 0, apperr.Validation(apperr.CodeInvalidPromotionValue, "fixed discount cannot be negative").
				With("value", value)
		}
		if value > subtotal {
			return max(subtotal, 0), nil
		}
		return value, nil
	default:
		return 0, apperr.Validation(apperr.CodeInvalidPromotionKind, "promotion kind must be percentage or fixed").
			With("kind", string(kind))
	}
}

func amountOverflow() *apperr.Error {
	return apperr.Validation(apperr.CodeAmountOverflow, "amount is too large")
}
