package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// CheckoutUsecase はカートからpendingの支払いを作り、確定/却下を扱う。
type CheckoutUsecase struct {
	tx     repo.TransactionManager
	events EventPublisher
	clock  Clock
	log    *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	events EventPublisher,
	clock Clock,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:     tx,
		events: events,
		clock:  clock,
		log:    log,
	}
}

type ShipmentInput struct {
	Address string
	Courier string
}

type CheckoutInput struct {
	Method        string
	Shipment      *ShipmentInput
	PromotionCode *string
}

type CheckoutResult struct {
	Payment   model.Payment   `json:"payment"`
	Shipment  *model.Shipment `json:"shipment"`
	Totals    pricing.Totals  `json:"totals"`
	Promotion *pricing.Effect `json:"promotion,omitempty"`
}

type checkoutCreatedEvent struct {
	CartID        int64   `json:"cart_id"`
	PaymentID     int64   `json:"payment_id"`
	Amount        int64   `json:"amount"`
	Method        string  `json:"method"`
	PromotionCode *string `json:"promotion_code,omitempty"`
}

// Checkout は1トランザクションで支払い(pending)と配送(任意)を作る。
// カートはpendingのまま。プロモーションも同じトランザクションで消費する
func (u *CheckoutUsecase) Checkout(ctx context.Context, cartID int64, in CheckoutInput) (CheckoutResult, error) {
	method := strings.TrimSpace(in.Method)
	if method == "" {
		return CheckoutResult{}, apperr.Validation(apperr.CodeInvalidPaymentMethod, "payment method required")
	}

	var out CheckoutResult

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 支払い待ちがあれば二重checkoutになる
		if _, err := lockEditableCart(ctx, r, cartID); err != nil {
			return err
		}

		items, err := r.CartItems().ListByCartID(ctx, cartID)
		if err != nil {
			return storeErr(err)
		}
		if len(items) == 0 {
			return apperr.Validation(apperr.CodeEmptyCart, "cart has no items").With("cart_id", cartID)
		}

		//プロモーション（任意）
		var (
			promo     *pricing.Promotion
			ref       promotionRef
			effect    *pricing.Effect
			promoCode *string
		)
		if in.PromotionCode != nil && strings.TrimSpace(*in.PromotionCode) != "" {
			promo, ref, err = lookupPromotion(ctx, r.Coupons(), r.Discounts(), *in.PromotionCode)
			if err != nil {
				return err
			}
			e, err := pricing.ValidatePromotion(promo, u.clock.Now())
			if err != nil {
				return err
			}
			effect = &e
			promoCode = &e.Code
		}

		//スナップショット価格で再計算
		totals, err := pricing.ComputeCartTotal(toPricingLines(items), effect)
		if err != nil {
			return err
		}

		// 条件付き更新に負けたら同時に使われた
		if effect != nil {
			ok, err := redeemPromotion(ctx, r.Coupons(), r.Discounts(), ref)
			if err != nil {
				return storeErr(err)
			}
			if !ok {
				return promotionConsumed(promo)
			}
		}

		payment, err := r.Payments().Create(ctx, model.Payment{
			CartID:         cartID,
			Amount:         totals.Total,
			DiscountAmount: totals.DiscountAmount,
			PromotionCode:  promoCode,
			Method:         method,
			Status:         model.PaymentStatusPending,
		})
		if err != nil {
			return storeErr(err)
		}

		var shipment *model.Shipment
		if in.Shipment != nil && strings.TrimSpace(in.Shipment.Address) != "" {
			s, err := r.Shipments().Create(ctx, model.Shipment{
				CartID:    cartID,
				PaymentID: payment.ID,
				Address:   strings.TrimSpace(in.Shipment.Address),
				Courier:   strings.TrimSpace(in.Shipment.Courier),
				Status:    model.ShipmentStatusPreparing,
			})
			if err != nil {
				return storeErr(err)
			}
			shipment = &s
		}

		out = CheckoutResult{
			Payment:   payment,
			Shipment:  shipment,
			Totals:    totals,
			Promotion: effect,
		}
		return nil
	})
	if err != nil {
		return CheckoutResult{}, storeErr(err)
	}

	// イベントは失敗してもcheckoutは成功扱い
	if err := u.events.Publish(ctx, TopicCheckoutCreated, checkoutCreatedEvent{
		CartID:        cartID,
		PaymentID:     out.Payment.ID,
		Amount:        out.Payment.Amount,
		Method:        out.Payment.Method,
		PromotionCode: out.Payment.PromotionCode,
	}); err != nil {
		u.log.Warn("publish checkout event failed", zap.Int64("payment_id", out.Payment.ID), zap.Error(err))
	}

	return out, nil
}

// 支払い確定: payment approved / cart paid
func (u *CheckoutUsecase) ConfirmPayment(ctx context.Context, actor string, paymentID int64) (model.Payment, error) {
	return u.settle(ctx, actor, paymentID, model.PaymentStatusApproved)
}

// 支払い却下: payment rejected / cartはpendingのまま
func (u *CheckoutUsecase) RejectPayment(ctx context.Context, actor string, paymentID int64) (model.Payment, error) {
	return u.settle(ctx, actor, paymentID, model.PaymentStatusRejected)
}

func (u *CheckoutUsecase) settle(ctx context.Context, actor string, paymentID int64, next model.PaymentStatus) (model.Payment, error) {
	var out model.Payment

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return notFoundOr(err, apperr.CodePaymentNotFound, "payment not found")
		}
		if p.Status != model.PaymentStatusPending {
			return apperr.Conflict(apperr.CodePaymentNotPending, "payment is not pending").
				With("payment_id", p.ID).
				With("status", string(p.Status))
		}

		if next == model.PaymentStatusApproved {
			cart, err := r.Carts().FindByIDForUpdate(ctx, p.CartID)
			if err != nil {
				return notFoundOr(err, apperr.CodeCartNotFound, "cart not found")
			}
			if cart.Status != model.CartStatusPending {
				return cartNotPending(cart)
			}
			if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusPaid); err != nil {
				return storeErr(err)
			}
		}

		if err := r.Payments().UpdateStatus(ctx, p.ID, next); err != nil {
			return storeErr(err)
		}

		action := model.AuditActionConfirmPayment
		if next == model.PaymentStatusRejected {
			action = model.AuditActionRejectPayment
		}
		before, _ := json.Marshal(map[string]string{"status": string(p.Status)})
		after, _ := json.Marshal(map[string]string{"status": string(next)})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actor,
			Action:       action,
			ResourceType: model.AuditResourcePayment,
			ResourceID:   p.ID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return storeErr(err)
		}

		p.Status = next
		out = p
		return nil
	})
	if err != nil {
		return model.Payment{}, storeErr(err)
	}
	return out, nil
}

func promotionConsumed(p *pricing.Promotion) error {
	code := apperr.CodeAlreadyUsed
	msg := "promotion has already been used"
	if p.Source == pricing.SourceCoupon && !p.SingleUse && p.MaxUses != nil {
		code = apperr.CodeUsageExhausted
		msg = "promotion usage limit reached"
	}
	return apperr.Conflict(code, msg).With("promotion_code", p.Code).With("source", string(p.Source))
}
