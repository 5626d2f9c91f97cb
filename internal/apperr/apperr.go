package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// 失敗の分類
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION_ERROR"
	KindConflict   Kind = "STATE_CONFLICT"
	KindUpstream   Kind = "UPSTREAM_FAILURE"

	// HTTPの入口（認証・流量制限）で使う
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindRateLimited  Kind = "RATE_LIMITED"
)

// 具体的な失敗コード
const (
	CodeProductNotFound       = "PRODUCT_NOT_FOUND"
	CodeCartNotFound          = "CART_NOT_FOUND"
	CodeLineNotFound          = "LINE_NOT_FOUND"
	CodePromotionNotFound     = "PROMOTION_NOT_FOUND"
	CodePackNotFound          = "PACK_NOT_FOUND"
	CodePaymentNotFound       = "PAYMENT_NOT_FOUND"
	CodeSaleNotFound          = "SALE_NOT_FOUND"
	CodeDiscountNotFound      = "DISCOUNT_NOT_FOUND"
	CodeCouponNotFound        = "COUPON_NOT_FOUND"
	CodeInvalidQuantity       = "INVALID_QUANTITY"
	CodeInvalidPaymentMethod  = "INVALID_PAYMENT_METHOD"
	CodeInvalidTotal          = "INVALID_TOTAL"
	CodeInvalidPromotionKind  = "INVALID_PROMOTION_KIND"
	CodeInvalidPromotionValue = "INVALID_PROMOTION_VALUE"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeAmountOverflow        = "AMOUNT_OVERFLOW"
	CodeNotApplicable         = "PROMOTION_NOT_APPLICABLE"
	CodeInactive              = "INACTIVE"
	CodeNotYetValid           = "NOT_YET_VALID"
	CodeExpired               = "EXPIRED"
	CodeAlreadyUsed           = "ALREADY_USED"
	CodeUsageExhausted        = "USAGE_EXHAUSTED"
	CodeInsufficientStock     = "INSUFFICIENT_STOCK"
	CodeEmptyCart             = "EMPTY_CART"
	CodeCartNotPending        = "CART_NOT_PENDING"
	CodeCheckoutInProgress    = "CHECKOUT_IN_PROGRESS"
	CodePaymentNotPending     = "PAYMENT_NOT_PENDING"
	CodeDuplicate             = "DUPLICATE"
	CodeStore                 = "STORE_ERROR"
	CodeBlobStore             = "BLOB_STORE_ERROR"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeAdminOnly             = "ADMIN_ONLY"
	CodeTooManyRequests       = "TOO_MANY_REQUESTS"
)

// Errorは呼び出し側が検査できる構造化エラー
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s/%s: %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPステータスへの対応
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Detailsに1件追加して返す
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// レスポンスの形 {"error": {...}}
type Body struct {
	Kind    Kind           `json:"kind"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Response struct {
	Error Body `json:"error"`
}

func (e *Error) Response() Response {
	return Response{Error: Body{Kind: e.Kind, Code: e.Code, Message: e.Message, Details: e.Details}}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// ストアのエラーはそのまま包んで返す
func Upstream(err error) *Error {
	return &Error{Kind: KindUpstream, Code: CodeStore, Message: "store error", Err: err}
}

func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

// errのCodeが一致するか
func HasCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}

func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}
