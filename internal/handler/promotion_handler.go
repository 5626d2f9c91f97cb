package handler

import (
	"net/http"
	"strconv"
	"time"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 割引・クーポンのHTTP
type PromotionHandler struct {
	uc      *usecase.PromotionUsecase
	limiter *middleware.RateLimiter
}

// DI
func NewPromotionHandler(uc *usecase.PromotionUsecase, limiter *middleware.RateLimiter) *PromotionHandler {
	return &PromotionHandler{uc: uc, limiter: limiter}
}

type ValidateCodeRequest struct {
	Code   string `json:"code"`
	CartID *int64 `json:"cart_id"`
}

type DiscountRequest struct {
	ProductID  int64      `json:"product_id"`
	Percentage int64      `json:"percentage"`
	Code       string     `json:"code"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
}

type CouponRequest struct {
	Code       string     `json:"code"`
	Kind       string     `json:"kind"`
	Value      int64      `json:"value"`
	SingleUse  bool       `json:"single_use"`
	MaxUses    *int64     `json:"max_uses"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	Active     *bool      `json:"active"`
}

type CouponActiveRequest struct {
	Active *bool `json:"active"`
}

func (h *PromotionHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	// コードの総当たりを防ぐためIPごとに制限
	e.POST("/promotions/validate", h.validate, h.limiter.Middleware())

	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg.JWTSecret))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/discounts", h.createDiscount)
	admin.GET("/discounts", h.listDiscounts)
	admin.DELETE("/discounts/:id", h.deleteDiscount)

	admin.POST("/coupons", h.createCoupon)
	admin.GET("/coupons", h.listCoupons)
	admin.PATCH("/coupons/:id", h.setCouponActive)
	admin.DELETE("/coupons/:id", h.deleteCoupon)
}

func (h *PromotionHandler) validate(c echo.Context) error {
	var req ValidateCodeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.ValidateCode(c.Request().Context(), req.Code, req.CartID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PromotionHandler) createDiscount(c echo.Context) error {
	var req DiscountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	d, err := h.uc.CreateDiscount(c.Request().Context(), usecase.CreateDiscountInput{
		ProductID:  req.ProductID,
		Percentage: req.Percentage,
		Code:       req.Code,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// ?product_id= で絞り込み
func (h *PromotionHandler) listDiscounts(c echo.Context) error {
	var productID *int64
	if v := c.QueryParam("product_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid product_id")
		}
		productID = &id
	}

	out, err := h.uc.ListDiscounts(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PromotionHandler) deleteDiscount(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteDiscount(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *PromotionHandler) createCoupon(c echo.Context) error {
	var req CouponRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	cp, err := h.uc.CreateCoupon(c.Request().Context(), usecase.CreateCouponInput{
		Code:       req.Code,
		Kind:       req.Kind,
		Value:      req.Value,
		SingleUse:  req.SingleUse,
		MaxUses:    req.MaxUses,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
		Active:     req.Active,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cp)
}

func (h *PromotionHandler) listCoupons(c echo.Context) error {
	out, err := h.uc.ListCoupons(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PromotionHandler) setCouponActive(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req CouponActiveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Active == nil {
		return badRequest(c, "active required")
	}

	cp, err := h.uc.SetCouponActive(c.Request().Context(), id, *req.Active)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *PromotionHandler) deleteCoupon(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteCoupon(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
