package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 支払いの確定・却下（admin）
type PaymentHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewPaymentHandler(uc *usecase.CheckoutUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin/payments")
	admin.Use(middleware.AuthJWT(cfg.JWTSecret))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/:id/confirm", h.confirm)
	admin.POST("/:id/reject", h.reject)
}

func (h *PaymentHandler) confirm(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actor, _ := customerIDFromContext(c)

	p, err := h.uc.ConfirmPayment(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) reject(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actor, _ := customerIDFromContext(c)

	p, err := h.uc.RejectPayment(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
