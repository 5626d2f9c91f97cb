package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartsのHTTP
type CartHandler struct {
	uc       *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, checkout *usecase.CheckoutUsecase) *CartHandler {
	return &CartHandler{uc: uc, checkout: checkout}
}

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type ShipmentRequest struct {
	Address string `json:"address"`
	Courier string `json:"courier"`
}

type CheckoutRequest struct {
	Method        string           `json:"method"`
	Shipment      *ShipmentRequest `json:"shipment"`
	PromotionCode *string          `json:"promotion_code"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/carts")
	g.Use(middleware.OptionalAuthJWT(cfg.JWTSecret))

	g.POST("", h.createCart)
	g.GET("/current", h.currentCart, middleware.AuthJWT(cfg.JWTSecret))

	//顧客に紐づいたカートは本人だけ
	owned := h.requireCartOwner
	g.GET("/:id", h.getCart, owned)
	g.POST("/:id/items", h.addItem, owned)
	g.PATCH("/:id/items/:item_id", h.patchItem, owned)
	g.DELETE("/:id/items/:item_id", h.deleteItem, owned)
	g.POST("/:id/checkout", h.checkoutCart, owned)
	g.POST("/:id/cancel", h.cancelCart, owned)
}

// 他人のカートは存在しない扱い（404）
func (h *CartHandler) requireCartOwner(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cartID, ok := parseIDParam(c, "id")
		if !ok {
			return badRequest(c, "invalid id")
		}

		customerID, _ := customerIDFromContext(c)
		if err := h.uc.AuthorizeCart(c.Request().Context(), cartID, customerID); err != nil {
			return writeError(c, err)
		}
		return next(c)
	}
}

// トークンがあれば顧客に紐づける
func (h *CartHandler) createCart(c echo.Context) error {
	var customerID *string
	if id, ok := customerIDFromContext(c); ok {
		customerID = &id
	}

	cart, err := h.uc.CreateCart(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cart)
}

func (h *CartHandler) currentCart(c echo.Context) error {
	customerID, ok := customerIDFromContext(c)
	if !ok {
		return badRequest(c, "customer required")
	}

	cart, err := h.uc.GetOrCreatePendingCart(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetEnrichedCart(c.Request().Context(), cart.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) getCart(c echo.Context) error {
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetEnrichedCart(c.Request().Context(), cartID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	item, err := h.uc.AddItem(c.Request().Context(), cartID, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return badRequest(c, "invalid item_id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	item, err := h.uc.UpdateItemQuantity(c.Request().Context(), cartID, itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return badRequest(c, "invalid item_id")
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), cartID, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) checkoutCart(c echo.Context) error {
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	in := usecase.CheckoutInput{
		Method:        req.Method,
		PromotionCode: req.PromotionCode,
	}
	if req.Shipment != nil {
		in.Shipment = &usecase.ShipmentInput{Address: req.Shipment.Address, Courier: req.Shipment.Courier}
	}

	out, err := h.checkout.Checkout(c.Request().Context(), cartID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CartHandler) cancelCart(c echo.Context) error {
	cartID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	cart, err := h.uc.CancelCart(c.Request().Context(), cartID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}
