package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PackHandler struct {
	uc *usecase.PackUsecase
}

func NewPackHandler(uc *usecase.PackUsecase) *PackHandler {
	return &PackHandler{uc: uc}
}

type PackItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type PackRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       int64             `json:"price"`
	Items       []PackItemRequest `json:"items"`
}

func (r PackRequest) toInput() usecase.PackInput {
	items := make([]usecase.PackItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, usecase.PackItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return usecase.PackInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Items:       items,
	}
}

// 一覧・詳細は公開、作成・更新・削除はadmin
func (h *PackHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/packs", h.list)
	e.GET("/packs/:id", h.detail)

	admin := e.Group("/admin/packs")
	admin.Use(middleware.AuthJWT(cfg.JWTSecret))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func (h *PackHandler) list(c echo.Context) error {
	out, err := h.uc.ListPacks(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PackHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	p, err := h.uc.GetPack(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PackHandler) create(c echo.Context) error {
	var req PackRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.uc.CreatePack(c.Request().Context(), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PackHandler) update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req PackRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.uc.UpdatePack(c.Request().Context(), id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PackHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeletePack(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
