package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 画像アップロードの上限（10MB）
const maxImageBytes = 10 << 20

type ProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Stock       int64    `json:"stock"`
	ImageURLs   []string `json:"image_urls"`
	VideoURLs   []string `json:"video_urls"`
	MediaMeta   string   `json:"media_meta"`
}

func (r ProductRequest) toInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Stock:       r.Stock,
		ImageURLs:   r.ImageURLs,
		VideoURLs:   r.VideoURLs,
		MediaMeta:   r.MediaMeta,
	}
}

type ReorderRequest struct {
	Updates []usecase.PositionUpdate `json:"updates"`
}

type ReorderResponse struct {
	Results []usecase.ReorderResult `json:"results"`
}

// /admin/products と /admin/audit-logs をまとめる
type AdminProductHandler struct {
	uc    *usecase.ProductUsecase
	audit *usecase.AuditLogUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase, audit *usecase.AuditLogUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc, audit: audit}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg.JWTSecret))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/products", h.createProduct)
	admin.PUT("/products/positions", h.reorder)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.POST("/products/:id/images", h.uploadImage)
	admin.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	actor, _ := customerIDFromContext(c)
	p, err := h.uc.UpdateProduct(c.Request().Context(), actor, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	actor, _ := customerIDFromContext(c)
	if err := h.uc.DeleteProduct(c.Request().Context(), actor, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminProductHandler) reorder(c echo.Context) error {
	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	actor, _ := customerIDFromContext(c)
	results := h.uc.ReorderPositions(c.Request().Context(), actor, req.Updates)

	return c.JSON(http.StatusOK, ReorderResponse{Results: results})
}

// multipartの"image"を受け取る
func (h *AdminProductHandler) uploadImage(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "image file required")
	}
	if fh.Size > maxImageBytes {
		return badRequest(c, "image too large")
	}

	src, err := fh.Open()
	if err != nil {
		return badRequest(c, "image could not be read")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageBytes+1))
	if err != nil {
		return badRequest(c, "image could not be read")
	}
	if len(data) > maxImageBytes {
		return badRequest(c, "image too large")
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	p, err := h.uc.UploadProductImage(c.Request().Context(), id, data, contentType)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) listAuditLogs(c echo.Context) error {
	var f repo.AuditLogFilter
	f.Actor = c.QueryParam("actor")

	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		f.ResourceID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid from")
		}
		f.CreatedFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid to")
		}
		f.CreatedTo = &t
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		f.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid offset")
		}
		f.Offset = o
	}

	logs, err := h.audit.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
