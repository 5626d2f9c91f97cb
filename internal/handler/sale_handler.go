package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// POS（店頭販売）のHTTP
type SaleHandler struct {
	uc *usecase.SaleUsecase
}

func NewSaleHandler(uc *usecase.SaleUsecase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

type SaleLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

type RecordSaleRequest struct {
	Lines         []SaleLineRequest `json:"lines"`
	Total         int64             `json:"total"`
	PaymentMethod string            `json:"payment_method"`
}

func (h *SaleHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin/sales")
	admin.Use(middleware.AuthJWT(cfg.JWTSecret))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("", h.record)
	admin.GET("/:id", h.receipt)
	admin.GET("/:id/receipt.pdf", h.receiptPDF)
}

func (h *SaleHandler) record(c echo.Context) error {
	var req RecordSaleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	lines := make([]usecase.SaleLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, usecase.SaleLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	sale, err := h.uc.RecordSale(c.Request().Context(), usecase.RecordSaleInput{
		Lines:         lines,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) receipt(c echo.Context) error {
	sale, err := h.uc.GetReceipt(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) receiptPDF(c echo.Context) error {
	id := c.Param("id")
	pdf, err := h.uc.RenderReceiptPDF(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=receipt-"+id+".pdf")
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
