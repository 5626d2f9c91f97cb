package server

import (
	"net/http"
	"strings"

	"storefront/internal/config"
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Products      *handler.ProductHandler
	AdminProducts *handler.AdminProductHandler
	Carts         *handler.CartHandler
	Payments      *handler.PaymentHandler
	Promotions    *handler.PromotionHandler
	Packs         *handler.PackHandler
	Sales         *handler.SaleHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// アップロード画像の配信（外部URLのときは配信しない）
	if strings.HasPrefix(cfg.BlobPublicURL, "/") {
		e.Static(cfg.BlobPublicURL, cfg.BlobRoot)
	}

	h.Products.RegisterRoutes(e)
	h.AdminProducts.RegisterRoutes(e, cfg)
	h.Carts.RegisterRoutes(e, cfg)
	h.Payments.RegisterRoutes(e, cfg)
	h.Promotions.RegisterRoutes(e, cfg)
	h.Packs.RegisterRoutes(e, cfg)
	h.Sales.RegisterRoutes(e, cfg)
}
