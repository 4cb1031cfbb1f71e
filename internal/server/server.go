package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	Checkout     *handler.CheckoutHandler
	Webhook      *handler.WebhookHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
	AdminAudit   *handler.AdminAuditHandler
}

// New はechoを組み立ててルートを登録する。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{cfg.FEURL},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}))
	}

	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e)
	h.Webhook.RegisterRoutes(e)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.AdminProduct.RegisterRoutes(e, cfg)
	h.AdminAudit.RegisterRoutes(e, cfg)

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
