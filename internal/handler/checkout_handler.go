package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 公開チェックアウトAPI。認証なし（ゲスト購入）。
type CheckoutHandler struct {
	checkoutUC *usecase.CheckoutUsecase
	captureUC  *usecase.CaptureUsecase
}

func NewCheckoutHandler(checkoutUC *usecase.CheckoutUsecase, captureUC *usecase.CaptureUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkoutUC: checkoutUC, captureUC: captureUC}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/checkout")
	g.POST("/orders", h.createIntent)
	g.POST("/orders/:orderID/capture", h.capture)
}

func (h *CheckoutHandler) createIntent(c echo.Context) error {
	var req usecase.CheckoutInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.checkoutUC.CreateOrderIntent(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// クライアント確認経路のキャプチャ。失敗は本物のエラーで返す（UIがリトライを出す）。
func (h *CheckoutHandler) capture(c echo.Context) error {
	orderID := c.Param("orderID")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
	}

	out, err := h.captureUC.CaptureOrder(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
