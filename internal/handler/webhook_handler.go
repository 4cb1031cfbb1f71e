package handler

import (
	"io"
	"net/http"

	"app/internal/payment"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// PayPal Webhook受け口。
// 内部でどう転んでも200を返す。非2xxを返すとprocessorが再送し続けるため。
type WebhookHandler struct {
	captureUC *usecase.CaptureUsecase
}

func NewWebhookHandler(captureUC *usecase.CaptureUsecase) *WebhookHandler {
	return &WebhookHandler{captureUC: captureUC}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/paypal", h.handle)
}

func (h *WebhookHandler) handle(c echo.Context) error {
	//署名検証に生のbodyが必要
	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Errorf("webhook body read failed: %v", err)
		return c.JSON(http.StatusOK, usecase.WebhookResult{Received: false, Reason: "body read error"})
	}

	headers := payment.WebhookSignatureHeaders{
		TransmissionID:   c.Request().Header.Get("Paypal-Transmission-Id"),
		TransmissionTime: c.Request().Header.Get("Paypal-Transmission-Time"),
		TransmissionSig:  c.Request().Header.Get("Paypal-Transmission-Sig"),
		CertURL:          c.Request().Header.Get("Paypal-Cert-Url"),
		AuthAlgo:         c.Request().Header.Get("Paypal-Auth-Algo"),
	}

	result := h.captureUC.HandleWebhookEvent(c.Request().Context(), rawBody, headers)
	return c.JSON(http.StatusOK, result)
}
