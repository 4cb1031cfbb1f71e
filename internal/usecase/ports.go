package usecase

import (
	"context"

	"app/internal/domain/model"
	"app/internal/payment"
)

// 決済processorへの約束。実装はinternal/payment。
type PaymentGateway interface {
	// 計算済み合計で外部注文を作り、processorのorder idを返す
	CreateOrder(ctx context.Context, amountCents int64) (string, error)

	// 承認済み注文をキャプチャする
	CaptureOrder(ctx context.Context, paypalOrderID string) (payment.CaptureResult, error)

	// Webhook署名検証
	VerifyWebhookSignature(ctx context.Context, h payment.WebhookSignatureHeaders, rawBody []byte) (bool, error)
}

// 注文確定/ステータス変更メールの内容
type OrderNotification struct {
	OrderID       int64
	CustomerName  string
	CustomerEmail string
	TotalAmount   int64
	Status        model.OrderStatus
	Items         []model.OrderItem
}

// メール送信の約束。実装はinternal/mailer。
// 呼び出し側はキャプチャ成功後の経路では失敗をログするだけで握りつぶす。
type NotificationSender interface {
	SendOrderStatus(ctx context.Context, n OrderNotification) error
}
