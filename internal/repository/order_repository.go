package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
)

// paypal_order_id / capture_id のunique制約違反
var ErrDuplicateOrder = errors.New("duplicate order")

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	Email  string
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	// Createはpaypal_order_idのunique制約に当たるとErrDuplicateOrderを返す。
	// これが冪等no-opの合図になる。
	Create(ctx context.Context, order model.Order) (int64, error)

	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// 決済processor側IDでの逆引き（冪等判定の補助）
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (model.Order, bool, error)
	FindByCaptureID(ctx context.Context, captureID string) (model.Order, bool, error)

	// 管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
