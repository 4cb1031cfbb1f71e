package repository

import (
	"context"

	"app/internal/domain/model"
)

// 注文明細の永続化。明細は確定時にまとめて書く。
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
