package repository

import (
	"context"

	"app/internal/domain/model"
)

// 保留注文の永続化の約束。
// 1決済＝1行（paypal_order_idが主キー）。
type PendingOrderRepository interface {
	Create(ctx context.Context, po model.PendingOrder) error

	FindByID(ctx context.Context, paypalOrderID string) (model.PendingOrder, bool, error)

	// 削除と取得を1文で行う原子的クレーム。
	// 0行削除＝すでに消費済み（claimed=false）。
	DeleteAndReturn(ctx context.Context, paypalOrderID string) (model.PendingOrder, bool, error)

	// 後片付け用の単純削除（拒否イベントなど）
	Delete(ctx context.Context, paypalOrderID string) error
}
