package model

import "time"

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// 有効なステータスかどうか
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusReadyForPickup,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// 確定済み注文。決済キャプチャ成功時に1回だけ作成され、以後削除されない。
// paypal_order_id のuniqueIndexが二重計上防止の最後の砦。
type Order struct {
	ID            int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	PayPalOrderID string      `gorm:"column:paypal_order_id;type:varchar(64);not null;uniqueIndex" json:"-"`
	CaptureID     string      `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	CustomerName  string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string      `gorm:"type:varchar(255);not null" json:"customer_email"`
	Address       string      `gorm:"type:varchar(255);not null" json:"address"`
	City          string      `gorm:"type:varchar(100);not null" json:"city"`
	PostalCode    string      `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country       string      `gorm:"type:varchar(100);not null" json:"country"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount   int64       `gorm:"not null" json:"total_amount"`
	CreatedAt     time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
