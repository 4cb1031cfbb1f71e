package model

import "time"

// 保留注文の1明細（チェックアウト時点のサーバー計算スナップショット）
type PendingOrderLine struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
}

// 保留注文。チェックアウト意思確定〜決済キャプチャ完了の橋渡しをする一時レコード。
// PayPalのorder idが主キーなので、同じ決済につき必ず1行。
// キャプチャ成功または拒否で削除される。
type PendingOrder struct {
	PayPalOrderID string             `gorm:"column:paypal_order_id;primaryKey;type:varchar(64)" json:"paypal_order_id"`
	Items         []PendingOrderLine `gorm:"serializer:json;type:jsonb;not null" json:"items"`
	TotalAmount   int64              `gorm:"not null" json:"total_amount"`
	CustomerName  string             `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string             `gorm:"type:varchar(255);not null" json:"customer_email"`
	Address       string             `gorm:"type:varchar(255);not null" json:"address"`
	City          string             `gorm:"type:varchar(100);not null" json:"city"`
	PostalCode    string             `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country       string             `gorm:"type:varchar(100);not null" json:"country"`
	CreatedAt     time.Time          `gorm:"not null;autoCreateTime" json:"created_at"`
}
