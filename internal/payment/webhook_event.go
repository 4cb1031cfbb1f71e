package payment

import (
	"encoding/json"
	"fmt"
)

// 扱うWebhookイベント種別
const (
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	EventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
)

// PayPalのイベント封筒から必要な値だけを抜いたもの
type WebhookEvent struct {
	EventID     string
	EventType   string
	CaptureID   string
	OrderID     string
	AmountCents int64
}

// イベント封筒をパースする。
// capture系イベントのresource.idはcapture id、注文idはsupplementary_dataに入っている。
func ParseWebhookEvent(raw []byte) (WebhookEvent, error) {
	var env struct {
		ID        string `json:"id"`
		EventType string `json:"event_type"`
		Resource  struct {
			ID     string `json:"id"`
			Amount struct {
				Value string `json:"value"`
			} `json:"amount"`
			SupplementaryData struct {
				RelatedIDs struct {
					OrderID string `json:"order_id"`
				} `json:"related_ids"`
			} `json:"supplementary_data"`
		} `json:"resource"`
	}

	if err := json.Unmarshal(raw, &env); err != nil {
		return WebhookEvent{}, err
	}
	if env.EventType == "" {
		return WebhookEvent{}, fmt.Errorf("webhook event: missing event_type")
	}

	ev := WebhookEvent{
		EventID:   env.ID,
		EventType: env.EventType,
		CaptureID: env.Resource.ID,
		OrderID:   env.Resource.SupplementaryData.RelatedIDs.OrderID,
	}

	if env.Resource.Amount.Value != "" {
		cents, err := ParseAmount(env.Resource.Amount.Value)
		if err != nil {
			return WebhookEvent{}, err
		}
		ev.AmountCents = cents
	}
	return ev, nil
}
