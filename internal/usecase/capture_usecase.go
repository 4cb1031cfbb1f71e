package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

// CaptureUsecase は決済キャプチャの突き合わせを担当する。
// クライアント確認経路とWebhook経路の両方から呼ばれ、同じ決済に対して
// 何度呼ばれても注文は1件しか作られない。
//
// 冪等性の要は保留注文のDELETE ... RETURNINGによる原子的クレームと、
// ordersテーブルのpaypal_order_id unique制約の二段構え。
type CaptureUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	pending    repo.PendingOrderRepository
	inventory  repo.InventoryRepository
	gateway    PaymentGateway
	notifier   NotificationSender

	//productionではWebhook署名検証を必須にする
	production bool
}

func NewCaptureUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	pending repo.PendingOrderRepository,
	inventory repo.InventoryRepository,
	gateway PaymentGateway,
	notifier NotificationSender,
	production bool,
) *CaptureUsecase {
	return &CaptureUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		pending:    pending,
		inventory:  inventory,
		gateway:    gateway,
		notifier:   notifier,
		production: production,
	}
}

type CaptureOutput struct {
	Success bool  `json:"success"`
	OrderID int64 `json:"order_id"`
}

// クライアント確認経路。ブラウザには本物のエラーを返す（リトライUIのため）。
func (u *CaptureUsecase) CaptureOrder(ctx context.Context, paypalOrderID string) (CaptureOutput, error) {
	if paypalOrderID == "" {
		return CaptureOutput{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "missing order id", nil)
	}

	res, err := u.gateway.CaptureOrder(ctx, paypalOrderID)
	if err != nil {
		log.Errorf("paypal capture failed: paypal_order_id=%s err=%v", paypalOrderID, err)
		return CaptureOutput{}, NewCodedError(http.StatusBadGateway, CodePaymentFailed, "payment capture failed", nil)
	}
	if !res.Completed {
		//資金は回収されていない。ローカル状態は一切触らない。
		return CaptureOutput{}, NewCodedError(http.StatusPaymentRequired, CodePaymentFailed, "payment not completed", nil)
	}

	orderID, err := u.finalize(ctx, paypalOrderID, res.CaptureID, res.AmountCents)
	if err != nil {
		return CaptureOutput{}, err
	}
	return CaptureOutput{Success: true, OrderID: orderID}, nil
}

type WebhookResult struct {
	Received bool   `json:"received"`
	Reason   string `json:"reason,omitempty"`
	OrderID  int64  `json:"order_id,omitempty"`
}

// Webhook経路。戻り値はそのまま200で返す診断情報で、processorに再送ストームを
// 起こさせないため内部失敗でもエラーは返さない。
func (u *CaptureUsecase) HandleWebhookEvent(ctx context.Context, rawBody []byte, h payment.WebhookSignatureHeaders) WebhookResult {
	//署名検証。production以外はsandboxイベントを通すためスキップする。
	if u.production {
		ok, err := u.gateway.VerifyWebhookSignature(ctx, h, rawBody)
		if err != nil {
			log.Errorf("webhook signature verification errored: %v", err)
			return WebhookResult{Received: false, Reason: "signature verification error"}
		}
		if !ok {
			log.Warnf("webhook signature verification failed, event ignored")
			return WebhookResult{Received: false, Reason: "signature verification failed"}
		}
	}

	ev, err := payment.ParseWebhookEvent(rawBody)
	if err != nil {
		log.Warnf("webhook event parse failed: %v", err)
		return WebhookResult{Received: false, Reason: "malformed event"}
	}

	switch ev.EventType {
	case payment.EventCaptureCompleted:
		if ev.OrderID == "" {
			log.Warnf("capture completed event without order id: event_id=%s", ev.EventID)
			return WebhookResult{Received: false, Reason: "missing order id"}
		}
		orderID, err := u.finalize(ctx, ev.OrderID, ev.CaptureID, ev.AmountCents)
		if err != nil {
			log.Errorf("webhook finalize failed: paypal_order_id=%s err=%v", ev.OrderID, err)
			return WebhookResult{Received: false, Reason: "internal error"}
		}
		return WebhookResult{Received: true, OrderID: orderID}

	case payment.EventCaptureDenied:
		//支払い拒否。保留注文を片付けて終わり。
		if ev.OrderID != "" {
			if err := u.pending.Delete(ctx, ev.OrderID); err != nil {
				log.Errorf("pending order cleanup failed: paypal_order_id=%s err=%v", ev.OrderID, err)
			}
		}
		return WebhookResult{Received: true}

	default:
		return WebhookResult{Received: true, Reason: "ignored event type"}
	}
}

// finalize は確定注文を1回だけ具現化する。
// 保留注文クレームと注文INSERTは同一トランザクション。INSERTが失敗すれば
// rollbackで保留行が戻るので、後からのリトライが成立する。
// コミット後の明細・在庫・メール・掃除はすべてbest-effort（支払いは済んでいる）。
func (u *CaptureUsecase) finalize(ctx context.Context, paypalOrderID string, captureID string, capturedCents int64) (int64, error) {
	var created model.Order
	var lines []model.PendingOrderLine
	claimed := false
	var existingID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		po, ok, err := r.PendingOrders().DeleteAndReturn(ctx, paypalOrderID)
		if err != nil {
			return err
		}
		if !ok {
			//保留注文なし。処理済みか未知かを区別しておく。
			o, found, err := r.Orders().FindByPayPalOrderID(ctx, paypalOrderID)
			if err != nil {
				return err
			}
			if found {
				log.Infof("capture already processed: paypal_order_id=%s order_id=%d", paypalOrderID, o.ID)
				existingID = o.ID
				return nil
			}
			log.Warnf("no pending order and no order for capture: paypal_order_id=%s capture_id=%s", paypalOrderID, captureID)
			return nil
		}

		//金額照合。processorが実際に回収した額が正。
		if diff := po.TotalAmount - capturedCents; diff > 1 || diff < -1 {
			log.Warnf("captured amount mismatch: paypal_order_id=%s expected=%d captured=%d",
				paypalOrderID, po.TotalAmount, capturedCents)
		}

		order := model.Order{
			PayPalOrderID: paypalOrderID,
			CaptureID:     captureID,
			CustomerName:  po.CustomerName,
			CustomerEmail: po.CustomerEmail,
			Address:       po.Address,
			City:          po.City,
			PostalCode:    po.PostalCode,
			Country:       po.Country,
			Status:        model.OrderStatusPaid,
			TotalAmount:   capturedCents,
		}

		id, err := r.Orders().Create(ctx, order)
		if err != nil {
			return err
		}

		order.ID = id
		created = order
		lines = po.Items
		claimed = true
		return nil
	})

	if err != nil {
		if errors.Is(err, repo.ErrDuplicateOrder) {
			//unique制約に当たった＝別経路が先に確定済み。冪等no-op。
			o, found, ferr := u.orders.FindByPayPalOrderID(ctx, paypalOrderID)
			if ferr == nil && found {
				log.Warnf("duplicate order insert treated as no-op: paypal_order_id=%s order_id=%d", paypalOrderID, o.ID)
				return o.ID, nil
			}
			log.Warnf("duplicate order insert, existing order not readable: paypal_order_id=%s", paypalOrderID)
			return 0, nil
		}
		return 0, NewHTTPError(http.StatusInternalServerError, "failed to finalize order")
	}

	if !claimed {
		return existingID, nil
	}

	//--- ここから下は支払い確定後。失敗してもログのみで成功応答は崩さない ---

	items := make([]model.OrderItem, 0, len(lines))
	for _, ln := range lines {
		items = append(items, model.OrderItem{
			OrderID:             created.ID,
			ProductID:           ln.ProductID,
			ProductNameSnapshot: ln.ProductName,
			UnitPriceSnapshot:   ln.UnitPrice,
			Quantity:            ln.Quantity,
		})
	}
	if err := u.orderItems.CreateBulk(ctx, created.ID, items); err != nil {
		log.Errorf("order item insert failed, data repair needed: order_id=%d err=%v", created.ID, err)
	}

	//行ごとの原子的在庫減算。1行の失敗は残りを止めない。
	for _, ln := range lines {
		decreased, err := u.inventory.DecreaseStockIfEnough(ctx, ln.ProductID, ln.Quantity)
		if err != nil {
			log.Errorf("stock decrement failed: order_id=%d product_id=%d qty=%d err=%v",
				created.ID, ln.ProductID, ln.Quantity, err)
			continue
		}
		if !decreased {
			log.Warnf("stock floor reached, oversell recorded: order_id=%d product_id=%d qty=%d",
				created.ID, ln.ProductID, ln.Quantity)
		}
	}

	if err := u.notifier.SendOrderStatus(ctx, OrderNotification{
		OrderID:       created.ID,
		CustomerName:  created.CustomerName,
		CustomerEmail: created.CustomerEmail,
		TotalAmount:   created.TotalAmount,
		Status:        created.Status,
		Items:         items,
	}); err != nil {
		log.Errorf("confirmation mail failed: order_id=%d err=%v", created.ID, err)
	}

	return created.ID, nil
}
