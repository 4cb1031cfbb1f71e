package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/validator"

	"github.com/labstack/gommon/log"
)

// CheckoutUsecase はチェックアウト意思確定（注文インテント作成）を担当する。
// ここでは在庫チェックと合計計算だけを行い、在庫も注文も一切変更しない。
type CheckoutUsecase struct {
	products repo.ProductRepository
	pending  repo.PendingOrderRepository
	gateway  PaymentGateway
}

func NewCheckoutUsecase(
	products repo.ProductRepository,
	pending repo.PendingOrderRepository,
	gateway PaymentGateway,
) *CheckoutUsecase {
	return &CheckoutUsecase{products: products, pending: pending, gateway: gateway}
}

// リクエストに価格フィールドは存在しない。クライアント価格は受け取りすらしない。
type CheckoutItemInput struct {
	ProductID int64 `json:"id"`
	Quantity  int64 `json:"quantity"`
}

type CheckoutCustomerInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CheckoutInput struct {
	Items    []CheckoutItemInput   `json:"items"`
	Customer CheckoutCustomerInput `json:"customer"`
}

type CheckoutOutput struct {
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
}

func (u *CheckoutUsecase) CreateOrderIntent(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	//構造チェック（空カート・数量・ID）
	if len(in.Items) == 0 {
		return CheckoutOutput{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "cart is empty", nil)
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 {
			return CheckoutOutput{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid product id", nil)
		}
		if it.Quantity < 1 {
			return CheckoutOutput{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid quantity", nil)
		}
	}

	//顧客・配送先の構造チェック
	if field, ok := validator.ValidateCustomer(validator.CustomerInput{
		Name:       in.Customer.Name,
		Email:      in.Customer.Email,
		Address:    in.Customer.Address,
		City:       in.Customer.City,
		PostalCode: in.Customer.PostalCode,
		Country:    in.Customer.Country,
	}); !ok {
		return CheckoutOutput{}, NewCodedError(http.StatusBadRequest, CodeValidationError,
			"invalid customer data", map[string]interface{}{"field": field})
	}

	//同一商品の重複行は合算してから検証する
	qtyByID := make(map[int64]int64, len(in.Items))
	ids := make([]int64, 0, len(in.Items))
	for _, it := range in.Items {
		if _, seen := qtyByID[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qtyByID[it.ProductID] += it.Quantity
	}

	//価格と在庫はサーバー側の一括読みが唯一の情報源
	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	//1つでも見つからなければ全体を拒否（部分注文は作らない）
	for _, id := range ids {
		p, found := byID[id]
		if !found || !p.IsActive {
			return CheckoutOutput{}, NewCodedError(http.StatusNotFound, CodeProductNotFound,
				"product not found", map[string]interface{}{"product_id": id})
		}

		//在庫不足も全体を拒否。黙って数量を丸めたりしない。
		if qtyByID[id] > p.Stock {
			return CheckoutOutput{}, NewCodedError(http.StatusConflict, CodeInsufficientStock,
				"insufficient stock", map[string]interface{}{
					"product_id": id,
					"product":    p.Name,
					"available":  p.Stock,
					"requested":  qtyByID[id],
				})
		}
	}

	//合計はサーバー価格×数量のみ
	lines := make([]model.PendingOrderLine, 0, len(ids))
	var total int64
	for _, id := range ids {
		p := byID[id]
		lines = append(lines, model.PendingOrderLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    qtyByID[id],
		})
		total += p.Price * qtyByID[id]
	}

	//決済processorに注文作成。失敗ならここで終わり（保留注文はまだ何も書いていない）。
	paypalOrderID, err := u.gateway.CreateOrder(ctx, total)
	if err != nil {
		log.Errorf("paypal create order failed: %v", err)
		return CheckoutOutput{}, NewCodedError(http.StatusBadGateway, CodePaymentFailed, "payment processor error", nil)
	}

	po := model.PendingOrder{
		PayPalOrderID: paypalOrderID,
		Items:         lines,
		TotalAmount:   total,
		CustomerName:  in.Customer.Name,
		CustomerEmail: in.Customer.Email,
		Address:       in.Customer.Address,
		City:          in.Customer.City,
		PostalCode:    in.Customer.PostalCode,
		Country:       in.Customer.Country,
	}

	if err := u.pending.Create(ctx, po); err != nil {
		//外部注文だけが存在する孤児状態。手動リコンサイル対象なので大声でログする。
		log.Errorf("CRITICAL: pending order write failed after paypal order was created, manual reconciliation required: paypal_order_id=%s total=%d err=%v",
			paypalOrderID, total, err)
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to persist order intent")
	}

	return CheckoutOutput{OrderID: paypalOrderID, Amount: total}, nil
}
