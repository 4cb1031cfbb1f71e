package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	notifier  NotificationSender
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository, notifier NotificationSender) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, notifier: notifier}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

type AdminOrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type AdminOrderOutput struct {
	ID            int64                  `json:"id"`
	CustomerName  string                 `json:"customer_name"`
	CustomerEmail string                 `json:"customer_email"`
	Address       string                 `json:"address"`
	City          string                 `json:"city"`
	PostalCode    string                 `json:"postal_code"`
	Country       string                 `json:"country"`
	Status        string                 `json:"status"`
	TotalAmount   int64                  `json:"total_amount"`
	CreatedAt     time.Time              `json:"created_at"`
	Items         []AdminOrderItemOutput `json:"items"`
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]AdminOrderOutput, error) {
	if f.Page < 1 {
		return []AdminOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []AdminOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var outs []AdminOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]AdminOrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toAdminOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []AdminOrderOutput{}, err
	}
	return outs, nil
}

// ステータス更新。
// 遷移の隣接関係はあえて強制しない（オペレーターの訂正操作を許す運用判断）。
// enum外の値だけを拒否する。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (AdminOrderOutput, error) {
	if actorAdminUserID <= 0 {
		return AdminOrderOutput{}, NewCodedError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
	}
	if orderID <= 0 {
		return AdminOrderOutput{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid id", nil)
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return AdminOrderOutput{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid status", nil)
	}

	var out AdminOrderOutput
	var changed bool

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewCodedError(http.StatusNotFound, CodeOrderNotFound, "order not found", nil)
		}
		if err != nil {
			return NewCodedError(http.StatusInternalServerError, CodeUpdateFailed, "db error", nil)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewCodedError(http.StatusInternalServerError, CodeUpdateFailed, "db error", nil)
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			out = toAdminOrderOutput(o, items)
			return nil
		}

		beforeStatus := string(o.Status)
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewCodedError(http.StatusNotFound, CodeOrderNotFound, "order not found", nil)
			}
			return NewCodedError(http.StatusInternalServerError, CodeUpdateFailed, "update failed", nil)
		}

		//監査ログ
		beforeJSON := `{"status":"` + beforeStatus + `"}`
		afterJSON := `{"status":"` + string(newStatus) + `"}`
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewCodedError(http.StatusInternalServerError, CodeUpdateFailed, "db error", nil)
		}

		o.Status = newStatus
		out = toAdminOrderOutput(o, items)
		changed = true
		return nil
	})

	if err != nil {
		return AdminOrderOutput{}, err
	}

	//ステータス変更メールはbest-effort
	if changed {
		if err := u.notifier.SendOrderStatus(ctx, OrderNotification{
			OrderID:       out.ID,
			CustomerName:  out.CustomerName,
			CustomerEmail: out.CustomerEmail,
			TotalAmount:   out.TotalAmount,
			Status:        newStatus,
		}); err != nil {
			log.Errorf("status change mail failed: order_id=%d status=%s err=%v", out.ID, newStatus, err)
		}
	}

	return out, nil
}

func toAdminOrderOutput(o model.Order, items []model.OrderItem) AdminOrderOutput {
	outItems := make([]AdminOrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, AdminOrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return AdminOrderOutput{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Address:       o.Address,
		City:          o.City,
		PostalCode:    o.PostalCode,
		Country:       o.Country,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
