package usecase_test

import (
	"context"
	"strings"
	"testing"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	pending    repo.PendingOrderRepository
	inventory  repo.InventoryRepository
	products   repo.ProductRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository               { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *TxReposMock) PendingOrders() repo.PendingOrderRepository { return r.pending }
func (r *TxReposMock) Inventory() repo.InventoryRepository        { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository           { return r.products }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (model.Order, bool, error) {
	args := m.Called(ctx, paypalOrderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) FindByCaptureID(ctx context.Context, captureID string) (model.Order, bool, error) {
	args := m.Called(ctx, captureID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type PendingOrderRepoMock struct{ mock.Mock }

func (m *PendingOrderRepoMock) Create(ctx context.Context, po model.PendingOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *PendingOrderRepoMock) FindByID(ctx context.Context, paypalOrderID string) (model.PendingOrder, bool, error) {
	args := m.Called(ctx, paypalOrderID)
	po, _ := args.Get(0).(model.PendingOrder)
	return po, args.Bool(1), args.Error(2)
}

func (m *PendingOrderRepoMock) DeleteAndReturn(ctx context.Context, paypalOrderID string) (model.PendingOrder, bool, error) {
	args := m.Called(ctx, paypalOrderID)
	po, _ := args.Get(0).(model.PendingOrder)
	return po, args.Bool(1), args.Error(2)
}

func (m *PendingOrderRepoMock) Delete(ctx context.Context, paypalOrderID string) error {
	args := m.Called(ctx, paypalOrderID)
	return args.Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Gateway / Notifier mocks
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateOrder(ctx context.Context, amountCents int64) (string, error) {
	args := m.Called(ctx, amountCents)
	return args.String(0), args.Error(1)
}

func (m *GatewayMock) CaptureOrder(ctx context.Context, paypalOrderID string) (payment.CaptureResult, error) {
	args := m.Called(ctx, paypalOrderID)
	res, _ := args.Get(0).(payment.CaptureResult)
	return res, args.Error(1)
}

func (m *GatewayMock) VerifyWebhookSignature(ctx context.Context, h payment.WebhookSignatureHeaders, rawBody []byte) (bool, error) {
	args := m.Called(ctx, h, rawBody)
	return args.Bool(0), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) SendOrderStatus(ctx context.Context, n usecase.OrderNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// =====================
// Helpers
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertHTTPStatus(t *testing.T, err error, wantStatus int) *usecase.HTTPError {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "want *usecase.HTTPError, got %T", err) {
		assert.Equal(t, wantStatus, he.Status)
	}
	return he
}
