package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func validCustomer() usecase.CheckoutCustomerInput {
	return usecase.CheckoutCustomerInput{
		Name:       "山田 太郎",
		Email:      "taro@example.com",
		Address:    "1-2-3 Chiyoda",
		City:       "Tokyo",
		PostalCode: "100-0001",
		Country:    "JP",
	}
}

func TestCheckoutUsecase_CreateOrderIntent_EmptyCart(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	_, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items:    nil,
		Customer: validCustomer(),
	})

	he := assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, usecase.CodeValidationError, he.Code)
	gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_CreateOrderIntent_InvalidQuantity(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	_, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items:    []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 0}},
		Customer: validCustomer(),
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestCheckoutUsecase_CreateOrderIntent_InvalidCustomerField(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	c := validCustomer()
	c.Email = "not-an-email"

	_, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items:    []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		Customer: c,
	})

	he := assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, usecase.CodeValidationError, he.Code)
	assert.Equal(t, "email", he.Details["field"])
	products.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

// 合計は常にサーバー側の価格×数量。リクエストは価格を運びすらしない。
func TestCheckoutUsecase_CreateOrderIntent_TotalFromServerPrices(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	products.On("FindByIDs", mock.Anything, []int64{1, 2}).Return([]model.Product{
		{ID: 1, Name: "Mug", Price: 1500, Stock: 10, IsActive: true},
		{ID: 2, Name: "Shirt", Price: 2500, Stock: 5, IsActive: true},
	}, nil)

	// 1500*2 + 2500*1 = 5500
	gateway.On("CreateOrder", mock.Anything, int64(5500)).Return("PAYPAL-1", nil)

	pending.On("Create", mock.Anything, mock.MatchedBy(func(po model.PendingOrder) bool {
		return po.PayPalOrderID == "PAYPAL-1" &&
			po.TotalAmount == 5500 &&
			len(po.Items) == 2 &&
			po.Items[0].UnitPrice == 1500 &&
			po.Items[1].UnitPrice == 2500
	})).Return(nil)

	out, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
		Customer: validCustomer(),
	})

	assert.NoError(t, err)
	assert.Equal(t, "PAYPAL-1", out.OrderID)
	assert.Equal(t, int64(5500), out.Amount)
	pending.AssertExpectations(t)
}

// 同一商品の重複行は合算してから在庫と突き合わせる
func TestCheckoutUsecase_CreateOrderIntent_MergesDuplicateLines(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	products.On("FindByIDs", mock.Anything, []int64{7}).Return([]model.Product{
		{ID: 7, Name: "Mug", Price: 1000, Stock: 5, IsActive: true},
	}, nil)

	// 3+3=6 > 5 なので拒否。個別行(3)では通ってしまう値を選んでいる。
	_, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: 7, Quantity: 3},
			{ProductID: 7, Quantity: 3},
		},
		Customer: validCustomer(),
	})

	he := assertHTTPStatus(t, err, http.StatusConflict)
	assert.Equal(t, usecase.CodeInsufficientStock, he.Code)
	assert.Equal(t, int64(6), he.Details["requested"])
	gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_CreateOrderIntent_InsufficientStockDetails(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Mug", Price: 1500, Stock: 2, IsActive: true},
	}, nil)

	_, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items:    []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 3}},
		Customer: validCustomer(),
	})

	he := assertHTTPStatus(t, err, http.StatusConflict)
	assert.Equal(t, usecase.CodeInsufficientStock, he.Code)
	assert.Equal(t, "Mug", he.Details["product"])
	assert.Equal(t, int64(2), he.Details["available"])
	assert.Equal(t, int64(3), he.Details["requested"])

	// 決済processorにも保留注文にも触れていない
	gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	pending.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_CreateOrderIntent_UnknownProduct(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	// id=2は存在しない
	products.On("FindByIDs", mock.Anything, []int64{1, 2}).Return([]model.Product{
		{ID: 1, Name: "Mug", Price: 1500, Stock: 10, IsActive: true},
	}, nil)

	_, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 1},
		},
		Customer: validCustomer(),
	})

	he := assertHTTPStatus(t, err, http.StatusNotFound)
	assert.Equal(t, usecase.CodeProductNotFound, he.Code)
	gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_CreateOrderIntent_InactiveProductRejected(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Mug", Price: 1500, Stock: 10, IsActive: false},
	}, nil)

	_, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items:    []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		Customer: validCustomer(),
	})

	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestCheckoutUsecase_CreateOrderIntent_GatewayFailure(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Mug", Price: 1500, Stock: 10, IsActive: true},
	}, nil)
	gateway.On("CreateOrder", mock.Anything, int64(1500)).Return("", errors.New("processor down"))

	_, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items:    []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		Customer: validCustomer(),
	})

	he := assertHTTPStatus(t, err, http.StatusBadGateway)
	assert.Equal(t, usecase.CodePaymentFailed, he.Code)

	// 外部注文が無いので保留注文も書かれない
	pending.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_CreateOrderIntent_PendingWriteFailure(t *testing.T) {
	products := new(ProductRepoMock)
	pending := new(PendingOrderRepoMock)
	gateway := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(products, pending, gateway)

	products.On("FindByIDs", mock.Anything, []int64{1}).Return([]model.Product{
		{ID: 1, Name: "Mug", Price: 1500, Stock: 10, IsActive: true},
	}, nil)
	gateway.On("CreateOrder", mock.Anything, int64(1500)).Return("PAYPAL-9", nil)
	pending.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := uc.CreateOrderIntent(context.Background(), usecase.CheckoutInput{
		Items:    []usecase.CheckoutItemInput{{ProductID: 1, Quantity: 1}},
		Customer: validCustomer(),
	})

	assertHTTPStatus(t, err, http.StatusInternalServerError)
	assertErrContains(t, err, "persist")
}
