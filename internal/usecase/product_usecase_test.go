package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newProductFixture() (*ProductRepoMock, *InventoryRepoMock, *AuditRepoMock, *usecase.ProductUsecase) {
	products := new(ProductRepoMock)
	inventory := new(InventoryRepoMock)
	audit := new(AuditRepoMock)
	return products, inventory, audit, usecase.NewProductUsecase(products, inventory, audit)
}

func TestProductUsecase_ListPublicProducts_Validation(t *testing.T) {
	_, _, _, uc := newProductFixture()

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})
	assertErrContains(t, err, "invalid page")

	_, err = uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 101})
	assertErrContains(t, err, "invalid limit")
}

func TestProductUsecase_GetProductDetail_HidesInactive(t *testing.T) {
	products, _, _, uc := newProductFixture()

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Name: "Mug", IsActive: false,
	}, nil)

	_, err := uc.GetProductDetail(context.Background(), 1)
	he := assertHTTPStatus(t, err, http.StatusNotFound)
	assert.Equal(t, usecase.CodeProductNotFound, he.Code)
}

func TestProductUsecase_GetProductDetail_NotFound(t *testing.T) {
	products, _, _, uc := newProductFixture()

	products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.GetProductDetail(context.Background(), 99)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestProductUsecase_AdminCreateProduct_Validation(t *testing.T) {
	_, _, _, uc := newProductFixture()

	_, err := uc.AdminCreateProduct(context.Background(), 0, usecase.AdminCreateProductInput{Name: "Mug"})
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	_, err = uc.AdminCreateProduct(context.Background(), 7, usecase.AdminCreateProductInput{Name: "  "})
	assertErrContains(t, err, "invalid name")

	_, err = uc.AdminCreateProduct(context.Background(), 7, usecase.AdminCreateProductInput{Name: "Mug", Price: -1})
	assertErrContains(t, err, "invalid price")
}

func TestProductUsecase_AdminCreateProduct_TrimsName(t *testing.T) {
	products, _, _, uc := newProductFixture()

	products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Mug" && p.Price == 1500
	})).Return(model.Product{ID: 1, Name: "Mug", Price: 1500}, nil)

	p, err := uc.AdminCreateProduct(context.Background(), 7, usecase.AdminCreateProductInput{
		Name: "  Mug  ", Price: 1500, Stock: 10, IsActive: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	products.AssertExpectations(t)
}

// 在庫の直接設定は調整履歴と監査ログを必ず伴う
func TestProductUsecase_AdminSetStock_WritesAdjustmentAndAudit(t *testing.T) {
	products, inventory, audit, uc := newProductFixture()

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Mug", Stock: 4}, nil)
	inventory.On("SetStock", mock.Anything, int64(1), int64(10)).Return(nil)
	inventory.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 1 && a.AdminUserID == 7 && a.Delta == 6 && a.Reason == "restock"
	})).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock &&
			l.ResourceType == model.AuditResourceProduct &&
			l.ResourceID == 1
	})).Return(nil)

	err := uc.AdminSetStock(context.Background(), 7, 1, 10, "restock")
	assert.NoError(t, err)

	inventory.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestProductUsecase_AdminSetStock_RejectsNegative(t *testing.T) {
	_, inventory, _, uc := newProductFixture()

	err := uc.AdminSetStock(context.Background(), 7, 1, -1, "oops")
	assertHTTPStatus(t, err, http.StatusBadRequest)
	inventory.AssertNotCalled(t, "SetStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductUsecase_AdminDeleteProduct_NotFound(t *testing.T) {
	products, _, _, uc := newProductFixture()

	products.On("SoftDelete", mock.Anything, int64(99)).Return(repo.ErrNotFound)

	err := uc.AdminDeleteProduct(context.Background(), 7, 99)
	he := assertHTTPStatus(t, err, http.StatusNotFound)
	assert.Equal(t, usecase.CodeProductNotFound, he.Code)
}
