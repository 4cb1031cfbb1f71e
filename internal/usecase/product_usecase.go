package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid q")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          in.Q,
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Sort:       in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Product{}, NewCodedError(http.StatusNotFound, CodeProductNotFound, "product not found", nil)
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//非公開商品は存在しない扱い
	if !p.IsActive {
		return model.Product{}, NewCodedError(http.StatusNotFound, CodeProductNotFound, "product not found", nil)
	}

	return p, nil
}

type AdminCreateProductInput struct {
	Name        string
	Description string
	Price       int64
	Stock       int64
	CategoryID  *int64
	ImageURL    string
	IsActive    bool
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminCreateProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewCodedError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Product{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid name", nil)
	}
	if in.Price < 0 {
		return model.Product{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid price", nil)
	}
	if in.Stock < 0 {
		return model.Product{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid stock", nil)
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		ImageURL:    in.ImageURL,
		IsActive:    in.IsActive,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return p, nil
}

type AdminUpdateProductInput struct {
	Name        string
	Description string
	Price       int64
	CategoryID  *int64
	ImageURL    string
	IsActive    bool
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, id int64, in AdminUpdateProductInput) (model.Product, error) {
	if adminUserID <= 0 {
		return model.Product{}, NewCodedError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
	}
	if id <= 0 {
		return model.Product{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid id", nil)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Product{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid name", nil)
	}
	if in.Price < 0 {
		return model.Product{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid price", nil)
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:          id,
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		ImageURL:    in.ImageURL,
		IsActive:    in.IsActive,
	})
	if err == repo.ErrNotFound {
		return model.Product{}, NewCodedError(http.StatusNotFound, CodeProductNotFound, "product not found", nil)
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 在庫の直接設定（管理画面）。調整履歴と監査ログも残す。
func (u *ProductUsecase) AdminSetStock(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error {
	if adminUserID <= 0 {
		return NewCodedError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
	}
	if productID <= 0 {
		return NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid id", nil)
	}
	if newStock < 0 {
		return NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid stock", nil)
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewCodedError(http.StatusNotFound, CodeProductNotFound, "product not found", nil)
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.inventoryRepo.SetStock(ctx, productID, newStock); err != nil {
		if err == repo.ErrNotFound {
			return NewCodedError(http.StatusNotFound, CodeProductNotFound, "product not found", nil)
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.inventoryRepo.CreateAdjustment(ctx, model.InventoryAdjustment{
		ProductID:   productID,
		AdminUserID: adminUserID,
		Delta:       newStock - p.Stock,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	before, _ := json.Marshal(map[string]int64{"stock": p.Stock})
	after, _ := json.Marshal(map[string]int64{"stock": newStock})
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   string(before),
		AfterJSON:    string(after),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, id int64) error {
	if adminUserID <= 0 {
		return NewCodedError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
	}
	if id <= 0 {
		return NewCodedError(http.StatusBadRequest, CodeValidationError, "invalid id", nil)
	}

	err := u.productRepo.SoftDelete(ctx, id)
	if err == repo.ErrNotFound {
		return NewCodedError(http.StatusNotFound, CodeProductNotFound, "product not found", nil)
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
