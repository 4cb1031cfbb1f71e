package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	dbq := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)

	//キーワード絞り込み
	if q.Q != "" {
		dbq = dbq.Where("name ILIKE ?", "%"+q.Q+"%")
	}

	//カテゴリ絞り込み
	if q.CategoryID != nil {
		dbq = dbq.Where("category_id = ?", *q.CategoryID)
	}

	//価格帯絞り込み
	if q.MinPrice != nil {
		dbq = dbq.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		dbq = dbq.Where("price <= ?", *q.MaxPrice)
	}

	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	order := "id desc"
	switch q.Sort {
	case "price_asc":
		order = "price asc"
	case "price_desc":
		order = "price desc"
	case "name":
		order = "name asc"
	}

	var items []model.Product
	offset := (q.Page - 1) * q.Limit
	if err := dbq.Order(order).Limit(q.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return items, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// チェックアウト検証用の一括取得。存在しないIDは呼び出し側で検出する。
func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var items []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"category_id": p.CategoryID,
			"image_url":   p.ImageURL,
			"is_active":   p.IsActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
