package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PendingOrderGormRepository struct {
	db *gorm.DB
}

func NewPendingOrderGormRepository(db *gorm.DB) *PendingOrderGormRepository {
	return &PendingOrderGormRepository{db: db}
}

func (r *PendingOrderGormRepository) Create(ctx context.Context, po model.PendingOrder) error {
	return r.db.WithContext(ctx).Create(&po).Error
}

func (r *PendingOrderGormRepository) FindByID(ctx context.Context, paypalOrderID string) (model.PendingOrder, bool, error) {
	var po model.PendingOrder
	err := r.db.WithContext(ctx).
		Where("paypal_order_id = ?", paypalOrderID).
		First(&po).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PendingOrder{}, false, nil
	}
	if err != nil {
		return model.PendingOrder{}, false, err
	}
	return po, true, nil
}

// DELETE ... RETURNING 1文で「消費」する。
// 0行なら別経路がすでにクレーム済み。check-then-deleteの競合窓をここで閉じる。
func (r *PendingOrderGormRepository) DeleteAndReturn(ctx context.Context, paypalOrderID string) (model.PendingOrder, bool, error) {
	var deleted []model.PendingOrder
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("paypal_order_id = ?", paypalOrderID).
		Delete(&deleted)

	if res.Error != nil {
		return model.PendingOrder{}, false, res.Error
	}
	if res.RowsAffected == 0 || len(deleted) == 0 {
		return model.PendingOrder{}, false, nil
	}
	return deleted[0], true, nil
}

func (r *PendingOrderGormRepository) Delete(ctx context.Context, paypalOrderID string) error {
	return r.db.WithContext(ctx).
		Where("paypal_order_id = ?", paypalOrderID).
		Delete(&model.PendingOrder{}).Error
}
