package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 管理画面の監査ログ閲覧
type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

func (u *AuditLogUsecase) List(ctx context.Context, adminUserID int64, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if adminUserID <= 0 {
		return nil, NewCodedError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", nil)
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
