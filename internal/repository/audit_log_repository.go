package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 監査ログの絞り込み条件。nilの項目は条件に含めない。
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//新しい順で一覧取得
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
