package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	UpdateLastLoginAt(ctx context.Context, id int64, at time.Time) error
}
