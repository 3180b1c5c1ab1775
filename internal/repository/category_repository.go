package repository

import (
	"app/internal/domain/model"
	"context"
)

// カテゴリの永続化だけを約束。
type CategoryRepository interface {
	ListActive(ctx context.Context, featuredOnly bool, limit int) ([]model.Category, error)
	FindBySlug(ctx context.Context, slug string) (model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)

	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
}
