package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 公開側の商品一覧の絞り込み。
type ProductListQuery struct {
	//カテゴリslugで絞る（空なら全カテゴリ）
	CategorySlug string
	//trueでis_featuredのみ
	FeaturedOnly bool
	Limit        int
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListActive(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySlug(ctx context.Context, slug string) (model.Product, error)

	//同カテゴリの関連商品（自分を除く、activeのみ）
	ListRelated(ctx context.Context, categoryID int64, excludeProductID int64, limit int) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
