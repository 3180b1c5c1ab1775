package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開側の商品一覧（activeのみ）
func (r *ProductGormRepository) ListActive(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("products.is_active = ?", true)

	if q.CategorySlug != "" {
		query = query.
			Joins("join categories on categories.id = products.category_id").
			Where("categories.slug = ?", q.CategorySlug)
	}
	if q.FeaturedOnly {
		query = query.Where("products.is_featured = ?", true)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var items []model.Product
	if err := query.Order("products.created_at desc").Find(&items).Error; err != nil {
		return []model.Product{}, err
	}
	return items, nil
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

func (r *ProductGormRepository) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 同カテゴリの関連商品（自分を除く）
func (r *ProductGormRepository) ListRelated(ctx context.Context, categoryID int64, excludeProductID int64, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 8
	}

	var items []model.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND is_active = ?", categoryID, excludeProductID, true).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Product{}, err
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
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", p.ID).
		Select(
			"title",
			"slug",
			"sku",
			"short_description",
			"detail_description",
			"image_path",
			"price",
			"category_id",
			"is_active",
			"is_featured",
		).
		Updates(p)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
