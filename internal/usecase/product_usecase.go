package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// トップページに出す件数
const (
	homeFeaturedCategories = 3
	homeFeaturedProducts   = 8
)

type CategoryOutput struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path"`
	IsFeatured  bool   `json:"is_featured"`
}

type ProductOutput struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	Slug             string          `json:"slug"`
	SKU              string          `json:"sku"`
	ShortDescription string          `json:"short_description"`
	ImagePath        string          `json:"image_path"`
	Price            decimal.Decimal `json:"price"`
	CategoryID       int64           `json:"category_id"`
	IsFeatured       bool            `json:"is_featured"`
}

type ProductDetailOutput struct {
	ProductOutput
	DetailDescription string          `json:"detail_description"`
	RelatedProducts   []ProductOutput `json:"related_products"`
}

type HomeOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Products   []ProductOutput  `json:"products"`
}

// トップページ（featuredのカテゴリと商品）
func (u *ProductUsecase) Home(ctx context.Context) (HomeOutput, error) {
	cats, err := u.categoryRepo.ListActive(ctx, true, homeFeaturedCategories)
	if err != nil {
		return HomeOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	prods, err := u.productRepo.ListActive(ctx, repo.ProductListQuery{
		FeaturedOnly: true,
		Limit:        homeFeaturedProducts,
	})
	if err != nil {
		return HomeOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := HomeOutput{
		Categories: make([]CategoryOutput, 0, len(cats)),
		Products:   make([]ProductOutput, 0, len(prods)),
	}
	for _, c := range cats {
		out.Categories = append(out.Categories, toCategoryOutput(c))
	}
	for _, p := range prods {
		out.Products = append(out.Products, toProductOutput(p))
	}
	return out, nil
}

// activeなカテゴリを全件
func (u *ProductUsecase) ListCategories(ctx context.Context) ([]CategoryOutput, error) {
	cats, err := u.categoryRepo.ListActive(ctx, false, 0)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]CategoryOutput, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryOutput(c))
	}
	return out, nil
}

type CategoryProductsOutput struct {
	Category CategoryOutput  `json:"category"`
	Products []ProductOutput `json:"products"`
}

// カテゴリslugで商品一覧
func (u *ProductUsecase) ListCategoryProducts(ctx context.Context, slug string) (CategoryProductsOutput, error) {
	if strings.TrimSpace(slug) == "" {
		return CategoryProductsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	cat, err := u.categoryRepo.FindBySlug(ctx, slug)
	if err == repo.ErrNotFound {
		return CategoryProductsOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CategoryProductsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	prods, err := u.productRepo.ListActive(ctx, repo.ProductListQuery{CategorySlug: slug})
	if err != nil {
		return CategoryProductsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := CategoryProductsOutput{Category: toCategoryOutput(cat)}
	out.Products = make([]ProductOutput, 0, len(prods))
	for _, p := range prods {
		out.Products = append(out.Products, toProductOutput(p))
	}
	return out, nil
}

// 商品詳細（関連商品つき）
func (u *ProductUsecase) GetProductDetail(ctx context.Context, slug string) (ProductDetailOutput, error) {
	if strings.TrimSpace(slug) == "" {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	p, err := u.productRepo.FindBySlug(ctx, slug)
	if err == repo.ErrNotFound {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	related, err := u.productRepo.ListRelated(ctx, p.CategoryID, p.ID, 8)
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := ProductDetailOutput{
		ProductOutput:     toProductOutput(p),
		DetailDescription: p.DetailDescription,
		RelatedProducts:   make([]ProductOutput, 0, len(related)),
	}
	for _, rp := range related {
		out.RelatedProducts = append(out.RelatedProducts, toProductOutput(rp))
	}
	return out, nil
}

// ---- 管理者側 ----

type AdminProductInput struct {
	Title             string
	Slug              string
	SKU               string
	ShortDescription  string
	DetailDescription string
	ImagePath         string
	Price             string
	CategoryID        int64
	IsActive          bool
	IsFeatured        bool
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, actorAdminUserID int64, in AdminProductInput) (ProductOutput, error) {
	if actorAdminUserID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := u.buildProduct(ctx, in)
	if err != nil {
		return ProductOutput{}, err
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return ProductOutput{}, NewHTTPError(http.StatusConflict, "slug or sku already exists")
	}
	return toProductOutput(created), nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, actorAdminUserID int64, productID int64, in AdminProductInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.buildProduct(ctx, in)
	if err != nil {
		return err
	}
	p.ID = productID

	if err := u.productRepo.Update(ctx, p); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, actorAdminUserID int64, productID int64) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.productRepo.SoftDelete(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type AdminCategoryInput struct {
	Title       string
	Slug        string
	Description string
	ImagePath   string
	IsActive    bool
	IsFeatured  bool
}

func (u *ProductUsecase) AdminCreateCategory(ctx context.Context, actorAdminUserID int64, in AdminCategoryInput) (CategoryOutput, error) {
	if actorAdminUserID <= 0 {
		return CategoryOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Slug) == "" {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "title and slug are required")
	}

	now := time.Now()
	created, err := u.categoryRepo.Create(ctx, model.Category{
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
		ImagePath:   in.ImagePath,
		IsActive:    in.IsActive,
		IsFeatured:  in.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusConflict, "slug already exists")
	}
	return toCategoryOutput(created), nil
}

func (u *ProductUsecase) AdminUpdateCategory(ctx context.Context, actorAdminUserID int64, categoryID int64, in AdminCategoryInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Slug) == "" {
		return NewHTTPError(http.StatusBadRequest, "title and slug are required")
	}

	err := u.categoryRepo.Update(ctx, model.Category{
		ID:          categoryID,
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
		ImagePath:   in.ImagePath,
		IsActive:    in.IsActive,
		IsFeatured:  in.IsFeatured,
	})
	if err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 入力チェック＋金額のdecimal変換
func (u *ProductUsecase) buildProduct(ctx context.Context, in AdminProductInput) (model.Product, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Slug) == "" || strings.TrimSpace(in.SKU) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "title, slug and sku are required")
	}
	if strings.TrimSpace(in.ShortDescription) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "short_description is required")
	}
	if in.CategoryID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}

	//金額は文字列で受けてdecimalにする（floatを経由しない）
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil || price.IsNegative() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}

	//カテゴリの存在確認
	if _, err := u.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if err == repo.ErrNotFound {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return model.Product{
		Title:             in.Title,
		Slug:              in.Slug,
		SKU:               in.SKU,
		ShortDescription:  in.ShortDescription,
		DetailDescription: in.DetailDescription,
		ImagePath:         in.ImagePath,
		Price:             price.Round(2),
		CategoryID:        in.CategoryID,
		IsActive:          in.IsActive,
		IsFeatured:        in.IsFeatured,
	}, nil
}

func toCategoryOutput(c model.Category) CategoryOutput {
	return CategoryOutput{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		Description: c.Description,
		ImagePath:   c.ImagePath,
		IsFeatured:  c.IsFeatured,
	}
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		SKU:              p.SKU,
		ShortDescription: p.ShortDescription,
		ImagePath:        p.ImagePath,
		Price:            p.Price,
		CategoryID:       p.CategoryID,
		IsFeatured:       p.IsFeatured,
	}
}
