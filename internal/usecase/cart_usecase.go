package usecase

import (
	"context"
	"net/http"

	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 送料は全国一律の固定額
var ShippingFee = decimal.NewFromInt(10)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

type CartItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Slug      string          `json:"slug"`
	ImagePath string          `json:"image_path"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	//商品代金の小計
	Amount decimal.Decimal `json:"amount"`
	//送料
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	//小計＋送料
	TotalAmount decimal.Decimal `json:"total_amount"`
	//Removedは数量変更で明細が消えたときtrue
	Removed bool `json:"removed,omitempty"`
}

// GetCart はカート取得（明細＋小計＋送料＋合計）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.buildCartResponse(ctx, userID, false)
}

// AddToCart はカートに追加（同一商品は数量+1）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	// 既存なら+1、無ければ数量1で作成
	if _, err := u.cartItemRepo.AddOne(ctx, userID, productID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID, false)
}

// 数量の増減（deltaは +1 / -1 のみ）。
// 数量が0になる減算は明細ごと削除する。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, cartItemID int64, delta int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if delta != 1 && delta != -1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid delta")
	}

	//所有チェック（他人の明細は「存在しない」扱い）
	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	newQty := item.Quantity + delta

	//0になるなら行ごと消す（数量0の明細は持たない）
	if newQty <= 0 {
		if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
			if err == repo.ErrNotFound {
				return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
			}
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return u.buildCartResponse(ctx, userID, true)
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, newQty); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID, false)
}

// 明細削除
func (u *CartUsecase) RemoveCartItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, userID, true)
}

// ユーザーの明細をまとめてCartResponseを作る。
// 金額計算は全部decimal（floatは使わない）。
func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64, removed bool) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	amount := decimal.Zero

	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}

		lineTotal := it.LineTotal(p.Price)

		respItems = append(respItems, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Title:     p.Title,
			Slug:      p.Slug,
			ImagePath: p.ImagePath,
			UnitPrice: p.Price,
			Quantity:  it.Quantity,
			LineTotal: lineTotal,
		})

		amount = amount.Add(lineTotal)
	}

	return CartResponse{
		Items:          respItems,
		Amount:         amount,
		ShippingAmount: ShippingFee,
		TotalAmount:    amount.Add(ShippingFee),
		Removed:        removed,
	}, nil
}
