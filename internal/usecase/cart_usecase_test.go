package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func activeProduct(id int64, price string) model.Product {
	return model.Product{
		ID:       id,
		Title:    "Gold Ring",
		Slug:     "gold-ring",
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
}

func TestCartUsecase_AddToCart_Unauthorized(t *testing.T) {
	uc := usecase.NewCartUsecase(new(CartItemRepoMock), new(ProductRepoMock))

	_, err := uc.AddToCart(context.Background(), 0, 1)
	assertErrContains(t, err, "unauthorized")
}

func TestCartUsecase_AddToCart_InvalidProductID(t *testing.T) {
	uc := usecase.NewCartUsecase(new(CartItemRepoMock), new(ProductRepoMock))

	_, err := uc.AddToCart(context.Background(), 1, 0)
	assertErrContains(t, err, "invalid product_id")
}

func TestCartUsecase_AddToCart_ProductNotFound(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	uc := usecase.NewCartUsecase(new(CartItemRepoMock), products)

	_, err := uc.AddToCart(context.Background(), 1, 99)
	assertErrContains(t, err, "not found")
}

// 非公開の商品は「存在しない」扱い
func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{ID: 5, IsActive: false}, nil)

	uc := usecase.NewCartUsecase(new(CartItemRepoMock), products)

	_, err := uc.AddToCart(context.Background(), 1, 5)
	assertErrContains(t, err, "not found")
}

func TestCartUsecase_AddToCart_NewItem(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)
	p := activeProduct(5, "120.00")

	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(p, nil)

	items := new(CartItemRepoMock)
	items.On("AddOne", mock.Anything, userID, int64(5)).
		Return(model.CartItem{ID: 10, UserID: userID, ProductID: 5, Quantity: 1}, nil)
	items.On("ListByUserID", mock.Anything, userID).
		Return([]model.CartItem{{ID: 10, UserID: userID, ProductID: 5, Quantity: 1}}, nil)

	uc := usecase.NewCartUsecase(items, products)

	resp, err := uc.AddToCart(ctx, userID, 5)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(resp.Items))
	assert.Equal(t, int64(1), resp.Items[0].Quantity)

	items.AssertExpectations(t)
}

// 同じ商品を2回追加すると数量2の明細1行になる
func TestCartUsecase_AddToCart_SameProductTwice_IncrementsQuantity(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)
	p := activeProduct(5, "120.00")

	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(p, nil)

	items := new(CartItemRepoMock)
	items.On("AddOne", mock.Anything, userID, int64(5)).
		Return(model.CartItem{ID: 10, UserID: userID, ProductID: 5, Quantity: 1}, nil).Once()
	items.On("AddOne", mock.Anything, userID, int64(5)).
		Return(model.CartItem{ID: 10, UserID: userID, ProductID: 5, Quantity: 2}, nil).Once()
	items.On("ListByUserID", mock.Anything, userID).
		Return([]model.CartItem{{ID: 10, UserID: userID, ProductID: 5, Quantity: 1}}, nil).Once()
	items.On("ListByUserID", mock.Anything, userID).
		Return([]model.CartItem{{ID: 10, UserID: userID, ProductID: 5, Quantity: 2}}, nil).Once()

	uc := usecase.NewCartUsecase(items, products)

	_, err := uc.AddToCart(ctx, userID, 5)
	assert.NoError(t, err)

	resp, err := uc.AddToCart(ctx, userID, 5)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(resp.Items))
	assert.Equal(t, int64(2), resp.Items[0].Quantity)
	assert.True(t, resp.Items[0].LineTotal.Equal(decimal.RequireFromString("240.00")))

	items.AssertExpectations(t)
}

func TestCartUsecase_UpdateQuantity_InvalidDelta(t *testing.T) {
	uc := usecase.NewCartUsecase(new(CartItemRepoMock), new(ProductRepoMock))

	_, err := uc.UpdateQuantity(context.Background(), 1, 1, 2)
	assertErrContains(t, err, "invalid delta")
}

// 他人の明細は「存在しない」扱い
func TestCartUsecase_UpdateQuantity_NotOwned(t *testing.T) {
	items := new(CartItemRepoMock)
	items.On("IsOwnedByUser", mock.Anything, int64(10), int64(1)).Return(false, nil)

	uc := usecase.NewCartUsecase(items, new(ProductRepoMock))

	_, err := uc.UpdateQuantity(context.Background(), 1, 10, 1)
	assertErrContains(t, err, "not found")
}

// 数量1で-1すると明細ごと削除され removed=true が返る
func TestCartUsecase_UpdateQuantity_DecrementAtOne_RemovesLine(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)

	items := new(CartItemRepoMock)
	items.On("IsOwnedByUser", mock.Anything, int64(10), userID).Return(true, nil)
	items.On("FindByID", mock.Anything, int64(10)).
		Return(model.CartItem{ID: 10, UserID: userID, ProductID: 5, Quantity: 1}, nil)
	items.On("DeleteByID", mock.Anything, int64(10)).Return(nil)
	items.On("ListByUserID", mock.Anything, userID).Return([]model.CartItem{}, nil)

	uc := usecase.NewCartUsecase(items, new(ProductRepoMock))

	resp, err := uc.UpdateQuantity(ctx, userID, 10, -1)
	assert.NoError(t, err)
	assert.True(t, resp.Removed)
	assert.Equal(t, 0, len(resp.Items))

	items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
	items.AssertExpectations(t)
}

func TestCartUsecase_UpdateQuantity_Increment(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)
	p := activeProduct(5, "120.00")

	items := new(CartItemRepoMock)
	items.On("IsOwnedByUser", mock.Anything, int64(10), userID).Return(true, nil)
	items.On("FindByID", mock.Anything, int64(10)).
		Return(model.CartItem{ID: 10, UserID: userID, ProductID: 5, Quantity: 2}, nil)
	items.On("UpdateQuantity", mock.Anything, int64(10), int64(3)).Return(nil)
	items.On("ListByUserID", mock.Anything, userID).
		Return([]model.CartItem{{ID: 10, UserID: userID, ProductID: 5, Quantity: 3}}, nil)

	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(p, nil)

	uc := usecase.NewCartUsecase(items, products)

	resp, err := uc.UpdateQuantity(ctx, userID, 10, 1)
	assert.NoError(t, err)
	assert.False(t, resp.Removed)
	assert.Equal(t, int64(3), resp.Items[0].Quantity)

	items.AssertExpectations(t)
}

func TestCartUsecase_RemoveCartItem_NotOwned(t *testing.T) {
	items := new(CartItemRepoMock)
	items.On("IsOwnedByUser", mock.Anything, int64(10), int64(2)).Return(false, nil)

	uc := usecase.NewCartUsecase(items, new(ProductRepoMock))

	_, err := uc.RemoveCartItem(context.Background(), 2, 10)
	assertErrContains(t, err, "not found")

	items.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

// 小計＋送料＝合計。金額は全部decimal。
func TestCartUsecase_GetCart_Totals(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)

	items := new(CartItemRepoMock)
	items.On("ListByUserID", mock.Anything, userID).Return([]model.CartItem{
		{ID: 10, UserID: userID, ProductID: 5, Quantity: 2},
		{ID: 11, UserID: userID, ProductID: 6, Quantity: 1},
	}, nil)

	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(activeProduct(5, "120.00"), nil)
	products.On("FindByID", mock.Anything, int64(6)).Return(model.Product{
		ID: 6, Title: "Silver Chain", Slug: "silver-chain",
		Price: decimal.RequireFromString("59.50"), IsActive: true,
	}, nil)

	uc := usecase.NewCartUsecase(items, products)

	resp, err := uc.GetCart(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(resp.Items))
	assert.True(t, resp.Amount.Equal(decimal.RequireFromString("299.50")))
	assert.True(t, resp.ShippingAmount.Equal(usecase.ShippingFee))
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("309.50")))
}

// 非公開になった商品は明細から表示されず、小計にも入らない
func TestCartUsecase_GetCart_SkipsInactiveProducts(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)

	items := new(CartItemRepoMock)
	items.On("ListByUserID", mock.Anything, userID).Return([]model.CartItem{
		{ID: 10, UserID: userID, ProductID: 5, Quantity: 1},
		{ID: 11, UserID: userID, ProductID: 7, Quantity: 4},
	}, nil)

	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(5)).Return(activeProduct(5, "120.00"), nil)
	products.On("FindByID", mock.Anything, int64(7)).Return(model.Product{
		ID: 7, Price: decimal.RequireFromString("999.00"), IsActive: false,
	}, nil)

	uc := usecase.NewCartUsecase(items, products)

	resp, err := uc.GetCart(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(resp.Items))
	assert.True(t, resp.Amount.Equal(decimal.RequireFromString("120.00")))
}
