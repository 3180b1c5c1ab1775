package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。
// (user, product) の組につき1行。追加は数量加算で表す。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:uq_cart_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;index;uniqueIndex:uq_cart_user_product" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 明細金額 = 数量 × 単価
func (c CartItem) LineTotal(unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(c.Quantity))
}
