package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品カテゴリ（リング、ネックレスなど）
type Category struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:varchar(50);not null" json:"title"`
	Slug        string `gorm:"type:varchar(55);not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	//カテゴリ画像の保存パス
	ImagePath string `gorm:"type:varchar(255)" json:"image_path"`

	IsActive   bool `gorm:"not null;default:false" json:"is_active"`
	IsFeatured bool `gorm:"not null;default:false" json:"is_featured"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type Product struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"type:varchar(150);not null" json:"title"`
	Slug  string `gorm:"type:varchar(160);not null;uniqueIndex" json:"slug"`

	//SKUは商品管理コード。ユニーク。
	SKU string `gorm:"type:varchar(255);not null;uniqueIndex;column:sku" json:"sku"`

	ShortDescription  string `gorm:"type:text;not null" json:"short_description"`
	DetailDescription string `gorm:"type:text" json:"detail_description"`
	ImagePath         string `gorm:"type:varchar(255)" json:"image_path"`

	//金額は必ずdecimal（floatは使わない）
	Price decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"price"`

	CategoryID int64 `gorm:"not null;index" json:"category_id"`

	IsActive   bool `gorm:"not null;default:false" json:"is_active"`
	IsFeatured bool `gorm:"not null;default:false" json:"is_featured"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
