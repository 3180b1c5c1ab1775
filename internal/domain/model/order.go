package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	//代金引換。支払いは受取時なので検証不要。
	PaymentMethodCOD PaymentMethod = "COD"
	//QR事前振込。スクリーンショットの提出と管理者検証が必要。
	PaymentMethodQR PaymentMethod = "QR"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusVerified PaymentStatus = "Verified"
	PaymentStatusRejected PaymentStatus = "Rejected"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusAccepted  OrderStatus = "Accepted"
	OrderStatusPacked    OrderStatus = "Packed"
	OrderStatusOnTheWay  OrderStatus = "On The Way"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// 配送ステータスの正規の進行順。
// 単体操作はこの表＋キャンセルだけを許可する（一括操作は無条件で上書き）。
var nextOrderStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:  OrderStatusAccepted,
	OrderStatusAccepted: OrderStatusPacked,
	OrderStatusPacked:   OrderStatusOnTheWay,
	OrderStatusOnTheWay: OrderStatusDelivered,
}

// 支払いステータスの遷移表。Pendingからのみ動ける。
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusVerified, PaymentStatusRejected},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusPacked,
		OrderStatusOnTheWay, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Delivered / Cancelled は終端。
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Next は次の正規ステップを返す（終端なら false）。
func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := nextOrderStatus[s]
	return n, ok
}

// CanTransitionTo は単体（ガード付き）操作で許される遷移か。
// 正規の次ステップ、または非終端からのキャンセルのみ。
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	if to == OrderStatusCancelled {
		return !s.IsTerminal()
	}
	return nextOrderStatus[s] == to
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusVerified, PaymentStatusRejected:
		return true
	}
	return false
}

// Verified / Rejected からは戻れない。
func (s PaymentStatus) CanTransitionTo(to PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// 注文。チェックアウト時点のカート明細1行のスナップショット。
// 単価は作成時に確定し、以後カタログの価格変更の影響を受けない。
type Order struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64 `gorm:"not null;index" json:"user_id"`
	AddressID int64 `gorm:"not null" json:"address_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`

	//注文時点の単価スナップショット
	UnitPrice decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"unit_price"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null;default:'COD'" json:"payment_method"`

	//QR支払いの証憑画像の保存パス（CODは空）
	PaymentProofPath string `gorm:"type:varchar(255)" json:"payment_proof_path"`

	PaymentStatus     PaymentStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"payment_status"`
	PaymentVerifiedAt *time.Time    `json:"payment_verified_at"`

	AdminNotes string `gorm:"type:text" json:"admin_notes"`

	Status OrderStatus `gorm:"type:varchar(50);not null;default:'Pending';index" json:"status"`

	OrderedAt time.Time `gorm:"not null;autoCreateTime;index" json:"ordered_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 合計 = 数量 × 単価スナップショット
func (o Order) TotalAmount() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(o.Quantity))
}
