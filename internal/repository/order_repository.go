package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	PaymentMethod string
	UserID        *int64
	From          *time.Time
	To            *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//新しい順（receipt/履歴用）
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//単体のガード付き更新用
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	SetPaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus, verifiedAt *time.Time) error
	UpdateAdminNotes(ctx context.Context, orderID int64, notes string) error

	//一括操作。影響行数を返す。
	//配送ステータスは現状を見ない強制上書き。
	BulkUpdateStatus(ctx context.Context, orderIDs []int64, status model.OrderStatus) (int64, error)
	//検証はQRかつPendingの行だけ、拒否はQRの行だけに効く。
	BulkVerifyPayment(ctx context.Context, orderIDs []int64, verifiedAt time.Time) (int64, error)
	BulkRejectPayment(ctx context.Context, orderIDs []int64) (int64, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
