package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 注文履歴は新しい順
func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ordered_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}

	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 支払いステータスを更新。Verifiedのときだけ検証時刻も入れる。
func (r *OrderGormRepository) SetPaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus, verifiedAt *time.Time) error {
	updates := map[string]interface{}{
		"payment_status": status,
	}
	if verifiedAt != nil {
		updates["payment_verified_at"] = *verifiedAt
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) UpdateAdminNotes(ctx context.Context, orderID int64, notes string) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("admin_notes", notes)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 一括の配送ステータス更新。現状を見ずに上書きする。
func (r *OrderGormRepository) BulkUpdateStatus(ctx context.Context, orderIDs []int64, status model.OrderStatus) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id IN ?", orderIDs).
		Update("status", status)

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 一括検証。QRかつPendingの行だけに効く。
func (r *OrderGormRepository) BulkVerifyPayment(ctx context.Context, orderIDs []int64, verifiedAt time.Time) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id IN ? AND payment_method = ? AND payment_status = ?",
			orderIDs, model.PaymentMethodQR, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status":      model.PaymentStatusVerified,
			"payment_verified_at": verifiedAt,
		})

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 一括拒否。QRの行だけに効く。
func (r *OrderGormRepository) BulkRejectPayment(ctx context.Context, orderIDs []int64) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id IN ? AND payment_method = ?", orderIDs, model.PaymentMethodQR).
		Update("payment_status", model.PaymentStatusRejected)

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//payment_status 絞り込み
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	//payment_method 絞り込み
	if f.PaymentMethod != "" {
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("ordered_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("ordered_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}
