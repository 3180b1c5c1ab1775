package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	users     repo.UserRepository
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, users repo.UserRepository, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, users: users, auditRepo: auditRepo}
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if f.PaymentStatus != "" && !model.PaymentStatus(f.PaymentStatus).Valid() {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_status")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			title := ""
			if p, err := r.Products().FindByID(ctx, o.ProductID); err == nil {
				title = p.Title
			}
			outs = append(outs, toOrderOutput(o, title))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 注文詳細（管理者はどの注文でも見られる）
func (u *AdminOrderUsecase) GetDetail(ctx context.Context, orderID int64) (OrderDetailOutput, error) {
	if orderID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderDetailOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = buildOrderDetail(ctx, r, u.users, o)
		return nil
	})

	if err != nil {
		return OrderDetailOutput{}, err
	}
	return out, nil
}

// 支払いを検証（単体・ガード付き）。
// QRのPendingのみ遷移できる。すでにVerifiedなら何もしない（検証時刻も触らない）。
func (u *AdminOrderUsecase) VerifyPayment(ctx context.Context, actorAdminUserID int64, orderID int64) error {
	return u.setPaymentStatus(ctx, actorAdminUserID, orderID, model.PaymentStatusVerified)
}

// 支払いを拒否（単体・ガード付き）。
func (u *AdminOrderUsecase) RejectPayment(ctx context.Context, actorAdminUserID int64, orderID int64) error {
	return u.setPaymentStatus(ctx, actorAdminUserID, orderID, model.PaymentStatusRejected)
}

func (u *AdminOrderUsecase) setPaymentStatus(ctx context.Context, actorAdminUserID int64, orderID int64, newStatus model.PaymentStatus) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//CODに支払い操作はない
		if o.PaymentMethod != model.PaymentMethodQR {
			return NewHTTPError(http.StatusBadRequest, "payment actions apply to QR orders only")
		}

		// すでに同じなら何もしない（200）
		if o.PaymentStatus == newStatus {
			return nil
		}
		// 終端ガード（Verified/Rejectedからは動かせない）
		if !o.PaymentStatus.CanTransitionTo(newStatus) {
			return NewHTTPError(http.StatusBadRequest, "payment status is already final")
		}

		//Verifiedのときだけ検証時刻を入れる
		var verifiedAt *time.Time
		action := model.AuditActionRejectPayment
		if newStatus == model.PaymentStatusVerified {
			now := time.Now()
			verifiedAt = &now
			action = model.AuditActionVerifyPayment
		}

		if err := r.Orders().SetPaymentStatus(ctx, orderID, newStatus, verifiedAt); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return u.writeAudit(ctx, actorAdminUserID, action, orderID,
			fmt.Sprintf(`{"payment_status":%q}`, o.PaymentStatus),
			fmt.Sprintf(`{"payment_status":%q}`, newStatus))
	})
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 配送ステータス更新（単体・ガード付き）。
// 正規の次ステップか、非終端からのキャンセルだけを許す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		// 遷移表に無い移動は拒否
		if !o.Status.CanTransitionTo(newStatus) {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("cannot move order from %s to %s", o.Status, newStatus))
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return u.writeAudit(ctx, actorAdminUserID, model.AuditActionUpdateOrderStatus, orderID,
			fmt.Sprintf(`{"status":%q}`, o.Status),
			fmt.Sprintf(`{"status":%q}`, newStatus))
	})
}

type BulkOrderIDsInput struct {
	OrderIDs []int64
}

type BulkResult struct {
	Updated int64 `json:"updated"`
}

// 一括の配送ステータス更新。
// 仕様どおり現状は見ない（Delivered済みでも上書きする）。影響行数を返す。
func (u *AdminOrderUsecase) BulkUpdateStatus(ctx context.Context, actorAdminUserID int64, orderIDs []int64, status string) (BulkResult, error) {
	if actorAdminUserID <= 0 {
		return BulkResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(orderIDs) == 0 {
		return BulkResult{}, NewHTTPError(http.StatusBadRequest, "no orders selected")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(status))
	if !newStatus.Valid() {
		return BulkResult{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var updated int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Orders().BulkUpdateStatus(ctx, orderIDs, newStatus)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		updated = n

		return u.writeAudit(ctx, actorAdminUserID, model.AuditActionUpdateOrderStatus, 0,
			fmt.Sprintf(`{"order_ids":%d}`, len(orderIDs)),
			fmt.Sprintf(`{"status":%q,"updated":%d}`, newStatus, n))
	})

	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{Updated: updated}, nil
}

// 一括検証。QRかつPendingの行だけ更新されて、その件数を返す。
func (u *AdminOrderUsecase) BulkVerifyPayment(ctx context.Context, actorAdminUserID int64, orderIDs []int64) (BulkResult, error) {
	if actorAdminUserID <= 0 {
		return BulkResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(orderIDs) == 0 {
		return BulkResult{}, NewHTTPError(http.StatusBadRequest, "no orders selected")
	}

	var updated int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Orders().BulkVerifyPayment(ctx, orderIDs, time.Now())
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		updated = n

		return u.writeAudit(ctx, actorAdminUserID, model.AuditActionVerifyPayment, 0,
			fmt.Sprintf(`{"order_ids":%d}`, len(orderIDs)),
			fmt.Sprintf(`{"verified":%d}`, n))
	})

	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{Updated: updated}, nil
}

// 一括拒否。QRの行だけ更新されて、その件数を返す。
func (u *AdminOrderUsecase) BulkRejectPayment(ctx context.Context, actorAdminUserID int64, orderIDs []int64) (BulkResult, error) {
	if actorAdminUserID <= 0 {
		return BulkResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(orderIDs) == 0 {
		return BulkResult{}, NewHTTPError(http.StatusBadRequest, "no orders selected")
	}

	var updated int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Orders().BulkRejectPayment(ctx, orderIDs)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		updated = n

		return u.writeAudit(ctx, actorAdminUserID, model.AuditActionRejectPayment, 0,
			fmt.Sprintf(`{"order_ids":%d}`, len(orderIDs)),
			fmt.Sprintf(`{"rejected":%d}`, n))
	})

	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{Updated: updated}, nil
}

// 管理者メモの更新
func (u *AdminOrderUsecase) UpdateAdminNotes(ctx context.Context, actorAdminUserID int64, orderID int64, notes string) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if len(notes) > 2000 {
		return NewHTTPError(http.StatusBadRequest, "notes too long")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Orders().UpdateAdminNotes(ctx, orderID, notes); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return u.writeAudit(ctx, actorAdminUserID, model.AuditActionUpdateAdminNotes, orderID,
			fmt.Sprintf(`{"admin_notes":%q}`, o.AdminNotes),
			fmt.Sprintf(`{"admin_notes":%q}`, notes))
	})
}

type AuditLogOutput struct {
	ID          int64     `json:"id"`
	ActorUserID int64     `json:"actor_user_id"`
	Action      string    `json:"action"`
	BeforeJSON  string    `json:"before_json"`
	AfterJSON   string    `json:"after_json"`
	CreatedAt   time.Time `json:"created_at"`
}

// 注文1件の操作履歴（新しい順）
func (u *AdminOrderUsecase) ListOrderAuditLogs(ctx context.Context, orderID int64) ([]AuditLogOutput, error) {
	if orderID <= 0 {
		return []AuditLogOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	resType := model.AuditResourceOrder
	logs, err := u.auditRepo.List(ctx, repo.AuditLogFilter{
		ResourceType: &resType,
		ResourceID:   &orderID,
	})
	if err != nil {
		return []AuditLogOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]AuditLogOutput, 0, len(logs))
	for _, l := range logs {
		outs = append(outs, AuditLogOutput{
			ID:          l.ID,
			ActorUserID: l.ActorUserID,
			Action:      string(l.Action),
			BeforeJSON:  l.BeforeJSON,
			AfterJSON:   l.AfterJSON,
			CreatedAt:   l.CreatedAt,
		})
	}
	return outs, nil
}

// ★監査ログ
func (u *AdminOrderUsecase) writeAudit(ctx context.Context, actorID int64, action model.AuditAction, orderID int64, beforeJSON, afterJSON string) error {
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
