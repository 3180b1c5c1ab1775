package usecase

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 証憑画像の上限サイズ
const MaxProofSize = 5 * 1024 * 1024

// 受け付ける証憑のContent-Type
var allowedProofTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// 証憑画像の保存先の約束（実装はstorage.ProofStore）。
type ProofSaver interface {
	Save(originalName string, src io.Reader) (string, error)
}

type OrderUsecase struct {
	tx     repo.TransactionManager
	users  repo.UserRepository
	proofs ProofSaver
}

func NewOrderUsecase(tx repo.TransactionManager, users repo.UserRepository, proofs ProofSaver) *OrderUsecase {
	return &OrderUsecase{tx: tx, users: users, proofs: proofs}
}

// アップロードされた証憑
type ProofUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// 新規住所（3項目すべて必須）
type NewAddressInput struct {
	Locality string
	City     string
	State    string
}

type PlaceOrderInput struct {
	//既存住所を使うならそのID（0なら新規住所を使う）
	AddressID  int64
	NewAddress NewAddressInput

	PaymentMethod string
	Proof         *ProofUpload
}

type OrderOutput struct {
	ID               int64           `json:"id"`
	ProductID        int64           `json:"product_id"`
	ProductTitle     string          `json:"product_title"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentStatus    string          `json:"payment_status"`
	Status           string          `json:"status"`
	OrderedAt        time.Time       `json:"ordered_at"`
	PaymentProofPath string          `json:"payment_proof_path,omitempty"`
}

// PlaceOrder はカートの全明細を注文に変換する（チェックアウト）。
// カート1明細 = 注文1件。作成と明細削除は同じトランザクションで行う。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) ([]OrderOutput, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if method != model.PaymentMethodCOD && method != model.PaymentMethodQR {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}

	//QRは証憑必須。サイズと種類をここで弾く（注文は一切作らない）。
	if method == model.PaymentMethodQR {
		if in.Proof == nil {
			return nil, NewHTTPError(http.StatusBadRequest, "payment proof is required for QR payment")
		}
		if in.Proof.Size > MaxProofSize {
			return nil, NewHTTPError(http.StatusBadRequest, "payment proof is too large (max 5MB)")
		}
		if !allowedProofTypes[strings.ToLower(in.Proof.ContentType)] {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid payment proof type (JPG, PNG or WEBP)")
		}
	}

	//新規住所は3項目すべて必要（部分入力は弾く）
	if in.AddressID <= 0 {
		if strings.TrimSpace(in.NewAddress.Locality) == "" ||
			strings.TrimSpace(in.NewAddress.City) == "" ||
			strings.TrimSpace(in.NewAddress.State) == "" {
			return nil, NewHTTPError(http.StatusBadRequest, "please fill all fields for new address")
		}
	}

	var outs []OrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//住所解決（既存 or 新規作成）
		var address model.Address
		if in.AddressID > 0 {
			a, err := r.Addresses().FindByID(ctx, in.AddressID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			//所有チェック（他人の住所なら403）
			if a.UserID != userID {
				return NewHTTPError(http.StatusForbidden, "forbidden")
			}
			address = a
		} else {
			now := time.Now()
			a, err := r.Addresses().Create(ctx, model.Address{
				UserID:    userID,
				Locality:  strings.TrimSpace(in.NewAddress.Locality),
				City:      strings.TrimSpace(in.NewAddress.City),
				State:     strings.TrimSpace(in.NewAddress.State),
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			address = a
		}

		//カート明細取得
		cartItems, err := r.CartItems().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		//証憑は1回だけ保存して、全注文でパスを共有する
		proofPath := ""
		if method == model.PaymentMethodQR {
			p, err := u.proofs.Save(in.Proof.Filename, in.Proof.Content)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "failed to store payment proof")
			}
			proofPath = p
		}

		//CODは即Verified、QRは管理者検証待ちのPending
		paymentStatus := model.PaymentStatusVerified
		if method == model.PaymentMethodQR {
			paymentStatus = model.PaymentStatusPending
		}

		outs = make([]OrderOutput, 0, len(cartItems))

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//単価は注文時点でスナップショット
			now := time.Now()
			order := model.Order{
				UserID:           userID,
				AddressID:        address.ID,
				ProductID:        ci.ProductID,
				Quantity:         ci.Quantity,
				UnitPrice:        p.Price,
				PaymentMethod:    method,
				PaymentProofPath: proofPath,
				PaymentStatus:    paymentStatus,
				Status:           model.OrderStatusPending,
				OrderedAt:        now,
				UpdatedAt:        now,
			}

			orderID, err := r.Orders().Create(ctx, order)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			order.ID = orderID

			//注文にした明細はカートから消す
			if err := r.CartItems().DeleteByID(ctx, ci.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			outs = append(outs, toOrderOutput(order, p.Title))
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return outs, nil
}

// 注文履歴（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
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

// 領収書・明細表示用
type OrderDetailOutput struct {
	OrderOutput
	CustomerEmail string          `json:"customer_email"`
	Address       AddressSummary  `json:"address"`
	Shipping      decimal.Decimal `json:"shipping_amount"`
}

type AddressSummary struct {
	Locality string `json:"locality"`
	City     string `json:"city"`
	State    string `json:"state"`
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderDetailOutput, error) {
	if userID <= 0 {
		return OrderDetailOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
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
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		out = buildOrderDetail(ctx, r, u.users, o)
		return nil
	})

	if err != nil {
		return OrderDetailOutput{}, err
	}
	return out, nil
}

// 管理者側の詳細表示でも使うため共通化
func buildOrderDetail(ctx context.Context, r repo.TxRepos, users repo.UserRepository, o model.Order) OrderDetailOutput {
	title := ""
	if p, err := r.Products().FindByID(ctx, o.ProductID); err == nil {
		title = p.Title
	}

	out := OrderDetailOutput{
		OrderOutput: toOrderOutput(o, title),
		Shipping:    ShippingFee,
	}

	if a, err := r.Addresses().FindByID(ctx, o.AddressID); err == nil {
		out.Address = AddressSummary{
			Locality: a.Locality,
			City:     a.City,
			State:    a.State,
		}
	}

	if usr, err := users.FindByID(ctx, o.UserID); err == nil && usr != nil {
		out.CustomerEmail = usr.Email
	}

	return out
}

// 合計は保存しない。表示のたびにスナップショット単価から計算する。
func toOrderOutput(o model.Order, productTitle string) OrderOutput {
	return OrderOutput{
		ID:               o.ID,
		ProductID:        o.ProductID,
		ProductTitle:     productTitle,
		Quantity:         o.Quantity,
		UnitPrice:        o.UnitPrice,
		TotalAmount:      o.TotalAmount(),
		PaymentMethod:    string(o.PaymentMethod),
		PaymentStatus:    string(o.PaymentStatus),
		Status:           string(o.Status),
		OrderedAt:        o.OrderedAt,
		PaymentProofPath: o.PaymentProofPath,
	}
}
