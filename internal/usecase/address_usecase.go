package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
)

// 住所系で存在しないことを表す（Handlerが404に変換する）
var ErrNotFound = errors.New("not found")

type AddressDTO struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Locality string `json:"locality"`
	City     string `json:"city"`
	State    string `json:"state"`
}

type AddressCreateRequest struct {
	Locality string `json:"locality"`
	City     string `json:"city"`
	State    string `json:"state"`
}

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressCreateRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, ErrUnauthorized
	}

	//入力チェック（3項目すべて必須）
	if strings.TrimSpace(req.Locality) == "" ||
		strings.TrimSpace(req.City) == "" ||
		strings.TrimSpace(req.State) == "" {
		return AddressDTO{}, ErrValidation
	}

	now := time.Now()

	a := model.Address{
		UserID:    userID,
		Locality:  strings.TrimSpace(req.Locality),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return AddressDTO{}, ErrInternal
	}

	return toAddressDTO(&created), nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if addressID <= 0 {
		return ErrValidation
	}

	//所有チェック（他人の住所は「存在しない」扱い）
	owned, err := u.addresses.IsOwnedByUser(ctx, addressID, userID)
	if err != nil {
		return ErrInternal
	}
	if !owned {
		return ErrNotFound
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if err == repository.ErrNotFound {
			return ErrNotFound
		}
		return ErrInternal
	}
	return nil
}

func toAddressDTO(a *model.Address) AddressDTO {
	return AddressDTO{
		ID:       a.ID,
		UserID:   a.UserID,
		Locality: a.Locality,
		City:     a.City,
		State:    a.State,
	}
}
