package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAddressUsecase_Create_MissingField(t *testing.T) {
	uc := usecase.NewAddressUsecase(new(AddressRepoMock))

	_, err := uc.Create(context.Background(), 1, usecase.AddressCreateRequest{
		Locality: "Bandra",
		City:     "",
		State:    "MH",
	})
	assert.Equal(t, usecase.ErrValidation, err)
}

func TestAddressUsecase_Create_TrimsInput(t *testing.T) {
	addresses := new(AddressRepoMock)
	addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.UserID == int64(1) && a.Locality == "Bandra" && a.City == "Mumbai" && a.State == "MH"
	})).Return(model.Address{ID: 5, UserID: 1, Locality: "Bandra", City: "Mumbai", State: "MH"}, nil)

	uc := usecase.NewAddressUsecase(addresses)

	dto, err := uc.Create(context.Background(), 1, usecase.AddressCreateRequest{
		Locality: " Bandra ",
		City:     " Mumbai ",
		State:    " MH ",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), dto.ID)

	addresses.AssertExpectations(t)
}

func TestAddressUsecase_List_ReturnsOwn(t *testing.T) {
	addresses := new(AddressRepoMock)
	addresses.On("ListByUserID", mock.Anything, int64(1)).Return([]model.Address{
		{ID: 5, UserID: 1, Locality: "Bandra", City: "Mumbai", State: "MH"},
		{ID: 6, UserID: 1, Locality: "Andheri", City: "Mumbai", State: "MH"},
	}, nil)

	uc := usecase.NewAddressUsecase(addresses)

	list, err := uc.List(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(list))
	assert.Equal(t, "Andheri", list[1].Locality)
}

// 他人の住所の削除は「存在しない」扱い
func TestAddressUsecase_Delete_NotOwned(t *testing.T) {
	addresses := new(AddressRepoMock)
	addresses.On("IsOwnedByUser", mock.Anything, int64(5), int64(2)).Return(false, nil)

	uc := usecase.NewAddressUsecase(addresses)

	err := uc.Delete(context.Background(), 2, 5)
	assert.Equal(t, usecase.ErrNotFound, err)

	addresses.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAddressUsecase_Delete_Success(t *testing.T) {
	addresses := new(AddressRepoMock)
	addresses.On("IsOwnedByUser", mock.Anything, int64(5), int64(1)).Return(true, nil)
	addresses.On("Delete", mock.Anything, int64(5)).Return(nil)

	uc := usecase.NewAddressUsecase(addresses)

	err := uc.Delete(context.Background(), 1, 5)
	assert.NoError(t, err)

	addresses.AssertExpectations(t)
}
