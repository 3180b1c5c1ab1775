package usecase_test

import (
	"context"
	"testing"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func testAuthConfig() config.Config {
	return config.Config{JWTSecret: "test_secret"}
}

func TestAuthUsecase_Register_InvalidEmail(t *testing.T) {
	uc := usecase.NewAuthUsecase(testAuthConfig(), new(UserRepoMock))

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "not-an-email",
		Password: "password123",
	})
	assert.Equal(t, usecase.ErrValidation, err)
}

func TestAuthUsecase_Register_ShortPassword(t *testing.T) {
	uc := usecase.NewAuthUsecase(testAuthConfig(), new(UserRepoMock))

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "a@b.com",
		Password: "short",
	})
	assert.Equal(t, usecase.ErrValidation, err)
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{ID: 1, Email: "a@b.com"}, nil)

	uc := usecase.NewAuthUsecase(testAuthConfig(), users)

	_, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "a@b.com",
		Password: "password123",
	})
	assert.Equal(t, usecase.ErrConflict, err)

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// メールは小文字化して保存、パスワードは平文では保存しない
func TestAuthUsecase_Register_Success(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "a@b.com" &&
			u.Role == model.RoleUser &&
			u.IsActive &&
			u.PasswordHash != "" &&
			u.PasswordHash != "password123"
	})).Return(nil)

	uc := usecase.NewAuthUsecase(testAuthConfig(), users)

	resp, err := uc.Register(context.Background(), usecase.AuthRegisterRequest{
		Email:    "  A@B.com ",
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.Equal(t, "a@b.com", resp.User.Email)

	users.AssertExpectations(t)
}

// ユーザー不在とパスワード不一致は同じ401を返す（存在の推測をさせない）
func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "a@b.com").Return(nil, nil)

	uc := usecase.NewAuthUsecase(testAuthConfig(), users)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "a@b.com",
		Password: "password123",
	})
	assert.Equal(t, usecase.ErrUnauthorized, err)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)

	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{
		ID: 1, Email: "a@b.com", PasswordHash: string(hash), IsActive: true,
	}, nil)

	uc := usecase.NewAuthUsecase(testAuthConfig(), users)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "a@b.com",
		Password: "wrong-password",
	})
	assert.Equal(t, usecase.ErrUnauthorized, err)
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{
		ID: 1, Email: "a@b.com", PasswordHash: string(hash), IsActive: false,
	}, nil)

	uc := usecase.NewAuthUsecase(testAuthConfig(), users)

	_, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "a@b.com",
		Password: "password123",
	})
	assert.Equal(t, usecase.ErrUnauthorized, err)
}

func TestAuthUsecase_Login_Success_IssuesHS256Token(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "a@b.com").Return(&model.User{
		ID: 7, Email: "a@b.com", Role: model.RoleAdmin, PasswordHash: string(hash), IsActive: true,
	}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewAuthUsecase(testAuthConfig(), users)

	resp, err := uc.Login(context.Background(), usecase.AuthLoginRequest{
		Email:    "a@b.com",
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, int((15 * 60)), resp.Token.ExpiresIn)

	//発行されたtokenを検証してclaimsを確認
	parsed, err := jwt.Parse(resp.Token.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test_secret"), nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
}
