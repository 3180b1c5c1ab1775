package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//403　権限
	ErrForbidden = errors.New("forbidden ")
	//競合
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

const bcryptCost = 12

type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type JwtAccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthRegisterResponse struct {
	User UserDTO `json:"user"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type AuthUsecase struct {
	cfg   config.Config
	users repository.UserRepository
}

func NewAuthUsecase(cfg config.Config, users repository.UserRepository) *AuthUsecase {
	return &AuthUsecase{cfg: cfg, users: users}
}

// 会員登録（email重複は409）
func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (AuthRegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return AuthRegisterResponse{}, ErrValidation
	}
	if len(req.Password) < 8 {
		return AuthRegisterResponse{}, ErrValidation
	}

	existing, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return AuthRegisterResponse{}, ErrInternal
	}
	if existing != nil {
		return AuthRegisterResponse{}, ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return AuthRegisterResponse{}, ErrInternal
	}

	now := time.Now()
	user := model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, &user); err != nil {
		return AuthRegisterResponse{}, ErrConflict
	}

	return AuthRegisterResponse{User: toUserDTO(&user)}, nil
}

// ログイン（access tokenを発行）
func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (AuthLoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return AuthLoginResponse{}, ErrValidation
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return AuthLoginResponse{}, ErrInternal
	}
	//ユーザーが見つからなくてもパスワード不一致でも同じ401
	if user == nil || !user.IsActive {
		return AuthLoginResponse{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return AuthLoginResponse{}, ErrUnauthorized
	}

	now := time.Now()
	token, err := u.issueAccessToken(user, now)
	if err != nil {
		return AuthLoginResponse{}, ErrInternal
	}

	//最終ログインを更新（失敗してもログインは通す）
	user.LastLoginAt = &now
	user.UpdatedAt = now
	_ = u.users.Update(ctx, user)

	return AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken: token,
			ExpiresIn:   int(accessTokenTTL.Seconds()),
		},
	}, nil
}

func (u *AuthUsecase) issueAccessToken(user *model.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(u.cfg.JWTSecret))
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
}
