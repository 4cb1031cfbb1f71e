package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

// オペレーターのログインだけを扱う。登録・refresh tokenはこのアプリには無い。
type AuthUsecase struct {
	users  repo.UserRepository
	issuer AccessTokenIssuer
}

func NewAuthUsecase(users repo.UserRepository, issuer AccessTokenIssuer) *AuthUsecase {
	return &AuthUsecase{users: users, issuer: issuer}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewCodedError(http.StatusBadRequest, CodeValidationError, "email and password are required", nil)
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil || user == nil {
		//存在しないemailとパスワード違いは同じ応答にする
		return LoginOutput{}, NewCodedError(http.StatusUnauthorized, CodeUnauthorized, "invalid credentials", nil)
	}
	if !user.IsActive {
		return LoginOutput{}, NewCodedError(http.StatusUnauthorized, CodeUnauthorized, "invalid credentials", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewCodedError(http.StatusUnauthorized, CodeUnauthorized, "invalid credentials", nil)
	}

	now := time.Now()
	token, expiresAt, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	//ログイン時刻はbest-effort
	_ = u.users.UpdateLastLoginAt(ctx, user.ID, now)

	return LoginOutput{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
