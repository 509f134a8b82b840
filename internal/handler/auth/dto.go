package auth

import (
	"time"

	authuc "fittrack/internal/usecase/auth"
)

// RegisterRequest описывает тело запроса регистрации пользователя.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"max=255"`
}

// RegisterResponse: ответ на регистрацию. Токены выдаются после подтверждения email.
type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// VerifyEmailRequest описывает тело запроса подтверждения email.
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// EmailRequest: запрос, содержащий только email.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest описывает тело запроса логина.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest описывает тело запроса обновления и отзыва токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ResetPasswordRequest описывает тело запроса смены пароля по коду.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// TokenPair описывает пару access/refresh токенов.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// ProfileDTO: профиль в ответах аутентификации.
type ProfileDTO struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// SessionResponse описывает текущую учётную запись.
type SessionResponse struct {
	UserID        string     `json:"user_id"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	Profile       ProfileDTO `json:"profile"`
}

// LoginResponse: ответ при успешной аутентификации.
type LoginResponse struct {
	SessionResponse
	Tokens TokenPair `json:"tokens"`
}

// MessageResponse: ответ без данных.
type MessageResponse struct {
	Message string `json:"message"`
}

func toSessionResponse(id authuc.Identity) SessionResponse {
	resp := SessionResponse{
		UserID:        id.User.ID.String(),
		Email:         id.User.Email,
		EmailVerified: id.User.IsEmailVerified,
	}
	if id.Profile != nil {
		resp.Profile = ProfileDTO{Name: id.Profile.Name, Bio: id.Profile.Bio}
	}
	return resp
}

func toLoginResponse(res *authuc.Result) LoginResponse {
	return LoginResponse{
		SessionResponse: toSessionResponse(res.Identity),
		Tokens: TokenPair{
			AccessToken:      res.Tokens.AccessToken,
			RefreshToken:     res.Tokens.RefreshToken,
			RefreshExpiresAt: res.Tokens.RefreshExpiresAt,
		},
	}
}
