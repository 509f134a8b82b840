package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fittrack/internal/handler/request"
	"fittrack/internal/handler/response"
	repo "fittrack/internal/repository/interfaces"
	authuc "fittrack/internal/usecase/auth"
)

// Handler обрабатывает HTTP-запросы, связанные с аутентификацией.
type Handler struct {
	auth authuc.Service
}

// NewHandler создаёт новый AuthHandler.
func NewHandler(auth authuc.Service) *Handler {
	return &Handler{auth: auth}
}

// Register обрабатывает регистрацию пользователя.
//
//	@Summary	Регистрация по email и паролю
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		RegisterRequest	true	"Данные регистрации"
//	@Success	201		{object}	RegisterResponse
//	@Failure	400,409	{object}	response.ErrorResponse
//	@Router		/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, authuc.ErrValidation):
			response.Validation(c, err)
		case errors.Is(err, repo.ErrEmailExists):
			response.Error(c, http.StatusConflict, "email_already_exists", "Указанный email уже используется", nil)
		default:
			response.Internal(c, "auth.Register", err)
		}
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		UserID:  user.ID.String(),
		Email:   user.Email,
		Message: "Код подтверждения отправлен на email",
	})
}

// VerifyEmail подтверждает email кодом из письма и открывает сессию.
//
//	@Summary	Подтверждение email
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		VerifyEmailRequest	true	"Email и код"
//	@Success	200		{object}	LoginResponse
//	@Failure	400,409	{object}	response.ErrorResponse
//	@Router		/auth/verify-email [post]
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	res, err := h.auth.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.codeError(c, "auth.VerifyEmail", err)
		return
	}
	c.JSON(http.StatusOK, toLoginResponse(res))
}

// ResendVerification повторно отправляет код подтверждения.
//
//	@Summary	Повторная отправка кода подтверждения
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		EmailRequest	true	"Email"
//	@Success	202		{object}	MessageResponse
//	@Failure	400,409	{object}	response.ErrorResponse
//	@Router		/auth/resend-verification [post]
func (h *Handler) ResendVerification(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	if err := h.auth.ResendVerificationCode(c.Request.Context(), req.Email); err != nil {
		h.codeError(c, "auth.ResendVerification", err)
		return
	}
	// Ответ не раскрывает, зарегистрирован ли email.
	c.JSON(http.StatusAccepted, MessageResponse{Message: "Если email зарегистрирован, код отправлен"})
}

// Login обрабатывает вход пользователя по email/паролю.
//
//	@Summary	Вход
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body		body		LoginRequest	true	"Email и пароль"
//	@Success	200			{object}	LoginResponse
//	@Failure	400,401,403	{object}	response.ErrorResponse
//	@Router		/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authuc.ErrValidation), errors.Is(err, authuc.ErrInvalidCredentials):
			// Не раскрываем, что именно неверно
			response.Error(c, http.StatusUnauthorized, "invalid_credentials", "Неверный email или пароль", nil)
		case errors.Is(err, authuc.ErrEmailNotVerified):
			response.Error(c, http.StatusForbidden, "email_not_verified", "Email не подтверждён", nil)
		default:
			response.Internal(c, "auth.Login", err)
		}
		return
	}
	c.JSON(http.StatusOK, toLoginResponse(res))
}

// Refresh обновляет пару токенов. Переданный refresh-токен отзывается.
//
//	@Summary	Обновление токенов
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body		body		RefreshRequest	true	"Refresh-токен"
//	@Success	200			{object}	LoginResponse
//	@Failure	400,401,403	{object}	response.ErrorResponse
//	@Router		/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	res, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, authuc.ErrInvalidRefreshToken):
			response.Error(c, http.StatusUnauthorized, "invalid_refresh_token", "Недействительный refresh-токен", nil)
		case errors.Is(err, authuc.ErrEmailNotVerified):
			response.Error(c, http.StatusForbidden, "email_not_verified", "Email не подтверждён", nil)
		default:
			response.Internal(c, "auth.Refresh", err)
		}
		return
	}
	c.JSON(http.StatusOK, toLoginResponse(res))
}

// Logout отзывает refresh-сессию.
//
//	@Summary	Выход
//	@Tags		auth
//	@Accept		json
//	@Param		body	body	RefreshRequest	true	"Refresh-токен"
//	@Success	204
//	@Failure	400,401	{object}	response.ErrorResponse
//	@Router		/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, authuc.ErrInvalidRefreshToken) {
			response.Error(c, http.StatusUnauthorized, "invalid_refresh_token", "Недействительный refresh-токен", nil)
			return
		}
		response.Internal(c, "auth.Logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ForgotPassword отправляет код сброса пароля.
//
//	@Summary	Запрос сброса пароля
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		EmailRequest	true	"Email"
//	@Success	202		{object}	MessageResponse
//	@Failure	400		{object}	response.ErrorResponse
//	@Router		/auth/password/forgot [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, authuc.ErrValidation) {
			response.Validation(c, err)
			return
		}
		response.Internal(c, "auth.ForgotPassword", err)
		return
	}
	c.JSON(http.StatusAccepted, MessageResponse{Message: "Если email зарегистрирован, код отправлен"})
}

// ResetPassword меняет пароль по коду из письма.
//
//	@Summary	Сброс пароля
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ResetPasswordRequest	true	"Email, код и новый пароль"
//	@Success	200		{object}	MessageResponse
//	@Failure	400		{object}	response.ErrorResponse
//	@Router		/auth/password/reset [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		h.codeError(c, "auth.ResetPassword", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Пароль изменён"})
}

// Session возвращает текущую учётную запись.
//
//	@Summary	Текущая сессия
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	SessionResponse
//	@Failure	401	{object}	response.ErrorResponse
//	@Router		/auth/session [get]
func (h *Handler) Session(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	id, err := h.auth.Session(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "Учётная запись не найдена", nil)
			return
		}
		response.Internal(c, "auth.Session", err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(*id))
}

// codeError отвечает на ошибки операций с одноразовым кодом.
func (h *Handler) codeError(c *gin.Context, handler string, err error) {
	switch {
	case errors.Is(err, authuc.ErrValidation):
		response.Validation(c, err)
	case errors.Is(err, authuc.ErrEmailAlreadyVerified):
		response.Error(c, http.StatusConflict, "email_already_verified", "Email уже подтверждён", nil)
	case errors.Is(err, authuc.ErrVerificationCodeNotFound):
		response.Error(c, http.StatusBadRequest, "verification_code_not_found", "Код не найден или истёк, запросите новый", nil)
	case errors.Is(err, authuc.ErrVerificationCodeInvalid):
		response.Error(c, http.StatusBadRequest, "invalid_verification_code", "Неверный код", nil)
	case errors.Is(err, authuc.ErrVerificationAttemptsExceeded):
		response.Error(c, http.StatusTooManyRequests, "verification_attempts_exceeded", "Превышено число попыток, запросите новый код", nil)
	default:
		response.Internal(c, handler, err)
	}
}
