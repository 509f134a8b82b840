package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fittrack/internal/handler/request"
	"fittrack/internal/handler/response"
	repo "fittrack/internal/repository/interfaces"
	profileuc "fittrack/internal/usecase/profile"
)

// Handler обрабатывает HTTP-запросы профиля текущего пользователя.
type Handler struct {
	profiles profileuc.Service
}

// NewHandler создаёт новый ProfileHandler.
func NewHandler(profiles profileuc.Service) *Handler {
	return &Handler{profiles: profiles}
}

// Get возвращает профиль со счётчиками записей.
//
//	@Summary	Профиль текущего пользователя
//	@Tags		profile
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200		{object}	ProfileResponse
//	@Failure	401,404	{object}	response.ErrorResponse
//	@Router		/profile [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	view, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "user_not_found", "Пользователь не найден", nil)
			return
		}
		response.Internal(c, "profile.Get", err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(view))
}

// Update обновляет имя и био.
//
//	@Summary	Обновление профиля
//	@Tags		profile
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		UpdateProfileRequest	true	"Изменения"
//	@Success	200		{object}	ProfileResponse
//	@Failure	400,401	{object}	response.ErrorResponse
//	@Router		/profile [put]
func (h *Handler) Update(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidBody(c, err)
		return
	}

	p, err := h.profiles.UpdateProfile(c.Request.Context(), userID, profileuc.UpdateInput{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		if errors.Is(err, profileuc.ErrValidation) {
			response.Validation(c, err)
			return
		}
		response.Internal(c, "profile.Update", err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		UserID:    p.ID.String(),
		Name:      p.Name,
		Bio:       p.Bio,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
}

// Delete мягко удаляет учётную запись и отзывает её сессии.
//
//	@Summary	Удаление учётной записи
//	@Tags		profile
//	@Security	BearerAuth
//	@Success	204
//	@Failure	401,404	{object}	response.ErrorResponse
//	@Router		/profile [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	if err := h.profiles.DeleteAccount(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "user_not_found", "Пользователь не найден", nil)
			return
		}
		response.Internal(c, "profile.Delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}
