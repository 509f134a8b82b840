package profile

import (
	"time"

	profileuc "fittrack/internal/usecase/profile"
)

// UpdateProfileRequest описывает тело запроса обновления профиля.
// Отсутствующие поля не меняются.
type UpdateProfileRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// StatsDTO: счётчики записей пользователя.
type StatsDTO struct {
	Workouts      int64 `json:"workouts"`
	WeightRecords int64 `json:"weight_records"`
}

// ProfileResponse описывает профиль текущего пользователя.
type ProfileResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Stats     *StatsDTO `json:"stats,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toProfileResponse(v *profileuc.View) ProfileResponse {
	return ProfileResponse{
		UserID:    v.Profile.ID.String(),
		Email:     v.Email,
		Name:      v.Profile.Name,
		Bio:       v.Profile.Bio,
		Stats:     &StatsDTO{Workouts: v.Stats.Workouts, WeightRecords: v.Stats.WeightRecords},
		CreatedAt: v.Profile.CreatedAt,
		UpdatedAt: v.Profile.UpdatedAt,
	}
}
