package handler

import (
	"log/slog"
	"net/http"
	"time"

	"academy/internal/delivery/http/middleware"
	"academy/internal/delivery/http/response"
	"academy/internal/domain/entity"
	"academy/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ProfileHandler holds dependencies for profile and entitlement handlers.
type ProfileHandler struct {
	uc     usecase.ProfileUsecase
	logger *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler, injected by Fx.
func NewProfileHandler(uc usecase.ProfileUsecase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		uc:     uc,
		logger: logger,
	}
}

type updateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,url,max=512"`
}

type selectTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=basic premium"`
}

type profileView struct {
	AccountID   string    `json:"accountId"`
	DisplayName string    `json:"displayName,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Entitlement string    `json:"entitlement"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProfileView(profile *entity.Profile) *profileView {
	if profile == nil {
		return nil
	}

	return &profileView{
		AccountID:   profile.AccountID.String(),
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
		Entitlement: profile.Entitlement.String(),
		UpdatedAt:   profile.UpdatedAt,
	}
}

// GetProfile handles the request to read the current account's profile.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Invalid account ID in token")
	}

	profile, err := h.uc.GetProfile(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProfileView(profile), "Profile retrieved successfully")
}

// UpdateProfile handles partial updates to the display fields.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Invalid account ID in token")
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "VALIDATION_FAILED", "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "VALIDATION_FAILED", "Invalid profile input")
	}

	profile, err := h.uc.UpdateProfile(c.Request().Context(), accountID, &usecase.UpdateProfileInput{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProfileView(profile), "Profile updated successfully")
}

// SelectTier handles the plan selection request.
func (h *ProfileHandler) SelectTier(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Invalid account ID in token")
	}

	var req selectTierRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "VALIDATION_FAILED", "Invalid tier input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BindingError(c, "VALIDATION_FAILED", "Tier must be basic or premium")
	}

	profile, err := h.uc.SelectTier(c.Request().Context(), accountID, entity.ParseEntitlement(req.Tier))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProfileView(profile), "Tier selected successfully")
}

// Upgrade handles the premium upgrade request.
func (h *ProfileHandler) Upgrade(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Invalid account ID in token")
	}

	profile, err := h.uc.Upgrade(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toProfileView(profile), "Entitlement upgraded successfully")
}
