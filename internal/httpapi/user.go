package httpapi

import (
	"encoding/json"
	"net/http"

	"avatarium/internal/apperr"
	"avatarium/internal/domain/models"
)

type userHandler struct {
	users UserService
}

type updateProfileRequest struct {
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	PhoneNumber *string `json:"phoneNumber"`
	SocialLinks *struct {
		Twitter   *string `json:"twitter"`
		Facebook  *string `json:"facebook"`
		Instagram *string `json:"instagram"`
		LinkedIn  *string `json:"linkedin"`
	} `json:"socialLinks"`
	Preferences *struct {
		Theme         *string `json:"theme"`
		Notifications *bool   `json:"notifications"`
	} `json:"preferences"`
}

func (h *userHandler) me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.Profile(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *userHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", apperr.KindValidation)
		return
	}

	upd := models.UserUpdate{
		Name:        req.Name,
		Bio:         req.Bio,
		Location:    req.Location,
		PhoneNumber: req.PhoneNumber,
	}
	if req.SocialLinks != nil {
		upd.SocialLinks = &models.SocialLinksUpdate{
			Twitter:   req.SocialLinks.Twitter,
			Facebook:  req.SocialLinks.Facebook,
			Instagram: req.SocialLinks.Instagram,
			LinkedIn:  req.SocialLinks.LinkedIn,
		}
	}
	if req.Preferences != nil {
		upd.Preferences = &models.PreferencesUpdate{
			Theme:         req.Preferences.Theme,
			Notifications: req.Preferences.Notifications,
		}
	}

	profile, err := h.users.UpdateProfile(r.Context(), userIDFrom(r.Context()), upd)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
