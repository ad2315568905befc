package httpapi

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"avatarium/internal/apperr"
	"avatarium/internal/domain/models"
	"avatarium/internal/services/avatar"
)

type avatarHandler struct {
	avatars AvatarService
}

type createAvatarRequest struct {
	Name       string `json:"name"`
	Weapon     string `json:"weapon"`
	Clothes    string `json:"clothes"`
	HairColor  string `json:"hairColor"`
	FacialHair bool   `json:"facialHair"`
	Gender     string `json:"gender"`
	Genre      string `json:"genre"`
	ImageURL   string `json:"imageUrl"`
}

func (req *createAvatarRequest) validate() string {
	switch {
	case req.Name == "":
		return "Name is required"
	case !slices.Contains(models.AvatarWeapons, req.Weapon):
		return "Invalid weapon"
	case req.Clothes == "":
		return "Clothes is required"
	case req.HairColor == "":
		return "Hair color is required"
	case !slices.Contains(models.AvatarGenders, req.Gender):
		return "Invalid gender"
	case !slices.Contains(models.AvatarGenres, req.Genre):
		return "Invalid genre"
	case req.ImageURL == "":
		return "Image URL is required"
	}
	return ""
}

type updateAvatarRequest struct {
	Name       *string `json:"name"`
	Weapon     *string `json:"weapon"`
	Clothes    *string `json:"clothes"`
	HairColor  *string `json:"hairColor"`
	FacialHair *bool   `json:"facialHair"`
	Gender     *string `json:"gender"`
	Genre      *string `json:"genre"`
	ImageURL   *string `json:"imageUrl"`
}

func (req *updateAvatarRequest) validate() string {
	switch {
	case req.Name != nil && *req.Name == "":
		return "Name is required"
	case req.Weapon != nil && !slices.Contains(models.AvatarWeapons, *req.Weapon):
		return "Invalid weapon"
	case req.Gender != nil && !slices.Contains(models.AvatarGenders, *req.Gender):
		return "Invalid gender"
	case req.Genre != nil && !slices.Contains(models.AvatarGenres, *req.Genre):
		return "Invalid genre"
	}
	return ""
}

func (h *avatarHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", apperr.KindValidation)
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg, apperr.KindValidation)
		return
	}

	av, err := h.avatars.Create(r.Context(), userIDFrom(r.Context()), avatar.CreateInput{
		Name:       req.Name,
		Weapon:     req.Weapon,
		Clothes:    req.Clothes,
		HairColor:  req.HairColor,
		FacialHair: req.FacialHair,
		Gender:     req.Gender,
		Genre:      req.Genre,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, av)
}

func (h *avatarHandler) list(w http.ResponseWriter, r *http.Request) {
	avatars, err := h.avatars.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, avatars)
}

func (h *avatarHandler) get(w http.ResponseWriter, r *http.Request) {
	av, err := h.avatars.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, av)
}

func (h *avatarHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", apperr.KindValidation)
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg, apperr.KindValidation)
		return
	}

	av, err := h.avatars.Update(r.Context(), chi.URLParam(r, "id"), userIDFrom(r.Context()), models.AvatarUpdate{
		Name:       req.Name,
		Weapon:     req.Weapon,
		Clothes:    req.Clothes,
		HairColor:  req.HairColor,
		FacialHair: req.FacialHair,
		Gender:     req.Gender,
		Genre:      req.Genre,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, av)
}

func (h *avatarHandler) remove(w http.ResponseWriter, r *http.Request) {
	err := h.avatars.Delete(r.Context(), chi.URLParam(r, "id"), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, successResponse{Success: true})
}
