package httpapi

import (
	"encoding/json"
	"net/http"

	"avatarium/internal/apperr"
)

type authHandler struct {
	auth AuthService
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	profile, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *authHandler) refresh(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRefresh(w, r)
	if !ok {
		return
	}

	accessToken, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, refreshResponse{AccessToken: accessToken})
}

func (h *authHandler) logout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRefresh(w, r)
	if !ok {
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, successResponse{Success: true})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", apperr.KindValidation)
		return req, false
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email is required", apperr.KindValidation)
		return req, false
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "Password is required", apperr.KindValidation)
		return req, false
	}
	return req, true
}

func decodeRefresh(w http.ResponseWriter, r *http.Request) (refreshRequest, bool) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", apperr.KindValidation)
		return req, false
	}
	if req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "Refresh token is required", apperr.KindValidation)
		return req, false
	}
	return req, true
}
