package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/chartkeeper/internal/server/models"
	"github.com/dmitrijs2005/chartkeeper/internal/server/services"
)

type userJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Username: u.Username, Email: u.Email}
}

type authResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

// decodeBody decodes a JSON request body into dst, reporting a 400 on
// malformed input. It returns false when the response has been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name             string `json:"name"`
		Username         string `json:"username"`
		Email            string `json:"email"`
		Password         string `json:"password"`
		SecurityQuestion string `json:"securityQuestion"`
		SecurityAnswer   string `json:"securityAnswer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.users.Signup(r.Context(), services.SignupRequest{
		Name:             req.Name,
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserJSON(user)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrUsername string `json:"emailOrUsername"`
		Password        string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.users.Login(r.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserJSON(user)})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrUsername string `json:"emailOrUsername"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	question, err := h.users.RecoveryQuestion(r.Context(), req.EmailOrUsername)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"securityQuestion": question})
}

func (h *Handler) checkUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	has, question, err := h.users.CheckUser(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"hasSecurityQuestion": has,
		"securityQuestion":    question,
	})
}

func (h *Handler) verifyAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrUsername string `json:"emailOrUsername"`
		SecurityAnswer  string `json:"securityAnswer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.users.VerifyAnswer(r.Context(), req.EmailOrUsername, req.SecurityAnswer); err != nil {
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "answer verified")
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrUsername string `json:"emailOrUsername"`
		SecurityAnswer  string `json:"securityAnswer"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.users.ResetPassword(r.Context(),
		req.EmailOrUsername, req.SecurityAnswer, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "password reset successful")
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Profile(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserJSON(user))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), UserID(r.Context()), services.ProfileUpdate{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserJSON(user))
}
