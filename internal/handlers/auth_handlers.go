package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sdko-org/media-vault/internal/auth"
	"github.com/sdko-org/media-vault/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	Admin        adminResponse `json:"admin"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.WithError(err).Error("Password hashing failed")
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	admin := models.AdminUser{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.admins.Create(r.Context(), &admin); err != nil {
		writeDomainError(w, err)
		return
	}

	h.log.WithField("email", admin.Email).Info("Admin registered")
	writeJSON(w, http.StatusCreated, adminResponse{
		ID:        admin.ID,
		Email:     admin.Email,
		CreatedAt: admin.CreatedAt,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	admin, err := h.admins.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if !auth.VerifyPassword(req.Password, admin.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}

	access, refresh, err := h.tokens.IssuePair(admin.ID, admin.Email, time.Now())
	if err != nil {
		h.log.WithError(err).Error("Token issuance failed")
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	// Refresh tokens rotate on every login.
	if err := h.admins.SaveRefreshToken(r.Context(), admin.ID, refresh); err != nil {
		h.log.WithError(err).Error("Refresh token persistence failed")
		writeError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.log.WithField("email", admin.Email).Info("Admin logged in")
	writeJSON(w, http.StatusOK, loginResponse{
		Admin: adminResponse{
			ID:        admin.ID,
			Email:     admin.Email,
			CreatedAt: admin.CreatedAt,
		},
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

type contextKey string

const claimsContextKey contextKey = "admin_claims"

// RequireAuth guards admin routes with a bearer access token.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Authorization required")
			return
		}

		claims, err := h.tokens.ParseAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminClaims returns the authenticated admin's claims, if any.
func AdminClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}
