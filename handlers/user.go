package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/typerone/server/middleware"
	"github.com/typerone/server/pkg"
)

// UserHandler, kullanıcı profil endpoint'leri.
//
// Profil görüntüleme herkese açık mock data döner; güncelleme guard
// arkasındadır. Gerçek profil istatistikleri (WPM ortalamaları vb.)
// test/yarış kayıtları geldiğinde hesaplanacak.
type UserHandler struct{}

// NewUserHandler, constructor.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GetProfile, GET /api/users/{userId} — herkese açık profil.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	pkg.JSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":         userID,
			"username":   "speedtyper123",
			"avatar":     "https://example.com/avatar.jpg",
			"level":      10,
			"totalRaces": 245,
			"averageWpm": 85,
			"highestWpm": 142,
			"accuracy":   96.5,
			"joinedAt":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// UpdateProfile, PATCH /api/users/profile. Guard arkasındadır.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
		Bio      string `json:"bio"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Username) == "" {
		req.Username = claims.Username
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user": map[string]any{
			"username": req.Username,
			"avatar":   req.Avatar,
			"bio":      req.Bio,
		},
	})
}

// History, GET /api/users/history — yazma geçmişi. Guard arkasındadır.
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	page, limit := paginationParams(r, 1, 20)

	pkg.JSON(w, http.StatusOK, map[string]any{
		"history": []map[string]any{
			{
				"id":          "test_123",
				"type":        "solo",
				"wpm":         89,
				"accuracy":    95.5,
				"duration":    60,
				"completedAt": time.Now().UTC().Format(time.RFC3339),
			},
		},
		"pagination": map[string]any{
			"page":  page,
			"limit": limit,
			"total": 245,
			"pages": 13,
		},
	})
}
