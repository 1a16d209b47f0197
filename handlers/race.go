package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/typerone/server/middleware"
	"github.com/typerone/server/pkg"
)

// RaceHandler, multiplayer yarış endpoint'leri.
//
// Gerçek zamanlı oynanış (canlı progress, countdown) kapsam dışıdır —
// WebSocket katmanı ayrıca gelecek. Buradaki REST endpoint'leri oyun
// durumu yönetimi içindir ve şimdilik mock data döner.
type RaceHandler struct{}

// NewRaceHandler, constructor.
func NewRaceHandler() *RaceHandler {
	return &RaceHandler{}
}

// raceRequest, create ve quick-match için ortak istek gövdesi.
type raceRequest struct {
	Mode       string `json:"mode"`
	MaxPlayers int    `json:"maxPlayers"`
	Difficulty string `json:"difficulty"`
	Duration   int    `json:"duration"`
}

func (r *raceRequest) applyDefaults() {
	if r.Mode == "" {
		r.Mode = "public"
	}
	if r.MaxPlayers == 0 {
		r.MaxPlayers = 5
	}
	if r.Difficulty == "" {
		r.Difficulty = "medium"
	}
	if r.Duration == 0 {
		r.Duration = 60
	}
}

// Create, POST /api/races/create — yeni yarış odası.
func (h *RaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req raceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.applyDefaults()

	// Route guard arkasındadır ama claims yokluğunda panic yerine 401
	// dönmek güvenli taraftır.
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	pkg.JSON(w, http.StatusCreated, map[string]any{
		"race": map[string]any{
			"id":             fmt.Sprintf("race_%d", time.Now().UnixMilli()),
			"mode":           req.Mode,
			"status":         "waiting",
			"maxPlayers":     req.MaxPlayers,
			"currentPlayers": 1,
			"difficulty":     req.Difficulty,
			"duration":       req.Duration,
			"hostId":         claims.UserID,
			"createdAt":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Join, POST /api/races/{raceId}/join.
func (h *RaceHandler) Join(w http.ResponseWriter, r *http.Request) {
	raceID := r.PathValue("raceId")

	pkg.JSON(w, http.StatusOK, map[string]any{
		"race": map[string]any{
			"id":     raceID,
			"status": "waiting",
			"players": []map[string]any{
				{"id": "user_123", "username": "speedtyper", "ready": true},
				{"id": "user_456", "username": "fastfingers", "ready": false},
			},
			"currentPlayers": 2,
			"maxPlayers":     5,
		},
	})
}

// Leave, POST /api/races/{raceId}/leave.
func (h *RaceHandler) Leave(w http.ResponseWriter, _ *http.Request) {
	pkg.Message(w, http.StatusOK, "Left race successfully")
}

// Ready, POST /api/races/{raceId}/ready.
func (h *RaceHandler) Ready(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ready *bool `json:"ready"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	ready := true
	if req.Ready != nil {
		ready = *req.Ready
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"message":  "Ready status updated",
		"ready":    ready,
		"allReady": false,
	})
}

// Start, POST /api/races/{raceId}/start — sadece host başlatabilir.
func (h *RaceHandler) Start(w http.ResponseWriter, r *http.Request) {
	raceID := r.PathValue("raceId")

	pkg.JSON(w, http.StatusOK, map[string]any{
		"race": map[string]any{
			"id":       raceID,
			"status":   "countdown",
			"text":     "The quick brown fox jumps over the lazy dog...",
			"startsAt": time.Now().Add(3 * time.Second).UTC().Format(time.RFC3339),
		},
	})
}

// Finish, POST /api/races/{raceId}/finish — yarış sonucu gönderimi.
func (h *RaceHandler) Finish(w http.ResponseWriter, _ *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]any{
		"result": map[string]any{
			"placement":       2,
			"wpm":             92,
			"accuracy":        97.3,
			"xpEarned":        150,
			"newAchievements": []string{},
		},
	})
}

// Get, GET /api/races/{raceId} — yarış durumu.
func (h *RaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	raceID := r.PathValue("raceId")

	pkg.JSON(w, http.StatusOK, map[string]any{
		"race": map[string]any{
			"id":     raceID,
			"status": "active",
			"text":   "The quick brown fox jumps over the lazy dog...",
			"players": []map[string]any{
				{"id": "user_123", "username": "speedtyper", "progress": 85, "wpm": 94, "position": 1},
				{"id": "user_456", "username": "fastfingers", "progress": 72, "wpm": 89, "position": 2},
			},
			"startedAt": time.Now().Add(-30 * time.Second).UTC().Format(time.RFC3339),
		},
	})
}

// Lobby, GET /api/races/lobby — katılınabilir yarışlar.
func (h *RaceHandler) Lobby(w http.ResponseWriter, _ *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)

	pkg.JSON(w, http.StatusOK, map[string]any{
		"races": []map[string]any{
			{
				"id":             "race_1",
				"mode":           "public",
				"difficulty":     "medium",
				"currentPlayers": 3,
				"maxPlayers":     5,
				"status":         "waiting",
				"host":           map[string]any{"username": "speedtyper"},
				"createdAt":      now,
			},
			{
				"id":             "race_2",
				"mode":           "public",
				"difficulty":     "hard",
				"currentPlayers": 2,
				"maxPlayers":     4,
				"status":         "waiting",
				"host":           map[string]any{"username": "typingpro"},
				"createdAt":      now,
			},
		},
	})
}

// QuickMatch, POST /api/races/quick-match — otomatik eşleştirme.
func (h *RaceHandler) QuickMatch(w http.ResponseWriter, r *http.Request) {
	var req raceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.applyDefaults()

	pkg.JSON(w, http.StatusOK, map[string]any{
		"race": map[string]any{
			"id":             fmt.Sprintf("race_quickmatch_%d", time.Now().UnixMilli()),
			"status":         "waiting",
			"difficulty":     req.Difficulty,
			"currentPlayers": 3,
			"maxPlayers":     5,
		},
	})
}

// History, GET /api/races/history — kullanıcının yarış geçmişi.
// Guard arkasındadır.
func (h *RaceHandler) History(w http.ResponseWriter, r *http.Request) {
	page, limit := paginationParams(r, 1, 20)

	pkg.JSON(w, http.StatusOK, map[string]any{
		"races": []map[string]any{
			{
				"id":           "race_123",
				"placement":    1,
				"totalPlayers": 4,
				"wpm":          98,
				"accuracy":     96.8,
				"xpEarned":     200,
				"completedAt":  time.Now().UTC().Format(time.RFC3339),
			},
		},
		"pagination": map[string]any{
			"page":  page,
			"limit": limit,
			"total": 89,
			"pages": 5,
		},
	})
}

// Cancel, DELETE /api/races/{raceId} — sadece host iptal edebilir.
func (h *RaceHandler) Cancel(w http.ResponseWriter, _ *http.Request) {
	pkg.Message(w, http.StatusOK, "Race cancelled successfully")
}

// paginationParams, page/limit query parametrelerini okur; geçersiz veya
// eksik değerler default'a düşer.
func paginationParams(r *http.Request, defaultPage, defaultLimit int) (page, limit int) {
	page, limit = defaultPage, defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}
