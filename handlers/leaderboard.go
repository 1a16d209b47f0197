package handlers

import (
	"net/http"
	"time"

	"github.com/typerone/server/pkg"
)

// LeaderboardHandler, sıralama tablosu endpoint'leri. Mock data döner.
type LeaderboardHandler struct{}

// NewLeaderboardHandler, constructor.
func NewLeaderboardHandler() *LeaderboardHandler {
	return &LeaderboardHandler{}
}

// Global, GET /api/leaderboards/global.
func (h *LeaderboardHandler) Global(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period := queryDefault(q.Get("period"), "all")
	metric := queryDefault(q.Get("metric"), "highest_wpm")
	page, limit := paginationParams(r, 1, 50)

	pkg.JSON(w, http.StatusOK, map[string]any{
		"leaderboard": []map[string]any{
			{"rank": 1, "userId": "user_123", "username": "speedking", "wpm": 158, "accuracy": 99.2, "totalRaces": 1247},
			{"rank": 2, "userId": "user_456", "username": "typingmaster", "wpm": 156, "accuracy": 98.8, "totalRaces": 892},
			{"rank": 3, "userId": "user_789", "username": "fastfingers", "wpm": 154, "accuracy": 99.0, "totalRaces": 654},
		},
		"currentUser": map[string]any{"rank": 142, "wpm": 89},
		"pagination": map[string]any{
			"page":  page,
			"limit": limit,
			"total": 10247,
			"pages": 205,
		},
		"period": period,
		"metric": metric,
	})
}

// Daily, GET /api/leaderboards/daily.
func (h *LeaderboardHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := queryDefault(r.URL.Query().Get("date"), time.Now().UTC().Format("2006-01-02"))

	pkg.JSON(w, http.StatusOK, map[string]any{
		"leaderboard": []map[string]any{
			{"rank": 1, "username": "dailychamp", "wpm": 145, "accuracy": 98.5, "racesCompleted": 15},
		},
		"date":              date,
		"totalParticipants": 3421,
	})
}

// Weekly, GET /api/leaderboards/weekly. Her pazartesi sıfırlanır.
func (h *LeaderboardHandler) Weekly(w http.ResponseWriter, _ *http.Request) {
	now := time.Now().UTC()

	pkg.JSON(w, http.StatusOK, map[string]any{
		"leaderboard": []map[string]any{
			{"rank": 1, "username": "weeklypro", "avgWpm": 132, "totalRaces": 87, "totalXp": 12450},
		},
		"weekStart": now.Format(time.RFC3339),
		"weekEnd":   now.Add(7 * 24 * time.Hour).Format(time.RFC3339),
	})
}

// Friends, GET /api/leaderboards/friends — arkadaş sıralaması.
// Guard arkasındadır.
func (h *LeaderboardHandler) Friends(w http.ResponseWriter, _ *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]any{
		"leaderboard": []map[string]any{
			{"rank": 1, "userId": "friend_1", "username": "mybestfriend", "wpm": 95, "accuracy": 97.2, "isFriend": true},
			{"rank": 2, "userId": "current_user", "username": "me", "wpm": 89, "accuracy": 96.5, "isCurrentUser": true},
		},
	})
}
