package handlers

import (
	"net/http"
	"time"

	"github.com/typerone/server/pkg"
)

// StatsHandler, kullanıcı istatistik endpoint'leri. Tümü guard
// arkasındadır ve şimdilik mock data döner.
type StatsHandler struct{}

// NewStatsHandler, constructor.
func NewStatsHandler() *StatsHandler {
	return &StatsHandler{}
}

// Overview, GET /api/stats/overview — genel istatistik özeti.
func (h *StatsHandler) Overview(w http.ResponseWriter, _ *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]any{
		"stats": map[string]any{
			"totalTests":      245,
			"totalRaces":      89,
			"totalTime":       14523,
			"averageWpm":      85,
			"highestWpm":      142,
			"averageAccuracy": 96.5,
			"consistency":     92,
			"level":           10,
			"xp":              12450,
			"xpToNextLevel":   1550,
			"currentStreak":   7,
			"longestStreak":   24,
			"lastTestAt":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Progress, GET /api/stats/progress — gelişim metrikleri.
func (h *StatsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metric := queryDefault(q.Get("metric"), "wpm")
	period := queryDefault(q.Get("period"), "30d")

	pkg.JSON(w, http.StatusOK, map[string]any{
		"progress": map[string]any{
			"metric":        metric,
			"period":        period,
			"startValue":    70,
			"endValue":      85,
			"change":        15,
			"changePercent": 21.4,
			"milestones": []map[string]any{
				{"achievement": "Reached 80 WPM", "date": "2026-08-18"},
				{"achievement": "Completed 200 tests", "date": "2026-08-25"},
			},
		},
	})
}

// Records, GET /api/stats/records — kişisel rekorlar.
func (h *StatsHandler) Records(w http.ResponseWriter, _ *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]any{
		"records": map[string]any{
			"highestWpm": map[string]any{
				"value":      142,
				"testId":     "test_123",
				"achievedAt": time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
			},
			"longestRace": map[string]any{
				"value":      300,
				"raceId":     "race_456",
				"achievedAt": time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
			},
			"perfectAccuracy": map[string]any{
				"count":        12,
				"lastAchieved": time.Now().UTC().Format(time.RFC3339),
			},
			"winStreak": map[string]any{
				"current": 3,
				"longest": 8,
			},
		},
	})
}
