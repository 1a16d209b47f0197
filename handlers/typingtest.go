package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/typerone/server/pkg"
)

// TypingTestHandler, solo yazma testi endpoint'leri.
//
// Bu endpoint'ler şimdilik mock data döner — gerçek test üretimi ve
// sonuç hesaplama sonraki iterasyonda gelecek. Route sözleşmesi ve
// envelope formatı finaldir, frontend bunlara karşı geliştirilebilir.
type TypingTestHandler struct{}

// NewTypingTestHandler, constructor.
func NewTypingTestHandler() *TypingTestHandler {
	return &TypingTestHandler{}
}

// New, GET /api/tests/new — yeni test metni.
func (h *TypingTestHandler) New(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := queryDefault(q.Get("mode"), "time")
	difficulty := queryDefault(q.Get("difficulty"), "medium")
	language := queryDefault(q.Get("language"), "en")

	pkg.JSON(w, http.StatusOK, map[string]any{
		"test": map[string]any{
			"id":         fmt.Sprintf("test_%d", time.Now().UnixMilli()),
			"text":       "The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs.",
			"mode":       mode,
			"difficulty": difficulty,
			"duration":   60,
			"wordCount":  16,
			"language":   language,
		},
	})
}

// Submit, POST /api/tests/submit — test sonucu gönderimi.
func (h *TypingTestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TestID   string `json:"testId"`
		Duration int    `json:"duration"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	pkg.JSON(w, http.StatusCreated, map[string]any{
		"result": map[string]any{
			"id":             fmt.Sprintf("result_%d", time.Now().UnixMilli()),
			"testId":         req.TestID,
			"wpm":            85,
			"rawWpm":         88,
			"accuracy":       96.5,
			"correctChars":   240,
			"incorrectChars": 9,
			"duration":       req.Duration,
			"consistency":    92,
			"personalBest":   false,
			"createdAt":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// GetResult, GET /api/tests/results/{resultId}.
func (h *TypingTestHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	resultID := r.PathValue("resultId")

	pkg.JSON(w, http.StatusOK, map[string]any{
		"result": map[string]any{
			"id":         resultID,
			"wpm":        85,
			"accuracy":   96.5,
			"duration":   60,
			"mode":       "time",
			"difficulty": "medium",
			"text":       "The quick brown fox...",
			"chartData": map[string]any{
				"wpm":    []int{82, 85, 88, 87, 85},
				"errors": []int{0, 1, 2, 1, 0},
			},
			"completedAt": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Texts, GET /api/tests/texts — pratik metinleri.
func (h *TypingTestHandler) Texts(w http.ResponseWriter, _ *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]any{
		"texts": []map[string]any{
			{
				"id":         "text_1",
				"title":      "Common English Words",
				"difficulty": "easy",
				"length":     200,
				"category":   "practice",
				"language":   "en",
			},
			{
				"id":         "text_2",
				"title":      "Programming Quotes",
				"difficulty": "medium",
				"length":     350,
				"category":   "quotes",
				"language":   "en",
			},
		},
	})
}

// Daily, GET /api/tests/daily — günün meydan okuması. Metin gün bazında
// sabittir, tüm kullanıcılar aynı metni yazar.
func (h *TypingTestHandler) Daily(w http.ResponseWriter, _ *http.Request) {
	today := time.Now().UTC().Format("2006-01-02")

	pkg.JSON(w, http.StatusOK, map[string]any{
		"challenge": map[string]any{
			"id":               "daily_" + today,
			"date":             today,
			"text":             "Today is a beautiful day to practice typing skills and improve accuracy.",
			"difficulty":       "medium",
			"participantCount": 1247,
			"topScore": map[string]any{
				"username": "speedking",
				"wpm":      158,
				"accuracy": 99.2,
			},
		},
	})
}

// queryDefault, boş query parametresi için default değer döner.
func queryDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
