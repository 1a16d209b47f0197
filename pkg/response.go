package pkg

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// APIResponse, tüm API yanıtları için standart format.
// Frontend her zaman aynı yapıyı bekler — tutarlılık önemli.
//
// Success yanıtlarında data dolu, message/details boş.
// Client hatalarında (4xx) message + opsiyonel details (validation map'i).
// Server hatalarında (5xx) message + development modda error (detay).
type APIResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// devMode, 5xx yanıtlarında gerçek hata mesajının gösterilip
// gösterilmeyeceğini belirler. main.go startup'ta bir kez set eder —
// sonrasında sadece okunur, bu yüzden mutex gerekmez.
var devMode bool

// SetDevMode, development modunu açar/kapatır. Production'da kapalıdır:
// 5xx yanıtları generic mesaj döner, gerçek hata sadece loglanır.
func SetDevMode(enabled bool) {
	devMode = enabled
}

// JSON, başarılı bir yanıt gönderir.
func JSON(w http.ResponseWriter, status int, data any) {
	writeResponse(w, status, APIResponse{
		Success: true,
		Data:    data,
	})
}

// Message, data yerine sadece bilgi mesajı taşıyan başarılı yanıt gönderir.
// Forgot-password gibi kasıtlı olarak veri döndürmeyen akışlarda kullanılır.
func Message(w http.ResponseWriter, status int, message string) {
	writeResponse(w, status, APIResponse{
		Success: true,
		Message: message,
	})
}

// Error, hata yanıtı gönderir.
// Domain error kind'ları uygun HTTP status code'a çevrilir;
// ValidationError'ların Details map'i yanıta eklenir.
// Bu fonksiyon tek çevirim noktasıdır — handler'lar hatayı yakalamaz,
// olduğu gibi buraya iletir.
func Error(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)

	resp := APIResponse{
		Success: false,
		Message: err.Error(),
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		resp.Details = ve.Details
	}

	// 5xx: gerçek hata response'a sızmaz (store outage, imzalama hatası vb.
	// internal detaylar client'ı ilgilendirmez). Log'a yazılır,
	// development modda debugging için response'a da eklenir.
	if status >= http.StatusInternalServerError {
		log.Printf("[response] internal error: %v", err)
		resp.Message = "internal server error"
		if devMode {
			resp.Error = err.Error()
		}
	}

	writeResponse(w, status, resp)
}

// ErrorWithMessage, özel mesajlı hata yanıtı gönderir.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	writeResponse(w, status, APIResponse{
		Success: false,
		Message: message,
	})
}

func writeResponse(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// mapErrorToStatus, domain error'ları HTTP status code'larına eşler.
// errors.Is() error chain'ini kontrol eder — wrap edilmiş error'lar da
// doğru match eder.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
