// Пакет errors — конструкторы ошибок HTTP API soundboard.
// Единый формат тела: {"message": "..."}. Структурированное сообщение,
// никогда не stack trace. Все ответы с ошибками идут через WriteError.
package errors //nolint:revive // конфликт имени со stdlib осознанный, пакет используется с алиасом

import (
	"encoding/json"
	"net/http"
)

// errorPayload — тело ответа с ошибкой.
type errorPayload struct {
	Message string `json:"message"`
}

// WriteError записывает ответ с ошибкой в формате {"message": ...}.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorPayload{Message: message})
}

// --- Конструкторы для типичных ошибок ---

// BadRequest — 400 предусловие запроса не выполнено.
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// ExpectationFailed — 417 логический идентификатор не найден.
func ExpectationFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusExpectationFailed, message)
}

// ServiceUnavailable — 503 ресурс временно занят.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
