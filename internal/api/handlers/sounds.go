// sounds.go — HTTP handlers операций soundboard:
// загрузка клипов, список каталога, воспроизведение.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/maconha/soundboard/internal/api/errors"
	"github.com/maconha/soundboard/internal/domain/model"
	"github.com/maconha/soundboard/internal/service"
	"github.com/maconha/soundboard/internal/storage/catalog"
	"github.com/maconha/soundboard/internal/voice"
)

// playSoundPayload — тело запроса POST /play-sound.
type playSoundPayload struct {
	SoundID string       `json:"soundId"`
	Client  model.Client `json:"client"`
}

// playSoundResponse — подтверждение диспетчеризации.
// Гарантирует только принятие команды, не завершение воспроизведения.
type playSoundResponse struct {
	SoundID string       `json:"soundId"`
	Client  model.Client `json:"client"`
}

// SoundsHandler — обработчик endpoints /upload, /sounds, /play-sound.
type SoundsHandler struct {
	uploadSvc   *service.UploadService
	playbackSvc *service.PlaybackService
	cat         *catalog.Catalog
	logger      *slog.Logger
}

// NewSoundsHandler создаёт обработчик операций soundboard.
func NewSoundsHandler(
	uploadSvc *service.UploadService,
	playbackSvc *service.PlaybackService,
	cat *catalog.Catalog,
	logger *slog.Logger,
) *SoundsHandler {
	return &SoundsHandler{
		uploadSvc:   uploadSvc,
		playbackSvc: playbackSvc,
		cat:         cat,
		logger:      logger.With(slog.String("component", "sounds_handler")),
	}
}

// Upload обрабатывает POST /upload.
// Multipart-поток: произвольное число файловых частей, опционально
// зарезервированная часть "tags". Отчёт возвращается всегда с 200:
// пофайловые отказы перечислены в failed.
func (h *SoundsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		apierrors.BadRequest(w, "Request body must be multipart/form-data.")
		return
	}

	report := h.uploadSvc.UploadBatch(r.Context(), mr)
	writeJSON(w, http.StatusOK, report)
}

// List обрабатывает GET /sounds: весь каталог в порядке хранения.
func (h *SoundsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.cat.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Ошибка выборки каталога", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Server failed to fetch sounds from database.")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// PlaySound обрабатывает POST /play-sound.
// Тело: {"soundId": "...", "client": "discord" | "telegram"}.
func (h *SoundsHandler) PlaySound(w http.ResponseWriter, r *http.Request) {
	var payload playSoundPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierrors.BadRequest(w, fmt.Sprintf("Invalid request body: %s", err.Error()))
		return
	}
	if !payload.Client.Valid() {
		apierrors.BadRequest(w, fmt.Sprintf("Unknown client: %q", payload.Client))
		return
	}

	err := h.playbackSvc.Dispatch(r.Context(), payload.SoundID, payload.Client)
	if err != nil {
		h.writeDispatchError(w, payload.SoundID, err)
		return
	}

	writeJSON(w, http.StatusOK, playSoundResponse{
		SoundID: payload.SoundID,
		Client:  payload.Client,
	})
}

// writeDispatchError транслирует ошибку диспетчера в HTTP-ответ.
// Отсутствие звука — ожидаемый отказ (417); отсутствие blob-а при живой
// записи каталога — серверная рассинхронизация (500).
func (h *SoundsHandler) writeDispatchError(w http.ResponseWriter, soundID string, err error) {
	switch {
	case errors.Is(err, service.ErrSoundNotFound):
		apierrors.ExpectationFailed(w, fmt.Sprintf("Failed to find sound with id: %s", soundID))
	case errors.Is(err, service.ErrAudioFileMissing):
		apierrors.InternalError(w, fmt.Sprintf("Audio is missing for sound with id: %s", soundID))
	case errors.Is(err, service.ErrNoActiveSession):
		apierrors.BadRequest(w, "Bot has to join a voice channel first.")
	case errors.Is(err, voice.ErrSessionBusy):
		apierrors.ServiceUnavailable(w, "Voice session is busy, try again later.")
	case errors.Is(err, voice.ErrDecode):
		h.logger.Error("Ошибка декодирования при воспроизведении",
			slog.String("sound_id", soundID),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, fmt.Sprintf("Failed to decode audio for sound with id: %s", soundID))
	default:
		h.logger.Error("Ошибка диспетчеризации воспроизведения",
			slog.String("sound_id", soundID),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Server failed to dispatch playback.")
	}
}

// writeJSON — вспомогательная функция записи JSON-ответа.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
