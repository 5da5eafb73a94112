// health.go — обработчики health endpoints для Kubernetes probes.
package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/maconha/soundboard/internal/config"
)

// statusFail — строковая константа для статуса "fail" в health checks.
const statusFail = "fail"

// DBPinger — способность проверить доступность базы каталога.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler реализует health endpoints: /health/live, /health/ready.
type HealthHandler struct {
	version string
	// audioDir — путь к директории аудио (для проверки FS)
	audioDir string
	// db — каталог для проверки доступности базы
	db DBPinger
}

// NewHealthHandler создаёт обработчик health endpoints.
func NewHealthHandler(audioDir string, db DBPinger) *HealthHandler {
	return &HealthHandler{
		version:  config.Version,
		audioDir: audioDir,
		db:       db,
	}
}

// HealthLive обрабатывает GET /health/live.
// Возвращает 200, если процесс жив. Не проверяет зависимости.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   "soundboard",
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthReady обрабатывает GET /health/ready.
// Проверяет: запись в директорию аудио, доступность базы каталога.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	overallStatus := "ok"
	httpStatus := http.StatusOK

	fsCheck := h.checkFilesystem()
	if fsCheck["status"] != "ok" {
		overallStatus = statusFail
		httpStatus = http.StatusServiceUnavailable
	}

	dbCheck := h.checkDatabase(r.Context())
	if dbCheck["status"] != "ok" {
		overallStatus = statusFail
		httpStatus = http.StatusServiceUnavailable
	}

	resp := map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": map[string]any{
			"filesystem": fsCheck,
			"database":   dbCheck,
		},
	}

	writeJSON(w, httpStatus, resp)
}

// checkFilesystem проверяет возможность записи в директорию аудио.
func (h *HealthHandler) checkFilesystem() map[string]string {
	probe := filepath.Join(h.audioDir, ".health-probe")

	if err := os.WriteFile(probe, []byte("ok"), 0o640); err != nil {
		return map[string]string{
			"status":  statusFail,
			"message": err.Error(),
		}
	}
	_ = os.Remove(probe)

	return map[string]string{"status": "ok"}
}

// checkDatabase проверяет доступность базы каталога.
func (h *HealthHandler) checkDatabase(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return map[string]string{
			"status":  statusFail,
			"message": err.Error(),
		}
	}

	return map[string]string{"status": "ok"}
}
