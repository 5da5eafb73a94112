package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv задаёт обязательные переменные окружения.
func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("SB_AUDIO_DIR", "/var/lib/soundboard/audio")
	t.Setenv("SB_DB_PATH", "/var/lib/soundboard/sounds.db")
	t.Setenv("SB_GUILD_ID", "guild-1")
	t.Setenv("SB_TELEGRAM_TOKEN", "token-1")
	t.Setenv("SB_TELEGRAM_CHAT_ID", "chat-1")
}

// TestLoad_Defaults проверяет значения по умолчанию.
func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port: ожидалось 8080, получено %d", cfg.Port)
	}
	if cfg.TelegramAPIURL != "https://api.telegram.org" {
		t.Errorf("TelegramAPIURL: %s", cfg.TelegramAPIURL)
	}
	if cfg.IOWorkers != 4 {
		t.Errorf("IOWorkers: ожидалось 4, получено %d", cfg.IOWorkers)
	}
	if cfg.SourceCacheTTL != 30*time.Minute {
		t.Errorf("SourceCacheTTL: %v", cfg.SourceCacheTTL)
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("FFmpegPath: %s", cfg.FFmpegPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: %s", cfg.LogFormat)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout: %v", cfg.ShutdownTimeout)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval: %v", cfg.DephealthCheckInterval)
	}
	if cfg.DephealthGroup != "soundboard" {
		t.Errorf("DephealthGroup: %s", cfg.DephealthGroup)
	}
	if cfg.DephealthDepName != "telegram-api" {
		t.Errorf("DephealthDepName: %s", cfg.DephealthDepName)
	}
}

// TestLoad_Overrides проверяет переопределение значений из окружения.
func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SB_PORT", "9090")
	t.Setenv("SB_IO_WORKERS", "8")
	t.Setenv("SB_SOURCE_CACHE_TTL", "5m")
	t.Setenv("SB_LOG_LEVEL", "debug")
	t.Setenv("SB_LOG_FORMAT", "text")
	t.Setenv("SB_TELEGRAM_API_URL", "http://localhost:8081")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port: ожидалось 9090, получено %d", cfg.Port)
	}
	if cfg.IOWorkers != 8 {
		t.Errorf("IOWorkers: ожидалось 8, получено %d", cfg.IOWorkers)
	}
	if cfg.SourceCacheTTL != 5*time.Minute {
		t.Errorf("SourceCacheTTL: %v", cfg.SourceCacheTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: %s", cfg.LogFormat)
	}
	if cfg.TelegramAPIURL != "http://localhost:8081" {
		t.Errorf("TelegramAPIURL: %s", cfg.TelegramAPIURL)
	}
}

// TestLoad_MissingRequired проверяет ошибку при отсутствии обязательной
// переменной.
func TestLoad_MissingRequired(t *testing.T) {
	required := []string{
		"SB_AUDIO_DIR",
		"SB_DB_PATH",
		"SB_GUILD_ID",
		"SB_TELEGRAM_TOKEN",
		"SB_TELEGRAM_CHAT_ID",
	}

	for _, missing := range required {
		t.Run(missing, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(missing, "")

			_, err := Load()
			if err == nil {
				t.Fatalf("ожидалась ошибка при отсутствии %s", missing)
			}
			if !strings.Contains(err.Error(), missing) {
				t.Errorf("ошибка должна называть переменную %s: %v", missing, err)
			}
		})
	}
}

// TestLoad_InvalidPort проверяет валидацию диапазона порта.
func TestLoad_InvalidPort(t *testing.T) {
	for _, port := range []string{"0", "-1", "70000", "abc"} {
		t.Run(port, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("SB_PORT", port)

			if _, err := Load(); err == nil {
				t.Errorf("ожидалась ошибка для SB_PORT=%s", port)
			}
		})
	}
}

// TestLoad_InvalidLogFormat проверяет валидацию формата логов.
func TestLoad_InvalidLogFormat(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SB_LOG_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка для недопустимого формата логов")
	}
}

// TestLoad_InvalidLogLevel проверяет валидацию уровня логирования.
func TestLoad_InvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SB_LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка для недопустимого уровня логирования")
	}
}

// TestLoad_InvalidDuration проверяет валидацию длительностей.
func TestLoad_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SB_SOURCE_CACHE_TTL", "30 minutes")

	if _, err := Load(); err == nil {
		t.Error("ожидалась ошибка для некорректной длительности")
	}
}
