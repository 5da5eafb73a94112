// Пакет config — загрузка и валидация конфигурации soundboard
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации soundboard.
// Значение неизменяемо после Load и передаётся по ссылке во все
// компоненты; глобального состояния нет.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Путь к директории хранения аудиофайлов
	AudioDir string
	// Путь к файлу базы SQLite (":memory:" для тестов)
	DBPath string
	// Идентификатор guild, к голосовой сессии которого привязано воспроизведение
	GuildID string
	// Токен Telegram-бота
	TelegramToken string
	// Идентификатор чата, в который отправляются аудиосообщения
	TelegramChatID string
	// Базовый URL Telegram Bot API (переопределяется в тестах)
	TelegramAPIURL string
	// Количество воркеров пула блокирующего дискового I/O
	IOWorkers int
	// TTL кэша декодированных аудиоисточников
	SourceCacheTTL time.Duration
	// Путь к бинарю ffmpeg
	FFmpegPath string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics
	DephealthGroup string
	// Имя зависимости (Telegram API) в метриках topologymetrics
	DephealthDepName string
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}

	// SB_PORT — порт HTTP-сервера (по умолчанию 8080)
	port, err := getEnvInt("SB_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("SB_PORT: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SB_PORT: значение %d вне допустимого диапазона 1-65535", port)
	}
	cfg.Port = port

	// SB_AUDIO_DIR — обязательный
	cfg.AudioDir, err = getEnvRequired("SB_AUDIO_DIR")
	if err != nil {
		return nil, err
	}

	// SB_DB_PATH — обязательный
	cfg.DBPath, err = getEnvRequired("SB_DB_PATH")
	if err != nil {
		return nil, err
	}

	// SB_GUILD_ID — обязательный
	cfg.GuildID, err = getEnvRequired("SB_GUILD_ID")
	if err != nil {
		return nil, err
	}

	// SB_TELEGRAM_TOKEN — обязательный
	cfg.TelegramToken, err = getEnvRequired("SB_TELEGRAM_TOKEN")
	if err != nil {
		return nil, err
	}

	// SB_TELEGRAM_CHAT_ID — обязательный
	cfg.TelegramChatID, err = getEnvRequired("SB_TELEGRAM_CHAT_ID")
	if err != nil {
		return nil, err
	}

	// SB_TELEGRAM_API_URL — базовый URL Bot API (по умолчанию официальный)
	cfg.TelegramAPIURL = getEnvDefault("SB_TELEGRAM_API_URL", "https://api.telegram.org")

	// SB_IO_WORKERS — размер пула дискового I/O (по умолчанию 4)
	cfg.IOWorkers, err = getEnvInt("SB_IO_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("SB_IO_WORKERS: %w", err)
	}
	if cfg.IOWorkers <= 0 {
		return nil, fmt.Errorf("SB_IO_WORKERS: значение должно быть положительным")
	}

	// SB_SOURCE_CACHE_TTL — TTL кэша декодированных источников (по умолчанию 30m)
	cfg.SourceCacheTTL, err = getEnvDuration("SB_SOURCE_CACHE_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SB_SOURCE_CACHE_TTL: %w", err)
	}

	// SB_FFMPEG_PATH — путь к ffmpeg (по умолчанию ищется в PATH)
	cfg.FFmpegPath = getEnvDefault("SB_FFMPEG_PATH", "ffmpeg")

	// SB_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SB_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SB_LOG_LEVEL: %w", err)
	}

	// SB_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("SB_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SB_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// SB_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("SB_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SB_SHUTDOWN_TIMEOUT: %w", err)
	}

	// SB_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("SB_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SB_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// SB_DEPHEALTH_GROUP — имя группы в метриках topologymetrics (по умолчанию "soundboard")
	cfg.DephealthGroup = getEnvDefault("SB_DEPHEALTH_GROUP", "soundboard")

	// SB_DEPHEALTH_DEP_NAME — имя зависимости в метриках (по умолчанию "telegram-api")
	cfg.DephealthDepName = getEnvDefault("SB_DEPHEALTH_DEP_NAME", "telegram-api")

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 5m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
