// Точка входа soundboard — сервиса загрузки и воспроизведения аудиоклипов.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/maconha/soundboard/internal/api/handlers"
	"github.com/maconha/soundboard/internal/api/middleware"
	"github.com/maconha/soundboard/internal/config"
	"github.com/maconha/soundboard/internal/server"
	"github.com/maconha/soundboard/internal/service"
	"github.com/maconha/soundboard/internal/storage/blobstore"
	"github.com/maconha/soundboard/internal/storage/catalog"
	"github.com/maconha/soundboard/internal/storage/ioworker"
	"github.com/maconha/soundboard/internal/telegram"
	"github.com/maconha/soundboard/internal/voice"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Soundboard запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("audio_dir", cfg.AudioDir),
		slog.String("guild_id", cfg.GuildID),
	)

	// --- Инициализация компонентов ---

	// 1. Каталог звуков (SQLite)
	cat, err := catalog.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("Ошибка открытия каталога", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cat.Close()

	// Gauge каталога из текущего состояния базы
	if count, cErr := cat.Count(context.Background()); cErr == nil {
		middleware.SoundsTotal.Set(float64(count))
	}

	// 2. Пул блокирующего дискового I/O
	ioPool := ioworker.New(cfg.IOWorkers, logger)
	defer ioPool.Stop()

	// 3. Хранилище blob-ов
	blobs, err := blobstore.New(cfg.AudioDir, ioPool, logger)
	if err != nil {
		logger.Error("Ошибка инициализации BlobStore", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Реестр голосовых сессий. Сессия устанавливается интеграцией
	// с голосовым движком при подключении бота к каналу guild.
	decoder := voice.NewFFmpegDecoder(cfg.FFmpegPath)
	sessions := voice.NewRegistry(decoder, cfg.SourceCacheTTL, logger)
	defer sessions.Close()

	// 5. Telegram-клиент
	tg := telegram.New(cfg.TelegramAPIURL, cfg.TelegramToken, cfg.TelegramChatID, logger)

	// 6. Сервисы
	uploadSvc := service.NewUploadService(cat, blobs, logger)
	playbackSvc := service.NewPlaybackService(cat, blobs, sessions, tg, cfg.GuildID, logger)

	// 7. Мониторинг зависимостей (Telegram API)
	ctx := context.Background()
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"soundboard",
		cfg.DephealthGroup,
		cfg.DephealthDepName,
		cfg.TelegramAPIURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
		} else {
			defer dephealthSvc.Stop()
		}
	}

	// 8. Handlers и HTTP-сервер
	soundsHandler := handlers.NewSoundsHandler(uploadSvc, playbackSvc, cat, logger)
	healthHandler := handlers.NewHealthHandler(cfg.AudioDir, cat)

	srv := server.New(cfg, logger, soundsHandler, healthHandler)

	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Soundboard остановлен")
}
