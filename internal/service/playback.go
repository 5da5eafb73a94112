// playback.go — диспетчер воспроизведения: разрешение звука и
// маршрутизация в один из двух механизмов доставки.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maconha/soundboard/internal/api/middleware"
	"github.com/maconha/soundboard/internal/domain/model"
	"github.com/maconha/soundboard/internal/storage/blobstore"
	"github.com/maconha/soundboard/internal/storage/catalog"
	"github.com/maconha/soundboard/internal/voice"
)

var (
	// ErrSoundNotFound — идентификатор звука отсутствует в каталоге.
	// Ожидаемая, восстановимая ошибка.
	ErrSoundNotFound = errors.New("звук не найден в каталоге")
	// ErrAudioFileMissing — каталог знает звук, но blob-а на диске нет.
	// Рассинхронизация каталога и диска, серверная ошибка.
	ErrAudioFileMissing = errors.New("аудиофайл отсутствует на диске")
	// ErrNoActiveSession — для guild не установлена голосовая сессия.
	// Пользователь должен сначала позвать бота в голосовой канал.
	ErrNoActiveSession = errors.New("нет активной голосовой сессии")
)

// AudioSender — способность отправить именованный аудиофайл в заранее
// известный чат (внешний коллаборатор — Telegram-бот).
type AudioSender interface {
	SendAudio(ctx context.Context, path, displayName string) error
}

// PlaybackService — диспетчер воспроизведения.
// Путь запроса: каталог → blob → один из двух механизмов доставки.
// Строгость ошибок у механизмов разная и это намеренно: отказ голосовой
// доставки поднимается вызывающему, отказ отправки в чат — нет.
type PlaybackService struct {
	cat      *catalog.Catalog
	blobs    *blobstore.BlobStore
	sessions *voice.Registry
	sender   AudioSender
	// guildID — guild, к сессии которого привязано воспроизведение
	guildID string
	logger  *slog.Logger
}

// NewPlaybackService создаёт диспетчер воспроизведения.
func NewPlaybackService(
	cat *catalog.Catalog,
	blobs *blobstore.BlobStore,
	sessions *voice.Registry,
	sender AudioSender,
	guildID string,
	logger *slog.Logger,
) *PlaybackService {
	return &PlaybackService{
		cat:      cat,
		blobs:    blobs,
		sessions: sessions,
		sender:   sender,
		guildID:  guildID,
		logger:   logger.With(slog.String("component", "playback_service")),
	}
}

// Dispatch разрешает soundID в файл и направляет воспроизведение в client.
//
// Возврат nil подтверждает только диспетчеризацию: команда принята
// голосовой сессией (поставлена в очередь) либо отправка в чат была
// предпринята. Завершение слышимого воспроизведения не гарантируется.
func (p *PlaybackService) Dispatch(ctx context.Context, soundID string, client model.Client) error {
	rec, err := p.cat.FetchByID(ctx, soundID)
	if err != nil {
		middleware.OperationsTotal.WithLabelValues("play", "failure").Inc()
		return fmt.Errorf("ошибка чтения каталога: %w", err)
	}
	if rec == nil {
		middleware.OperationsTotal.WithLabelValues("play", "failure").Inc()
		return ErrSoundNotFound
	}

	path := p.blobs.PathFor(rec)
	exists, err := p.blobs.Exists(ctx, path)
	if err != nil {
		middleware.OperationsTotal.WithLabelValues("play", "failure").Inc()
		return fmt.Errorf("ошибка проверки blob-а: %w", err)
	}
	if !exists {
		middleware.OperationsTotal.WithLabelValues("play", "failure").Inc()
		return ErrAudioFileMissing
	}

	switch client {
	case model.ClientDiscord:
		if err := p.dispatchVoice(ctx, rec, path); err != nil {
			middleware.OperationsTotal.WithLabelValues("play", "failure").Inc()
			return err
		}
	case model.ClientTelegram:
		p.dispatchTelegram(ctx, rec, path)
	default:
		middleware.OperationsTotal.WithLabelValues("play", "failure").Inc()
		return fmt.Errorf("неизвестный механизм доставки: %q", client)
	}

	middleware.OperationsTotal.WithLabelValues("play", "success").Inc()
	p.logger.Info("Воспроизведение диспетчеризовано",
		slog.String("sound_id", soundID),
		slog.String("client", string(client)),
	)
	return nil
}

// dispatchVoice передаёт декодирование и воспроизведение командной
// очереди установленной сессии и ждёт подтверждения принятия.
// Ошибки (включая ошибку декодирования) поднимаются вызывающему.
func (p *PlaybackService) dispatchVoice(ctx context.Context, rec *model.SoundRecord, path string) error {
	sess := p.sessions.Get(p.guildID)
	if sess == nil {
		return ErrNoActiveSession
	}
	return sess.Play(ctx, rec.ID, path)
}

// dispatchTelegram отправляет blob как аудиовложение с отображаемым
// именем записи. Отказ отправки намеренно проглатывается: запрос
// воспроизведения от этого не падает.
func (p *PlaybackService) dispatchTelegram(ctx context.Context, rec *model.SoundRecord, path string) {
	if err := p.sender.SendAudio(ctx, path, rec.Name); err != nil {
		p.logger.Warn("Отправка аудио в чат не удалась",
			slog.String("sound_id", rec.ID),
			slog.String("error", err.Error()),
		)
	}
}
