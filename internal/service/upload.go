// Пакет service — бизнес-логика soundboard.
// upload.go — конвейер пакетной загрузки аудиоклипов.
package service

import (
	"context"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/maconha/soundboard/internal/api/middleware"
	"github.com/maconha/soundboard/internal/domain/model"
	"github.com/maconha/soundboard/internal/storage/blobstore"
	"github.com/maconha/soundboard/internal/storage/catalog"
)

// tagsFieldKey — зарезервированное имя части multipart-формы с тегами.
const tagsFieldKey = "tags"

// Причины отказа по отдельным файлам (попадают в отчёт клиенту).
const (
	reasonMissingFilename  = "missing filename in content-disposition"
	reasonMissingExtension = "missing file extension"
)

// UploadService — конвейер загрузки: multipart-поток → blob-ы на диске
// + записи каталога, с пофайловым учётом исходов.
type UploadService struct {
	cat    *catalog.Catalog
	blobs  *blobstore.BlobStore
	logger *slog.Logger
}

// NewUploadService создаёт конвейер загрузки.
func NewUploadService(cat *catalog.Catalog, blobs *blobstore.BlobStore, logger *slog.Logger) *UploadService {
	return &UploadService{
		cat:    cat,
		blobs:  blobs,
		logger: logger.With(slog.String("component", "upload_service")),
	}
}

// UploadBatch обрабатывает части multipart-потока в порядке их следования.
// Отказ по одному файлу не прерывает обработку остальных; отчёт сохраняет
// порядок входного потока и возвращается безусловно.
//
// Часть с именем "tags" зарезервирована: при её встрече обработка
// оставшегося потока прекращается. TODO: сохранять теги в каталог и
// продолжать обработку последующих файловых частей.
func (s *UploadService) UploadBatch(ctx context.Context, mr *multipart.Reader) *model.BatchReport {
	report := model.NewBatchReport()

	for {
		part, err := mr.NextPart()
		if err != nil {
			// io.EOF — поток исчерпан; любая другая ошибка означает
			// оборванное соединение, продолжать нечего. Частично
			// записанные blob-ы остаются на месте.
			break
		}

		if part.FormName() == tagsFieldKey {
			part.Close()
			break
		}

		outcome := s.uploadPart(ctx, part)
		part.Close()

		if outcome.failure != nil {
			report.Failed = append(report.Failed, *outcome.failure)
			middleware.OperationsTotal.WithLabelValues("upload", "failure").Inc()
		} else {
			report.Successful = append(report.Successful, *outcome.success)
			middleware.OperationsTotal.WithLabelValues("upload", "success").Inc()
			middleware.SoundsTotal.Inc()
		}
	}

	s.logger.Info("Пакет загрузки обработан",
		slog.Int("successful", len(report.Successful)),
		slog.Int("failed", len(report.Failed)),
	)
	return report
}

// partOutcome — исход обработки одной части: ровно одно из полей не nil.
type partOutcome struct {
	success *model.UploadSuccess
	failure *model.UploadFailure
}

// failure — конструктор исхода-отказа.
func failure(filename, reason string) partOutcome {
	return partOutcome{failure: &model.UploadFailure{Filename: filename, Reason: reason}}
}

// uploadPart обрабатывает одну файловую часть: blob на диск, затем
// запись каталога. Запись вставляется только после полной успешной
// записи blob-а.
func (s *UploadService) uploadPart(ctx context.Context, part *multipart.Part) partOutcome {
	originalFilename := part.FileName()
	if originalFilename == "" {
		return failure("", reasonMissingFilename)
	}

	ext := strings.TrimPrefix(filepath.Ext(originalFilename), ".")
	if ext == "" {
		return failure(originalFilename, reasonMissingExtension)
	}

	// Два свежих идентификатора: имя файла на диске и id записи.
	// Генерацию считаем бесколлизионной.
	rec := &model.SoundRecord{
		ID:        uuid.New().String(),
		FileName:  uuid.New().String(),
		Extension: "." + ext,
		FileHash:  model.PlaceholderHash,
		Name:      strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename)),
	}

	path := s.blobs.PathFor(rec)
	size, err := s.blobs.Write(ctx, part, path)
	if err != nil {
		s.logger.Error("Ошибка записи blob-а",
			slog.String("filename", originalFilename),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return failure(originalFilename, err.Error())
	}

	if err := s.cat.Insert(ctx, rec); err != nil {
		// Blob уже на диске, записи каталога нет: файл остаётся
		// бесхозным до ручной уборки
		s.logger.Error("Ошибка вставки записи каталога",
			slog.String("sound_id", rec.ID),
			slog.String("filename", originalFilename),
			slog.String("error", err.Error()),
		)
		return failure(originalFilename, err.Error())
	}

	s.logger.Info("Звук загружен",
		slog.String("sound_id", rec.ID),
		slog.String("filename", originalFilename),
		slog.String("name", rec.Name),
		slog.Int64("size", size),
	)
	return partOutcome{success: &model.UploadSuccess{ID: rec.ID, Filename: originalFilename}}
}
