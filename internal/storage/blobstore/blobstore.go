// Пакет blobstore — хранение аудио-blob-ов на диске.
// Один blob на запись каталога; имя файла генерируется при загрузке и
// не зависит от имени, присланного пользователем. Все блокирующие
// операции с диском выполняются на пуле ioworker.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maconha/soundboard/internal/domain/model"
	"github.com/maconha/soundboard/internal/storage/ioworker"
)

// BlobStore — файловая область аудио-blob-ов под audioDir.
type BlobStore struct {
	audioDir string
	pool     *ioworker.Pool
	logger   *slog.Logger
}

// New создаёт BlobStore и директорию данных, если её нет.
func New(audioDir string, pool *ioworker.Pool, logger *slog.Logger) (*BlobStore, error) {
	if err := os.MkdirAll(audioDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию аудио %s: %w", audioDir, err)
	}

	return &BlobStore{
		audioDir: audioDir,
		pool:     pool,
		logger:   logger.With(slog.String("component", "blobstore")),
	}, nil
}

// AudioDir возвращает корневую директорию blob-ов.
func (b *BlobStore) AudioDir() string {
	return b.audioDir
}

// PathFor детерминированно вычисляет путь blob-а записи:
// audioDir / file_name + extension. Чистая функция, диска не касается.
func (b *BlobStore) PathFor(rec *model.SoundRecord) string {
	return filepath.Join(b.audioDir, rec.FileName+rec.Extension)
}

// Write создаёт файл path эксклюзивно и последовательно переносит в него
// байты из reader, сохраняя порядок входного потока. Выполняется целиком
// на воркере пула I/O. Частично записанный файл при ошибке остаётся на
// месте — записи каталога для него ещё нет, уборка отложена.
// TODO: фоновая уборка blob-ов без записи каталога.
func (b *BlobStore) Write(ctx context.Context, reader io.Reader, path string) (int64, error) {
	var written int64

	err := b.pool.Do(ctx, func() error {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if err != nil {
			return fmt.Errorf("ошибка создания файла %s: %w", path, err)
		}

		n, err := io.Copy(f, reader)
		written = n
		if err != nil {
			f.Close()
			return fmt.Errorf("ошибка записи в файл %s: %w", path, err)
		}

		if err := f.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия файла %s: %w", path, err)
		}
		return nil
	})
	// При отмене ctx воркер может всё ещё выполнять задачу и писать
	// в written; захваченный результат читаем только после
	// подтверждённого завершения задачи (err == nil).
	if err != nil {
		return 0, err
	}

	b.logger.Debug("Blob записан",
		slog.String("path", path),
		slog.Int64("size", written),
	)
	return written, nil
}

// Exists проверяет существование файла. Stat — блокирующая операция,
// поэтому тоже уходит на пул I/O.
func (b *BlobStore) Exists(ctx context.Context, path string) (bool, error) {
	var exists bool

	err := b.pool.Do(ctx, func() error {
		_, statErr := os.Stat(path)
		if statErr == nil {
			exists = true
			return nil
		}
		if os.IsNotExist(statErr) {
			return nil
		}
		return fmt.Errorf("ошибка stat %s: %w", path, statErr)
	})
	// Как и в Write: exists читаем только после завершения задачи
	if err != nil {
		return false, err
	}

	return exists, nil
}
