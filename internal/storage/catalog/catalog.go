// Пакет catalog — долговечный каталог звуков в SQLite.
// Отображение: идентификатор звука → метаданные файла (SoundRecord).
// Записи создаются один раз при загрузке; update/delete отсутствуют,
// поэтому межзапросные блокировки не нужны — конкурентные чтения и
// вставки по разным звукам независимы.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/maconha/soundboard/internal/domain/model"
)

// schema — встроенная схема каталога, применяется при открытии.
// file_name уникален: одна запись — один blob на диске.
const schema = `
CREATE TABLE IF NOT EXISTS sounds (
    id        TEXT PRIMARY KEY,
    file_name TEXT NOT NULL UNIQUE,
    extension TEXT NOT NULL,
    file_hash TEXT NOT NULL,
    name      TEXT NOT NULL
);
`

// Catalog — каталог звуков поверх пула соединений database/sql.
// Соединение берётся из пула на время одной операции и возвращается
// обратно; внешней синхронизации не требуется.
type Catalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open открывает базу по пути dbPath (":memory:" для тестов),
// настраивает пул соединений и применяет схему.
func Open(dbPath string, logger *slog.Logger) (*Catalog, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы %s: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("база %s недоступна: %w", dbPath, err)
	}

	// SQLite сериализует записи сам; ограничиваем пул, чтобы не плодить
	// соединений с общим файлом базы. Для ":memory:" пул обязан быть
	// из одного соединения: каждое новое соединение — отдельная пустая база.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка применения схемы: %w", err)
	}

	return &Catalog{
		db:     db,
		logger: logger.With(slog.String("component", "catalog")),
	}, nil
}

// Close закрывает пул соединений.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Ping проверяет доступность базы. Используется в health checks.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Insert вставляет новую запись каталога. Вставка атомарна:
// при нарушении ограничения (дубликат id или file_name) запись
// не применяется частично, возвращается ошибка.
func (c *Catalog) Insert(ctx context.Context, rec *model.SoundRecord) error {
	const query = `
		INSERT INTO sounds (id, file_name, extension, file_hash, name)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(ctx, query,
		rec.ID,
		rec.FileName,
		rec.Extension,
		rec.FileHash,
		rec.Name,
	)
	if err != nil {
		return fmt.Errorf("ошибка вставки звука %s: %w", rec.ID, err)
	}

	c.logger.Debug("Запись каталога создана",
		slog.String("sound_id", rec.ID),
		slog.String("file_name", rec.FileName),
	)
	return nil
}

// FetchByID возвращает запись по идентификатору или (nil, nil),
// если записи нет. Отсутствие — не ошибка на этом слое, решает вызывающий.
func (c *Catalog) FetchByID(ctx context.Context, id string) (*model.SoundRecord, error) {
	const query = `
		SELECT id, file_name, extension, file_hash, name
		FROM sounds
		WHERE id = ?
	`

	rec := &model.SoundRecord{}
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.FileName,
		&rec.Extension,
		&rec.FileHash,
		&rec.Name,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения звука %s: %w", id, err)
	}

	return rec, nil
}

// ListAll возвращает все записи каталога в порядке вставки (rowid).
func (c *Catalog) ListAll(ctx context.Context) ([]model.SoundRecord, error) {
	const query = `
		SELECT id, file_name, extension, file_hash, name
		FROM sounds
		ORDER BY rowid
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки звуков: %w", err)
	}
	defer rows.Close()

	records := []model.SoundRecord{}
	for rows.Next() {
		var rec model.SoundRecord
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.Extension, &rec.FileHash, &rec.Name); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по строкам: %w", err)
	}

	return records, nil
}

// Count возвращает количество записей каталога. Используется в метриках.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sounds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта звуков: %w", err)
	}
	return n, nil
}
