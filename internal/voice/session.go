// session.go — актор голосовой сессии: сериализованная очередь команд
// воспроизведения с кэшем декодированных источников.
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// queueSize — ёмкость очереди команд сессии. Переполнение означает,
// что сессия не успевает принимать команды — отказываем быстро.
const queueSize = 16

// playCmd — команда «декодируй и поставь в воспроизведение».
type playCmd struct {
	soundID string
	path    string
	// ready получает результат принятия команды: nil — источник
	// декодирован и поставлен в очередь воспроизведения транспорта
	ready chan error
}

// Session — установленная голосовая сессия одного guild.
// Все команды выполняются одной выделенной горутиной, порядок
// обработки совпадает с порядком принятия.
type Session struct {
	guildID   string
	transport Transport
	decoder   Decoder
	// sources — кэш декодированных источников по идентификатору звука;
	// повторное воспроизведение не декодирует файл заново
	sources *gocache.Cache
	cmds    chan playCmd
	stop    chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

// NewSession создаёт сессию и запускает её командный цикл.
// cacheTTL — время жизни декодированного источника в кэше.
func NewSession(guildID string, transport Transport, decoder Decoder, cacheTTL time.Duration, logger *slog.Logger) *Session {
	s := &Session{
		guildID:   guildID,
		transport: transport,
		decoder:   decoder,
		sources:   gocache.New(cacheTTL, cacheTTL),
		cmds:      make(chan playCmd, queueSize),
		stop:      make(chan struct{}),
		logger: logger.With(
			slog.String("component", "voice_session"),
			slog.String("guild_id", guildID),
		),
	}

	go s.run()
	return s
}

// GuildID возвращает идентификатор guild сессии.
func (s *Session) GuildID() string {
	return s.guildID
}

// Play передаёт декодирование и воспроизведение файла командному циклу
// сессии и ждёт подтверждения принятия: команда поставлена в очередь
// воспроизведения, но само проигрывание ещё не завершено.
//
// Отказ быстрый: при переполненной очереди возвращается ErrSessionBusy,
// вызывающий никогда не блокируется неограниченно.
func (s *Session) Play(ctx context.Context, soundID, path string) error {
	cmd := playCmd{
		soundID: soundID,
		path:    path,
		ready:   make(chan error, 1),
	}

	select {
	case s.cmds <- cmd:
	case <-s.stop:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrSessionBusy
	}

	select {
	case err := <-cmd.ready:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stop:
		// Команда, попавшая в очередь одновременно с Close, могла
		// разминуться с drain: ответа по ready уже не будет. Готовый
		// результат, отправленный до остановки, не теряем.
		select {
		case err := <-cmd.ready:
			return err
		default:
			return ErrSessionClosed
		}
	}
}

// Close останавливает командный цикл. Команды, оставшиеся в очереди,
// получают ErrSessionClosed.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.stop)
	})
}

// run — командный цикл сессии.
func (s *Session) run() {
	for {
		select {
		case <-s.stop:
			s.drain()
			return
		case cmd := <-s.cmds:
			cmd.ready <- s.handlePlay(cmd)
		}
	}
}

// drain отвечает отказом на команды, застрявшие в очереди при остановке.
func (s *Session) drain() {
	for {
		select {
		case cmd := <-s.cmds:
			cmd.ready <- ErrSessionClosed
		default:
			return
		}
	}
}

// handlePlay декодирует файл (или берёт источник из кэша) и ставит его
// в воспроизведение с громкостью по умолчанию.
func (s *Session) handlePlay(cmd playCmd) error {
	src, err := s.source(cmd.soundID, cmd.path)
	if err != nil {
		s.logger.Error("Ошибка декодирования звука",
			slog.String("sound_id", cmd.soundID),
			slog.String("path", cmd.path),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := s.transport.Play(src, DefaultVolume); err != nil {
		s.logger.Error("Транспорт отклонил воспроизведение",
			slog.String("sound_id", cmd.soundID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("ошибка постановки в воспроизведение: %w", err)
	}

	s.logger.Info("Звук поставлен в воспроизведение",
		slog.String("sound_id", cmd.soundID),
		slog.Int("size", len(src.Data)),
	)
	return nil
}

// source возвращает сжатый источник из кэша или декодирует файл.
func (s *Session) source(soundID, path string) (*Source, error) {
	if cached, ok := s.sources.Get(soundID); ok {
		return cached.(*Source), nil
	}

	// Декодирование идёт в горутине сессии: диспетчер в это время
	// не держит никаких блокировок реестра.
	data, err := s.decoder.Decode(context.Background(), path)
	if err != nil {
		return nil, err
	}

	src := &Source{SoundID: soundID, Data: data}
	s.sources.SetDefault(soundID, src)
	return src, nil
}
