// registry.go — реестр голосовых сессий: один владелец на guild.
package voice

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry — единственный владелец ссылок на установленные сессии.
// Чтение (Get) конкурентно и никогда не блокируется надолго;
// установление сессии защищено неблокирующим захватом establishMu.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// establishMu сериализует шаг «установить сессию»; захват
	// неблокирующий — параллельная попытка получает быстрый отказ,
	// а не бесконечное ожидание
	establishMu sync.Mutex

	decoder  Decoder
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewRegistry создаёт пустой реестр сессий.
func NewRegistry(decoder Decoder, cacheTTL time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		decoder:  decoder,
		cacheTTL: cacheTTL,
		logger:   logger.With(slog.String("component", "voice_registry")),
	}
}

// Get возвращает установленную сессию guild или nil, если бот не
// подключён к голосовому каналу этого guild.
func (r *Registry) Get(guildID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[guildID]
}

// Establish регистрирует сессию для guild поверх транспорта transport.
// Захват шага установления неблокирующий: если другая операция уже
// устанавливает сессию, возвращается ErrEstablishInProgress.
// Повторное установление для того же guild — ошибка: сначала Release.
func (r *Registry) Establish(guildID string, transport Transport) (*Session, error) {
	if !r.establishMu.TryLock() {
		return nil, ErrEstablishInProgress
	}
	defer r.establishMu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[guildID]; ok {
		return nil, fmt.Errorf("сессия для guild %s уже установлена", guildID)
	}

	s := NewSession(guildID, transport, r.decoder, r.cacheTTL, r.logger)
	r.sessions[guildID] = s

	r.logger.Info("Голосовая сессия установлена", slog.String("guild_id", guildID))
	return s, nil
}

// Release останавливает и удаляет сессию guild, если она есть.
func (r *Registry) Release(guildID string) {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	if ok {
		delete(r.sessions, guildID)
	}
	r.mu.Unlock()

	if ok {
		s.Close()
		r.logger.Info("Голосовая сессия освобождена", slog.String("guild_id", guildID))
	}
}

// Close останавливает все сессии. Вызывается при завершении процесса.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for guildID, s := range r.sessions {
		s.Close()
		delete(r.sessions, guildID)
	}
}
