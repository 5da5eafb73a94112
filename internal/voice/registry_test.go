package voice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestRegistry() *Registry {
	return NewRegistry(&fakeDecoder{data: []byte("x")}, time.Minute, testLogger())
}

// TestGet_NoSession проверяет, что отсутствие сессии — это nil, не ошибка.
func TestGet_NoSession(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	if s := r.Get("guild-1"); s != nil {
		t.Errorf("ожидался nil, получена сессия %v", s)
	}
}

// TestEstablishAndGet проверяет регистрацию и последующий поиск сессии.
func TestEstablishAndGet(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	s, err := r.Establish("guild-1", &fakeTransport{})
	if err != nil {
		t.Fatalf("ошибка установления сессии: %v", err)
	}
	if s == nil {
		t.Fatal("Establish вернул nil сессию")
	}

	if got := r.Get("guild-1"); got != s {
		t.Error("Get вернул не ту сессию, что была установлена")
	}
	if got := r.Get("guild-2"); got != nil {
		t.Error("Get вернул сессию для чужого guild")
	}
}

// TestEstablish_Duplicate проверяет отказ при повторной регистрации guild.
func TestEstablish_Duplicate(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	if _, err := r.Establish("guild-1", &fakeTransport{}); err != nil {
		t.Fatalf("ошибка установления сессии: %v", err)
	}
	if _, err := r.Establish("guild-1", &fakeTransport{}); err == nil {
		t.Error("ожидалась ошибка при повторном установлении")
	}
}

// TestEstablish_InProgress проверяет быстрый отказ, когда шаг
// установления уже захвачен другой операцией.
func TestEstablish_InProgress(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	// Имитируем идущее установление: захватываем шаг напрямую
	r.establishMu.Lock()
	defer r.establishMu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := r.Establish("guild-1", &fakeTransport{})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrEstablishInProgress) {
			t.Errorf("ожидался ErrEstablishInProgress, получено: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Establish заблокировался вместо быстрого отказа")
	}

	if s := r.Get("guild-1"); s != nil {
		t.Error("сессия не должна была быть зарегистрирована")
	}
}

// TestEstablish_Concurrent проверяет шторм одновременных установлений:
// ровно один успех, остальные — быстрые отказы, никто не зависает.
func TestEstablish_Concurrent(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	const n = 16
	results := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Establish("guild-1", &fakeTransport{})
			results <- err
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("конкурентные Establish не завершились")
	}
	close(results)

	var succeeded int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrEstablishInProgress):
		case strings.Contains(err.Error(), "уже установлена"):
		default:
			t.Errorf("неожиданная ошибка: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("ожидался ровно 1 успех, получено %d", succeeded)
	}
	if s := r.Get("guild-1"); s == nil {
		t.Error("успешно установленная сессия должна быть в реестре")
	}
}

// TestRelease проверяет освобождение сессии и отказ её команд.
func TestRelease(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	s, err := r.Establish("guild-1", &fakeTransport{})
	if err != nil {
		t.Fatalf("ошибка установления сессии: %v", err)
	}

	r.Release("guild-1")

	if got := r.Get("guild-1"); got != nil {
		t.Error("сессия должна быть удалена из реестра")
	}
	if err := s.Play(context.Background(), "sound-1", "/tmp/s.mp3"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("ожидался ErrSessionClosed, получено: %v", err)
	}

	// Повторный Release по отсутствующему guild безвреден
	r.Release("guild-1")
}

// TestGet_ConcurrentNoSession проверяет, что конкурентные чтения при
// отсутствии сессии не блокируются и не возвращают ложный busy.
func TestGet_ConcurrentNoSession(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s := r.Get("guild-1"); s != nil {
				t.Error("ожидался nil при отсутствии сессии")
			}
		}()
	}
	wg.Wait()
}

// TestClose проверяет остановку всех сессий.
func TestClose(t *testing.T) {
	r := newTestRegistry()

	s1, _ := r.Establish("guild-1", &fakeTransport{})
	s2, _ := r.Establish("guild-2", &fakeTransport{})

	r.Close()

	for _, s := range []*Session{s1, s2} {
		if err := s.Play(context.Background(), "sound-1", "/tmp/s.mp3"); !errors.Is(err, ErrSessionClosed) {
			t.Errorf("ожидался ErrSessionClosed после Close, получено: %v", err)
		}
	}
}
