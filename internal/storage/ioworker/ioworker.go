// Пакет ioworker — выделенный пул воркеров для блокирующего дискового I/O.
//
// Запись blob-а и проверка существования файла выполняются только на
// воркерах этого пула, а не в горутине HTTP-запроса: медленный диск не
// должен занимать обработчики, обслуживающие несвязанные запросы.
package ioworker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped возвращается при отправке задачи в остановленный пул.
var ErrStopped = errors.New("пул I/O остановлен")

// job — одна единица блокирующей работы.
type job struct {
	fn   func() error
	done chan error
}

// Pool — пул из фиксированного числа воркеров, последовательно
// выполняющих блокирующие задачи из общей очереди.
type Pool struct {
	jobs   chan job
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	logger *slog.Logger
}

// New создаёт пул из workers воркеров и запускает их.
func New(workers int, logger *slog.Logger) *Pool {
	p := &Pool{
		// Небольшой буфер сглаживает всплески, не скрывая давление очереди
		jobs:   make(chan job, workers*2),
		stop:   make(chan struct{}),
		logger: logger.With(slog.String("component", "ioworker")),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.logger.Debug("Пул дискового I/O запущен", slog.Int("workers", workers))
	return p
}

// worker выполняет задачи до закрытия пула.
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case j := <-p.jobs:
			j.done <- j.fn()
		}
	}
}

// Do выполняет fn на воркере пула и ждёт завершения.
// При отмене ctx до начала выполнения возвращает ctx.Err();
// уже начатая задача доводится воркером до конца.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	j := job{fn: fn, done: make(chan error, 1)}

	select {
	case p.jobs <- j:
	case <-p.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stop:
		// Задача могла быть завершена воркером непосредственно перед
		// остановкой: забираем готовый результат, иначе — отказ.
		// Задача, оставшаяся в очереди, воркерами взята не будет.
		select {
		case err := <-j.done:
			return err
		default:
			return ErrStopped
		}
	}
}

// Stop останавливает пул. Задачи, не взятые воркерами, отбрасываются.
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.stop)
		p.wg.Wait()
		p.logger.Debug("Пул дискового I/O остановлен")
	})
}
