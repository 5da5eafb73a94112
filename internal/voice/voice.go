// Пакет voice — голосовые сессии и воспроизведение звуков в них.
//
// Модель владения: на один guild — не более одной установленной сессии.
// Команды воспроизведения сериализуются очередью самой сессии
// (выделенная горутина на сессию); диспетчер не держит эксклюзивный
// доступ к реестру на время медленного декодирования.
package voice

import "errors"

// Bitrate — фиксированный битрейт сжатого представления, бит/с.
const Bitrate = 128_000

// DefaultVolume — громкость, с которой начинается воспроизведение.
const DefaultVolume = 1.0

var (
	// ErrDecode — внешний декодер не смог обработать файл.
	// Нарушение предусловия окружения, фатально для вызова.
	ErrDecode = errors.New("ошибка декодирования аудио")
	// ErrSessionBusy — очередь команд сессии переполнена,
	// быстрый отказ вместо неограниченного ожидания.
	ErrSessionBusy = errors.New("голосовая сессия занята")
	// ErrSessionClosed — сессия уже остановлена.
	ErrSessionClosed = errors.New("голосовая сессия закрыта")
	// ErrEstablishInProgress — установление сессии для guild уже
	// выполняется другой операцией (неблокирующий захват не удался).
	ErrEstablishInProgress = errors.New("установление голосовой сессии уже выполняется")
)

// Source — сжатое кэшируемое представление аудиофайла в памяти,
// готовое к передаче в транспорт сессии.
type Source struct {
	// SoundID — идентификатор звука, по которому источник кэшируется
	SoundID string
	// Data — сжатые аудиоданные с битрейтом Bitrate
	Data []byte
}

// Transport — способность активной сессии принимать аудио.
// Реализуется голосовым движком (внешний коллаборатор).
// Play ставит источник в очередь воспроизведения и возвращается,
// не дожидаясь окончания проигрывания.
type Transport interface {
	Play(src *Source, volume float64) error
}
