// Пакет model — доменные модели soundboard.
package model

// PlaceholderHash — заглушка вместо контент-хэша файла.
// Дедупликация по содержимому не реализована: два одинаковых файла
// получат две записи каталога. TODO: посчитать SHA-256 при загрузке
// и добавить уникальный индекс на file_hash.
const PlaceholderHash = "hash"

// SoundRecord — запись каталога: один загруженный аудиоклип.
// Создаётся один раз при загрузке, никогда не обновляется и не удаляется.
type SoundRecord struct {
	// ID — уникальный идентификатор записи (UUID), первичный ключ
	ID string `json:"id"`
	// FileName — внутреннее имя файла на диске (UUID, без расширения).
	// Не совпадает с именем файла, присланным пользователем.
	FileName string `json:"fileName"`
	// Extension — нормализованное расширение с ведущей точкой (".mp3")
	Extension string `json:"extension"`
	// FileHash — контент-хэш; сейчас всегда PlaceholderHash
	FileHash string `json:"fileHash"`
	// Name — отображаемое имя, основа оригинального имени файла.
	// Уникальность не гарантируется.
	Name string `json:"name"`
}

// Client — целевой механизм доставки звука.
type Client string

const (
	// ClientDiscord — проигрывание в активной голосовой сессии
	ClientDiscord Client = "discord"
	// ClientTelegram — отправка аудиофайла в чат бота
	ClientTelegram Client = "telegram"
)

// Valid возвращает true для известного механизма доставки.
func (c Client) Valid() bool {
	return c == ClientDiscord || c == ClientTelegram
}
