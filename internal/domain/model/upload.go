// upload.go — транзиентные типы отчёта о пакетной загрузке.
// Не персистентные: живут только в рамках одного запроса.
package model

// UploadSuccess — успешный исход загрузки одного файла.
type UploadSuccess struct {
	// ID — идентификатор созданной записи каталога
	ID string `json:"id"`
	// Filename — оригинальное имя файла из запроса
	Filename string `json:"filename"`
}

// UploadFailure — неуспешный исход загрузки одного файла.
type UploadFailure struct {
	// Filename — оригинальное имя файла из запроса
	Filename string `json:"filename"`
	// Reason — человекочитаемая причина отказа
	Reason string `json:"reason"`
}

// BatchReport — агрегированный результат одного upload-запроса.
// Порядок элементов повторяет порядок частей входного потока.
type BatchReport struct {
	Successful []UploadSuccess `json:"successful"`
	Failed     []UploadFailure `json:"failed"`
	// Tags — зарезервировано, всегда пустой список
	Tags []string `json:"tags"`
}

// NewBatchReport создаёт пустой отчёт с инициализированными срезами,
// чтобы в JSON всегда сериализовались [] вместо null.
func NewBatchReport() *BatchReport {
	return &BatchReport{
		Successful: []UploadSuccess{},
		Failed:     []UploadFailure{},
		Tags:       []string{},
	}
}
