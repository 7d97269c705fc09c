package models

import "time"

// Media представляет метаданные загруженного файла.
// Само содержимое файла хранится вне системы, здесь только учёт.
type Media struct {
	ID          int       // Идентификатор записи
	FileName    string    // Исходное имя файла
	MimeType    string    // MIME-тип
	SizeBytes   int64     // Размер файла в байтах
	URL         string    // Публичный URL файла
	UploaderUID string    // UID загрузившего пользователя
	CreatedAt   time.Time // Время загрузки
}

// DummyMedia используется для приёма метаданных файла из JSON-запроса.
type DummyMedia struct {
	FileName  string `json:"file_name" validate:"required,min=1,max=255"` // Имя файла
	MimeType  string `json:"mime_type" validate:"required"`               // MIME-тип
	SizeBytes int64  `json:"size_bytes" validate:"required,gt=0"`         // Размер в байтах
	URL       string `json:"url" validate:"required,url"`                 // Публичный URL
}
