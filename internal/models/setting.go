package models

import "time"

// Setting представляет настройку сайта в виде пары ключ-значение.
type Setting struct {
	Key       string    // Ключ настройки (уникальный)
	Value     string    // Значение
	UpdatedAt time.Time // Время последнего изменения
}

// DummySettings используется для приёма набора настроек из JSON-запроса.
type DummySettings struct {
	Settings map[string]string `json:"settings" validate:"required,min=1"` // Пары ключ-значение
}
