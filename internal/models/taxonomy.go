package models

import "time"

// Category представляет рубрику новостей.
type Category struct {
	ID          int       // Идентификатор рубрики
	Name        string    // Название (уникальное)
	Slug        string    // Слаг для публичного URL
	Description string    // Описание рубрики
	CreatedAt   time.Time // Время создания
}

// Tag представляет тег статьи.
type Tag struct {
	ID        int       // Идентификатор тега
	Name      string    // Название (уникальное)
	Slug      string    // Слаг
	CreatedAt time.Time // Время создания
}

// DummyCategory используется для приёма данных рубрики из JSON-запроса.
type DummyCategory struct {
	Name        string `json:"name" validate:"required,min=2,max=100"` // Название рубрики
	Description string `json:"description" validate:"max=500"`         // Описание
}

// DummyTag используется для приёма данных тега из JSON-запроса.
type DummyTag struct {
	Name string `json:"name" validate:"required,min=1,max=50"` // Название тега
}
