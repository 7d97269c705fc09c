// Package models содержит доменные структуры статей,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Статусы статьи.
const (
	ArticleDraft     = "draft"
	ArticlePublished = "published"
	ArticleArchived  = "archived"
)

// Article представляет собой основную модель новостной статьи,
// используемую в бизнес-логике и хранилище.
// PublishedAt равен nil, пока статья не опубликована.
type Article struct {
	ID          int        // Идентификатор статьи
	Title       string     // Заголовок
	Slug        string     // Уникальный слаг для публичного URL
	Summary     string     // Краткое описание
	Body        string     // Полный текст статьи
	Status      string     // draft, published или archived
	AuthorUID   string     // UID автора
	CategoryID  int        // Идентификатор рубрики
	Tags        []string   // Имена тегов статьи
	Views       int64      // Счётчик просмотров
	PublishedAt *time.Time // Время публикации
	CreatedAt   time.Time  // Время создания
	UpdatedAt   time.Time  // Время последнего изменения
}

// DummyArticle используется для приёма данных статьи из JSON-запроса,
// прежде чем конвертировать их в Article.
type DummyArticle struct {
	Title      string   `json:"title" validate:"required,min=3,max=200"`   // Заголовок
	Summary    string   `json:"summary" validate:"max=500"`                // Краткое описание
	Body       string   `json:"body" validate:"required"`                  // Текст статьи
	CategoryID int      `json:"category_id" validate:"required,gt=0"`      // Рубрика
	Tags       []string `json:"tags" validate:"omitempty,dive,min=1"`      // Теги
}
