// Package models содержит параметры фильтрации, используемые при выборке
// статей. Здесь определены как структуры для внутреннего использования в
// бизнес-логике, так и для приёма данных из запросов.
package models

// ArticleFilter представляет параметры фильтрации, которые передаются
// в слой доступа к данным при выборке списка статей.
type ArticleFilter struct {
	Status     string  // Статус статьи ("" — без фильтра по статусу)
	CategoryID *int    // Идентификатор рубрики (nil — без фильтра)
	Tag        *string // Слаг тега (nil — без фильтра)
	AuthorUID  *string // UID автора (nil — без фильтра)
	Limit      int     // Размер страницы
	Offset     int     // Смещение
}
