// Package article реализует бизнес-логику работы со статьями:
// жизненный цикл черновик-публикация-архив, слаги, кеширование
// публичного чтения и счётчики просмотров.
package article

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/newsroom-backend/internal/cache"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/slug"
	"github.com/magabrotheeeer/newsroom-backend/internal/metrics"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
	"github.com/magabrotheeeer/newsroom-backend/internal/rabbitmq"
)

// Время жизни записи статьи в кеше. Обновление и публикация
// сбрасывают запись раньше срока.
const cacheTTL = time.Hour

// Ошибки уровня бизнес-логики статей.
var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrAlreadyPublished = errors.New("article already published")
	ErrNotAuthor        = errors.New("user is not the author of the article")
)

// Repository описывает контракт хранилища статей.
type Repository interface {
	CreateArticle(ctx context.Context, article models.Article, tagIDs []int) (int, error)
	UpdateArticle(ctx context.Context, article models.Article, id int, tagIDs []int) (int, error)
	ReadArticle(ctx context.Context, id int) (*models.Article, error)
	ReadArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
	RemoveArticle(ctx context.Context, id int) (int, error)
	ListArticles(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	PublishArticle(ctx context.Context, id int, publishedAt time.Time) (int, error)
	AddArticleViews(ctx context.Context, id int, delta int64) error
	TopArticles(ctx context.Context, limit int) ([]*models.Article, error)
	EnsureTags(ctx context.Context, tags []models.Tag) ([]int, error)
}

// Publisher публикует уведомления о выходе статей.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service инкапсулирует бизнес-логику статей.
type Service struct {
	repo      Repository
	cache     *cache.Cache
	publisher Publisher
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, c *cache.Cache, publisher Publisher, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, publisher: publisher, log: log}
}

// Create сохраняет новую статью в статусе draft и возвращает её ID.
// Слаг выводится из заголовка, отсутствующие теги создаются на лету.
func (s *Service) Create(ctx context.Context, dummy models.DummyArticle, authorUID string) (int, error) {
	const op = "article.Create"

	tagIDs, err := s.ensureTags(ctx, dummy.Tags)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	art := models.Article{
		Title:      dummy.Title,
		Slug:       s.uniqueSlug(ctx, dummy.Title),
		Summary:    dummy.Summary,
		Body:       dummy.Body,
		Status:     models.ArticleDraft,
		AuthorUID:  authorUID,
		CategoryID: dummy.CategoryID,
	}
	id, err := s.repo.CreateArticle(ctx, art, tagIDs)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Update обновляет статью. Автор может править только свои статьи,
// редактор и администратор — любые.
func (s *Service) Update(ctx context.Context, id int, dummy models.DummyArticle, actorUID, actorRole string) error {
	const op = "article.Update"

	current, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if !canModify(current, actorUID, actorRole) {
		return ErrNotAuthor
	}

	tagIDs, err := s.ensureTags(ctx, dummy.Tags)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	art := models.Article{
		Title:      dummy.Title,
		Slug:       current.Slug,
		Summary:    dummy.Summary,
		Body:       dummy.Body,
		CategoryID: dummy.CategoryID,
	}
	count, err := s.repo.UpdateArticle(ctx, art, id, tagIDs)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrArticleNotFound
	}
	s.invalidate(ctx, current)
	return nil
}

// Read возвращает опубликованную статью по ID, читая через кеш.
// Черновики и архив для публичного чтения не существуют:
// на них возвращается ErrArticleNotFound.
func (s *Service) Read(ctx context.Context, id int) (*models.Article, error) {
	const op = "article.Read"

	key := cacheKeyID(id)
	var cached models.Article
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	} else if ok {
		s.countView(ctx, &cached)
		return &cached, nil
	}

	art, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if art.Status != models.ArticlePublished {
		return nil, ErrArticleNotFound
	}
	s.cachePublished(ctx, key, art)
	s.countView(ctx, art)
	return art, nil
}

// ReadBySlug возвращает опубликованную статью по слагу для публичного URL.
// Неопубликованные статьи скрыты так же, как в Read.
func (s *Service) ReadBySlug(ctx context.Context, articleSlug string) (*models.Article, error) {
	const op = "article.ReadBySlug"

	key := cacheKeySlug(articleSlug)
	var cached models.Article
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	} else if ok {
		s.countView(ctx, &cached)
		return &cached, nil
	}

	art, err := s.repo.ReadArticleBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if art.Status != models.ArticlePublished {
		return nil, ErrArticleNotFound
	}
	s.cachePublished(ctx, key, art)
	s.countView(ctx, art)
	return art, nil
}

// Remove удаляет статью. Автор может удалять только свои статьи.
func (s *Service) Remove(ctx context.Context, id int, actorUID, actorRole string) error {
	const op = "article.Remove"

	current, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if !canModify(current, actorUID, actorRole) {
		return ErrNotAuthor
	}
	count, err := s.repo.RemoveArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrArticleNotFound
	}
	s.invalidate(ctx, current)
	return nil
}

// List возвращает страницу статей по фильтру.
// Публичные выборки вызывающий код ограничивает статусом published.
func (s *Service) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	const op = "article.List"
	result, err := s.repo.ListArticles(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Publish переводит статью в published, сбрасывает кеш
// и ставит в очередь уведомление подписчикам.
func (s *Service) Publish(ctx context.Context, id int, actorUID, actorRole string) error {
	const op = "article.Publish"

	current, err := s.repo.ReadArticle(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if !canModify(current, actorUID, actorRole) {
		return ErrNotAuthor
	}

	count, err := s.repo.PublishArticle(ctx, id, time.Now())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrAlreadyPublished
	}
	s.invalidate(ctx, current)

	msg := models.EmailMessage{
		Subject: current.Title,
		Body:    current.Summary,
	}
	if err = s.publisher.Publish(rabbitmq.RoutingKeyPublished, msg); err != nil {
		// Статья уже опубликована, уведомление не критично.
		s.log.Error("failed to queue publish notification", sl.Err(err))
	}
	return nil
}

// Top возвращает самые читаемые опубликованные статьи,
// добавляя к сохранённым счётчикам накопленные в Redis просмотры.
func (s *Service) Top(ctx context.Context, limit int) ([]*models.Article, error) {
	const op = "article.Top"

	result, err := s.repo.TopArticles(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]int, len(result))
	for i, a := range result {
		ids[i] = a.ID
	}
	pending, err := s.cache.GetViews(ctx, ids)
	if err != nil {
		s.log.Warn("failed to read pending views", sl.Err(err))
		return result, nil
	}
	for _, a := range result {
		a.Views += pending[a.ID]
	}
	return result, nil
}

// FlushViews переносит накопленные в Redis счётчики просмотров
// в базу данных. Запускается фоновым тикером.
func (s *Service) FlushViews(ctx context.Context) error {
	const op = "article.FlushViews"

	pending, err := s.cache.PopAllViews(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for id, delta := range pending {
		if err = s.repo.AddArticleViews(ctx, id, delta); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if len(pending) > 0 {
		s.log.Debug("flushed article views", slog.Int("articles", len(pending)))
	}
	return nil
}

func (s *Service) ensureTags(ctx context.Context, names []string) ([]int, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, models.Tag{Name: name, Slug: slug.Make(name)})
	}
	return s.repo.EnsureTags(ctx, tags)
}

// uniqueSlug выводит слаг из заголовка; при коллизии добавляется
// числовой суффикс.
func (s *Service) uniqueSlug(ctx context.Context, title string) string {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		if _, err := s.repo.ReadArticleBySlug(ctx, candidate); errors.Is(err, sql.ErrNoRows) {
			return candidate
		} else if err != nil {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// countView учитывает просмотр опубликованной статьи в Redis и Prometheus.
func (s *Service) countView(ctx context.Context, art *models.Article) {
	if art.Status != models.ArticlePublished {
		return
	}
	if _, err := s.cache.IncrViews(ctx, art.ID); err != nil {
		s.log.Warn("failed to count view", sl.Err(err))
		return
	}
	metrics.ArticleViews.Inc()
}

func (s *Service) cachePublished(ctx context.Context, key string, art *models.Article) {
	if art.Status != models.ArticlePublished {
		return
	}
	if err := s.cache.Set(ctx, key, art, cacheTTL); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
}

func (s *Service) invalidate(ctx context.Context, art *models.Article) {
	if err := s.cache.Invalidate(ctx, cacheKeyID(art.ID)); err != nil {
		s.log.Warn("cache invalidate failed", sl.Err(err))
	}
	if err := s.cache.Invalidate(ctx, cacheKeySlug(art.Slug)); err != nil {
		s.log.Warn("cache invalidate failed", sl.Err(err))
	}
}

// canModify сообщает, может ли пользователь менять статью.
func canModify(art *models.Article, actorUID, actorRole string) bool {
	if actorRole == models.RoleAdmin || actorRole == models.RoleEditor {
		return true
	}
	return art.AuthorUID == actorUID
}

func cacheKeyID(id int) string {
	return fmt.Sprintf("article:id:%d", id)
}

func cacheKeySlug(s string) string {
	return "article:slug:" + s
}
