package article

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/newsroom-backend/internal/cache"
	"github.com/magabrotheeeer/newsroom-backend/internal/config"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
	"github.com/magabrotheeeer/newsroom-backend/internal/rabbitmq"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateArticle(ctx context.Context, article models.Article, tagIDs []int) (int, error) {
	args := m.Called(ctx, article, tagIDs)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) UpdateArticle(ctx context.Context, article models.Article, id int, tagIDs []int) (int, error) {
	args := m.Called(ctx, article, id, tagIDs)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ReadArticle(ctx context.Context, id int) (*models.Article, error) {
	args := m.Called(ctx, id)
	art, _ := args.Get(0).(*models.Article)
	return art, args.Error(1)
}

func (m *RepoMock) ReadArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	args := m.Called(ctx, slug)
	art, _ := args.Get(0).(*models.Article)
	return art, args.Error(1)
}

func (m *RepoMock) RemoveArticle(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListArticles(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	args := m.Called(ctx, filter)
	res, _ := args.Get(0).([]*models.Article)
	return res, args.Error(1)
}

func (m *RepoMock) PublishArticle(ctx context.Context, id int, publishedAt time.Time) (int, error) {
	args := m.Called(ctx, id, publishedAt)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) AddArticleViews(ctx context.Context, id int, delta int64) error {
	return m.Called(ctx, id, delta).Error(0)
}

func (m *RepoMock) TopArticles(ctx context.Context, limit int) ([]*models.Article, error) {
	args := m.Called(ctx, limit)
	res, _ := args.Get(0).([]*models.Article)
	return res, args.Error(1)
}

func (m *RepoMock) EnsureTags(ctx context.Context, tags []models.Tag) ([]int, error) {
	args := m.Called(ctx, tags)
	res, _ := args.Get(0).([]int)
	return res, args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func setupTestCache(t *testing.T) *cache.Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	return c
}

func newTestService(t *testing.T) (*Service, *RepoMock, *PublisherMock, *cache.Cache) {
	repo := new(RepoMock)
	publisher := new(PublisherMock)
	c := setupTestCache(t)
	return New(repo, c, publisher, newNoopLogger()), repo, publisher, c
}

func publishedArticle(id int, slug string) *models.Article {
	now := time.Now()
	return &models.Article{
		ID:          id,
		Title:       "Заголовок",
		Slug:        slug,
		Summary:     "Кратко",
		Body:        "Текст",
		Status:      models.ArticlePublished,
		AuthorUID:   "author-1",
		CategoryID:  1,
		PublishedAt: &now,
	}
}

func TestArticle_Create(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	dummy := models.DummyArticle{
		Title:      "Свежие новости",
		Summary:    "Кратко",
		Body:       "Текст",
		CategoryID: 1,
		Tags:       []string{"Политика"},
	}

	repo.On("EnsureTags", mock.Anything, mock.AnythingOfType("[]models.Tag")).
		Return([]int{3}, nil).Once()
	repo.On("ReadArticleBySlug", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, sql.ErrNoRows).Once()
	repo.On("CreateArticle", mock.Anything, mock.MatchedBy(func(a models.Article) bool {
		return a.Status == models.ArticleDraft && a.AuthorUID == "author-1" && a.Slug != ""
	}), []int{3}).Return(42, nil).Once()

	id, err := service.Create(context.Background(), dummy, "author-1")

	require.NoError(t, err)
	assert.Equal(t, 42, id)
	repo.AssertExpectations(t)
}

func TestArticle_Create_SlugCollision(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	dummy := models.DummyArticle{Title: "Свежие новости", Body: "Текст", CategoryID: 1}

	repo.On("EnsureTags", mock.Anything, mock.Anything).Return([]int{}, nil).Once()
	// Первый кандидат занят, второй свободен.
	existing := publishedArticle(1, "svezhie-novosti")
	repo.On("ReadArticleBySlug", mock.Anything, "svezhie-novosti").Return(existing, nil).Once()
	repo.On("ReadArticleBySlug", mock.Anything, "svezhie-novosti-2").Return(nil, sql.ErrNoRows).Once()
	repo.On("CreateArticle", mock.Anything, mock.MatchedBy(func(a models.Article) bool {
		return a.Slug == "svezhie-novosti-2"
	}), []int{}).Return(2, nil).Once()

	_, err := service.Create(context.Background(), dummy, "author-1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestArticle_Read_CacheAside(t *testing.T) {
	service, repo, _, c := newTestService(t)
	ctx := context.Background()

	art := publishedArticle(5, "novost")
	repo.On("ReadArticle", mock.Anything, 5).Return(art, nil).Once()

	// Первое чтение идёт в хранилище и наполняет кеш.
	got, err := service.Read(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, art.ID, got.ID)

	// Второе чтение обслуживается кешем: новых обращений к репозиторию нет.
	got, err = service.Read(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, art.Title, got.Title)
	repo.AssertExpectations(t)

	// Оба чтения учтены в счётчике просмотров.
	views, err := c.GetViews(ctx, []int{5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), views[5])

	// Запись в кеше живёт час.
	ttl, err := c.Db.TTL(ctx, "article:id:5").Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Hour, ttl, float64(time.Minute))
}

func TestArticle_Read_DraftHiddenFromPublic(t *testing.T) {
	service, repo, _, c := newTestService(t)
	ctx := context.Background()

	draft := publishedArticle(6, "chernovik")
	draft.Status = models.ArticleDraft
	repo.On("ReadArticle", mock.Anything, 6).Return(draft, nil).Once()
	repo.On("ReadArticleBySlug", mock.Anything, "chernovik").Return(draft, nil).Once()

	// Неопубликованная статья для публичного чтения не существует —
	// ни по ID, ни по слагу.
	_, err := service.Read(ctx, 6)
	assert.ErrorIs(t, err, ErrArticleNotFound)
	_, err = service.ReadBySlug(ctx, "chernovik")
	assert.ErrorIs(t, err, ErrArticleNotFound)
	repo.AssertExpectations(t)

	// Черновики не попадают ни в кеш, ни в счётчики просмотров.
	var cached models.Article
	found, err := c.Get(ctx, "article:id:6", &cached)
	require.NoError(t, err)
	assert.False(t, found)

	views, err := c.GetViews(ctx, []int{6})
	require.NoError(t, err)
	assert.Equal(t, int64(0), views[6])
}

func TestArticle_Read_NotFound(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	repo.On("ReadArticle", mock.Anything, 99).Return(nil, sql.ErrNoRows).Once()

	_, err := service.Read(context.Background(), 99)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestArticle_Update_AuthorOnlyOwn(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	art := publishedArticle(5, "novost")
	dummy := models.DummyArticle{Title: "Новый заголовок", Body: "Текст", CategoryID: 1}

	t.Run("foreign author rejected", func(t *testing.T) {
		repo.On("ReadArticle", mock.Anything, 5).Return(art, nil).Once()

		err := service.Update(context.Background(), 5, dummy, "other-author", models.RoleAuthor)
		assert.ErrorIs(t, err, ErrNotAuthor)
	})

	t.Run("editor can modify foreign article", func(t *testing.T) {
		repo.On("ReadArticle", mock.Anything, 5).Return(art, nil).Once()
		repo.On("EnsureTags", mock.Anything, mock.Anything).Return([]int{}, nil).Once()
		repo.On("UpdateArticle", mock.Anything, mock.Anything, 5, []int{}).Return(1, nil).Once()

		err := service.Update(context.Background(), 5, dummy, "editor-1", models.RoleEditor)
		assert.NoError(t, err)
	})

	t.Run("own article allowed", func(t *testing.T) {
		repo.On("ReadArticle", mock.Anything, 5).Return(art, nil).Once()
		repo.On("EnsureTags", mock.Anything, mock.Anything).Return([]int{}, nil).Once()
		repo.On("UpdateArticle", mock.Anything, mock.Anything, 5, []int{}).Return(1, nil).Once()

		err := service.Update(context.Background(), 5, dummy, "author-1", models.RoleAuthor)
		assert.NoError(t, err)
	})

	repo.AssertExpectations(t)
}

func TestArticle_Update_InvalidatesCache(t *testing.T) {
	service, repo, _, c := newTestService(t)
	ctx := context.Background()

	art := publishedArticle(5, "novost")
	repo.On("ReadArticle", mock.Anything, 5).Return(art, nil).Twice()
	repo.On("EnsureTags", mock.Anything, mock.Anything).Return([]int{}, nil).Once()
	repo.On("UpdateArticle", mock.Anything, mock.Anything, 5, []int{}).Return(1, nil).Once()

	// Наполняем кеш чтением, затем обновляем.
	_, err := service.Read(ctx, 5)
	require.NoError(t, err)

	dummy := models.DummyArticle{Title: "Новый заголовок", Body: "Текст", CategoryID: 1}
	require.NoError(t, service.Update(ctx, 5, dummy, "author-1", models.RoleAuthor))

	// После обновления запись читается из хранилища заново.
	var cached models.Article
	found, err := c.Get(ctx, "article:id:5", &cached)
	require.NoError(t, err)
	assert.False(t, found)
	repo.AssertExpectations(t)
}

func TestArticle_Publish(t *testing.T) {
	service, repo, publisher, _ := newTestService(t)

	art := publishedArticle(5, "novost")
	art.Status = models.ArticleDraft

	repo.On("ReadArticle", mock.Anything, 5).Return(art, nil).Once()
	repo.On("PublishArticle", mock.Anything, 5, mock.AnythingOfType("time.Time")).Return(1, nil).Once()
	publisher.On("Publish", rabbitmq.RoutingKeyPublished, mock.MatchedBy(func(m models.EmailMessage) bool {
		return m.Subject == art.Title
	})).Return(nil).Once()

	err := service.Publish(context.Background(), 5, "author-1", models.RoleAuthor)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestArticle_Publish_AlreadyPublished(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	art := publishedArticle(5, "novost")
	repo.On("ReadArticle", mock.Anything, 5).Return(art, nil).Once()
	repo.On("PublishArticle", mock.Anything, 5, mock.AnythingOfType("time.Time")).Return(0, nil).Once()

	err := service.Publish(context.Background(), 5, "author-1", models.RoleAuthor)
	assert.ErrorIs(t, err, ErrAlreadyPublished)
}

func TestArticle_Publish_NotificationFailureIsNotFatal(t *testing.T) {
	service, repo, publisher, _ := newTestService(t)

	art := publishedArticle(5, "novost")
	repo.On("ReadArticle", mock.Anything, 5).Return(art, nil).Once()
	repo.On("PublishArticle", mock.Anything, 5, mock.AnythingOfType("time.Time")).Return(1, nil).Once()
	publisher.On("Publish", rabbitmq.RoutingKeyPublished, mock.Anything).
		Return(errors.New("broker down")).Once()

	err := service.Publish(context.Background(), 5, "author-1", models.RoleAuthor)
	assert.NoError(t, err)
}

func TestArticle_Top_MergesPendingViews(t *testing.T) {
	service, repo, _, c := newTestService(t)
	ctx := context.Background()

	first := publishedArticle(1, "pervaya")
	first.Views = 100
	second := publishedArticle(2, "vtoraya")
	second.Views = 50

	repo.On("TopArticles", mock.Anything, 10).Return([]*models.Article{first, second}, nil).Once()

	// Накопленные, но ещё не сброшенные просмотры.
	for i := 0; i < 3; i++ {
		_, err := c.IncrViews(ctx, 1)
		require.NoError(t, err)
	}

	result, err := service.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(103), result[0].Views)
	assert.Equal(t, int64(50), result[1].Views)
}

func TestArticle_FlushViews(t *testing.T) {
	service, repo, _, c := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := c.IncrViews(ctx, 7)
		require.NoError(t, err)
	}
	repo.On("AddArticleViews", mock.Anything, 7, int64(4)).Return(nil).Once()

	require.NoError(t, service.FlushViews(ctx))
	repo.AssertExpectations(t)

	// Повторный сброс без новых просмотров ничего не пишет.
	require.NoError(t, service.FlushViews(ctx))
}

func TestArticle_Remove_NotFound(t *testing.T) {
	service, repo, _, _ := newTestService(t)

	repo.On("ReadArticle", mock.Anything, 99).Return(nil, sql.ErrNoRows).Once()

	err := service.Remove(context.Background(), 99, "author-1", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}
