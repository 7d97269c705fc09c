package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/newsroom-backend/internal/migrations"
	"github.com/magabrotheeeer/newsroom-backend/internal/models"
)

func setupTestDb(t *testing.T) *Storage {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { _ = storage.DB.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	return storage
}

func mustRegisterUser(t *testing.T, s *Storage, username, status string) string {
	t.Helper()
	uid, err := s.RegisterUser(context.Background(), models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "$2a$10$hashhashhashhashhashha",
		Role:         models.RoleReader,
		Status:       status,
	})
	require.NoError(t, err)
	return uid
}

func TestStorage_RegisterAndGetUser(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()

	uid := mustRegisterUser(t, storage, "alice", models.StatusPending)
	assert.NotEmpty(t, uid)

	byName, err := storage.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uid, byName.UID)
	assert.Equal(t, models.StatusPending, byName.Status)
	assert.Equal(t, 0, byName.FailedAttempts)
	assert.Nil(t, byName.LockedUntil)

	byEmail, err := storage.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, byEmail.UID)

	_, err = storage.GetUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_RegisterFailedAttempt(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "alice", models.StatusActive)
	lockUntil := time.Now().Add(15 * time.Minute).UTC()

	// До порога блокировка не выставляется.
	for i := 1; i <= 4; i++ {
		failed, locked, err := storage.RegisterFailedAttempt(ctx, uid, 5, lockUntil, time.Now())
		require.NoError(t, err)
		assert.Equal(t, i, failed)
		assert.Nil(t, locked)
	}

	// Пятая попытка блокирует учётную запись.
	failed, locked, err := storage.RegisterFailedAttempt(ctx, uid, 5, lockUntil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 5, failed)
	require.NotNil(t, locked)
	assert.WithinDuration(t, lockUntil, *locked, time.Second)
}

func TestStorage_RegisterFailedAttempt_ExpiredLockResets(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "alice", models.StatusActive)

	// Доводим учётную запись до блокировки с уже истёкшим сроком.
	expired := time.Now().Add(-time.Minute).UTC()
	for i := 0; i < 5; i++ {
		_, _, err := storage.RegisterFailedAttempt(ctx, uid, 5, expired, expired.Add(-15*time.Minute))
		require.NoError(t, err)
	}

	// Первая неудача после истечения блокировки начинает отсчёт заново,
	// а не уводит счётчик за порог с мгновенной повторной блокировкой.
	failed, locked, err := storage.RegisterFailedAttempt(ctx, uid, 5,
		time.Now().Add(15*time.Minute).UTC(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Nil(t, locked)

	u, err := storage.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, u.FailedAttempts)
	assert.Nil(t, u.LockedUntil)
}

func TestStorage_RegisterFailedAttempt_Concurrent(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "alice", models.StatusActive)
	lockUntil := time.Now().Add(15 * time.Minute).UTC()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := storage.RegisterFailedAttempt(ctx, uid, 5, lockUntil, time.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Инкремент выполняется одним UPDATE: конкурирующие попытки не теряются.
	u, err := storage.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, workers, u.FailedAttempts)
	require.NotNil(t, u.LockedUntil)
}

func TestStorage_ResetLoginState(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "alice", models.StatusActive)
	lockUntil := time.Now().Add(15 * time.Minute).UTC()

	for i := 0; i < 5; i++ {
		_, _, err := storage.RegisterFailedAttempt(ctx, uid, 5, lockUntil, time.Now())
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	require.NoError(t, storage.ResetLoginState(ctx, uid, now))

	u, err := storage.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, u.FailedAttempts)
	assert.Nil(t, u.LockedUntil)
	require.NotNil(t, u.LastLoginAt)
	assert.WithinDuration(t, now, *u.LastLoginAt, time.Second)
}

func TestStorage_ActivateUser(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "alice", models.StatusPending)

	require.NoError(t, storage.ActivateUser(ctx, uid, time.Now()))

	u, err := storage.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, u.Status)
	assert.NotNil(t, u.EmailVerifiedAt)

	// Повторная активация уже активной записи — ошибка.
	err = storage.ActivateUser(ctx, uid, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_VerificationTokens(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "alice", models.StatusPending)

	first := models.VerificationToken{
		Token:     "token-1",
		UserUID:   uid,
		Purpose:   models.TokenEmailVerification,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, storage.CreateVerificationToken(ctx, first))

	// Новый код того же назначения вытесняет предыдущий.
	second := first
	second.Token = "token-2"
	require.NoError(t, storage.CreateVerificationToken(ctx, second))

	_, err := storage.GetVerificationToken(ctx, "token-1", models.TokenEmailVerification)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	vt, err := storage.GetVerificationToken(ctx, "token-2", models.TokenEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, uid, vt.UserUID)

	// Назначение участвует в выборке.
	_, err = storage.GetVerificationToken(ctx, "token-2", models.TokenMFACode)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, storage.DeleteVerificationToken(ctx, "token-2"))
	_, err = storage.GetVerificationToken(ctx, "token-2", models.TokenEmailVerification)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_SessionRotation(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "alice", models.StatusActive)
	now := time.Now().UTC()

	require.NoError(t, storage.CreateSession(ctx, uid, "hash-old", now.Add(24*time.Hour)))

	gotUID, err := storage.RotateSession(ctx, "hash-old", "hash-new", now.Add(24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, uid, gotUID)

	// Старый отпечаток после ротации недействителен.
	_, err = storage.RotateSession(ctx, "hash-old", "hash-other", now.Add(24*time.Hour), now)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	// Истёкшая сессия не ротируется.
	require.NoError(t, storage.CreateSession(ctx, uid, "hash-expired", now.Add(-time.Hour)))
	_, err = storage.RotateSession(ctx, "hash-expired", "hash-next", now.Add(24*time.Hour), now)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	require.NoError(t, storage.DeleteSession(ctx, "hash-new"))
	_, err = storage.RotateSession(ctx, "hash-new", "hash-after-logout", now.Add(24*time.Hour), now)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestStorage_OAuthAccounts(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "alice", models.StatusActive)

	_, err := storage.GetUserByProviderAccount(ctx, "google", "acc-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, storage.LinkAccount(ctx, uid, "google", "acc-1"))

	u, err := storage.GetUserByProviderAccount(ctx, "google", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, uid, u.UID)

	// Повторная привязка того же аккаунта не ломается.
	require.NoError(t, storage.LinkAccount(ctx, uid, "google", "acc-1"))
}

func TestStorage_ArticleLifecycle(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "author", models.StatusActive)

	categoryID, err := storage.CreateCategory(ctx, models.Category{
		Name: "Политика", Slug: "politika",
	})
	require.NoError(t, err)

	tagIDs, err := storage.EnsureTags(ctx, []models.Tag{
		{Name: "Выборы", Slug: "vybory"},
		{Name: "Экономика", Slug: "ekonomika"},
	})
	require.NoError(t, err)
	require.Len(t, tagIDs, 2)

	// Повторный EnsureTags не создаёт дубликатов.
	again, err := storage.EnsureTags(ctx, []models.Tag{{Name: "Выборы", Slug: "vybory"}})
	require.NoError(t, err)
	assert.Equal(t, tagIDs[0], again[0])

	id, err := storage.CreateArticle(ctx, models.Article{
		Title:      "Заголовок",
		Slug:       "zagolovok",
		Summary:    "Кратко",
		Body:       "Текст",
		Status:     models.ArticleDraft,
		AuthorUID:  uid,
		CategoryID: categoryID,
	}, tagIDs)
	require.NoError(t, err)

	art, err := storage.ReadArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleDraft, art.Status)
	assert.Equal(t, []string{"Выборы", "Экономика"}, art.Tags)
	assert.Nil(t, art.PublishedAt)

	bySlug, err := storage.ReadArticleBySlug(ctx, "zagolovok")
	require.NoError(t, err)
	assert.Equal(t, id, bySlug.ID)

	// Публикация: первый вызов меняет статус, второй не находит строк.
	count, err := storage.PublishArticle(ctx, id, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = storage.PublishArticle(ctx, id, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, storage.AddArticleViews(ctx, id, 42))

	top, err := storage.TopArticles(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(42), top[0].Views)
	assert.NotNil(t, top[0].PublishedAt)

	count, err = storage.RemoveArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = storage.ReadArticle(ctx, id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_ListArticlesFilter(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()
	uid := mustRegisterUser(t, storage, "author", models.StatusActive)

	categoryID, err := storage.CreateCategory(ctx, models.Category{Name: "Спорт", Slug: "sport"})
	require.NoError(t, err)

	for _, a := range []struct {
		slug   string
		status string
	}{
		{"pervaya", models.ArticleDraft},
		{"vtoraya", models.ArticlePublished},
		{"tretya", models.ArticlePublished},
	} {
		_, err := storage.CreateArticle(ctx, models.Article{
			Title: "Статья", Slug: a.slug, Body: "Текст",
			Status: a.status, AuthorUID: uid, CategoryID: categoryID,
		}, nil)
		require.NoError(t, err)
	}

	published, err := storage.ListArticles(ctx, models.ArticleFilter{
		Status: models.ArticlePublished,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Len(t, published, 2)

	all, err := storage.ListArticles(ctx, models.ArticleFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := storage.ListArticles(ctx, models.ArticleFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestStorage_ListSubscriberEmails(t *testing.T) {
	storage := setupTestDb(t)
	ctx := context.Background()

	mustRegisterUser(t, storage, "active1", models.StatusActive)
	mustRegisterUser(t, storage, "active2", models.StatusActive)
	mustRegisterUser(t, storage, "pending1", models.StatusPending)
	mustRegisterUser(t, storage, "suspended1", models.StatusSuspended)

	emails, err := storage.ListSubscriberEmails(ctx)
	require.NoError(t, err)

	// Учитываем административную запись из миграций.
	assert.Contains(t, emails, "active1@example.com")
	assert.Contains(t, emails, "active2@example.com")
	assert.NotContains(t, emails, "pending1@example.com")
	assert.NotContains(t, emails, "suspended1@example.com")
}
