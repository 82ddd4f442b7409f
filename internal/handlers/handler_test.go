// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"blogpress/internal/cache"
	"blogpress/internal/database"
	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/session"
	"blogpress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "body:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// fakeObjects is an in-memory objectStore.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf.Bytes()
	f.types[key] = contentType
	return nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	delete(f.types, key)
	return nil
}

func (f *fakeObjects) FileURL(key string) string {
	return "https://cdn.test/" + key
}

func (f *fakeObjects) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Renderer   *render.Renderer
	Sessions   *session.Store
	Users      *store.UserStore
	Posts      *store.PostStore
	Categories *store.CategoryStore
	Tags       *store.TagStore
	Comments   *store.CommentStore
	Objects    *fakeObjects
	Blog       *Blog
	Auth       *Auth
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	categories := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	comments := store.NewCommentStore(db)
	bodies := cache.NewBodyCache(vk, 0)

	blog := NewBlog(renderer, posts, categories, tagStore, comments, bodies, nil)
	objects := newFakeObjects()
	blog.objects = objects

	return &testEnv{
		DB:         db,
		Valkey:     vk,
		Renderer:   renderer,
		Sessions:   sessions,
		Users:      users,
		Posts:      posts,
		Categories: categories,
		Tags:       tagStore,
		Comments:   comments,
		Objects:    objects,
		Blog:       blog,
		Auth:       NewAuth(renderer, sessions, users),
	}
}

// uniq returns a short random suffix for unique names.
func uniq() string {
	return uuid.NewString()[:6]
}

// createUser creates a user removed when the test finishes.
func (env *testEnv) createUser(t *testing.T, role models.Role, password string) *models.User {
	t.Helper()
	username := "handler-test-" + uniq()
	u, err := env.Users.Create(username, username+"@handler-test.local", password, "", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// createCategory creates a category removed when the test finishes.
func (env *testEnv) createCategory(t *testing.T) *models.Category {
	t.Helper()
	c, err := env.Categories.Create("handler-cat-"+uniq(), "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// createPost creates a categorized post by author, removed when the test
// finishes. Handler tests never leave uncategorized posts behind so the
// store's uncategorized counts stay predictable.
func (env *testEnv) createPost(t *testing.T, author *models.User, tagNames ...string) *models.Post {
	t.Helper()
	cat := env.createCategory(t)
	p, err := env.Posts.Create(&models.Post{
		Title:      "Handler " + uniq(),
		Content:    "original content",
		AuthorID:   &author.ID,
		CategoryID: &cat.ID,
	}, tagNames)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE id = $1", p.ID) })
	return p
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// sessionFor creates a session.Data for a stored user.
func sessionFor(u *models.User, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: "Test User",
		Role:        string(u.Role),
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	r = withChiURLParam(r, key, value)
	if sess == nil {
		return r
	}
	return r.WithContext(ctxWithSession(r.Context(), sess))
}
