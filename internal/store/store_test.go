// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blogpress/internal/database"
	"blogpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// uniq returns a short random suffix so tests sharing a database do not
// collide on unique names.
func uniq() string {
	return uuid.NewString()[:6]
}

// testUser creates a user that is removed when the test finishes.
func testUser(t *testing.T, db *sql.DB, role models.Role) *models.User {
	t.Helper()
	username := "store-test-" + uniq()
	u, err := NewUserStore(db).Create(username, username+"@store-test.local", "pass", "", role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { cleanUsers(t, db, username) })
	return u
}

// testCategory creates a category that is removed when the test finishes.
func testCategory(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(name, "")
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, c.Slug) })
	return c
}

// testPost creates a post that is removed when the test finishes.
func testPost(t *testing.T, db *sql.DB, p *models.Post, tagNames ...string) *models.Post {
	t.Helper()
	if p.Content == "" {
		p.Content = "body"
	}
	created, err := NewPostStore(db).Create(p, tagNames)
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", created.ID) })
	return created
}

// cleanUsers removes test users by username. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, usernames ...string) {
	t.Helper()
	for _, name := range usernames {
		db.Exec("DELETE FROM users WHERE username = $1", name)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", s)
	}
}

// cleanTags removes test tags by name. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM tags WHERE name = $1", name)
	}
}
