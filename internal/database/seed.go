package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedCategories are created on an empty database so the sidebar has
// something to show in development.
var seedCategories = []struct{ name, slug string }{
	{"python", "python"},
	{"go", "go"},
	{"일상", "일상"},
}

// Seed populates the database with initial development data.
// It creates a default superuser and a few categories if no users exist.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin", "admin@blogpress.local", string(hash), "Admin", "superuser")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	for _, c := range seedCategories {
		_, err := db.Exec(`
			INSERT INTO categories (name, slug) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, c.name, c.slug)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.name, err)
		}
	}

	slog.Info("database seeded with default superuser",
		"username", "admin",
		"password", "admin",
	)

	return nil
}
