// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	username := "test-create-" + uniq()
	t.Cleanup(func() { cleanUsers(t, db, username) })

	user, err := s.Create(username, "create@store-test.local", "testpass123", "Test User", models.RoleStaff)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if user.Username != username {
		t.Errorf("username: got %q, want %q", user.Username, username)
	}
	if user.DisplayName != "Test User" {
		t.Errorf("display name: got %q, want %q", user.DisplayName, "Test User")
	}
	if user.Role != models.RoleStaff {
		t.Errorf("role: got %q, want %q", user.Role, models.RoleStaff)
	}
	if user.TOTPEnabled {
		t.Error("expected totp_enabled=false for new user")
	}
	if user.PasswordHash == "testpass123" {
		t.Error("password hash must not be plaintext")
	}
}

func TestUserStoreCreateDuplicate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	username := "test-dup-" + uniq()
	t.Cleanup(func() { cleanUsers(t, db, username) })

	if _, err := s.Create(username, "", "pass", "", models.RoleMember); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := s.Create(username, "", "pass", "", models.RoleMember)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("second Create: got %v, want ErrDuplicate", err)
	}
}

func TestUserStoreFindByUsername(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	username := "test-find-" + uniq()
	t.Cleanup(func() { cleanUsers(t, db, username) })

	// Not found case.
	user, err := s.FindByUsername(username)
	if err != nil {
		t.Fatalf("FindByUsername (not found): %v", err)
	}
	if user != nil {
		t.Error("expected nil for non-existent user")
	}

	created, err := s.Create(username, "", "pass", "Find Me", models.RoleMember)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	user, err = s.FindByUsername(username)
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != created.ID {
		t.Errorf("ID mismatch: got %s, want %s", user.ID, created.ID)
	}

	byID, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID == nil || byID.Username != username {
		t.Errorf("FindByID: got %+v", byID)
	}
}

func TestUserStoreCheckPassword(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	user := testUser(t, db, models.RoleMember)

	if !s.CheckPassword(user, "pass") {
		t.Error("expected correct password to match")
	}
	if s.CheckPassword(user, "wrong") {
		t.Error("expected wrong password to be rejected")
	}
}

func TestUserStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	user := testUser(t, db, models.RoleMember)

	if err := s.SetTOTPSecret(user.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	if err := s.EnableTOTP(user.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}

	got, err := s.FindByID(user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !got.Needs2FAVerify() {
		t.Error("expected 2FA to be active after enable")
	}

	if err := s.ResetTOTP(user.ID); err != nil {
		t.Fatalf("ResetTOTP: %v", err)
	}
	got, _ = s.FindByID(user.ID)
	if got.TOTPEnabled || got.TOTPSecret != nil {
		t.Error("expected TOTP cleared after reset")
	}
}

func TestUserStoreDeleteKeepsPosts(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	user := testUser(t, db, models.RoleStaff)
	post := testPost(t, db, &models.Post{Title: "orphan " + uniq(), AuthorID: &user.ID})

	if err := s.Delete(user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := NewPostStore(db).FindByID(post.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil {
		t.Fatal("expected post to survive author deletion")
	}
	if got.AuthorID != nil || got.Author != nil {
		t.Errorf("expected no author, got %v", got.AuthorID)
	}
}
