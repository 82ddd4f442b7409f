// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"blogpress/internal/models"
	"blogpress/internal/tags"
)

func TestPostStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	author := testUser(t, db, models.RoleStaff)
	cat := testCategory(t, db, "create-"+uniq())
	head := "blog/images/2026/10/19/a.png"

	post := testPost(t, db, &models.Post{
		Title:      "첫 번째 포스트",
		HookText:   "hook",
		Content:    "hello **world**",
		HeadImage:  &head,
		AuthorID:   &author.ID,
		CategoryID: &cat.ID,
	})

	if post.ID == uuid.Nil {
		t.Fatal("expected generated ID")
	}
	if post.Author == nil || post.Author.Username != author.Username {
		t.Errorf("author: got %+v", post.Author)
	}
	if post.Category == nil || post.Category.Slug != cat.Slug {
		t.Errorf("category: got %+v", post.Category)
	}
	if post.HeadImage == nil || *post.HeadImage != head {
		t.Errorf("head image: got %v", post.HeadImage)
	}
	if post.CreatedAt.IsZero() || post.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	missing, err := s.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("FindByID (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing post")
	}
}

func TestPostStoreCreateWithParsedTags(t *testing.T) {
	db := testDB(t)
	m := uniq()

	names := tags.Parse(fmt.Sprintf("new tag %s; 한글 태그 %s, js%s", m, m, m))
	t.Cleanup(func() { cleanTags(t, db, names...) })

	post := testPost(t, db, &models.Post{Title: "tagged " + m}, names...)

	if len(post.Tags) != 3 {
		t.Fatalf("tags: got %d, want 3 (%v)", len(post.Tags), post.TagNames())
	}
	want := map[string]bool{"new tag " + m: true, "한글 태그 " + m: true, "js" + m: true}
	for _, tag := range post.Tags {
		if !want[tag.Name] {
			t.Errorf("unexpected tag %q", tag.Name)
		}
	}
}

func TestPostStoreTagReuseIsIdempotent(t *testing.T) {
	db := testDB(t)
	m := uniq()
	name := "reuse " + m
	t.Cleanup(func() { cleanTags(t, db, name) })

	// The same name twice in one tag string attaches once.
	a := testPost(t, db, &models.Post{Title: "a " + m}, name, name)
	b := testPost(t, db, &models.Post{Title: "b " + m}, name)

	if len(a.Tags) != 1 || len(b.Tags) != 1 {
		t.Fatalf("tags: got %d and %d, want 1 each", len(a.Tags), len(b.Tags))
	}
	if a.Tags[0].ID != b.Tags[0].ID {
		t.Error("expected both posts to share one tag row")
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM tags WHERE name = $1", name).Scan(&count)
	if count != 1 {
		t.Errorf("tag rows: got %d, want 1", count)
	}
}

func TestPostStoreUpdateReplacesTags(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	m := uniq()
	t.Cleanup(func() { cleanTags(t, db, "old "+m, "keep "+m, "new "+m) })

	post := testPost(t, db, &models.Post{Title: "before " + m}, "old "+m, "keep "+m)
	before := post.UpdatedAt

	post.Title = "after " + m
	if err := s.Update(post, []string{"keep " + m, "new " + m}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.FindByID(post.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Title != "after "+m {
		t.Errorf("title: got %q", got.Title)
	}
	if !got.UpdatedAt.After(before) {
		t.Error("expected updated_at to advance")
	}
	if !got.CreatedAt.Equal(post.CreatedAt) {
		t.Error("expected created_at to stay unchanged")
	}
	if got.TagNames() != "keep "+m+"; new "+m {
		t.Errorf("tags: got %q", got.TagNames())
	}

	// An empty tag set clears every association.
	if err := s.Update(got, nil); err != nil {
		t.Fatalf("Update (clear): %v", err)
	}
	got, _ = s.FindByID(post.ID)
	if len(got.Tags) != 0 {
		t.Errorf("expected no tags, got %q", got.TagNames())
	}
}

func TestPostStoreUpdateMissing(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	err := s.Update(&models.Post{ID: uuid.New(), Title: "x", Content: "y"}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if err := s.Delete(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: got %v, want ErrNotFound", err)
	}
}

func TestPostStoreDeleteCascadesComments(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	comments := NewCommentStore(db)
	m := uniq()
	t.Cleanup(func() { cleanTags(t, db, "cascade "+m) })

	author := testUser(t, db, models.RoleMember)
	post := testPost(t, db, &models.Post{Title: "cascade " + m}, "cascade "+m)

	c, err := comments.Create(&models.Comment{PostID: post.ID, AuthorID: author.ID, Content: "hi"})
	if err != nil {
		t.Fatalf("Create comment: %v", err)
	}

	if err := s.Delete(post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := comments.FindByID(c.ID)
	if err != nil {
		t.Fatalf("FindByID comment: %v", err)
	}
	if got != nil {
		t.Error("expected comment to be deleted with its post")
	}

	var links int
	db.QueryRow("SELECT COUNT(*) FROM post_tags WHERE post_id = $1", post.ID).Scan(&links)
	if links != 0 {
		t.Errorf("post_tags: got %d, want 0", links)
	}

	// The tag itself survives.
	tag, _ := NewTagStore(db).FindBySlug(slugFor("cascade " + m))
	if tag == nil {
		t.Error("expected tag to survive post deletion")
	}
}

func TestPostStoreCategoryAndUncategorizedCounts(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	m := uniq()

	python := testCategory(t, db, "python "+m)

	before, err := s.CountUncategorized()
	if err != nil {
		t.Fatalf("CountUncategorized: %v", err)
	}

	testPost(t, db, &models.Post{Title: "py " + m, CategoryID: &python.ID})
	loose := testPost(t, db, &models.Post{Title: "loose " + m})

	after, err := s.CountUncategorized()
	if err != nil {
		t.Fatalf("CountUncategorized: %v", err)
	}
	if after-before != 1 {
		t.Errorf("uncategorized delta: got %d, want 1", after-before)
	}

	cats, err := NewCategoryStore(db).List()
	if err != nil {
		t.Fatalf("List categories: %v", err)
	}
	var found bool
	for _, c := range cats {
		if c.ID == python.ID {
			found = true
			if c.PostCount != 1 {
				t.Errorf("python count: got %d, want 1", c.PostCount)
			}
		}
	}
	if !found {
		t.Error("python category missing from List")
	}

	// The uncategorized listing contains the loose post and not the other.
	list, err := s.List(PostFilter{Uncategorized: true, Query: m})
	if err != nil {
		t.Fatalf("List uncategorized: %v", err)
	}
	if len(list) != 1 || list[0].ID != loose.ID {
		t.Errorf("uncategorized listing: got %d posts", len(list))
	}

	byCat, err := s.List(PostFilter{CategorySlug: python.Slug})
	if err != nil {
		t.Fatalf("List by category: %v", err)
	}
	if len(byCat) != 1 || byCat[0].Category == nil || byCat[0].Category.ID != python.ID {
		t.Errorf("category listing: got %d posts", len(byCat))
	}
}

func TestPostStoreSearch(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	m := uniq()
	term := "러스트" + m

	testPost(t, db, &models.Post{Title: term + " 입문", Content: "기초"})
	testPost(t, db, &models.Post{Title: "메모리 " + m, Content: "소유권과 " + term})
	testPost(t, db, &models.Post{Title: "파이썬 " + m, Content: "무관한 글"})
	// Matches through its tag only.
	testPost(t, db, &models.Post{Title: "첫 번째 포스트 " + m, Content: "안녕"}, term+" 공부")
	t.Cleanup(func() { db.Exec("DELETE FROM tags WHERE name = $1", term+" 공부") })

	got, err := s.List(PostFilter{Query: term})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("search count: got %d, want 3", len(got))
	}

	// Matching is case-insensitive and wildcards are literal.
	upper, _ := s.List(PostFilter{Query: strings.ToUpper("파이썬 " + m)})
	if len(upper) != 1 {
		t.Errorf("case-insensitive search: got %d, want 1", len(upper))
	}
	none, _ := s.List(PostFilter{Query: "%" + m + "_none"})
	if len(none) != 0 {
		t.Errorf("wildcard search: got %d, want 0", len(none))
	}
}

func TestPostStoreListNewestFirstAndByTag(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	m := uniq()
	tagName := "order " + m
	t.Cleanup(func() { cleanTags(t, db, tagName) })

	first := testPost(t, db, &models.Post{Title: "first " + m}, tagName)
	second := testPost(t, db, &models.Post{Title: "second " + m}, tagName)
	testPost(t, db, &models.Post{Title: "untagged " + m})

	got, err := s.List(PostFilter{TagSlug: slugFor(tagName)})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("tag listing: got %d, want 2", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Error("expected newest post first")
	}
	if len(got[0].Tags) != 1 || got[0].Tags[0].Name != tagName {
		t.Errorf("expected tags loaded on listing, got %q", got[0].TagNames())
	}
}
