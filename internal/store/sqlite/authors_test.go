package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/store"
)

func TestCreateAndGetAuthor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	author := &domain.Author{
		Entity:    domain.Entity{ID: "author-1", CreatedAt: now, UpdatedAt: now},
		FirstName: "Chinua",
		LastName:  "Achebe",
	}

	if err := s.CreateAuthor(ctx, author); err != nil {
		t.Fatalf("CreateAuthor: %v", err)
	}

	got, err := s.GetAuthor(ctx, "author-1")
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}
	if got.FirstName != "Chinua" || got.LastName != "Achebe" {
		t.Errorf("name: got %q %q, want Chinua Achebe", got.FirstName, got.LastName)
	}
}

func TestGetAuthor_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAuthor(context.Background(), "author-missing")
	if !errors.Is(err, store.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}

func TestListAuthors_OrderedByLastName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	for _, a := range []struct{ id, first, last string }{
		{"author-1", "Ngugi", "wa Thiong'o"},
		{"author-2", "Chimamanda", "Adichie"},
		{"author-3", "Wole", "Soyinka"},
	} {
		author := &domain.Author{
			Entity:    domain.Entity{ID: a.id, CreatedAt: now, UpdatedAt: now},
			FirstName: a.first,
			LastName:  a.last,
		}
		if err := s.CreateAuthor(ctx, author); err != nil {
			t.Fatalf("CreateAuthor %s: %v", a.id, err)
		}
	}

	authors, err := s.ListAuthors(ctx)
	if err != nil {
		t.Fatalf("ListAuthors: %v", err)
	}
	if len(authors) != 3 {
		t.Fatalf("got %d authors, want 3", len(authors))
	}
	wantOrder := []string{"Adichie", "Soyinka", "wa Thiong'o"}
	for i, want := range wantOrder {
		if authors[i].LastName != want {
			t.Errorf("position %d: got %q, want %q", i, authors[i].LastName, want)
		}
	}
}

func TestUpdateAuthor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestAuthor(t, s, "author-1")

	got, err := s.GetAuthor(ctx, "author-1")
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}

	got.LastName = "Updated"
	got.Touch()
	if err := s.UpdateAuthor(ctx, got); err != nil {
		t.Fatalf("UpdateAuthor: %v", err)
	}

	updated, err := s.GetAuthor(ctx, "author-1")
	if err != nil {
		t.Fatalf("GetAuthor after update: %v", err)
	}
	if updated.LastName != "Updated" {
		t.Errorf("LastName: got %q, want Updated", updated.LastName)
	}
}

func TestUpdateAuthor_NotFound(t *testing.T) {
	s := newTestStore(t)

	now := time.Now()
	author := &domain.Author{
		Entity:    domain.Entity{ID: "author-missing", CreatedAt: now, UpdatedAt: now},
		FirstName: "Ghost",
		LastName:  "Writer",
	}

	err := s.UpdateAuthor(context.Background(), author)
	if !errors.Is(err, store.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}

func TestDeleteAuthor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestAuthor(t, s, "author-1")

	if err := s.DeleteAuthor(ctx, "author-1"); err != nil {
		t.Fatalf("DeleteAuthor: %v", err)
	}
	if _, err := s.GetAuthor(ctx, "author-1"); !errors.Is(err, store.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound after delete, got %v", err)
	}
}
