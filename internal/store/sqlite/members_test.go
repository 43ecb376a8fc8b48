package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/store"
)

func TestCreateAndGetMember(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	member := &domain.Member{
		Entity: domain.Entity{ID: "member-1", CreatedAt: now, UpdatedAt: now},
		Name:   "Test User",
		Email:  "testuser@example.com",
	}

	if err := s.CreateMember(ctx, member); err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	got, err := s.GetMember(ctx, "member-1")
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if got.Name != member.Name {
		t.Errorf("Name: got %q, want %q", got.Name, member.Name)
	}
	if got.Email != member.Email {
		t.Errorf("Email: got %q, want %q", got.Email, member.Email)
	}
}

func TestCreateMember_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestMember(t, s, "member-1")

	now := time.Now()
	dup := &domain.Member{
		Entity: domain.Entity{ID: "member-2", CreatedAt: now, UpdatedAt: now},
		Name:   "Other",
		Email:  "member-1@example.com",
	}

	err := s.CreateMember(ctx, dup)
	if !errors.Is(err, store.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestGetMember_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMember(context.Background(), "member-missing")
	if !errors.Is(err, store.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestUpdateMember(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestMember(t, s, "member-1")

	got, err := s.GetMember(ctx, "member-1")
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}

	got.Name = "Renamed"
	got.Touch()
	if err := s.UpdateMember(ctx, got); err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}

	updated, err := s.GetMember(ctx, "member-1")
	if err != nil {
		t.Fatalf("GetMember after update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("Name: got %q, want Renamed", updated.Name)
	}
}

func TestDeleteMember(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestMember(t, s, "member-1")

	if err := s.DeleteMember(ctx, "member-1"); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}
	if _, err := s.GetMember(ctx, "member-1"); !errors.Is(err, store.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound after delete, got %v", err)
	}

	if err := s.DeleteMember(ctx, "member-1"); !errors.Is(err, store.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound on repeat delete, got %v", err)
	}
}

func TestTopActiveMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	insertTestAuthor(t, s, "author-1")
	insertTestBook(t, s, "book-1", "author-1", 100, 100)

	// Ten members with 0..9 active loans each.
	for num := 0; num < 10; num++ {
		memberID := fmt.Sprintf("member-%d", num)
		insertTestMember(t, s, memberID)
		for i := 0; i < num; i++ {
			loanID := fmt.Sprintf("loan-%d-%d", num, i)
			insertTestLoan(t, s, loanID, "book-1", memberID, now.AddDate(0, 0, i+1), false)
		}
	}

	ranked, err := s.TopActiveMembers(ctx, now, 5)
	if err != nil {
		t.Fatalf("TopActiveMembers: %v", err)
	}
	if len(ranked) != 5 {
		t.Fatalf("got %d members, want 5", len(ranked))
	}

	wantCounts := []int{9, 8, 7, 6, 5}
	for i, want := range wantCounts {
		if ranked[i].ActiveLoans != want {
			t.Errorf("position %d: got %d active loans, want %d", i, ranked[i].ActiveLoans, want)
		}
	}
}

func TestTopActiveMembers_IgnoresOverdueAndReturned(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	insertTestAuthor(t, s, "author-1")
	insertTestBook(t, s, "book-1", "author-1", 100, 100)
	insertTestMember(t, s, "member-1")

	// One overdue, one returned, one active: only the active counts.
	insertTestLoan(t, s, "loan-overdue", "book-1", "member-1", now.AddDate(0, 0, -1), false)
	insertTestLoan(t, s, "loan-returned", "book-1", "member-1", now.AddDate(0, 0, 1), true)
	insertTestLoan(t, s, "loan-active", "book-1", "member-1", now.AddDate(0, 0, 1), false)

	ranked, err := s.TopActiveMembers(ctx, now, 5)
	if err != nil {
		t.Fatalf("TopActiveMembers: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("got %d members, want 1", len(ranked))
	}
	if ranked[0].ActiveLoans != 1 {
		t.Errorf("ActiveLoans: got %d, want 1", ranked[0].ActiveLoans)
	}
}

func TestTopActiveMembers_DueTodayCountsAsActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	insertTestAuthor(t, s, "author-1")
	insertTestBook(t, s, "book-1", "author-1", 10, 10)
	insertTestMember(t, s, "member-1")

	insertTestLoan(t, s, "loan-today", "book-1", "member-1", now, false)

	ranked, err := s.TopActiveMembers(ctx, now, 5)
	if err != nil {
		t.Fatalf("TopActiveMembers: %v", err)
	}
	if len(ranked) != 1 || ranked[0].ActiveLoans != 1 {
		t.Fatalf("loan due today should count as active: %+v", ranked)
	}
}

func TestTopActiveMembers_TieBreakByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	insertTestAuthor(t, s, "author-1")
	insertTestBook(t, s, "book-1", "author-1", 10, 10)
	insertTestMember(t, s, "member-a")
	insertTestMember(t, s, "member-b")

	insertTestLoan(t, s, "loan-1", "book-1", "member-a", now.AddDate(0, 0, 1), false)
	insertTestLoan(t, s, "loan-2", "book-1", "member-b", now.AddDate(0, 0, 1), false)

	ranked, err := s.TopActiveMembers(ctx, now, 5)
	if err != nil {
		t.Fatalf("TopActiveMembers: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d members, want 2", len(ranked))
	}
	if ranked[0].ID != "member-a" || ranked[1].ID != "member-b" {
		t.Errorf("tie break order: got [%s %s], want [member-a member-b]", ranked[0].ID, ranked[1].ID)
	}
}
