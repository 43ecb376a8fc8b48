package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openshelf/openshelf-server/internal/domain"
	domainerrors "github.com/openshelf/openshelf-server/internal/errors"
	"github.com/openshelf/openshelf-server/internal/id"
	"github.com/openshelf/openshelf-server/internal/logger"
	"github.com/openshelf/openshelf-server/internal/store"
)

// defaultTopActiveLimit is how many members the activity report returns
// when the caller does not ask for a specific count.
const defaultTopActiveLimit = 5

// MemberService manages library members and their activity reporting.
type MemberService struct {
	store  store.Store
	logger *logger.Logger
}

// NewMemberService creates a new member service.
func NewMemberService(store store.Store, logger *logger.Logger) *MemberService {
	return &MemberService{
		store:  store,
		logger: logger,
	}
}

// CreateMemberRequest contains the data for a new member.
type CreateMemberRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateMemberRequest contains a full member update.
type UpdateMemberRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
}

// Create registers a new member.
func (s *MemberService) Create(ctx context.Context, req CreateMemberRequest) (*domain.Member, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	memberID, err := id.Generate("member")
	if err != nil {
		return nil, fmt.Errorf("generate member ID: %w", err)
	}

	member := &domain.Member{
		Entity: domain.Entity{ID: memberID},
		Name:   req.Name,
		Email:  req.Email,
	}
	member.InitTimestamps()

	if err := s.store.CreateMember(ctx, member); err != nil {
		if domainerrors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.Conflict("a member with this email already exists")
		}
		return nil, fmt.Errorf("create member: %w", err)
	}

	s.logger.Info("member created", "member_id", member.ID)
	return member, nil
}

// Get retrieves a member by ID.
func (s *MemberService) Get(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if domainerrors.Is(err, store.ErrMemberNotFound) {
		return nil, domainerrors.NotFoundf("member %s not found", memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return member, nil
}

// List returns all members.
func (s *MemberService) List(ctx context.Context) ([]*domain.Member, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// Update applies a full update to a member.
func (s *MemberService) Update(ctx context.Context, memberID string, req UpdateMemberRequest) (*domain.Member, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	member, err := s.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}

	member.Name = req.Name
	member.Email = req.Email
	member.Touch()

	if err := s.store.UpdateMember(ctx, member); err != nil {
		if domainerrors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.Conflict("a member with this email already exists")
		}
		if domainerrors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.NotFoundf("member %s not found", memberID)
		}
		return nil, fmt.Errorf("update member: %w", err)
	}
	return member, nil
}

// Delete removes a member.
func (s *MemberService) Delete(ctx context.Context, memberID string) error {
	err := s.store.DeleteMember(ctx, memberID)
	if domainerrors.Is(err, store.ErrMemberNotFound) {
		return domainerrors.NotFoundf("member %s not found", memberID)
	}
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	s.logger.Info("member deleted", "member_id", memberID)
	return nil
}

// TopActive returns members ranked by their count of active loans,
// computed in a single aggregation query. A limit below one falls back
// to the default of five.
func (s *MemberService) TopActive(ctx context.Context, limit int) ([]*store.MemberActivity, error) {
	if limit < 1 {
		limit = defaultTopActiveLimit
	}

	ranked, err := s.store.TopActiveMembers(ctx, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("top active members: %w", err)
	}
	return ranked, nil
}
