package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/service"
	"github.com/openshelf/openshelf-server/internal/store"
)

func (s *Server) registerMemberRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/members",
		Summary:     "List members",
		Tags:        []string{"Members"},
	}, s.handleListMembers)

	huma.Register(s.api, huma.Operation{
		OperationID: "topActiveMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/members/top-active",
		Summary:     "Top active members",
		Description: "Returns members ranked by count of active loans",
		Tags:        []string{"Members"},
	}, s.handleTopActiveMembers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createMember",
		Method:        http.MethodPost,
		Path:          "/api/v1/members",
		Summary:       "Create member",
		Tags:          []string{"Members"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateMember)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMember",
		Method:      http.MethodGet,
		Path:        "/api/v1/members/{id}",
		Summary:     "Get member",
		Tags:        []string{"Members"},
	}, s.handleGetMember)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMember",
		Method:      http.MethodPut,
		Path:        "/api/v1/members/{id}",
		Summary:     "Update member",
		Tags:        []string{"Members"},
	}, s.handleUpdateMember)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteMember",
		Method:        http.MethodDelete,
		Path:          "/api/v1/members/{id}",
		Summary:       "Delete member",
		Tags:          []string{"Members"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteMember)
}

// MemberBody carries member fields in create and update requests.
type MemberBody struct {
	Name  string `json:"name" doc:"Member display name"`
	Email string `json:"email" doc:"Unique contact email"`
}

// CreateMemberInput is the request for creating a member.
type CreateMemberInput struct {
	Body MemberBody
}

// UpdateMemberInput is the request for updating a member.
type UpdateMemberInput struct {
	ID   string `path:"id" doc:"Member ID"`
	Body MemberBody
}

// MemberIDInput identifies a member by path parameter.
type MemberIDInput struct {
	ID string `path:"id" doc:"Member ID"`
}

// TopActiveInput carries the optional result limit.
type TopActiveInput struct {
	Limit int `query:"limit" default:"5" minimum:"1" maximum:"100" doc:"Number of members to return"`
}

// MemberOutput wraps a single member response.
type MemberOutput struct {
	Body *domain.Member
}

// ListMembersOutput wraps the member list response.
type ListMembersOutput struct {
	Body struct {
		Members []*domain.Member `json:"members"`
	}
}

// TopActiveOutput wraps the activity ranking response.
type TopActiveOutput struct {
	Body struct {
		Members []*store.MemberActivity `json:"members"`
	}
}

func (s *Server) handleListMembers(ctx context.Context, _ *struct{}) (*ListMembersOutput, error) {
	members, err := s.services.Member.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListMembersOutput{}
	out.Body.Members = members
	return out, nil
}

func (s *Server) handleTopActiveMembers(ctx context.Context, input *TopActiveInput) (*TopActiveOutput, error) {
	ranked, err := s.services.Member.TopActive(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &TopActiveOutput{}
	out.Body.Members = ranked
	return out, nil
}

func (s *Server) handleCreateMember(ctx context.Context, input *CreateMemberInput) (*MemberOutput, error) {
	member, err := s.services.Member.Create(ctx, service.CreateMemberRequest{
		Name:  input.Body.Name,
		Email: input.Body.Email,
	})
	if err != nil {
		return nil, err
	}
	return &MemberOutput{Body: member}, nil
}

func (s *Server) handleGetMember(ctx context.Context, input *MemberIDInput) (*MemberOutput, error) {
	member, err := s.services.Member.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &MemberOutput{Body: member}, nil
}

func (s *Server) handleUpdateMember(ctx context.Context, input *UpdateMemberInput) (*MemberOutput, error) {
	member, err := s.services.Member.Update(ctx, input.ID, service.UpdateMemberRequest{
		Name:  input.Body.Name,
		Email: input.Body.Email,
	})
	if err != nil {
		return nil, err
	}
	return &MemberOutput{Body: member}, nil
}

func (s *Server) handleDeleteMember(ctx context.Context, input *MemberIDInput) (*struct{}, error) {
	if err := s.services.Member.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
