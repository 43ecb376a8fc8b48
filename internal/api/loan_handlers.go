package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openshelf/openshelf-server/internal/service"
	"github.com/openshelf/openshelf-server/internal/store"
)

func (s *Server) registerLoanRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLoans",
		Method:      http.MethodGet,
		Path:        "/api/v1/loans",
		Summary:     "List loans",
		Description: "Returns all loans with book and member display data",
		Tags:        []string{"Loans"},
	}, s.handleListLoans)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLoan",
		Method:      http.MethodGet,
		Path:        "/api/v1/loans/{id}",
		Summary:     "Get loan",
		Tags:        []string{"Loans"},
	}, s.handleGetLoan)

	huma.Register(s.api, huma.Operation{
		OperationID: "extendLoanDueDate",
		Method:      http.MethodPatch,
		Path:        "/api/v1/loans/{id}/extend-due-date",
		Summary:     "Extend loan due date",
		Description: "Pushes an active loan's due date out by additional days",
		Tags:        []string{"Loans"},
	}, s.handleExtendLoanDueDate)

	huma.Register(s.api, huma.Operation{
		OperationID: "runOverdueScan",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/overdue-scan",
		Summary:     "Run overdue scan",
		Description: "Sends an overdue notice for every unreturned loan past its due date",
		Tags:        []string{"Admin"},
	}, s.handleRunOverdueScan)
}

// LoanIDInput identifies a loan by path parameter.
type LoanIDInput struct {
	ID string `path:"id" doc:"Loan ID"`
}

// ExtendLoanInput is the request for extending a loan's due date.
type ExtendLoanInput struct {
	ID   string `path:"id" doc:"Loan ID"`
	Body struct {
		AdditionalDays int `json:"additional_days" doc:"Days to add to the due date"`
	}
}

// ListLoansOutput wraps the loan list response.
type ListLoansOutput struct {
	Body struct {
		Loans []*store.LoanDetails `json:"loans"`
	}
}

// OverdueScanOutput reports how many overdue notices were sent.
type OverdueScanOutput struct {
	Body struct {
		NoticesSent int `json:"notices_sent"`
	}
}

func (s *Server) handleListLoans(ctx context.Context, _ *struct{}) (*ListLoansOutput, error) {
	loans, err := s.services.Loan.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListLoansOutput{}
	out.Body.Loans = loans
	return out, nil
}

func (s *Server) handleGetLoan(ctx context.Context, input *LoanIDInput) (*LoanOutput, error) {
	loan, err := s.services.Loan.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &LoanOutput{Body: loan}, nil
}

func (s *Server) handleExtendLoanDueDate(ctx context.Context, input *ExtendLoanInput) (*LoanOutput, error) {
	loan, err := s.services.Loan.ExtendDueDate(ctx, input.ID, service.ExtendRequest{
		AdditionalDays: input.Body.AdditionalDays,
	})
	if err != nil {
		return nil, err
	}
	return &LoanOutput{Body: loan}, nil
}

func (s *Server) handleRunOverdueScan(ctx context.Context, _ *struct{}) (*OverdueScanOutput, error) {
	sent, err := s.services.Loan.RunOverdueScan(ctx)
	if err != nil {
		return nil, err
	}

	out := &OverdueScanOutput{}
	out.Body.NoticesSent = sent
	return out, nil
}
