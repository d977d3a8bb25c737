package dto

import (
	"time"

	"github.com/bugtrackr/bug-tracker/internal/domain"
	"github.com/bugtrackr/bug-tracker/internal/service"
	"github.com/bugtrackr/bug-tracker/internal/validation"
)

// BugRequest payload for create and update. Absent fields stay nil.
type BugRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
	Status      *string `json:"status" form:"status"`
	Priority    *string `json:"priority" form:"priority"`
	Reporter    *string `json:"reporter" form:"reporter"`
}

// Input converts the request into validation input.
func (r BugRequest) Input() validation.BugInput {
	return validation.BugInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Reporter:    r.Reporter,
	}
}

// BugListQuery captures list query parameters.
type BugListQuery struct {
	Status   string `query:"status"`
	Priority string `query:"priority"`
	Page     string `query:"page"`
	Limit    string `query:"limit"`
}

// BugResponse represents a stored bug.
type BugResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      domain.BugStatus   `json:"status"`
	Priority    domain.BugPriority `json:"priority"`
	Reporter    string             `json:"reporter"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// NewBugResponse maps a domain bug.
func NewBugResponse(bug *domain.BugReport) BugResponse {
	return BugResponse{
		ID:          bug.ID,
		Title:       bug.Title,
		Description: bug.Description,
		Status:      bug.Status,
		Priority:    bug.Priority,
		Reporter:    bug.Reporter,
		CreatedAt:   bug.CreatedAt,
	}
}

// BugListResponse is one page of bugs.
type BugListResponse struct {
	Bugs        []BugResponse `json:"bugs"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Total       int           `json:"total"`
}

// NewBugListResponse maps a service page. Bugs is never nil.
func NewBugListResponse(page *service.BugPage) BugListResponse {
	items := make([]BugResponse, 0, len(page.Bugs))
	for i := range page.Bugs {
		items = append(items, NewBugResponse(&page.Bugs[i]))
	}
	return BugListResponse{
		Bugs:        items,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		Total:       page.Total,
	}
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ValidationErrorResponse lists every violated rule.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// ErrorResponse is the body of every non-validation failure.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
