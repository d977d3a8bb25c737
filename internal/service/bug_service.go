package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bugtrackr/bug-tracker/internal/config"
	"github.com/bugtrackr/bug-tracker/internal/domain"
	"github.com/bugtrackr/bug-tracker/internal/events"
	"github.com/bugtrackr/bug-tracker/internal/repository"
	"github.com/bugtrackr/bug-tracker/internal/validation"
	apperrors "github.com/bugtrackr/bug-tracker/pkg/util/errorutil"
)

// BugService coordinates bug workflows: validation, defaults, persistence and events.
type BugService struct {
	bugs       repository.BugRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	pagination config.PaginationConfig
}

// BugDependencies bundles collaborators for the bug service.
type BugDependencies struct {
	BugRepo    repository.BugRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock stamps CreatedAt; time.Now when nil.
	Clock      func() time.Time
	Pagination config.PaginationConfig
}

// BugListQuery describes list filters and paging as received from callers.
// Empty Status/Priority match everything; Page and Limit below 1 fall back to defaults.
type BugListQuery struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

// BugPage is one page of list results.
type BugPage struct {
	Bugs        []domain.BugReport
	Total       int
	TotalPages  int
	CurrentPage int
	PageSize    int
}

// NewBugService constructs the service.
func NewBugService(deps BugDependencies) *BugService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pagination := deps.Pagination
	if pagination.DefaultLimit <= 0 {
		pagination.DefaultLimit = 10
	}
	if pagination.MaxLimit < pagination.DefaultLimit {
		pagination.MaxLimit = pagination.DefaultLimit
	}
	return &BugService{
		bugs:       deps.BugRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
		pagination: pagination,
	}
}

// Create validates input, applies defaults and stores a new bug.
func (s *BugService) Create(ctx context.Context, input validation.BugInput) (*domain.BugReport, error) {
	bug, err := validation.ForCreate(input)
	if err != nil {
		return nil, toServiceError(err)
	}
	bug.ApplyDefaults()
	bug.CreatedAt = s.now().UTC()

	if err := s.bugs.Insert(ctx, &bug); err != nil {
		return nil, toServiceError(err)
	}

	s.publish(ctx, events.EventBugCreated, bug.ID, events.BugCreatedPayload{
		Title:    bug.Title,
		Status:   bug.Status,
		Priority: bug.Priority,
		Reporter: bug.Reporter,
	})
	return &bug, nil
}

// Get returns a bug by id.
func (s *BugService) Get(ctx context.Context, id string) (*domain.BugReport, error) {
	bug, err := s.bugs.FindByID(ctx, id)
	if err != nil {
		return nil, toServiceError(err)
	}
	return bug, nil
}

// List returns a filtered page of bugs, newest first.
func (s *BugService) List(ctx context.Context, query BugListQuery) (*BugPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = s.pagination.DefaultLimit
	}
	if limit > s.pagination.MaxLimit {
		limit = s.pagination.MaxLimit
	}

	result := &BugPage{
		Bugs:        []domain.BugReport{},
		CurrentPage: page,
		PageSize:    limit,
	}

	filter, ok := buildFilter(query)
	if !ok {
		// No stored bug can carry a value outside the enumerations.
		return result, nil
	}

	total, err := s.bugs.Count(ctx, filter)
	if err != nil {
		return nil, toServiceError(err)
	}
	result.Total = total
	result.TotalPages = (total + limit - 1) / limit
	// Compared against the page count so skip cannot overflow.
	if total == 0 || page > result.TotalPages {
		return result, nil
	}

	bugs, err := s.bugs.Find(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, toServiceError(err)
	}
	result.Bugs = bugs
	return result, nil
}

// Update validates the supplied fields and merges them into the stored bug.
func (s *BugService) Update(ctx context.Context, id string, input validation.BugInput) (*domain.BugReport, error) {
	patch, err := validation.ForUpdate(input)
	if err != nil {
		return nil, toServiceError(err)
	}

	bug, err := s.bugs.Update(ctx, id, patch)
	if err != nil {
		return nil, toServiceError(err)
	}

	if !patch.IsEmpty() {
		s.publish(ctx, events.EventBugUpdated, bug.ID, events.BugUpdatedPayload{
			Fields:   patchedFields(patch),
			Status:   bug.Status,
			Priority: bug.Priority,
		})
	}
	return bug, nil
}

// Delete permanently removes a bug.
func (s *BugService) Delete(ctx context.Context, id string) error {
	if err := s.bugs.Delete(ctx, id); err != nil {
		return toServiceError(err)
	}
	s.publish(ctx, events.EventBugDeleted, id, nil)
	return nil
}

// Purge removes every bug and returns how many were deleted. No events are published.
func (s *BugService) Purge(ctx context.Context) (int64, error) {
	n, err := s.bugs.DeleteAll(ctx)
	if err != nil {
		return 0, toServiceError(err)
	}
	return n, nil
}

// Ping reports whether the underlying store is reachable.
func (s *BugService) Ping(ctx context.Context) error {
	return s.bugs.Ping(ctx)
}

func (s *BugService) publish(ctx context.Context, eventType events.EventType, bugID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		BugID:     bugID,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.String("bug_id", bugID),
			zap.Error(err))
	}
}

func buildFilter(query BugListQuery) (repository.BugFilter, bool) {
	var filter repository.BugFilter
	if query.Status != "" {
		status := domain.BugStatus(query.Status)
		if !status.IsValid() {
			return filter, false
		}
		filter.Status = &status
	}
	if query.Priority != "" {
		priority := domain.BugPriority(query.Priority)
		if !priority.IsValid() {
			return filter, false
		}
		filter.Priority = &priority
	}
	return filter, true
}

func patchedFields(patch domain.BugPatch) []string {
	var fields []string
	if patch.Title != nil {
		fields = append(fields, "title")
	}
	if patch.Description != nil {
		fields = append(fields, "description")
	}
	if patch.Status != nil {
		fields = append(fields, "status")
	}
	if patch.Priority != nil {
		fields = append(fields, "priority")
	}
	if patch.Reporter != nil {
		fields = append(fields, "reporter")
	}
	return fields
}

func toServiceError(err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return apperrors.NewValidationError(verr.Messages...)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("Bug")
	default:
		return apperrors.NewInternalError(err)
	}
}
