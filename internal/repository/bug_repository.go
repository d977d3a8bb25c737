package repository

import (
	"context"
	"errors"

	"github.com/bugtrackr/bug-tracker/internal/domain"
)

// ErrNotFound is returned when no bug matches the requested id.
var ErrNotFound = errors.New("bug not found")

// BugFilter narrows list and count queries. Nil fields match everything.
type BugFilter struct {
	Status   *domain.BugStatus
	Priority *domain.BugPriority
}

// BugRepository encapsulates bug persistence.
//
// Find orders by created_at descending, then id descending, so pages are stable
// even when several bugs share a creation instant.
type BugRepository interface {
	Insert(ctx context.Context, bug *domain.BugReport) error
	FindByID(ctx context.Context, id string) (*domain.BugReport, error)
	Find(ctx context.Context, filter BugFilter, skip, limit int) ([]domain.BugReport, error)
	Count(ctx context.Context, filter BugFilter) (int, error)
	Update(ctx context.Context, id string, patch domain.BugPatch) (*domain.BugReport, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

const bugColumns = "id, title, description, status, priority, reporter, created_at"

func applyFilter(qb *QueryBuilder, filter BugFilter) {
	if filter.Status != nil {
		qb.AddCondition("status", string(*filter.Status))
	}
	if filter.Priority != nil {
		qb.AddCondition("priority", string(*filter.Priority))
	}
}

func applyPatch(qb *QueryBuilder, patch domain.BugPatch) {
	if patch.Title != nil {
		qb.AddAssignment("title", *patch.Title)
	}
	if patch.Description != nil {
		qb.AddAssignment("description", *patch.Description)
	}
	if patch.Status != nil {
		qb.AddAssignment("status", string(*patch.Status))
	}
	if patch.Priority != nil {
		qb.AddAssignment("priority", string(*patch.Priority))
	}
	if patch.Reporter != nil {
		qb.AddAssignment("reporter", *patch.Reporter)
	}
}
