// Package validation checks submitted bug fields and normalizes them.
//
// It has no store dependency and never applies defaults; callers decide
// how missing status and priority are filled in.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/bugtrackr/bug-tracker/internal/domain"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
)

const (
	MsgTitleRequired       = "Title is required"
	MsgTitleTooLong        = "Title cannot exceed 100 characters"
	MsgDescriptionRequired = "Description is required"
	MsgDescriptionTooLong  = "Description cannot exceed 1000 characters"
	MsgInvalidStatus       = "Status must be one of: open, in-progress, resolved"
	MsgInvalidPriority     = "Priority must be one of: low, medium, high"
	MsgReporterRequired    = "Reporter name is required"
)

// BugInput carries raw submitted fields. A nil field was not supplied.
type BugInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Reporter    *string
}

// Error lists every violated rule, in rule order.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// ForCreate validates a complete submission. Required fields that are absent fail.
// The returned record has trimmed text and empty status/priority when they were not supplied.
func ForCreate(in BugInput) (domain.BugReport, error) {
	var (
		bug  domain.BugReport
		msgs []string
	)

	bug.Title, msgs = checkText(in.Title, MaxTitleLength, MsgTitleRequired, MsgTitleTooLong, msgs)
	bug.Description, msgs = checkText(in.Description, MaxDescriptionLength, MsgDescriptionRequired, MsgDescriptionTooLong, msgs)
	if status, ok := supplied(in.Status); ok {
		if !domain.BugStatus(status).IsValid() {
			msgs = append(msgs, MsgInvalidStatus)
		}
		bug.Status = domain.BugStatus(status)
	}
	if priority, ok := supplied(in.Priority); ok {
		if !domain.BugPriority(priority).IsValid() {
			msgs = append(msgs, MsgInvalidPriority)
		}
		bug.Priority = domain.BugPriority(priority)
	}
	bug.Reporter, msgs = checkText(in.Reporter, 0, MsgReporterRequired, "", msgs)

	if len(msgs) > 0 {
		return domain.BugReport{}, &Error{Messages: msgs}
	}
	return bug, nil
}

// ForUpdate validates only the supplied fields of a partial update.
func ForUpdate(in BugInput) (domain.BugPatch, error) {
	var (
		patch domain.BugPatch
		msgs  []string
	)

	if in.Title != nil {
		var title string
		title, msgs = checkText(in.Title, MaxTitleLength, MsgTitleRequired, MsgTitleTooLong, msgs)
		patch.Title = &title
	}
	if in.Description != nil {
		var description string
		description, msgs = checkText(in.Description, MaxDescriptionLength, MsgDescriptionRequired, MsgDescriptionTooLong, msgs)
		patch.Description = &description
	}
	if status, ok := supplied(in.Status); ok {
		if !domain.BugStatus(status).IsValid() {
			msgs = append(msgs, MsgInvalidStatus)
		}
		s := domain.BugStatus(status)
		patch.Status = &s
	}
	if priority, ok := supplied(in.Priority); ok {
		if !domain.BugPriority(priority).IsValid() {
			msgs = append(msgs, MsgInvalidPriority)
		}
		p := domain.BugPriority(priority)
		patch.Priority = &p
	}
	if in.Reporter != nil {
		var reporter string
		reporter, msgs = checkText(in.Reporter, 0, MsgReporterRequired, "", msgs)
		patch.Reporter = &reporter
	}

	if len(msgs) > 0 {
		return domain.BugPatch{}, &Error{Messages: msgs}
	}
	return patch, nil
}

// checkText trims val and appends at most one message. maxLen 0 means unbounded.
func checkText(val *string, maxLen int, requiredMsg, tooLongMsg string, msgs []string) (string, []string) {
	if val == nil {
		return "", append(msgs, requiredMsg)
	}
	trimmed := strings.TrimSpace(*val)
	if trimmed == "" {
		return "", append(msgs, requiredMsg)
	}
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return trimmed, append(msgs, tooLongMsg)
	}
	return trimmed, msgs
}

// supplied treats nil and "" alike for the optional enum fields.
func supplied(val *string) (string, bool) {
	if val == nil || *val == "" {
		return "", false
	}
	return *val, true
}
