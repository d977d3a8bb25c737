package domain

import "time"

// BugStatus enumerates lifecycle states for bug reports.
type BugStatus string

const (
	BugStatusOpen       BugStatus = "open"
	BugStatusInProgress BugStatus = "in-progress"
	BugStatusResolved   BugStatus = "resolved"
)

// BugStatuses lists every accepted status in display order.
var BugStatuses = []BugStatus{BugStatusOpen, BugStatusInProgress, BugStatusResolved}

// IsValid reports whether s is one of the enumerated statuses.
func (s BugStatus) IsValid() bool {
	switch s {
	case BugStatusOpen, BugStatusInProgress, BugStatusResolved:
		return true
	}
	return false
}

// BugPriority enumerates urgency levels.
type BugPriority string

const (
	BugPriorityLow    BugPriority = "low"
	BugPriorityMedium BugPriority = "medium"
	BugPriorityHigh   BugPriority = "high"
)

// BugPriorities lists every accepted priority in display order.
var BugPriorities = []BugPriority{BugPriorityLow, BugPriorityMedium, BugPriorityHigh}

// IsValid reports whether p is one of the enumerated priorities.
func (p BugPriority) IsValid() bool {
	switch p {
	case BugPriorityLow, BugPriorityMedium, BugPriorityHigh:
		return true
	}
	return false
}

const (
	DefaultBugStatus   = BugStatusOpen
	DefaultBugPriority = BugPriorityMedium
)

// BugReport is the only aggregate of the tracker.
type BugReport struct {
	ID          string
	Title       string
	Description string
	Status      BugStatus
	Priority    BugPriority
	Reporter    string
	CreatedAt   time.Time
}

// ApplyDefaults fills status and priority when they were not supplied.
func (b *BugReport) ApplyDefaults() {
	if b.Status == "" {
		b.Status = DefaultBugStatus
	}
	if b.Priority == "" {
		b.Priority = DefaultBugPriority
	}
}

// BugPatch holds the fields of a partial update. Nil fields are left untouched.
type BugPatch struct {
	Title       *string
	Description *string
	Status      *BugStatus
	Priority    *BugPriority
	Reporter    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p BugPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil && p.Reporter == nil
}

// Apply merges the patch into b. ID and CreatedAt are never touched.
func (p BugPatch) Apply(b *BugReport) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Priority != nil {
		b.Priority = *p.Priority
	}
	if p.Reporter != nil {
		b.Reporter = *p.Reporter
	}
}
