package events

import (
	"time"

	"github.com/bugtrackr/bug-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBugCreated EventType = "bug_created"
	EventBugUpdated EventType = "bug_updated"
	EventBugDeleted EventType = "bug_deleted"
)

// AllEventTypes lists every event the service publishes.
var AllEventTypes = []EventType{EventBugCreated, EventBugUpdated, EventBugDeleted}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	BugID     string      `json:"bug_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BugCreatedPayload payload.
type BugCreatedPayload struct {
	Title    string             `json:"title"`
	Status   domain.BugStatus   `json:"status"`
	Priority domain.BugPriority `json:"priority"`
	Reporter string             `json:"reporter"`
}

// BugUpdatedPayload lists the fields a partial update touched and the resulting state.
type BugUpdatedPayload struct {
	Fields   []string           `json:"fields"`
	Status   domain.BugStatus   `json:"status"`
	Priority domain.BugPriority `json:"priority"`
}
