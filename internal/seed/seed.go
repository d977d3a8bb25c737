// Package seed loads the sample bugs used for demos and local development.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bugtrackr/bug-tracker/internal/domain"
	"github.com/bugtrackr/bug-tracker/internal/validation"
)

// Target is the subset of the bug service the seeder needs.
type Target interface {
	Create(ctx context.Context, input validation.BugInput) (*domain.BugReport, error)
	Purge(ctx context.Context) (int64, error)
}

// SampleBug is one seed record.
type SampleBug struct {
	Title       string
	Description string
	Status      domain.BugStatus
	Priority    domain.BugPriority
	Reporter    string
}

// SampleBugs are inserted in order, so the last one is listed first.
var SampleBugs = []SampleBug{
	{
		Title:       "Login button not responding",
		Description: "Users are unable to click the login button on the homepage. It appears to be a JavaScript error preventing the event handler from firing.",
		Status:      domain.BugStatusOpen,
		Priority:    domain.BugPriorityHigh,
		Reporter:    "John Doe",
	},
	{
		Title:       "Dashboard loading slowly",
		Description: "The dashboard takes over 10 seconds to load, especially when there are many bugs displayed. Need to optimize database queries.",
		Status:      domain.BugStatusInProgress,
		Priority:    domain.BugPriorityMedium,
		Reporter:    "Jane Smith",
	},
	{
		Title:       "Mobile layout broken",
		Description: "The bug list does not display properly on mobile devices. The columns are overlapping and text is cut off.",
		Status:      domain.BugStatusResolved,
		Priority:    domain.BugPriorityLow,
		Reporter:    "Alice Johnson",
	},
	{
		Title:       "Email notifications not sending",
		Description: "When a bug status is updated, email notifications are not being sent to the reporter. SMTP configuration might be incorrect.",
		Status:      domain.BugStatusOpen,
		Priority:    domain.BugPriorityHigh,
		Reporter:    "Bob Wilson",
	},
	{
		Title:       "Search functionality incomplete",
		Description: "The search bar only searches by title, but users expect to search by description and reporter as well.",
		Status:      domain.BugStatusInProgress,
		Priority:    domain.BugPriorityMedium,
		Reporter:    "Charlie Brown",
	},
}

// Run inserts SampleBugs through target, deleting existing bugs first when reset is set.
// It returns the created records.
func Run(ctx context.Context, target Target, reset bool, logger *zap.Logger) ([]domain.BugReport, error) {
	if reset {
		n, err := target.Purge(ctx)
		if err != nil {
			return nil, fmt.Errorf("clear bugs: %w", err)
		}
		logger.Info("cleared existing bugs", zap.Int64("count", n))
	}

	created := make([]domain.BugReport, 0, len(SampleBugs))
	for _, sample := range SampleBugs {
		bug, err := target.Create(ctx, sample.input())
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", sample.Title, err)
		}
		created = append(created, *bug)
	}

	logger.Info("sample bugs inserted", zap.Int("count", len(created)))
	return created, nil
}

func (s SampleBug) input() validation.BugInput {
	status := string(s.Status)
	priority := string(s.Priority)
	return validation.BugInput{
		Title:       &s.Title,
		Description: &s.Description,
		Status:      &status,
		Priority:    &priority,
		Reporter:    &s.Reporter,
	}
}
