package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugtrackr/bug-tracker/internal/domain"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newBug(i int, status domain.BugStatus, priority domain.BugPriority) *domain.BugReport {
	return &domain.BugReport{
		Title:       fmt.Sprintf("Bug %02d", i),
		Description: "Something is broken",
		Status:      status,
		Priority:    priority,
		Reporter:    "Ann",
		CreatedAt:   baseTime.Add(time.Duration(i) * time.Minute),
	}
}

// runBugRepositoryContract exercises behavior every BugRepository backend must share.
func runBugRepositoryContract(t *testing.T, newRepo func(t *testing.T) BugRepository) {
	ctx := context.Background()

	t.Run("insert and find by id", func(t *testing.T) {
		repo := newRepo(t)
		bug := newBug(1, domain.BugStatusOpen, domain.BugPriorityHigh)
		require.NoError(t, repo.Insert(ctx, bug))
		require.NotEmpty(t, bug.ID)

		got, err := repo.FindByID(ctx, bug.ID)
		require.NoError(t, err)
		assert.Equal(t, bug.ID, got.ID)
		assert.Equal(t, "Bug 01", got.Title)
		assert.Equal(t, domain.BugStatusOpen, got.Status)
		assert.Equal(t, domain.BugPriorityHigh, got.Priority)
		assert.True(t, bug.CreatedAt.Equal(got.CreatedAt), "created_at round trip: %s vs %s", bug.CreatedAt, got.CreatedAt)
	})

	t.Run("unique ids", func(t *testing.T) {
		repo := newRepo(t)
		a := newBug(1, domain.BugStatusOpen, domain.BugPriorityLow)
		b := newBug(1, domain.BugStatusOpen, domain.BugPriorityLow)
		require.NoError(t, repo.Insert(ctx, a))
		require.NoError(t, repo.Insert(ctx, b))
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("find by unknown or malformed id", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.FindByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find orders newest first and paginates", func(t *testing.T) {
		repo := newRepo(t)
		for i := 1; i <= 15; i++ {
			require.NoError(t, repo.Insert(ctx, newBug(i, domain.BugStatusOpen, domain.BugPriorityMedium)))
		}

		first, err := repo.Find(ctx, BugFilter{}, 0, 10)
		require.NoError(t, err)
		require.Len(t, first, 10)
		assert.Equal(t, "Bug 15", first[0].Title)
		assert.Equal(t, "Bug 06", first[9].Title)

		second, err := repo.Find(ctx, BugFilter{}, 10, 10)
		require.NoError(t, err)
		require.Len(t, second, 5)
		assert.Equal(t, "Bug 05", second[0].Title)
		assert.Equal(t, "Bug 01", second[4].Title)

		beyond, err := repo.Find(ctx, BugFilter{}, 20, 10)
		require.NoError(t, err)
		assert.NotNil(t, beyond)
		assert.Empty(t, beyond)

		total, err := repo.Count(ctx, BugFilter{})
		require.NoError(t, err)
		assert.Equal(t, 15, total)
	})

	t.Run("ties on created_at are stable", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 4; i++ {
			require.NoError(t, repo.Insert(ctx, newBug(0, domain.BugStatusOpen, domain.BugPriorityMedium)))
		}
		a, err := repo.Find(ctx, BugFilter{}, 0, 2)
		require.NoError(t, err)
		b, err := repo.Find(ctx, BugFilter{}, 2, 2)
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, bug := range append(a, b...) {
			seen[bug.ID] = true
		}
		assert.Len(t, seen, 4)
	})

	t.Run("filters", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Insert(ctx, newBug(1, domain.BugStatusOpen, domain.BugPriorityHigh)))
		require.NoError(t, repo.Insert(ctx, newBug(2, domain.BugStatusOpen, domain.BugPriorityLow)))
		require.NoError(t, repo.Insert(ctx, newBug(3, domain.BugStatusResolved, domain.BugPriorityHigh)))

		open := domain.BugStatusOpen
		high := domain.BugPriorityHigh

		bugs, err := repo.Find(ctx, BugFilter{Status: &open}, 0, 10)
		require.NoError(t, err)
		assert.Len(t, bugs, 2)

		bugs, err = repo.Find(ctx, BugFilter{Status: &open, Priority: &high}, 0, 10)
		require.NoError(t, err)
		require.Len(t, bugs, 1)
		assert.Equal(t, "Bug 01", bugs[0].Title)

		total, err := repo.Count(ctx, BugFilter{Priority: &high})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("update applies only supplied fields", func(t *testing.T) {
		repo := newRepo(t)
		bug := newBug(1, domain.BugStatusOpen, domain.BugPriorityMedium)
		require.NoError(t, repo.Insert(ctx, bug))

		resolved := domain.BugStatusResolved
		updated, err := repo.Update(ctx, bug.ID, domain.BugPatch{Status: &resolved})
		require.NoError(t, err)
		assert.Equal(t, domain.BugStatusResolved, updated.Status)
		assert.Equal(t, bug.Title, updated.Title)
		assert.Equal(t, bug.Reporter, updated.Reporter)
		assert.Equal(t, domain.BugPriorityMedium, updated.Priority)
		assert.True(t, bug.CreatedAt.Equal(updated.CreatedAt))

		unchanged, err := repo.Update(ctx, bug.ID, domain.BugPatch{})
		require.NoError(t, err)
		assert.Equal(t, domain.BugStatusResolved, unchanged.Status)
	})

	t.Run("update missing bug", func(t *testing.T) {
		repo := newRepo(t)
		title := "x"
		_, err := repo.Update(ctx, "00000000-0000-0000-0000-000000000000", domain.BugPatch{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.Update(ctx, "garbage", domain.BugPatch{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete twice", func(t *testing.T) {
		repo := newRepo(t)
		bug := newBug(1, domain.BugStatusOpen, domain.BugPriorityMedium)
		require.NoError(t, repo.Insert(ctx, bug))

		require.NoError(t, repo.Delete(ctx, bug.ID))
		assert.ErrorIs(t, repo.Delete(ctx, bug.ID), ErrNotFound)
		_, err := repo.FindByID(ctx, bug.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete all", func(t *testing.T) {
		repo := newRepo(t)
		for i := 1; i <= 3; i++ {
			require.NoError(t, repo.Insert(ctx, newBug(i, domain.BugStatusOpen, domain.BugPriorityMedium)))
		}
		n, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		total, err := repo.Count(ctx, BugFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(ctx))
	})
}
