package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bugtrackr/bug-tracker/internal/domain"
)

type postgresBugRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBugRepository instantiates the pgx backed repository.
func NewPostgresBugRepository(pool *pgxpool.Pool) BugRepository {
	return &postgresBugRepository{pool: pool}
}

func (r *postgresBugRepository) Insert(ctx context.Context, bug *domain.BugReport) error {
	const query = `
        INSERT INTO bugs (title, description, status, priority, reporter, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query,
		bug.Title,
		bug.Description,
		string(bug.Status),
		string(bug.Priority),
		bug.Reporter,
		bug.CreatedAt,
	).Scan(&id); err != nil {
		return fmt.Errorf("insert bug: %w", err)
	}
	bug.ID = id.String()
	return nil
}

func (r *postgresBugRepository) FindByID(ctx context.Context, id string) (*domain.BugReport, error) {
	bugID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + bugColumns + ` FROM bugs WHERE id=$1`
	bug, err := scanPostgresBug(r.pool.QueryRow(ctx, query, bugID))
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

func (r *postgresBugRepository) Find(ctx context.Context, filter BugFilter, skip, limit int) ([]domain.BugReport, error) {
	qb := NewQueryBuilder(Dollar)
	applyFilter(qb, filter)
	where := qb.WhereClause()
	page := qb.Paginate(limit, skip)

	query := fmt.Sprintf(`SELECT %s FROM bugs %s ORDER BY created_at DESC, id DESC %s`, bugColumns, where, page)
	rows, err := r.pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("find bugs: %w", err)
	}
	defer rows.Close()

	result := []domain.BugReport{}
	for rows.Next() {
		bug, err := scanPostgresBug(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, bug)
	}
	return result, rows.Err()
}

func (r *postgresBugRepository) Count(ctx context.Context, filter BugFilter) (int, error) {
	qb := NewQueryBuilder(Dollar)
	applyFilter(qb, filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bugs `+qb.WhereClause(), qb.Args()...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count bugs: %w", err)
	}
	return total, nil
}

func (r *postgresBugRepository) Update(ctx context.Context, id string, patch domain.BugPatch) (*domain.BugReport, error) {
	bugID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	qb := NewQueryBuilder(Dollar)
	applyPatch(qb, patch)
	if !qb.HasAssignments() {
		return r.FindByID(ctx, id)
	}
	set := qb.SetClause()
	query := fmt.Sprintf(`UPDATE bugs %s WHERE id=%s RETURNING %s`, set, qb.Bind(bugID), bugColumns)

	bug, err := scanPostgresBug(r.pool.QueryRow(ctx, query, qb.Args()...))
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

func (r *postgresBugRepository) Delete(ctx context.Context, id string) error {
	bugID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM bugs WHERE id=$1`, bugID)
	if err != nil {
		return fmt.Errorf("delete bug: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresBugRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM bugs`)
	if err != nil {
		return 0, fmt.Errorf("delete all bugs: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresBugRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanPostgresBug(row pgx.Row) (domain.BugReport, error) {
	var (
		bug domain.BugReport
		id  uuid.UUID
	)
	if err := row.Scan(
		&id,
		&bug.Title,
		&bug.Description,
		&bug.Status,
		&bug.Priority,
		&bug.Reporter,
		&bug.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BugReport{}, ErrNotFound
		}
		return domain.BugReport{}, fmt.Errorf("scan bug: %w", err)
	}
	bug.ID = id.String()
	bug.CreatedAt = bug.CreatedAt.UTC()
	return bug, nil
}
