package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bugtrackr/bug-tracker/internal/domain"
)

type sqliteBugRepository struct {
	db *sql.DB
}

// NewSQLiteBugRepository instantiates the modernc sqlite backed repository.
// Ids are random UUID strings and created_at is stored as unix nanoseconds.
func NewSQLiteBugRepository(db *sql.DB) BugRepository {
	return &sqliteBugRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *sqliteBugRepository) Insert(ctx context.Context, bug *domain.BugReport) error {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bugs (`+bugColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		bug.Title,
		bug.Description,
		string(bug.Status),
		string(bug.Priority),
		bug.Reporter,
		bug.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert bug: %w", err)
	}
	bug.ID = id
	return nil
}

func (r *sqliteBugRepository) FindByID(ctx context.Context, id string) (*domain.BugReport, error) {
	bug, err := scanSQLiteBug(r.db.QueryRowContext(ctx, `SELECT `+bugColumns+` FROM bugs WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

func (r *sqliteBugRepository) Find(ctx context.Context, filter BugFilter, skip, limit int) ([]domain.BugReport, error) {
	qb := NewQueryBuilder(Question)
	applyFilter(qb, filter)
	where := qb.WhereClause()
	page := qb.Paginate(limit, skip)

	query := fmt.Sprintf(`SELECT %s FROM bugs %s ORDER BY created_at DESC, id DESC %s`, bugColumns, where, page)
	rows, err := r.db.QueryContext(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("find bugs: %w", err)
	}
	defer rows.Close()

	result := []domain.BugReport{}
	for rows.Next() {
		bug, err := scanSQLiteBug(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, bug)
	}
	return result, rows.Err()
}

func (r *sqliteBugRepository) Count(ctx context.Context, filter BugFilter) (int, error) {
	qb := NewQueryBuilder(Question)
	applyFilter(qb, filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bugs `+qb.WhereClause(), qb.Args()...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count bugs: %w", err)
	}
	return total, nil
}

func (r *sqliteBugRepository) Update(ctx context.Context, id string, patch domain.BugPatch) (*domain.BugReport, error) {
	qb := NewQueryBuilder(Question)
	applyPatch(qb, patch)
	if !qb.HasAssignments() {
		return r.FindByID(ctx, id)
	}
	set := qb.SetClause()
	query := fmt.Sprintf(`UPDATE bugs %s WHERE id = %s RETURNING %s`, set, qb.Bind(id), bugColumns)

	bug, err := scanSQLiteBug(r.db.QueryRowContext(ctx, query, qb.Args()...))
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

func (r *sqliteBugRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bugs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bug: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bug: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteBugRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bugs`)
	if err != nil {
		return 0, fmt.Errorf("delete all bugs: %w", err)
	}
	return res.RowsAffected()
}

func (r *sqliteBugRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanSQLiteBug(row rowScanner) (domain.BugReport, error) {
	var (
		bug       domain.BugReport
		status    string
		priority  string
		createdAt int64
	)
	if err := row.Scan(
		&bug.ID,
		&bug.Title,
		&bug.Description,
		&status,
		&priority,
		&bug.Reporter,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BugReport{}, ErrNotFound
		}
		return domain.BugReport{}, fmt.Errorf("scan bug: %w", err)
	}
	bug.Status = domain.BugStatus(status)
	bug.Priority = domain.BugPriority(priority)
	bug.CreatedAt = time.Unix(0, createdAt).UTC()
	return bug, nil
}
