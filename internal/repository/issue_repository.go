package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/citycare/issue-service/internal/domain"
)

// IssueFilter narrows issue listings. Nil fields match everything.
type IssueFilter struct {
	UserID *string
	Status *domain.IssueStatus
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	ListWithOwner(ctx context.Context, filter IssueFilter) ([]domain.IssueWithOwner, error)
	// UpdateStatus swaps the status in one statement and reports the value it replaced.
	UpdateStatus(ctx context.Context, id string, status domain.IssueStatus) (*domain.StatusChange, error)
}

type issueRepository struct {
	db DBTX
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(db DBTX) IssueRepository {
	return &issueRepository{db: db}
}

const issueColumns = `i.id, i.user_id, i.problem, i.problem_type, i.location, i.description,
               i.status, i.date, i.created_at, i.updated_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (user_id, problem, problem_type, location, description, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, date, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		issue.UserID,
		issue.Problem,
		issue.ProblemType,
		issue.Location,
		issue.Description,
		issue.Status,
	).Scan(&issue.ID, &issue.Date, &issue.CreatedAt, &issue.UpdatedAt)
	return translatePgError(err)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues i WHERE i.id=$1`
	var issue domain.Issue
	if err := r.db.QueryRow(ctx, query, id).Scan(issueScanTargets(&issue)...); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	where, args := issueWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM issues i WHERE %s ORDER BY i.created_at DESC`, issueColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Issue{}
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(issueScanTargets(&issue)...); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

func (r *issueRepository) ListWithOwner(ctx context.Context, filter IssueFilter) ([]domain.IssueWithOwner, error) {
	where, args := issueWhere(filter)
	query := fmt.Sprintf(`
        SELECT %s, u.id, u.name, u.email
        FROM issues i JOIN users u ON u.id = i.user_id
        WHERE %s ORDER BY i.created_at DESC`, issueColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.IssueWithOwner{}
	for rows.Next() {
		var item domain.IssueWithOwner
		targets := append(issueScanTargets(&item.Issue), &item.Owner.ID, &item.Owner.Name, &item.Owner.Email)
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *issueRepository) UpdateStatus(ctx context.Context, id string, status domain.IssueStatus) (*domain.StatusChange, error) {
	query := `
        UPDATE issues i SET status=$2, updated_at=NOW()
        FROM (SELECT id, status FROM issues WHERE id=$1 FOR UPDATE) prev
        WHERE i.id = prev.id
        RETURNING prev.status, ` + issueColumns

	change := &domain.StatusChange{NewStatus: status}
	targets := append([]any{&change.OldStatus}, issueScanTargets(&change.Issue)...)
	if err := r.db.QueryRow(ctx, query, id, status).Scan(targets...); err != nil {
		return nil, err
	}
	return change, nil
}

func issueWhere(filter IssueFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("i.user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("i.status=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func issueScanTargets(issue *domain.Issue) []any {
	return []any{
		&issue.ID,
		&issue.UserID,
		&issue.Problem,
		&issue.ProblemType,
		&issue.Location,
		&issue.Description,
		&issue.Status,
		&issue.Date,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	}
}
