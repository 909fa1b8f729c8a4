package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// LookupRepository resolves display names for the entities documents attach
// to. The CRUD for these tables belongs to other parts of the platform; the
// document flows only read names for notification text.
type LookupRepository struct {
	db *sqlx.DB
}

// NewLookupRepository constructs the repository.
func NewLookupRepository(db *sqlx.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// UserFullName returns the full name of the user with the given id.
func (r *LookupRepository) UserFullName(ctx context.Context, id string) (string, error) {
	var name string
	if err := r.db.GetContext(ctx, &name, `SELECT full_name FROM users WHERE id = $1`, id); err != nil {
		return "", err
	}
	return name, nil
}

// CourseName returns the name of the course with the given id.
func (r *LookupRepository) CourseName(ctx context.Context, id int64) (string, error) {
	var name string
	if err := r.db.GetContext(ctx, &name, `SELECT name FROM courses WHERE id = $1`, id); err != nil {
		return "", err
	}
	return name, nil
}

// ModuleName returns the name of the module with the given id.
func (r *LookupRepository) ModuleName(ctx context.Context, id int64) (string, error) {
	var name string
	if err := r.db.GetContext(ctx, &name, `SELECT name FROM modules WHERE id = $1`, id); err != nil {
		return "", err
	}
	return name, nil
}

// ActivityTitle returns the title of the activity with the given id.
func (r *LookupRepository) ActivityTitle(ctx context.Context, id int64) (string, error) {
	var title string
	if err := r.db.GetContext(ctx, &title, `SELECT title FROM activities WHERE id = $1`, id); err != nil {
		return "", err
	}
	return title, nil
}
