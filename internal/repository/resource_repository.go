// Package repository contains data access logic for resource operations.
// Mutating flows follow the fetch-authorize-mutate pattern: the handler
// begins a transaction from DB(), loads the row with GetByIDTx, consults the
// policy package, then applies one of the Tx writes before committing. That
// keeps two concurrent status changes or deletes on the same resource
// serialized by the database.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/edu-resource-hub/internal/model"
)

const resourceColumns = `id, title, description, content, url, resource_type, status,
	is_hidden, is_problematic, views_count, downloads_count, topic_id, author_id,
	created_at, updated_at`

// ResourceRepo manages persistence for resources.
type ResourceRepo struct {
	db *sql.DB
}

// NewResourceRepo constructs a ResourceRepo with the given DB handle.
func NewResourceRepo(db *sql.DB) *ResourceRepo { return &ResourceRepo{db: db} }

// DB exposes the underlying sql.DB. It allows handlers to begin
// transactions spanning multiple repositories.
func (r *ResourceRepo) DB() *sql.DB { return r.db }

func scanResource(row interface{ Scan(...any) error }) (model.Resource, error) {
	var res model.Resource
	err := row.Scan(&res.ID, &res.Title, &res.Description, &res.Content, &res.URL,
		&res.ResourceType, &res.Status, &res.IsHidden, &res.IsProblematic,
		&res.ViewsCount, &res.DownloadsCount, &res.TopicID, &res.AuthorID,
		&res.CreatedAt, &res.UpdatedAt)
	return res, err
}

// Create inserts a new resource and populates the generated ID and
// DB-default fields (status PENDING, counters, timestamps) on the struct.
// The caller supplies the author id from the authenticated principal; any
// client-supplied author is discarded before this point.
func (r *ResourceRepo) Create(ctx context.Context, res *model.Resource) error {
	const q = `INSERT INTO resources (title, description, content, url, resource_type, topic_id, author_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	out, err := r.db.ExecContext(ctx, q, res.Title, res.Description, res.Content,
		res.URL, res.ResourceType, res.TopicID, res.AuthorID)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	row := r.db.QueryRowContext(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE id = ?", res.ID)
	got, err := scanResource(row)
	if err != nil {
		return err
	}
	*res = got
	return nil
}

// GetByID retrieves a resource by its ID. It returns ErrResourceNotFound
// when there is no matching row.
func (r *ResourceRepo) GetByID(ctx context.Context, id uint64) (*model.Resource, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE id = ?", id)
	res, err := scanResource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByIDTx is GetByID inside the caller's transaction, so the row read for
// the authorization check is the row the subsequent write applies to.
func (r *ResourceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Resource, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE id = ?", id)
	res, err := scanResource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return &res, nil
}

// UpdateContentTx rewrites the author-editable fields. Status, flags and
// counters are untouched; author_id is immutable by omission.
func (r *ResourceRepo) UpdateContentTx(ctx context.Context, tx *sql.Tx, res *model.Resource) error {
	const q = `UPDATE resources
	           SET title = ?, description = ?, content = ?, url = ?, resource_type = ?, topic_id = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, res.Title, res.Description, res.Content,
		res.URL, res.ResourceType, res.TopicID, res.ID)
	return err
}

// SetStatusTx applies a moderation decision. Transition validity and the
// admin check are the policy package's responsibility.
func (r *ResourceRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE resources SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id)
	return err
}

// SetFlagsTx toggles the orthogonal moderation flags.
func (r *ResourceRepo) SetFlagsTx(ctx context.Context, tx *sql.Tx, id uint64, hidden, problematic bool) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE resources SET is_hidden = ?, is_problematic = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		hidden, problematic, id)
	return err
}

// DeleteTx removes a resource and its dependent rows (tag links, likes,
// saves, ratings, comments) inside the caller's transaction so no partial
// cleanup can occur.
func (r *ResourceRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	for _, q := range []string{
		"DELETE FROM resource_tags WHERE resource_id = ?",
		"DELETE FROM user_likes WHERE resource_id = ?",
		"DELETE FROM user_saves WHERE resource_id = ?",
		"DELETE FROM ratings WHERE resource_id = ?",
		"DELETE FROM comments WHERE resource_id = ?",
		"DELETE FROM resources WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

// IncrementViews bumps the view counter for a single-resource read. Not
// called on list operations.
func (r *ResourceRepo) IncrementViews(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE resources SET views_count = views_count + 1 WHERE id = ?", id)
	return err
}

// IncrementDownloads bumps the download counter for an explicit download.
func (r *ResourceRepo) IncrementDownloads(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE resources SET downloads_count = downloads_count + 1 WHERE id = ?", id)
	return err
}

func (r *ResourceRepo) queryList(ctx context.Context, q string, args ...any) ([]model.Resource, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListApproved returns a page of publicly visible resources: approved and
// not hidden, newest first, plus the total for pagination headers.
func (r *ResourceRepo) ListApproved(ctx context.Context, offset, limit int) ([]model.Resource, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM resources WHERE status = 'APPROVED' AND is_hidden = 0").Scan(&total); err != nil {
		return nil, 0, err
	}
	list, err := r.queryList(ctx,
		"SELECT "+resourceColumns+` FROM resources
		 WHERE status = 'APPROVED' AND is_hidden = 0
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	return list, total, err
}

// ListByAuthor returns a page of the author's own resources in every
// status, for the owner-scoped listing.
func (r *ResourceRepo) ListByAuthor(ctx context.Context, authorID uint64, offset, limit int) ([]model.Resource, error) {
	return r.queryList(ctx,
		"SELECT "+resourceColumns+` FROM resources
		 WHERE author_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		authorID, limit, offset)
}

// AdminFilter selects resources for the admin listing. Nil fields are not
// applied, so a zero filter returns everything.
type AdminFilter struct {
	Status      *string
	Hidden      *bool
	Problematic *bool
}

// ListAdmin returns a page of resources matching the filter, bypassing the
// public visibility predicate entirely.
func (r *ResourceRepo) ListAdmin(ctx context.Context, f AdminFilter, offset, limit int) ([]model.Resource, int64, error) {
	cond := "1=1"
	args := []any{}
	if f.Status != nil {
		cond += " AND status = ?"
		args = append(args, *f.Status)
	}
	if f.Hidden != nil {
		cond += " AND is_hidden = ?"
		args = append(args, *f.Hidden)
	}
	if f.Problematic != nil {
		cond += " AND is_problematic = ?"
		args = append(args, *f.Problematic)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM resources WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	argsData := append(append([]any{}, args...), limit, offset)
	list, err := r.queryList(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE "+cond+
			" ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?", argsData...)
	return list, total, err
}

// ListLikedBy returns the resources in a user's like set; ListSavedBy the
// same for the bookmark set. Both join through the membership tables so the
// access is an explicit query, never a lazily loaded collection.
func (r *ResourceRepo) ListLikedBy(ctx context.Context, userID uint64, offset, limit int) ([]model.Resource, error) {
	return r.queryList(ctx,
		`SELECT `+prefixedResourceColumns("r")+` FROM resources r
		 JOIN user_likes l ON l.resource_id = r.id
		 WHERE l.user_id = ? ORDER BY r.id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

func (r *ResourceRepo) ListSavedBy(ctx context.Context, userID uint64, offset, limit int) ([]model.Resource, error) {
	return r.queryList(ctx,
		`SELECT `+prefixedResourceColumns("r")+` FROM resources r
		 JOIN user_saves s ON s.resource_id = r.id
		 WHERE s.user_id = ? ORDER BY r.id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

func prefixedResourceColumns(alias string) string {
	return alias + `.id, ` + alias + `.title, ` + alias + `.description, ` + alias + `.content, ` +
		alias + `.url, ` + alias + `.resource_type, ` + alias + `.status, ` + alias + `.is_hidden, ` +
		alias + `.is_problematic, ` + alias + `.views_count, ` + alias + `.downloads_count, ` +
		alias + `.topic_id, ` + alias + `.author_id, ` + alias + `.created_at, ` + alias + `.updated_at`
}
