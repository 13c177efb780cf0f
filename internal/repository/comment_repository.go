package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/edu-resource-hub/internal/model"
)

// CommentRepo manages persistence for comments on resources.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

// Create inserts a comment and populates its generated ID and timestamp.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	out, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (resource_id, user_id, body) VALUES (?, ?, ?)",
		c.ResourceID, c.UserID, c.Body)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM comments WHERE id = ?", c.ID).Scan(&c.CreatedAt)
}

// GetByID fetches a comment, mapping sql.ErrNoRows to ErrCommentNotFound.
// Handlers fetch first so the author-or-admin check runs against the actual
// row before any delete.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var c model.Comment
	err := r.db.QueryRowContext(ctx,
		"SELECT id, resource_id, user_id, body, created_at FROM comments WHERE id = ? LIMIT 1",
		id).Scan(&c.ID, &c.ResourceID, &c.UserID, &c.Body, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForResource returns a page of comments, oldest first, joined with the
// author's username for display.
type CommentRow struct {
	ID         uint64 `json:"id"`
	ResourceID uint64 `json:"resource_id"`
	UserID     uint64 `json:"user_id"`
	Author     string `json:"author"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

func (r *CommentRepo) ListForResource(ctx context.Context, resourceID uint64, offset, limit int) ([]CommentRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.resource_id, c.user_id, u.username, c.body,
		        DATE_FORMAT(c.created_at, '%Y-%m-%d %T')
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.resource_id = ?
		 ORDER BY c.id ASC LIMIT ? OFFSET ?`,
		resourceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CommentRow
	for rows.Next() {
		var c CommentRow
		if err := rows.Scan(&c.ID, &c.ResourceID, &c.UserID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a comment by id. The authorization check happens before
// this call against the fetched row.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	return err
}
