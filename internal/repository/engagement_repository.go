package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/edu-resource-hub/internal/model"
)

// EngagementRepo manages the per-user membership sets (likes, saves) and
// ratings on resources. Likes and saves are idempotent membership
// operations: INSERT IGNORE against the composite primary key makes the
// second like a no-op, and a bare DELETE makes unliking an unliked resource
// success rather than an error. Ratings use a single
// INSERT ... ON DUPLICATE KEY UPDATE keyed on (resource_id, user_id) so
// concurrent first-time ratings from the same user cannot produce two rows.
type EngagementRepo struct {
	db *sql.DB
}

func NewEngagementRepo(db *sql.DB) *EngagementRepo { return &EngagementRepo{db: db} }

// Like adds the resource to the user's like set; liking twice is a no-op.
func (r *EngagementRepo) Like(ctx context.Context, userID, resourceID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO user_likes (user_id, resource_id) VALUES (?, ?)",
		userID, resourceID)
	return err
}

// Unlike removes the membership; removing an absent row is still success.
func (r *EngagementRepo) Unlike(ctx context.Context, userID, resourceID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM user_likes WHERE user_id = ? AND resource_id = ?",
		userID, resourceID)
	return err
}

// Save and Unsave mirror Like/Unlike for the bookmark set.
func (r *EngagementRepo) Save(ctx context.Context, userID, resourceID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO user_saves (user_id, resource_id) VALUES (?, ?)",
		userID, resourceID)
	return err
}

func (r *EngagementRepo) Unsave(ctx context.Context, userID, resourceID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM user_saves WHERE user_id = ? AND resource_id = ?",
		userID, resourceID)
	return err
}

// LikeCount returns how many users have the resource in their like set.
func (r *EngagementRepo) LikeCount(ctx context.Context, resourceID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_likes WHERE resource_id = ?", resourceID).Scan(&n)
	return n, err
}

// UpsertRating writes the user's rating for a resource, overwriting any
// previous value. Range validation happens in the policy package before
// this call.
func (r *EngagementRepo) UpsertRating(ctx context.Context, resourceID, userID uint64, value int) error {
	const q = `INSERT INTO ratings (resource_id, user_id, value)
	           VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q, resourceID, userID, value)
	return err
}

// RatingSummary is the aggregate exposed on public resource pages.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// RatingFor returns the average and count of ratings for a resource. A
// resource with no ratings yields a zero summary, not an error.
func (r *EngagementRepo) RatingFor(ctx context.Context, resourceID uint64) (RatingSummary, error) {
	var s RatingSummary
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(value), 0), COUNT(*) FROM ratings WHERE resource_id = ?",
		resourceID).Scan(&s.Average, &s.Count)
	return s, err
}

// UserRating returns the calling user's own rating of a resource, or
// sql.ErrNoRows passed through as a zero value with found=false.
func (r *EngagementRepo) UserRating(ctx context.Context, resourceID, userID uint64) (model.Rating, bool, error) {
	var rt model.Rating
	err := r.db.QueryRowContext(ctx,
		`SELECT id, resource_id, user_id, value, created_at, updated_at
		 FROM ratings WHERE resource_id = ? AND user_id = ? LIMIT 1`,
		resourceID, userID).Scan(&rt.ID, &rt.ResourceID, &rt.UserID, &rt.Value, &rt.CreatedAt, &rt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rating{}, false, nil
	}
	if err != nil {
		return model.Rating{}, false, err
	}
	return rt, true, nil
}
