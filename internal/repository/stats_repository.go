package repository

import (
	"context"
	"database/sql"
)

// TagCount pairs a tag with the number of resources carrying it.
type TagCount struct {
	TagID     uint64 `json:"tag_id"`
	Name      string `json:"name"`
	Resources int64  `json:"resources"`
}

// Stats is the admin dashboard snapshot: moderation-state counts, flag
// counts, counter sums and the most used tags.
type Stats struct {
	Total          int64      `json:"total"`
	Approved       int64      `json:"approved"`
	Pending        int64      `json:"pending"`
	Rejected       int64      `json:"rejected"`
	Hidden         int64      `json:"hidden"`
	Problematic    int64      `json:"problematic"`
	ViewsTotal     int64      `json:"views_total"`
	DownloadsTotal int64      `json:"downloads_total"`
	TopTags        []TagCount `json:"top_tags"`
}

// StatsRepo computes aggregate statistics over resources and tags.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Collect gathers the snapshot inside a single read-only transaction so the
// counts are mutually consistent; exactness under concurrent writes beyond
// that single snapshot is not required. Top-tag ties break on tag id for a
// stable order.
func (r *StatsRepo) Collect(ctx context.Context, topN int) (Stats, error) {
	var s Stats
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return s, err
	}
	defer func() { _ = tx.Rollback() }()

	const countsQ = `SELECT
		COUNT(*),
		COALESCE(SUM(status = 'APPROVED'), 0),
		COALESCE(SUM(status = 'PENDING'), 0),
		COALESCE(SUM(status = 'REJECTED'), 0),
		COALESCE(SUM(is_hidden), 0),
		COALESCE(SUM(is_problematic), 0),
		COALESCE(SUM(views_count), 0),
		COALESCE(SUM(downloads_count), 0)
	FROM resources`
	if err := tx.QueryRowContext(ctx, countsQ).Scan(
		&s.Total, &s.Approved, &s.Pending, &s.Rejected,
		&s.Hidden, &s.Problematic, &s.ViewsTotal, &s.DownloadsTotal,
	); err != nil {
		return s, err
	}

	if topN < 1 {
		topN = 1
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT t.id, t.name, COUNT(rt.resource_id) AS uses
		 FROM tags t
		 JOIN resource_tags rt ON rt.tag_id = t.id
		 GROUP BY t.id, t.name
		 ORDER BY uses DESC, t.id ASC
		 LIMIT ?`, topN)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.TagID, &tc.Name, &tc.Resources); err != nil {
			return s, err
		}
		s.TopTags = append(s.TopTags, tc)
	}
	if err := rows.Err(); err != nil {
		return s, err
	}
	return s, tx.Commit()
}
