package repository

import (
	"context"
	"strings"
)

// SearchQuery defines filters & pagination for the public resource search.
type SearchQuery struct {
	Keyword  string
	TopicID  uint64
	Page     int
	PageSize int
}

// PublicResourceRow is the flattened row returned by public listings and
// search: resource fields joined with the topic name and author username so
// clients do not need follow-up lookups.
type PublicResourceRow struct {
	ID             uint64  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	URL            *string `json:"url,omitempty"`
	ResourceType   string  `json:"resource_type"`
	TopicID        uint64  `json:"topic_id"`
	Topic          string  `json:"topic"`
	AuthorID       uint64  `json:"author_id"`
	Author         string  `json:"author"`
	ViewsCount     uint64  `json:"views_count"`
	DownloadsCount uint64  `json:"downloads_count"`
	CreatedAt      string  `json:"created_at"`
}

// Search runs a case-insensitive title substring match over publicly
// visible resources (approved and not hidden) with COUNT + page queries,
// mirroring the general listing's predicate exactly so nothing pending,
// rejected or hidden can leak through search.
func (r *ResourceRepo) Search(ctx context.Context, q SearchQuery) ([]PublicResourceRow, int64, error) {
	where := []string{"res.status = 'APPROVED'", "res.is_hidden = 0"}
	args := []any{}

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		where = append(where, "LOWER(res.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}
	if q.TopicID != 0 {
		where = append(where, "res.topic_id = ?")
		args = append(args, q.TopicID)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM resources res
		JOIN topics t ON t.id = res.topic_id
		JOIN users u  ON u.id = res.author_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			res.id,
			res.title,
			res.description,
			res.url,
			res.resource_type,
			res.topic_id,
			t.name AS topic_name,
			res.author_id,
			u.username AS author_name,
			res.views_count,
			res.downloads_count,
			DATE_FORMAT(res.created_at, '%Y-%m-%d %T') AS created_at
		FROM resources res
		JOIN topics t ON t.id = res.topic_id
		JOIN users u  ON u.id = res.author_id
		WHERE ` + cond + `
		ORDER BY res.created_at DESC, res.id DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicResourceRow, 0, limit)
	for rows.Next() {
		var d PublicResourceRow
		if err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.Description,
			&d.URL,
			&d.ResourceType,
			&d.TopicID,
			&d.Topic,
			&d.AuthorID,
			&d.Author,
			&d.ViewsCount,
			&d.DownloadsCount,
			&d.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
