package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/edu-resource-hub/internal/model"
)

// TopicRepo manages persistence for topics.
type TopicRepo struct {
	db *sql.DB
}

func NewTopicRepo(db *sql.DB) *TopicRepo { return &TopicRepo{db: db} }

// Create inserts a topic, mapping the unique-name violation to
// ErrNameExists.
func (r *TopicRepo) Create(ctx context.Context, name string) (model.Topic, error) {
	name = strings.TrimSpace(name)
	out, err := r.db.ExecContext(ctx, "INSERT INTO topics (name) VALUES (?)", name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Topic{}, ErrNameExists
		}
		return model.Topic{}, err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return model.Topic{}, err
	}
	return model.Topic{ID: uint64(id), Name: name}, nil
}

// GetByID fetches a topic, mapping sql.ErrNoRows to ErrTopicNotFound.
func (r *TopicRepo) GetByID(ctx context.Context, id uint64) (model.Topic, error) {
	var t model.Topic
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM topics WHERE id = ? LIMIT 1", id).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Topic{}, ErrTopicNotFound
	}
	return t, err
}

// List returns all topics ordered by name; the set is small.
func (r *TopicRepo) List(ctx context.Context) ([]model.Topic, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM topics ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a topic when no resources reference it. The check and the
// delete run in one transaction; a referenced topic reports the dependent
// count via the returned row count sentinel.
var ErrTopicInUse = errors.New("topic has resources")

func (r *TopicRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var one int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM topics WHERE id = ? LIMIT 1", id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTopicNotFound
		}
		return err
	}
	var dependents int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM resources WHERE topic_id = ?", id).Scan(&dependents); err != nil {
		return err
	}
	if dependents > 0 {
		return ErrTopicInUse
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM topics WHERE id = ?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// TagRepo manages persistence for tags and the resource_tags association.
type TagRepo struct {
	db *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{db: db} }

// Create inserts a tag, mapping the unique-name violation to ErrNameExists.
func (r *TagRepo) Create(ctx context.Context, name string) (model.Tag, error) {
	name = strings.TrimSpace(name)
	out, err := r.db.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Tag{}, ErrNameExists
		}
		return model.Tag{}, err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return model.Tag{}, err
	}
	return model.Tag{ID: uint64(id), Name: name}, nil
}

// GetByID fetches a tag, mapping sql.ErrNoRows to ErrTagNotFound.
func (r *TagRepo) GetByID(ctx context.Context, id uint64) (model.Tag, error) {
	var t model.Tag
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM tags WHERE id = ? LIMIT 1", id).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tag{}, ErrTagNotFound
	}
	return t, err
}

// List returns all tags ordered by name.
func (r *TagRepo) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM tags ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Attach adds a tag to a resource's tag set. The composite primary key on
// resource_tags plus INSERT IGNORE makes the operation idempotent; the set
// is mutated member by member, never replaced wholesale.
func (r *TagRepo) Attach(ctx context.Context, resourceID, tagID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO resource_tags (resource_id, tag_id) VALUES (?, ?)",
		resourceID, tagID)
	return err
}

// Detach removes a tag from a resource's tag set; absent rows are a no-op.
func (r *TagRepo) Detach(ctx context.Context, resourceID, tagID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM resource_tags WHERE resource_id = ? AND tag_id = ?",
		resourceID, tagID)
	return err
}

// ForResource returns the tags attached to a resource.
func (r *TagRepo) ForResource(ctx context.Context, resourceID uint64) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name FROM tags t
		 JOIN resource_tags rt ON rt.tag_id = t.id
		 WHERE rt.resource_id = ? ORDER BY t.name ASC`, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
