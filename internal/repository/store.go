package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/edu-resource-hub/internal/model"
)

// The store interfaces describe the repository surface the handler layer
// consumes. Handlers depend on these instead of the concrete repos so
// tests can substitute in-memory implementations; the *Repo types below
// remain the only production implementations.

// UserStore is the account persistence surface.
type UserStore interface {
	Create(ctx context.Context, username, email, password, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, error)
	ListUnapprovedTeachers(ctx context.Context, offset, limit int) ([]model.User, error)
	ApproveTeacher(ctx context.Context, id uint64) error
	SetBlocked(ctx context.Context, id uint64, blocked bool, reason *string) error
}

// TokenStore is the refresh-token persistence surface.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
	PurgeExpired(ctx context.Context, retention time.Duration) error
}

// ResourceStore is the resource persistence surface. DB exposes the pool
// so handlers can run fetch-authorize-mutate flows in one transaction via
// the Tx methods.
type ResourceStore interface {
	DB() *sql.DB
	Create(ctx context.Context, res *model.Resource) error
	GetByID(ctx context.Context, id uint64) (*model.Resource, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Resource, error)
	UpdateContentTx(ctx context.Context, tx *sql.Tx, res *model.Resource) error
	SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error
	SetFlagsTx(ctx context.Context, tx *sql.Tx, id uint64, hidden, problematic bool) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error
	IncrementViews(ctx context.Context, id uint64) error
	IncrementDownloads(ctx context.Context, id uint64) error
	ListByAuthor(ctx context.Context, authorID uint64, offset, limit int) ([]model.Resource, error)
	ListAdmin(ctx context.Context, f AdminFilter, offset, limit int) ([]model.Resource, int64, error)
	ListLikedBy(ctx context.Context, userID uint64, offset, limit int) ([]model.Resource, error)
	ListSavedBy(ctx context.Context, userID uint64, offset, limit int) ([]model.Resource, error)
	Search(ctx context.Context, q SearchQuery) ([]PublicResourceRow, int64, error)
}

// TopicStore is the topic persistence surface.
type TopicStore interface {
	Create(ctx context.Context, name string) (model.Topic, error)
	GetByID(ctx context.Context, id uint64) (model.Topic, error)
	List(ctx context.Context) ([]model.Topic, error)
	Delete(ctx context.Context, id uint64) error
}

// TagStore is the tag and tag-set persistence surface.
type TagStore interface {
	Create(ctx context.Context, name string) (model.Tag, error)
	GetByID(ctx context.Context, id uint64) (model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
	Attach(ctx context.Context, resourceID, tagID uint64) error
	Detach(ctx context.Context, resourceID, tagID uint64) error
	ForResource(ctx context.Context, resourceID uint64) ([]model.Tag, error)
}

// CommentStore is the comment persistence surface.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id uint64) (*model.Comment, error)
	ListForResource(ctx context.Context, resourceID uint64, offset, limit int) ([]CommentRow, error)
	Delete(ctx context.Context, id uint64) error
}

// EngagementStore is the likes/saves/ratings persistence surface.
type EngagementStore interface {
	Like(ctx context.Context, userID, resourceID uint64) error
	Unlike(ctx context.Context, userID, resourceID uint64) error
	Save(ctx context.Context, userID, resourceID uint64) error
	Unsave(ctx context.Context, userID, resourceID uint64) error
	LikeCount(ctx context.Context, resourceID uint64) (int64, error)
	UpsertRating(ctx context.Context, resourceID, userID uint64, value int) error
	RatingFor(ctx context.Context, resourceID uint64) (RatingSummary, error)
}

// StatsStore computes the admin dashboard snapshot.
type StatsStore interface {
	Collect(ctx context.Context, topN int) (Stats, error)
}

var (
	_ UserStore       = (*UserRepo)(nil)
	_ TokenStore      = (*TokenRepo)(nil)
	_ ResourceStore   = (*ResourceRepo)(nil)
	_ TopicStore      = (*TopicRepo)(nil)
	_ TagStore        = (*TagRepo)(nil)
	_ CommentStore    = (*CommentRepo)(nil)
	_ EngagementStore = (*EngagementRepo)(nil)
	_ StatsStore      = (*StatsRepo)(nil)
)
