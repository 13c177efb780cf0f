package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-resource-hub/internal/model"
	"github.com/iliyamo/edu-resource-hub/internal/repository"
)

var errNotImplemented = errors.New("not implemented")

// Mock stores: one func field per method, unset methods fail loudly so a
// test never silently exercises a path it did not stub.

type mockUserStore struct {
	createFunc                 func(ctx context.Context, username, email, password, role string, cost int) (uint64, error)
	getByEmailFunc             func(ctx context.Context, email string) (model.User, error)
	getByIDFunc                func(ctx context.Context, id uint64) (model.User, error)
	listFunc                   func(ctx context.Context, offset, limit int) ([]model.User, error)
	listUnapprovedTeachersFunc func(ctx context.Context, offset, limit int) ([]model.User, error)
	approveTeacherFunc         func(ctx context.Context, id uint64) error
	setBlockedFunc             func(ctx context.Context, id uint64, blocked bool, reason *string) error
}

func (m *mockUserStore) Create(ctx context.Context, username, email, password, role string, cost int) (uint64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, username, email, password, role, cost)
	}
	return 0, errNotImplemented
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return model.User{}, errNotImplemented
}

func (m *mockUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return model.User{}, errNotImplemented
}

func (m *mockUserStore) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, offset, limit)
	}
	return nil, errNotImplemented
}

func (m *mockUserStore) ListUnapprovedTeachers(ctx context.Context, offset, limit int) ([]model.User, error) {
	if m.listUnapprovedTeachersFunc != nil {
		return m.listUnapprovedTeachersFunc(ctx, offset, limit)
	}
	return nil, errNotImplemented
}

func (m *mockUserStore) ApproveTeacher(ctx context.Context, id uint64) error {
	if m.approveTeacherFunc != nil {
		return m.approveTeacherFunc(ctx, id)
	}
	return errNotImplemented
}

func (m *mockUserStore) SetBlocked(ctx context.Context, id uint64, blocked bool, reason *string) error {
	if m.setBlockedFunc != nil {
		return m.setBlockedFunc(ctx, id, blocked, reason)
	}
	return errNotImplemented
}

type mockResourceStore struct {
	createFunc             func(ctx context.Context, res *model.Resource) error
	getByIDFunc            func(ctx context.Context, id uint64) (*model.Resource, error)
	getByIDTxFunc          func(ctx context.Context, tx *sql.Tx, id uint64) (*model.Resource, error)
	updateContentTxFunc    func(ctx context.Context, tx *sql.Tx, res *model.Resource) error
	setStatusTxFunc        func(ctx context.Context, tx *sql.Tx, id uint64, status string) error
	setFlagsTxFunc         func(ctx context.Context, tx *sql.Tx, id uint64, hidden, problematic bool) error
	deleteTxFunc           func(ctx context.Context, tx *sql.Tx, id uint64) error
	incrementViewsFunc     func(ctx context.Context, id uint64) error
	incrementDownloadsFunc func(ctx context.Context, id uint64) error
	listByAuthorFunc       func(ctx context.Context, authorID uint64, offset, limit int) ([]model.Resource, error)
	listAdminFunc          func(ctx context.Context, f repository.AdminFilter, offset, limit int) ([]model.Resource, int64, error)
	listLikedByFunc        func(ctx context.Context, userID uint64, offset, limit int) ([]model.Resource, error)
	listSavedByFunc        func(ctx context.Context, userID uint64, offset, limit int) ([]model.Resource, error)
	searchFunc             func(ctx context.Context, q repository.SearchQuery) ([]repository.PublicResourceRow, int64, error)
}

// DB returns nil: mock-backed tests never run the transactional flows.
func (m *mockResourceStore) DB() *sql.DB { return nil }

func (m *mockResourceStore) Create(ctx context.Context, res *model.Resource) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, res)
	}
	return errNotImplemented
}

func (m *mockResourceStore) GetByID(ctx context.Context, id uint64) (*model.Resource, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockResourceStore) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Resource, error) {
	if m.getByIDTxFunc != nil {
		return m.getByIDTxFunc(ctx, tx, id)
	}
	return nil, errNotImplemented
}

func (m *mockResourceStore) UpdateContentTx(ctx context.Context, tx *sql.Tx, res *model.Resource) error {
	if m.updateContentTxFunc != nil {
		return m.updateContentTxFunc(ctx, tx, res)
	}
	return errNotImplemented
}

func (m *mockResourceStore) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	if m.setStatusTxFunc != nil {
		return m.setStatusTxFunc(ctx, tx, id, status)
	}
	return errNotImplemented
}

func (m *mockResourceStore) SetFlagsTx(ctx context.Context, tx *sql.Tx, id uint64, hidden, problematic bool) error {
	if m.setFlagsTxFunc != nil {
		return m.setFlagsTxFunc(ctx, tx, id, hidden, problematic)
	}
	return errNotImplemented
}

func (m *mockResourceStore) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	if m.deleteTxFunc != nil {
		return m.deleteTxFunc(ctx, tx, id)
	}
	return errNotImplemented
}

func (m *mockResourceStore) IncrementViews(ctx context.Context, id uint64) error {
	if m.incrementViewsFunc != nil {
		return m.incrementViewsFunc(ctx, id)
	}
	return errNotImplemented
}

func (m *mockResourceStore) IncrementDownloads(ctx context.Context, id uint64) error {
	if m.incrementDownloadsFunc != nil {
		return m.incrementDownloadsFunc(ctx, id)
	}
	return errNotImplemented
}

func (m *mockResourceStore) ListByAuthor(ctx context.Context, authorID uint64, offset, limit int) ([]model.Resource, error) {
	if m.listByAuthorFunc != nil {
		return m.listByAuthorFunc(ctx, authorID, offset, limit)
	}
	return nil, errNotImplemented
}

func (m *mockResourceStore) ListAdmin(ctx context.Context, f repository.AdminFilter, offset, limit int) ([]model.Resource, int64, error) {
	if m.listAdminFunc != nil {
		return m.listAdminFunc(ctx, f, offset, limit)
	}
	return nil, 0, errNotImplemented
}

func (m *mockResourceStore) ListLikedBy(ctx context.Context, userID uint64, offset, limit int) ([]model.Resource, error) {
	if m.listLikedByFunc != nil {
		return m.listLikedByFunc(ctx, userID, offset, limit)
	}
	return nil, errNotImplemented
}

func (m *mockResourceStore) ListSavedBy(ctx context.Context, userID uint64, offset, limit int) ([]model.Resource, error) {
	if m.listSavedByFunc != nil {
		return m.listSavedByFunc(ctx, userID, offset, limit)
	}
	return nil, errNotImplemented
}

func (m *mockResourceStore) Search(ctx context.Context, q repository.SearchQuery) ([]repository.PublicResourceRow, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, q)
	}
	return nil, 0, errNotImplemented
}

type mockTopicStore struct {
	createFunc  func(ctx context.Context, name string) (model.Topic, error)
	getByIDFunc func(ctx context.Context, id uint64) (model.Topic, error)
	listFunc    func(ctx context.Context) ([]model.Topic, error)
	deleteFunc  func(ctx context.Context, id uint64) error
}

func (m *mockTopicStore) Create(ctx context.Context, name string) (model.Topic, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, name)
	}
	return model.Topic{}, errNotImplemented
}

func (m *mockTopicStore) GetByID(ctx context.Context, id uint64) (model.Topic, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return model.Topic{}, errNotImplemented
}

func (m *mockTopicStore) List(ctx context.Context) ([]model.Topic, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockTopicStore) Delete(ctx context.Context, id uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errNotImplemented
}

type mockTagStore struct {
	createFunc      func(ctx context.Context, name string) (model.Tag, error)
	getByIDFunc     func(ctx context.Context, id uint64) (model.Tag, error)
	listFunc        func(ctx context.Context) ([]model.Tag, error)
	attachFunc      func(ctx context.Context, resourceID, tagID uint64) error
	detachFunc      func(ctx context.Context, resourceID, tagID uint64) error
	forResourceFunc func(ctx context.Context, resourceID uint64) ([]model.Tag, error)
}

func (m *mockTagStore) Create(ctx context.Context, name string) (model.Tag, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, name)
	}
	return model.Tag{}, errNotImplemented
}

func (m *mockTagStore) GetByID(ctx context.Context, id uint64) (model.Tag, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return model.Tag{}, errNotImplemented
}

func (m *mockTagStore) List(ctx context.Context) ([]model.Tag, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockTagStore) Attach(ctx context.Context, resourceID, tagID uint64) error {
	if m.attachFunc != nil {
		return m.attachFunc(ctx, resourceID, tagID)
	}
	return errNotImplemented
}

func (m *mockTagStore) Detach(ctx context.Context, resourceID, tagID uint64) error {
	if m.detachFunc != nil {
		return m.detachFunc(ctx, resourceID, tagID)
	}
	return errNotImplemented
}

func (m *mockTagStore) ForResource(ctx context.Context, resourceID uint64) ([]model.Tag, error) {
	if m.forResourceFunc != nil {
		return m.forResourceFunc(ctx, resourceID)
	}
	return nil, errNotImplemented
}

type mockCommentStore struct {
	createFunc          func(ctx context.Context, c *model.Comment) error
	getByIDFunc         func(ctx context.Context, id uint64) (*model.Comment, error)
	listForResourceFunc func(ctx context.Context, resourceID uint64, offset, limit int) ([]repository.CommentRow, error)
	deleteFunc          func(ctx context.Context, id uint64) error
}

func (m *mockCommentStore) Create(ctx context.Context, c *model.Comment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	return errNotImplemented
}

func (m *mockCommentStore) GetByID(ctx context.Context, id uint64) (*model.Comment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockCommentStore) ListForResource(ctx context.Context, resourceID uint64, offset, limit int) ([]repository.CommentRow, error) {
	if m.listForResourceFunc != nil {
		return m.listForResourceFunc(ctx, resourceID, offset, limit)
	}
	return nil, errNotImplemented
}

func (m *mockCommentStore) Delete(ctx context.Context, id uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errNotImplemented
}

type mockEngagementStore struct {
	likeFunc         func(ctx context.Context, userID, resourceID uint64) error
	unlikeFunc       func(ctx context.Context, userID, resourceID uint64) error
	saveFunc         func(ctx context.Context, userID, resourceID uint64) error
	unsaveFunc       func(ctx context.Context, userID, resourceID uint64) error
	likeCountFunc    func(ctx context.Context, resourceID uint64) (int64, error)
	upsertRatingFunc func(ctx context.Context, resourceID, userID uint64, value int) error
	ratingForFunc    func(ctx context.Context, resourceID uint64) (repository.RatingSummary, error)
}

func (m *mockEngagementStore) Like(ctx context.Context, userID, resourceID uint64) error {
	if m.likeFunc != nil {
		return m.likeFunc(ctx, userID, resourceID)
	}
	return errNotImplemented
}

func (m *mockEngagementStore) Unlike(ctx context.Context, userID, resourceID uint64) error {
	if m.unlikeFunc != nil {
		return m.unlikeFunc(ctx, userID, resourceID)
	}
	return errNotImplemented
}

func (m *mockEngagementStore) Save(ctx context.Context, userID, resourceID uint64) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, userID, resourceID)
	}
	return errNotImplemented
}

func (m *mockEngagementStore) Unsave(ctx context.Context, userID, resourceID uint64) error {
	if m.unsaveFunc != nil {
		return m.unsaveFunc(ctx, userID, resourceID)
	}
	return errNotImplemented
}

func (m *mockEngagementStore) LikeCount(ctx context.Context, resourceID uint64) (int64, error) {
	if m.likeCountFunc != nil {
		return m.likeCountFunc(ctx, resourceID)
	}
	return 0, errNotImplemented
}

func (m *mockEngagementStore) UpsertRating(ctx context.Context, resourceID, userID uint64, value int) error {
	if m.upsertRatingFunc != nil {
		return m.upsertRatingFunc(ctx, resourceID, userID, value)
	}
	return errNotImplemented
}

func (m *mockEngagementStore) RatingFor(ctx context.Context, resourceID uint64) (repository.RatingSummary, error) {
	if m.ratingForFunc != nil {
		return m.ratingForFunc(ctx, resourceID)
	}
	return repository.RatingSummary{}, errNotImplemented
}

type mockStatsStore struct {
	collectFunc func(ctx context.Context, topN int) (repository.Stats, error)
}

func (m *mockStatsStore) Collect(ctx context.Context, topN int) (repository.Stats, error) {
	if m.collectFunc != nil {
		return m.collectFunc(ctx, topN)
	}
	return repository.Stats{}, errNotImplemented
}

// ----- fixtures -----

func activeStudent(id uint64) model.User {
	return model.User{ID: id, Username: "student", Email: "student@example.com", Role: "STUDENT", IsActive: true}
}

func activeAdmin(id uint64) model.User {
	return model.User{ID: id, Username: "admin", Email: "admin@example.com", Role: "ADMIN", IsActive: true}
}

func approvedResource(id, authorID uint64) *model.Resource {
	return &model.Resource{
		ID: id, Title: "intro to goroutines", ResourceType: "ARTICLE",
		Status: "APPROVED", TopicID: 1, AuthorID: authorID,
	}
}

// userLookup builds a GetByID stub serving exactly one user row.
func userLookup(u model.User) func(ctx context.Context, id uint64) (model.User, error) {
	return func(ctx context.Context, id uint64) (model.User, error) {
		if id != u.ID {
			return model.User{}, repository.ErrUserNotFound
		}
		return u, nil
	}
}

// resourceLookup builds a GetByID stub serving exactly one resource row.
func resourceLookup(r *model.Resource) func(ctx context.Context, id uint64) (*model.Resource, error) {
	return func(ctx context.Context, id uint64) (*model.Resource, error) {
		if id != r.ID {
			return nil, repository.ErrResourceNotFound
		}
		out := *r
		return &out, nil
	}
}

// authedRequest builds an echo context for a handler that normally sits
// behind the JWT middleware, with the user id already resolved into the
// context the way JWTAuth leaves it.
func authedRequest(t *testing.T, method, target, body string, uid uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(uid))
	return c, rec
}
