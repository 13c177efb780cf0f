package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iliyamo/edu-resource-hub/internal/model"
	"github.com/iliyamo/edu-resource-hub/internal/repository"
)

type engagementKey struct {
	userID     uint64
	resourceID uint64
}

// newEngagementHandler wires an EngagementHandler over a student principal,
// one approved resource, and a stateful engagement mock whose membership
// and rating maps mimic the composite-key tables.
func newEngagementHandler(t *testing.T, engagement *mockEngagementStore, comments *mockCommentStore) *EngagementHandler {
	t.Helper()
	if comments == nil {
		comments = &mockCommentStore{}
	}
	return &EngagementHandler{
		Users:      &mockUserStore{getByIDFunc: userLookup(activeStudent(7))},
		Resources:  &mockResourceStore{getByIDFunc: resourceLookup(approvedResource(5, 2))},
		Engagement: engagement,
		Comments:   comments,
	}
}

func TestLikeUnlike_Idempotent(t *testing.T) {
	likes := map[engagementKey]struct{}{}
	engagement := &mockEngagementStore{
		likeFunc: func(ctx context.Context, userID, resourceID uint64) error {
			likes[engagementKey{userID, resourceID}] = struct{}{}
			return nil
		},
		unlikeFunc: func(ctx context.Context, userID, resourceID uint64) error {
			delete(likes, engagementKey{userID, resourceID})
			return nil
		},
	}
	h := newEngagementHandler(t, engagement, nil)

	like := func() int {
		c, rec := authedRequest(t, http.MethodPost, "/v1/resources/5/like", "", 7)
		c.SetParamNames("id")
		c.SetParamValues("5")
		if err := h.Like(c); err != nil {
			t.Fatalf("Like: %v", err)
		}
		return rec.Code
	}
	unlike := func() int {
		c, rec := authedRequest(t, http.MethodDelete, "/v1/resources/5/like", "", 7)
		c.SetParamNames("id")
		c.SetParamValues("5")
		if err := h.Unlike(c); err != nil {
			t.Fatalf("Unlike: %v", err)
		}
		return rec.Code
	}

	if code := like(); code != http.StatusNoContent {
		t.Fatalf("first like: status %d", code)
	}
	if code := like(); code != http.StatusNoContent {
		t.Fatalf("repeated like: status %d", code)
	}
	if len(likes) != 1 {
		t.Fatalf("expected one membership row after two likes, got %d", len(likes))
	}

	if code := unlike(); code != http.StatusNoContent {
		t.Fatalf("unlike: status %d", code)
	}
	if code := unlike(); code != http.StatusNoContent {
		t.Fatalf("unlike of absent row: status %d", code)
	}
	if len(likes) != 0 {
		t.Fatalf("expected empty like set, got %d rows", len(likes))
	}
}

func TestSaveUnsave_Idempotent(t *testing.T) {
	saves := map[engagementKey]struct{}{}
	engagement := &mockEngagementStore{
		saveFunc: func(ctx context.Context, userID, resourceID uint64) error {
			saves[engagementKey{userID, resourceID}] = struct{}{}
			return nil
		},
		unsaveFunc: func(ctx context.Context, userID, resourceID uint64) error {
			delete(saves, engagementKey{userID, resourceID})
			return nil
		},
	}
	h := newEngagementHandler(t, engagement, nil)

	for i := 0; i < 2; i++ {
		c, rec := authedRequest(t, http.MethodPost, "/v1/resources/5/save", "", 7)
		c.SetParamNames("id")
		c.SetParamValues("5")
		if err := h.Save(c); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if rec.Code != http.StatusNoContent {
			t.Fatalf("save %d: status %d", i, rec.Code)
		}
	}
	if len(saves) != 1 {
		t.Fatalf("expected one bookmark row after two saves, got %d", len(saves))
	}

	c, rec := authedRequest(t, http.MethodDelete, "/v1/resources/5/save", "", 7)
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Unsave(c); err != nil {
		t.Fatalf("Unsave: %v", err)
	}
	if rec.Code != http.StatusNoContent || len(saves) != 0 {
		t.Fatalf("unsave: status %d, %d rows left", rec.Code, len(saves))
	}
}

func TestRate_SecondRatingOverwritesFirst(t *testing.T) {
	ratings := map[engagementKey]int{}
	engagement := &mockEngagementStore{
		upsertRatingFunc: func(ctx context.Context, resourceID, userID uint64, value int) error {
			ratings[engagementKey{userID, resourceID}] = value
			return nil
		},
		ratingForFunc: func(ctx context.Context, resourceID uint64) (repository.RatingSummary, error) {
			var sum, n int
			for k, v := range ratings {
				if k.resourceID == resourceID {
					sum += v
					n++
				}
			}
			s := repository.RatingSummary{Count: int64(n)}
			if n > 0 {
				s.Average = float64(sum) / float64(n)
			}
			return s, nil
		},
	}
	h := newEngagementHandler(t, engagement, nil)

	rate := func(body string) *httptest.ResponseRecorder {
		c, rec := authedRequest(t, http.MethodPut, "/v1/resources/5/rating", body, 7)
		c.SetParamNames("id")
		c.SetParamValues("5")
		if err := h.Rate(c); err != nil {
			t.Fatalf("Rate: %v", err)
		}
		return rec
	}

	if rec := rate(`{"value":2}`); rec.Code != http.StatusOK {
		t.Fatalf("first rating: status %d", rec.Code)
	}
	rec := rate(`{"value":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("second rating: status %d", rec.Code)
	}

	if len(ratings) != 1 {
		t.Fatalf("expected a single rating row after re-rating, got %d", len(ratings))
	}
	if got := ratings[engagementKey{7, 5}]; got != 4 {
		t.Fatalf("stored rating = %d, want 4 (latest value)", got)
	}

	var resp struct {
		Value  int                      `json:"value"`
		Rating repository.RatingSummary `json:"rating"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Rating.Count != 1 || resp.Rating.Average != 4 {
		t.Fatalf("summary = %+v, want count 1 average 4", resp.Rating)
	}
}

func TestDeleteComment_RemovedRowIsGone(t *testing.T) {
	comments := map[uint64]model.Comment{}
	var nextID uint64
	store := &mockCommentStore{
		createFunc: func(ctx context.Context, cm *model.Comment) error {
			nextID++
			cm.ID = nextID
			comments[cm.ID] = *cm
			return nil
		},
		getByIDFunc: func(ctx context.Context, id uint64) (*model.Comment, error) {
			cm, ok := comments[id]
			if !ok {
				return nil, repository.ErrCommentNotFound
			}
			out := cm
			return &out, nil
		},
		deleteFunc: func(ctx context.Context, id uint64) error {
			delete(comments, id)
			return nil
		},
	}
	h := newEngagementHandler(t, &mockEngagementStore{}, store)

	c, rec := authedRequest(t, http.MethodPost, "/v1/resources/5/comments", `{"body":"clear walkthrough"}`, 7)
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.CreateComment(c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d", rec.Code)
	}
	if len(comments) != 1 {
		t.Fatalf("expected one comment row, got %d", len(comments))
	}

	deleteComment := func() int {
		c, rec := authedRequest(t, http.MethodDelete, "/v1/comments/1", "", 7)
		c.SetParamNames("comment_id")
		c.SetParamValues("1")
		if err := h.DeleteComment(c); err != nil {
			t.Fatalf("DeleteComment: %v", err)
		}
		return rec.Code
	}

	if code := deleteComment(); code != http.StatusNoContent {
		t.Fatalf("delete: status %d", code)
	}
	if len(comments) != 0 {
		t.Fatalf("comment row survived delete")
	}
	if code := deleteComment(); code != http.StatusNotFound {
		t.Fatalf("delete of removed comment: status %d, want 404", code)
	}
}
