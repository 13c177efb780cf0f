package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/iliyamo/edu-resource-hub/internal/repository"
)

func TestDeleteTopic_WithResourcesConflicts(t *testing.T) {
	topics := &mockTopicStore{
		deleteFunc: func(ctx context.Context, id uint64) error {
			return repository.ErrTopicInUse
		},
	}
	h := &TaxonomyHandler{
		Users:     &mockUserStore{getByIDFunc: userLookup(activeAdmin(1))},
		Topics:    topics,
		Tags:      &mockTagStore{},
		Resources: &mockResourceStore{},
	}

	c, rec := authedRequest(t, http.MethodDelete, "/v1/admin/topics/3", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.DeleteTopic(c); err != nil {
		t.Fatalf("DeleteTopic: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "conflict" {
		t.Fatalf("error = %q, want the conflict mapping", body["error"])
	}
}

func TestDeleteTopic_Missing(t *testing.T) {
	topics := &mockTopicStore{
		deleteFunc: func(ctx context.Context, id uint64) error {
			return repository.ErrTopicNotFound
		},
	}
	h := &TaxonomyHandler{
		Users:     &mockUserStore{getByIDFunc: userLookup(activeAdmin(1))},
		Topics:    topics,
		Tags:      &mockTagStore{},
		Resources: &mockResourceStore{},
	}

	c, rec := authedRequest(t, http.MethodDelete, "/v1/admin/topics/99", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("99")
	if err := h.DeleteTopic(c); err != nil {
		t.Fatalf("DeleteTopic: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}
