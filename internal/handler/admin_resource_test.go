package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/iliyamo/edu-resource-hub/internal/config"
	"github.com/iliyamo/edu-resource-hub/internal/model"
	"github.com/iliyamo/edu-resource-hub/internal/repository"
)

func TestStatsSnapshot_AggregatesSeededRows(t *testing.T) {
	rows := []model.Resource{
		{ID: 1, Status: "APPROVED", ViewsCount: 10, DownloadsCount: 2},
		{ID: 2, Status: "APPROVED", IsHidden: true, ViewsCount: 5},
		{ID: 3, Status: "PENDING", IsProblematic: true, DownloadsCount: 1},
		{ID: 4, Status: "REJECTED"},
	}
	// Two tags tied on usage; the lower id must come first.
	tagUses := []repository.TagCount{
		{TagID: 2, Name: "go", Resources: 3},
		{TagID: 5, Name: "sql", Resources: 3},
		{TagID: 9, Name: "http", Resources: 1},
	}

	var gotTopN int
	stats := &mockStatsStore{
		collectFunc: func(ctx context.Context, topN int) (repository.Stats, error) {
			gotTopN = topN
			var s repository.Stats
			for _, r := range rows {
				s.Total++
				switch r.Status {
				case "APPROVED":
					s.Approved++
				case "PENDING":
					s.Pending++
				case "REJECTED":
					s.Rejected++
				}
				if r.IsHidden {
					s.Hidden++
				}
				if r.IsProblematic {
					s.Problematic++
				}
				s.ViewsTotal += int64(r.ViewsCount)
				s.DownloadsTotal += int64(r.DownloadsCount)
			}
			if topN < len(tagUses) {
				s.TopTags = tagUses[:topN]
			} else {
				s.TopTags = tagUses
			}
			return s, nil
		},
	}

	h := &AdminResourceHandler{
		Cfg:       config.Config{StatsTopTags: 10},
		Users:     &mockUserStore{getByIDFunc: userLookup(activeAdmin(1))},
		Resources: &mockResourceStore{},
		Stats:     stats,
	}

	c, rec := authedRequest(t, http.MethodGet, "/v1/admin/stats?top_tags=2", "", 1)
	if err := h.StatsSnapshot(c); err != nil {
		t.Fatalf("StatsSnapshot: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if gotTopN != 2 {
		t.Fatalf("top_tags override not applied: collect received %d, want 2", gotTopN)
	}

	var got repository.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Total != 4 || got.Approved != 2 || got.Pending != 1 || got.Rejected != 1 {
		t.Fatalf("status counts = %+v", got)
	}
	if got.Hidden != 1 || got.Problematic != 1 {
		t.Fatalf("flag counts = hidden %d problematic %d", got.Hidden, got.Problematic)
	}
	if got.ViewsTotal != 15 || got.DownloadsTotal != 3 {
		t.Fatalf("counter sums = views %d downloads %d", got.ViewsTotal, got.DownloadsTotal)
	}
	if len(got.TopTags) != 2 || got.TopTags[0].TagID != 2 || got.TopTags[1].TagID != 5 {
		t.Fatalf("top tags = %+v, want ids [2 5]", got.TopTags)
	}
}

func TestStatsSnapshot_NonAdminForbidden(t *testing.T) {
	h := &AdminResourceHandler{
		Cfg:       config.Config{StatsTopTags: 10},
		Users:     &mockUserStore{getByIDFunc: userLookup(activeStudent(7))},
		Resources: &mockResourceStore{},
		Stats:     &mockStatsStore{},
	}

	c, rec := authedRequest(t, http.MethodGet, "/v1/admin/stats", "", 7)
	if err := h.StatsSnapshot(c); err != nil {
		t.Fatalf("StatsSnapshot: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", rec.Code)
	}
}
