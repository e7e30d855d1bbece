package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ideaboard-backend/internal/pkg/errs"
	"ideaboard-backend/internal/services"
	"ideaboard-backend/internal/types"
)

type stubIdeaService struct {
	idea *types.Idea
	err  error
}

func (s *stubIdeaService) Create(ctx context.Context, profileKey string, drafts []types.IdeaDraft) ([]*types.Idea, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*types.Idea{s.idea}, nil
}

func (s *stubIdeaService) Get(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error) {
	return s.idea, s.err
}

func (s *stubIdeaService) Update(ctx context.Context, profileKey string, id uuid.UUID, patch services.IdeaPatch) (*types.Idea, error) {
	return s.idea, s.err
}

func (s *stubIdeaService) Discard(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error) {
	return s.idea, s.err
}

func (s *stubIdeaService) SetStatus(ctx context.Context, profileKey string, id uuid.UUID, status types.IdeaStatus) (*types.Idea, error) {
	return s.idea, s.err
}

func (s *stubIdeaService) Board(ctx context.Context, profileKey string) (map[types.IdeaStatus][]*types.Idea, error) {
	if s.err != nil {
		return nil, s.err
	}
	board := map[types.IdeaStatus][]*types.Idea{}
	for _, status := range types.AllStatuses {
		board[status] = []*types.Idea{}
	}
	if s.idea != nil {
		board[s.idea.Status] = append(board[s.idea.Status], s.idea)
	}
	return board, nil
}

func newIdeaRouter(svc services.IdeaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewIdeaHandler(svc, services.NewInFlightTracker())
	router := gin.New()
	profile := router.Group("/api/profiles/:profile")
	profile.GET("/board", h.Board)
	profile.GET("/ideas/:id", h.Get)
	profile.POST("/ideas/:id/status", h.SetStatus)
	return router
}

func TestBoardEndpointReturnsAllColumns(t *testing.T) {
	idea := &types.Idea{ID: uuid.New(), Profile: "alice", Text: "A board test idea with enough text", Status: types.StatusNew}
	router := newIdeaRouter(&stubIdeaService{idea: idea})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profiles/alice/board", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Board map[string][]types.Idea `json:"board"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Board) != len(types.AllStatuses) {
		t.Fatalf("expected %d columns, got %d", len(types.AllStatuses), len(body.Board))
	}
	if len(body.Board["new"]) != 1 {
		t.Fatalf("new column = %v", body.Board["new"])
	}
}

func TestGetEndpointMapsNotFound(t *testing.T) {
	router := newIdeaRouter(&stubIdeaService{err: fmt.Errorf("idea: %w", errs.ErrNotFound)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profiles/alice/ideas/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetEndpointRejectsBadID(t *testing.T) {
	router := newIdeaRouter(&stubIdeaService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profiles/alice/ideas/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSetStatusEndpointMapsIllegalTransition(t *testing.T) {
	router := newIdeaRouter(&stubIdeaService{err: fmt.Errorf("%w: new -> video_made", errs.ErrIllegalTransition)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/profiles/alice/ideas/"+uuid.NewString()+"/status",
		strings.NewReader(`{"status":"video_made"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
