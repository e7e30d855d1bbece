package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/pkg/errs"
	"ideaboard-backend/internal/repos"
	"ideaboard-backend/internal/types"
)

// recentBucketCap bounds how many Video Made / Discarded cards the board
// keeps per column.
const recentBucketCap = 30

// IdeaPatch carries the mutable user-editable fields; nil means unchanged.
type IdeaPatch struct {
	Text      *string             `json:"text,omitempty"`
	Niche     *string             `json:"niche,omitempty"`
	Tool      *string             `json:"tool,omitempty"`
	Priority  *types.IdeaPriority `json:"priority,omitempty"`
	Rationale *string             `json:"rationale,omitempty"`
}

type IdeaService interface {
	Create(ctx context.Context, profileKey string, drafts []types.IdeaDraft) ([]*types.Idea, error)
	Get(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error)
	// Update merges the patch and always advances UpdatedAt. An unknown id
	// is a silent no-op returning (nil, nil), mirroring the board's
	// fire-and-forget card actions.
	Update(ctx context.Context, profileKey string, id uuid.UUID, patch IdeaPatch) (*types.Idea, error)
	Discard(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error)
	SetStatus(ctx context.Context, profileKey string, id uuid.UUID, status types.IdeaStatus) (*types.Idea, error)
	Board(ctx context.Context, profileKey string) (map[types.IdeaStatus][]*types.Idea, error)
}

type ideaService struct {
	db       *gorm.DB
	log      *logger.Logger
	ideaRepo repos.IdeaRepo
}

func NewIdeaService(db *gorm.DB, log *logger.Logger, ideaRepo repos.IdeaRepo) IdeaService {
	return &ideaService{
		db:       db,
		log:      log.With("service", "IdeaService"),
		ideaRepo: ideaRepo,
	}
}

func (s *ideaService) Create(ctx context.Context, profileKey string, drafts []types.IdeaDraft) ([]*types.Idea, error) {
	if profileKey == "" {
		return nil, fmt.Errorf("%w: profile required", errs.ErrInvalidArgument)
	}

	now := time.Now()
	seen := make(map[string]bool)
	accepted := make([]*types.Idea, 0, len(drafts))

	for _, draft := range drafts {
		text := strings.TrimSpace(draft.Text)
		n := len([]rune(text))
		if n <= 5 || n >= 200 {
			s.log.Debug("Rejecting draft outside length bounds", "len", n)
			continue
		}
		lower := strings.ToLower(text)
		if seen[lower] {
			continue
		}
		exists, err := s.ideaRepo.TextExists(ctx, nil, profileKey, text)
		if err != nil {
			return nil, err
		}
		if exists {
			s.log.Debug("Rejecting duplicate draft", "text", text)
			continue
		}
		seen[lower] = true

		idea := &types.Idea{
			ID:         uuid.New(),
			Profile:    profileKey,
			Text:       text,
			Niche:      strings.TrimSpace(draft.Niche),
			Tool:       strings.TrimSpace(draft.Tool),
			Provenance: strings.TrimSpace(draft.Provenance),
			Status:     types.StatusNew,
			Priority:   types.PriorityLow,
			Saturation: types.SaturationNotAssessed,
			Rationale:  strings.TrimSpace(draft.Rationale),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if len(draft.Keywords) > 0 {
			raw, err := json.Marshal(draft.Keywords)
			if err != nil {
				return nil, fmt.Errorf("marshal keywords: %w", err)
			}
			idea.Keywords = raw
		}
		accepted = append(accepted, idea)
	}

	if _, err := s.ideaRepo.Create(ctx, nil, accepted); err != nil {
		return nil, err
	}

	// Newest first, matching board order.
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].CreatedAt.After(accepted[j].CreatedAt)
	})
	return accepted, nil
}

func (s *ideaService) Get(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error) {
	return s.ideaRepo.GetByID(ctx, nil, profileKey, id)
}

func (s *ideaService) Update(ctx context.Context, profileKey string, id uuid.UUID, patch IdeaPatch) (*types.Idea, error) {
	idea, err := s.ideaRepo.GetByID(ctx, nil, profileKey, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Debug("Update on unknown idea is a no-op", "id", id)
			return nil, nil
		}
		return nil, err
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		n := len([]rune(text))
		if n <= 5 || n >= 200 {
			return nil, fmt.Errorf("%w: idea text must be 6-199 characters", errs.ErrInvalidArgument)
		}
		idea.Text = text
	}
	if patch.Niche != nil {
		idea.Niche = strings.TrimSpace(*patch.Niche)
	}
	if patch.Tool != nil {
		idea.Tool = strings.TrimSpace(*patch.Tool)
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", errs.ErrInvalidArgument, *patch.Priority)
		}
		idea.Priority = *patch.Priority
	}
	if patch.Rationale != nil {
		idea.Rationale = strings.TrimSpace(*patch.Rationale)
	}

	idea.UpdatedAt = time.Now()
	if err := s.ideaRepo.Save(ctx, nil, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

func (s *ideaService) Discard(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error) {
	return s.SetStatus(ctx, profileKey, id, types.StatusDiscarded)
}

// allowedTransitions is the status machine. Discarded can only be brought
// back by an explicit re-prioritize.
var allowedTransitions = map[types.IdeaStatus]map[types.IdeaStatus]bool{
	types.StatusNew:         {types.StatusPrioritized: true, types.StatusDiscarded: true},
	types.StatusPrioritized: {types.StatusInProgress: true, types.StatusVideoMade: true, types.StatusDiscarded: true},
	types.StatusInProgress:  {types.StatusVideoMade: true, types.StatusPrioritized: true, types.StatusDiscarded: true},
	types.StatusVideoMade:   {types.StatusPrioritized: true, types.StatusDiscarded: true},
	types.StatusDiscarded:   {types.StatusPrioritized: true},
}

func (s *ideaService) SetStatus(ctx context.Context, profileKey string, id uuid.UUID, status types.IdeaStatus) (*types.Idea, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errs.ErrInvalidArgument, status)
	}

	idea, err := s.ideaRepo.GetByID(ctx, nil, profileKey, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Debug("Status change on unknown idea is a no-op", "id", id)
			return nil, nil
		}
		return nil, err
	}

	if idea.Status == status {
		return idea, nil
	}
	if !allowedTransitions[idea.Status][status] {
		return nil, fmt.Errorf("%w: %s -> %s", errs.ErrIllegalTransition, idea.Status, status)
	}

	idea.Status = status
	idea.UpdatedAt = time.Now()
	if err := s.ideaRepo.Save(ctx, nil, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

func (s *ideaService) Board(ctx context.Context, profileKey string) (map[types.IdeaStatus][]*types.Idea, error) {
	all, err := s.ideaRepo.ListByProfile(ctx, nil, profileKey)
	if err != nil {
		return nil, err
	}

	board := make(map[types.IdeaStatus][]*types.Idea, len(types.AllStatuses))
	for _, status := range types.AllStatuses {
		board[status] = []*types.Idea{}
	}
	for _, idea := range all {
		board[idea.Status] = append(board[idea.Status], idea)
	}

	for _, status := range []types.IdeaStatus{types.StatusNew, types.StatusPrioritized, types.StatusInProgress} {
		bucket := board[status]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].CreatedAt.After(bucket[j].CreatedAt)
		})
	}
	for _, status := range []types.IdeaStatus{types.StatusVideoMade, types.StatusDiscarded} {
		bucket := board[status]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].UpdatedAt.After(bucket[j].UpdatedAt)
		})
		if len(bucket) > recentBucketCap {
			board[status] = bucket[:recentBucketCap]
		}
	}
	return board, nil
}

// enrichable reports whether AI enrichment actions are offered for a
// status. Only fresh and prioritized cards expose them.
func enrichable(status types.IdeaStatus) bool {
	return status == types.StatusNew || status == types.StatusPrioritized
}
