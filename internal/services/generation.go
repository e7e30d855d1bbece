package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ideaboard-backend/internal/clients/textgen"
	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/pkg/errs"
	"ideaboard-backend/internal/sse"
	"ideaboard-backend/internal/types"
)

const (
	defaultGenerateCount = 5
	maxGenerateCount     = 10
	expandCount          = 3

	generateTemperature = 0.9
	generateTopP        = 0.95
)

type GenerateRequest struct {
	Niche        string `json:"niche"`
	Tool         string `json:"tool"`
	TutorialType string `json:"tutorial_type"`
	Refinement   string `json:"refinement"`
	Count        int    `json:"count"`
}

// GenerationResult is a generation batch plus the strategy note the model
// returned for it.
type GenerationResult struct {
	Strategy string        `json:"strategy,omitempty"`
	Ideas    []*types.Idea `json:"ideas"`
}

type GenerationService interface {
	Generate(ctx context.Context, profileKey string, req GenerateRequest) (*GenerationResult, error)
	Expand(ctx context.Context, profileKey string, id uuid.UUID) (*GenerationResult, error)
}

type generationService struct {
	db          *gorm.DB
	log         *logger.Logger
	ideaService IdeaService
	textClient  textgen.Client
	inflight    *InFlightTracker
	notifier    Notifier
}

func NewGenerationService(db *gorm.DB, log *logger.Logger, ideaService IdeaService, textClient textgen.Client, inflight *InFlightTracker, notifier Notifier) GenerationService {
	return &generationService{
		db:          db,
		log:         log.With("service", "GenerationService"),
		ideaService: ideaService,
		textClient:  textClient,
		inflight:    inflight,
		notifier:    notifier,
	}
}

func (s *generationService) Generate(ctx context.Context, profileKey string, req GenerateRequest) (*GenerationResult, error) {
	niche := strings.TrimSpace(req.Niche)
	tool := strings.TrimSpace(req.Tool)
	tutorialType := strings.TrimSpace(req.TutorialType)
	refinement := strings.TrimSpace(req.Refinement)
	if niche == "" && tool == "" && tutorialType == "" && refinement == "" {
		return nil, fmt.Errorf("%w: generation query is empty", errs.ErrInvalidArgument)
	}

	count := req.Count
	if count <= 0 {
		count = defaultGenerateCount
	}
	if count > maxGenerateCount {
		count = maxGenerateCount
	}

	reply, err := s.textClient.GenerateText(ctx,
		generationSystemPrompt,
		buildGenerationPrompt(niche, tool, tutorialType, refinement, count),
		textgen.Options{Temperature: generateTemperature, TopP: generateTopP},
	)
	if err != nil {
		return nil, fmt.Errorf("generate ideas: %w", err)
	}

	strategy, parsed := ParseIdeaReply(reply.Text)
	drafts := make([]types.IdeaDraft, 0, len(parsed))
	for _, p := range parsed {
		drafts = append(drafts, types.IdeaDraft{
			Text:       p.Title,
			Niche:      niche,
			Tool:       tool,
			Provenance: "AI Generated",
			Keywords:   p.Keywords,
			Rationale:  p.Rationale,
		})
	}

	ideas, err := s.ideaService.Create(ctx, profileKey, drafts)
	if err != nil {
		return nil, err
	}

	s.log.Info("Generated ideas", "profile", profileKey, "parsed", len(parsed), "accepted", len(ideas))
	s.notifier.Notify(ctx, profileKey, sse.EventIdeasCreated, map[string]any{"count": len(ideas)})

	return &GenerationResult{Strategy: strategy, Ideas: ideas}, nil
}

func (s *generationService) Expand(ctx context.Context, profileKey string, id uuid.UUID) (*GenerationResult, error) {
	idea, err := s.ideaService.Get(ctx, profileKey, id)
	if err != nil {
		return nil, err
	}
	if !enrichable(idea.Status) {
		return nil, fmt.Errorf("%w: expansion is only offered for new or prioritized ideas", errs.ErrInvalidArgument)
	}

	if !s.inflight.Begin(id, CapabilityExpand) {
		return nil, fmt.Errorf("%w: expansion already running for this idea", errs.ErrInvalidArgument)
	}
	defer s.inflight.End(id, CapabilityExpand)
	s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentStarted, enrichmentEvent(id, CapabilityExpand, ""))

	reply, err := s.textClient.GenerateText(ctx,
		generationSystemPrompt,
		buildExpansionPrompt(idea, expandCount),
		textgen.Options{Temperature: generateTemperature, TopP: generateTopP},
	)
	if err != nil {
		s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentFailed, enrichmentEvent(id, CapabilityExpand, err.Error()))
		return nil, fmt.Errorf("expand idea: %w", err)
	}

	_, parsed := ParseIdeaReply(reply.Text)
	drafts := make([]types.IdeaDraft, 0, len(parsed))
	for _, p := range parsed {
		drafts = append(drafts, types.IdeaDraft{
			Text:       p.Title,
			Niche:      idea.Niche,
			Tool:       idea.Tool,
			Provenance: fmt.Sprintf("Expanded from %s", idea.Text),
			Keywords:   p.Keywords,
			Rationale:  p.Rationale,
		})
	}

	ideas, err := s.ideaService.Create(ctx, profileKey, drafts)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentCompleted, enrichmentEvent(id, CapabilityExpand, ""))
	return &GenerationResult{Ideas: ideas}, nil
}

func enrichmentEvent(id uuid.UUID, cap Capability, errText string) map[string]any {
	data := map[string]any{"idea_id": id, "capability": cap}
	if errText != "" {
		data["error"] = errText
	}
	return data
}
