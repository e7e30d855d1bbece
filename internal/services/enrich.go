package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ideaboard-backend/internal/clients/textgen"
	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/pkg/errs"
	"ideaboard-backend/internal/repos"
	"ideaboard-backend/internal/sse"
	"ideaboard-backend/internal/types"
)

const (
	defaultScriptMinutes = 10
	maxScriptMinutes     = 60

	enrichTemperature = 0.7
	saveRetryAttempts = 3
)

// EnrichmentService runs the per-idea generative enrichments: keyword
// research, title suggestions and script drafting. Each op is guarded by the
// in-flight tracker so the same enrichment cannot run twice concurrently.
type EnrichmentService interface {
	Keywords(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error)
	Titles(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error)
	Script(ctx context.Context, profileKey string, id uuid.UUID, durationMinutes int) (*types.Idea, error)
}

type enrichmentService struct {
	db         *gorm.DB
	log        *logger.Logger
	ideaRepo   repos.IdeaRepo
	textClient textgen.Client
	inflight   *InFlightTracker
	notifier   Notifier
}

func NewEnrichmentService(db *gorm.DB, log *logger.Logger, ideaRepo repos.IdeaRepo, textClient textgen.Client, inflight *InFlightTracker, notifier Notifier) EnrichmentService {
	return &enrichmentService{
		db:         db,
		log:        log.With("service", "EnrichmentService"),
		ideaRepo:   ideaRepo,
		textClient: textClient,
		inflight:   inflight,
		notifier:   notifier,
	}
}

// fetchEnrichable loads the idea and checks the status gate shared by every
// enrichment.
func (s *enrichmentService) fetchEnrichable(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error) {
	idea, err := s.ideaRepo.GetByID(ctx, nil, profileKey, id)
	if err != nil {
		return nil, err
	}
	if !enrichable(idea.Status) {
		return nil, fmt.Errorf("%w: enrichment is only offered for new or prioritized ideas", errs.ErrInvalidArgument)
	}
	return idea, nil
}

// saveIdeaWithRetry applies mutate to a fresh copy of the idea and persists
// it, retrying on a concurrent-writer version conflict.
func saveIdeaWithRetry(ctx context.Context, repo repos.IdeaRepo, profileKey string, id uuid.UUID, mutate func(*types.Idea) error) (*types.Idea, error) {
	var lastErr error
	for attempt := 0; attempt < saveRetryAttempts; attempt++ {
		idea, err := repo.GetByID(ctx, nil, profileKey, id)
		if err != nil {
			return nil, err
		}
		if err := mutate(idea); err != nil {
			return nil, err
		}
		if err := repo.Save(ctx, nil, idea); err != nil {
			if errors.Is(err, errs.ErrStaleWrite) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return idea, nil
	}
	return nil, lastErr
}

func (s *enrichmentService) run(ctx context.Context, profileKey string, id uuid.UUID, cap Capability, call func(*types.Idea) (textgen.Reply, error), apply func(*types.Idea, textgen.Reply) error) (*types.Idea, error) {
	idea, err := s.fetchEnrichable(ctx, profileKey, id)
	if err != nil {
		return nil, err
	}
	if !s.inflight.Begin(id, cap) {
		return nil, fmt.Errorf("%w: %s already running for this idea", errs.ErrInvalidArgument, cap)
	}
	defer s.inflight.End(id, cap)
	s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentStarted, enrichmentEvent(id, cap, ""))

	reply, err := call(idea)
	if err != nil {
		s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentFailed, enrichmentEvent(id, cap, err.Error()))
		return nil, fmt.Errorf("%s: %w", cap, err)
	}

	updated, err := saveIdeaWithRetry(ctx, s.ideaRepo, profileKey, id, func(fresh *types.Idea) error {
		return apply(fresh, reply)
	})
	if err != nil {
		s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentFailed, enrichmentEvent(id, cap, err.Error()))
		return nil, err
	}

	s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentCompleted, enrichmentEvent(id, cap, ""))
	s.notifier.Notify(ctx, profileKey, sse.EventIdeaUpdated, updated)
	return updated, nil
}

func (s *enrichmentService) Keywords(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error) {
	return s.run(ctx, profileKey, id, CapabilityKeywords,
		func(idea *types.Idea) (textgen.Reply, error) {
			return s.textClient.GenerateText(ctx, generationSystemPrompt, buildKeywordPrompt(idea),
				textgen.Options{Temperature: enrichTemperature, EnableSearch: true})
		},
		func(idea *types.Idea, reply textgen.Reply) error {
			keywords := ParseKeywordReply(reply.Text)
			if len(keywords) == 0 {
				return fmt.Errorf("%w: reply contained no keywords", errs.ErrInvalidArgument)
			}
			researched := make([]types.ResearchedKeyword, 0, len(keywords))
			for i, kw := range keywords {
				entry := types.ResearchedKeyword{Keyword: kw}
				if i < len(reply.Citations) {
					entry.Source = reply.Citations[i].URL
				}
				researched = append(researched, entry)
			}
			raw, err := json.Marshal(researched)
			if err != nil {
				return err
			}
			idea.ResearchedKeywords = raw
			return nil
		})
}

func (s *enrichmentService) Titles(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error) {
	return s.run(ctx, profileKey, id, CapabilityTitles,
		func(idea *types.Idea) (textgen.Reply, error) {
			return s.textClient.GenerateText(ctx, generationSystemPrompt, buildTitlePrompt(idea),
				textgen.Options{Temperature: generateTemperature, TopP: generateTopP})
		},
		func(idea *types.Idea, reply textgen.Reply) error {
			parsed := ParseTitleReply(reply.Text)
			if len(parsed) == 0 {
				return fmt.Errorf("%w: reply contained no usable suggestions", errs.ErrInvalidArgument)
			}
			suggestions := make([]types.TitleSuggestion, 0, len(parsed))
			for _, p := range parsed {
				suggestions = append(suggestions, types.TitleSuggestion{Title: p.Title, Rationale: p.Rationale})
			}
			raw, err := json.Marshal(suggestions)
			if err != nil {
				return err
			}
			idea.TitleSuggestions = raw
			return nil
		})
}

func (s *enrichmentService) Script(ctx context.Context, profileKey string, id uuid.UUID, durationMinutes int) (*types.Idea, error) {
	if durationMinutes <= 0 {
		durationMinutes = defaultScriptMinutes
	}
	if durationMinutes > maxScriptMinutes {
		durationMinutes = maxScriptMinutes
	}
	return s.run(ctx, profileKey, id, CapabilityScript,
		func(idea *types.Idea) (textgen.Reply, error) {
			return s.textClient.GenerateText(ctx, generationSystemPrompt, buildScriptPrompt(idea, durationMinutes),
				textgen.Options{Temperature: enrichTemperature})
		},
		func(idea *types.Idea, reply textgen.Reply) error {
			parsed := ParseScriptReply(reply.Text)
			if parsed.Script == "" {
				return fmt.Errorf("%w: reply contained no script block", errs.ErrInvalidArgument)
			}
			idea.Script = parsed.Script
			idea.ProductionNotes = parsed.ProductionNotes
			idea.ScriptDurationMinutes = durationMinutes
			if len(parsed.Resources) > 0 {
				raw, err := json.Marshal(parsed.Resources)
				if err != nil {
					return err
				}
				idea.ResourceLinks = raw
			}
			return nil
		})
}
