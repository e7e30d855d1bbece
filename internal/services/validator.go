package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"ideaboard-backend/internal/clients/textgen"
	"ideaboard-backend/internal/clients/videosearch"
	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/pkg/errs"
	"ideaboard-backend/internal/pkg/textutil"
	"ideaboard-backend/internal/repos"
	"ideaboard-backend/internal/sse"
	"ideaboard-backend/internal/types"
)

const (
	// validationTTL is how long a scored validation is reused before the
	// search is repeated.
	validationTTL = time.Hour

	searchResultLimit = 10

	// recentWindow and veryOldCutoff bound the recency buckets the score
	// branches on.
	recentWindow  = 3 * 30 * 24 * time.Hour
	veryOldCutoff = 12 * 30 * 24 * time.Hour

	// A small channel with outsized views signals demand the channel size
	// cannot explain.
	demandSubscriberCeiling = 20_000
	demandViewFloor         = 50_000

	flightTimeout = 90 * time.Second
	angleTimeout  = 90 * time.Second
)

// ValidatorService scores an idea's market saturation against the videos
// already published for the same topic, then drafts a differentiation angle.
type ValidatorService interface {
	Validate(ctx context.Context, profileKey string, id uuid.UUID, force bool) (*types.Idea, error)
}

type validatorService struct {
	db           *gorm.DB
	log          *logger.Logger
	ideaRepo     repos.IdeaRepo
	searchClient videosearch.Client
	textClient   textgen.Client
	inflight     *InFlightTracker
	notifier     Notifier
	group        singleflight.Group
}

func NewValidatorService(db *gorm.DB, log *logger.Logger, ideaRepo repos.IdeaRepo, searchClient videosearch.Client, textClient textgen.Client, inflight *InFlightTracker, notifier Notifier) ValidatorService {
	return &validatorService{
		db:           db,
		log:          log.With("service", "ValidatorService"),
		ideaRepo:     ideaRepo,
		searchClient: searchClient,
		textClient:   textClient,
		inflight:     inflight,
		notifier:     notifier,
	}
}

// highDemand reports whether one competing video shows the small-channel,
// big-views demand signal.
func highDemand(v types.CompetingVideo) bool {
	subs := textutil.ParseApproxCount(v.SubscriberCountText)
	views := textutil.ParseApproxCount(v.ViewCountText)
	return subs > 0 && subs < demandSubscriberCeiling && views > demandViewFloor
}

// newestPublishedText returns the relative-age text of the most recently
// published video, falling back to the first dated entry when publish
// times could not be resolved.
func newestPublishedText(videos []types.CompetingVideo) string {
	var (
		newest   *time.Time
		ageText  string
		fallback string
	)
	for _, v := range videos {
		if fallback == "" && v.PublishedText != "" {
			fallback = v.PublishedText
		}
		if v.PublishedAt == nil || v.PublishedText == "" {
			continue
		}
		if newest == nil || v.PublishedAt.After(*newest) {
			newest = v.PublishedAt
			ageText = v.PublishedText
		}
	}
	if ageText != "" {
		return ageText
	}
	return fallback
}

// summarize assembles the summary in a fixed order: count, the newest
// video's relative age when known, a demand note when any small channel is
// pulling outsized views, then the branch sentence.
func summarize(videos []types.CompetingVideo, demand int, branch string) string {
	count := len(videos)
	noun := "videos"
	if count == 1 {
		noun = "video"
	}

	var extras []string
	if age := newestPublishedText(videos); age != "" {
		extras = append(extras, "newest "+age)
	}
	switch {
	case demand == 1:
		extras = append(extras, "1 high-demand signal")
	case demand > 1:
		extras = append(extras, fmt.Sprintf("%d high-demand signals", demand))
	}

	s := fmt.Sprintf("%d competing %s", count, noun)
	if len(extras) > 0 {
		s += " (" + strings.Join(extras, ", ") + ")"
	}
	return s + "; " + branch
}

// Score maps a competitor list to a saturation level and a one-line summary.
// It is pure: the clock comes in as an argument and nothing is mutated.
func Score(videos []types.CompetingVideo, now time.Time) (types.Saturation, string) {
	count := len(videos)
	if count == 0 {
		return types.SaturationHigh, "No direct competition found; strong untapped potential."
	}

	recent, veryOld, demand := 0, 0, 0
	for _, v := range videos {
		if v.PublishedAt != nil {
			age := now.Sub(*v.PublishedAt)
			if age <= recentWindow {
				recent++
			}
			if age > veryOldCutoff {
				veryOld++
			}
		}
		if highDemand(v) {
			demand++
		}
	}

	var (
		sat    types.Saturation
		branch string
	)
	switch {
	case count <= 3:
		branch = "limited direct competition."
		if recent == 0 || demand > 0 {
			sat = types.SaturationHigh
		} else {
			sat = types.SaturationMedium
		}
	case count <= 7:
		branch = "moderate competition."
		if (recent <= 1 && veryOld*2 >= count) || demand > 0 {
			sat = types.SaturationMedium
		} else {
			sat = types.SaturationLow
		}
	default:
		if demand >= 2 {
			sat = types.SaturationMedium
			branch = "significant competition but proven demand."
		} else {
			sat = types.SaturationLow
			branch = "significant competition."
		}
	}
	return sat, summarize(videos, demand, branch)
}

// fresh reports whether the idea's previous validation is still within the
// reuse window and complete enough to serve as-is.
func fresh(idea *types.Idea, now time.Time) bool {
	return idea.Saturation.Scored() &&
		idea.CompetitiveAngle != "" &&
		idea.ValidatedAt != nil &&
		now.Sub(*idea.ValidatedAt) < validationTTL
}

func (s *validatorService) Validate(ctx context.Context, profileKey string, id uuid.UUID, force bool) (*types.Idea, error) {
	idea, err := s.ideaRepo.GetByID(ctx, nil, profileKey, id)
	if err != nil {
		return nil, err
	}
	if !enrichable(idea.Status) {
		return nil, fmt.Errorf("%w: validation is only offered for new or prioritized ideas", errs.ErrInvalidArgument)
	}
	if !force && fresh(idea, time.Now()) {
		return idea, nil
	}

	key := profileKey + "/" + id.String()
	result, err, _ := s.group.Do(key, func() (any, error) {
		// Deduped followers share this flight, so it runs on its own
		// deadline rather than the first caller's request context.
		flightCtx, cancel := context.WithTimeout(context.Background(), flightTimeout)
		defer cancel()
		return s.validate(flightCtx, profileKey, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*types.Idea), nil
}

func (s *validatorService) validate(ctx context.Context, profileKey string, id uuid.UUID) (*types.Idea, error) {
	if !s.inflight.Begin(id, CapabilityValidate) {
		return nil, fmt.Errorf("%w: validation already running for this idea", errs.ErrInvalidArgument)
	}
	defer s.inflight.End(id, CapabilityValidate)
	s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentStarted, enrichmentEvent(id, CapabilityValidate, ""))

	idea, err := s.ideaRepo.GetByID(ctx, nil, profileKey, id)
	if err != nil {
		return nil, err
	}

	videos, err := s.searchClient.Search(ctx, idea.Text, searchResultLimit)
	if err != nil {
		s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentFailed, enrichmentEvent(id, CapabilityValidate, err.Error()))
		return s.persistFailure(ctx, profileKey, id, err)
	}

	saturation, summary := Score(videos, time.Now())
	raw, err := json.Marshal(videos)
	if err != nil {
		return nil, err
	}

	scored, err := s.persist(ctx, profileKey, id, func(fresh *types.Idea) {
		now := time.Now()
		fresh.Saturation = saturation
		fresh.SaturationSummary = summary
		fresh.CompetingVideos = raw
		fresh.CompetitiveAngle = ""
		fresh.ValidatedAt = &now
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, profileKey, sse.EventValidationScored, scored)

	// The differentiation angle needs another model round trip; it lands
	// asynchronously so the score is not held hostage to it.
	go s.fetchAngle(profileKey, id, scored.Text, videos)

	return scored, nil
}

func (s *validatorService) fetchAngle(profileKey string, id uuid.UUID, ideaText string, videos []types.CompetingVideo) {
	ctx, cancel := context.WithTimeout(context.Background(), angleTimeout)
	defer cancel()

	idea, err := s.ideaRepo.GetByID(ctx, nil, profileKey, id)
	if err != nil {
		s.log.Warn("Angle fetch skipped; idea reload failed", "idea", id, "error", err)
		return
	}

	reply, err := s.textClient.GenerateText(ctx, generationSystemPrompt, buildAnglePrompt(idea, videos),
		textgen.Options{Temperature: enrichTemperature})
	if err != nil {
		s.log.Warn("Angle fetch failed", "idea", id, "error", err)
		s.notifier.Notify(ctx, profileKey, sse.EventEnrichmentFailed, enrichmentEvent(id, CapabilityValidate, err.Error()))
		return
	}

	updated, err := s.persist(ctx, profileKey, id, func(fresh *types.Idea) {
		fresh.CompetitiveAngle = reply.Text
	})
	if err != nil {
		s.log.Warn("Angle persist failed", "idea", id, "error", err)
		return
	}
	s.notifier.Notify(ctx, profileKey, sse.EventValidationAngle, updated)
}

// persistFailure records an errored validation so the board shows the state
// instead of silently keeping a stale score.
func (s *validatorService) persistFailure(ctx context.Context, profileKey string, id uuid.UUID, cause error) (*types.Idea, error) {
	return s.persist(ctx, profileKey, id, func(fresh *types.Idea) {
		fresh.Saturation = types.SaturationError
		fresh.SaturationSummary = textutil.SanitizeUpstream(cause.Error())
		fresh.ValidatedAt = nil
	})
}

func (s *validatorService) persist(ctx context.Context, profileKey string, id uuid.UUID, mutate func(*types.Idea)) (*types.Idea, error) {
	return saveIdeaWithRetry(ctx, s.ideaRepo, profileKey, id, func(fresh *types.Idea) error {
		mutate(fresh)
		return nil
	})
}
