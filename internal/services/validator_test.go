package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"ideaboard-backend/internal/sse"
	"ideaboard-backend/internal/types"
)

func video(age time.Duration, views, subs string, now time.Time) types.CompetingVideo {
	published := now.Add(-age)
	return types.CompetingVideo{
		Title:               "How to do the thing",
		Channel:             "Some Channel",
		ViewCountText:       views,
		SubscriberCountText: subs,
		PublishedAt:         &published,
	}
}

const (
	month = 30 * 24 * time.Hour
	year  = 12 * month
)

func TestScoreNoCompetition(t *testing.T) {
	sat, summary := Score(nil, time.Now())
	if sat != types.SaturationHigh {
		t.Fatalf("expected high saturation, got %q", sat)
	}
	if !strings.Contains(summary, "untapped potential") {
		t.Fatalf("unexpected summary %q", summary)
	}
}

func TestScoreSmallFieldAllStale(t *testing.T) {
	now := time.Now()
	videos := []types.CompetingVideo{
		video(6*month, "1,200 views", "300 subscribers", now),
		video(8*month, "900 views", "5K subscribers", now),
	}
	sat, summary := Score(videos, now)
	if sat != types.SaturationHigh {
		t.Fatalf("expected high saturation with no recent uploads, got %q", sat)
	}
	if !strings.Contains(summary, "limited direct competition") {
		t.Fatalf("unexpected summary %q", summary)
	}
}

func TestScoreSmallFieldRecentUploads(t *testing.T) {
	now := time.Now()
	videos := []types.CompetingVideo{
		video(1*month, "1,200 views", "300 subscribers", now),
		video(2*month, "900 views", "5K subscribers", now),
	}
	sat, _ := Score(videos, now)
	if sat != types.SaturationMedium {
		t.Fatalf("expected medium saturation, got %q", sat)
	}
}

func TestScoreSmallFieldDemandSignalWins(t *testing.T) {
	now := time.Now()
	videos := []types.CompetingVideo{
		video(1*month, "120K views", "12K subscribers", now),
		video(2*month, "900 views", "5K subscribers", now),
	}
	sat, _ := Score(videos, now)
	if sat != types.SaturationHigh {
		t.Fatalf("expected high saturation on demand signal, got %q", sat)
	}
}

func TestScoreMidFieldMostlyVeryOld(t *testing.T) {
	now := time.Now()
	videos := []types.CompetingVideo{
		video(1*month, "2K views", "80K subscribers", now),
		video(2*year, "2K views", "80K subscribers", now),
		video(3*year, "2K views", "80K subscribers", now),
		video(2*year, "2K views", "80K subscribers", now),
		video(4*year, "2K views", "80K subscribers", now),
	}
	sat, summary := Score(videos, now)
	if sat != types.SaturationMedium {
		t.Fatalf("expected medium saturation, got %q", sat)
	}
	if !strings.Contains(summary, "moderate competition") {
		t.Fatalf("unexpected summary %q", summary)
	}
}

func TestScoreMidFieldActiveCompetition(t *testing.T) {
	now := time.Now()
	var videos []types.CompetingVideo
	for i := 0; i < 5; i++ {
		videos = append(videos, video(1*month, "2K views", "80K subscribers", now))
	}
	sat, _ := Score(videos, now)
	if sat != types.SaturationLow {
		t.Fatalf("expected low saturation, got %q", sat)
	}
}

func TestScoreCrowdedFieldProvenDemand(t *testing.T) {
	now := time.Now()
	var videos []types.CompetingVideo
	for i := 0; i < 8; i++ {
		videos = append(videos, video(1*month, "2K views", "80K subscribers", now))
	}
	videos = append(videos,
		video(1*month, "250K views", "8K subscribers", now),
		video(2*month, "1.2M views", "15K subscribers", now),
	)
	sat, summary := Score(videos, now)
	if sat != types.SaturationMedium {
		t.Fatalf("expected medium saturation with two demand signals, got %q", sat)
	}
	if !strings.Contains(summary, "proven demand") {
		t.Fatalf("unexpected summary %q", summary)
	}
}

func TestScoreCrowdedField(t *testing.T) {
	now := time.Now()
	var videos []types.CompetingVideo
	for i := 0; i < 10; i++ {
		videos = append(videos, video(1*month, "2K views", "80K subscribers", now))
	}
	sat, summary := Score(videos, now)
	if sat != types.SaturationLow {
		t.Fatalf("expected low saturation, got %q", sat)
	}
	if !strings.Contains(summary, "significant competition") {
		t.Fatalf("unexpected summary %q", summary)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	now := time.Now()
	videos := []types.CompetingVideo{
		video(1*month, "120K views", "12K subscribers", now),
		video(2*year, "900 views", "5K subscribers", now),
	}
	sat1, sum1 := Score(videos, now)
	sat2, sum2 := Score(videos, now)
	if sat1 != sat2 || sum1 != sum2 {
		t.Fatalf("score not deterministic: %q/%q vs %q/%q", sat1, sum1, sat2, sum2)
	}
}

func TestHighDemandIndicator(t *testing.T) {
	cases := []struct {
		views string
		subs  string
		want  bool
	}{
		{"120K views", "12K subscribers", true},
		{"50,001 views", "19,999 subscribers", true},
		{"120K views", "20K subscribers", false},
		{"50K views", "12K subscribers", false},
		{"120K views", "", false},
		{"1.2M views", "8.5K subscribers", true},
	}
	for _, tc := range cases {
		v := types.CompetingVideo{ViewCountText: tc.views, SubscriberCountText: tc.subs}
		if got := highDemand(v); got != tc.want {
			t.Fatalf("highDemand(%q, %q) = %v, want %v", tc.views, tc.subs, got, tc.want)
		}
	}
}

func TestValidationFreshness(t *testing.T) {
	now := time.Now()
	recent := now.Add(-30 * time.Minute)
	expired := now.Add(-61 * time.Minute)

	idea := &types.Idea{
		Saturation:       types.SaturationMedium,
		CompetitiveAngle: "Lean into the beginner mistakes nobody covers.",
		ValidatedAt:      &recent,
	}
	if !fresh(idea, now) {
		t.Fatalf("30-minute-old validation should be reused")
	}

	idea.ValidatedAt = &expired
	if fresh(idea, now) {
		t.Fatalf("61-minute-old validation should be refetched")
	}

	idea.ValidatedAt = &recent
	idea.CompetitiveAngle = ""
	if fresh(idea, now) {
		t.Fatalf("validation without an angle should be refetched")
	}

	idea.CompetitiveAngle = "angle"
	idea.Saturation = types.SaturationError
	if fresh(idea, now) {
		t.Fatalf("errored validation should be refetched")
	}
}

func TestScoreSummaryCarriesAgeAndDemandNote(t *testing.T) {
	now := time.Now()
	published := now.Add(-1 * month)
	videos := []types.CompetingVideo{{
		Title:               "How to do the thing",
		Channel:             "Some Channel",
		ViewCountText:       "250K views",
		SubscriberCountText: "8K subscribers",
		PublishedText:       "1 month ago",
		PublishedAt:         &published,
	}}

	sat, summary := Score(videos, now)
	if sat != types.SaturationHigh {
		t.Fatalf("expected high saturation, got %q", sat)
	}
	if !strings.Contains(summary, "1 competing video") {
		t.Fatalf("summary missing singular count: %q", summary)
	}
	if !strings.Contains(summary, "1 month ago") {
		t.Fatalf("summary missing newest video age: %q", summary)
	}
	if !strings.Contains(summary, "high-demand") {
		t.Fatalf("summary missing demand note: %q", summary)
	}
	if !strings.Contains(summary, "limited direct competition") {
		t.Fatalf("summary missing branch sentence: %q", summary)
	}
}

type fakeSearchClient struct {
	mu     sync.Mutex
	videos []types.CompetingVideo
	err    error
	calls  int
}

func (c *fakeSearchClient) Search(ctx context.Context, query string, limit int) ([]types.CompetingVideo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.videos, nil
}

func (c *fakeSearchClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestValidatorService(t *testing.T, search *fakeSearchClient, text *fakeTextClient) (ValidatorService, *fakeIdeaRepo, *recordingNotifier) {
	t.Helper()
	repo := newFakeIdeaRepo()
	notifier := &recordingNotifier{}
	svc := NewValidatorService(nil, testLogger(t), repo, search, text, NewInFlightTracker(), notifier)
	return svc, repo, notifier
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestValidateReusesFreshResult(t *testing.T) {
	search := &fakeSearchClient{}
	svc, repo, _ := newTestValidatorService(t, search, &fakeTextClient{})

	seeded := seedIdea(t, repo, "alice", "Editing a full video on your phone", types.StatusPrioritized)
	validated := time.Now().Add(-30 * time.Minute)
	stored := repo.store[seeded.ID]
	stored.Saturation = types.SaturationMedium
	stored.SaturationSummary = "2 competing videos; moderate competition."
	stored.CompetitiveAngle = "Lean into the beginner mistakes nobody covers."
	stored.ValidatedAt = &validated

	idea, err := svc.Validate(context.Background(), "alice", seeded.ID, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if search.callCount() != 0 {
		t.Fatalf("fresh result triggered %d search calls", search.callCount())
	}
	if idea.Saturation != types.SaturationMedium || idea.CompetitiveAngle == "" {
		t.Fatalf("cached result not returned intact: %+v", idea)
	}
}

func TestValidateRefetchesExpiredResult(t *testing.T) {
	now := time.Now()
	search := &fakeSearchClient{videos: []types.CompetingVideo{
		video(1*month, "1,200 views", "300 subscribers", now),
		video(2*month, "900 views", "5K subscribers", now),
	}}
	text := &fakeTextClient{reply: textgenReply("Lean into the mistakes the big channels skip.")}
	svc, repo, notifier := newTestValidatorService(t, search, text)

	seeded := seedIdea(t, repo, "alice", "Editing a full video on your phone", types.StatusPrioritized)
	validated := now.Add(-61 * time.Minute)
	stored := repo.store[seeded.ID]
	stored.Saturation = types.SaturationHigh
	stored.SaturationSummary = "stale"
	stored.CompetitiveAngle = "stale angle"
	stored.ValidatedAt = &validated

	idea, err := svc.Validate(context.Background(), "alice", seeded.ID, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if search.callCount() != 1 {
		t.Fatalf("expected 1 search call, got %d", search.callCount())
	}
	if idea.Saturation != types.SaturationMedium {
		t.Fatalf("score not recomputed: %q", idea.Saturation)
	}
	// Phase one clears the angle; the refreshed one lands asynchronously.
	if idea.CompetitiveAngle != "" {
		t.Fatalf("interim state still carries the stale angle: %q", idea.CompetitiveAngle)
	}
	if !notifier.saw(sse.EventValidationScored) {
		t.Fatalf("ValidationScored event not sent")
	}

	waitFor(t, "angle persist", func() bool {
		fresh, err := repo.GetByID(context.Background(), nil, "alice", seeded.ID)
		return err == nil && fresh.CompetitiveAngle == "Lean into the mistakes the big channels skip."
	})
	if !notifier.saw(sse.EventValidationAngle) {
		t.Fatalf("ValidationAngleReady event not sent")
	}
}

func TestValidateForceBypassesFreshResult(t *testing.T) {
	now := time.Now()
	search := &fakeSearchClient{videos: []types.CompetingVideo{
		video(1*month, "1,200 views", "300 subscribers", now),
	}}
	svc, repo, _ := newTestValidatorService(t, search, &fakeTextClient{reply: textgenReply("angle")})

	seeded := seedIdea(t, repo, "alice", "Editing a full video on your phone", types.StatusNew)
	validated := now.Add(-5 * time.Minute)
	stored := repo.store[seeded.ID]
	stored.Saturation = types.SaturationLow
	stored.CompetitiveAngle = "fresh angle"
	stored.ValidatedAt = &validated

	if _, err := svc.Validate(context.Background(), "alice", seeded.ID, true); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if search.callCount() != 1 {
		t.Fatalf("force did not refetch: %d search calls", search.callCount())
	}
}

func TestValidateSurvivesCallerCancellation(t *testing.T) {
	now := time.Now()
	search := &fakeSearchClient{videos: []types.CompetingVideo{
		video(1*month, "1,200 views", "300 subscribers", now),
	}}
	svc, repo, _ := newTestValidatorService(t, search, &fakeTextClient{reply: textgenReply("angle")})
	seeded := seedIdea(t, repo, "alice", "Editing a full video on your phone", types.StatusNew)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idea, err := svc.Validate(ctx, "alice", seeded.ID, false)
	if err != nil {
		t.Fatalf("Validate after caller cancel: %v", err)
	}
	if !idea.Saturation.Scored() {
		t.Fatalf("score not persisted: %q", idea.Saturation)
	}
}

func TestValidatePersistsUpstreamFailure(t *testing.T) {
	search := &fakeSearchClient{err: context.DeadlineExceeded}
	svc, repo, notifier := newTestValidatorService(t, search, &fakeTextClient{})
	seeded := seedIdea(t, repo, "alice", "Editing a full video on your phone", types.StatusNew)

	idea, err := svc.Validate(context.Background(), "alice", seeded.ID, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if idea.Saturation != types.SaturationError {
		t.Fatalf("failure not recorded: %q", idea.Saturation)
	}
	if idea.SaturationSummary == "" {
		t.Fatalf("failure summary missing")
	}
	if !notifier.saw(sse.EventEnrichmentFailed) {
		t.Fatalf("EnrichmentFailed event not sent")
	}
}
