package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ideaboard-backend/internal/clients/textgen"
	"ideaboard-backend/internal/pkg/errs"
	"ideaboard-backend/internal/sse"
	"ideaboard-backend/internal/types"
)

type fakeTextClient struct {
	mu    sync.Mutex
	reply textgen.Reply
	err   error
	calls int
	last  string
}

func (c *fakeTextClient) GenerateText(ctx context.Context, system, user string, opts textgen.Options) (textgen.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.last = user
	if c.err != nil {
		return textgen.Reply{}, c.err
	}
	return c.reply, nil
}

func (c *fakeTextClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *fakeTextClient) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func textgenReply(text string) textgen.Reply {
	return textgen.Reply{Text: text}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sse.Event
}

func (n *recordingNotifier) Notify(ctx context.Context, profileKey string, event sse.Event, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) saw(event sse.Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

func newTestGenerationService(t *testing.T, text *fakeTextClient) (GenerationService, *fakeIdeaRepo, *recordingNotifier) {
	t.Helper()
	repo := newFakeIdeaRepo()
	log := testLogger(t)
	notifier := &recordingNotifier{}
	ideaSvc := NewIdeaService(nil, log, repo)
	svc := NewGenerationService(nil, log, ideaSvc, text, NewInFlightTracker(), notifier)
	return svc, repo, notifier
}

func TestGenerateRejectsEmptyQuery(t *testing.T) {
	svc, _, _ := newTestGenerationService(t, &fakeTextClient{})

	_, err := svc.Generate(context.Background(), "alice", GenerateRequest{Niche: "  "})
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestGeneratePersistsParsedIdeas(t *testing.T) {
	text := &fakeTextClient{reply: textgen.Reply{Text: strings.Join([]string{
		"STRATEGY: Go after phone-first creators.",
		"IDEA: Editing a full video on your phone in one hour",
		"KEYWORDS: mobile editing, capcut",
		"RATIONALE: Phone-only workflows keep climbing.",
		"IDEA: Why your first ten videos should be terrible",
	}, "\n")}}
	svc, repo, notifier := newTestGenerationService(t, text)

	result, err := svc.Generate(context.Background(), "alice", GenerateRequest{Niche: "video editing", Tool: "CapCut"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Strategy != "Go after phone-first creators." {
		t.Fatalf("strategy = %q", result.Strategy)
	}
	if len(result.Ideas) != 2 {
		t.Fatalf("expected 2 ideas, got %d", len(result.Ideas))
	}
	for _, idea := range result.Ideas {
		if idea.Provenance != "AI Generated" {
			t.Fatalf("provenance = %q", idea.Provenance)
		}
		if idea.Niche != "video editing" || idea.Tool != "CapCut" {
			t.Fatalf("query fields not carried: %+v", idea)
		}
	}
	stored, err := repo.ListByProfile(context.Background(), nil, "alice")
	if err != nil {
		t.Fatalf("ListByProfile: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 persisted ideas, got %d", len(stored))
	}
	if !notifier.saw(sse.EventIdeasCreated) {
		t.Fatalf("IdeasCreated event not sent")
	}
}

func TestGenerateClampsRequestedCount(t *testing.T) {
	text := &fakeTextClient{reply: textgen.Reply{Text: "IDEA: Editing a full video on your phone"}}
	svc, _, _ := newTestGenerationService(t, text)

	if _, err := svc.Generate(context.Background(), "alice", GenerateRequest{Niche: "editing", Count: 50}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if prompt := text.lastPrompt(); !strings.Contains(prompt, "10") {
		t.Fatalf("count not clamped in prompt: %q", prompt)
	}
}

func TestExpandRequiresEnrichableStatus(t *testing.T) {
	svc, repo, _ := newTestGenerationService(t, &fakeTextClient{})
	seeded := seedIdea(t, repo, "alice", "Editing a full video on your phone", types.StatusDiscarded)

	_, err := svc.Expand(context.Background(), "alice", seeded.ID)
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestExpandDerivesProvenanceFromParent(t *testing.T) {
	text := &fakeTextClient{reply: textgen.Reply{Text: strings.Join([]string{
		"IDEA: Editing shorts on your phone during a commute",
		"IDEA: The phone editing mistakes that ruin exports",
	}, "\n")}}
	svc, repo, notifier := newTestGenerationService(t, text)
	seeded := seedIdea(t, repo, "alice", "Editing a full video on your phone", types.StatusPrioritized)

	result, err := svc.Expand(context.Background(), "alice", seeded.ID)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(result.Ideas) != 2 {
		t.Fatalf("expected 2 ideas, got %d", len(result.Ideas))
	}
	for _, idea := range result.Ideas {
		if !strings.HasPrefix(idea.Provenance, "Expanded from ") {
			t.Fatalf("provenance = %q", idea.Provenance)
		}
	}
	if !notifier.saw(sse.EventEnrichmentCompleted) {
		t.Fatalf("EnrichmentCompleted event not sent")
	}
}

func TestExpandSurfacesUpstreamFailure(t *testing.T) {
	text := &fakeTextClient{err: errors.New("upstream 500")}
	svc, repo, notifier := newTestGenerationService(t, text)
	seeded := seedIdea(t, repo, "alice", "Editing a full video on your phone", types.StatusNew)

	if _, err := svc.Expand(context.Background(), "alice", seeded.ID); err == nil {
		t.Fatalf("expected error")
	}
	if !notifier.saw(sse.EventEnrichmentFailed) {
		t.Fatalf("EnrichmentFailed event not sent")
	}
}
