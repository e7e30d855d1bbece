package services

import (
	"strings"
	"testing"
)

func TestParseIdeaReplyToleratesBulletsAndCase(t *testing.T) {
	reply := strings.Join([]string{
		"Here are some ideas you could try:",
		"strategy: Lean into beginner-friendly evergreen topics.",
		"",
		"1. IDEA: Editing a full video on your phone in one hour",
		"   keywords: mobile editing, capcut, one hour",
		"   RATIONALE: Searches for phone-only workflows keep climbing.",
		"- idea: Hi",
		"* Idea: Why your first ten videos should be terrible",
		"  Rationale: Counterintuitive framing earns clicks.",
		"Some closing prose the model added.",
	}, "\n")

	strategy, ideas := ParseIdeaReply(reply)
	if strategy != "Lean into beginner-friendly evergreen topics." {
		t.Fatalf("strategy = %q", strategy)
	}
	if len(ideas) != 2 {
		t.Fatalf("expected 2 ideas, got %d: %+v", len(ideas), ideas)
	}
	first := ideas[0]
	if first.Title != "Editing a full video on your phone in one hour" {
		t.Fatalf("first title = %q", first.Title)
	}
	if len(first.Keywords) != 3 || first.Keywords[1] != "capcut" {
		t.Fatalf("first keywords = %v", first.Keywords)
	}
	if first.Rationale == "" {
		t.Fatalf("first rationale missing")
	}
	if ideas[1].Rationale != "Counterintuitive framing earns clicks." {
		t.Fatalf("second rationale = %q", ideas[1].Rationale)
	}
}

func TestParseIdeaReplyAttachmentOrderIndependent(t *testing.T) {
	reply := strings.Join([]string{
		"IDEA: Streaming setup tours that actually teach something",
		"RATIONALE: Tours rank but rarely explain choices.",
		"KEYWORDS: setup tour, streaming gear",
	}, "\n")

	_, ideas := ParseIdeaReply(reply)
	if len(ideas) != 1 {
		t.Fatalf("expected 1 idea, got %d", len(ideas))
	}
	if ideas[0].Rationale == "" || len(ideas[0].Keywords) != 2 {
		t.Fatalf("attachment failed: %+v", ideas[0])
	}
}

func TestParseTitleReply(t *testing.T) {
	reply := strings.Join([]string{
		"SUGGESTION: I Edited an Entire Video on My Phone (Here's What Broke) | RATIONALE: Curiosity gap plus a concrete promise.",
		"suggestion: Too short | whatever",
		"2. Suggestion: Phone-Only Editing After 30 Days of Daily Uploads",
		"Not a suggestion line.",
	}, "\n")

	suggestions := ParseTitleReply(reply)
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d: %+v", len(suggestions), suggestions)
	}
	if suggestions[0].Rationale != "Curiosity gap plus a concrete promise." {
		t.Fatalf("rationale = %q", suggestions[0].Rationale)
	}
	if suggestions[1].Rationale != "" {
		t.Fatalf("expected empty rationale, got %q", suggestions[1].Rationale)
	}
}

func TestParseScriptReplyBlocksInAnyOrder(t *testing.T) {
	reply := strings.Join([]string{
		"=== PRODUCTION NOTES ===",
		"Shoot the intro against the window for natural light.",
		"=== RESOURCES ===",
		"- https://example.com/lut-pack",
		"* https://example.com/b-roll",
		"",
		"=== SCRIPT ===",
		"Cold open: the render fails on screen.",
		"",
		"Then walk the fix step by step.",
	}, "\n")

	parsed := ParseScriptReply(reply)
	if !strings.HasPrefix(parsed.Script, "Cold open") {
		t.Fatalf("script = %q", parsed.Script)
	}
	if !strings.Contains(parsed.Script, "walk the fix") {
		t.Fatalf("script lost its body: %q", parsed.Script)
	}
	if parsed.ProductionNotes != "Shoot the intro against the window for natural light." {
		t.Fatalf("notes = %q", parsed.ProductionNotes)
	}
	if len(parsed.Resources) != 2 || parsed.Resources[0] != "https://example.com/lut-pack" {
		t.Fatalf("resources = %v", parsed.Resources)
	}
}

func TestParseScriptReplyMissingBlocks(t *testing.T) {
	parsed := ParseScriptReply("just prose, no delimiters at all")
	if parsed.Script != "" || parsed.ProductionNotes != "" || len(parsed.Resources) != 0 {
		t.Fatalf("expected empty result, got %+v", parsed)
	}
}

func TestParseKeywordReply(t *testing.T) {
	reply := strings.Join([]string{
		"KEYWORD: mobile video editing",
		"keyword: capcut tutorial",
		"KEYWORD: Mobile Video Editing",
		"KEYWORDS: vertical video, capcut tutorial, phone filmmaking",
	}, "\n")

	keywords := ParseKeywordReply(reply)
	want := []string{"mobile video editing", "capcut tutorial", "vertical video", "phone filmmaking"}
	if len(keywords) != len(want) {
		t.Fatalf("keywords = %v", keywords)
	}
	for i, kw := range want {
		if keywords[i] != kw {
			t.Fatalf("keywords[%d] = %q, want %q", i, keywords[i], kw)
		}
	}
}
